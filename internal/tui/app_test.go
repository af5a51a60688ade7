package tui

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/collegeite/rowingdb/internal/config"
	"github.com/collegeite/rowingdb/internal/database"
	"github.com/collegeite/rowingdb/internal/database/repository"
	"github.com/collegeite/rowingdb/internal/service"
)

func newTestApp(t *testing.T) (*App, *sql.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrationsWithDB(db))

	schools := repository.NewSchoolRepo(db)
	changes := repository.NewChangeRepo(db)
	repos := Repos{
		Schools:        schools,
		Regattas:       repository.NewRegattaRepo(db),
		Events:         repository.NewEventRepo(db),
		Entries:        repository.NewEntryRepo(db),
		Conferences:    repository.NewConferenceRepo(db),
		Participations: repository.NewParticipationRepo(db),
		Changes:        changes,
	}
	services := Services{
		Auditor:     &service.SchoolAuditor{Schools: schools, Changes: changes},
		Matcher:     &service.SchoolMatcher{Schools: schools},
		Maintenance: &service.MaintenanceService{DB: db},
	}
	cfg := config.Config{}
	cfg.Season.StartMonth = 9
	return New(context.Background(), cfg, db, repos, services, nil), db
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSetCurrentRegattaUpdatesGetter(t *testing.T) {
	app, _ := newTestApp(t)

	require.Nil(t, app.CurrentRegattaID())
	id := int64(7)
	cmd := app.SetCurrentRegatta(&id)
	require.NotNil(t, cmd)
	require.NotNil(t, app.CurrentRegattaID())
	require.Equal(t, id, *app.CurrentRegattaID())

	msg := cmd()
	changed, ok := msg.(regattaChangedMsg)
	require.True(t, ok)
	require.Equal(t, id, *changed.id)
}

func TestSetCurrentEventSetsIDAndBoatClassTogether(t *testing.T) {
	app, _ := newTestApp(t)

	id := int64(3)
	app.SetCurrentEvent(&id, "2V")
	require.Equal(t, id, *app.CurrentEventID())
	require.Equal(t, "2V", app.CurrentEventBoatClass())

	app.SetCurrentEvent(nil, "ignored")
	require.Nil(t, app.CurrentEventID())
	require.Empty(t, app.CurrentEventBoatClass())
}

func TestChangingRegattaClearsEventSelection(t *testing.T) {
	app, _ := newTestApp(t)

	eventID := int64(11)
	app.SetCurrentEvent(&eventID, "1V")

	regattaID := int64(2)
	app.SetCurrentRegatta(&regattaID)
	require.Nil(t, app.CurrentEventID())
	require.Empty(t, app.CurrentEventBoatClass())
}

func TestRegattaChangeBroadcastReachesTabs(t *testing.T) {
	app, _ := newTestApp(t)

	id := int64(5)
	cmd := app.SetCurrentRegatta(&id)
	app.Update(cmd())

	events := app.tabs[1].(*eventsTab)
	require.NotNil(t, events.regattaID)
	require.Equal(t, id, *events.regattaID)
}

func TestEventChangeBroadcastReachesEntriesTab(t *testing.T) {
	app, _ := newTestApp(t)

	id := int64(9)
	cmd := app.SetCurrentEvent(&id, "1V")
	app.Update(cmd())

	entries := app.tabs[2].(*entriesTab)
	require.NotNil(t, entries.eventID)
	require.Equal(t, id, *entries.eventID)
	require.Equal(t, "1V", entries.boatClass)
}

func TestCloseDelegatesToDatabase(t *testing.T) {
	app, db := newTestApp(t)

	require.NoError(t, app.Close())
	require.Error(t, db.Ping())
	// second close is a no-op
	require.NoError(t, app.Close())
}

func TestDeletedSelectionIsCleared(t *testing.T) {
	app, _ := newTestApp(t)

	id := int64(4)
	app.SetCurrentRegatta(&id)
	app.Update(actionDoneMsg{status: "deleted", deletedRegattaID: &id})
	require.Nil(t, app.CurrentRegattaID())
}

func TestShowErrorOpensDialog(t *testing.T) {
	app, _ := newTestApp(t)

	app.ShowError(errors.New("boom"))
	require.Equal(t, dialogError, app.dialog.kind)
	require.Equal(t, "boom", app.dialog.message)
	require.Contains(t, app.View(), "boom")

	app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, dialogNone, app.dialog.kind)
	require.NotContains(t, app.View(), "boom")
}

func TestConferenceHistoryView(t *testing.T) {
	app, db := newTestApp(t)
	ctx := context.Background()

	schools := repository.NewSchoolRepo(db)
	confs := repository.NewConferenceRepo(db)
	id, err := schools.Create(ctx, repository.School{Name: "Stanford University", CRRName: "Stanford"})
	require.NoError(t, err)
	teamID, err := schools.EnsureTeam(ctx, id, "W", "OW")
	require.NoError(t, err)
	_, err = confs.Add(ctx, repository.ConferenceAffiliation{TeamID: teamID, Conference: "ACC", StartDate: "2024-07-01"})
	require.NoError(t, err)

	tab := app.tabs[3].(*conferencesTab)
	tab.Update(tab.Refresh()())

	_, cmd := tab.Update(keyMsg("c"))
	require.NotNil(t, cmd)
	tab.Update(cmd())
	require.True(t, tab.showHistory)

	view := tab.View(100, 30)
	require.Contains(t, view, "ACC")
	require.Contains(t, view, "present")

	tab.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, tab.showHistory)
}

func TestConfirmActionRunsOnYes(t *testing.T) {
	app, _ := newTestApp(t)

	ran := false
	app.ConfirmAction("Delete?", "really", func() tea.Msg {
		ran = true
		return nil
	})
	require.Equal(t, dialogConfirm, app.dialog.kind)

	_, cmd := app.Update(keyMsg("y"))
	require.NotNil(t, cmd)
	cmd()
	require.True(t, ran)
	require.Equal(t, dialogNone, app.dialog.kind)
}

func TestConfirmActionSkippedOnNo(t *testing.T) {
	app, _ := newTestApp(t)

	ran := false
	app.ConfirmAction("Delete?", "really", func() tea.Msg {
		ran = true
		return nil
	})
	_, cmd := app.Update(keyMsg("n"))
	require.Nil(t, cmd)
	require.False(t, ran)
	require.Equal(t, dialogNone, app.dialog.kind)
}

func TestStatusMessageShownInStatusBar(t *testing.T) {
	app, _ := newTestApp(t)

	app.ShowStatus("saved")
	require.Equal(t, "saved", app.status)

	app.Update(statusMsg("reloaded"))
	require.Equal(t, "reloaded", app.status)
}

func TestRefreshSchoolDependentTabsTargetsRosterTabs(t *testing.T) {
	app, _ := newTestApp(t)

	var dependent int
	for _, tab := range app.tabs {
		if sd, ok := tab.(schoolDependent); ok && sd.DependsOnSchools() {
			dependent++
		}
	}
	// entries, conferences and schools render roster names
	require.Equal(t, 3, dependent)
}

func TestTabLoaderRoundTrip(t *testing.T) {
	app, db := newTestApp(t)
	ctx := context.Background()

	regattas := repository.NewRegattaRepo(db)
	_, err := regattas.Create(ctx, repository.Regatta{Name: "Head of the Charles", StartDate: "2025-10-18"})
	require.NoError(t, err)

	tab := app.tabs[0].(*regattasTab)
	msg := tab.Refresh()()
	loaded, ok := msg.(regattasLoadedMsg)
	require.True(t, ok)
	require.Len(t, loaded, 1)

	app.Update(msg)
	require.Len(t, tab.rows, 1)
	require.Equal(t, "Head of the Charles", tab.rows[0].Name)
}
