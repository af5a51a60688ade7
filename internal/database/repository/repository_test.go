package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/collegeite/rowingdb/internal/database"
	"github.com/collegeite/rowingdb/internal/database/repository"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrationsWithDB(db))
	return db
}

func createSchool(t *testing.T, repo *repository.SchoolRepo, name, crr string) int64 {
	t.Helper()
	id, err := repo.Create(context.Background(), repository.School{Name: name, CRRName: crr})
	require.NoError(t, err)
	return id
}

func TestSchoolCreateDefaultsCRRName(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSchoolRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, repository.School{Name: "Tufts University"})
	require.NoError(t, err)

	s, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "Tufts University", s.CRRName)
}

func TestSchoolCRRNameMustBeUnique(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSchoolRepo(db)
	ctx := context.Background()

	createSchool(t, repo, "Brown University", "Brown")
	other := createSchool(t, repo, "Boston University", "BU")

	err := repo.UpdateField(ctx, other, "crr_name", "Brown")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already used")
}

func TestSchoolUpdateFieldRejectsUnknownColumn(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSchoolRepo(db)

	id := createSchool(t, repo, "Yale University", "Yale")
	err := repo.UpdateField(context.Background(), id, "mascot", "Handsome Dan")
	require.Error(t, err)
}

func TestEnsureTeamIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSchoolRepo(db)
	ctx := context.Background()

	id := createSchool(t, repo, "Harvard University", "Harvard")
	first, err := repo.EnsureTeam(ctx, id, "M", "HW")
	require.NoError(t, err)
	second, err := repo.EnsureTeam(ctx, id, "M", "HW")
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := repo.EnsureTeam(ctx, id, "M", "LW")
	require.NoError(t, err)
	require.NotEqual(t, first, other)
}

// buildRegatta wires a regatta with one event and two timed entries.
func buildRegatta(t *testing.T, db *sql.DB) (regattaID, eventID, entryA, entryB int64) {
	t.Helper()
	ctx := context.Background()
	schools := repository.NewSchoolRepo(db)
	regattas := repository.NewRegattaRepo(db)
	events := repository.NewEventRepo(db)
	entries := repository.NewEntryRepo(db)

	var err error
	regattaID, err = regattas.Create(ctx, repository.Regatta{
		Name: "Eastern Sprints", Location: "Worcester, MA", StartDate: "2025-05-18", EndDate: "2025-05-18",
	})
	require.NoError(t, err)

	eventID, err = events.Create(ctx, repository.Event{
		RegattaID: regattaID, BoatType: "8+", BoatClass: "1V", Gender: "W", Weight: "OW", Round: "Final",
	})
	require.NoError(t, err)

	sA := createSchool(t, schools, "Brown University", "Brown")
	sB := createSchool(t, schools, "Yale University", "Yale")
	teamA, err := schools.EnsureTeam(ctx, sA, "W", "OW")
	require.NoError(t, err)
	teamB, err := schools.EnsureTeam(ctx, sB, "W", "OW")
	require.NoError(t, err)

	entryA, err = entries.Create(ctx, repository.Entry{EventID: eventID, TeamID: teamA, ConferenceAtTime: "Ivy League"})
	require.NoError(t, err)
	entryB, err = entries.Create(ctx, repository.Entry{EventID: eventID, TeamID: teamB, ConferenceAtTime: "Ivy League"})
	require.NoError(t, err)
	return regattaID, eventID, entryA, entryB
}

func TestResultsPositionsAndMargins(t *testing.T) {
	db := newTestDB(t)
	_, eventID, entryA, entryB := buildRegatta(t, db)
	entries := repository.NewEntryRepo(db)
	ctx := context.Background()

	slow, fast := 424.5, 421.123
	_, err := entries.SetResult(ctx, repository.Result{EntryID: entryA, ElapsedSec: &slow})
	require.NoError(t, err)
	_, err = entries.SetResult(ctx, repository.Result{EntryID: entryB, ElapsedSec: &fast})
	require.NoError(t, err)

	require.NoError(t, entries.RecomputePositions(ctx, eventID))
	require.NoError(t, entries.RecomputeMargins(ctx, eventID))

	rows, err := entries.ForEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// winner first
	require.Equal(t, "Yale", rows[0].CRRName)
	require.NotNil(t, rows[0].Position)
	require.EqualValues(t, 1, *rows[0].Position)
	require.Equal(t, "Brown", rows[1].CRRName)
	require.NotNil(t, rows[1].Position)
	require.EqualValues(t, 2, *rows[1].Position)

	var margin float64
	err = db.QueryRow(`SELECT margin_sec FROM results WHERE entry_id = ?`, entryA).Scan(&margin)
	require.NoError(t, err)
	require.InDelta(t, 3.377, margin, 0.001)
}

func TestSetResultReplacesPrevious(t *testing.T) {
	db := newTestDB(t)
	_, _, entryA, _ := buildRegatta(t, db)
	entries := repository.NewEntryRepo(db)
	ctx := context.Background()

	first, second := 430.0, 425.0
	_, err := entries.SetResult(ctx, repository.Result{EntryID: entryA, ElapsedSec: &first})
	require.NoError(t, err)
	_, err = entries.SetResult(ctx, repository.Result{EntryID: entryA, ElapsedSec: &second})
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM results WHERE entry_id = ?`, entryA).Scan(&n))
	require.Equal(t, 1, n)

	var elapsed float64
	require.NoError(t, db.QueryRow(`SELECT elapsed_sec FROM results WHERE entry_id = ?`, entryA).Scan(&elapsed))
	require.InDelta(t, 425.0, elapsed, 0.0001)
}

func TestConferenceHistoryAndNameList(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	confs := repository.NewConferenceRepo(db)
	ctx := context.Background()

	id := createSchool(t, schools, "University of Virginia", "Virginia")
	teamID, err := schools.EnsureTeam(ctx, id, "W", "OW")
	require.NoError(t, err)

	_, err = confs.Add(ctx, repository.ConferenceAffiliation{TeamID: teamID, Conference: "ACC", StartDate: "2010-09-01"})
	require.NoError(t, err)
	require.NoError(t, confs.Change(ctx, teamID, "Big Ten", "2024-07-01"))

	history, err := confs.History(ctx, teamID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "Big Ten", history[0].Conference)
	require.True(t, history[0].Current())
	require.False(t, history[1].Current())
	require.Equal(t, "2024-07-01", *history[1].EndDate)

	names, err := confs.Conferences(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"ACC", "Big Ten"}, names)
}

func TestSetLaneWithAndWithoutExistingResult(t *testing.T) {
	db := newTestDB(t)
	_, _, entryA, entryB := buildRegatta(t, db)
	entries := repository.NewEntryRepo(db)
	ctx := context.Background()

	// lane before any time is recorded
	require.NoError(t, entries.SetLane(ctx, entryA, 3))

	elapsed := 410.0
	_, err := entries.SetResult(ctx, repository.Result{EntryID: entryB, ElapsedSec: &elapsed})
	require.NoError(t, err)
	require.NoError(t, entries.SetLane(ctx, entryB, 4))

	var lane int64
	require.NoError(t, db.QueryRow(`SELECT lane FROM results WHERE entry_id = ?`, entryA).Scan(&lane))
	require.EqualValues(t, 3, lane)

	var gotElapsed float64
	require.NoError(t, db.QueryRow(`SELECT lane, elapsed_sec FROM results WHERE entry_id = ?`, entryB).Scan(&lane, &gotElapsed))
	require.EqualValues(t, 4, lane)
	require.InDelta(t, 410.0, gotElapsed, 0.0001)
}

func TestDeleteSeasonRemovesOnlyThatSeason(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	parts := repository.NewParticipationRepo(db)
	ctx := context.Background()

	id := createSchool(t, schools, "Cornell University", "Cornell")
	require.NoError(t, parts.SetSquad(ctx, id, "2024", "heavyweight_men", true, false))
	require.NoError(t, parts.SetSquad(ctx, id, "2025", "heavyweight_men", true, true))

	n, err := parts.DeleteSeason(ctx, "2024")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	years, err := parts.SeasonYears(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2025"}, years)
}

func TestRegattaCascadeDeleteCounts(t *testing.T) {
	db := newTestDB(t)
	regattaID, eventID, entryA, _ := buildRegatta(t, db)
	entries := repository.NewEntryRepo(db)
	regattas := repository.NewRegattaRepo(db)
	ctx := context.Background()

	elapsed := 400.0
	_, err := entries.SetResult(ctx, repository.Result{EntryID: entryA, ElapsedSec: &elapsed})
	require.NoError(t, err)

	counts, err := regattas.Delete(ctx, regattaID)
	require.NoError(t, err)
	require.EqualValues(t, 1, counts.Results)
	require.EqualValues(t, 2, counts.Entries)
	require.EqualValues(t, 1, counts.Events)
	require.EqualValues(t, 1, counts.Regattas)

	rows, err := entries.ForEvent(ctx, eventID)
	require.NoError(t, err)
	require.Empty(t, rows)

	g, err := regattas.Get(ctx, regattaID)
	require.NoError(t, err)
	require.Nil(t, g)
}

func TestEventDateFallsBackToRegattaStart(t *testing.T) {
	db := newTestDB(t)
	_, eventID, _, _ := buildRegatta(t, db)
	events := repository.NewEventRepo(db)

	date, err := events.Date(context.Background(), eventID)
	require.NoError(t, err)
	require.Equal(t, "2025-05-18", date)
}

func TestConferenceAtDateHonorsRanges(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	confs := repository.NewConferenceRepo(db)
	ctx := context.Background()

	id := createSchool(t, schools, "University of Texas at Austin", "Texas")
	teamID, err := schools.EnsureTeam(ctx, id, "W", "OW")
	require.NoError(t, err)

	_, err = confs.Add(ctx, repository.ConferenceAffiliation{
		TeamID: teamID, Conference: "Big 12", StartDate: "2015-09-01",
	})
	require.NoError(t, err)
	require.NoError(t, confs.Change(ctx, teamID, "SEC", "2024-07-01"))

	conf, err := confs.AtDate(ctx, teamID, "2023-05-01")
	require.NoError(t, err)
	require.Equal(t, "Big 12", conf)

	conf, err = confs.AtDate(ctx, teamID, "2025-05-01 09:30")
	require.NoError(t, err)
	require.Equal(t, "SEC", conf)

	current, err := confs.Current(ctx, teamID)
	require.NoError(t, err)
	require.Equal(t, "SEC", current)

	conf, err = confs.AtDate(ctx, teamID, "2010-01-01")
	require.NoError(t, err)
	require.Equal(t, "Unknown", conf)
}

func TestParticipationSetSquadAndCopySeason(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	parts := repository.NewParticipationRepo(db)
	ctx := context.Background()

	id := createSchool(t, schools, "Stanford University", "Stanford")
	require.NoError(t, parts.SetSquad(ctx, id, "2024", "openweight_women", true, false))
	require.NoError(t, parts.SetSquad(ctx, id, "2024", "lightweight_women", true, false))

	rows, err := parts.ForSeason(ctx, "2024")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].OpenweightWomen)
	require.True(t, rows[0].LightweightWomen)
	require.False(t, rows[0].HeavyweightMen)

	copied, err := parts.CopySeason(ctx, "2024", "2025", nil)
	require.NoError(t, err)
	require.Equal(t, 1, copied)

	// copying again skips existing records
	copied, err = parts.CopySeason(ctx, "2024", "2025", nil)
	require.NoError(t, err)
	require.Equal(t, 0, copied)

	years, err := parts.SeasonYears(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2025", "2024"}, years)

	require.NoError(t, parts.SetSquad(ctx, id, "2025", "openweight_women", false, true))
	rows, err = parts.ForSeason(ctx, "2025")
	require.NoError(t, err)
	require.False(t, rows[0].OpenweightWomen)
	require.True(t, rows[0].LightweightWomen)
}

func TestParticipationRejectsUnknownSquad(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	parts := repository.NewParticipationRepo(db)

	id := createSchool(t, schools, "MIT", "MIT")
	err := parts.SetSquad(context.Background(), id, "2024", "coastal", true, true)
	require.Error(t, err)
}

func TestTeamsForCategoryIncludesConference(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	confs := repository.NewConferenceRepo(db)
	ctx := context.Background()

	id := createSchool(t, schools, "Duke University", "Duke")
	teamID, err := schools.EnsureTeam(ctx, id, "W", "OW")
	require.NoError(t, err)
	_, err = confs.Add(ctx, repository.ConferenceAffiliation{TeamID: teamID, Conference: "ACC", StartDate: "2020-09-01"})
	require.NoError(t, err)

	other := createSchool(t, schools, "Gonzaga University", "Gonzaga")
	_, err = schools.EnsureTeam(ctx, other, "W", "OW")
	require.NoError(t, err)

	teams, err := schools.TeamsForCategory(ctx, "W", "OW")
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Equal(t, "Duke", teams[0].CRRName)
	require.Equal(t, "ACC", teams[0].Conference)
	require.Equal(t, "Unknown", teams[1].Conference)
}
