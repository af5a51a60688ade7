package service

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

func TestMatcherExactMatchIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	ctx := context.Background()

	_, err := schools.Create(ctx, repository.School{Name: "Boston University", CRRName: "Boston University - BU", Acronym: "BU"})
	require.NoError(t, err)

	m := &SchoolMatcher{Schools: schools}
	s, err := m.Match(ctx, "boston university - bu")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "Boston University - BU", s.CRRName)

	s, err = m.Match(ctx, "Northeastern")
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestMatcherSuggestsNearMisses(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	ctx := context.Background()

	for _, s := range []repository.School{
		{Name: "Brown University", CRRName: "Brown"},
		{Name: "Boston College", CRRName: "Boston College"},
		{Name: "University of Washington", CRRName: "Washington - UW", ShortName: "Washington", Acronym: "UW"},
	} {
		_, err := schools.Create(ctx, s)
		require.NoError(t, err)
	}

	m := &SchoolMatcher{Schools: schools}
	sugs, err := m.Suggest(ctx, "Browm", 3)
	require.NoError(t, err)
	require.NotEmpty(t, sugs)
	require.Equal(t, "Brown", sugs[0].School.CRRName)

	// acronyms count as candidate names
	sugs, err = m.Suggest(ctx, "UW", 3)
	require.NoError(t, err)
	require.NotEmpty(t, sugs)
	require.Equal(t, "Washington - UW", sugs[0].School.CRRName)
}

type recordedChange struct {
	kind  string
	field string
	old   string
	new_  string
}

type fakeListener struct {
	created []int64
	updated []recordedChange
	renamed []recordedChange
}

func (l *fakeListener) SchoolCreated(schoolID int64) { l.created = append(l.created, schoolID) }
func (l *fakeListener) SchoolUpdated(schoolID int64, field string) {
	l.updated = append(l.updated, recordedChange{kind: "update", field: field})
}
func (l *fakeListener) CRRNameChanged(schoolID int64, oldName, newName string) {
	l.renamed = append(l.renamed, recordedChange{kind: "rename", old: oldName, new_: newName})
}

func TestAuditorRecordsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	changes := repository.NewChangeRepo(db)
	ctx := context.Background()

	listener := &fakeListener{}
	auditor := &SchoolAuditor{Schools: schools, Changes: changes}
	auditor.AddListener(listener)

	id, err := auditor.CreateSchool(ctx, repository.School{Name: "Tulsa", CRRName: "Tulsa"})
	require.NoError(t, err)
	require.Equal(t, []int64{id}, listener.created)

	require.NoError(t, auditor.UpdateField(ctx, id, "short_name", "Tulsa"))
	require.Len(t, listener.updated, 1)
	require.Equal(t, "short_name", listener.updated[0].field)

	require.NoError(t, auditor.UpdateField(ctx, id, "crr_name", "Tulsa - TU"))
	require.Len(t, listener.renamed, 1)
	require.Equal(t, "Tulsa", listener.renamed[0].old)
	require.Equal(t, "Tulsa - TU", listener.renamed[0].new_)

	history, err := changes.ForSchool(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	kinds := map[string]int{}
	for _, c := range history {
		kinds[c.ChangeType]++
		require.NotEmpty(t, c.ID)
	}
	require.Equal(t, 1, kinds["school_created"])
	require.Equal(t, 1, kinds["school_updated"])
	require.Equal(t, 1, kinds["crr_name_changed"])
}

func TestAuditorSkipsNoopUpdates(t *testing.T) {
	db := newTestDB(t)
	schools := repository.NewSchoolRepo(db)
	changes := repository.NewChangeRepo(db)
	ctx := context.Background()

	auditor := &SchoolAuditor{Schools: schools, Changes: changes}
	id, err := auditor.CreateSchool(ctx, repository.School{Name: "Navy", CRRName: "Navy"})
	require.NoError(t, err)

	require.NoError(t, auditor.UpdateField(ctx, id, "crr_name", "Navy"))
	history, err := changes.ForSchool(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 1) // only the creation record
}

func TestMaintenanceResetRaceDataKeepsRoster(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	schools := repository.NewSchoolRepo(db)
	regattas := repository.NewRegattaRepo(db)

	_, err := schools.Create(ctx, repository.School{Name: "Penn", CRRName: "Penn"})
	require.NoError(t, err)
	_, err = regattas.Create(ctx, repository.Regatta{Name: "Ivy Championship", StartDate: "2025-05-01"})
	require.NoError(t, err)

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.ResetRaceData(ctx))

	list, err := regattas.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	roster, err := schools.List(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
}

func TestMaintenanceResetAllWipesEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	schools := repository.NewSchoolRepo(db)

	_, err := schools.Create(ctx, repository.School{Name: "Drexel", CRRName: "Drexel"})
	require.NoError(t, err)

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.ResetAll(ctx))

	roster, err := schools.List(ctx)
	require.NoError(t, err)
	require.Empty(t, roster)
}
