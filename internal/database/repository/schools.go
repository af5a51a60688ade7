package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Fields of a school that may be edited from the Schools tab.
var schoolFields = map[string]string{
	"name":       "name",
	"short_name": "short_name",
	"acronym":    "acronym",
	"crr_name":   "crr_name",
	"color":      "color",
}

// SchoolRepo handles schools and their teams.
type SchoolRepo struct {
	db *sql.DB
}

func NewSchoolRepo(db *sql.DB) *SchoolRepo { return &SchoolRepo{db: db} }

func (r *SchoolRepo) Create(ctx context.Context, s School) (int64, error) {
	crr := strings.TrimSpace(s.CRRName)
	if crr == "" {
		crr = strings.TrimSpace(s.Name)
	}
	if crr == "" {
		return 0, fmt.Errorf("crr name cannot be empty")
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO schools(name, short_name, acronym, crr_name, color)
	VALUES (?, ?, ?, ?, ?);
	`, s.Name, s.ShortName, s.Acronym, crr, s.Color)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SchoolRepo) Get(ctx context.Context, id int64) (*School, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT school_id, name, COALESCE(short_name,''), COALESCE(acronym,''), crr_name, COALESCE(color,'')
	FROM schools WHERE school_id = ?`, id)
	var s School
	if err := row.Scan(&s.ID, &s.Name, &s.ShortName, &s.Acronym, &s.CRRName, &s.Color); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SchoolRepo) GetByCRRName(ctx context.Context, crrName string) (*School, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT school_id, name, COALESCE(short_name,''), COALESCE(acronym,''), crr_name, COALESCE(color,'')
	FROM schools WHERE crr_name = ?`, crrName)
	var s School
	if err := row.Scan(&s.ID, &s.Name, &s.ShortName, &s.Acronym, &s.CRRName, &s.Color); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// List returns all schools ordered by CRR name.
func (r *SchoolRepo) List(ctx context.Context) ([]School, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT school_id, name, COALESCE(short_name,''), COALESCE(acronym,''), crr_name, COALESCE(color,'')
	FROM schools
	WHERE crr_name != ''
	ORDER BY crr_name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Name, &s.ShortName, &s.Acronym, &s.CRRName, &s.Color); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateField updates a single editable school field. CRR names must stay
// unique; references elsewhere follow school_id so no propagation writes are
// needed, only notification.
func (r *SchoolRepo) UpdateField(ctx context.Context, id int64, field, value string) error {
	col, ok := schoolFields[field]
	if !ok {
		return fmt.Errorf("invalid school field %q", field)
	}
	if field == "crr_name" {
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("crr name cannot be empty")
		}
		var existing int64
		err := r.db.QueryRowContext(ctx, `SELECT school_id FROM schools WHERE crr_name = ?`, value).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil && existing != id {
			return fmt.Errorf("crr name %q is already used by another school", value)
		}
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE schools SET %s = ? WHERE school_id = ?`, col), value, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("school %d not found", id)
	}
	return nil
}

// EnsureTeam returns the team id for the school/gender/weight combination,
// creating it if missing.
func (r *SchoolRepo) EnsureTeam(ctx context.Context, schoolID int64, gender, weight string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT team_id FROM teams WHERE school_id = ? AND gender = ? AND weight = ?`,
		schoolID, gender, weight).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO teams(school_id, gender, weight) VALUES (?, ?, ?)`, schoolID, gender, weight)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TeamOption is a team joined with its school and current conference, for
// building the entry form's school list.
type TeamOption struct {
	TeamID     int64
	SchoolID   int64
	CRRName    string
	Conference string
}

// TeamsForCategory returns teams matching gender/weight with their current
// conference, ordered by CRR name.
func (r *SchoolRepo) TeamsForCategory(ctx context.Context, gender, weight string) ([]TeamOption, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.team_id, s.school_id, s.crr_name,
	       COALESCE(ca.conference, 'Unknown')
	FROM teams t
	JOIN schools s ON t.school_id = s.school_id
	LEFT JOIN conference_affiliations ca ON t.team_id = ca.team_id AND ca.end_date IS NULL
	WHERE t.gender = ? AND t.weight = ?
	ORDER BY s.crr_name COLLATE NOCASE`, gender, weight)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TeamOption
	for rows.Next() {
		var o TeamOption
		if err := rows.Scan(&o.TeamID, &o.SchoolID, &o.CRRName, &o.Conference); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
