package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ConferenceRepo handles conference affiliations.
type ConferenceRepo struct {
	db *sql.DB
}

func NewConferenceRepo(db *sql.DB) *ConferenceRepo { return &ConferenceRepo{db: db} }

func (r *ConferenceRepo) Add(ctx context.Context, a ConferenceAffiliation) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO conference_affiliations(team_id, conference, start_date, end_date)
	VALUES (?, ?, ?, ?)`, a.TeamID, a.Conference, a.StartDate, a.EndDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// History returns a team's affiliations, newest first.
func (r *ConferenceRepo) History(ctx context.Context, teamID int64) ([]ConferenceAffiliation, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT affiliation_id, team_id, conference, start_date, end_date
	FROM conference_affiliations
	WHERE team_id = ?
	ORDER BY start_date DESC`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ConferenceAffiliation
	for rows.Next() {
		var a ConferenceAffiliation
		if err := rows.Scan(&a.ID, &a.TeamID, &a.Conference, &a.StartDate, &a.EndDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Current returns the team's open affiliation, or "Unknown".
func (r *ConferenceRepo) Current(ctx context.Context, teamID int64) (string, error) {
	var conf string
	err := r.db.QueryRowContext(ctx, `
	SELECT conference FROM conference_affiliations
	WHERE team_id = ? AND end_date IS NULL
	ORDER BY start_date DESC LIMIT 1`, teamID).Scan(&conf)
	if err == sql.ErrNoRows {
		return "Unknown", nil
	}
	if err != nil {
		return "", err
	}
	return conf, nil
}

// AtDate returns the conference a team belonged to on a given date.
// Datetime strings are tolerated; only the date part is compared.
func (r *ConferenceRepo) AtDate(ctx context.Context, teamID int64, date string) (string, error) {
	if i := strings.IndexByte(date, ' '); i > 0 {
		date = date[:i]
	}
	var conf string
	err := r.db.QueryRowContext(ctx, `
	SELECT conference FROM conference_affiliations
	WHERE team_id = ?
	  AND start_date <= ?
	  AND (end_date IS NULL OR end_date > ?)
	ORDER BY start_date DESC LIMIT 1`, teamID, date, date).Scan(&conf)
	if err == sql.ErrNoRows {
		return "Unknown", nil
	}
	if err != nil {
		return "", err
	}
	return conf, nil
}

// Change closes the team's open affiliation on changeDate and opens a new one.
func (r *ConferenceRepo) Change(ctx context.Context, teamID int64, newConference, changeDate string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `
	UPDATE conference_affiliations SET end_date = ?
	WHERE team_id = ? AND end_date IS NULL`, changeDate, teamID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO conference_affiliations(team_id, conference, start_date, end_date)
	VALUES (?, ?, ?, NULL)`, teamID, newConference, changeDate); err != nil {
		return err
	}
	return tx.Commit()
}

// Conferences returns the distinct conference names in use, sorted.
func (r *ConferenceRepo) Conferences(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT conference FROM conference_affiliations ORDER BY conference`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
