package repository

import (
	"context"
	"database/sql"
)

// EntryRepo handles entries and their results.
type EntryRepo struct {
	db *sql.DB
}

func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

func (r *EntryRepo) Create(ctx context.Context, e Entry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO entries(event_id, team_id, entry_boat_class, conference_at_time, seed, notes)
	VALUES (?, ?, ?, ?, ?, ?)`,
		e.EventID, e.TeamID, e.BoatClass, e.ConferenceAtTime, e.Seed, e.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *EntryRepo) Get(ctx context.Context, id int64) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT entry_id, event_id, team_id, entry_boat_class, COALESCE(conference_at_time,''), seed, COALESCE(notes,'')
	FROM entries WHERE entry_id = ?`, id)
	var e Entry
	if err := row.Scan(&e.ID, &e.EventID, &e.TeamID, &e.BoatClass, &e.ConferenceAtTime, &e.Seed, &e.Notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ForEvent returns an event's entries joined with school names and results,
// finishers first.
func (r *EntryRepo) ForEvent(ctx context.Context, eventID int64) ([]EntryRow, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT e.entry_id, s.crr_name, e.entry_boat_class, res.lane, res.position, res.elapsed_sec, COALESCE(e.notes,'')
	FROM entries e
	JOIN teams t ON e.team_id = t.team_id
	JOIN schools s ON t.school_id = s.school_id
	LEFT JOIN results res ON e.entry_id = res.entry_id
	WHERE e.event_id = ?
	ORDER BY COALESCE(res.position, 999), s.crr_name COLLATE NOCASE`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryRow
	for rows.Next() {
		var row EntryRow
		if err := rows.Scan(&row.EntryID, &row.CRRName, &row.BoatClass, &row.Lane, &row.Position, &row.ElapsedSec, &row.Notes); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *EntryRepo) UpdateNotes(ctx context.Context, entryID int64, notes string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE entries SET notes = ? WHERE entry_id = ?`, notes, entryID)
	return err
}

func (r *EntryRepo) Delete(ctx context.Context, entryID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE entry_id = ?`, entryID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE entry_id = ?`, entryID); err != nil {
		return err
	}
	return tx.Commit()
}

// SetResult records or replaces the result for an entry.
func (r *EntryRepo) SetResult(ctx context.Context, res Result) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE entry_id = ?`, res.EntryID); err != nil {
		return 0, err
	}
	ins, err := tx.ExecContext(ctx,
		`INSERT INTO results(entry_id, lane, position, elapsed_sec, margin_sec) VALUES (?, ?, ?, ?, ?)`,
		res.EntryID, res.Lane, res.Position, res.ElapsedSec, res.MarginSec)
	if err != nil {
		return 0, err
	}
	id, err := ins.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// SetLane records the lane assignment, creating a result row if the entry has
// no time yet.
func (r *EntryRepo) SetLane(ctx context.Context, entryID, lane int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE results SET lane = ? WHERE entry_id = ?`, lane, entryID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO results(entry_id, lane) VALUES (?, ?)`, entryID, lane)
	return err
}

// RecomputePositions ranks every timed result of an event by elapsed time and
// stores the rank as the finishing position. Untimed results keep theirs.
func (r *EntryRepo) RecomputePositions(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE results SET position = (
		SELECT COUNT(*) + 1 FROM results res2
		JOIN entries e2 ON res2.entry_id = e2.entry_id
		WHERE e2.event_id = ? AND res2.elapsed_sec IS NOT NULL
		  AND res2.elapsed_sec < results.elapsed_sec
	)
	WHERE elapsed_sec IS NOT NULL AND entry_id IN (SELECT entry_id FROM entries WHERE event_id = ?)`,
		eventID, eventID)
	return err
}

// RecomputeMargins rewrites margin_sec for every result of an event so that
// each boat's margin is its gap to the winner's elapsed time.
func (r *EntryRepo) RecomputeMargins(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE results SET margin_sec = elapsed_sec - (
		SELECT MIN(res2.elapsed_sec) FROM results res2
		JOIN entries e2 ON res2.entry_id = e2.entry_id
		WHERE e2.event_id = ? AND res2.elapsed_sec IS NOT NULL
	)
	WHERE elapsed_sec IS NOT NULL AND entry_id IN (SELECT entry_id FROM entries WHERE event_id = ?)`,
		eventID, eventID)
	return err
}
