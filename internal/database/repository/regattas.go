package repository

import (
	"context"
	"database/sql"
)

// RegattaRepo handles regattas.
type RegattaRepo struct {
	db *sql.DB
}

func NewRegattaRepo(db *sql.DB) *RegattaRepo { return &RegattaRepo{db: db} }

func (r *RegattaRepo) Create(ctx context.Context, g Regatta) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO regattas(name, location, start_date, end_date) VALUES (?, ?, ?, ?)`,
		g.Name, g.Location, g.StartDate, g.EndDate)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *RegattaRepo) Get(ctx context.Context, id int64) (*Regatta, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT regatta_id, name, COALESCE(location,''), COALESCE(start_date,''), COALESCE(end_date,'')
	FROM regattas WHERE regatta_id = ?`, id)
	var g Regatta
	if err := row.Scan(&g.ID, &g.Name, &g.Location, &g.StartDate, &g.EndDate); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// List returns all regattas, most recent first.
func (r *RegattaRepo) List(ctx context.Context) ([]Regatta, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT regatta_id, name, COALESCE(location,''), COALESCE(start_date,''), COALESCE(end_date,'')
	FROM regattas ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Regatta
	for rows.Next() {
		var g Regatta
		if err := rows.Scan(&g.ID, &g.Name, &g.Location, &g.StartDate, &g.EndDate); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *RegattaRepo) EventCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE regatta_id = ?`, id).Scan(&n)
	return n, err
}

func (r *RegattaRepo) EntryCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM entries e
	JOIN events ev ON e.event_id = ev.event_id
	WHERE ev.regatta_id = ?`, id).Scan(&n)
	return n, err
}

// DeleteCounts reports what a cascade delete removed.
type DeleteCounts struct {
	Results  int64
	Entries  int64
	Events   int64
	Regattas int64
}

// Delete removes a regatta and everything under it, returning counts for the
// confirmation summary shown to the user.
func (r *RegattaRepo) Delete(ctx context.Context, id int64) (DeleteCounts, error) {
	var counts DeleteCounts
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
	DELETE FROM results WHERE entry_id IN (
		SELECT e.entry_id FROM entries e
		JOIN events ev ON e.event_id = ev.event_id
		WHERE ev.regatta_id = ?
	)`, id)
	if err != nil {
		return counts, err
	}
	counts.Results, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `
	DELETE FROM entries WHERE event_id IN (SELECT event_id FROM events WHERE regatta_id = ?)`, id)
	if err != nil {
		return counts, err
	}
	counts.Entries, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM events WHERE regatta_id = ?`, id)
	if err != nil {
		return counts, err
	}
	counts.Events, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM regattas WHERE regatta_id = ?`, id)
	if err != nil {
		return counts, err
	}
	counts.Regattas, _ = res.RowsAffected()

	return counts, tx.Commit()
}
