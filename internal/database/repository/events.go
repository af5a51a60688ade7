package repository

import (
	"context"
	"database/sql"
)

// EventRepo handles events.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Create(ctx context.Context, e Event) (int64, error) {
	if e.Distance == "" {
		e.Distance = "2k"
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO events(regatta_id, boat_type, event_boat_class, gender, weight, round, event_distance, scheduled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RegattaID, e.BoatType, e.BoatClass, e.Gender, e.Weight, e.Round, e.Distance, e.ScheduledAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *EventRepo) Get(ctx context.Context, id int64) (*Event, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT event_id, regatta_id, boat_type, event_boat_class, gender, weight, round,
	       COALESCE(event_distance,'2k'), scheduled_at
	FROM events WHERE event_id = ?`, id)
	var e Event
	if err := row.Scan(&e.ID, &e.RegattaID, &e.BoatType, &e.BoatClass, &e.Gender, &e.Weight,
		&e.Round, &e.Distance, &e.ScheduledAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// ForRegatta returns a regatta's events in schedule order.
func (r *EventRepo) ForRegatta(ctx context.Context, regattaID int64) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT event_id, regatta_id, boat_type, event_boat_class, gender, weight, round,
	       COALESCE(event_distance,'2k'), scheduled_at
	FROM events
	WHERE regatta_id = ?
	ORDER BY scheduled_at, gender, weight, event_boat_class`, regattaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RegattaID, &e.BoatType, &e.BoatClass, &e.Gender, &e.Weight,
			&e.Round, &e.Distance, &e.ScheduledAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Date returns the effective date of an event: its scheduled time if set,
// otherwise the regatta start date.
func (r *EventRepo) Date(ctx context.Context, id int64) (string, error) {
	var date string
	err := r.db.QueryRowContext(ctx, `
	SELECT COALESCE(e.scheduled_at, r.start_date, '2024-01-01')
	FROM events e
	JOIN regattas r ON e.regatta_id = r.regatta_id
	WHERE e.event_id = ?`, id).Scan(&date)
	return date, err
}

func (r *EventRepo) EntryCount(ctx context.Context, id int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries WHERE event_id = ?`, id).Scan(&n)
	return n, err
}

// Delete removes an event with its entries and results, returning counts.
func (r *EventRepo) Delete(ctx context.Context, id int64) (DeleteCounts, error) {
	var counts DeleteCounts
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM results WHERE entry_id IN (SELECT entry_id FROM entries WHERE event_id = ?)`, id)
	if err != nil {
		return counts, err
	}
	counts.Results, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE event_id = ?`, id)
	if err != nil {
		return counts, err
	}
	counts.Entries, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, `DELETE FROM events WHERE event_id = ?`, id)
	if err != nil {
		return counts, err
	}
	counts.Events, _ = res.RowsAffected()

	return counts, tx.Commit()
}
