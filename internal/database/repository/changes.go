package repository

import (
	"context"
	"database/sql"
)

// ChangeRepo persists the school-edit audit trail.
type ChangeRepo struct {
	db *sql.DB
}

func NewChangeRepo(db *sql.DB) *ChangeRepo { return &ChangeRepo{db: db} }

func (r *ChangeRepo) Add(ctx context.Context, c SchoolChange) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO school_changes(change_id, school_id, change_type, field, old_value, new_value)
	VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.SchoolID, c.ChangeType, c.Field, c.OldValue, c.NewValue)
	return err
}

// ForSchool returns a school's audit records, newest first.
func (r *ChangeRepo) ForSchool(ctx context.Context, schoolID int64) ([]SchoolChange, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT change_id, school_id, change_type, field, old_value, new_value, created_at
	FROM school_changes
	WHERE school_id = ?
	ORDER BY created_at DESC`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SchoolChange
	for rows.Next() {
		var c SchoolChange
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.ChangeType, &c.Field, &c.OldValue, &c.NewValue, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
