package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/collegeite/rowingdb/internal/database/repository"
)

// SchoolListener is notified after school data changes. CRR name changes get
// their own callback because other tables reference schools by id and only
// display layers need to react.
type SchoolListener interface {
	SchoolCreated(schoolID int64)
	SchoolUpdated(schoolID int64, field string)
	CRRNameChanged(schoolID int64, oldName, newName string)
}

// SchoolAuditor wraps school edits with audit records and listener fan-out.
type SchoolAuditor struct {
	Schools   *repository.SchoolRepo
	Changes   *repository.ChangeRepo
	listeners []SchoolListener
}

func (a *SchoolAuditor) AddListener(l SchoolListener) {
	a.listeners = append(a.listeners, l)
}

// CreateSchool creates a school and records the creation.
func (a *SchoolAuditor) CreateSchool(ctx context.Context, s repository.School) (int64, error) {
	id, err := a.Schools.Create(ctx, s)
	if err != nil {
		return 0, err
	}
	rec := repository.SchoolChange{
		ID:         uuid.NewString(),
		SchoolID:   id,
		ChangeType: "school_created",
		Field:      "crr_name",
		NewValue:   s.CRRName,
	}
	if rec.NewValue == "" {
		rec.NewValue = s.Name
	}
	if err := a.Changes.Add(ctx, rec); err != nil {
		return id, fmt.Errorf("record creation of school %d: %w", id, err)
	}
	for _, l := range a.listeners {
		l.SchoolCreated(id)
	}
	return id, nil
}

// UpdateField updates one school field, records the old and new values, and
// notifies listeners. CRR name edits raise CRRNameChanged instead of the
// generic update callback.
func (a *SchoolAuditor) UpdateField(ctx context.Context, schoolID int64, field, value string) error {
	before, err := a.Schools.Get(ctx, schoolID)
	if err != nil {
		return err
	}
	if before == nil {
		return fmt.Errorf("school %d not found", schoolID)
	}
	oldValue := schoolFieldValue(*before, field)
	if oldValue == value {
		return nil
	}

	if err := a.Schools.UpdateField(ctx, schoolID, field, value); err != nil {
		return err
	}

	changeType := "school_updated"
	if field == "crr_name" {
		changeType = "crr_name_changed"
	}
	rec := repository.SchoolChange{
		ID:         uuid.NewString(),
		SchoolID:   schoolID,
		ChangeType: changeType,
		Field:      field,
		OldValue:   oldValue,
		NewValue:   value,
	}
	if err := a.Changes.Add(ctx, rec); err != nil {
		return fmt.Errorf("record update of school %d: %w", schoolID, err)
	}

	for _, l := range a.listeners {
		if field == "crr_name" {
			l.CRRNameChanged(schoolID, oldValue, value)
		} else {
			l.SchoolUpdated(schoolID, field)
		}
	}
	return nil
}

func schoolFieldValue(s repository.School, field string) string {
	switch field {
	case "name":
		return s.Name
	case "short_name":
		return s.ShortName
	case "acronym":
		return s.Acronym
	case "crr_name":
		return s.CRRName
	case "color":
		return s.Color
	}
	return ""
}
