package repository

import (
	"fmt"
	"time"
)

// Rowing domain vocabulary. Gender and weight codes follow the CRR convention.
var (
	BoatTypes        = []string{"8+", "4+", "4x", "2x", "2-", "1x"}
	EventBoatClasses = []string{"1V", "2V", "3V", "4V", "5V"}
	Genders          = []string{"M", "W"}
	Weights          = []string{"LW", "HW", "OW"}
	Rounds           = []string{"Heat", "Semi", "Final", "Time Trial", "Scrimmage"}
)

var (
	genderDisplay = map[string]string{"M": "Men's", "W": "Women's"}
	weightDisplay = map[string]string{"LW": "Lightweight", "HW": "Heavyweight", "OW": "Openweight"}
)

// School represents a school row. CRRName is the display identifier used
// throughout the system; it is unique across schools.
type School struct {
	ID        int64
	Name      string
	ShortName string
	Acronym   string
	CRRName   string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the preferred short form.
func (s School) DisplayName() string {
	if s.ShortName != "" {
		return s.ShortName
	}
	return s.Name
}

// ConferenceAffiliation is a team's conference membership over a date range.
// A nil EndDate marks the current affiliation.
type ConferenceAffiliation struct {
	ID         int64
	TeamID     int64
	Conference string
	StartDate  string // YYYY-MM-DD
	EndDate    *string
}

// Current reports whether this affiliation is still open.
func (a ConferenceAffiliation) Current() bool { return a.EndDate == nil }

// SchoolParticipation records which squads a school fields in a season.
type SchoolParticipation struct {
	ID               int64
	SchoolID         int64
	StartDate        string
	EndDate          *string
	OpenweightWomen  bool
	HeavyweightMen   bool
	LightweightMen   bool
	LightweightWomen bool
}

// Regatta is a competition grouping multiple events.
type Regatta struct {
	ID        int64
	Name      string
	Location  string
	StartDate string
	EndDate   string
}

// DisplayName returns e.g. "Head of the Charles - (2024-10-19)".
func (r Regatta) DisplayName() string {
	if r.StartDate != "" {
		return fmt.Sprintf("%s - (%s)", r.Name, r.StartDate)
	}
	return r.Name
}

// Event is a single race within a regatta.
type Event struct {
	ID          int64
	RegattaID   int64
	BoatType    string
	BoatClass   string // '1V', '2V', ...
	Gender      string
	Weight      string
	Round       string
	Distance    string
	ScheduledAt *string
}

// DisplayName returns e.g. "Openweight Women's 1V 8+ - Final".
func (e Event) DisplayName() string {
	name := fmt.Sprintf("%s %s %s %s - %s",
		weightDisplay[e.Weight], genderDisplay[e.Gender], e.BoatClass, e.BoatType, e.Round)
	if e.ScheduledAt != nil && *e.ScheduledAt != "" {
		name += " at " + *e.ScheduledAt
	}
	return name
}

// Entry is a team's entry into an event. ConferenceAtTime captures the team's
// conference on the event date so later realignment does not rewrite history.
type Entry struct {
	ID               int64
	EventID          int64
	TeamID           int64
	BoatClass        *string // override of the event boat class, rarely set
	ConferenceAtTime string
	Seed             *int64
	Notes            string
}

// Result is the outcome of one entry.
type Result struct {
	ID         int64
	EntryID    int64
	Lane       *int64
	Position   *int64
	ElapsedSec *float64
	MarginSec  *float64
}

// EntryRow is an entry joined with its school and result for display.
type EntryRow struct {
	EntryID    int64
	CRRName    string
	BoatClass  *string
	Lane       *int64
	Position   *int64
	ElapsedSec *float64
	Notes      string
}

// SchoolChange is an audit record of a school edit.
type SchoolChange struct {
	ID         string
	SchoolID   int64
	ChangeType string // school_created, school_updated, crr_name_changed
	Field      string
	OldValue   string
	NewValue   string
	CreatedAt  time.Time
}
