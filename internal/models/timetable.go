package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// FreePeriod is the sentinel subject marking an explicitly unoccupied cell,
// distinct from a cell that has no entry at all.
const FreePeriod = "Free Period"

// Weekdays is the canonical day axis walked by the daily scheduler.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// GenerationStatus reports whether a run satisfied every hard goal.
type GenerationStatus string

const (
	GenerationStatusSuccess GenerationStatus = "success"
	GenerationStatusPartial GenerationStatus = "partial"
)

// ScheduleEntry is one realized cell: a (subject, faculty, room) triple bound
// to a weekly slot. Faculty is empty for Free Period entries.
type ScheduleEntry struct {
	TimeSlot string `json:"timeSlot"`
	Subject  string `json:"subject"`
	Faculty  string `json:"faculty"`
	Room     string `json:"room"`
}

// DaySchedule is the ordered sequence of entries for one grade-section on one
// day, at most one entry per weekly slot.
type DaySchedule []ScheduleEntry

// GenerationResult is the complete output of one engine invocation.
type GenerationResult struct {
	GeneratedOn      time.Time                            `json:"generatedOn"`
	GenerationStatus GenerationStatus                     `json:"generationStatus"`
	Conflicts        []string                             `json:"conflicts"`
	Schedules        map[string]map[string][]ScheduleEntry `json:"schedules"`
	Algorithm        string                               `json:"algorithm"`
	Version          string                               `json:"version"`
}

// TimetableVersion is one persisted GenerationResult within a timetable's
// append-only history.
type TimetableVersion struct {
	ID          string         `db:"id" json:"id"`
	TimetableID string         `db:"timetable_id" json:"timetable_id"`
	Version     int            `db:"version" json:"version"`
	Status      string         `db:"status" json:"status"`
	Result      types.JSONText `db:"result" json:"result"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
