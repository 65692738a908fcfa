package models

import "fmt"

// RoomPolicy controls how a grade-section acquires rooms during generation.
type RoomPolicy string

const (
	// RoomPolicyFixed dedicates a single room to the grade-section for the run.
	RoomPolicyFixed RoomPolicy = "same"
	// RoomPolicyFlexible draws rooms from the shared pool per slot.
	RoomPolicyFlexible RoomPolicy = "any"
)

// Room is an immutable catalogue entry.
type Room struct {
	ID       string `json:"room" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Building string `json:"building"`
}

// Faculty is an immutable catalogue entry.
type Faculty struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
	Mail string `json:"mail"`
}

// SectionKey identifies one class cohort by grade and section label.
type SectionKey struct {
	Grade   string
	Section string
}

// String renders the canonical "grade-section" key.
func (k SectionKey) String() string {
	return fmt.Sprintf("%s-%s", k.Grade, k.Section)
}

// GradeSection describes one class cohort and its room policy.
type GradeSection struct {
	Grade    string     `json:"grade" validate:"required"`
	Section  string     `json:"section" validate:"required"`
	Strength int        `json:"strength" validate:"min=0"`
	Policy   RoomPolicy `json:"classAssignmentType" validate:"required,oneof=same any"`
}

// Key returns the composite grade-section key.
func (g GradeSection) Key() SectionKey {
	return SectionKey{Grade: g.Grade, Section: g.Section}
}

// SectionRef points at a grade-section from a subject definition.
type SectionRef struct {
	Grade   string `json:"grade" validate:"required"`
	Section string `json:"section" validate:"required"`
}

// Key returns the composite grade-section key.
func (r SectionRef) Key() SectionKey {
	return SectionKey{Grade: r.Grade, Section: r.Section}
}

// Subject describes one teachable subject and its weekly demand.
type Subject struct {
	Code            string       `json:"code" validate:"required"`
	Name            string       `json:"subject" validate:"required"`
	FacultyIDs      []string     `json:"facultyIds" validate:"required,min=1"`
	GradeSections   []SectionRef `json:"gradeSections" validate:"required,min=1,dive"`
	ClassesWeek     int          `json:"classesWeek" validate:"required,min=1"`
	IsCombined      bool         `json:"isCombined"`
	AssignedClasses []string     `json:"assignedClasses"`
}

// TimeSlot is a day-specific catalogue entry. Multiple entries may share the
// same start/end pair across different days and applicability sets.
type TimeSlot struct {
	Day          string   `json:"day" validate:"required"`
	StartTime    string   `json:"startTime" validate:"required"`
	EndTime      string   `json:"endTime" validate:"required"`
	ApplicableTo []string `json:"applicableTo" validate:"required,min=1"`
}

// WeeklyKey derives the day-independent "start-end" slot key.
func (t TimeSlot) WeeklyKey() string {
	return t.StartTime + "-" + t.EndTime
}

// Catalogue bundles the five catalogues supplied wholesale per generation.
type Catalogue struct {
	Rooms         []Room         `json:"rooms"`
	Faculty       []Faculty      `json:"faculty"`
	GradeSections []GradeSection `json:"gradeSections"`
	Subjects      []Subject      `json:"subjects"`
	TimeSlots     []TimeSlot     `json:"timeSlots"`
}
