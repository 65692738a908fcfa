package models

import "time"

// ChangeRequestStatus tracks the approval lifecycle of a slot move.
type ChangeRequestStatus string

const (
	ChangeRequestStatusPending  ChangeRequestStatus = "PENDING"
	ChangeRequestStatusApproved ChangeRequestStatus = "APPROVED"
	ChangeRequestStatusRejected ChangeRequestStatus = "REJECTED"
)

// ChangeRequest asks to move exactly one schedule entry, identified by
// (grade-section, day, current slot), to a different weekly slot.
type ChangeRequest struct {
	ID            string              `db:"id" json:"id"`
	TimetableID   string              `db:"timetable_id" json:"timetable_id"`
	GradeSection  string              `db:"grade_section" json:"grade_section"`
	Day           string              `db:"day" json:"day"`
	CurrentSlot   string              `db:"current_slot" json:"current_slot"`
	RequestedSlot string              `db:"requested_slot" json:"requested_slot"`
	Reason        string              `db:"reason" json:"reason"`
	Status        ChangeRequestStatus `db:"status" json:"status"`
	DecidedBy     *string             `db:"decided_by" json:"decided_by,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}
