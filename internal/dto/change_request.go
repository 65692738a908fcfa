package dto

// CreateChangeRequest proposes moving one schedule entry to a new weekly slot.
type CreateChangeRequest struct {
	TimetableID   string `json:"timetableId" validate:"required"`
	GradeSection  string `json:"gradeSection" validate:"required"`
	Day           string `json:"day" validate:"required"`
	CurrentSlot   string `json:"currentTimeSlot" validate:"required"`
	RequestedSlot string `json:"requestedTimeSlot" validate:"required"`
	Reason        string `json:"reason"`
}

// DecideChangeRequest approves or rejects a pending change request.
type DecideChangeRequest struct {
	Approve   bool   `json:"approve"`
	DecidedBy string `json:"decidedBy" validate:"required"`
}
