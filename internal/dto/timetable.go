package dto

import (
	"github.com/Likhith025/timetablegen/internal/models"
)

// GenerateTimetableRequest carries the five catalogues supplied wholesale for
// one generation run, plus optional reproducibility and async controls.
type GenerateTimetableRequest struct {
	TimetableID   string                `json:"timetableId" validate:"required"`
	Rooms         []models.Room         `json:"rooms" validate:"required,min=1,dive"`
	Faculty       []models.Faculty      `json:"faculty" validate:"required,min=1,dive"`
	GradeSections []models.GradeSection `json:"gradeSections" validate:"required,min=1,dive"`
	Subjects      []models.Subject      `json:"subjects" validate:"required,min=1,dive"`
	TimeSlots     []models.TimeSlot     `json:"timeSlots" validate:"required,min=1,dive"`
	Seed          int64                 `json:"seed"`
	Async         bool                  `json:"async"`
}

// Catalogue bundles the request catalogues for the engine.
func (r GenerateTimetableRequest) Catalogue() models.Catalogue {
	return models.Catalogue{
		Rooms:         r.Rooms,
		Faculty:       r.Faculty,
		GradeSections: r.GradeSections,
		Subjects:      r.Subjects,
		TimeSlots:     r.TimeSlots,
	}
}

// GenerateTimetableResponse returns the persisted run.
type GenerateTimetableResponse struct {
	TimetableID string                   `json:"timetableId"`
	VersionID   string                   `json:"versionId"`
	Version     int                      `json:"version"`
	Result      *models.GenerationResult `json:"result"`
}

// AsyncGenerationResponse acknowledges a queued generation job.
type AsyncGenerationResponse struct {
	JobID       string `json:"jobId"`
	TimetableID string `json:"timetableId"`
	Status      string `json:"status"`
}

// TimetableHistoryQuery filters persisted versions.
type TimetableHistoryQuery struct {
	TimetableID string `form:"timetableId" json:"timetableId"`
	Limit       int    `form:"limit" json:"limit"`
}
