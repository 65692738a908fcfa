package dto

import "github.com/Likhith025/timetablegen/internal/models"

// CreateRoomBlockRequest reserves a room for a non-teaching purpose.
type CreateRoomBlockRequest struct {
	RoomID    string `json:"roomId" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot  string `json:"timeSlot" validate:"required"`
	Purpose   string `json:"purpose"`
	BlockedBy string `json:"blockedBy"`
}

// RoomAvailabilityQuery asks which rooms are free on a date.
type RoomAvailabilityQuery struct {
	TimetableID string `form:"timetableId" json:"timetableId"`
	Date        string `form:"date" json:"date"`
}

// RoomAvailabilityResponse lists free rooms per weekly slot for the date.
type RoomAvailabilityResponse struct {
	Date         string                    `json:"date"`
	Day          string                    `json:"day"`
	Availability []models.RoomAvailability `json:"availability"`
}
