package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	"github.com/Likhith025/timetablegen/internal/service"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
	"github.com/Likhith025/timetablegen/pkg/response"
)

type roomBlocker interface {
	Create(ctx context.Context, timetableID string, req dto.CreateRoomBlockRequest) (*models.RoomBlock, error)
	ListByDate(ctx context.Context, date string) ([]models.RoomBlock, error)
	Delete(ctx context.Context, id string) error
	Availability(ctx context.Context, query dto.RoomAvailabilityQuery) (*dto.RoomAvailabilityResponse, error)
}

// RoomBlockHandler exposes room reservation endpoints.
type RoomBlockHandler struct {
	service roomBlocker
}

// NewRoomBlockHandler constructs the handler.
func NewRoomBlockHandler(svc *service.RoomBlockService) *RoomBlockHandler {
	return &RoomBlockHandler{service: svc}
}

// Create godoc
// @Summary Block a room for a date and weekly slot
// @Tags Rooms
// @Accept json
// @Produce json
// @Param id path string true "Timetable ID"
// @Param payload body dto.CreateRoomBlockRequest true "Room block payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/{id}/room-blocks [post]
func (h *RoomBlockHandler) Create(c *gin.Context) {
	var req dto.CreateRoomBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid room block payload"))
		return
	}
	block, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// List godoc
// @Summary List room blocks for a date
// @Tags Rooms
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /room-blocks [get]
func (h *RoomBlockHandler) List(c *gin.Context) {
	blocks, err := h.service.ListByDate(c.Request.Context(), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Delete godoc
// @Summary Remove a room block
// @Tags Rooms
// @Param id path string true "Room block ID"
// @Success 204
// @Security BearerAuth
// @Router /room-blocks/{id} [delete]
func (h *RoomBlockHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Availability godoc
// @Summary List free rooms per weekly slot for a date
// @Description Overlays the latest generated schedule and recorded blocks. Free Period cells leave their room available.
// @Tags Rooms
// @Produce json
// @Param id path string true "Timetable ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/room-availability [get]
func (h *RoomBlockHandler) Availability(c *gin.Context) {
	query := dto.RoomAvailabilityQuery{
		TimetableID: c.Param("id"),
		Date:        c.Query("date"),
	}
	result, err := h.service.Availability(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
