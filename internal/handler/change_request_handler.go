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

type changeRequester interface {
	Create(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ChangeRequest, error)
	Decide(ctx context.Context, requestID string, decision dto.DecideChangeRequest) (*models.ChangeRequest, error)
}

// ChangeRequestHandler exposes the slot move workflow.
type ChangeRequestHandler struct {
	service changeRequester
}

// NewChangeRequestHandler constructs the handler.
func NewChangeRequestHandler(svc *service.ChangeRequestService) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: svc}
}

// Create godoc
// @Summary File a request to move one schedule entry to another slot
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateChangeRequest true "Change request payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /change-requests [post]
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	var req dto.CreateChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid change request payload"))
		return
	}
	record, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List change requests for a timetable
// @Tags ChangeRequests
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	list, err := h.service.ListByTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Decide godoc
// @Summary Approve or reject a pending change request
// @Description Approval re-validates faculty, room and section non-overlap at the target slot before patching the stored result.
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param payload body dto.DecideChangeRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /change-requests/{id}/decision [post]
func (h *ChangeRequestHandler) Decide(c *gin.Context) {
	var decision dto.DecideChangeRequest
	if err := c.ShouldBindJSON(&decision); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid decision payload"))
		return
	}
	record, err := h.service.Decide(c.Request.Context(), c.Param("id"), decision)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
