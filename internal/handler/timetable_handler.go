package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	"github.com/Likhith025/timetablegen/internal/service"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
	"github.com/Likhith025/timetablegen/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.AsyncGenerationResponse, error)
	Latest(ctx context.Context, timetableID string) (*dto.GenerateTimetableResponse, error)
	History(ctx context.Context, query dto.TimetableHistoryQuery) ([]models.TimetableVersion, error)
}

// TimetableHandler exposes generation and history endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a weekly timetable from the five catalogues
// @Description Runs the constraint pipeline synchronously, or enqueues a background run when async is requested.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Security BearerAuth
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}

	if req.Async {
		result, err := h.service.GenerateAsync(c.Request.Context(), req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, result)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Latest godoc
// @Summary Get the latest generated timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) Latest(c *gin.Context) {
	result, err := h.service.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List stored timetable versions, newest first
// @Tags Timetables
// @Produce json
// @Param id path string true "Timetable ID"
// @Param limit query int false "Maximum versions to return"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/history [get]
func (h *TimetableHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	query := dto.TimetableHistoryQuery{
		TimetableID: c.Param("id"),
		Limit:       limit,
	}
	result, err := h.service.History(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
