package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

type timetableGeneratorMock struct {
	captured dto.GenerateTimetableRequest
	latest   *dto.GenerateTimetableResponse
	err      error
}

func (m *timetableGeneratorMock) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateTimetableResponse{TimetableID: req.TimetableID, VersionID: "ver-1", Version: 1}, nil
}

func (m *timetableGeneratorMock) GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.AsyncGenerationResponse, error) {
	m.captured = req
	return &dto.AsyncGenerationResponse{JobID: "job-1", TimetableID: req.TimetableID, Status: "queued"}, nil
}

func (m *timetableGeneratorMock) Latest(ctx context.Context, timetableID string) (*dto.GenerateTimetableResponse, error) {
	if m.latest == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
	}
	return m.latest, nil
}

func (m *timetableGeneratorMock) History(ctx context.Context, query dto.TimetableHistoryQuery) ([]models.TimetableVersion, error) {
	return nil, m.err
}

func generatePayload(t *testing.T, async bool) []byte {
	t.Helper()
	payload, err := json.Marshal(dto.GenerateTimetableRequest{
		TimetableID: "tt-1",
		Rooms:       []models.Room{{ID: "R101", Capacity: 40}},
		Faculty:     []models.Faculty{{ID: "F1", Name: "Ada"}},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}}, ClassesWeek: 2},
		},
		TimeSlots: []models.TimeSlot{
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00", ApplicableTo: []string{"9-A"}},
		},
		Async: async,
	})
	require.NoError(t, err)
	return payload
}

func TestTimetableHandlerGenerateSync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{}
	handler := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(generatePayload(t, false)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "tt-1", mockSvc.captured.TimetableID)
}

func TestTimetableHandlerGenerateAsync(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{}
	handler := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader(generatePayload(t, true)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.True(t, mockSvc.captured.Async)
}

func TestTimetableHandlerGenerateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableGeneratorMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetables/generate", bytes.NewReader([]byte(`{"timetableId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Generate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerLatestNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &TimetableHandler{service: &timetableGeneratorMock{}}
	router := gin.New()
	router.GET("/timetables/:id", handler.Latest)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerLatestOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableGeneratorMock{latest: &dto.GenerateTimetableResponse{TimetableID: "tt-1", Version: 4}}
	handler := &TimetableHandler{service: mockSvc}
	router := gin.New()
	router.GET("/timetables/:id", handler.Latest)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/timetables/tt-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"version":4`)
}
