package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
	"github.com/Likhith025/timetablegen/pkg/jobs"
)

type stubGenerator struct {
	lastSeed int64
	result   *models.GenerationResult
	err      error
}

func (s *stubGenerator) GenerateSeeded(cat models.Catalogue, seed int64) (*models.GenerationResult, error) {
	s.lastSeed = seed
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubVersionStore struct {
	created []*models.TimetableVersion
	latest  *models.TimetableVersion
	history []models.TimetableVersion
	err     error
}

func (s *stubVersionStore) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error {
	if s.err != nil {
		return s.err
	}
	version.ID = "ver-stub"
	version.Version = len(s.created) + 1
	s.created = append(s.created, version)
	return nil
}

func (s *stubVersionStore) Latest(ctx context.Context, timetableID string) (*models.TimetableVersion, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.latest == nil {
		return nil, sql.ErrNoRows
	}
	return s.latest, nil
}

func (s *stubVersionStore) History(ctx context.Context, timetableID string, limit int) ([]models.TimetableVersion, error) {
	return s.history, s.err
}

func (s *stubVersionStore) UpdateResult(ctx context.Context, exec sqlx.ExtContext, id string, result types.JSONText) error {
	return s.err
}

type stubCache struct {
	values  map[string][]byte
	deleted []string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string][]byte{}}
}

func (s *stubCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *stubCache) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	for key := range s.values {
		delete(s.values, key)
	}
	return nil
}

type stubQueue struct {
	jobs []jobs.Job
	err  error
}

func (s *stubQueue) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func sampleResult(status models.GenerationStatus) *models.GenerationResult {
	return &models.GenerationResult{
		GeneratedOn:      time.Now().UTC(),
		GenerationStatus: status,
		Conflicts:        []string{},
		Schedules: map[string]map[string][]models.ScheduleEntry{
			"9-A": {
				"Monday": {
					{TimeSlot: "09:00-10:00", Subject: "Mathematics", Faculty: "F1", Room: "R101"},
				},
			},
		},
		Algorithm: "constraint_heuristic_v2",
		Version:   "1.0.0",
	}
}

func sampleRequest() dto.GenerateTimetableRequest {
	return dto.GenerateTimetableRequest{
		TimetableID: "tt-1",
		Rooms:       []models.Room{{ID: "R101", Capacity: 40}},
		Faculty:     []models.Faculty{{ID: "F1", Name: "Ada"}},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}}, ClassesWeek: 4},
		},
		TimeSlots: []models.TimeSlot{
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00", ApplicableTo: []string{"9-A"}},
		},
		Seed: 42,
	}
}

func TestTimetableServiceGeneratePersistsVersion(t *testing.T) {
	gen := &stubGenerator{result: sampleResult(models.GenerationStatusSuccess)}
	store := &stubVersionStore{}
	cache := newStubCache()
	svc := NewTimetableService(gen, store, cache, nil, nil, nil, nil, TimetableServiceConfig{})

	resp, err := svc.Generate(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), gen.lastSeed)
	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, "ver-stub", resp.VersionID)
	require.Len(t, store.created, 1)
	assert.Equal(t, "success", store.created[0].Status)
	assert.Contains(t, cache.deleted, "timetable:tt-1:*")
}

func TestTimetableServiceGenerateRejectsEmptyCatalogues(t *testing.T) {
	svc := NewTimetableService(&stubGenerator{}, &stubVersionStore{}, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	req := sampleRequest()
	req.Rooms = nil
	_, err := svc.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateAsyncEnqueues(t *testing.T) {
	queue := &stubQueue{}
	svc := NewTimetableService(&stubGenerator{}, &stubVersionStore{}, nil, queue, nil, nil, nil, TimetableServiceConfig{})

	resp, err := svc.GenerateAsync(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "queued", resp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, GenerationJobType, queue.jobs[0].Type)
}

func TestTimetableServiceGenerateAsyncWithoutQueue(t *testing.T) {
	svc := NewTimetableService(&stubGenerator{}, &stubVersionStore{}, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	_, err := svc.GenerateAsync(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceHandleGenerationJob(t *testing.T) {
	gen := &stubGenerator{result: sampleResult(models.GenerationStatusPartial)}
	store := &stubVersionStore{}
	svc := NewTimetableService(gen, store, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	job := jobs.Job{ID: "job-1", Type: GenerationJobType, Payload: sampleRequest()}
	require.NoError(t, svc.HandleGenerationJob(context.Background(), job))
	require.Len(t, store.created, 1)
	assert.Equal(t, "partial", store.created[0].Status)
}

func TestTimetableServiceLatestServesFromCache(t *testing.T) {
	store := &stubVersionStore{}
	cache := newStubCache()
	svc := NewTimetableService(&stubGenerator{}, store, cache, nil, nil, nil, nil, TimetableServiceConfig{})

	cached := dto.GenerateTimetableResponse{TimetableID: "tt-1", VersionID: "ver-9", Version: 9}
	require.NoError(t, cache.Set(context.Background(), "timetable:tt-1:latest", cached, time.Minute))

	resp, err := svc.Latest(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, 9, resp.Version)
}

func TestTimetableServiceLatestFallsBackToStore(t *testing.T) {
	payload, err := json.Marshal(sampleResult(models.GenerationStatusSuccess))
	require.NoError(t, err)
	store := &stubVersionStore{latest: &models.TimetableVersion{
		ID:          "ver-3",
		TimetableID: "tt-1",
		Version:     3,
		Status:      "success",
		Result:      types.JSONText(payload),
	}}
	cache := newStubCache()
	svc := NewTimetableService(&stubGenerator{}, store, cache, nil, nil, nil, nil, TimetableServiceConfig{})

	resp, err := svc.Latest(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Version)
	require.NotNil(t, resp.Result)
	assert.Equal(t, models.GenerationStatusSuccess, resp.Result.GenerationStatus)

	// Second read hits the cache.
	_, ok := cache.values["timetable:tt-1:latest"]
	assert.True(t, ok)
}

func TestTimetableServiceLatestNotFound(t *testing.T) {
	svc := NewTimetableService(&stubGenerator{}, &stubVersionStore{}, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	_, err := svc.Latest(context.Background(), "tt-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceHistoryRequiresID(t *testing.T) {
	svc := NewTimetableService(&stubGenerator{}, &stubVersionStore{}, nil, nil, nil, nil, nil, TimetableServiceConfig{})

	_, err := svc.History(context.Background(), dto.TimetableHistoryQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
