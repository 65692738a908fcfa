package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
	"github.com/Likhith025/timetablegen/pkg/jobs"
)

type timetableVersionStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, version *models.TimetableVersion) error
	Latest(ctx context.Context, timetableID string) (*models.TimetableVersion, error)
	History(ctx context.Context, timetableID string, limit int) ([]models.TimetableVersion, error)
	UpdateResult(ctx context.Context, exec sqlx.ExtContext, id string, result types.JSONText) error
}

type resultGenerator interface {
	GenerateSeeded(cat models.Catalogue, seed int64) (*models.GenerationResult, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type generationObserver interface {
	ObserveGeneration(status string, conflicts int, duration time.Duration)
	RecordCacheOperation(hit bool)
}

// TimetableService orchestrates generation runs and versioned persistence.
type TimetableService struct {
	generator resultGenerator
	versions  timetableVersionStore
	cache     resultCache
	queue     jobEnqueuer
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// TimetableServiceConfig governs caching behaviour.
type TimetableServiceConfig struct {
	CacheTTL time.Duration
}

// NewTimetableService wires timetable dependencies. Cache and queue are
// optional; a nil cache disables read-through caching and a nil queue
// rejects async requests.
func NewTimetableService(
	generator resultGenerator,
	versions timetableVersionStore,
	cache resultCache,
	queue jobEnqueuer,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TimetableService{
		generator: generator,
		versions:  versions,
		cache:     cache,
		queue:     queue,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cacheTTL:  cfg.CacheTTL,
	}
}

// AttachQueue wires the async queue after construction. The queue's handler
// is this service, so the two cannot be built in one step.
func (s *TimetableService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// GenerationJobType identifies async generation jobs on the queue.
const GenerationJobType = "timetable.generate"

func cacheKeyLatest(timetableID string) string {
	return fmt.Sprintf("timetable:%s:latest", timetableID)
}

// Generate runs the pipeline synchronously, persists the result as the next
// version and returns it.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	start := time.Now()
	result, err := s.generator.GenerateSeeded(req.Catalogue(), req.Seed)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(string(result.GenerationStatus), len(result.Conflicts), time.Since(start))
	}

	record, err := s.persist(ctx, req.TimetableID, result)
	if err != nil {
		return nil, err
	}

	s.logger.Info("timetable generated",
		zap.String("timetableId", req.TimetableID),
		zap.Int("version", record.Version),
		zap.String("status", string(result.GenerationStatus)),
		zap.Int("conflicts", len(result.Conflicts)),
	)

	return &dto.GenerateTimetableResponse{
		TimetableID: req.TimetableID,
		VersionID:   record.ID,
		Version:     record.Version,
		Result:      result,
	}, nil
}

// GenerateAsync validates the payload and enqueues a background generation
// run. Callers poll Latest for the outcome.
func (s *TimetableService) GenerateAsync(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.AsyncGenerationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "background generation is disabled")
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    GenerationJobType,
		Payload: req,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue generation job")
	}

	s.logger.Info("timetable generation enqueued",
		zap.String("timetableId", req.TimetableID),
		zap.String("jobId", job.ID),
	)

	return &dto.AsyncGenerationResponse{
		JobID:       job.ID,
		TimetableID: req.TimetableID,
		Status:      "queued",
	}, nil
}

// HandleGenerationJob is the queue handler for async runs.
func (s *TimetableService) HandleGenerationJob(ctx context.Context, job jobs.Job) error {
	req, ok := job.Payload.(dto.GenerateTimetableRequest)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for job %s", job.Payload, job.ID)
	}

	start := time.Now()
	result, err := s.generator.GenerateSeeded(req.Catalogue(), req.Seed)
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveGeneration(string(result.GenerationStatus), len(result.Conflicts), time.Since(start))
	}
	if _, err := s.persist(ctx, req.TimetableID, result); err != nil {
		return err
	}
	return nil
}

// Latest returns the most recent stored version, serving from cache when
// possible.
func (s *TimetableService) Latest(ctx context.Context, timetableID string) (*dto.GenerateTimetableResponse, error) {
	if timetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}

	if s.cache != nil {
		var cached dto.GenerateTimetableResponse
		if err := s.cache.Get(ctx, cacheKeyLatest(timetableID), &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("cache lookup failed", zap.String("timetableId", timetableID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	record, err := s.versions.Latest(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest timetable")
	}

	result, err := decodeResult(record.Result)
	if err != nil {
		return nil, err
	}

	resp := &dto.GenerateTimetableResponse{
		TimetableID: record.TimetableID,
		VersionID:   record.ID,
		Version:     record.Version,
		Result:      result,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyLatest(timetableID), resp, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.String("timetableId", timetableID), zap.Error(err))
		}
	}
	return resp, nil
}

// History lists stored versions, newest first.
func (s *TimetableService) History(ctx context.Context, query dto.TimetableHistoryQuery) ([]models.TimetableVersion, error) {
	if query.TimetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	list, err := s.versions.History(ctx, query.TimetableID, query.Limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable history")
	}
	return list, nil
}

func (s *TimetableService) persist(ctx context.Context, timetableID string, result *models.GenerationResult) (*models.TimetableVersion, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode generation result")
	}

	record := &models.TimetableVersion{
		TimetableID: timetableID,
		Status:      string(result.GenerationStatus),
		Result:      types.JSONText(payload),
	}
	if err := s.versions.CreateVersioned(ctx, nil, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable version")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("timetable:%s:*", timetableID)); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("timetableId", timetableID), zap.Error(err))
		}
	}
	return record, nil
}

func decodeResult(raw types.JSONText) (*models.GenerationResult, error) {
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, "stored timetable version has no result payload")
	}
	var result models.GenerationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode generation result")
	}
	return &result, nil
}
