package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

type changeRequestStore interface {
	Create(ctx context.Context, request *models.ChangeRequest) error
	FindByID(ctx context.Context, id string) (*models.ChangeRequest, error)
	ListByTimetable(ctx context.Context, timetableID string) ([]models.ChangeRequest, error)
	UpdateStatus(ctx context.Context, id string, status models.ChangeRequestStatus, decidedBy string) error
}

type versionPatcher interface {
	Latest(ctx context.Context, timetableID string) (*models.TimetableVersion, error)
	UpdateResult(ctx context.Context, exec sqlx.ExtContext, id string, result types.JSONText) error
}

// ChangeRequestService handles the request/approve workflow for moving a
// single schedule entry to a different weekly slot. Approval re-validates
// faculty, room and section non-overlap at the target slot before patching
// the stored result.
type ChangeRequestService struct {
	requests  changeRequestStore
	versions  versionPatcher
	cache     resultCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChangeRequestService wires change request dependencies.
func NewChangeRequestService(requests changeRequestStore, versions versionPatcher, cache resultCache, validate *validator.Validate, logger *zap.Logger) *ChangeRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRequestService{requests: requests, versions: versions, cache: cache, validator: validate, logger: logger}
}

// Create files a pending request after confirming the referenced entry
// actually exists in the latest stored result.
func (s *ChangeRequestService) Create(ctx context.Context, req dto.CreateChangeRequest) (*models.ChangeRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change request payload")
	}
	if req.CurrentSlot == req.RequestedSlot {
		return nil, appErrors.Clone(appErrors.ErrValidation, "requested slot must differ from the current one")
	}

	result, _, err := s.latestResult(ctx, req.TimetableID)
	if err != nil {
		return nil, err
	}
	if _, err := findEntry(result, req.GradeSection, req.Day, req.CurrentSlot); err != nil {
		return nil, err
	}

	record := &models.ChangeRequest{
		TimetableID:   req.TimetableID,
		GradeSection:  req.GradeSection,
		Day:           req.Day,
		CurrentSlot:   req.CurrentSlot,
		RequestedSlot: req.RequestedSlot,
		Reason:        req.Reason,
		Status:        models.ChangeRequestStatusPending,
	}
	if err := s.requests.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create change request")
	}
	return record, nil
}

// ListByTimetable returns every request filed against a timetable.
func (s *ChangeRequestService) ListByTimetable(ctx context.Context, timetableID string) ([]models.ChangeRequest, error) {
	if timetableID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetable id is required")
	}
	list, err := s.requests.ListByTimetable(ctx, timetableID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list change requests")
	}
	return list, nil
}

// Decide approves or rejects a pending request. Approval patches the latest
// stored result in place and invalidates cached views.
func (s *ChangeRequestService) Decide(ctx context.Context, requestID string, decision dto.DecideChangeRequest) (*models.ChangeRequest, error) {
	if err := s.validator.Struct(decision); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}

	record, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "change request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load change request")
	}
	if record.Status != models.ChangeRequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "change request already decided")
	}

	status := models.ChangeRequestStatusRejected
	if decision.Approve {
		if err := s.applyMove(ctx, record); err != nil {
			return nil, err
		}
		status = models.ChangeRequestStatusApproved
	}

	if err := s.requests.UpdateStatus(ctx, requestID, status, decision.DecidedBy); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update change request status")
	}

	record.Status = status
	record.DecidedBy = &decision.DecidedBy
	s.logger.Info("change request decided",
		zap.String("requestId", requestID),
		zap.String("status", string(status)),
	)
	return record, nil
}

func (s *ChangeRequestService) latestResult(ctx context.Context, timetableID string) (*models.GenerationResult, *models.TimetableVersion, error) {
	version, err := s.versions.Latest(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no timetable generated yet")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest timetable")
	}
	result, err := decodeResult(version.Result)
	if err != nil {
		return nil, nil, err
	}
	return result, version, nil
}

// applyMove patches the single targeted entry, re-checking the hard
// non-overlap rules at the destination slot first.
func (s *ChangeRequestService) applyMove(ctx context.Context, record *models.ChangeRequest) error {
	result, version, err := s.latestResult(ctx, record.TimetableID)
	if err != nil {
		return err
	}

	entry, err := findEntry(result, record.GradeSection, record.Day, record.CurrentSlot)
	if err != nil {
		return err
	}
	if err := validateMove(result, record, entry); err != nil {
		return err
	}

	entries := result.Schedules[record.GradeSection][record.Day]
	for i := range entries {
		if entries[i].TimeSlot == record.RequestedSlot && entries[i].Subject == models.FreePeriod {
			// The displaced Free Period takes over the vacated slot.
			entries[i].TimeSlot = record.CurrentSlot
			break
		}
	}
	entry.TimeSlot = record.RequestedSlot
	sort.SliceStable(entries, func(i, j int) bool {
		return slotStart(entries[i].TimeSlot) < slotStart(entries[j].TimeSlot)
	})

	payload, err := json.Marshal(result)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode patched result")
	}
	if err := s.versions.UpdateResult(ctx, nil, version.ID, types.JSONText(payload)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist patched result")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("timetable:%s:*", record.TimetableID)); err != nil {
			s.logger.Warn("cache invalidation failed", zap.String("timetableId", record.TimetableID), zap.Error(err))
		}
	}
	return nil
}

// findEntry locates the taught entry at (section, day, slot). Free Periods
// are not movable.
func findEntry(result *models.GenerationResult, section, day, slot string) (*models.ScheduleEntry, error) {
	days, ok := result.Schedules[section]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("grade-section %s not present in timetable", section))
	}
	entries, ok := days[day]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no schedule stored for %s on %s", section, day))
	}
	for i := range entries {
		if entries[i].TimeSlot == slot && entries[i].Subject != models.FreePeriod {
			return &entries[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no class scheduled for %s on %s at %s", section, day, slot))
}

// validateMove enforces faculty, room and section non-overlap at the target
// slot across every section on the same day.
func validateMove(result *models.GenerationResult, record *models.ChangeRequest, moving *models.ScheduleEntry) error {
	for section, days := range result.Schedules {
		for _, other := range days[record.Day] {
			if other.TimeSlot != record.RequestedSlot || other.Subject == models.FreePeriod {
				continue
			}
			if section == record.GradeSection {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already has a class at %s on %s", section, record.RequestedSlot, record.Day))
			}
			if other.Faculty != "" && other.Faculty == moving.Faculty {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("faculty %s is teaching %s at %s on %s", moving.Faculty, section, record.RequestedSlot, record.Day))
			}
			if other.Room != "" && other.Room == moving.Room {
				return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("room %s is occupied by %s at %s on %s", moving.Room, section, record.RequestedSlot, record.Day))
			}
		}
	}
	return nil
}

func slotStart(slot string) string {
	if idx := strings.Index(slot, "-"); idx > 0 {
		return slot[:idx]
	}
	return slot
}
