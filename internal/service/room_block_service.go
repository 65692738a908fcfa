package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/dto"
	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

type roomBlockStore interface {
	Create(ctx context.Context, block *models.RoomBlock) error
	ListByDate(ctx context.Context, date string) ([]models.RoomBlock, error)
	Delete(ctx context.Context, id string) error
}

type latestTimetableReader interface {
	Latest(ctx context.Context, timetableID string) (*dto.GenerateTimetableResponse, error)
}

// RoomBlockService manages ad-hoc room reservations and computes which rooms
// remain free once the generated schedule and existing blocks are overlaid.
type RoomBlockService struct {
	blocks     roomBlockStore
	timetables latestTimetableReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRoomBlockService wires room block dependencies.
func NewRoomBlockService(blocks roomBlockStore, timetables latestTimetableReader, validate *validator.Validate, logger *zap.Logger) *RoomBlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomBlockService{blocks: blocks, timetables: timetables, validator: validate, logger: logger}
}

// Create records a block after confirming the room is actually free at the
// requested date and slot.
func (s *RoomBlockService) Create(ctx context.Context, timetableID string, req dto.CreateRoomBlockRequest) (*models.RoomBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room block payload")
	}

	availability, err := s.Availability(ctx, dto.RoomAvailabilityQuery{TimetableID: timetableID, Date: req.Date})
	if err != nil && appErrors.FromError(err).Code != appErrors.ErrNotFound.Code {
		return nil, err
	}
	if availability != nil {
		if !roomFreeAt(availability.Availability, req.TimeSlot, req.RoomID) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room is occupied or already blocked at the requested slot")
		}
	}

	block := &models.RoomBlock{
		RoomID:    req.RoomID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Purpose:   req.Purpose,
		BlockedBy: req.BlockedBy,
	}
	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room block")
	}

	s.logger.Info("room blocked",
		zap.String("roomId", block.RoomID),
		zap.String("date", block.Date),
		zap.String("timeSlot", block.TimeSlot),
	)
	return block, nil
}

// ListByDate returns the blocks recorded for one calendar date.
func (s *RoomBlockService) ListByDate(ctx context.Context, date string) ([]models.RoomBlock, error) {
	if date == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	list, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room blocks")
	}
	return list, nil
}

// Delete removes a block.
func (s *RoomBlockService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room block id is required")
	}
	if err := s.blocks.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "room block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room block")
	}
	return nil
}

// Availability lists free rooms per weekly slot for the date. A Free Period
// entry keeps its dedicated room available; only taught classes and explicit
// blocks occupy.
func (s *RoomBlockService) Availability(ctx context.Context, query dto.RoomAvailabilityQuery) (*dto.RoomAvailabilityResponse, error) {
	if query.TimetableID == "" || query.Date == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "timetableId and date are required")
	}
	parsed, err := time.Parse("2006-01-02", query.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	day := parsed.Weekday().String()

	latest, err := s.timetables.Latest(ctx, query.TimetableID)
	if err != nil {
		return nil, err
	}
	if latest.Result == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no generation result stored for timetable")
	}

	blocks, err := s.blocks.ListByDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room blocks")
	}

	return &dto.RoomAvailabilityResponse{
		Date:         query.Date,
		Day:          day,
		Availability: computeAvailability(latest.Result, day, blocks),
	}, nil
}

// computeAvailability derives the room universe from the rooms the result
// references, then subtracts occupied and blocked rooms per slot.
func computeAvailability(result *models.GenerationResult, day string, blocks []models.RoomBlock) []models.RoomAvailability {
	universe := map[string]struct{}{}
	occupied := map[string]map[string]struct{}{}
	slots := map[string]struct{}{}

	for _, days := range result.Schedules {
		for entryDay, entries := range days {
			for _, entry := range entries {
				if entry.Room != "" {
					universe[entry.Room] = struct{}{}
				}
				slots[entry.TimeSlot] = struct{}{}
				if entryDay != day || entry.Subject == models.FreePeriod || entry.Room == "" {
					continue
				}
				if occupied[entry.TimeSlot] == nil {
					occupied[entry.TimeSlot] = map[string]struct{}{}
				}
				occupied[entry.TimeSlot][entry.Room] = struct{}{}
			}
		}
	}

	blocked := map[string]map[string]struct{}{}
	for _, block := range blocks {
		if blocked[block.TimeSlot] == nil {
			blocked[block.TimeSlot] = map[string]struct{}{}
		}
		blocked[block.TimeSlot][block.RoomID] = struct{}{}
	}

	slotAxis := make([]string, 0, len(slots))
	for slot := range slots {
		slotAxis = append(slotAxis, slot)
	}
	sort.Strings(slotAxis)

	availability := make([]models.RoomAvailability, 0, len(slotAxis))
	for _, slot := range slotAxis {
		free := make([]string, 0, len(universe))
		for room := range universe {
			if _, busy := occupied[slot][room]; busy {
				continue
			}
			if _, held := blocked[slot][room]; held {
				continue
			}
			free = append(free, room)
		}
		sort.Strings(free)
		availability = append(availability, models.RoomAvailability{TimeSlot: slot, FreeRooms: free})
	}
	return availability
}

func roomFreeAt(availability []models.RoomAvailability, slot, roomID string) bool {
	for _, entry := range availability {
		if entry.TimeSlot != slot {
			continue
		}
		for _, free := range entry.FreeRooms {
			if free == roomID {
				return true
			}
		}
		return false
	}
	// Slot absent from the generated axis: nothing occupies it.
	return true
}
