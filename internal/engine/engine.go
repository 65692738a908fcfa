// Package engine implements the constraint-based weekly timetable generator.
// One invocation consumes the five catalogues wholesale and produces a single
// best-effort GenerationResult; all working state is scoped to the call, so
// concurrent generations for different timetables are safe.
package engine

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/models"
)

// Algorithm tags results produced by this generator.
const Algorithm = "constraint_heuristic_v2"

// Config governs generator behaviour. A zero Seed picks a time-based one, so
// fix the seed to reproduce a run.
type Config struct {
	Seed    int64
	Version string
}

// Engine builds conflict-minimized weekly timetables.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// New constructs an engine.
func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Generate runs the scheduling pipeline over the supplied catalogues using
// the configured seed. Missing catalogues abort with a structured error;
// every other shortfall degrades to a conflict note on the result.
func (e *Engine) Generate(cat models.Catalogue) (*models.GenerationResult, error) {
	return e.GenerateSeeded(cat, e.cfg.Seed)
}

// GenerateSeeded is Generate with a per-call seed override. A zero seed falls
// back to the configured one, then to wall-clock time.
func (e *Engine) GenerateSeeded(cat models.Catalogue, seed int64) (*models.GenerationResult, error) {
	idx, err := buildIndex(cat)
	if err != nil {
		return nil, err
	}

	if seed == 0 {
		seed = e.cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	state := newSchedulerState(idx, rand.New(rand.NewSource(seed)))

	state.checkCapacity()
	state.allocateRooms()
	state.mapConsistentAnchors()
	state.fillCoverage()
	state.scheduleDays()
	state.fillGaps()
	state.normalizeSchedules()

	result := state.assemble(e.cfg.Version)
	e.logger.Debug("generation finished",
		zap.String("status", string(result.GenerationStatus)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Int("sections", len(result.Schedules)),
		zap.Int64("seed", seed),
	)
	return result, nil
}

// assemble packages the schedules, conflicts and status tags.
func (s *schedulerState) assemble(version string) *models.GenerationResult {
	status := models.GenerationStatusSuccess
	if len(s.conflicts) > 0 {
		status = models.GenerationStatusPartial
	}

	schedules := make(map[string]map[string][]models.ScheduleEntry, len(s.idx.sections))
	for _, section := range s.idx.sections {
		key := section.Key()
		days := make(map[string][]models.ScheduleEntry, len(models.Weekdays))
		for _, day := range models.Weekdays {
			days[day] = s.schedules[key][day]
		}
		schedules[key.String()] = days
	}

	conflicts := s.conflicts
	if conflicts == nil {
		conflicts = make([]string, 0)
	}

	return &models.GenerationResult{
		GeneratedOn:      time.Now().UTC(),
		GenerationStatus: status,
		Conflicts:        conflicts,
		Schedules:        schedules,
		Algorithm:        Algorithm,
		Version:          version,
	}
}
