package engine

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

func newTestEngine(seed int64) *Engine {
	return New(Config{Seed: seed, Version: "test"}, zap.NewNop())
}

func weekGrid(slots []string, sections ...string) []models.TimeSlot {
	var out []models.TimeSlot
	for _, day := range models.Weekdays {
		for _, slot := range slots {
			out = append(out, models.TimeSlot{
				Day:          day,
				StartTime:    slot[:5],
				EndTime:      slot[6:],
				ApplicableTo: sections,
			})
		}
	}
	return out
}

func fixtureCatalogue() models.Catalogue {
	return models.Catalogue{
		Rooms: []models.Room{
			{ID: "R1", Capacity: 40, Building: "Main"},
			{ID: "R2", Capacity: 40, Building: "Main"},
			{ID: "R3", Capacity: 60, Building: "Annex"},
		},
		Faculty: []models.Faculty{
			{ID: "F1", Name: "Asha Rao", Mail: "asha@school.test"},
			{ID: "F2", Name: "Vikram Iyer", Mail: "vikram@school.test"},
			{ID: "F3", Name: "Meera Nair", Mail: "meera@school.test"},
		},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
			{Grade: "9", Section: "B", Strength: 32, Policy: models.RoomPolicyFlexible},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}, {Grade: "9", Section: "B"}}, ClassesWeek: 4},
			{Code: "SCI", Name: "Science", FacultyIDs: []string{"F2"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}, {Grade: "9", Section: "B"}}, ClassesWeek: 3},
			{Code: "ENG", Name: "English", FacultyIDs: []string{"F3"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}, {Grade: "9", Section: "B"}}, ClassesWeek: 3},
		},
		TimeSlots: weekGrid(
			[]string{"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00"},
			"9-A", "9-B",
		),
	}
}

func TestGenerateMissingCatalogueIsFatal(t *testing.T) {
	cat := fixtureCatalogue()
	cat.Subjects = nil

	result, err := newTestEngine(1).Generate(cat)
	require.Error(t, err)
	assert.Nil(t, result)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestGenerateNoDoubleBooking(t *testing.T) {
	result, err := newTestEngine(7).Generate(fixtureCatalogue())
	require.NoError(t, err)

	type cell struct{ day, slot string }
	facultySeen := make(map[cell]map[string]bool)
	roomSeen := make(map[cell]map[string]bool)
	sectionSeen := make(map[cell]map[string]bool)

	for sectionKey, days := range result.Schedules {
		for day, entries := range days {
			slotSeen := make(map[string]bool)
			for _, entry := range entries {
				c := cell{day, entry.TimeSlot}
				assert.False(t, slotSeen[entry.TimeSlot], "duplicate slot %s for %s on %s", entry.TimeSlot, sectionKey, day)
				slotSeen[entry.TimeSlot] = true
				if sectionSeen[c] == nil {
					sectionSeen[c] = make(map[string]bool)
				}
				assert.False(t, sectionSeen[c][sectionKey], "section %s double-booked on %s at %s", sectionKey, day, entry.TimeSlot)
				sectionSeen[c][sectionKey] = true

				if entry.Subject == models.FreePeriod {
					assert.Empty(t, entry.Faculty, "free period must not hold a faculty")
					continue
				}
				if facultySeen[c] == nil {
					facultySeen[c] = make(map[string]bool)
				}
				assert.False(t, facultySeen[c][entry.Faculty], "faculty %s double-booked on %s at %s", entry.Faculty, day, entry.TimeSlot)
				facultySeen[c][entry.Faculty] = true

				if roomSeen[c] == nil {
					roomSeen[c] = make(map[string]bool)
				}
				assert.False(t, roomSeen[c][entry.Room], "room %s double-booked on %s at %s", entry.Room, day, entry.TimeSlot)
				roomSeen[c][entry.Room] = true
			}
		}
	}
}

func TestGenerateQuotaBoundAndDailySpread(t *testing.T) {
	cat := fixtureCatalogue()
	result, err := newTestEngine(11).Generate(cat)
	require.NoError(t, err)

	quotas := make(map[string]int, len(cat.Subjects))
	for _, subject := range cat.Subjects {
		quotas[subject.Code] = subject.ClassesWeek
	}

	for sectionKey, days := range result.Schedules {
		weekly := make(map[string]int)
		for day, entries := range days {
			daily := make(map[string]int)
			for _, entry := range entries {
				if entry.Subject == models.FreePeriod {
					continue
				}
				weekly[entry.Subject]++
				daily[entry.Subject]++
				assert.LessOrEqual(t, daily[entry.Subject], 1,
					"subject %s repeated for %s on %s", entry.Subject, sectionKey, day)
			}
		}
		for code, count := range weekly {
			assert.LessOrEqual(t, count, quotas[code], "quota exceeded for %s in %s", code, sectionKey)
		}
	}
}

func TestGenerateShortfallIsReported(t *testing.T) {
	cat := fixtureCatalogue()
	// One slot per day for two sections cannot absorb ten weekly classes each.
	cat.TimeSlots = weekGrid([]string{"08:00-09:00"}, "9-A", "9-B")

	result, err := newTestEngine(3).Generate(cat)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusPartial, result.GenerationStatus)
	assert.NotEmpty(t, result.Conflicts)
}

func TestGenerateDeterministicUnderFixedSeed(t *testing.T) {
	first, err := newTestEngine(42).Generate(fixtureCatalogue())
	require.NoError(t, err)
	second, err := newTestEngine(42).Generate(fixtureCatalogue())
	require.NoError(t, err)

	assert.Equal(t, first.Schedules, second.Schedules)
	assert.Equal(t, first.Conflicts, second.Conflicts)
}

func TestGenerationResultJSONRoundTrip(t *testing.T) {
	result, err := newTestEngine(5).Generate(fixtureCatalogue())
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded models.GenerationResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, result.Schedules, decoded.Schedules)
	assert.Equal(t, result.GenerationStatus, decoded.GenerationStatus)
}

// Scenario: one section, one subject with quota two, two Monday-only slots.
// Same-day repetition is forbidden, so exactly one class lands and the
// shortfall of one is reported.
func TestScenarioSingleDayQuotaShortfall(t *testing.T) {
	cat := models.Catalogue{
		Rooms:   []models.Room{{ID: "R1", Capacity: 30}},
		Faculty: []models.Faculty{{ID: "F1", Name: "Asha Rao"}},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}}, ClassesWeek: 2},
		},
		TimeSlots: []models.TimeSlot{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:00", ApplicableTo: []string{"9-A"}},
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00", ApplicableTo: []string{"9-A"}},
		},
	}

	result, err := newTestEngine(1).Generate(cat)
	require.NoError(t, err)

	scheduled := 0
	for _, entry := range result.Schedules["9-A"]["Monday"] {
		if entry.Subject == "MATH" {
			scheduled++
		}
	}
	assert.Equal(t, 1, scheduled)
	assert.Equal(t, models.GenerationStatusPartial, result.GenerationStatus)
	assert.Contains(t, fmt.Sprint(result.Conflicts), "1 class(es) of MATH for 9-A could not be scheduled")
}

// Scenario: one faculty shared by two subjects wanted by two sections at the
// same single weekly slot. One section schedules; the other degrades to Free
// Period with a conflict citing resource unavailability.
func TestScenarioSharedFacultyContention(t *testing.T) {
	cat := models.Catalogue{
		Rooms: []models.Room{
			{ID: "R1", Capacity: 40},
			{ID: "R2", Capacity: 40},
		},
		Faculty: []models.Faculty{{ID: "F1", Name: "Asha Rao"}},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
			{Grade: "9", Section: "B", Strength: 30, Policy: models.RoomPolicyFixed},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}}, ClassesWeek: 1},
			{Code: "SCI", Name: "Science", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "B"}}, ClassesWeek: 1},
		},
		TimeSlots: []models.TimeSlot{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:00", ApplicableTo: []string{"9-A", "9-B"}},
		},
	}

	result, err := newTestEngine(1).Generate(cat)
	require.NoError(t, err)

	var scheduledSections, freeSections int
	for _, sectionKey := range []string{"9-A", "9-B"} {
		for _, entry := range result.Schedules[sectionKey]["Monday"] {
			if entry.Subject == models.FreePeriod {
				freeSections++
			} else {
				scheduledSections++
			}
		}
	}
	assert.Equal(t, 1, scheduledSections)
	assert.Equal(t, 1, freeSections)
	assert.Contains(t, fmt.Sprint(result.Conflicts), "No available room/faculty")
}

// Scenario: weekly quota above the total available grid. Normalization flags
// insufficient slots and the shortfall surfaces again after scheduling.
func TestScenarioInsufficientSlots(t *testing.T) {
	cat := models.Catalogue{
		Rooms:   []models.Room{{ID: "R1", Capacity: 30}},
		Faculty: []models.Faculty{{ID: "F1", Name: "Asha Rao"}},
		GradeSections: []models.GradeSection{
			{Grade: "9", Section: "A", Strength: 30, Policy: models.RoomPolicyFixed},
		},
		Subjects: []models.Subject{
			{Code: "MATH", Name: "Mathematics", FacultyIDs: []string{"F1"}, GradeSections: []models.SectionRef{{Grade: "9", Section: "A"}}, ClassesWeek: 10},
		},
		TimeSlots: []models.TimeSlot{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:00", ApplicableTo: []string{"9-A"}},
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00", ApplicableTo: []string{"9-A"}},
		},
	}

	result, err := newTestEngine(1).Generate(cat)
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusPartial, result.GenerationStatus)
	assert.Contains(t, fmt.Sprint(result.Conflicts), "Insufficient time slots for 9-A")
	assert.Contains(t, fmt.Sprint(result.Conflicts), "could not be scheduled")
}

func TestDedicatedRoomIsExclusive(t *testing.T) {
	result, err := newTestEngine(13).Generate(fixtureCatalogue())
	require.NoError(t, err)

	// 9-A is fixed policy and claims R1 (first fitting room); 9-B must never
	// appear in it.
	for day, entries := range result.Schedules["9-B"] {
		for _, entry := range entries {
			assert.NotEqual(t, "R1", entry.Room, "9-B must not use 9-A's dedicated room on %s", day)
		}
	}
	for _, entries := range result.Schedules["9-A"] {
		for _, entry := range entries {
			if entry.Subject != models.FreePeriod {
				assert.Equal(t, "R1", entry.Room)
			}
		}
	}
}
