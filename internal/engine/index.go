package engine

import (
	"sort"

	"github.com/Likhith025/timetablegen/internal/models"
	appErrors "github.com/Likhith025/timetablegen/pkg/errors"
)

// catalogueIndex holds the validated catalogues plus the derived lookup
// structures every later stage reads. Slices preserve catalogue order so that
// iteration stays deterministic.
type catalogueIndex struct {
	rooms         []models.Room
	roomByID      map[string]models.Room
	faculty       []models.Faculty
	facultyByID   map[string]models.Faculty
	sections      []models.GradeSection
	sectionByKey  map[models.SectionKey]models.GradeSection
	subjects      []models.Subject
	subjectByCode map[string]models.Subject
	timeSlots     []models.TimeSlot

	// slotAxis is the canonical chronological weekly slot axis, day-independent.
	slotAxis []string
	// days are the distinct catalogue days in Monday-Friday order.
	days []string

	subjectsForSection map[models.SectionKey][]string
	subjectsForFaculty map[string][]string
}

// buildIndex validates catalogue presence and canonicalizes the raw input.
// A missing catalogue is fatal: generation aborts before any scheduling work.
func buildIndex(cat models.Catalogue) (*catalogueIndex, error) {
	switch {
	case len(cat.Rooms) == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required catalogue: rooms")
	case len(cat.Faculty) == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required catalogue: faculty")
	case len(cat.GradeSections) == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required catalogue: gradeSections")
	case len(cat.Subjects) == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required catalogue: subjects")
	case len(cat.TimeSlots) == 0:
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required catalogue: timeSlots")
	}

	idx := &catalogueIndex{
		rooms:              cat.Rooms,
		roomByID:           make(map[string]models.Room, len(cat.Rooms)),
		faculty:            cat.Faculty,
		facultyByID:        make(map[string]models.Faculty, len(cat.Faculty)),
		sections:           cat.GradeSections,
		sectionByKey:       make(map[models.SectionKey]models.GradeSection, len(cat.GradeSections)),
		subjects:           cat.Subjects,
		subjectByCode:      make(map[string]models.Subject, len(cat.Subjects)),
		timeSlots:          cat.TimeSlots,
		subjectsForSection: make(map[models.SectionKey][]string),
		subjectsForFaculty: make(map[string][]string),
	}

	for _, room := range cat.Rooms {
		idx.roomByID[room.ID] = room
	}
	for _, f := range cat.Faculty {
		idx.facultyByID[f.ID] = f
	}
	for _, section := range cat.GradeSections {
		idx.sectionByKey[section.Key()] = section
	}
	for _, subject := range cat.Subjects {
		idx.subjectByCode[subject.Code] = subject
		for _, ref := range subject.GradeSections {
			key := ref.Key()
			idx.subjectsForSection[key] = append(idx.subjectsForSection[key], subject.Code)
		}
		for _, facultyID := range subject.FacultyIDs {
			idx.subjectsForFaculty[facultyID] = append(idx.subjectsForFaculty[facultyID], subject.Code)
		}
	}

	idx.slotAxis = buildSlotAxis(cat.TimeSlots)
	idx.days = catalogueDays(cat.TimeSlots)

	return idx, nil
}

// buildSlotAxis collects distinct start-end pairs and sorts them ascending by
// start time. Lexicographic order on zero-padded HH:MM is chronological.
func buildSlotAxis(slots []models.TimeSlot) []string {
	seen := make(map[string]struct{}, len(slots))
	axis := make([]string, 0, len(slots))
	for _, slot := range slots {
		key := slot.WeeklyKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		axis = append(axis, key)
	}
	sort.Strings(axis)
	return axis
}

func catalogueDays(slots []models.TimeSlot) []string {
	present := make(map[string]struct{}, len(slots))
	for _, slot := range slots {
		present[slot.Day] = struct{}{}
	}
	days := make([]string, 0, len(present))
	for _, day := range models.Weekdays {
		if _, ok := present[day]; ok {
			days = append(days, day)
		}
	}
	return days
}

// slotApplies reports whether any catalogue entry for the weekly slot covers
// the grade-section, regardless of day.
func (idx *catalogueIndex) slotApplies(section models.SectionKey, weeklySlot string) bool {
	key := section.String()
	for _, slot := range idx.timeSlots {
		if slot.WeeklyKey() != weeklySlot {
			continue
		}
		for _, target := range slot.ApplicableTo {
			if target == key {
				return true
			}
		}
	}
	return false
}

// slotAppliesOnDay reports whether a day-specific catalogue entry covers the
// grade-section for this weekly slot. Anchors are day-agnostic, so this check
// can legitimately fail during realization.
func (idx *catalogueIndex) slotAppliesOnDay(section models.SectionKey, day, weeklySlot string) bool {
	key := section.String()
	for _, slot := range idx.timeSlots {
		if slot.Day != day || slot.WeeklyKey() != weeklySlot {
			continue
		}
		for _, target := range slot.ApplicableTo {
			if target == key {
				return true
			}
		}
	}
	return false
}

// applicableSlots returns the weekly slots covering the section, in axis order.
func (idx *catalogueIndex) applicableSlots(section models.SectionKey) []string {
	var result []string
	for _, weeklySlot := range idx.slotAxis {
		if idx.slotApplies(section, weeklySlot) {
			result = append(result, weeklySlot)
		}
	}
	return result
}
