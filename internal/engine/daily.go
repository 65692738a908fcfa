package engine

import (
	"sort"
	"strings"

	"github.com/Likhith025/timetablegen/internal/models"
)

// scheduleDays walks days and weekly slots in order and materializes each
// anchor into a concrete (subject, faculty, room) entry, re-validating
// faculty/room/section non-overlap at realization time. Cells that cannot be
// satisfied degrade to a Free Period plus a conflict note.
func (s *schedulerState) scheduleDays() {
	for _, day := range models.Weekdays {
		for _, weeklySlot := range s.idx.slotAxis {
			for _, a := range s.anchors[weeklySlot] {
				s.realizeAnchor(a, day, weeklySlot)
			}
		}
	}
}

func (s *schedulerState) realizeAnchor(a anchor, day, weeklySlot string) {
	section, ok := s.idx.sectionByKey[a.Section]
	if !ok {
		return
	}
	// The anchor is day-agnostic; the catalogue entry is day-specific. A miss
	// here is an expected outcome, not an error.
	if !s.idx.slotAppliesOnDay(a.Section, day, weeklySlot) {
		return
	}
	cell := cellKey{Day: day, Slot: weeklySlot}
	if s.sectionBusyAt(cell, a.Section) {
		return
	}

	subject, ok := s.chooseSubject(a, day, weeklySlot)
	if !ok {
		s.parkFreePeriod(a.Section, day, weeklySlot)
		s.addConflict("No available subject for %s on %s at %s", a.Section, day, weeklySlot)
		return
	}

	facultyID := s.pickFaculty(subject, cell)
	roomID := ""
	if facultyID != "" {
		roomID = s.pickRoom(subject, section, cell)
	}
	if facultyID == "" || roomID == "" {
		s.parkFreePeriod(a.Section, day, weeklySlot)
		s.addConflict("No available room/faculty for %s on %s at %s", a.Section, day, weeklySlot)
		return
	}

	s.schedules[a.Section][day] = append(s.schedules[a.Section][day], models.ScheduleEntry{
		TimeSlot: weeklySlot,
		Subject:  subject.Code,
		Faculty:  facultyID,
		Room:     roomID,
	})
	s.occupy(cell, a.Section, subject.Code, facultyID, roomID)
}

// chooseSubject prefers the anchor's subject when its faculty is eligible,
// quota remains and it has not run today; otherwise it falls back to the
// section's subject with the greatest unmet need.
func (s *schedulerState) chooseSubject(a anchor, day, weeklySlot string) (models.Subject, bool) {
	anchored, ok := s.idx.subjectByCode[a.Subject]
	if ok &&
		containsString(anchored.FacultyIDs, a.Faculty) &&
		s.remainingQuota(a.Section, anchored) > 0 &&
		!s.scheduledToday(a.Section, day, anchored.Code) {
		return anchored, true
	}

	var best models.Subject
	bestNeed := 0
	for _, code := range s.idx.subjectsForSection[a.Section] {
		candidate := s.idx.subjectByCode[code]
		need := s.remainingQuota(a.Section, candidate)
		if need <= 0 || s.scheduledToday(a.Section, day, code) {
			continue
		}
		if need > bestNeed {
			best = candidate
			bestNeed = need
		}
	}
	if bestNeed == 0 {
		return models.Subject{}, false
	}
	return best, true
}

// parkFreePeriod records an explicit Free Period in the section's dedicated
// room when one exists and is not already claimed for this slot. Sections
// without a dedicated room leave the cell empty.
func (s *schedulerState) parkFreePeriod(section models.SectionKey, day, weeklySlot string) {
	roomID := s.dedicated[section]
	if roomID == "" {
		return
	}
	for _, entry := range s.schedules[section][day] {
		if entry.TimeSlot == weeklySlot {
			return
		}
	}
	s.schedules[section][day] = append(s.schedules[section][day], models.ScheduleEntry{
		TimeSlot: weeklySlot,
		Subject:  models.FreePeriod,
		Faculty:  "",
		Room:     roomID,
	})
}

// fillGaps revisits Free Period cells to place subjects still short of quota,
// using any eligible faculty and room not yet booked in that slot. Final
// shortfalls are logged once per subject/section.
func (s *schedulerState) fillGaps() {
	for _, section := range s.idx.sections {
		key := section.Key()
		for _, code := range s.idx.subjectsForSection[key] {
			subject := s.idx.subjectByCode[code]
			short := s.remainingQuota(key, subject)
			if short <= 0 {
				continue
			}
			for _, day := range models.Weekdays {
				if short == 0 {
					break
				}
				entries := s.schedules[key][day]
				for i := range entries {
					if short == 0 {
						break
					}
					if entries[i].Subject != models.FreePeriod {
						continue
					}
					if s.scheduledToday(key, day, code) {
						continue
					}
					cell := cellKey{Day: day, Slot: entries[i].TimeSlot}
					facultyID := s.pickFaculty(subject, cell)
					if facultyID == "" {
						continue
					}
					roomID := s.pickRoom(subject, section, cell)
					if roomID == "" {
						continue
					}
					entries[i] = models.ScheduleEntry{
						TimeSlot: entries[i].TimeSlot,
						Subject:  code,
						Faculty:  facultyID,
						Room:     roomID,
					}
					s.occupy(cell, key, code, facultyID, roomID)
					short--
				}
			}
			if short > 0 {
				s.addConflict("%d class(es) of %s for %s could not be scheduled", short, code, key)
			}
		}
	}
}

// normalizeSchedules sorts each section/day by start time and deduplicates
// Free Periods, keeping at most one per slot and only when its room claim is
// empty or matches the section's own reservation.
func (s *schedulerState) normalizeSchedules() {
	for _, section := range s.idx.sections {
		key := section.Key()
		for _, day := range models.Weekdays {
			s.schedules[key][day] = normalizeDay(s.schedules[key][day], s.dedicated[key])
		}
	}
}

func normalizeDay(entries []models.ScheduleEntry, dedicatedRoom string) []models.ScheduleEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return slotStart(entries[i].TimeSlot) < slotStart(entries[j].TimeSlot)
	})

	result := make([]models.ScheduleEntry, 0, len(entries))
	scheduled := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.Subject != models.FreePeriod {
			result = append(result, entry)
			scheduled[entry.TimeSlot] = true
		}
	}
	kept := make(map[string]bool)
	for _, entry := range entries {
		if entry.Subject != models.FreePeriod {
			continue
		}
		if scheduled[entry.TimeSlot] || kept[entry.TimeSlot] {
			continue
		}
		if entry.Room != "" && dedicatedRoom != "" && entry.Room != dedicatedRoom {
			continue
		}
		result = append(result, entry)
		kept[entry.TimeSlot] = true
	}

	sort.SliceStable(result, func(i, j int) bool {
		return slotStart(result[i].TimeSlot) < slotStart(result[j].TimeSlot)
	})
	return result
}

func slotStart(weeklySlot string) string {
	if idx := strings.Index(weeklySlot, "-"); idx > 0 {
		return weeklySlot[:idx]
	}
	return weeklySlot
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
