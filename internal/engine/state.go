package engine

import (
	"fmt"
	"math/rand"

	"github.com/Likhith025/timetablegen/internal/models"
)

// cellKey addresses one (day, weekly slot) cell of the grid.
type cellKey struct {
	Day  string
	Slot string
}

// anchor provisionally binds a grade-section, subject and faculty to a weekly
// slot before the daily scheduler realizes it per day.
type anchor struct {
	Section models.SectionKey
	Subject string
	Faculty string
}

// schedulerState carries all working state of one generation run. It is built
// fresh per invocation and discarded on return; nothing is shared across runs.
type schedulerState struct {
	idx *catalogueIndex
	rng *rand.Rand

	// reservedRoom maps a room to the fixed-policy section holding it run-wide.
	reservedRoom map[string]models.SectionKey
	// dedicated maps a fixed-policy section to its room, "" when unassigned.
	dedicated map[models.SectionKey]string

	facultyBusy map[cellKey]map[string]struct{}
	roomBusy    map[cellKey]map[string]struct{}
	sectionBusy map[cellKey]map[models.SectionKey]struct{}

	// weeklyCount tracks realized classes per (section, subject).
	weeklyCount map[models.SectionKey]map[string]int
	// dailyCount tracks realized classes per (section, day, subject) to spread
	// a subject's weekly load across days.
	dailyCount map[models.SectionKey]map[string]map[string]int

	anchors         map[string][]anchor
	anchoredFaculty map[string]map[string]struct{}
	anchoredSection map[string]map[models.SectionKey]struct{}
	anchorCount     map[models.SectionKey]map[string]int

	schedules map[models.SectionKey]map[string][]models.ScheduleEntry
	conflicts []string
}

func newSchedulerState(idx *catalogueIndex, rng *rand.Rand) *schedulerState {
	st := &schedulerState{
		idx:             idx,
		rng:             rng,
		reservedRoom:    make(map[string]models.SectionKey),
		dedicated:       make(map[models.SectionKey]string),
		facultyBusy:     make(map[cellKey]map[string]struct{}),
		roomBusy:        make(map[cellKey]map[string]struct{}),
		sectionBusy:     make(map[cellKey]map[models.SectionKey]struct{}),
		weeklyCount:     make(map[models.SectionKey]map[string]int),
		dailyCount:      make(map[models.SectionKey]map[string]map[string]int),
		anchors:         make(map[string][]anchor),
		anchoredFaculty: make(map[string]map[string]struct{}),
		anchoredSection: make(map[string]map[models.SectionKey]struct{}),
		anchorCount:     make(map[models.SectionKey]map[string]int),
		schedules:       make(map[models.SectionKey]map[string][]models.ScheduleEntry),
	}
	for _, section := range idx.sections {
		key := section.Key()
		st.schedules[key] = make(map[string][]models.ScheduleEntry, len(models.Weekdays))
		for _, day := range models.Weekdays {
			st.schedules[key][day] = make([]models.ScheduleEntry, 0)
		}
	}
	return st
}

func (s *schedulerState) addConflict(format string, args ...interface{}) {
	s.conflicts = append(s.conflicts, fmt.Sprintf(format, args...))
}

// --- occupancy ---

func (s *schedulerState) facultyBusyAt(cell cellKey, facultyID string) bool {
	_, ok := s.facultyBusy[cell][facultyID]
	return ok
}

func (s *schedulerState) roomBusyAt(cell cellKey, roomID string) bool {
	_, ok := s.roomBusy[cell][roomID]
	return ok
}

func (s *schedulerState) sectionBusyAt(cell cellKey, section models.SectionKey) bool {
	_, ok := s.sectionBusy[cell][section]
	return ok
}

// occupy marks the realized triple busy for the cell and bumps the counters.
func (s *schedulerState) occupy(cell cellKey, section models.SectionKey, subject, facultyID, roomID string) {
	if s.facultyBusy[cell] == nil {
		s.facultyBusy[cell] = make(map[string]struct{})
	}
	s.facultyBusy[cell][facultyID] = struct{}{}

	if s.roomBusy[cell] == nil {
		s.roomBusy[cell] = make(map[string]struct{})
	}
	s.roomBusy[cell][roomID] = struct{}{}

	if s.sectionBusy[cell] == nil {
		s.sectionBusy[cell] = make(map[models.SectionKey]struct{})
	}
	s.sectionBusy[cell][section] = struct{}{}

	if s.weeklyCount[section] == nil {
		s.weeklyCount[section] = make(map[string]int)
	}
	s.weeklyCount[section][subject]++

	if s.dailyCount[section] == nil {
		s.dailyCount[section] = make(map[string]map[string]int)
	}
	if s.dailyCount[section][cell.Day] == nil {
		s.dailyCount[section][cell.Day] = make(map[string]int)
	}
	s.dailyCount[section][cell.Day][subject]++
}

func (s *schedulerState) scheduledToday(section models.SectionKey, day, subject string) bool {
	return s.dailyCount[section][day][subject] > 0
}

func (s *schedulerState) remainingQuota(section models.SectionKey, subject models.Subject) int {
	return subject.ClassesWeek - s.weeklyCount[section][subject.Code]
}

// --- anchors ---

func (s *schedulerState) facultyAnchoredAt(weeklySlot, facultyID string) bool {
	_, ok := s.anchoredFaculty[weeklySlot][facultyID]
	return ok
}

func (s *schedulerState) sectionAnchoredAt(weeklySlot string, section models.SectionKey) bool {
	_, ok := s.anchoredSection[weeklySlot][section]
	return ok
}

func (s *schedulerState) addAnchor(weeklySlot string, a anchor) {
	s.anchors[weeklySlot] = append(s.anchors[weeklySlot], a)
	if s.anchoredFaculty[weeklySlot] == nil {
		s.anchoredFaculty[weeklySlot] = make(map[string]struct{})
	}
	s.anchoredFaculty[weeklySlot][a.Faculty] = struct{}{}
	if s.anchoredSection[weeklySlot] == nil {
		s.anchoredSection[weeklySlot] = make(map[models.SectionKey]struct{})
	}
	s.anchoredSection[weeklySlot][a.Section] = struct{}{}
	if s.anchorCount[a.Section] == nil {
		s.anchorCount[a.Section] = make(map[string]int)
	}
	s.anchorCount[a.Section][a.Subject]++
}

// replaceAnchor swaps the subject and faculty of an existing anchor in place,
// keeping the slot and section. Used by the coverage filler's displacement.
func (s *schedulerState) replaceAnchor(weeklySlot string, index int, subject, facultyID string) {
	old := s.anchors[weeklySlot][index]
	s.anchorCount[old.Section][old.Subject]--
	delete(s.anchoredFaculty[weeklySlot], old.Faculty)

	s.anchors[weeklySlot][index].Subject = subject
	s.anchors[weeklySlot][index].Faculty = facultyID
	if s.anchoredFaculty[weeklySlot] == nil {
		s.anchoredFaculty[weeklySlot] = make(map[string]struct{})
	}
	s.anchoredFaculty[weeklySlot][facultyID] = struct{}{}
	if s.anchorCount[old.Section] == nil {
		s.anchorCount[old.Section] = make(map[string]int)
	}
	s.anchorCount[old.Section][subject]++
}

func (s *schedulerState) anchorsFor(section models.SectionKey, subject string) int {
	return s.anchorCount[section][subject]
}

// --- resource selection ---

// pickFaculty returns the first catalogue-order eligible faculty member free in
// the cell, or "".
func (s *schedulerState) pickFaculty(subject models.Subject, cell cellKey) string {
	for _, facultyID := range subject.FacultyIDs {
		if _, ok := s.idx.facultyByID[facultyID]; !ok {
			continue
		}
		if s.facultyBusyAt(cell, facultyID) {
			continue
		}
		return facultyID
	}
	return ""
}

// pickRoom returns the first candidate room for the subject and section that
// is free in the cell and not reserved for a different grade-section.
// Candidates: the subject's explicit whitelist, else the section's dedicated
// room, else any capacity-eligible room.
func (s *schedulerState) pickRoom(subject models.Subject, section models.GradeSection, cell cellKey) string {
	var candidates []string
	switch {
	case len(subject.AssignedClasses) > 0:
		candidates = subject.AssignedClasses
	case section.Policy == models.RoomPolicyFixed:
		if room := s.dedicated[section.Key()]; room != "" {
			candidates = []string{room}
		}
	default:
		for _, room := range s.idx.rooms {
			if room.Capacity >= section.Strength {
				candidates = append(candidates, room.ID)
			}
		}
	}

	key := section.Key()
	for _, roomID := range candidates {
		if s.roomBusyAt(cell, roomID) {
			continue
		}
		if holder, reserved := s.reservedRoom[roomID]; reserved && holder != key {
			continue
		}
		return roomID
	}
	return ""
}
