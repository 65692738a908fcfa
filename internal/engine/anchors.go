package engine

import "github.com/Likhith025/timetablegen/internal/models"

// mapConsistentAnchors picks, for every (faculty, weekly slot) pair, at most
// one grade-section/subject to teach at that slot every day it recurs. Higher
// weekly quotas anchor first. The result is day-agnostic.
func (s *schedulerState) mapConsistentAnchors() {
	for _, f := range s.idx.faculty {
		for _, weeklySlot := range s.idx.slotAxis {
			if s.facultyAnchoredAt(weeklySlot, f.ID) {
				continue
			}
			best, found := s.bestCandidate(f.ID, weeklySlot)
			if !found {
				continue
			}
			s.addAnchor(weeklySlot, best)
		}
	}
}

// bestCandidate scans the faculty's subjects in catalogue order and returns
// the applicable (section, subject) pair with the largest weekly quota.
func (s *schedulerState) bestCandidate(facultyID, weeklySlot string) (anchor, bool) {
	var best anchor
	bestQuota := -1
	for _, code := range s.idx.subjectsForFaculty[facultyID] {
		subject := s.idx.subjectByCode[code]
		for _, ref := range subject.GradeSections {
			section := ref.Key()
			if _, ok := s.idx.sectionByKey[section]; !ok {
				continue
			}
			if s.sectionAnchoredAt(weeklySlot, section) {
				continue
			}
			if !s.idx.slotApplies(section, weeklySlot) {
				continue
			}
			if subject.ClassesWeek > bestQuota {
				best = anchor{Section: section, Subject: code, Faculty: facultyID}
				bestQuota = subject.ClassesWeek
			}
		}
	}
	return best, bestQuota >= 0
}

// fillCoverage tops up anchors for subjects still short of their weekly quota.
// Slots are searched in randomized order to avoid systematic bias toward early
// slots; the order is reproducible for a fixed seed. An existing anchor is
// displaced only when its subject is already over its own quota.
func (s *schedulerState) fillCoverage() {
	for _, subject := range s.idx.subjects {
		for _, ref := range subject.GradeSections {
			section := ref.Key()
			if _, ok := s.idx.sectionByKey[section]; !ok {
				continue
			}
			need := subject.ClassesWeek - s.anchorsFor(section, subject.Code)
			if need <= 0 {
				continue
			}

			slots := s.shuffledSlots(section)
			for _, weeklySlot := range slots {
				if need == 0 {
					break
				}
				if s.sectionAnchoredAt(weeklySlot, section) {
					continue
				}
				facultyID := s.anchorFaculty(subject, weeklySlot)
				if facultyID == "" {
					continue
				}
				s.addAnchor(weeklySlot, anchor{Section: section, Subject: subject.Code, Faculty: facultyID})
				need--
			}

			if need > 0 {
				need = s.displaceAnchors(subject, section, slots, need)
			}
			if need > 0 {
				s.addConflict("Unable to meet weekly quota for %s in %s: %d class(es) unplaced", subject.Code, section, need)
			}
		}
	}
}

// displaceAnchors replaces over-quota occupants of the section's anchors with
// the incoming subject. Returns the remaining shortfall.
func (s *schedulerState) displaceAnchors(subject models.Subject, section models.SectionKey, slots []string, need int) int {
	for _, weeklySlot := range slots {
		if need == 0 {
			break
		}
		for i, a := range s.anchors[weeklySlot] {
			if a.Section != section || a.Subject == subject.Code {
				continue
			}
			occupant := s.idx.subjectByCode[a.Subject]
			if s.anchorsFor(section, a.Subject) <= occupant.ClassesWeek {
				continue
			}
			facultyID := s.anchorFaculty(subject, weeklySlot)
			if facultyID == "" {
				continue
			}
			s.replaceAnchor(weeklySlot, i, subject.Code, facultyID)
			need--
			break
		}
	}
	return need
}

// anchorFaculty returns an eligible faculty member for the slot, preferring
// one without an anchor there yet. Availability is only a preference: the
// daily scheduler re-validates occupancy at realization time and degrades to
// Free Period when the faculty turns out to be booked.
func (s *schedulerState) anchorFaculty(subject models.Subject, weeklySlot string) string {
	for _, facultyID := range subject.FacultyIDs {
		if _, ok := s.idx.facultyByID[facultyID]; !ok {
			continue
		}
		if s.facultyAnchoredAt(weeklySlot, facultyID) {
			continue
		}
		return facultyID
	}
	if len(subject.FacultyIDs) > 0 {
		return subject.FacultyIDs[0]
	}
	return ""
}

// shuffledSlots returns the section's applicable weekly slots in a random
// order driven by the injected source.
func (s *schedulerState) shuffledSlots(section models.SectionKey) []string {
	slots := s.idx.applicableSlots(section)
	shuffled := make([]string, len(slots))
	copy(shuffled, slots)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
