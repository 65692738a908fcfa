package engine

import "github.com/Likhith025/timetablegen/internal/models"

// checkCapacity compares, per grade-section, required weekly classes against
// the available grid. A shortfall is a soft conflict; the run continues.
func (s *schedulerState) checkCapacity() {
	available := len(s.idx.days) * len(s.idx.slotAxis)
	for _, section := range s.idx.sections {
		key := section.Key()
		required := 0
		for _, code := range s.idx.subjectsForSection[key] {
			required += s.idx.subjectByCode[code].ClassesWeek
		}
		if required > available {
			s.addConflict("Insufficient time slots for %s: %d classes required per week but only %d slots available", key, required, available)
		}
	}
}

// allocateRooms pre-assigns one dedicated room per fixed-policy grade-section
// and reserves it for the whole run. Flexible sections draw from the shared
// pool per slot at realization time.
func (s *schedulerState) allocateRooms() {
	for _, section := range s.idx.sections {
		if section.Policy != models.RoomPolicyFixed {
			continue
		}
		key := section.Key()
		assigned := false
		for _, room := range s.idx.rooms {
			if room.Capacity < section.Strength {
				continue
			}
			if _, taken := s.reservedRoom[room.ID]; taken {
				continue
			}
			s.reservedRoom[room.ID] = key
			s.dedicated[key] = room.ID
			assigned = true
			break
		}
		if !assigned {
			s.dedicated[key] = ""
			s.addConflict("No available room for %s: no unreserved room fits strength %d", key, section.Strength)
		}
	}
}
