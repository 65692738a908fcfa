package models

import "time"

// RoomBlock reserves a room for a non-teaching purpose on a specific date and
// weekly slot. Blocks overlay the generated schedule when computing free rooms.
type RoomBlock struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	Date      string    `db:"block_date" json:"date"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	Purpose   string    `db:"purpose" json:"purpose"`
	BlockedBy string    `db:"blocked_by" json:"blocked_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomAvailability lists the rooms free for one weekly slot on a date.
type RoomAvailability struct {
	TimeSlot  string   `json:"time_slot"`
	FreeRooms []string `json:"free_rooms"`
}
