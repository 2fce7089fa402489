package models

import "time"

// FixedSlot pins a batch to a day/period ahead of solving, optionally
// constraining the room too. The scheduler treats a fixed slot with no
// room as unconstrained on the room axis.
type FixedSlot struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	Day       int       `db:"day" json:"day"`
	Period    int       `db:"period" json:"period"`
	RoomID    *string   `db:"room_id" json:"room_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
