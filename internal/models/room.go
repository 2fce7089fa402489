package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Room represents a physical teaching space the scheduler can assign.
// AvailableSlots is a JSON-encoded []bool of length Days*PeriodsPerDay;
// a nil/empty value means the room is available every slot.
type Room struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Type           string         `db:"type" json:"type"`
	Capacity       int            `db:"capacity" json:"capacity"`
	AvailableSlots types.JSONText `db:"available_slots" json:"available_slots,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	Type      string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
