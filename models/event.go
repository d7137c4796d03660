package models

import (
	"time"
)

// EventStatus is the lifecycle state of a cleanup event.
// Upcoming → Ongoing → Completed; Upcoming → Cancelled.
// Completed and Cancelled are terminal.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s EventStatus) Terminal() bool {
	return s == EventStatusCompleted || s == EventStatusCancelled
}

// Event is a scheduled cleanup event owned by its organizer.
// Status never advances on a timer — only explicit creator calls move it.
type Event struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	CreatorID   string `gorm:"index;not null" json:"creator_id"` // User.ID of the organizer
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Status EventStatus `gorm:"type:varchar(16);default:'upcoming';index" json:"status"`

	// Scheduling
	Date      time.Time  `gorm:"not null;index" json:"date"`
	StartTime *time.Time `json:"start_time,omitempty"` // stamped by startEvent
	EndTime   *time.Time `json:"end_time,omitempty"`   // stamped by endEvent

	// Cleanup target & location
	WasteTargetKg float64  `json:"waste_target_kg"`
	LocationName  string   `json:"location_name"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`

	// Six-character code volunteers scan to check in, unique across all events
	JoinCode string `gorm:"uniqueIndex;size:6;not null" json:"join_code"`

	CoverPhotoURL string `gorm:"type:text" json:"cover_photo_url,omitempty"`

	Timestamps
}
