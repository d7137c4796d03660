package models

import (
	"time"
)

// Registration links a volunteer to an event they signed up for.
// The (UserID, EventID) pair is unique at the database level so concurrent
// registration attempts collapse into one row. HasJoined flips true exactly
// once on check-in and never goes back.
type Registration struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_registration_user_event;not null" json:"user_id"`
	EventID string `gorm:"uniqueIndex:idx_registration_user_event;not null;index" json:"event_id"`

	HasJoined bool       `gorm:"default:false" json:"has_joined"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`

	Timestamps
}
