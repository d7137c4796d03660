package models

import (
	"time"
)

// UserXP caches lifetime totals for each user (denormalized for performance).
// TotalXP must equal the sum of the user's PointsHistory amounts at all
// times; every mutation goes through ProgressionService.ApplyLedgerEntry,
// which updates both in one transaction using relative increments.
type UserXP struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	TotalXP      int64 `json:"total_xp" gorm:"default:0"`
	CurrentLevel int   `json:"current_level" gorm:"default:1"` // floor(TotalXP/100)+1, kept in sync on write

	CurrentStreak int `json:"current_streak" gorm:"default:0"`
	LongestStreak int `json:"longest_streak" gorm:"default:0"`

	TotalEventsParticipated int64   `json:"total_events_participated" gorm:"default:0"`
	TotalWasteCollected     float64 `json:"total_waste_collected" gorm:"default:0"`

	LastParticipated *time.Time `json:"last_participated,omitempty"`

	Timestamps
}
