package models

import (
	"time"
)

// VerificationState models the organizer review of a submission as a
// one-way transition: pending → verified | rejected.
type VerificationState string

const (
	VerificationPending  VerificationState = "pending"
	VerificationVerified VerificationState = "verified"
	VerificationRejected VerificationState = "rejected"
)

// Participation records a volunteer's waste-collection evidence for one
// event. At most one row exists per (UserID, EventID), enforced by the
// unique index rather than an application-level existence check.
type Participation struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_participation_user_event;not null" json:"user_id"`
	EventID string `gorm:"uniqueIndex:idx_participation_user_event;not null;index" json:"event_id"`

	WasteCollectedKg float64 `gorm:"not null" json:"waste_collected_kg"`
	Description      string  `gorm:"type:text" json:"description,omitempty"`

	// Evidence photo URLs in object storage (comma-joined)
	PhotoURLs string `gorm:"type:text" json:"photo_urls,omitempty"`

	// Collection site
	LocationName string   `json:"location_name,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`

	// XPEarned includes any verification bonus added later
	XPEarned int64 `gorm:"default:0" json:"xp_earned"`

	Verification VerificationState `gorm:"type:varchar(16);default:'pending'" json:"verification"`
	VerifiedAt   *time.Time        `json:"verified_at,omitempty"`
	VerifiedBy   *string           `json:"verified_by,omitempty"` // organizer User.ID

	Timestamps
}

// IsVerified keeps the boolean view of the verification state for API
// responses and badge stats.
func (p *Participation) IsVerified() bool {
	return p.Verification == VerificationVerified
}
