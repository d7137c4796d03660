package models

import (
	"time"
)

// Ledger reasons written by the engine. Free-text is allowed but the
// well-known flows use these so windowed aggregation stays greppable.
const (
	ReasonParticipation     = "participation"
	ReasonCheckIn           = "check_in"
	ReasonCheckInWithSignup = "check_in_with_signup"
	ReasonVerificationBonus = "verification_bonus"
	ReasonRewardRedemption  = "reward_redemption"
)

// PointsHistory is the append-only XP ledger. Rows are never updated or
// deleted; weekly/monthly leaderboards aggregate over CreatedAt windows,
// and the cached UserXP totals must always equal the per-user sum here.
type PointsHistory struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index:idx_points_user_created;not null" json:"user_id"`

	Amount int64  `gorm:"not null" json:"amount"` // signed: redemptions are negative
	Reason string `gorm:"not null" json:"reason"`

	EventID         *string `gorm:"index" json:"event_id,omitempty"`
	ParticipationID *string `gorm:"index" json:"participation_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_points_user_created" json:"created_at"`
}

func (PointsHistory) TableName() string {
	return "points_histories"
}
