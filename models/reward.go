package models

import (
	"time"

	gorm "gorm.io/gorm"
)

// Reward is a redeemable catalog item priced in XP.
type Reward struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"type:text" json:"image_url,omitempty"`

	CostXP int64 `gorm:"not null" json:"cost_xp"`

	// Stock < 0 means unlimited
	Stock    int  `gorm:"default:-1" json:"stock"`
	IsActive bool `gorm:"default:true;index" json:"is_active"`

	ExpiryDate *time.Time `json:"expiry_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Redemption records one reward claim. The XP debit is written to the
// ledger in the same transaction that creates this row. One claim per
// user per reward, enforced by the unique pair index.
type Redemption struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"uniqueIndex:idx_redemption_user_reward;not null" json:"user_id"`
	RewardID string `gorm:"uniqueIndex:idx_redemption_user_reward;not null" json:"reward_id"`

	CostXP     int64     `gorm:"not null" json:"cost_xp"` // price at claim time
	RedeemedAt time.Time `gorm:"autoCreateTime" json:"redeemed_at"`
}
