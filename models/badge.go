package models

import (
	"time"
)

// Badge: static definition row, seeded from BadgeCatalog (upsert by Name)
type Badge struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Description string    `json:"description"`
	Category    string    `gorm:"type:varchar(32)" json:"category"`
	Rarity      string    `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	IconURL     string    `gorm:"type:text" json:"icon_url,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance. The (UserID, BadgeID) unique index makes a
// grant happen at most once no matter how often the engine re-runs.
type UserBadge struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"user_id"`
	BadgeID  string    `gorm:"uniqueIndex:idx_user_badge;not null" json:"badge_id"`
	EarnedAt time.Time `gorm:"autoCreateTime" json:"earned_at"`
}

// BadgeStats is the snapshot a badge predicate is evaluated against.
// Stats are read once per evaluation; predicates must stay pure.
type BadgeStats struct {
	TotalXP                 int64
	CurrentStreak           int
	TotalEventsParticipated int64
	TotalWasteCollected     float64
	RegistrationCount       int64
	UserSeq                 int64 // signup ordinal, 1 = first account
}

// BadgeDefinition pairs badge metadata with its qualifying predicate.
type BadgeDefinition struct {
	Name        string
	Description string
	Category    string
	Rarity      string
	Qualifies   func(s BadgeStats) bool
}

// BadgeCatalog is the fixed rule set evaluated after every participation
// submission. Extending it is a code change only — definitions are seeded
// into the badges table by name, no migration step needed.
var BadgeCatalog = []BadgeDefinition{
	{
		Name:        "First Steps",
		Description: "Completed your first cleanup",
		Category:    "participation",
		Rarity:      "common",
		Qualifies:   func(s BadgeStats) bool { return s.TotalEventsParticipated >= 1 },
	},
	{
		Name:        "Regular",
		Description: "Participated in 5 cleanups",
		Category:    "participation",
		Rarity:      "common",
		Qualifies:   func(s BadgeStats) bool { return s.TotalEventsParticipated >= 5 },
	},
	{
		Name:        "Veteran",
		Description: "Participated in 20 cleanups",
		Category:    "participation",
		Rarity:      "epic",
		Qualifies:   func(s BadgeStats) bool { return s.TotalEventsParticipated >= 20 },
	},
	{
		Name:        "Waste Warrior",
		Description: "Collected 100 kg of waste",
		Category:    "waste",
		Rarity:      "rare",
		Qualifies:   func(s BadgeStats) bool { return s.TotalWasteCollected >= 100 },
	},
	{
		Name:        "Century Hauler",
		Description: "Collected 250 kg of waste",
		Category:    "waste",
		Rarity:      "epic",
		Qualifies:   func(s BadgeStats) bool { return s.TotalWasteCollected >= 250 },
	},
	{
		Name:        "XP Elite",
		Description: "Earned 10,000 XP",
		Category:    "progression",
		Rarity:      "legendary",
		Qualifies:   func(s BadgeStats) bool { return s.TotalXP >= 10000 },
	},
	{
		Name:        "Week Streak",
		Description: "7 participations in a row",
		Category:    "progression",
		Rarity:      "rare",
		Qualifies:   func(s BadgeStats) bool { return s.CurrentStreak >= 7 },
	},
	{
		Name:        "Early Adopter",
		Description: "One of the first 100 members",
		Category:    "community",
		Rarity:      "rare",
		Qualifies:   func(s BadgeStats) bool { return s.UserSeq > 0 && s.UserSeq <= 100 },
	},
	{
		Name:        "Joiner",
		Description: "Registered for 10 events",
		Category:    "community",
		Rarity:      "common",
		Qualifies:   func(s BadgeStats) bool { return s.RegistrationCount >= 10 },
	},
}
