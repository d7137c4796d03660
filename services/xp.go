package services

import (
	"math"
	"time"
)

// XP constants for the fixed-amount awards. Check-in by code without a
// prior registration pays more than a plain check-in: the code path both
// registers and joins in one step.
const (
	CheckInXP           int64 = 20
	CheckInWithSignupXP int64 = 30

	// XPPerLevel: levels are uncapped 100-XP bands
	XPPerLevel int64 = 100

	MinWasteKg = 0.1

	MaxVerificationBonus int64 = 100
)

// ParticipationXP is the canonical award for collecting w kg of waste:
// 10 XP per whole kg plus a 5 XP bump per started 5 kg block.
// This is the single formula used by every submission path.
func ParticipationXP(wasteKg float64) int64 {
	if wasteKg <= 0 {
		return 0
	}
	return int64(math.Floor(wasteKg*10)) + int64(math.Floor(wasteKg/5))*5
}

// LevelForXP maps cumulative XP to a level: floor(xp/100)+1.
func LevelForXP(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(totalXP/XPPerLevel) + 1
}

// XPIntoLevel returns progress within the current 100-XP band.
func XPIntoLevel(totalXP int64) int64 {
	if totalXP < 0 {
		return 0
	}
	return totalXP % XPPerLevel
}

// XPToNextLevel returns the XP still needed to reach the next band.
func XPToNextLevel(totalXP int64) int64 {
	return XPPerLevel - XPIntoLevel(totalXP)
}

// NextStreak computes the streak after a successful participation.
// resetAfter <= 0 preserves the legacy behavior where a streak never
// resets; a positive value resets to 1 when the gap since the last
// participation exceeds it.
func NextStreak(current int, lastParticipated *time.Time, now time.Time, resetAfter time.Duration) int {
	if resetAfter > 0 && lastParticipated != nil && now.Sub(*lastParticipated) > resetAfter {
		return 1
	}
	return current + 1
}
