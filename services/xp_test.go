package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParticipationXP(t *testing.T) {
	tests := []struct {
		wasteKg float64
		want    int64
	}{
		{0, 0},
		{-2, 0},
		{0.1, 1},
		{1, 10},
		{2.5, 25},   // floor(25) + floor(0.5)*5 = 25
		{5, 55},     // floor(50) + 1*5
		{10.9, 119}, // floor(109) + 2*5
		{100, 1100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParticipationXP(tt.wasteKg), "wasteKg=%v", tt.wasteKg)
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp     int64
		level  int
		into   int64
		toNext int64
	}{
		{0, 1, 0, 100},
		{99, 1, 99, 1},
		{100, 2, 0, 100},
		{450, 5, 50, 50},
		{10000, 101, 0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForXP(tt.xp), "xp=%d", tt.xp)
		assert.Equal(t, tt.into, XPIntoLevel(tt.xp), "xp=%d", tt.xp)
		assert.Equal(t, tt.toNext, XPToNextLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Now()
	weekAgo := now.Add(-7 * 24 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)

	t.Run("increments from zero", func(t *testing.T) {
		assert.Equal(t, 1, NextStreak(0, nil, now, 0))
	})

	t.Run("never resets when disabled", func(t *testing.T) {
		assert.Equal(t, 6, NextStreak(5, &weekAgo, now, 0))
	})

	t.Run("resets to one past the window", func(t *testing.T) {
		assert.Equal(t, 1, NextStreak(5, &weekAgo, now, 3*24*time.Hour))
	})

	t.Run("increments inside the window", func(t *testing.T) {
		assert.Equal(t, 6, NextStreak(5, &yesterday, now, 3*24*time.Hour))
	})
}
