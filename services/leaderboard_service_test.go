package services

import (
	"testing"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLedgerEntry(t *testing.T, db *gorm.DB, userID string, amount int64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&models.PointsHistory{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    models.ReasonParticipation,
		CreatedAt: at,
	}).Error)
}

func TestParsePeriod(t *testing.T) {
	for _, input := range []string{"weekly", "monthly", "all-time"} {
		period, err := ParsePeriod(input)
		require.NoError(t, err)
		assert.Equal(t, Period(input), period)
	}

	period, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodAllTime, period)

	_, err = ParsePeriod("daily")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWindowFor(t *testing.T) {
	// Wednesday, August 26th
	now := time.Date(2026, time.August, 26, 15, 30, 0, 0, time.UTC)

	start, end := windowFor(PeriodWeekly, now)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), start, "week starts Monday")
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), end)

	// A Monday belongs to its own week
	monday := time.Date(2026, time.August, 24, 9, 0, 0, 0, time.UTC)
	start, _ = windowFor(PeriodWeekly, monday)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), start)

	start, end = windowFor(PeriodMonthly, now)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestAllTimeLeaderboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	users := make([]*models.User, 4)
	for i, xp := range []int64{100, 100, 50, 0} {
		users[i] = newTestUser(t, db, models.RoleVolunteer)
		seedUserStats(t, db, users[i].ID, models.UserXP{TotalXP: xp})
	}

	t.Run("ties share a rank and the next total skips", func(t *testing.T) {
		page, err := svc.GetLeaderboard(PeriodAllTime, 10, 0, "")
		require.NoError(t, err)
		require.Len(t, page.Entries, 4)
		assert.Equal(t, int64(4), page.TotalCount)

		assert.Equal(t, int64(1), page.Entries[0].Rank)
		assert.Equal(t, int64(1), page.Entries[1].Rank)
		assert.Equal(t, int64(3), page.Entries[2].Rank)
		assert.Equal(t, int64(50), page.Entries[2].XP)
		assert.Equal(t, int64(4), page.Entries[3].Rank)

		assert.False(t, page.HasMore)
		assert.Nil(t, page.NextOffset)
	})

	t.Run("levels are derived per entry", func(t *testing.T) {
		page, err := svc.GetLeaderboard(PeriodAllTime, 1, 0, "")
		require.NoError(t, err)
		require.Len(t, page.Entries, 1)
		assert.Equal(t, 2, page.Entries[0].Level) // 100 XP
		assert.Equal(t, int64(0), page.Entries[0].XPIntoLevel)
	})

	t.Run("pagination reports the next offset", func(t *testing.T) {
		page, err := svc.GetLeaderboard(PeriodAllTime, 2, 0, "")
		require.NoError(t, err)
		assert.Len(t, page.Entries, 2)
		assert.True(t, page.HasMore)
		require.NotNil(t, page.NextOffset)
		assert.Equal(t, 2, *page.NextOffset)

		page, err = svc.GetLeaderboard(PeriodAllTime, 2, 2, "")
		require.NoError(t, err)
		assert.Len(t, page.Entries, 2)
		assert.False(t, page.HasMore)
		assert.Nil(t, page.NextOffset)
	})

	t.Run("me rides along even off the page", func(t *testing.T) {
		page, err := svc.GetLeaderboard(PeriodAllTime, 1, 0, users[2].ID)
		require.NoError(t, err)
		require.NotNil(t, page.Me)
		assert.Equal(t, users[2].ID, page.Me.UserID)
		assert.Equal(t, int64(3), page.Me.Rank)
		assert.Equal(t, int64(50), page.Me.XP)
	})
}

func TestWindowedLeaderboard(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)
	now := time.Now()

	active := newTestUser(t, db, models.RoleVolunteer)
	busier := newTestUser(t, db, models.RoleVolunteer)
	stale := newTestUser(t, db, models.RoleVolunteer)

	// This week: busier 80, active 30. Stale only has an entry from well
	// before any current window.
	seedLedgerEntry(t, db, busier.ID, 80, now)
	seedLedgerEntry(t, db, active.ID, 30, now)
	seedLedgerEntry(t, db, active.ID, 500, now.AddDate(0, 0, -40))
	seedLedgerEntry(t, db, stale.ID, 900, now.AddDate(0, 0, -40))

	t.Run("weekly only counts this week's ledger", func(t *testing.T) {
		page, err := svc.GetLeaderboard(PeriodWeekly, 10, 0, "")
		require.NoError(t, err)
		require.Len(t, page.Entries, 2)
		assert.Equal(t, busier.ID, page.Entries[0].UserID)
		assert.Equal(t, int64(80), page.Entries[0].XP)
		assert.Equal(t, active.ID, page.Entries[1].UserID)
		assert.Equal(t, int64(30), page.Entries[1].XP)
	})

	t.Run("user rank matches the windowed sums", func(t *testing.T) {
		me, err := svc.GetUserRank(PeriodWeekly, active.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(30), me.XP)
		assert.Equal(t, int64(2), me.Rank)

		out, err := svc.GetUserRank(PeriodWeekly, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), out.XP)
		assert.Equal(t, int64(3), out.Rank, "no window activity ranks below both scorers")
	})

	t.Run("all-time rank ignores the window", func(t *testing.T) {
		seedUserStats(t, db, stale.ID, models.UserXP{TotalXP: 900})
		me, err := svc.GetUserRank(PeriodAllTime, stale.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(900), me.XP)
		assert.Equal(t, int64(1), me.Rank)
	})
}
