package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressionService is the single write path for XP. Every point gained
// or spent goes through ApplyLedgerEntry so the PointsHistory ledger and
// the UserXP cache can never diverge.
type ProgressionService struct {
	DB *gorm.DB

	// StreakReset == 0 keeps the legacy never-resetting streak.
	StreakReset time.Duration
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	var reset time.Duration
	if v := os.Getenv("STREAK_RESET_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			reset = time.Duration(days) * 24 * time.Hour
		} else {
			log.Printf("⚠️ STREAK_RESET_DAYS=%q ignored (want a positive integer)", v)
		}
	}
	return &ProgressionService{DB: db, StreakReset: reset}
}

// EnsureUserXP makes sure the aggregate row exists (idempotent). The
// unique index on user_id absorbs concurrent first-time creations.
func (s *ProgressionService) EnsureUserXP(db *gorm.DB, userID string) (*models.UserXP, error) {
	row := models.UserXP{
		ID:           uuid.NewString(),
		UserID:       userID,
		CurrentLevel: 1,
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}
	var agg models.UserXP
	if err := db.Where("user_id = ?", userID).First(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

// ApplyLedgerEntry inserts one ledger row and applies the same amount to
// the cached total with a relative UPDATE, inside the caller's transaction.
// For debits the UPDATE carries a balance guard, so a redemption can never
// drive the total negative; zero rows affected means the balance was short
// and nothing — including the ledger row — is written.
func (s *ProgressionService) ApplyLedgerEntry(tx *gorm.DB, userID string, amount int64, reason string, eventID, participationID *string) error {
	if _, err := s.EnsureUserXP(tx, userID); err != nil {
		return err
	}

	q := tx.Model(&models.UserXP{}).Where("user_id = ?", userID)
	if amount < 0 {
		q = q.Where("total_xp >= ?", -amount)
	}
	res := q.Update("total_xp", gorm.Expr("total_xp + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: balance below %d", ErrInsufficientPoints, -amount)
	}

	entry := models.PointsHistory{
		ID:              uuid.NewString(),
		UserID:          userID,
		Amount:          amount,
		Reason:          reason,
		EventID:         eventID,
		ParticipationID: participationID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}

	// Re-derive the level from the post-update total
	var agg models.UserXP
	if err := tx.Where("user_id = ?", userID).First(&agg).Error; err != nil {
		return err
	}
	newLevel := LevelForXP(agg.TotalXP)
	if newLevel != agg.CurrentLevel {
		if err := tx.Model(&models.UserXP{}).Where("user_id = ?", userID).
			Update("current_level", newLevel).Error; err != nil {
			return err
		}
	}
	return nil
}

// RecordParticipationStats bumps the participation counters and the
// streak. The streak is read-then-write, but the award's ApplyLedgerEntry
// UPDATE earlier in the same transaction already holds the row lock, so a
// concurrent submission serializes behind it. The plain counters still
// use relative increments.
func (s *ProgressionService) RecordParticipationStats(tx *gorm.DB, userID string, wasteKg float64, now time.Time) error {
	var agg models.UserXP
	if err := tx.Where("user_id = ?", userID).First(&agg).Error; err != nil {
		return err
	}

	streak := NextStreak(agg.CurrentStreak, agg.LastParticipated, now, s.StreakReset)
	longest := agg.LongestStreak
	if streak > longest {
		longest = streak
	}

	return tx.Model(&models.UserXP{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"total_events_participated": gorm.Expr("total_events_participated + 1"),
		"total_waste_collected":     gorm.Expr("total_waste_collected + ?", wasteKg),
		"current_streak":            streak,
		"longest_streak":            longest,
		"last_participated":         now,
	}).Error
}

// BadgeStatsFor assembles the snapshot the badge predicates run against.
func (s *ProgressionService) BadgeStatsFor(db *gorm.DB, userID string) (models.BadgeStats, error) {
	var stats models.BadgeStats

	var agg models.UserXP
	if err := db.Where("user_id = ?", userID).First(&agg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return stats, fmt.Errorf("%w: no progress for user %s", ErrNotFound, userID)
		}
		return stats, err
	}
	stats.TotalXP = agg.TotalXP
	stats.CurrentStreak = agg.CurrentStreak
	stats.TotalEventsParticipated = agg.TotalEventsParticipated
	stats.TotalWasteCollected = agg.TotalWasteCollected

	if err := db.Model(&models.Registration{}).Where("user_id = ?", userID).
		Count(&stats.RegistrationCount).Error; err != nil {
		return stats, err
	}

	// Signup ordinal: how many accounts existed before this one, plus one
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err == nil {
		var earlier int64
		if err := db.Model(&models.User{}).Where("created_at < ?", user.CreatedAt).
			Count(&earlier).Error; err == nil {
			stats.UserSeq = earlier + 1
		}
	}
	return stats, nil
}

// GetUserXP returns the aggregate row, creating it lazily for new users.
func (s *ProgressionService) GetUserXP(userID string) (*models.UserXP, error) {
	return s.EnsureUserXP(s.DB, userID)
}

// GetHistory returns the user's ledger, newest first, paginated.
func (s *ProgressionService) GetHistory(userID string, limit, offset int) ([]models.PointsHistory, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.DB.Model(&models.PointsHistory{}).Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.PointsHistory
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, total, err
}
