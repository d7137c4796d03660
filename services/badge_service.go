package services

import (
	"errors"
	"log"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeService evaluates the fixed catalog in models.BadgeCatalog against
// a user's aggregate stats. Definitions are seeded once at construction
// (upsert by unique name), not lazily in the evaluation path, so two
// concurrent evaluations can't race on catalog creation.
type BadgeService struct {
	DB          *gorm.DB
	Progression *ProgressionService

	byName map[string]models.Badge // seeded rows, keyed by definition name
}

func NewBadgeService(db *gorm.DB, progression *ProgressionService) (*BadgeService, error) {
	s := &BadgeService{DB: db, Progression: progression, byName: make(map[string]models.Badge)}
	if err := s.seedCatalog(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BadgeService) seedCatalog() error {
	for _, def := range models.BadgeCatalog {
		row := models.Badge{
			ID:          uuid.NewString(),
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			Rarity:      def.Rarity,
		}
		if err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
		// Re-read: on conflict the existing row keeps its original id
		var stored models.Badge
		if err := s.DB.Where("name = ?", def.Name).First(&stored).Error; err != nil {
			return err
		}
		s.byName[def.Name] = stored
	}
	log.Printf("🎖️ Badge catalog ready: %d definitions", len(s.byName))
	return nil
}

// Evaluate runs every catalog predicate for the user and grants what newly
// qualifies. Prior grants are skipped by badge-id membership, never
// re-derived — a badge stays granted even if the stat could regress.
// Returns exactly the badges granted by this call.
func (s *BadgeService) Evaluate(tx *gorm.DB, userID string) ([]models.Badge, error) {
	stats, err := s.Progression.BadgeStatsFor(tx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil // no aggregate yet, nothing can qualify
		}
		return nil, err
	}

	var grants []models.UserBadge
	if err := tx.Where("user_id = ?", userID).Find(&grants).Error; err != nil {
		return nil, err
	}
	granted := make(map[string]bool, len(grants))
	for _, g := range grants {
		granted[g.BadgeID] = true
	}

	var newBadges []models.Badge
	for _, def := range models.BadgeCatalog {
		badge, ok := s.byName[def.Name]
		if !ok || granted[badge.ID] {
			continue
		}
		if !def.Qualifies(stats) {
			continue
		}

		grant := models.UserBadge{
			ID:       uuid.NewString(),
			UserID:   userID,
			BadgeID:  badge.ID,
			EarnedAt: time.Now(),
		}
		if err := tx.Create(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // lost a concurrent race for the same grant: fine
			}
			return nil, err
		}
		newBadges = append(newBadges, badge)
		log.Printf("🎖️ Badge awarded: %q → user %s", badge.Name, userID)
	}
	return newBadges, nil
}

// Recheck re-runs the engine outside a submission, e.g. after the catalog
// gained a definition. Idempotent: a second run grants nothing.
func (s *BadgeService) Recheck(userID string) ([]models.Badge, error) {
	var newBadges []models.Badge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		newBadges, err = s.Evaluate(tx, userID)
		return err
	})
	return newBadges, err
}

// EarnedBadge is a grant joined with its definition metadata.
type EarnedBadge struct {
	models.Badge
	EarnedAt time.Time `json:"earned_at"`
}

// ListUserBadges returns everything the user has earned, newest first.
func (s *BadgeService) ListUserBadges(userID string) ([]EarnedBadge, error) {
	var grants []models.UserBadge
	if err := s.DB.Where("user_id = ?", userID).Order("earned_at DESC").Find(&grants).Error; err != nil {
		return nil, err
	}

	out := make([]EarnedBadge, 0, len(grants))
	for _, g := range grants {
		var badge models.Badge
		if err := s.DB.Where("id = ?", g.BadgeID).First(&badge).Error; err != nil {
			continue
		}
		out = append(out, EarnedBadge{Badge: badge, EarnedAt: g.EarnedAt})
	}
	return out, nil
}
