package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParticipationService handles evidence submission and organizer review.
// A submission is one transaction: participation insert, ledger append,
// aggregate increments and badge evaluation all commit or roll back
// together — a half-applied award is never observable.
type ParticipationService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Badges      *BadgeService
}

func NewParticipationService(db *gorm.DB, progression *ProgressionService, badges *BadgeService) *ParticipationService {
	return &ParticipationService{DB: db, Progression: progression, Badges: badges}
}

type ParticipationInput struct {
	WasteCollectedKg float64  `json:"waste_collected_kg" validate:"required,gte=0.1"`
	Description      string   `json:"description" validate:"max=5000"`
	PhotoURLs        []string `json:"photo_urls" validate:"max=10,dive,url"`
	LocationName     string   `json:"location_name" validate:"max=300"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

// SubmissionResult bundles the stored row with the award and any badges
// that unlocked — the only notification signal the API exposes for badges.
type SubmissionResult struct {
	Participation *models.Participation `json:"participation"`
	XPAwarded     int64                 `json:"xp_awarded"`
	NewBadges     []models.Badge        `json:"new_badges"`
}

// Submit records waste-collection evidence for a joined volunteer at an
// Ongoing event. At most one submission per (user, event); the unique
// index backs that up under concurrency.
func (s *ParticipationService) Submit(userID, eventID string, in ParticipationInput) (*SubmissionResult, error) {
	if in.WasteCollectedKg < MinWasteKg {
		return nil, fmt.Errorf("%w: waste_collected_kg must be at least %.1f kg", ErrValidation, MinWasteKg)
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be supplied together", ErrValidation)
	}

	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	if event.Status != models.EventStatusOngoing {
		return nil, fmt.Errorf("%w: submissions require an ongoing event, got %s", ErrInvalidState, event.Status)
	}

	var reg models.Registration
	if err := s.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: not registered for this event", ErrForbidden)
		}
		return nil, err
	}
	if !reg.HasJoined {
		return nil, fmt.Errorf("%w: check in before submitting evidence", ErrForbidden)
	}

	xp := ParticipationXP(in.WasteCollectedKg)
	now := time.Now()
	out := SubmissionResult{XPAwarded: xp}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		part := models.Participation{
			ID:               uuid.NewString(),
			UserID:           userID,
			EventID:          eventID,
			WasteCollectedKg: in.WasteCollectedKg,
			Description:      in.Description,
			PhotoURLs:        strings.Join(in.PhotoURLs, ","),
			LocationName:     in.LocationName,
			Latitude:         in.Latitude,
			Longitude:        in.Longitude,
			XPEarned:         xp,
			Verification:     models.VerificationPending,
		}
		if err := tx.Create(&part).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: participation already submitted for this event", ErrConflict)
			}
			return err
		}

		if err := s.Progression.ApplyLedgerEntry(tx, userID, xp, models.ReasonParticipation, &eventID, &part.ID); err != nil {
			return err
		}
		if err := s.Progression.RecordParticipationStats(tx, userID, in.WasteCollectedKg, now); err != nil {
			return err
		}

		badges, err := s.Badges.Evaluate(tx, userID)
		if err != nil {
			return err
		}
		out.Participation = &part
		out.NewBadges = badges
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🌱 Participation: user %s, event %s, %.1f kg → +%d XP, %d new badge(s)",
		userID, eventID, in.WasteCollectedKg, xp, len(out.NewBadges))
	return &out, nil
}

// Verify is the organizer's one-way review. The pending guard rides on the
// UPDATE, so replaying the call can't double-award the bonus.
func (s *ParticipationService) Verify(participationID, actorID string, approve bool, bonusXP int64) (*models.Participation, error) {
	if bonusXP < 0 || bonusXP > MaxVerificationBonus {
		return nil, fmt.Errorf("%w: bonus XP must be between 0 and %d", ErrValidation, MaxVerificationBonus)
	}

	var part models.Participation
	if err := s.DB.Where("id = ?", participationID).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: participation %s", ErrNotFound, participationID)
		}
		return nil, err
	}

	var event models.Event
	if err := s.DB.Where("id = ?", part.EventID).First(&event).Error; err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can verify submissions", ErrForbidden)
	}

	state := models.VerificationRejected
	if approve {
		state = models.VerificationVerified
	}
	now := time.Now()

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Participation{}).
			Where("id = ? AND verification = ?", participationID, models.VerificationPending).
			Updates(map[string]interface{}{
				"verification": state,
				"verified_at":  now,
				"verified_by":  actorID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: participation already %s", ErrConflict, part.Verification)
		}

		if approve && bonusXP > 0 {
			if err := tx.Model(&models.Participation{}).
				Where("id = ?", participationID).
				Update("xp_earned", gorm.Expr("xp_earned + ?", bonusXP)).Error; err != nil {
				return err
			}
			return s.Progression.ApplyLedgerEntry(tx, part.UserID, bonusXP, models.ReasonVerificationBonus, &part.EventID, &part.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🔎 Verification: participation %s → %s by %s (bonus %d XP)", participationID, state, actorID, bonusXP)
	if err := s.DB.Where("id = ?", participationID).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// GetUserParticipation returns the caller's submission for one event.
func (s *ParticipationService) GetUserParticipation(userID, eventID string) (*models.Participation, error) {
	var part models.Participation
	if err := s.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no participation for this event", ErrNotFound)
		}
		return nil, err
	}
	return &part, nil
}

// ListEventParticipations is creator-only, pending review first.
func (s *ParticipationService) ListEventParticipations(eventID, actorID string) ([]models.Participation, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can list submissions", ErrForbidden)
	}

	var parts []models.Participation
	err := s.DB.Where("event_id = ?", eventID).
		Order("CASE verification WHEN 'pending' THEN 0 ELSE 1 END, created_at ASC").
		Find(&parts).Error
	return parts, err
}
