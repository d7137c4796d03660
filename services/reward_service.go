package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RewardService manages the XP-priced reward catalog and redemptions.
// A redemption debits the aggregate through the same ledger funnel every
// award uses; the balance guard lives on the debit UPDATE itself, so the
// total can never go negative even under concurrent claims.
type RewardService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewRewardService(db *gorm.DB, progression *ProgressionService) *RewardService {
	return &RewardService{DB: db, Progression: progression}
}

type RewardInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	ImageURL    string     `json:"image_url"`
	CostXP      int64      `json:"cost_xp" validate:"required,gt=0"`
	Stock       *int       `json:"stock"` // nil or negative = unlimited
	IsActive    *bool      `json:"is_active"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// CreateReward adds a catalog item (organizer-only).
func (s *RewardService) CreateReward(actor *models.User, in RewardInput) (*models.Reward, error) {
	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%w: only organizers can manage rewards", ErrForbidden)
	}

	reward := models.Reward{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CostXP:      in.CostXP,
		Stock:       -1,
		IsActive:    true,
		ExpiryDate:  in.ExpiryDate,
	}
	if in.Stock != nil {
		reward.Stock = *in.Stock
	}
	if in.IsActive != nil {
		reward.IsActive = *in.IsActive
	}

	if err := s.DB.Create(&reward).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

// UpdateReward edits a catalog item (organizer-only).
func (s *RewardService) UpdateReward(actor *models.User, rewardID string, in RewardInput) (*models.Reward, error) {
	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%w: only organizers can manage rewards", ErrForbidden)
	}

	reward, err := s.GetReward(rewardID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"title":       in.Title,
		"description": in.Description,
		"cost_xp":     in.CostXP,
		"expiry_date": in.ExpiryDate,
	}
	if in.ImageURL != "" {
		updates["image_url"] = in.ImageURL
	}
	if in.Stock != nil {
		updates["stock"] = *in.Stock
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.DB.Model(&models.Reward{}).Where("id = ?", reward.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetReward(rewardID)
}

func (s *RewardService) GetReward(rewardID string) (*models.Reward, error) {
	var reward models.Reward
	if err := s.DB.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: reward %s", ErrNotFound, rewardID)
		}
		return nil, err
	}
	return &reward, nil
}

// ListRewards returns active, unexpired catalog items, cheapest first.
func (s *RewardService) ListRewards() ([]models.Reward, error) {
	var rewards []models.Reward
	err := s.DB.Where("is_active = ?", true).
		Where("expiry_date IS NULL OR expiry_date > ?", time.Now()).
		Order("cost_xp ASC").
		Find(&rewards).Error
	return rewards, err
}

// Redeem claims a reward for the caller. One transaction: stock decrement
// (guarded), XP debit via the ledger funnel (guarded), redemption row
// (unique per user+reward). Any guard failing rolls the whole claim back.
func (s *RewardService) Redeem(userID, rewardID string) (*models.Redemption, error) {
	reward, err := s.GetReward(rewardID)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, fmt.Errorf("%w: reward is not available", ErrInvalidState)
	}
	if reward.ExpiryDate != nil && reward.ExpiryDate.Before(time.Now()) {
		return nil, fmt.Errorf("%w: reward has expired", ErrInvalidState)
	}

	redemption := models.Redemption{
		ID:       uuid.NewString(),
		UserID:   userID,
		RewardID: reward.ID,
		CostXP:   reward.CostXP,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if reward.Stock >= 0 {
			res := tx.Model(&models.Reward{}).
				Where("id = ? AND stock > 0", reward.ID).
				Update("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: reward is out of stock", ErrInvalidState)
			}
		}

		if err := tx.Create(&redemption).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: reward already redeemed", ErrConflict)
			}
			return err
		}

		return s.Progression.ApplyLedgerEntry(tx, userID, -reward.CostXP, models.ReasonRewardRedemption, nil, nil)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎁 Redemption: user %s claimed %q for %d XP", userID, reward.Title, reward.CostXP)
	return &redemption, nil
}

// ListUserRedemptions returns the caller's claims, newest first.
func (s *RewardService) ListUserRedemptions(userID string) ([]models.Redemption, error) {
	var redemptions []models.Redemption
	err := s.DB.Where("user_id = ?", userID).Order("redeemed_at DESC").Find(&redemptions).Error
	return redemptions, err
}
