package services

import (
	"errors"
	"fmt"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService maintains the local mirror of identity-provider accounts.
// The engine never manages credentials; it only needs a stable local row
// per authenticated principal.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// EnsureUser upserts the mirror row for an authenticated principal and
// returns it. First sight of a principal creates the row; the unique
// index on external_user_id absorbs concurrent first requests.
func (s *UserService) EnsureUser(externalUserID, email, username string, organizer bool) (*models.User, error) {
	if externalUserID == "" {
		return nil, fmt.Errorf("%w: missing principal", ErrUnauthorized)
	}

	role := models.RoleVolunteer
	if organizer {
		role = models.RoleOrganizer
	}
	row := models.User{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		Email:          email,
		Username:       username,
		Role:           role,
	}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, err
	}

	var user models.User
	if err := s.DB.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		return nil, err
	}

	// Role upgrades flow from the identity provider's role claims
	if organizer && user.Role != models.RoleOrganizer {
		if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).
			Update("role", models.RoleOrganizer).Error; err != nil {
			return nil, err
		}
		user.Role = models.RoleOrganizer
	}
	return &user, nil
}

func (s *UserService) GetUser(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile edits the caller's mutable profile fields. Identity
// fields (external id, email) stay owned by the provider.
func (s *UserService) UpdateProfile(userID string, firstName, lastName, avatarURL *string) (*models.User, error) {
	updates := map[string]interface{}{}
	if firstName != nil {
		updates["first_name"] = *firstName
	}
	if lastName != nil {
		updates["last_name"] = *lastName
	}
	if avatarURL != nil {
		updates["avatar_url"] = *avatarURL
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetUser(userID)
}
