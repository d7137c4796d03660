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

// RegistrationService owns the register → check-in → unregister part of
// the per-(user, event) workflow. Legality is enforced against the event
// status plus the registration row; duplicates are caught by the unique
// (user_id, event_id) index, not by a pre-read.
type RegistrationService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewRegistrationService(db *gorm.DB, progression *ProgressionService) *RegistrationService {
	return &RegistrationService{DB: db, Progression: progression}
}

// CheckInResult is returned by both check-in paths so the caller can show
// the XP toast without a second request.
type CheckInResult struct {
	Registration *models.Registration `json:"registration"`
	XPAwarded    int64                `json:"xp_awarded"`
}

// Register signs a volunteer up for an Upcoming, not-yet-dated event.
func (s *RegistrationService) Register(userID, eventID string) (*models.Registration, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	if event.Status != models.EventStatusUpcoming {
		return nil, fmt.Errorf("%w: registration is only open while the event is upcoming, not %s", ErrInvalidState, event.Status)
	}
	if event.Date.Before(time.Now()) {
		return nil, fmt.Errorf("%w: event date has already passed", ErrInvalidState)
	}

	reg := models.Registration{
		ID:      uuid.NewString(),
		UserID:  userID,
		EventID: eventID,
	}
	if err := s.DB.Create(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: already registered for this event", ErrConflict)
		}
		return nil, err
	}
	return &reg, nil
}

// CheckIn marks a pre-registered volunteer present at an Ongoing event and
// awards the check-in XP. The has_joined guard rides on the UPDATE, so a
// double-tap can't award twice.
func (s *RegistrationService) CheckIn(userID, eventID string) (*CheckInResult, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	return s.checkIn(userID, &event, false)
}

// CheckInByCode resolves the event from its join code. A volunteer with no
// prior registration gets registered and joined in one step, which pays
// the higher signup award.
func (s *RegistrationService) CheckInByCode(userID, joinCode string) (*CheckInResult, error) {
	code := strings.ToUpper(strings.TrimSpace(joinCode))
	var event models.Event
	if err := s.DB.Where("join_code = ?", code).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no event with join code %s", ErrNotFound, code)
		}
		return nil, err
	}
	return s.checkIn(userID, &event, true)
}

func (s *RegistrationService) checkIn(userID string, event *models.Event, allowSignup bool) (*CheckInResult, error) {
	if event.Status != models.EventStatusOngoing {
		return nil, fmt.Errorf("%w: check-in requires an ongoing event, got %s", ErrInvalidState, event.Status)
	}

	now := time.Now()
	var out CheckInResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		err := tx.Where("user_id = ? AND event_id = ?", userID, event.ID).First(&reg).Error

		switch {
		case err == nil:
			res := tx.Model(&models.Registration{}).
				Where("id = ? AND has_joined = ?", reg.ID, false).
				Updates(map[string]interface{}{"has_joined": true, "joined_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: already checked in", ErrConflict)
			}
			reg.HasJoined = true
			reg.JoinedAt = &now
			out.XPAwarded = CheckInXP
			out.Registration = &reg
			return s.Progression.ApplyLedgerEntry(tx, userID, CheckInXP, models.ReasonCheckIn, &event.ID, nil)

		case errors.Is(err, gorm.ErrRecordNotFound):
			if !allowSignup {
				return fmt.Errorf("%w: no registration for this event", ErrNotFound)
			}
			reg = models.Registration{
				ID:        uuid.NewString(),
				UserID:    userID,
				EventID:   event.ID,
				HasJoined: true,
				JoinedAt:  &now,
			}
			if err := tx.Create(&reg).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: already checked in", ErrConflict)
				}
				return err
			}
			out.XPAwarded = CheckInWithSignupXP
			out.Registration = &reg
			return s.Progression.ApplyLedgerEntry(tx, userID, CheckInWithSignupXP, models.ReasonCheckInWithSignup, &event.ID, nil)

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Check-in: user %s at event %s (+%d XP)", userID, event.ID, out.XPAwarded)
	return &out, nil
}

// Unregister removes the registration outright. Nothing was awarded at
// registration time, so there is no ledger or aggregate effect.
func (s *RegistrationService) Unregister(userID, eventID string) error {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return err
	}
	if event.Status == models.EventStatusOngoing || event.Status == models.EventStatusCompleted {
		return fmt.Errorf("%w: cannot unregister from a %s event", ErrInvalidState, event.Status)
	}

	res := s.DB.Unscoped().Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.Registration{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no registration for this event", ErrNotFound)
	}
	return nil
}

// GetRegistration returns the caller's registration for one event.
func (s *RegistrationService) GetRegistration(userID, eventID string) (*models.Registration, error) {
	var reg models.Registration
	if err := s.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&reg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no registration for this event", ErrNotFound)
		}
		return nil, err
	}
	return &reg, nil
}

// ListUserRegistrations returns the caller's registrations, newest first.
func (s *RegistrationService) ListUserRegistrations(userID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&regs).Error
	return regs, err
}

// ListEventAttendees is creator-only: everyone registered, joined first.
func (s *RegistrationService) ListEventAttendees(eventID, actorID string) ([]models.Registration, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can list attendees", ErrForbidden)
	}

	var regs []models.Registration
	err := s.DB.Where("event_id = ?", eventID).
		Order("has_joined DESC, created_at ASC").
		Find(&regs).Error
	return regs, err
}
