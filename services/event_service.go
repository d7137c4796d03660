package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

// joinCodeAlphabet drops 0/O/1/I so codes survive being read off a poster.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLen = 6

type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// EventInput carries the creator-editable fields.
type EventInput struct {
	Title         string     `json:"title" validate:"required,min=3,max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	Date          time.Time  `json:"date" validate:"required"`
	WasteTargetKg float64    `json:"waste_target_kg" validate:"gte=0"`
	LocationName  string     `json:"location_name" validate:"max=300"`
	Latitude      *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude     *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	CoverPhotoURL string     `json:"cover_photo_url"`
}

// CreateEvent creates an Upcoming event owned by the acting organizer.
func (s *EventService) CreateEvent(actor *models.User, in EventInput) (*models.Event, error) {
	if !actor.IsOrganizer() {
		return nil, fmt.Errorf("%w: only organizers can create events", ErrForbidden)
	}
	if in.Date.Before(time.Now()) {
		return nil, fmt.Errorf("%w: event date must be in the future", ErrValidation)
	}

	event := models.Event{
		ID:            uuid.NewString(),
		CreatorID:     actor.ID,
		Title:         in.Title,
		Description:   in.Description,
		Status:        models.EventStatusUpcoming,
		Date:          in.Date,
		WasteTargetKg: in.WasteTargetKg,
		LocationName:  in.LocationName,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		CoverPhotoURL: in.CoverPhotoURL,
	}

	// Join code and slug are unique-indexed; retry on the rare collision
	// instead of pre-checking (two pre-checks can both pass).
	for attempt := 0; attempt < 5; attempt++ {
		code, err := gonanoid.Generate(joinCodeAlphabet, joinCodeLen)
		if err != nil {
			return nil, err
		}
		suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz234567", 6)
		if err != nil {
			return nil, err
		}
		event.JoinCode = code
		event.Slug = slug.Make(in.Title) + "-" + suffix

		err = s.DB.Create(&event).Error
		if err == nil {
			return &event, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		log.Printf("⚠️ join code/slug collision for event %q, retrying", in.Title)
	}
	return nil, fmt.Errorf("could not allocate a unique join code for %q", in.Title)
}

func (s *EventService) GetEvent(eventID string) (*models.Event, error) {
	var event models.Event
	if err := s.DB.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventID)
		}
		return nil, err
	}
	return &event, nil
}

func (s *EventService) GetEventBySlug(eventSlug string) (*models.Event, error) {
	var event models.Event
	if err := s.DB.Where("slug = ?", eventSlug).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, eventSlug)
		}
		return nil, err
	}
	return &event, nil
}

// ListEvents returns events filtered by status (optional), soonest first.
func (s *EventService) ListEvents(status models.EventStatus, limit, offset int) ([]models.Event, int64, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.DB.Model(&models.Event{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.Event
	err := q.Order("date ASC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

func (s *EventService) ListEventsByCreator(creatorID string) ([]models.Event, error) {
	var events []models.Event
	err := s.DB.Where("creator_id = ?", creatorID).Order("date DESC").Find(&events).Error
	return events, err
}

// StartEvent moves Upcoming → Ongoing and stamps the real start time.
// Creator-only; the status guard rides on the UPDATE so two concurrent
// starts can't both succeed.
func (s *EventService) StartEvent(eventID, actorID string) (*models.Event, error) {
	return s.transition(eventID, actorID, models.EventStatusUpcoming, models.EventStatusOngoing)
}

// EndEvent moves Ongoing → Completed and stamps the end time.
func (s *EventService) EndEvent(eventID, actorID string) (*models.Event, error) {
	return s.transition(eventID, actorID, models.EventStatusOngoing, models.EventStatusCompleted)
}

func (s *EventService) transition(eventID, actorID string, from, to models.EventStatus) (*models.Event, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can change its status", ErrForbidden)
	}

	now := time.Now()
	updates := map[string]interface{}{"status": to}
	switch to {
	case models.EventStatusOngoing:
		updates["start_time"] = now
	case models.EventStatusCompleted:
		updates["end_time"] = now
	}

	res := s.DB.Model(&models.Event{}).
		Where("id = ? AND status = ?", eventID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: event is %s, expected %s", ErrInvalidState, event.Status, from)
	}

	log.Printf("📅 Event %s: %s → %s by %s", eventID, from, to, actorID)
	return s.GetEvent(eventID)
}

// CancelEvent is the only other transition: Upcoming → Cancelled.
func (s *EventService) CancelEvent(eventID, actorID string) (*models.Event, error) {
	return s.transition(eventID, actorID, models.EventStatusUpcoming, models.EventStatusCancelled)
}

// UpdateEvent edits event fields. Blocked once the event is terminal;
// status itself is not editable here (see Start/End/CancelEvent).
func (s *EventService) UpdateEvent(eventID, actorID string, in EventInput) (*models.Event, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can update it", ErrForbidden)
	}
	if event.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot update a %s event", ErrInvalidState, event.Status)
	}

	updates := map[string]interface{}{
		"title":           in.Title,
		"description":     in.Description,
		"date":            in.Date,
		"waste_target_kg": in.WasteTargetKg,
		"location_name":   in.LocationName,
		"latitude":        in.Latitude,
		"longitude":       in.Longitude,
	}
	if strings.TrimSpace(in.CoverPhotoURL) != "" {
		updates["cover_photo_url"] = in.CoverPhotoURL
	}
	if err := s.DB.Model(&models.Event{}).Where("id = ?", eventID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetEvent(eventID)
}

// DeleteEvent soft-deletes. Disallowed while the event is running.
func (s *EventService) DeleteEvent(eventID, actorID string) error {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return err
	}
	if event.CreatorID != actorID {
		return fmt.Errorf("%w: only the event creator can delete it", ErrForbidden)
	}
	if event.Status == models.EventStatusOngoing {
		return fmt.Errorf("%w: cannot delete an ongoing event", ErrInvalidState)
	}
	return s.DB.Delete(&models.Event{}, "id = ?", eventID).Error
}

// RegenerateJoinCode rotates the code while the event is still Upcoming,
// e.g. when a poster leaked early.
func (s *EventService) RegenerateJoinCode(eventID, actorID string) (*models.Event, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatorID != actorID {
		return nil, fmt.Errorf("%w: only the event creator can rotate the join code", ErrForbidden)
	}
	if event.Status != models.EventStatusUpcoming {
		return nil, fmt.Errorf("%w: join code can only change while upcoming", ErrInvalidState)
	}

	for attempt := 0; attempt < 5; attempt++ {
		code, err := gonanoid.Generate(joinCodeAlphabet, joinCodeLen)
		if err != nil {
			return nil, err
		}
		err = s.DB.Model(&models.Event{}).Where("id = ?", eventID).
			Update("join_code", code).Error
		if err == nil {
			return s.GetEvent(eventID)
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate a unique join code for event %s", eventID)
}
