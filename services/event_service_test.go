package services

import (
	"testing"
	"time"

	"cleanup-event-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	organizer := newTestUser(t, db, models.RoleOrganizer)
	volunteer := newTestUser(t, db, models.RoleVolunteer)

	in := EventInput{
		Title:         "River Cleanup",
		Date:          time.Now().Add(48 * time.Hour),
		WasteTargetKg: 200,
		LocationName:  "East Bank",
	}

	t.Run("organizer creates upcoming event with code and slug", func(t *testing.T) {
		event, err := svc.CreateEvent(organizer, in)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusUpcoming, event.Status)
		assert.Len(t, event.JoinCode, 6)
		assert.Contains(t, event.Slug, "river-cleanup-")
	})

	t.Run("volunteer cannot create", func(t *testing.T) {
		_, err := svc.CreateEvent(volunteer, in)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("past date rejected", func(t *testing.T) {
		past := in
		past.Date = time.Now().Add(-time.Hour)
		_, err := svc.CreateEvent(organizer, past)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestEventTransitions(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	organizer := newTestUser(t, db, models.RoleOrganizer)
	other := newTestUser(t, db, models.RoleOrganizer)

	t.Run("completed only via ongoing", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)

		_, err := svc.EndEvent(event.ID, organizer.ID)
		assert.ErrorIs(t, err, ErrInvalidState, "end before start must fail")

		started, err := svc.StartEvent(event.ID, organizer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusOngoing, started.Status)
		assert.NotNil(t, started.StartTime)

		ended, err := svc.EndEvent(event.ID, organizer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusCompleted, ended.Status)
		assert.NotNil(t, ended.EndTime)
	})

	t.Run("start on non-upcoming always fails", func(t *testing.T) {
		for _, status := range []models.EventStatus{
			models.EventStatusOngoing, models.EventStatusCompleted, models.EventStatusCancelled,
		} {
			event := newTestEvent(t, db, organizer, status)
			_, err := svc.StartEvent(event.ID, organizer.ID)
			assert.ErrorIs(t, err, ErrInvalidState, "status=%s", status)
		}
	})

	t.Run("only the creator may transition", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)
		_, err := svc.StartEvent(event.ID, other.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cancel only from upcoming", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)
		cancelled, err := svc.CancelEvent(event.ID, organizer.ID)
		require.NoError(t, err)
		assert.Equal(t, models.EventStatusCancelled, cancelled.Status)

		ongoing := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		_, err = svc.CancelEvent(ongoing.ID, organizer.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		_, err := svc.StartEvent("missing", organizer.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestEventUpdateAndDeleteGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	organizer := newTestUser(t, db, models.RoleOrganizer)

	in := EventInput{Title: "Updated", Date: time.Now().Add(72 * time.Hour)}

	t.Run("update blocked on terminal states", func(t *testing.T) {
		for _, status := range []models.EventStatus{models.EventStatusCompleted, models.EventStatusCancelled} {
			event := newTestEvent(t, db, organizer, status)
			_, err := svc.UpdateEvent(event.ID, organizer.ID, in)
			assert.ErrorIs(t, err, ErrInvalidState, "status=%s", status)
		}
	})

	t.Run("update allowed while upcoming", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)
		updated, err := svc.UpdateEvent(event.ID, organizer.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "Updated", updated.Title)
	})

	t.Run("delete blocked while ongoing", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		assert.ErrorIs(t, svc.DeleteEvent(event.ID, organizer.ID), ErrInvalidState)
	})

	t.Run("delete allowed otherwise", func(t *testing.T) {
		event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)
		require.NoError(t, svc.DeleteEvent(event.ID, organizer.ID))
		_, err := svc.GetEvent(event.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRegenerateJoinCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	organizer := newTestUser(t, db, models.RoleOrganizer)

	event := newTestEvent(t, db, organizer, models.EventStatusUpcoming)
	old := event.JoinCode

	rotated, err := svc.RegenerateJoinCode(event.ID, organizer.ID)
	require.NoError(t, err)
	assert.NotEqual(t, old, rotated.JoinCode)
	assert.Len(t, rotated.JoinCode, 6)

	ongoing := newTestEvent(t, db, organizer, models.EventStatusOngoing)
	_, err = svc.RegenerateJoinCode(ongoing.ID, organizer.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}
