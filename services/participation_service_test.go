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

func newParticipationService(t *testing.T, db *gorm.DB) *ParticipationService {
	t.Helper()
	progression := NewProgressionService(db)
	badges, err := NewBadgeService(db, progression)
	require.NoError(t, err)
	return NewParticipationService(db, progression, badges)
}

func joinRegistration(t *testing.T, db *gorm.DB, user *models.User, event *models.Event) {
	t.Helper()
	now := time.Now()
	require.NoError(t, db.Create(&models.Registration{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		EventID:   event.ID,
		HasJoined: true,
		JoinedAt:  &now,
	}).Error)
}

func TestSubmitParticipation(t *testing.T) {
	db := newTestDB(t)
	svc := newParticipationService(t, db)
	organizer := newTestUser(t, db, models.RoleOrganizer)

	t.Run("awards waste-based XP and updates stats", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)

		result, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 2.5})
		require.NoError(t, err)
		assert.Equal(t, int64(25), result.XPAwarded)
		assert.Equal(t, models.VerificationPending, result.Participation.Verification)

		assert.Equal(t, int64(25), userTotalXP(t, db, volunteer.ID))
		assert.Equal(t, ledgerSum(t, db, volunteer.ID), userTotalXP(t, db, volunteer.ID))

		agg, err := svc.Progression.GetUserXP(volunteer.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), agg.TotalEventsParticipated)
		assert.InDelta(t, 2.5, agg.TotalWasteCollected, 1e-9)
		assert.Equal(t, 1, agg.CurrentStreak)
		require.NotNil(t, agg.LastParticipated)
	})

	t.Run("first submission unlocks the starter badge", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)

		result, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 1})
		require.NoError(t, err)

		names := make([]string, 0, len(result.NewBadges))
		for _, b := range result.NewBadges {
			names = append(names, b.Name)
		}
		assert.Contains(t, names, "First Steps")
	})

	t.Run("duplicate submission conflicts and leaves totals alone", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)

		_, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 5})
		require.NoError(t, err)
		before := userTotalXP(t, db, volunteer.ID)

		_, err = svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 5})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, before, userTotalXP(t, db, volunteer.ID))
		assert.Equal(t, before, ledgerSum(t, db, volunteer.ID))
	})

	t.Run("rejects waste below the minimum", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)

		_, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 0.05})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects latitude without longitude", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)

		lat := 52.5
		_, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 1, Latitude: &lat})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("requires an ongoing event", func(t *testing.T) {
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		for _, status := range []models.EventStatus{
			models.EventStatusUpcoming, models.EventStatusCompleted, models.EventStatusCancelled,
		} {
			event := newTestEvent(t, db, organizer, status)
			joinRegistration(t, db, volunteer, event)
			_, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 1})
			assert.ErrorIs(t, err, ErrInvalidState, "status=%s", status)
		}
	})

	t.Run("requires registration and check-in", func(t *testing.T) {
		stranger := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)

		_, err := svc.Submit(stranger.ID, event.ID, ParticipationInput{WasteCollectedKg: 1})
		assert.ErrorIs(t, err, ErrForbidden)

		require.NoError(t, db.Create(&models.Registration{
			ID: uuid.NewString(), UserID: stranger.ID, EventID: event.ID,
		}).Error)
		_, err = svc.Submit(stranger.ID, event.ID, ParticipationInput{WasteCollectedKg: 1})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestVerifyParticipation(t *testing.T) {
	db := newTestDB(t)
	svc := newParticipationService(t, db)
	organizer := newTestUser(t, db, models.RoleOrganizer)

	submit := func(t *testing.T) (*models.User, *models.Participation) {
		t.Helper()
		volunteer := newTestUser(t, db, models.RoleVolunteer)
		event := newTestEvent(t, db, organizer, models.EventStatusOngoing)
		joinRegistration(t, db, volunteer, event)
		result, err := svc.Submit(volunteer.ID, event.ID, ParticipationInput{WasteCollectedKg: 3})
		require.NoError(t, err)
		return volunteer, result.Participation
	}

	t.Run("approve pays the bonus once", func(t *testing.T) {
		volunteer, part := submit(t)
		before := userTotalXP(t, db, volunteer.ID)

		verified, err := svc.Verify(part.ID, organizer.ID, true, 50)
		require.NoError(t, err)
		assert.Equal(t, models.VerificationVerified, verified.Verification)
		assert.Equal(t, part.XPEarned+50, verified.XPEarned)
		require.NotNil(t, verified.VerifiedBy)
		assert.Equal(t, organizer.ID, *verified.VerifiedBy)
		require.NotNil(t, verified.VerifiedAt)
		assert.Equal(t, before+50, userTotalXP(t, db, volunteer.ID))
		assert.Equal(t, ledgerSum(t, db, volunteer.ID), userTotalXP(t, db, volunteer.ID))

		_, err = svc.Verify(part.ID, organizer.ID, true, 50)
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, before+50, userTotalXP(t, db, volunteer.ID))
	})

	t.Run("reject is final", func(t *testing.T) {
		volunteer, part := submit(t)
		before := userTotalXP(t, db, volunteer.ID)

		rejected, err := svc.Verify(part.ID, organizer.ID, false, 0)
		require.NoError(t, err)
		assert.Equal(t, models.VerificationRejected, rejected.Verification)
		assert.Equal(t, before, userTotalXP(t, db, volunteer.ID))

		_, err = svc.Verify(part.ID, organizer.ID, true, 10)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("only the event creator may verify", func(t *testing.T) {
		_, part := submit(t)
		other := newTestUser(t, db, models.RoleOrganizer)
		_, err := svc.Verify(part.ID, other.ID, true, 0)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("bonus is capped", func(t *testing.T) {
		_, part := submit(t)
		_, err := svc.Verify(part.ID, organizer.ID, true, MaxVerificationBonus+1)
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Verify(part.ID, organizer.ID, true, -1)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown participation not found", func(t *testing.T) {
		_, err := svc.Verify(uuid.NewString(), organizer.ID, true, 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
