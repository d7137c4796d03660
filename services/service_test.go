package services

import (
	"strings"
	"testing"
	"time"

	"cleanup-event-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database with the full schema.
// TranslateError mirrors production config: the services depend on
// gorm.ErrDuplicatedKey for their insert-or-conflict paths.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1&id="+uuid.NewString()), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Registration{},
		&models.Participation{},
		&models.PointsHistory{},
		&models.UserXP{},
		&models.Badge{},
		&models.UserBadge{},
		&models.Reward{},
		&models.Redemption{},
	))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	user := models.User{
		ID:             uuid.NewString(),
		ExternalUserID: uuid.NewString(),
		Username:       "user-" + uuid.NewString()[:8],
		Role:           role,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func newTestEvent(t *testing.T, db *gorm.DB, creator *models.User, status models.EventStatus) *models.Event {
	t.Helper()
	event := models.Event{
		ID:        uuid.NewString(),
		CreatorID: creator.ID,
		Title:     "Beach Cleanup",
		Slug:      "beach-cleanup-" + uuid.NewString()[:8],
		Status:    status,
		Date:      time.Now().Add(24 * time.Hour),
		JoinCode:  strings.ToUpper(uuid.NewString()[:6]),
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

// ledgerSum returns the user's total according to the ledger — the source
// of truth the cached aggregate must always match.
func ledgerSum(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var sum struct{ Total int64 }
	require.NoError(t, db.Raw(
		"SELECT COALESCE(SUM(amount), 0) AS total FROM points_histories WHERE user_id = ?", userID,
	).Scan(&sum).Error)
	return sum.Total
}

func userTotalXP(t *testing.T, db *gorm.DB, userID string) int64 {
	t.Helper()
	var agg models.UserXP
	require.NoError(t, db.Where("user_id = ?", userID).First(&agg).Error)
	return agg.TotalXP
}
