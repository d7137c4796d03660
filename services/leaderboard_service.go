package services

import (
	"fmt"
	"time"

	"cleanup-event-system/models"

	"gorm.io/gorm"
)

// Period selects the leaderboard time window.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all-time"
)

func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return Period(s), nil
	case "":
		return PeriodAllTime, nil
	}
	return "", fmt.Errorf("%w: period must be weekly, monthly or all-time", ErrValidation)
}

// LeaderboardEntry is one ranked row. Rank is competition-style: tied
// totals share a rank and the next distinct total skips numbers
// (rank = count of strictly greater totals + 1).
type LeaderboardEntry struct {
	Rank          int64   `json:"rank" gorm:"column:rnk"`
	UserID        string  `json:"user_id" gorm:"column:user_id"`
	Username      string  `json:"username" gorm:"column:username"`
	AvatarURL     *string `json:"avatar_url,omitempty" gorm:"column:avatar_url"`
	XP            int64   `json:"xp" gorm:"column:xp"`
	Level         int     `json:"level" gorm:"-"`
	XPIntoLevel   int64   `json:"xp_into_level" gorm:"-"`
	XPToNextLevel int64   `json:"xp_to_next_level" gorm:"-"`
}

// LeaderboardPage carries one page plus the caller's own rank, which is
// included even when the caller falls outside the page.
type LeaderboardPage struct {
	Period     Period             `json:"period"`
	Entries    []LeaderboardEntry `json:"entries"`
	TotalCount int64              `json:"total_count"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	HasMore    bool               `json:"has_more"`
	NextOffset *int               `json:"next_offset,omitempty"`
	Me         *LeaderboardEntry  `json:"me,omitempty"`
}

// LeaderboardService ranks standings over three windows. All-time reads
// the UserXP cache; weekly/monthly aggregate the ledger over the window,
// since the cache only holds lifetime totals.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// windowFor anchors the window on now: ISO week starting Monday for
// weekly, calendar month for monthly.
func windowFor(period Period, now time.Time) (start, end time.Time) {
	switch period {
	case PeriodWeekly:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -daysSinceMonday)
		end = start.AddDate(0, 0, 7)
	case PeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}

// GetLeaderboard returns one ranked page. currentUserID may be empty for
// anonymous reads; when set, Me is always populated.
func (s *LeaderboardService) GetLeaderboard(period Period, limit, offset int, currentUserID string) (*LeaderboardPage, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	page := LeaderboardPage{Period: period, Limit: limit, Offset: offset}
	now := time.Now()

	var err error
	if period == PeriodAllTime {
		err = s.allTimePage(&page, limit, offset)
	} else {
		start, end := windowFor(period, now)
		err = s.windowedPage(&page, start, end, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	for i := range page.Entries {
		fillLevel(&page.Entries[i])
	}

	page.HasMore = int64(offset+limit) < page.TotalCount
	if page.HasMore {
		next := offset + limit
		page.NextOffset = &next
	}

	if currentUserID != "" {
		me, err := s.GetUserRank(period, currentUserID)
		if err != nil {
			return nil, err
		}
		page.Me = me
	}
	return &page, nil
}

func (s *LeaderboardService) allTimePage(page *LeaderboardPage, limit, offset int) error {
	if err := s.DB.Model(&models.UserXP{}).Count(&page.TotalCount).Error; err != nil {
		return err
	}
	return s.DB.Raw(`
		SELECT ux.user_id,
		       COALESCE(u.username, '') AS username,
		       u.avatar_url,
		       ux.total_xp AS xp,
		       RANK() OVER (ORDER BY ux.total_xp DESC) AS rnk
		FROM user_xps ux
		LEFT JOIN users u ON u.id = ux.user_id AND u.deleted_at IS NULL
		WHERE ux.deleted_at IS NULL
		ORDER BY ux.total_xp DESC
		LIMIT ? OFFSET ?
	`, limit, offset).Scan(&page.Entries).Error
}

func (s *LeaderboardService) windowedPage(page *LeaderboardPage, start, end time.Time, limit, offset int) error {
	if err := s.DB.Model(&models.PointsHistory{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Distinct("user_id").
		Count(&page.TotalCount).Error; err != nil {
		return err
	}
	return s.DB.Raw(`
		SELECT w.user_id,
		       COALESCE(u.username, '') AS username,
		       u.avatar_url,
		       w.xp,
		       RANK() OVER (ORDER BY w.xp DESC) AS rnk
		FROM (
			SELECT user_id, SUM(amount) AS xp
			FROM points_histories
			WHERE created_at >= ? AND created_at < ?
			GROUP BY user_id
		) w
		LEFT JOIN users u ON u.id = w.user_id AND u.deleted_at IS NULL
		ORDER BY w.xp DESC
		LIMIT ? OFFSET ?
	`, start, end, limit, offset).Scan(&page.Entries).Error
}

// GetUserRank computes the caller's standing in the given window using the
// same count-strictly-greater rule the page ranks use. A user with no
// window activity ranks below everyone who has any.
func (s *LeaderboardService) GetUserRank(period Period, userID string) (*LeaderboardEntry, error) {
	entry := LeaderboardEntry{UserID: userID}

	if period == PeriodAllTime {
		var agg models.UserXP
		if err := s.DB.Where("user_id = ?", userID).First(&agg).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}
		entry.XP = agg.TotalXP

		var greater int64
		if err := s.DB.Model(&models.UserXP{}).
			Where("total_xp > ?", entry.XP).
			Count(&greater).Error; err != nil {
			return nil, err
		}
		entry.Rank = greater + 1
	} else {
		start, end := windowFor(period, time.Now())

		var sum struct{ XP int64 }
		if err := s.DB.Raw(`
			SELECT COALESCE(SUM(amount), 0) AS xp
			FROM points_histories
			WHERE user_id = ? AND created_at >= ? AND created_at < ?
		`, userID, start, end).Scan(&sum).Error; err != nil {
			return nil, err
		}
		entry.XP = sum.XP

		var greater int64
		if err := s.DB.Raw(`
			SELECT COUNT(*) FROM (
				SELECT user_id FROM points_histories
				WHERE created_at >= ? AND created_at < ?
				GROUP BY user_id
				HAVING SUM(amount) > ?
			) g
		`, start, end, entry.XP).Scan(&greater).Error; err != nil {
			return nil, err
		}
		entry.Rank = greater + 1
	}

	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err == nil {
		entry.Username = user.Username
		entry.AvatarURL = user.AvatarURL
	}

	fillLevel(&entry)
	return &entry, nil
}

func fillLevel(e *LeaderboardEntry) {
	e.Level = LevelForXP(e.XP)
	e.XPIntoLevel = XPIntoLevel(e.XP)
	e.XPToNextLevel = XPToNextLevel(e.XP)
}
