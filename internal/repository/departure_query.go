package repository

import (
	"context"
	"fmt"
	"time"

	"who-left-bot/internal/model"
)

type departureRow struct {
	UserID    int64
	LeftAt    time.Time
	KnownID   *int64
	FirstName *string
	LastName  *string
	Username  *string
	Language  *string
	CreatedAt *time.Time
}

// RecentDepartures returns users who left chatID within [now-window, now], one entry per
// user paired with their latest departure, most recent first. Users whose record is gone
// are returned with a nil User.
func (r *ActivityRepository) RecentDepartures(ctx context.Context, chatID int64, window time.Duration) ([]model.Departure, error) {
	now := r.now().UTC()
	from := now.Add(-window)

	var rows []departureRow
	err := r.db.WithContext(ctx).
		Table("departure_log AS d").
		Select("d.user_id AS user_id, d.created_at AS left_at, u.user_id AS known_id, " +
			"u.first_name AS first_name, u.last_name AS last_name, u.username AS username, " +
			"u.language AS language, u.created_at AS created_at").
		Joins("LEFT JOIN users u ON u.user_id = d.user_id").
		Where("d.chat_id = ? AND d.created_at BETWEEN ? AND ?", chatID, from, now).
		Order("d.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent departures: %w", err)
	}

	seen := make(map[int64]struct{}, len(rows))
	departures := make([]model.Departure, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		departures = append(departures, model.Departure{
			UserID: row.UserID,
			User:   row.user(),
			LeftAt: row.LeftAt,
		})
	}
	return departures, nil
}

func (row departureRow) user() *model.User {
	if row.KnownID == nil {
		return nil
	}
	user := &model.User{
		ID:       *row.KnownID,
		LastName: row.LastName,
		Username: row.Username,
		Language: row.Language,
	}
	if row.FirstName != nil {
		user.FirstName = *row.FirstName
	}
	if row.CreatedAt != nil {
		user.CreatedAt = *row.CreatedAt
	}
	return user
}
