package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"who-left-bot/internal/model"
)

// ErrPrivateDeparture is returned when a departure is recorded for a private conversation.
var ErrPrivateDeparture = errors.New("departure requires a group chat")

// ActivityRepository stores users, chats, issued commands and departures.
// Every write runs in a single transaction and goes through the user/chat upsert.
type ActivityRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db, now: time.Now}
}

// WithClock returns a copy of the repository that timestamps rows with now.
func (r *ActivityRepository) WithClock(now func() time.Time) *ActivityRepository {
	return &ActivityRepository{db: r.db, now: now}
}

// UpsertUserAndChat creates or updates the user and, for non-private chats, the chat.
// The returned chat id is nil when chat is nil or collapses into the user identity.
func (r *ActivityRepository) UpsertUserAndChat(ctx context.Context, user model.UserProfile, chat *model.ChatProfile) (int64, *int64, error) {
	var (
		userID int64
		chatID *int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		userID, chatID, err = r.upsert(tx, user, chat)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return userID, chatID, nil
}

// RecordCommand upserts the user and chat and appends a command log entry.
func (r *ActivityRepository) RecordCommand(ctx context.Context, user model.UserProfile, chat *model.ChatProfile, command string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, chatID, err := r.upsert(tx, user, chat)
		if err != nil {
			return err
		}
		entry := model.CommandLogEntry{
			UserID:    userID,
			ChatID:    chatID,
			Command:   command,
			CreatedAt: r.now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create command log entry: %w", err)
		}
		return nil
	})
}

// RecordDeparture upserts the user and chat and appends a departure event.
func (r *ActivityRepository) RecordDeparture(ctx context.Context, user model.UserProfile, chat model.ChatProfile) error {
	if chat.Type == model.ChatTypePrivate || chat.ID == user.ID {
		return ErrPrivateDeparture
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userID, chatID, err := r.upsert(tx, user, &chat)
		if err != nil {
			return err
		}
		event := model.DepartureEvent{
			UserID:    userID,
			ChatID:    *chatID,
			CreatedAt: r.now().UTC(),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("create departure event: %w", err)
		}
		return nil
	})
}

func (r *ActivityRepository) upsert(tx *gorm.DB, user model.UserProfile, chat *model.ChatProfile) (int64, *int64, error) {
	if err := r.upsertUser(tx, user); err != nil {
		return 0, nil, err
	}
	if chat == nil || chat.ID == user.ID {
		return user.ID, nil, nil
	}
	if err := r.upsertChat(tx, *chat); err != nil {
		return 0, nil, err
	}
	chatID := chat.ID
	return user.ID, &chatID, nil
}

func (r *ActivityRepository) upsertUser(tx *gorm.DB, p model.UserProfile) error {
	// The newest claimant of a username takes it over: the previous holder is evicted.
	if p.Username != "" {
		res := tx.Where("lower(username) = lower(?) AND user_id <> ?", p.Username, p.ID).Delete(&model.User{})
		if res.Error != nil {
			return fmt.Errorf("evict username holder: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			log.Printf("[info] username @%s moved to user=%d", p.Username, p.ID)
		}
	}

	var existing model.User
	err := tx.Where("user_id = ?", p.ID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"first_name": p.FirstName,
			"last_name":  optional(p.LastName),
			"username":   optional(p.Username),
			"language":   optional(p.Language),
		}
		if err := tx.Model(&model.User{}).Where("user_id = ?", p.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := model.User{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  optional(p.LastName),
			Username:  optional(p.Username),
			Language:  optional(p.Language),
			CreatedAt: r.now().UTC(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find user: %w", err)
	}
}

func (r *ActivityRepository) upsertChat(tx *gorm.DB, p model.ChatProfile) error {
	var existing model.Chat
	err := tx.Where("chat_id = ?", p.ID).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"type":     p.Type,
			"title":    optional(p.Title),
			"username": optional(p.Username),
		}
		if err := tx.Model(&model.Chat{}).Where("chat_id = ?", p.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update chat: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		chat := model.Chat{
			ID:        p.ID,
			Type:      p.Type,
			Title:     optional(p.Title),
			Username:  optional(p.Username),
			CreatedAt: r.now().UTC(),
		}
		if err := tx.Create(&chat).Error; err != nil {
			return fmt.Errorf("create chat: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find chat: %w", err)
	}
}

// GetUser returns nil when the user is unknown.
func (r *ActivityRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUsers returns the known users among ids. Order is unspecified.
func (r *ActivityRepository) GetUsers(ctx context.Context, ids []int64) ([]model.User, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return nil, nil
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Where("user_id IN ?", unique).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// GetUserByUsername looks a user up ignoring case and a leading "@".
func (r *ActivityRepository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, nil
	}
	var user model.User
	err := r.db.WithContext(ctx).Where("lower(username) = lower(?)", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

// GetChat returns nil when the chat is unknown.
func (r *ActivityRepository) GetChat(ctx context.Context, id int64) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).Where("chat_id = ?", id).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &chat, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
