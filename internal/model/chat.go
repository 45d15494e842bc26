package model

import "time"

const (
	ChatTypePrivate    = "private"
	ChatTypeGroup      = "group"
	ChatTypeSupergroup = "supergroup"
	ChatTypeChannel    = "channel"
)

// Chat stores a non-private conversation the bot has seen.
type Chat struct {
	ID        int64  `gorm:"column:chat_id;primaryKey;autoIncrement:false"`
	Type      string `gorm:"not null"`
	Title     *string
	Username  *string
	CreatedAt time.Time
}

func (Chat) TableName() string { return "chats" }

// ChatProfile is the mutable part of a chat as observed on the platform.
type ChatProfile struct {
	ID       int64
	Type     string
	Title    string
	Username string
}
