package model

import "time"

// CommandLogEntry records an issued command. ChatID is nil for private chats.
type CommandLogEntry struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"not null;index"`
	ChatID    *int64 `gorm:"index"`
	Command   string `gorm:"not null"`
	CreatedAt time.Time
}

func (CommandLogEntry) TableName() string { return "command_log" }

// DepartureEvent records that a user left a group chat.
type DepartureEvent struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index"`
	ChatID    int64     `gorm:"not null;index:departure_chat_time,priority:1"`
	CreatedAt time.Time `gorm:"index:departure_chat_time,priority:2"`
}

func (DepartureEvent) TableName() string { return "departure_log" }

// Departure is a user who left a chat, paired with the time of the latest departure.
// User is nil when the user record no longer exists.
type Departure struct {
	UserID int64
	User   *User
	LeftAt time.Time
}
