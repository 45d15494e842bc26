package model

import "time"

// User stores Telegram user metadata. ID is the Telegram user id.
type User struct {
	ID        int64   `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	FirstName string  `gorm:"not null"`
	LastName  *string
	Username  *string `gorm:"uniqueIndex:users_username"`
	Language  *string
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }

// UserProfile is the mutable part of a user as observed on the platform.
type UserProfile struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Language  string
}
