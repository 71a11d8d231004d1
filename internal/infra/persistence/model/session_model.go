package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthSessionModel mirrors the 'instagram_auth_sessions' table. One row per
// user; a fresh Instagram login overwrites the previous session in place.
type AuthSessionModel struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccessToken string    `gorm:"type:text;not null"`
	TokenType   string    `gorm:"type:varchar(50);not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	Scope       string    `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (AuthSessionModel) TableName() string {
	return "instagram_auth_sessions"
}
