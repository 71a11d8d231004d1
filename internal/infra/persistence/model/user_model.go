package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// Instagram profile columns live on the user row itself; they are refreshed on
// every Instagram login and empty for password-only accounts.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email     string    `gorm:"type:varchar(255);unique;not null"`
	Name      string    `gorm:"type:varchar(100)"`
	Role      string    `gorm:"type:varchar(50);not null;default:'user'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time `gorm:"index"`

	InstagramID             string     `gorm:"type:varchar(64);uniqueIndex:idx_users_instagram_id,where:instagram_id <> ''"`
	InstagramUsername       string     `gorm:"type:varchar(100)"`
	InstagramFullName       string     `gorm:"type:varchar(255)"`
	InstagramProfilePicture string     `gorm:"type:text"`
	InstagramBio            string     `gorm:"type:text"`
	InstagramWebsite        string     `gorm:"type:text"`
	InstagramFollowersCount int        `gorm:"not null;default:0"`
	InstagramFollowingCount int        `gorm:"not null;default:0"`
	InstagramMediaCount     int        `gorm:"not null;default:0"`
	InstagramAccountType    string     `gorm:"type:varchar(50)"`
	InstagramIsBusiness     bool       `gorm:"not null;default:false"`
	InstagramConnectedAt    *time.Time `gorm:""`

	Authentications []AuthenticationModel `gorm:"foreignKey:UserID"`
	RefreshTokens   []RefreshTokenModel   `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
