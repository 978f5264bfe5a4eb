package models

import (
	"database/sql"
	"time"
)

// Account represents a Dresss account
type Account struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Pseudo    string    `gorm:"type:varchar(32);not null;uniqueIndex:dresss_accounts_ux1;column:pseudo"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// Profile fields
	DisplayName  sql.NullString `gorm:"type:varchar(64);column:display_name"`
	ProfileImage string         `gorm:"type:varchar(1024);not null;default:'';column:profile_image"`

	// Social stats, denormalized from the follow edge set
	FollowersCount int64 `gorm:"not null;default:0;column:followers_count"`
	FollowingCount int64 `gorm:"not null;default:0;column:following_count"`
	PostCount      int64 `gorm:"not null;default:0;column:post_count"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "dresss_accounts"
}
