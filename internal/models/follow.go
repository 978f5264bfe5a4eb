package models

import (
	"time"
)

// Follow represents a follow relationship
type Follow struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id"`
	FollowedID int64     `gorm:"primaryKey;column:followed_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *Account `gorm:"foreignKey:FollowerID;references:ID"`
	Followed *Account `gorm:"foreignKey:FollowedID;references:ID"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "dresss_follows"
}
