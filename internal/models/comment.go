package models

import (
	"time"
)

// Comment represents a comment on a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64     `gorm:"not null;index;column:post_id"`
	AccountID int64     `gorm:"not null;column:account_id"`
	Body      string    `gorm:"type:text;not null;column:body"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;references:ID"`
	Author *Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "dresss_comments"
}
