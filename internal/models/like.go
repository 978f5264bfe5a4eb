package models

import (
	"time"
)

// LikeRecord represents "account has liked post", mirroring ViewRecord so a
// user is counted at most once per post regardless of client toggle state.
type LikeRecord struct {
	AccountID int64     `gorm:"primaryKey;column:account_id"`
	PostID    int64     `gorm:"primaryKey;column:post_id"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for LikeRecord
func (LikeRecord) TableName() string {
	return "dresss_likes"
}
