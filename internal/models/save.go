package models

import (
	"time"
)

// Saved item type constants
const (
	ItemTypePost    = "post"
	ItemTypeArticle = "article"
)

// SavedItem represents "account saved item". The composite primary key keeps
// toggles idempotent: saving twice cannot create two rows.
type SavedItem struct {
	AccountID int64     `gorm:"primaryKey;column:account_id"`
	ItemID    int64     `gorm:"primaryKey;column:item_id"`
	ItemType  string    `gorm:"type:varchar(16);primaryKey;column:item_type"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for SavedItem
func (SavedItem) TableName() string {
	return "dresss_saves"
}
