package models

import (
	"time"
)

// ViewRecord represents "viewer has seen post". At most one record exists per
// (viewer, post) pair; the composite primary key enforces this at the storage
// level so concurrent mark-viewed calls cannot race into duplicates.
type ViewRecord struct {
	ViewerID int64     `gorm:"primaryKey;column:viewer_id"`
	PostID   int64     `gorm:"primaryKey;column:post_id"`
	ViewedAt time.Time `gorm:"not null;column:viewed_at"`
}

// TableName specifies the table name for ViewRecord
func (ViewRecord) TableName() string {
	return "dresss_views"
}
