package models

import (
	"database/sql"
	"time"
)

// Notification represents a notification
type Notification struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	Type      int16         `gorm:"type:smallint;not null;column:type_id"`
	CreatedAt time.Time     `gorm:"not null;column:created_at"`
	SrcID     sql.NullInt64 `gorm:"column:src_id"`
	DstID     sql.NullInt64 `gorm:"column:dst_id"`
	PostID    sql.NullInt64 `gorm:"column:post_id"`
	ReadAt    sql.NullTime  `gorm:"column:read_at"`

	// Relationships
	Src  *Account `gorm:"foreignKey:SrcID;references:ID"`
	Dst  *Account `gorm:"foreignKey:DstID;references:ID"`
	Post *Post    `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "dresss_notifs"
}

// Notification type constants
const (
	NotifyTypeFollow  int16 = 1
	NotifyTypeLike    int16 = 2
	NotifyTypeComment int16 = 3
	NotifyTypeSave    int16 = 4
)
