package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PhotoRefs is an ordered list of photo storage references, persisted as JSON
type PhotoRefs []string

// Value implements driver.Valuer
func (p PhotoRefs) Value() (driver.Value, error) {
	if p == nil {
		p = PhotoRefs{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (p *PhotoRefs) Scan(value interface{}) error {
	if value == nil {
		*p = PhotoRefs{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported photo refs type %T", value)
	}
}

// Post represents a published look
type Post struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id"`
	AccountID   int64     `gorm:"not null;index;column:account_id"`
	Description string    `gorm:"type:text;not null;column:description"`
	PhotoRefs   PhotoRefs `gorm:"type:text;not null;column:photo_refs"`
	CreatedAt   time.Time `gorm:"not null;index;column:created_at"`
	EditedAt    time.Time `gorm:"not null;column:edited_at"`

	// Engagement counters, mutated only through atomic deltas
	Likes    int64 `gorm:"not null;default:0;column:likes"`
	Saves    int64 `gorm:"not null;default:0;column:saves"`
	Comments int64 `gorm:"not null;default:0;column:comments"`

	// Relationships
	Author   *Account  `gorm:"foreignKey:AccountID;references:ID"`
	Articles []Article `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "dresss_posts"
}

// PostTag represents a post-to-tag mapping
type PostTag struct {
	PostID int64  `gorm:"primaryKey;column:post_id"`
	Tag    string `gorm:"type:varchar(32);primaryKey;column:tag"`
}

// TableName specifies the table name for PostTag
func (PostTag) TableName() string {
	return "dresss_post_tags"
}
