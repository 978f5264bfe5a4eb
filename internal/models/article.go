package models

// Article represents a shoppable item attached to a Post
type Article struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;column:id"`
	PostID      int64   `gorm:"not null;index;column:post_id"`
	Title       string  `gorm:"type:varchar(255);not null;column:title"`
	Description string  `gorm:"type:text;column:description"`
	Price       float64 `gorm:"type:decimal(10,2);not null;column:price"`
	PhotoRef    string  `gorm:"type:varchar(1024);column:photo_ref"`
	Link        string  `gorm:"type:varchar(2048);column:link"`
	// Denormalized copy of the post owner for query convenience
	AccountID int64 `gorm:"not null;index;column:account_id"`

	// Relationships
	Post *Post `gorm:"foreignKey:PostID;references:ID"`
}

// TableName specifies the table name for Article
func (Article) TableName() string {
	return "dresss_articles"
}
