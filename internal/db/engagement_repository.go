package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dresss/backend/internal/models"
)

// EngagementRepository provides counter and like-record database operations
type EngagementRepository struct {
	*Repository
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(repo *Repository) *EngagementRepository {
	return &EngagementRepository{Repository: repo}
}

// Counter columns on posts that accept atomic deltas
const (
	CounterLikes    = "likes"
	CounterSaves    = "saves"
	CounterComments = "comments"
)

var counterColumns = map[string]bool{
	CounterLikes:    true,
	CounterSaves:    true,
	CounterComments: true,
}

// AdjustCounter applies a delta to a post counter as a single atomic SQL
// statement, clamped at a zero floor, and returns the new value. Concurrent
// deltas from different writers never lose updates because the increment
// happens at the database, not read-modify-write in the application.
func (r *EngagementRepository) AdjustCounter(ctx context.Context, postID int64, column string, delta int64) (int64, error) {
	if !counterColumns[column] {
		return 0, fmt.Errorf("unknown counter column: %s", column)
	}

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(
			"CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.ErrNotFound
	}

	var post models.Post
	if err := r.db.WithContext(ctx).Select(column).First(&post, postID).Error; err != nil {
		return 0, err
	}
	switch column {
	case CounterSaves:
		return post.Saves, nil
	case CounterComments:
		return post.Comments, nil
	default:
		return post.Likes, nil
	}
}

// CreateLikeRecord inserts a like record for the (account, post) pair,
// returning whether it was newly created. Storage-level uniqueness makes the
// insert idempotent under concurrency.
func (r *EngagementRepository) CreateLikeRecord(ctx context.Context, accountID, postID int64) (bool, error) {
	record := models.LikeRecord{
		AccountID: accountID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteLikeRecord removes a like record, returning whether one existed
func (r *EngagementRepository) DeleteLikeRecord(ctx context.Context, accountID, postID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Delete(&models.LikeRecord{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// HasLiked reports whether the account has liked the post
func (r *EngagementRepository) HasLiked(ctx context.Context, accountID, postID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LikeRecord{}).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateComment inserts a comment and bumps the post comment counter in one
// transaction
func (r *EngagementRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn(CounterComments, gorm.Expr("comments + 1")).Error
	})
}

// ListComments returns the comments of a post in creation order
func (r *EngagementRepository) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}
