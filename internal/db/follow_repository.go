package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dresss/backend/internal/models"
)

// FollowRepository provides follow-edge database operations
type FollowRepository struct {
	*Repository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(repo *Repository) *FollowRepository {
	return &FollowRepository{Repository: repo}
}

// Get retrieves a follow edge
func (r *FollowRepository) Get(ctx context.Context, followerID, followedID int64) (*models.Follow, error) {
	var follow models.Follow
	if err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		First(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &follow, nil
}

// ListFollowers returns the accounts following the given account
func (r *FollowRepository) ListFollowers(ctx context.Context, followedID int64, limit int) ([]models.Follow, error) {
	query := r.db.WithContext(ctx).
		Where("followed_id = ?", followedID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var follows []models.Follow
	if err := query.Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

// ListFollowing returns the accounts the given account follows
func (r *FollowRepository) ListFollowing(ctx context.Context, followerID int64, limit int) ([]models.Follow, error) {
	query := r.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var follows []models.Follow
	if err := query.Find(&follows).Error; err != nil {
		return nil, err
	}
	return follows, nil
}

// CountFollowers counts follow edges pointing at an account
func (r *FollowRepository) CountFollowers(ctx context.Context, followedID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", followedID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
