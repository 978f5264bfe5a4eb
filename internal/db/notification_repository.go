package db

import (
	"context"

	"github.com/dresss/backend/internal/models"
)

// NotificationRepository provides notification database operations
type NotificationRepository struct {
	*Repository
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(repo *Repository) *NotificationRepository {
	return &NotificationRepository{Repository: repo}
}

// Create creates a new notification
func (r *NotificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

// ListByAccount returns notifications addressed to an account, newest first
func (r *NotificationRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]models.Notification, error) {
	query := r.db.WithContext(ctx).
		Where("dst_id = ?", accountID).
		Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifs []models.Notification
	if err := query.Find(&notifs).Error; err != nil {
		return nil, err
	}
	return notifs, nil
}

// CountUnread counts unread notifications for an account
func (r *NotificationRepository) CountUnread(ctx context.Context, accountID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("dst_id = ? AND read_at IS NULL", accountID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
