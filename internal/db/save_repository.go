package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dresss/backend/internal/models"
)

// SaveRepository provides saved-item database operations
type SaveRepository struct {
	*Repository
}

// NewSaveRepository creates a new save repository
func NewSaveRepository(repo *Repository) *SaveRepository {
	return &SaveRepository{Repository: repo}
}

// Get retrieves a saved item
func (r *SaveRepository) Get(ctx context.Context, accountID, itemID int64, itemType string) (*models.SavedItem, error) {
	var item models.SavedItem
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND item_id = ? AND item_type = ?", accountID, itemID, itemType).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a saved item, returning whether it was newly created.
// The composite primary key makes re-saving a no-op.
func (r *SaveRepository) Create(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	item := models.SavedItem{
		AccountID: accountID,
		ItemID:    itemID,
		ItemType:  itemType,
		CreatedAt: time.Now().UTC(),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes a saved item, returning whether one existed
func (r *SaveRepository) Delete(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("account_id = ? AND item_id = ? AND item_type = ?", accountID, itemID, itemType).
		Delete(&models.SavedItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByAccount returns everything an account has saved, newest first
func (r *SaveRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.SavedItem, error) {
	var items []models.SavedItem
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
