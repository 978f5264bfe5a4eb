package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dresss/backend/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Gorm exposes the underlying gorm handle for transaction scoping
func (r *Repository) Gorm() *gorm.DB {
	return r.db
}

// AccountRepository provides account-related database operations
type AccountRepository struct {
	*Repository
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(repo *Repository) *AccountRepository {
	return &AccountRepository{Repository: repo}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByPseudo retrieves an account by pseudo
func (r *AccountRepository) GetByPseudo(ctx context.Context, pseudo string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("pseudo = ?", pseudo).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// Update updates an account
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// AdjustFollowerCount applies a follower count delta clamped at a zero floor
// and returns the new count. The update is a single atomic statement; this is
// a best-effort cache write, RecountFollowers reconciles it against the edge
// set.
func (r *AccountRepository) AdjustFollowerCount(ctx context.Context, id int64, delta int64) (int64, error) {
	return r.adjustCount(ctx, id, "followers_count", delta)
}

// AdjustFollowingCount applies a following count delta clamped at a zero floor
func (r *AccountRepository) AdjustFollowingCount(ctx context.Context, id int64, delta int64) (int64, error) {
	return r.adjustCount(ctx, id, "following_count", delta)
}

func (r *AccountRepository) adjustCount(ctx context.Context, id int64, column string, delta int64) (int64, error) {
	// CASE WHEN keeps the clamp portable between postgres and sqlite
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(
			"CASE WHEN "+column+" + ? < 0 THEN 0 ELSE "+column+" + ? END", delta, delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.ErrNotFound
	}

	var account models.Account
	if err := r.db.WithContext(ctx).Select(column).First(&account, id).Error; err != nil {
		return 0, err
	}
	if column == "following_count" {
		return account.FollowingCount, nil
	}
	return account.FollowersCount, nil
}

// SetFollowerCount overwrites the stored follower count, used when
// reconciling the counter from the edge set
func (r *AccountRepository) SetFollowerCount(ctx context.Context, id int64, count int64) error {
	res := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("followers_count", count)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
