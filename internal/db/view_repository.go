package db

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/dresss/backend/internal/models"
)

// ViewRepository provides view-ledger database operations
type ViewRepository struct {
	*Repository
}

// NewViewRepository creates a new view repository
func NewViewRepository(repo *Repository) *ViewRepository {
	return &ViewRepository{Repository: repo}
}

// MarkViewed records that a viewer has seen a post. The insert relies on the
// storage-level uniqueness of the (viewer, post) key, not a read-then-write
// check: concurrent calls for the same pair leave exactly one record. Returns
// whether a new record was created.
func (r *ViewRepository) MarkViewed(ctx context.Context, viewerID, postID int64) (bool, error) {
	record := models.ViewRecord{
		ViewerID: viewerID,
		PostID:   postID,
		ViewedAt: time.Now().UTC(),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListViewedPostIDs returns the IDs of all posts the viewer has seen
func (r *ViewRepository) ListViewedPostIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.ViewRecord{}).
		Where("viewer_id = ?", viewerID).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountViews returns how many viewers have seen a post
func (r *ViewRepository) CountViews(ctx context.Context, postID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ViewRecord{}).
		Where("post_id = ?", postID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
