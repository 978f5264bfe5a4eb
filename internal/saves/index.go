package saves

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/internal/notify"
	"github.com/dresss/backend/pkg/logging"
)

// ResolvedSave is a saved-item reference resolved to its underlying entity.
// Exactly one of Post and Article is set, matching the item type.
type ResolvedSave struct {
	Item    models.SavedItem
	Post    *models.Post
	Article *models.Article
}

// Index records per-user saved-item references, independent of the view
// ledger. Saves survive the deletion of the underlying item; dangling
// references are skipped at read time.
type Index struct {
	repo     *db.SaveRepository
	posts    *db.PostRepository
	engage   *db.EngagementRepository
	gorm     *gorm.DB
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewIndex creates a new save index
func NewIndex(repo *db.Repository, notifier *notify.Notifier) *Index {
	return &Index{
		repo:     db.NewSaveRepository(repo),
		posts:    db.NewPostRepository(repo),
		engage:   db.NewEngagementRepository(repo),
		gorm:     repo.Gorm(),
		notifier: notifier,
		logger:   logging.GetLogger().With(zap.String("component", "save-index")),
	}
}

// IsSaved reports whether the account has saved the item
func (i *Index) IsSaved(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	if err := validateItemType(itemType); err != nil {
		return false, err
	}
	item, err := i.repo.Get(ctx, accountID, itemID, itemType)
	if err != nil {
		return false, models.NewStorageError("saves.is_saved", err)
	}
	return item != nil, nil
}

// Save records the item as saved. Saving an already-saved item is a no-op;
// the returned state is always saved=true.
func (i *Index) Save(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	if err := validateItemType(itemType); err != nil {
		return false, err
	}

	created, err := i.repo.Create(ctx, accountID, itemID, itemType)
	if err != nil {
		return false, models.NewStorageError("saves.save", err)
	}

	if created && itemType == models.ItemTypePost {
		// Save counter is best effort; a miss only skews the display count
		if _, err := i.engage.AdjustCounter(ctx, itemID, db.CounterSaves, 1); err != nil && err != models.ErrNotFound {
			i.logger.Warn("failed to bump save counter",
				zap.Int64("post_id", itemID), zap.Error(err))
		}
		if post, err := i.posts.GetByID(ctx, itemID); err == nil && post != nil {
			i.notifier.Notify(ctx, notify.Event{
				Type:     models.NotifyTypeSave,
				ActorID:  accountID,
				TargetID: post.AccountID,
				PostID:   itemID,
			})
		}
	}
	return true, nil
}

// Unsave removes the saved-item record. Unsaving an unsaved item is a no-op;
// the returned state is always saved=false.
func (i *Index) Unsave(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	if err := validateItemType(itemType); err != nil {
		return false, err
	}

	removed, err := i.repo.Delete(ctx, accountID, itemID, itemType)
	if err != nil {
		return false, models.NewStorageError("saves.unsave", err)
	}

	if removed && itemType == models.ItemTypePost {
		if _, err := i.engage.AdjustCounter(ctx, itemID, db.CounterSaves, -1); err != nil && err != models.ErrNotFound {
			i.logger.Warn("failed to drop save counter",
				zap.Int64("post_id", itemID), zap.Error(err))
		}
	}
	return false, nil
}

// Toggle flips the saved state of the item and returns the new state
func (i *Index) Toggle(ctx context.Context, accountID, itemID int64, itemType string) (bool, error) {
	saved, err := i.IsSaved(ctx, accountID, itemID, itemType)
	if err != nil {
		return false, err
	}
	if saved {
		return i.Unsave(ctx, accountID, itemID, itemType)
	}
	return i.Save(ctx, accountID, itemID, itemType)
}

// ListSaved resolves everything the account has saved, newest first. Items
// whose underlying post or article has since been deleted are skipped and
// logged rather than failing the whole listing.
func (i *Index) ListSaved(ctx context.Context, accountID int64) ([]ResolvedSave, error) {
	items, err := i.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, models.NewStorageError("saves.list", err)
	}

	resolved := make([]ResolvedSave, 0, len(items))
	for _, item := range items {
		switch item.ItemType {
		case models.ItemTypePost:
			post, err := i.posts.GetByID(ctx, item.ItemID)
			if err != nil {
				return nil, models.NewStorageError("saves.list", err)
			}
			if post == nil {
				i.logger.Debug("skipping dangling saved post",
					zap.Int64("account_id", accountID),
					zap.Int64("post_id", item.ItemID))
				continue
			}
			resolved = append(resolved, ResolvedSave{Item: item, Post: post})
		case models.ItemTypeArticle:
			var article models.Article
			err := i.gorm.WithContext(ctx).First(&article, item.ItemID).Error
			if err == gorm.ErrRecordNotFound {
				i.logger.Debug("skipping dangling saved article",
					zap.Int64("account_id", accountID),
					zap.Int64("article_id", item.ItemID))
				continue
			}
			if err != nil {
				return nil, models.NewStorageError("saves.list", err)
			}
			resolved = append(resolved, ResolvedSave{Item: item, Article: &article})
		default:
			i.logger.Warn("skipping saved item of unknown type",
				zap.String("item_type", item.ItemType))
		}
	}
	return resolved, nil
}

func validateItemType(itemType string) error {
	if itemType != models.ItemTypePost && itemType != models.ItemTypeArticle {
		return models.NewValidationError("itemType", "must be post or article")
	}
	return nil
}
