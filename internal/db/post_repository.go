package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dresss/backend/internal/models"
)

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// PostUpdate carries partial post updates. Nil fields are left untouched.
type PostUpdate struct {
	Description *string
	PhotoRefs   []string
	Tags        []string
}

// Create persists a post together with its articles and tags in a single
// transaction. A failed article insert rolls back the post, so a post is
// never left live with a partial article list.
func (r *PostRepository) Create(ctx context.Context, post *models.Post, articles []models.Article, tags []string) error {
	if strings.TrimSpace(post.Description) == "" {
		return models.NewValidationError("description", "must not be empty")
	}
	if len(post.PhotoRefs) == 0 {
		return models.NewValidationError("photos", "at least one photo is required")
	}
	for i := range articles {
		if strings.TrimSpace(articles[i].Title) == "" {
			return models.NewValidationError("articles.title", "must not be empty")
		}
	}

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.EditedAt = post.CreatedAt

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		for i := range articles {
			articles[i].PostID = post.ID
			articles[i].AccountID = post.AccountID
		}
		if len(articles) > 0 {
			if err := tx.Create(&articles).Error; err != nil {
				return err
			}
		}
		post.Articles = articles

		if len(tags) > 0 {
			if err := replaceTags(tx, post.ID, tags); err != nil {
				return err
			}
		}

		// Account rows come from the identity collaborator and may not exist
		// yet; the post count update is best effort.
		tx.Model(&models.Account{}).
			Where("id = ?", post.AccountID).
			UpdateColumn("post_count", gorm.Expr("post_count + 1"))

		return nil
	})
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListAll retrieves posts in creation order. afterID and limit give keyset
// pagination; limit <= 0 returns the full remaining set.
func (r *PostRepository) ListAll(ctx context.Context, afterID int64, limit int) ([]models.Post, error) {
	query := r.db.WithContext(ctx).Model(&models.Post{}).Order("id ASC")
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByAccount retrieves all posts of an account for the profile gallery.
// Profile views are never de-duplicated against the view ledger.
func (r *PostRepository) ListByAccount(ctx context.Context, accountID int64) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Update applies a partial update and returns the updated post
func (r *PostRepository) Update(ctx context.Context, id int64, update PostUpdate) (*models.Post, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.ErrNotFound
	}

	if update.Description != nil {
		if strings.TrimSpace(*update.Description) == "" {
			return nil, models.NewValidationError("description", "must not be empty")
		}
		post.Description = *update.Description
	}
	if update.PhotoRefs != nil {
		if len(update.PhotoRefs) == 0 {
			return nil, models.NewValidationError("photos", "at least one photo is required")
		}
		post.PhotoRefs = update.PhotoRefs
	}
	post.EditedAt = time.Now().UTC()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		if update.Tags != nil {
			if err := replaceTags(tx, id, update.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post and cascades to its articles, view records, like
// records, comments, tags and saved-item references in one transaction.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		return models.ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var articleIDs []int64
		if err := tx.Model(&models.Article{}).
			Where("post_id = ?", id).
			Pluck("id", &articleIDs).Error; err != nil {
			return err
		}

		if len(articleIDs) > 0 {
			if err := tx.Where("item_type = ? AND item_id IN ?", models.ItemTypeArticle, articleIDs).
				Delete(&models.SavedItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("item_type = ? AND item_id = ?", models.ItemTypePost, id).
			Delete(&models.SavedItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Article{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.ViewRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.LikeRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}

		tx.Model(&models.Account{}).
			Where("id = ? AND post_count > 0", post.AccountID).
			UpdateColumn("post_count", gorm.Expr("post_count - 1"))

		return nil
	})
}

// ListArticles returns the articles of a post. A post without articles yields
// an empty slice; ErrNotFound is returned only when the post itself is absent.
func (r *PostRepository) ListArticles(ctx context.Context, postID int64) ([]models.Article, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.ErrNotFound
	}

	var articles []models.Article
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// SetTags replaces the tag set of a post
func (r *PostRepository) SetTags(ctx context.Context, postID int64, tags []string) error {
	return replaceTags(r.db.WithContext(ctx), postID, tags)
}

// GetTags returns the tag set of a post
func (r *PostRepository) GetTags(ctx context.Context, postID int64) ([]string, error) {
	var tags []string
	if err := r.db.WithContext(ctx).Model(&models.PostTag{}).
		Where("post_id = ?", postID).
		Order("tag ASC").
		Pluck("tag", &tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CountAll returns the total number of posts
func (r *PostRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func replaceTags(tx *gorm.DB, postID int64, tags []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if len(tag) > 32 {
			tag = tag[:32]
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if err := tx.Create(&models.PostTag{PostID: postID, Tag: tag}).Error; err != nil {
			return err
		}
	}
	return nil
}
