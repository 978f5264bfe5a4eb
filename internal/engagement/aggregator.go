package engagement

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/internal/notify"
	"github.com/dresss/backend/pkg/logging"
)

// Aggregator mutates the like/save/comment counters on posts. All deltas are
// atomic at the storage layer so concurrent engagement from different viewers
// never loses updates.
type Aggregator struct {
	repo     *db.EngagementRepository
	posts    *db.PostRepository
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewAggregator creates a new engagement aggregator
func NewAggregator(repo *db.Repository, notifier *notify.Notifier) *Aggregator {
	return &Aggregator{
		repo:     db.NewEngagementRepository(repo),
		posts:    db.NewPostRepository(repo),
		notifier: notifier,
		logger:   logging.GetLogger().With(zap.String("component", "engagement-aggregator")),
	}
}

// AdjustLikes applies a raw ±1 like delta and returns the new count. The
// caller is trusted on toggle state; ToggleLike gives per-user exactly-once
// semantics instead.
func (a *Aggregator) AdjustLikes(ctx context.Context, postID int64, delta int64) (int64, error) {
	return a.adjust(ctx, postID, db.CounterLikes, delta)
}

// AdjustSaves applies a raw ±1 save delta and returns the new count
func (a *Aggregator) AdjustSaves(ctx context.Context, postID int64, delta int64) (int64, error) {
	return a.adjust(ctx, postID, db.CounterSaves, delta)
}

// AdjustComments applies a raw ±1 comment delta and returns the new count
func (a *Aggregator) AdjustComments(ctx context.Context, postID int64, delta int64) (int64, error) {
	return a.adjust(ctx, postID, db.CounterComments, delta)
}

func (a *Aggregator) adjust(ctx context.Context, postID int64, column string, delta int64) (int64, error) {
	if delta != 1 && delta != -1 {
		return 0, models.NewValidationError("delta", "must be +1 or -1")
	}

	count, err := a.repo.AdjustCounter(ctx, postID, column, delta)
	if err == models.ErrNotFound {
		return 0, err
	}
	if err != nil {
		// Retry once, then surface: a silently dropped delta is a
		// user-visible correctness issue.
		count, err = a.repo.AdjustCounter(ctx, postID, column, delta)
		if err == models.ErrNotFound {
			return 0, err
		}
		if err != nil {
			return 0, models.NewStorageError("engagement.adjust_"+column, err)
		}
	}
	return count, nil
}

// ToggleLike flips the acting user's like on the post. The like record's
// storage-level uniqueness guarantees the user is counted at most once no
// matter how often or how concurrently the toggle fires.
func (a *Aggregator) ToggleLike(ctx context.Context, accountID, postID int64) (liked bool, count int64, err error) {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return false, 0, models.NewStorageError("engagement.toggle_like", err)
	}
	if post == nil {
		return false, 0, models.ErrNotFound
	}

	has, err := a.repo.HasLiked(ctx, accountID, postID)
	if err != nil {
		return false, 0, models.NewStorageError("engagement.toggle_like", err)
	}

	if has {
		removed, err := a.repo.DeleteLikeRecord(ctx, accountID, postID)
		if err != nil {
			return false, 0, models.NewStorageError("engagement.toggle_like", err)
		}
		count := post.Likes
		if removed {
			count, err = a.repo.AdjustCounter(ctx, postID, db.CounterLikes, -1)
			if err != nil {
				return false, 0, models.NewStorageError("engagement.toggle_like", err)
			}
		}
		return false, count, nil
	}

	created, err := a.repo.CreateLikeRecord(ctx, accountID, postID)
	if err != nil {
		return false, 0, models.NewStorageError("engagement.toggle_like", err)
	}
	count = post.Likes
	if created {
		count, err = a.repo.AdjustCounter(ctx, postID, db.CounterLikes, 1)
		if err != nil {
			return false, 0, models.NewStorageError("engagement.toggle_like", err)
		}
		a.notifier.Notify(ctx, notify.Event{
			Type:     models.NotifyTypeLike,
			ActorID:  accountID,
			TargetID: post.AccountID,
			PostID:   postID,
		})
	}
	return true, count, nil
}

// AddComment creates a comment and bumps the post comment counter in one
// transaction
func (a *Aggregator) AddComment(ctx context.Context, accountID, postID int64, body string) (*models.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("body", "must not be empty")
	}

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError("engagement.add_comment", err)
	}
	if post == nil {
		return nil, models.ErrNotFound
	}

	comment := &models.Comment{
		PostID:    postID,
		AccountID: accountID,
		Body:      body,
	}
	if err := a.repo.CreateComment(ctx, comment); err != nil {
		return nil, models.NewStorageError("engagement.add_comment", err)
	}

	a.notifier.Notify(ctx, notify.Event{
		Type:     models.NotifyTypeComment,
		ActorID:  accountID,
		TargetID: post.AccountID,
		PostID:   postID,
	})
	return comment, nil
}

// ListComments returns the comments of a post in creation order
func (a *Aggregator) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError("engagement.list_comments", err)
	}
	if post == nil {
		return nil, models.ErrNotFound
	}
	comments, err := a.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, models.NewStorageError("engagement.list_comments", err)
	}
	return comments, nil
}
