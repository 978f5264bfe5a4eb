package social

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/internal/notify"
	"github.com/dresss/backend/pkg/logging"
)

// Graph maintains follow edges and the denormalized follower counters.
// Edge and counter are mutated inside one transaction, so the two
// representations cannot drift through the follow/unfollow path. The raw
// counter-adjust operation bypasses the edge set and is reconciled with
// RecountFollowers.
type Graph struct {
	repo     *db.Repository
	accounts *db.AccountRepository
	follows  *db.FollowRepository
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewGraph creates a new social graph store
func NewGraph(repo *db.Repository, notifier *notify.Notifier) *Graph {
	return &Graph{
		repo:     repo,
		accounts: db.NewAccountRepository(repo),
		follows:  db.NewFollowRepository(repo),
		notifier: notifier,
		logger:   logging.GetLogger().With(zap.String("component", "social-graph")),
	}
}

// FollowStatus reports whether follower follows followed
func (g *Graph) FollowStatus(ctx context.Context, followerID, followedID int64) (bool, error) {
	edge, err := g.follows.Get(ctx, followerID, followedID)
	if err != nil {
		return false, models.NewStorageError("social.follow_status", err)
	}
	return edge != nil, nil
}

// Follow creates the follow edge and bumps both denormalized counters in one
// transaction. Following twice is a no-op, not an error. Self-follows are
// rejected before any storage mutation.
func (g *Graph) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return models.NewValidationError("followed", "cannot follow yourself")
	}

	err := g.withRetry(func() error {
		return g.repo.Gorm().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Follow
			err := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
				First(&existing).Error
			if err == nil {
				// Already following
				return nil
			}
			if err != gorm.ErrRecordNotFound {
				return err
			}

			edge := &models.Follow{
				FollowerID: followerID,
				FollowedID: followedID,
				CreatedAt:  time.Now().UTC(),
			}
			if err := tx.Create(edge).Error; err != nil {
				return err
			}

			// Account rows come from the identity collaborator and may not
			// exist yet; counter updates are scoped to existing rows.
			if err := tx.Model(&models.Account{}).
				Where("id = ?", followedID).
				UpdateColumn("followers_count", gorm.Expr("followers_count + 1")).Error; err != nil {
				return err
			}
			return tx.Model(&models.Account{}).
				Where("id = ?", followerID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error
		})
	})
	if err != nil {
		return models.NewStorageError("social.follow", err)
	}

	g.notifier.Notify(ctx, notify.Event{
		Type:     models.NotifyTypeFollow,
		ActorID:  followerID,
		TargetID: followedID,
	})

	g.logger.Debug("follow recorded",
		zap.Int64("follower_id", followerID),
		zap.Int64("followed_id", followedID))
	return nil
}

// Unfollow removes the follow edge and decrements both counters in one
// transaction, with a zero floor. Unfollowing twice is a no-op.
func (g *Graph) Unfollow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return models.NewValidationError("followed", "cannot unfollow yourself")
	}

	err := g.withRetry(func() error {
		return g.repo.Gorm().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
				Delete(&models.Follow{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Not following, nothing to undo
				return nil
			}

			if err := tx.Model(&models.Account{}).
				Where("id = ?", followedID).
				UpdateColumn("followers_count", gorm.Expr(
					"CASE WHEN followers_count - 1 < 0 THEN 0 ELSE followers_count - 1 END")).Error; err != nil {
				return err
			}
			return tx.Model(&models.Account{}).
				Where("id = ?", followerID).
				UpdateColumn("following_count", gorm.Expr(
					"CASE WHEN following_count - 1 < 0 THEN 0 ELSE following_count - 1 END")).Error
		})
	})
	if err != nil {
		return models.NewStorageError("social.unfollow", err)
	}
	return nil
}

// AdjustFollowerCount applies a raw ±1 delta to the stored follower counter,
// clamped at zero, and returns the new count. This writes the counter cache
// without touching the edge set, so it can diverge; RecountFollowers repairs
// the divergence.
func (g *Graph) AdjustFollowerCount(ctx context.Context, accountID int64, delta int64) (int64, error) {
	if delta != 1 && delta != -1 {
		return 0, models.NewValidationError("delta", "must be +1 or -1")
	}

	count, err := g.accounts.AdjustFollowerCount(ctx, accountID, delta)
	if err == models.ErrNotFound {
		return 0, err
	}
	if err != nil {
		// Retry once, then surface: silently losing the adjustment is a
		// user-visible correctness issue.
		count, err = g.accounts.AdjustFollowerCount(ctx, accountID, delta)
		if err == models.ErrNotFound {
			return 0, err
		}
		if err != nil {
			return 0, models.NewStorageError("social.adjust_follower_count", err)
		}
	}
	return count, nil
}

// RecountFollowers recomputes the stored follower counter from the edge set
// and returns the reconciled value
func (g *Graph) RecountFollowers(ctx context.Context, accountID int64) (int64, error) {
	count, err := g.follows.CountFollowers(ctx, accountID)
	if err != nil {
		return 0, models.NewStorageError("social.recount_followers", err)
	}
	if err := g.accounts.SetFollowerCount(ctx, accountID, count); err != nil {
		if err == models.ErrNotFound {
			return 0, err
		}
		return 0, models.NewStorageError("social.recount_followers", err)
	}
	return count, nil
}

// ListFollowers returns accounts following the given account
func (g *Graph) ListFollowers(ctx context.Context, accountID int64, limit int) ([]models.Follow, error) {
	follows, err := g.follows.ListFollowers(ctx, accountID, limit)
	if err != nil {
		return nil, models.NewStorageError("social.list_followers", err)
	}
	return follows, nil
}

// ListFollowing returns accounts the given account follows
func (g *Graph) ListFollowing(ctx context.Context, accountID int64, limit int) ([]models.Follow, error) {
	follows, err := g.follows.ListFollowing(ctx, accountID, limit)
	if err != nil {
		return nil, models.NewStorageError("social.list_following", err)
	}
	return follows, nil
}

// withRetry runs fn, retrying once on failure
func (g *Graph) withRetry(fn func() error) error {
	if err := fn(); err != nil {
		return fn()
	}
	return nil
}
