package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dresss/backend/internal/cache"
	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/pkg/config"
	"github.com/dresss/backend/pkg/logging"
	"github.com/dresss/backend/pkg/telemetry"
)

// anonymousListingKey caches the full unpaginated listing served to
// unauthenticated viewers
const anonymousListingKey = "feed:anonymous"

// viewLedger is the slice of view storage the assembler reads and writes.
// Satisfied by db.ViewRepository in production.
type viewLedger interface {
	MarkViewed(ctx context.Context, viewerID, postID int64) (bool, error)
	ListViewedPostIDs(ctx context.Context, viewerID int64) ([]int64, error)
}

// Assembler produces the ordered, de-duplicated candidate post list for a
// viewer. Ordering is creation order; no ranking is applied.
type Assembler struct {
	posts    *db.PostRepository
	views    viewLedger
	cache    *cache.Cache
	cacheTTL time.Duration
	maxPage  int
	logger   *zap.Logger
}

// NewAssembler creates a new feed assembler
func NewAssembler(repo *db.Repository, redisCache *cache.Cache, cfg *config.FeedConfig) *Assembler {
	return &Assembler{
		posts:    db.NewPostRepository(repo),
		views:    db.NewViewRepository(repo),
		cache:    redisCache,
		cacheTTL: time.Duration(cfg.CacheTTLSecs) * time.Second,
		maxPage:  cfg.MaxPageSize,
		logger:   logging.GetLogger().With(zap.String("component", "feed-assembler")),
	}
}

// GetFeed returns the posts the viewer has not yet seen, in creation order.
// viewerID 0 means anonymous: the full listing is returned unfiltered, a
// deliberate fallback rather than an error. afterID and limit give keyset
// pagination; limit <= 0 returns the full remaining set, capped at the
// configured page size when paginating.
func (a *Assembler) GetFeed(ctx context.Context, viewerID, afterID int64, limit int) ([]models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.get_feed")
	defer span.End()

	if limit > a.maxPage {
		limit = a.maxPage
	}

	if viewerID == 0 {
		return a.anonymousFeed(ctx, afterID, limit)
	}

	// Posts and viewed-ids are independent reads, issued concurrently.
	type postsResult struct {
		posts []models.Post
		err   error
	}
	type viewedResult struct {
		ids []int64
		err error
	}

	postsCh := make(chan postsResult, 1)
	viewedCh := make(chan viewedResult, 1)

	go func() {
		posts, err := a.posts.ListAll(ctx, afterID, 0)
		postsCh <- postsResult{posts: posts, err: err}
	}()
	go func() {
		ids, err := a.views.ListViewedPostIDs(ctx, viewerID)
		viewedCh <- viewedResult{ids: ids, err: err}
	}()

	pr := <-postsCh
	vr := <-viewedCh

	if pr.err != nil {
		return nil, models.NewStorageError("feed.list_posts", pr.err)
	}

	// A ledger read failure degrades to "nothing viewed": the viewer may see
	// a repeat post, which is non-destructive, instead of an error screen.
	viewed := make(map[int64]bool, len(vr.ids))
	if vr.err != nil {
		a.logger.Warn("view ledger read failed, serving feed unfiltered",
			zap.Int64("viewer_id", viewerID),
			zap.Error(vr.err))
	} else {
		for _, id := range vr.ids {
			viewed[id] = true
		}
	}

	result := make([]models.Post, 0, len(pr.posts))
	for _, post := range pr.posts {
		if viewed[post.ID] {
			continue
		}
		result = append(result, post)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (a *Assembler) anonymousFeed(ctx context.Context, afterID int64, limit int) ([]models.Post, error) {
	cacheable := afterID == 0 && limit <= 0

	if cacheable {
		var cached []models.Post
		if err := a.cache.GetJSON(anonymousListingKey, &cached); err == nil {
			return cached, nil
		}
	}

	posts, err := a.posts.ListAll(ctx, afterID, limit)
	if err != nil {
		return nil, models.NewStorageError("feed.list_posts", err)
	}

	if cacheable {
		if err := a.cache.SetJSON(anonymousListingKey, posts, a.cacheTTL); err != nil && err != cache.ErrCacheDisabled {
			a.logger.Warn("failed to cache anonymous feed", zap.Error(err))
		}
	}
	return posts, nil
}

// MarkViewed records that the viewer has seen the post. Idempotent: repeated
// or late-arriving calls for the same pair are safe. One retry on storage
// failure, then the error is surfaced to the caller; feed rendering must not
// block on it.
func (a *Assembler) MarkViewed(ctx context.Context, viewerID, postID int64) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.mark_viewed")
	defer span.End()

	created, err := a.views.MarkViewed(ctx, viewerID, postID)
	if err != nil {
		created, err = a.views.MarkViewed(ctx, viewerID, postID)
	}
	if err != nil {
		return false, models.NewStorageError("feed.mark_viewed", err)
	}
	return created, nil
}

// InvalidateListing drops the cached anonymous listing, called after post
// creation or deletion
func (a *Assembler) InvalidateListing() {
	if err := a.cache.Delete(anonymousListingKey); err != nil && err != cache.ErrCacheDisabled {
		a.logger.Warn("failed to invalidate anonymous feed cache", zap.Error(err))
	}
}
