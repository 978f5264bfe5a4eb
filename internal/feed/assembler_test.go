package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/pkg/config"
)

func newTestAssembler(t *testing.T, maxPage int) (*Assembler, *db.Repository) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(&models.Account{}, &models.Post{}, &models.PostTag{},
		&models.Article{}, &models.ViewRecord{})
	if err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	repo := db.NewRepository(gdb)
	assembler := NewAssembler(repo, nil, &config.FeedConfig{
		MaxPageSize:  maxPage,
		CacheTTLSecs: 60,
	})
	return assembler, repo
}

func seedPosts(t *testing.T, repo *db.Repository, accountID int64, n int) []int64 {
	t.Helper()
	posts := db.NewPostRepository(repo)
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		post := &models.Post{
			AccountID:   accountID,
			Description: "look",
			PhotoRefs:   []string{"p.jpg"},
		}
		if err := posts.Create(context.Background(), post, nil, nil); err != nil {
			t.Fatalf("seed post: %v", err)
		}
		ids = append(ids, post.ID)
	}
	return ids
}

func TestGetFeedFiltersViewedPosts(t *testing.T) {
	assembler, repo := newTestAssembler(t, 100)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 5)
	viewer := int64(7)

	// fresh viewer sees everything in creation order
	feed, err := assembler.GetFeed(ctx, viewer, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(feed) != 5 {
		t.Fatalf("feed = %d posts, want 5", len(feed))
	}
	for i, post := range feed {
		if post.ID != ids[i] {
			t.Fatalf("feed order = %v, want creation order %v", feedIDs(feed), ids)
		}
	}

	// viewing two posts removes exactly those from the next assembly
	for _, id := range []int64{ids[1], ids[3]} {
		if _, err := assembler.MarkViewed(ctx, viewer, id); err != nil {
			t.Fatalf("MarkViewed: %v", err)
		}
	}

	feed, err = assembler.GetFeed(ctx, viewer, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed after views: %v", err)
	}
	want := []int64{ids[0], ids[2], ids[4]}
	got := feedIDs(feed)
	if len(got) != len(want) {
		t.Fatalf("feed = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("feed = %v, want %v", got, want)
		}
	}

	// a different viewer's ledger is untouched
	otherFeed, err := assembler.GetFeed(ctx, 8, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed other viewer: %v", err)
	}
	if len(otherFeed) != 5 {
		t.Errorf("other viewer feed = %d posts, want 5", len(otherFeed))
	}
}

func TestGetFeedExhaustion(t *testing.T) {
	assembler, repo := newTestAssembler(t, 100)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 3)
	viewer := int64(7)

	for _, id := range ids {
		if _, err := assembler.MarkViewed(ctx, viewer, id); err != nil {
			t.Fatalf("MarkViewed: %v", err)
		}
	}

	feed, err := assembler.GetFeed(ctx, viewer, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(feed) != 0 {
		t.Errorf("exhausted feed = %v, want empty", feedIDs(feed))
	}
}

func TestGetFeedAnonymousUnfiltered(t *testing.T) {
	assembler, repo := newTestAssembler(t, 100)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 4)

	// mark everything viewed by some account; anonymous ignores ledgers
	for _, id := range ids {
		if _, err := assembler.MarkViewed(ctx, 7, id); err != nil {
			t.Fatalf("MarkViewed: %v", err)
		}
	}

	feed, err := assembler.GetFeed(ctx, 0, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed anonymous: %v", err)
	}
	if len(feed) != 4 {
		t.Errorf("anonymous feed = %d posts, want 4", len(feed))
	}
}

func TestGetFeedPagination(t *testing.T) {
	assembler, repo := newTestAssembler(t, 3)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 8)
	viewer := int64(7)

	// limit above the configured page size is capped
	page, err := assembler.GetFeed(ctx, viewer, 0, 50)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("capped page = %d posts, want 3", len(page))
	}

	// keyset cursor resumes after the last seen id
	next, err := assembler.GetFeed(ctx, viewer, page[2].ID, 3)
	if err != nil {
		t.Fatalf("GetFeed page 2: %v", err)
	}
	if len(next) != 3 || next[0].ID != ids[3] {
		t.Fatalf("page 2 = %v, want posts after %d", feedIDs(next), page[2].ID)
	}
}

func TestMarkViewedIdempotentThroughAssembler(t *testing.T) {
	assembler, repo := newTestAssembler(t, 100)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 1)

	created, err := assembler.MarkViewed(ctx, 7, ids[0])
	if err != nil || !created {
		t.Fatalf("MarkViewed = %v, %v, want true, nil", created, err)
	}
	created, err = assembler.MarkViewed(ctx, 7, ids[0])
	if err != nil || created {
		t.Fatalf("repeat MarkViewed = %v, %v, want false, nil", created, err)
	}
}

// failingLedger rejects every call, standing in for unreachable view storage.
type failingLedger struct {
	listCalls int
	markCalls int
}

func (f *failingLedger) ListViewedPostIDs(ctx context.Context, viewerID int64) ([]int64, error) {
	f.listCalls++
	return nil, errors.New("ledger offline")
}

func (f *failingLedger) MarkViewed(ctx context.Context, viewerID, postID int64) (bool, error) {
	f.markCalls++
	return false, errors.New("ledger offline")
}

func TestGetFeedServesUnfilteredWhenLedgerFails(t *testing.T) {
	assembler, repo := newTestAssembler(t, 100)
	ctx := context.Background()

	ids := seedPosts(t, repo, 1, 4)
	ledger := &failingLedger{}
	assembler.views = ledger

	feed, err := assembler.GetFeed(ctx, 7, 0, 0)
	if err != nil {
		t.Fatalf("GetFeed with failing ledger: %v", err)
	}
	if got := feedIDs(feed); len(got) != len(ids) {
		t.Fatalf("feed = %v, want full listing %v", got, ids)
	}
	if ledger.listCalls == 0 {
		t.Fatal("ledger was never consulted")
	}
}

func TestMarkViewedSurfacesStorageError(t *testing.T) {
	assembler, _ := newTestAssembler(t, 100)

	ledger := &failingLedger{}
	assembler.views = ledger

	_, err := assembler.MarkViewed(context.Background(), 7, 1)
	var storageErr *models.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("MarkViewed error = %v, want storage error", err)
	}
	if ledger.markCalls != 2 {
		t.Fatalf("ledger writes = %d, want one retry after the first failure", ledger.markCalls)
	}
}

func feedIDs(posts []models.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
