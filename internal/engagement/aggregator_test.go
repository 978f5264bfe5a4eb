package engagement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/internal/notify"
)

func newTestAggregator(t *testing.T) (*Aggregator, *db.Repository, *notify.Notifier) {
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

	err = gdb.AutoMigrate(&models.Account{}, &models.Post{}, &models.LikeRecord{},
		&models.Comment{}, &models.Notification{})
	if err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	repo := db.NewRepository(gdb)
	notifier := notify.NewNotifier(repo)
	return NewAggregator(repo, notifier), repo, notifier
}

func seedEngagementPost(t *testing.T, repo *db.Repository, accountID int64) *models.Post {
	t.Helper()
	post := &models.Post{
		AccountID:   accountID,
		Description: "look",
		PhotoRefs:   []string{"p.jpg"},
	}
	if err := db.NewPostRepository(repo).Create(context.Background(), post, nil, nil); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestAdjustLikes(t *testing.T) {
	agg, repo, _ := newTestAggregator(t)
	ctx := context.Background()

	post := seedEngagementPost(t, repo, 1)

	count, err := agg.AdjustLikes(ctx, post.ID, 1)
	if err != nil || count != 1 {
		t.Fatalf("AdjustLikes(+1) = %d, %v, want 1, nil", count, err)
	}
	count, err = agg.AdjustLikes(ctx, post.ID, -1)
	if err != nil || count != 0 {
		t.Fatalf("AdjustLikes(-1) = %d, %v, want 0, nil", count, err)
	}
	count, err = agg.AdjustLikes(ctx, post.ID, -1)
	if err != nil || count != 0 {
		t.Fatalf("AdjustLikes(-1) at zero = %d, %v, want 0, nil", count, err)
	}

	_, err = agg.AdjustLikes(ctx, post.ID, 3)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("AdjustLikes(3) = %v, want ValidationError", err)
	}

	_, err = agg.AdjustLikes(ctx, 9999, 1)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("AdjustLikes missing post = %v, want ErrNotFound", err)
	}
}

func TestConcurrentLikeIncrements(t *testing.T) {
	agg, repo, _ := newTestAggregator(t)
	ctx := context.Background()

	post := seedEngagementPost(t, repo, 1)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := agg.AdjustLikes(ctx, post.ID, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent AdjustLikes: %v", err)
	}

	reloaded, err := db.NewPostRepository(repo).GetByID(ctx, post.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Likes != workers {
		t.Errorf("Likes = %d, want %d; increments were lost or doubled", reloaded.Likes, workers)
	}
}

func TestToggleLike(t *testing.T) {
	agg, repo, notifier := newTestAggregator(t)
	ctx := context.Background()

	owner := &models.Account{Pseudo: "marie"}
	if err := db.NewAccountRepository(repo).Create(ctx, owner); err != nil {
		t.Fatalf("create owner: %v", err)
	}
	post := seedEngagementPost(t, repo, owner.ID)
	viewer := int64(42)

	liked, count, err := agg.ToggleLike(ctx, viewer, post.ID)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked || count != 1 {
		t.Errorf("first toggle = liked %v count %d, want true 1", liked, count)
	}

	// the owner hears about the like once
	notifs, err := notifier.List(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != models.NotifyTypeLike {
		t.Errorf("notifications = %+v, want one like notification", notifs)
	}

	liked, count, err = agg.ToggleLike(ctx, viewer, post.ID)
	if err != nil {
		t.Fatalf("second ToggleLike: %v", err)
	}
	if liked || count != 0 {
		t.Errorf("second toggle = liked %v count %d, want false 0", liked, count)
	}

	// toggling from two accounts keeps counts per account
	liked, count, err = agg.ToggleLike(ctx, 43, post.ID)
	if err != nil || !liked || count != 1 {
		t.Fatalf("other account toggle = %v %d, %v, want true 1, nil", liked, count, err)
	}

	_, _, err = agg.ToggleLike(ctx, viewer, 9999)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("ToggleLike missing post = %v, want ErrNotFound", err)
	}
}

func TestAddComment(t *testing.T) {
	agg, repo, _ := newTestAggregator(t)
	ctx := context.Background()

	post := seedEngagementPost(t, repo, 1)

	comment, err := agg.AddComment(ctx, 42, post.ID, "great look")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if comment.ID == 0 || comment.Body != "great look" {
		t.Errorf("comment = %+v, want persisted body", comment)
	}

	reloaded, err := db.NewPostRepository(repo).GetByID(ctx, post.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload post: %v", err)
	}
	if reloaded.Comments != 1 {
		t.Errorf("Comments = %d, want 1", reloaded.Comments)
	}

	comments, err := agg.ListComments(ctx, post.ID)
	if err != nil || len(comments) != 1 {
		t.Fatalf("ListComments = %d entries, %v, want 1, nil", len(comments), err)
	}

	_, err = agg.AddComment(ctx, 42, post.ID, "   ")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("AddComment blank body = %v, want ValidationError", err)
	}

	_, err = agg.AddComment(ctx, 42, 9999, "hello")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("AddComment missing post = %v, want ErrNotFound", err)
	}
}
