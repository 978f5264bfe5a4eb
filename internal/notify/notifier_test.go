package notify

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
)

func newTestNotifier(t *testing.T) *Notifier {
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

	if err := gdb.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return NewNotifier(db.NewRepository(gdb))
}

func TestNotifyRecordsEvent(t *testing.T) {
	notifier := newTestNotifier(t)
	ctx := context.Background()

	notifier.Notify(ctx, Event{Type: models.NotifyTypeLike, ActorID: 1, TargetID: 2, PostID: 3})

	notifs, err := notifier.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs))
	}
	got := notifs[0]
	if got.Type != models.NotifyTypeLike || got.SrcID.Int64 != 1 || got.PostID.Int64 != 3 {
		t.Errorf("notification = %+v, want like from 1 on post 3", got)
	}

	count, err := notifier.UnreadCount(ctx, 2)
	if err != nil || count != 1 {
		t.Errorf("UnreadCount = %d, %v, want 1, nil", count, err)
	}
}

func TestNotifySkipsSelfEvents(t *testing.T) {
	notifier := newTestNotifier(t)
	ctx := context.Background()

	notifier.Notify(ctx, Event{Type: models.NotifyTypeFollow, ActorID: 5, TargetID: 5})

	notifs, err := notifier.List(ctx, 5, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(notifs) != 0 {
		t.Errorf("self event recorded: %+v", notifs)
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var notifier *Notifier
	notifier.Notify(context.Background(), Event{Type: models.NotifyTypeLike, ActorID: 1, TargetID: 2})
}
