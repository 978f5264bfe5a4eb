package notify

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/pkg/logging"
)

// Event describes a social event worth notifying about
type Event struct {
	Type    int16
	ActorID int64
	// TargetID is the account being notified
	TargetID int64
	// PostID is set for post-scoped events
	PostID int64
}

// Notifier records notifications for follow/like/comment events. Delivery to
// devices is the push collaborator's job; this side is fire-and-forget and
// never blocks or fails the triggering operation.
type Notifier struct {
	notifs *db.NotificationRepository
	logger *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(repo *db.Repository) *Notifier {
	return &Notifier{
		notifs: db.NewNotificationRepository(repo),
		logger: logging.GetLogger().With(zap.String("component", "notifier")),
	}
}

// Notify records the event. Errors are logged, never returned.
func (n *Notifier) Notify(ctx context.Context, event Event) {
	if n == nil {
		return
	}
	// Self-notifications carry no information
	if event.ActorID == event.TargetID {
		return
	}

	notif := &models.Notification{
		Type:      event.Type,
		CreatedAt: time.Now().UTC(),
		SrcID:     sql.NullInt64{Int64: event.ActorID, Valid: event.ActorID != 0},
		DstID:     sql.NullInt64{Int64: event.TargetID, Valid: event.TargetID != 0},
	}
	if event.PostID != 0 {
		notif.PostID = sql.NullInt64{Int64: event.PostID, Valid: true}
	}

	if err := n.notifs.Create(ctx, notif); err != nil {
		n.logger.Warn("failed to record notification",
			zap.Int16("type", event.Type),
			zap.Int64("actor_id", event.ActorID),
			zap.Int64("target_id", event.TargetID),
			zap.Error(err))
	}
}

// List returns the most recent notifications for an account
func (n *Notifier) List(ctx context.Context, accountID int64, limit int) ([]models.Notification, error) {
	return n.notifs.ListByAccount(ctx, accountID, limit)
}

// UnreadCount returns the number of unread notifications for an account
func (n *Notifier) UnreadCount(ctx context.Context, accountID int64) (int64, error) {
	return n.notifs.CountUnread(ctx, accountID)
}
