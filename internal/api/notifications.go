package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/notify"
	"github.com/dresss/backend/pkg/logging"
)

// NotificationAPI serves activity notifications for the viewer
type NotificationAPI struct {
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewNotificationAPI creates a new notification API
func NewNotificationAPI(notifier *notify.Notifier) *NotificationAPI {
	return &NotificationAPI{
		notifier: notifier,
		logger:   logging.GetLogger().With(zap.String("component", "api-notifications")),
	}
}

// List handles GET /api/notifications
func (n *NotificationAPI) List(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	items, err := n.notifier.List(c.Request.Context(), viewer, listLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UnreadCount handles GET /api/notifications/unread
func (n *NotificationAPI) UnreadCount(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	count, err := n.notifier.UnreadCount(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}
