package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/feed"
	"github.com/dresss/backend/pkg/logging"
)

// FeedAPI serves the personalized publication feed
type FeedAPI struct {
	assembler *feed.Assembler
	logger    *zap.Logger
}

// NewFeedAPI creates a new feed API
func NewFeedAPI(assembler *feed.Assembler) *FeedAPI {
	return &FeedAPI{
		assembler: assembler,
		logger:    logging.GetLogger().With(zap.String("component", "api-feed")),
	}
}

// List handles GET /api/publications. The viewer comes from the
// X-Viewer-ID header; anonymous viewers get the full unfiltered listing.
func (f *FeedAPI) List(c *gin.Context) {
	viewer := viewerID(c)

	var afterID int64
	if raw := c.Query("after"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			respondError(c, NewError(http.StatusBadRequest, "invalid after cursor"))
			return
		}
		afterID = id
	}

	var limit int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, NewError(http.StatusBadRequest, "invalid limit"))
			return
		}
		limit = n
	}

	posts, err := f.assembler.GetFeed(c.Request.Context(), viewer, afterID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

type markViewedInput struct {
	UserID int64 `json:"userId"`
}

// MarkViewed handles POST /api/publications/:id/view. Repeated marks for
// the same viewer and post are accepted and collapse to a single record.
func (f *FeedAPI) MarkViewed(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}

	var input markViewedInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		respondError(c, NewError(http.StatusBadRequest, "invalid request body"))
		return
	}

	viewer := input.UserID
	if viewer == 0 {
		viewer = viewerID(c)
	}
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	created, err := f.assembler.MarkViewed(c.Request.Context(), viewer, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}
