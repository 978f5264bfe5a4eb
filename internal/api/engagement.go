package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/engagement"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/pkg/logging"
)

// EngagementAPI exposes like and comment endpoints
type EngagementAPI struct {
	agg    *engagement.Aggregator
	logger *zap.Logger
}

// NewEngagementAPI creates a new engagement API
func NewEngagementAPI(agg *engagement.Aggregator) *EngagementAPI {
	return &EngagementAPI{
		agg:    agg,
		logger: logging.GetLogger().With(zap.String("component", "api-engagement")),
	}
}

type deltaInput struct {
	Delta int64 `json:"delta"`
}

// AdjustLikes handles POST /api/publications/:id/like with a signed delta.
// Kept for clients that track their own like state; toggle is preferred.
func (e *EngagementAPI) AdjustLikes(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}

	input := deltaInput{Delta: 1}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, NewError(http.StatusBadRequest, "invalid request body"))
			return
		}
	}

	count, err := e.agg.AdjustLikes(c.Request.Context(), postID, input.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"likes": count})
}

// ToggleLike handles POST /api/publications/:id/like/toggle for the viewer
func (e *EngagementAPI) ToggleLike(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}

	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	liked, count, err := e.agg.ToggleLike(c.Request.Context(), viewer, postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": count})
}

type commentInput struct {
	Body string `json:"body"`
}

// AddComment handles POST /api/publications/:id/comments
func (e *EngagementAPI) AddComment(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}

	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	var input commentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, models.NewValidationError("body", "is required"))
		return
	}

	comment, err := e.agg.AddComment(c.Request.Context(), viewer, postID, input.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /api/publications/:id/comments
func (e *EngagementAPI) ListComments(c *gin.Context) {
	postID, ok := paramID(c)
	if !ok {
		return
	}

	comments, err := e.agg.ListComments(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}
