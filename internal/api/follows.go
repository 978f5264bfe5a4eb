package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/social"
	"github.com/dresss/backend/pkg/logging"
)

// FollowAPI exposes the social graph endpoints
type FollowAPI struct {
	graph  *social.Graph
	logger *zap.Logger
}

// NewFollowAPI creates a new follow API
func NewFollowAPI(graph *social.Graph) *FollowAPI {
	return &FollowAPI{
		graph:  graph,
		logger: logging.GetLogger().With(zap.String("component", "api-follows")),
	}
}

type followInput struct {
	FollowerID int64 `json:"follower"`
	FollowedID int64 `json:"followed"`
}

// Status handles GET /api/follows/status?follower=&followed=
func (f *FollowAPI) Status(c *gin.Context) {
	followerID, err1 := strconv.ParseInt(c.Query("follower"), 10, 64)
	followedID, err2 := strconv.ParseInt(c.Query("followed"), 10, 64)
	if err1 != nil || err2 != nil || followerID <= 0 || followedID <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "follower and followed are required"))
		return
	}

	following, err := f.graph.FollowStatus(c.Request.Context(), followerID, followedID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": following})
}

// Follow handles POST /api/follows. Following an account already followed
// is a no-op and still reports isFollowing true.
func (f *FollowAPI) Follow(c *gin.Context) {
	var input followInput
	if err := c.ShouldBindJSON(&input); err != nil || input.FollowerID <= 0 || input.FollowedID <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "follower and followed are required"))
		return
	}

	if err := f.graph.Follow(c.Request.Context(), input.FollowerID, input.FollowedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": true})
}

// Unfollow handles DELETE /api/follows
func (f *FollowAPI) Unfollow(c *gin.Context) {
	var input followInput
	if err := c.ShouldBindJSON(&input); err != nil || input.FollowerID <= 0 || input.FollowedID <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "follower and followed are required"))
		return
	}

	if err := f.graph.Unfollow(c.Request.Context(), input.FollowerID, input.FollowedID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFollowing": false})
}

// AdjustFollowers handles POST /api/users/:id/followers with a signed delta
func (f *FollowAPI) AdjustFollowers(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}

	var input deltaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, NewError(http.StatusBadRequest, "invalid request body"))
		return
	}

	count, err := f.graph.AdjustFollowerCount(c.Request.Context(), accountID, input.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followersCount": count})
}

// RecountFollowers handles POST /api/users/:id/followers/recount, repairing
// a drifted counter from the edge set.
func (f *FollowAPI) RecountFollowers(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}

	count, err := f.graph.RecountFollowers(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followersCount": count})
}

// ListFollowers handles GET /api/users/:id/followers
func (f *FollowAPI) ListFollowers(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}

	follows, err := f.graph.ListFollowers(c.Request.Context(), accountID, listLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, follows)
}

// ListFollowing handles GET /api/users/:id/following
func (f *FollowAPI) ListFollowing(c *gin.Context) {
	accountID, ok := paramID(c)
	if !ok {
		return
	}

	follows, err := f.graph.ListFollowing(c.Request.Context(), accountID, listLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, follows)
}

// listLimit parses an optional ?limit= query, 0 meaning repository default
func listLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
