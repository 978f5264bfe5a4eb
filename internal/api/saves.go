package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/saves"
	"github.com/dresss/backend/pkg/logging"
)

// SaveAPI exposes the bookmark endpoints
type SaveAPI struct {
	index  *saves.Index
	logger *zap.Logger
}

// NewSaveAPI creates a new save API
func NewSaveAPI(index *saves.Index) *SaveAPI {
	return &SaveAPI{
		index:  index,
		logger: logging.GetLogger().With(zap.String("component", "api-saves")),
	}
}

type saveInput struct {
	ItemID   int64  `json:"itemId"`
	ItemType string `json:"itemType"`
}

func bindSaveInput(c *gin.Context) (viewer int64, input saveInput, ok bool) {
	viewer = viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return 0, input, false
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ItemID <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "itemId and itemType are required"))
		return 0, input, false
	}
	return viewer, input, true
}

// queryID parses a positive integer query parameter, writing a 400 on failure
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "invalid " + name))
		return 0, false
	}
	return id, true
}

// Status handles GET /api/saves/status?itemId=&itemType= for the viewer
func (s *SaveAPI) Status(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	itemID, okID := queryID(c, "itemId")
	if !okID {
		return
	}

	saved, err := s.index.IsSaved(c.Request.Context(), viewer, itemID, c.Query("itemType"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Save handles POST /api/saves. Saving an already saved item is a no-op.
func (s *SaveAPI) Save(c *gin.Context) {
	viewer, input, ok := bindSaveInput(c)
	if !ok {
		return
	}

	saved, err := s.index.Save(c.Request.Context(), viewer, input.ItemID, input.ItemType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Unsave handles DELETE /api/saves
func (s *SaveAPI) Unsave(c *gin.Context) {
	viewer, input, ok := bindSaveInput(c)
	if !ok {
		return
	}

	saved, err := s.index.Unsave(c.Request.Context(), viewer, input.ItemID, input.ItemType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// Toggle handles POST /api/saves/toggle
func (s *SaveAPI) Toggle(c *gin.Context) {
	viewer, input, ok := bindSaveInput(c)
	if !ok {
		return
	}

	saved, err := s.index.Toggle(c.Request.Context(), viewer, input.ItemID, input.ItemType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// List handles GET /api/saves, resolving each bookmark to its item
func (s *SaveAPI) List(c *gin.Context) {
	viewer := viewerID(c)
	if viewer == 0 {
		respondError(c, NewError(http.StatusBadRequest, "viewer is required"))
		return
	}

	resolved, err := s.index.ListSaved(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolved)
}
