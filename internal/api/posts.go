package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/feed"
	"github.com/dresss/backend/internal/models"
	"github.com/dresss/backend/pkg/logging"
)

// PostAPI provides post CRUD endpoints
type PostAPI struct {
	posts     *db.PostRepository
	assembler *feed.Assembler
	logger    *zap.Logger
}

// NewPostAPI creates a new post API
func NewPostAPI(repo *db.Repository, assembler *feed.Assembler) *PostAPI {
	return &PostAPI{
		posts:     db.NewPostRepository(repo),
		assembler: assembler,
		logger:    logging.GetLogger().With(zap.String("component", "api-posts")),
	}
}

type articleInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	PhotoRef    string  `json:"photoRef"`
	Link        string  `json:"link"`
}

type createPostInput struct {
	AccountID   int64          `json:"accountId"`
	Description string         `json:"description"`
	PhotoRefs   []string       `json:"photoRefs"`
	Tags        []string       `json:"tags"`
	Articles    []articleInput `json:"articles"`
}

type updatePostInput struct {
	Description *string  `json:"description"`
	PhotoRefs   []string `json:"photoRefs"`
	Tags        []string `json:"tags"`
}

// Create handles POST /api/publications
func (p *PostAPI) Create(c *gin.Context) {
	var input createPostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, NewError(http.StatusBadRequest, "invalid request body"))
		return
	}
	if input.AccountID == 0 {
		respondError(c, models.NewValidationError("accountId", "is required"))
		return
	}

	post := &models.Post{
		AccountID:   input.AccountID,
		Description: input.Description,
		PhotoRefs:   input.PhotoRefs,
	}
	articles := make([]models.Article, len(input.Articles))
	for i, a := range input.Articles {
		articles[i] = models.Article{
			Title:       a.Title,
			Description: a.Description,
			Price:       a.Price,
			PhotoRef:    a.PhotoRef,
			Link:        a.Link,
		}
	}

	if err := p.posts.Create(c.Request.Context(), post, articles, input.Tags); err != nil {
		respondError(c, err)
		return
	}

	p.assembler.InvalidateListing()
	c.JSON(http.StatusCreated, gin.H{
		"publication": post,
		"articles":    post.Articles,
	})
}

// Get handles GET /api/publications/:id
func (p *PostAPI) Get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	post, err := p.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, models.NewStorageError("api.get_post", err))
		return
	}
	if post == nil {
		respondError(c, models.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Update handles PUT /api/publications/:id
func (p *PostAPI) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var input updatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, NewError(http.StatusBadRequest, "invalid request body"))
		return
	}

	post, err := p.posts.Update(c.Request.Context(), id, db.PostUpdate{
		Description: input.Description,
		PhotoRefs:   input.PhotoRefs,
		Tags:        input.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	p.assembler.InvalidateListing()
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/publications/:id
func (p *PostAPI) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	if err := p.posts.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	// Photo storage reclamation belongs to the photo collaborator; it keys
	// off the same references the post carried.
	p.assembler.InvalidateListing()
	c.JSON(http.StatusOK, gin.H{"message": "publication deleted"})
}

// ListArticles handles GET /api/publications/:id/articles. A post without
// articles yields an empty list; 404 means the post itself is absent.
func (p *PostAPI) ListArticles(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	articles, err := p.posts.ListArticles(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, articles)
}

// ListByAccount handles GET /api/users/:id/publications, the profile gallery.
// Never de-duplicated against the view ledger.
func (p *PostAPI) ListByAccount(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	posts, err := p.posts.ListByAccount(c.Request.Context(), id)
	if err != nil {
		respondError(c, models.NewStorageError("api.list_by_account", err))
		return
	}
	c.JSON(http.StatusOK, posts)
}

// paramID parses the :id path parameter, writing a 400 response on failure
func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, NewError(http.StatusBadRequest, "invalid id"))
		return 0, false
	}
	return id, true
}

// viewerID extracts the trusted viewer id supplied by the identity
// collaborator. 0 means anonymous.
func viewerID(c *gin.Context) int64 {
	raw := c.GetHeader("X-Viewer-ID")
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
