package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dresss/backend/internal/cache"
	"github.com/dresss/backend/internal/db"
	"github.com/dresss/backend/internal/engagement"
	"github.com/dresss/backend/internal/feed"
	"github.com/dresss/backend/internal/notify"
	"github.com/dresss/backend/internal/saves"
	"github.com/dresss/backend/internal/social"
	"github.com/dresss/backend/pkg/config"
	"github.com/dresss/backend/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db     *db.DB
	cache  *cache.Cache
	cfg    *config.Config
	logger *zap.Logger

	posts         *PostAPI
	feed          *FeedAPI
	engagement    *EngagementAPI
	follows       *FollowAPI
	saves         *SaveAPI
	notifications *NotificationAPI
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	notifier := notify.NewNotifier(repo)
	assembler := feed.NewAssembler(repo, redisCache, &cfg.Feed)

	return &Router{
		db:            database,
		cache:         redisCache,
		cfg:           cfg,
		logger:        logging.GetLogger().With(zap.String("component", "api-router")),
		posts:         NewPostAPI(repo, assembler),
		feed:          NewFeedAPI(assembler),
		engagement:    NewEngagementAPI(engagement.NewAggregator(repo, notifier)),
		follows:       NewFollowAPI(social.NewGraph(repo, notifier)),
		saves:         NewSaveAPI(saves.NewIndex(repo, notifier)),
		notifications: NewNotificationAPI(notifier),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger())
	engine.Use(Tracing())
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "X-Viewer-ID", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	origins := strings.Split(r.cfg.Server.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	engine.Use(cors.New(corsCfg))

	limiter := NewIPRateLimiter(r.cfg.Server.RateLimitRPS, r.cfg.Server.RateLimitBurst)
	mutating := RateLimit(limiter)

	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	api := engine.Group("/api")

	pubs := api.Group("/publications")
	pubs.GET("", r.feed.List)
	pubs.POST("", mutating, r.posts.Create)
	pubs.GET("/:id", r.posts.Get)
	pubs.PUT("/:id", mutating, r.posts.Update)
	pubs.DELETE("/:id", mutating, r.posts.Delete)
	pubs.GET("/:id/articles", r.posts.ListArticles)
	pubs.POST("/:id/view", mutating, r.feed.MarkViewed)
	pubs.POST("/:id/like", mutating, r.engagement.AdjustLikes)
	pubs.POST("/:id/like/toggle", mutating, r.engagement.ToggleLike)
	pubs.GET("/:id/comments", r.engagement.ListComments)
	pubs.POST("/:id/comments", mutating, r.engagement.AddComment)

	follows := api.Group("/follows")
	follows.GET("/status", r.follows.Status)
	follows.POST("", mutating, r.follows.Follow)
	follows.DELETE("", mutating, r.follows.Unfollow)

	users := api.Group("/users")
	users.GET("/:id/publications", r.posts.ListByAccount)
	users.GET("/:id/followers", r.follows.ListFollowers)
	users.GET("/:id/following", r.follows.ListFollowing)
	users.POST("/:id/followers", mutating, r.follows.AdjustFollowers)
	users.POST("/:id/followers/recount", mutating, r.follows.RecountFollowers)

	savesGroup := api.Group("/saves")
	savesGroup.GET("", r.saves.List)
	savesGroup.GET("/status", r.saves.Status)
	savesGroup.POST("", mutating, r.saves.Save)
	savesGroup.DELETE("", mutating, r.saves.Unsave)
	savesGroup.POST("/toggle", mutating, r.saves.Toggle)

	notifs := api.Group("/notifications")
	notifs.GET("", r.notifications.List)
	notifs.GET("/unread", r.notifications.UnreadCount)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "OK"
	if err := r.db.Health(ctx); err != nil {
		r.logger.Warn("database health check failed", zap.Error(err))
		status = "DEGRADED"
	}

	c.JSON(200, gin.H{
		"status":  status,
		"service": "dresss-api",
	})
}
