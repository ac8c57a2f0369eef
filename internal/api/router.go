package api

import (
	"net/http"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/repository"
	"github.com/commentflow-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authH := NewAuthHandler(services, log)
	campaignH := NewCampaignHandler(services, log)
	postH := NewPostHandler(services, log)
	commentH := NewCommentHandler(services, log)
	extensionH := NewExtensionHandler(services, log)
	billingH := NewBillingHandler(services, cfg, log)

	claimLimiter := NewRateLimiter(cfg.Queue.RateLimit, cfg.Queue.RateWindow)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(repos))

	// API v1
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authH.Register)
			auth.POST("/login", authH.Login)
		}

		v1.POST("/billing/webhook", billingH.Webhook)

		// Extension poller endpoints authenticate with the opaque extension
		// token, not a session
		extension := v1.Group("/extension")
		extension.Use(extensionTokenMiddleware())
		{
			extension.GET("/queue", RateLimitMiddleware(claimLimiter), extensionH.Claim)
			extension.POST("/queue/:id", extensionH.Settle)
		}

		secured := v1.Group("")
		secured.Use(sessionMiddleware([]byte(cfg.Auth.JWTSecret)))
		{
			secured.GET("/user/subscription", authH.Subscription)
			secured.POST("/user/extension-token/rotate", authH.RotateExtensionToken)

			campaigns := secured.Group("/campaigns")
			{
				campaigns.GET("", campaignH.List)
				campaigns.POST("", campaignH.Create)
				campaigns.GET("/:id", campaignH.Get)
				campaigns.PUT("/:id", campaignH.Update)
				campaigns.DELETE("/:id", campaignH.Delete)
				campaigns.POST("/:id/discover", campaignH.Discover)
				campaigns.GET("/:id/posts", campaignH.ListPosts)
			}

			posts := secured.Group("/posts")
			{
				posts.POST("/:id/generate", postH.Generate)
				posts.POST("/:id/queue", postH.Queue)
				posts.POST("/:id/skip", postH.Skip)
				posts.POST("/:id/comments", postH.WriteDraft)
			}

			comments := secured.Group("/comments")
			{
				comments.GET("", commentH.List)
				comments.PUT("/:id", commentH.Edit)
				comments.POST("/:id/approve", commentH.Approve)
				comments.POST("/:id/reject", commentH.Reject)
				comments.POST("/:id/retry", commentH.Retry)
				comments.POST("/:id/regenerate", commentH.Regenerate)
			}
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "commentflow-api",
	})
}

// metricsHandler returns basic row counts
func metricsHandler(repos *repository.Repositories) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		postsCount, _ := repos.Post.Count(ctx)
		commentsCount, _ := repos.Comment.Count(ctx)

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"discovered_posts": postsCount,
				"comments":         commentsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
