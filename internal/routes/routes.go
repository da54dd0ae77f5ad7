package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glowline/backend/internal/handlers"
	"github.com/glowline/backend/internal/middleware"
)

// RegisterBonusRoutes registers the admin bonus lifecycle routes
func RegisterBonusRoutes(router *gin.Engine, bonusHandler *handlers.BonusHandler, rateLimiter *middleware.RateLimiter) {
	adminGroup := router.Group("/api/admin/team-purchases")
	adminGroup.Use(rateLimiter.IPRateLimiterMiddleware())
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.POST("/:id/bonuses/preview", bonusHandler.PreviewBonuses)
		adminGroup.POST("/:id/bonuses/finalize", bonusHandler.FinalizeBonuses)
		adminGroup.POST("/:id/bonuses/approve", bonusHandler.ApproveBonuses)
		adminGroup.POST("/:id/bonuses/payout", bonusHandler.PayoutBonuses)
		adminGroup.POST("/:id/bonuses/retry-transfer", bonusHandler.RetryTransfer)
		adminGroup.GET("/:id/bonuses/stats", bonusHandler.GetStats)
	}
}

// RegisterDealerRoutes registers dealer-facing tier and turnover routes
func RegisterDealerRoutes(router *gin.Engine, dealerHandler *handlers.DealerHandler, rateLimiter *middleware.RateLimiter) {
	dealerGroup := router.Group("/api/dealers")
	dealerGroup.Use(rateLimiter.IPRateLimiterMiddleware())
	dealerGroup.Use(middleware.AuthMiddleware())
	{
		dealerGroup.GET("/:id/tier-progress", dealerHandler.GetTierProgress)
		dealerGroup.GET("/:id/turnover", dealerHandler.GetTurnover)
	}
}

// RegisterWebhookRoutes registers storefront webhook routes. These are
// authenticated by HMAC signature rather than JWT.
func RegisterWebhookRoutes(router *gin.Engine, webhookHandler *handlers.WebhookHandler, rateLimiter *middleware.RateLimiter) {
	webhookGroup := router.Group("/api/webhooks")
	webhookGroup.Use(rateLimiter.WebhookRateLimiterMiddleware())
	{
		webhookGroup.POST("/team-purchase-completed", webhookHandler.TeamPurchaseCompleted)
	}
}

// RegisterHealthRoutes registers liveness endpoints
func RegisterHealthRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}
