package router

import (
	"context"

	"agentcomm.app/relay/internal/http/handler"
	"agentcomm.app/relay/internal/http/middleware"
	"agentcomm.app/relay/internal/service"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	DashboardURL string
	IsProduction bool
	// Feed is nil when live notifications are disabled.
	Feed handler.NotificationFeed
	// Health backs GET /health; nil means always healthy.
	Health func(ctx context.Context) error
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", handler.Health(cfg.Health))

	authService := services.Auth()
	requireAuth := middleware.RequireAuth(authService)

	authHandler := handler.NewAuthHandler(authService, cfg.DashboardURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler, requireAuth)

	v1 := router.Group("/api/v1", requireAuth)
	{
		agentHandler := handler.NewAgentHandler(services.Agent())
		AgentRouter(v1.Group("/agent"), agentHandler)

		notificationHandler := handler.NewNotificationHandler(services.Notifications(), cfg.Feed)
		NotificationRouter(v1.Group("/notifications"), notificationHandler)
	}
}
