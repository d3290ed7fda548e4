// internal/api/router.go
package api

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/weblife-game/weblife/internal/config"
	"github.com/weblife-game/weblife/internal/di"
	"github.com/weblife-game/weblife/internal/services"
)

// SetupRouter wires the HTTP routes against the services registered in
// the DI container.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	container := di.GetContainer()

	sessionService, ok := container.Get("session").(*services.SessionService)
	if !ok {
		return nil, fmt.Errorf("session service not initialized")
	}
	turnService, ok := container.Get("turn").(*services.TurnService)
	if !ok {
		return nil, fmt.Errorf("turn service not initialized")
	}
	socialService, ok := container.Get("social").(*services.SocialService)
	if !ok {
		return nil, fmt.Errorf("social service not initialized")
	}
	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("config service not initialized")
	}

	handler := NewHandler(sessionService, turnService, socialService, configService)
	return buildRouter(handler), nil
}

// buildRouter attaches all routes to a fresh engine. Split from
// SetupRouter so tests can build a router around fake services.
func buildRouter(handler *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(RequestIDMiddleware())

	// Live session updates
	r.GET("/ws/sessions/:id", handler.SessionWebSocket)

	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("", handler.ListSessions)
			sessions.GET("/:id", handler.GetSession)
			sessions.DELETE("/:id", handler.DeleteSession)
			sessions.GET("/:id/logs", handler.GetSessionLogs)

			// Turn and choice calls fan out to the narrative provider,
			// so they get the tighter budget.
			sessions.POST("/:id/turn", TurnRateLimit(), handler.AdvanceTurn)
			sessions.POST("/:id/choice", TurnRateLimit(), handler.ResolveChoice)

			social := sessions.Group("/:id/social/:platform")
			{
				social.POST("/account", handler.CreateSocialAccount)
				social.DELETE("/account", handler.DeleteSocialAccount)
				social.POST("/posts", TurnRateLimit(), handler.CreateSocialPost)
				social.POST("/followers/buy", handler.BuyFakeFollowers)
			}
		}

		api.GET("/platforms", handler.GetPlatforms)
		api.GET("/geography", handler.GetGeography)

		llmGroup := api.Group("/llm")
		{
			llmGroup.GET("/status", handler.GetLLMStatus)
			llmGroup.PUT("/config", AdminAuthMiddleware(), handler.UpdateLLMConfig)
		}

		api.GET("/health", handler.GetHealth)
		api.GET("/metrics", handler.GetMetrics)
		api.GET("/ws/status", handler.GetWebSocketStatus)
	}

	return r
}
