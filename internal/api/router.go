// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter builds the gin engine with middleware and all routes.
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())

	router.GET("/health", handler.HealthCheck)

	apiGroup := router.Group("/api")
	apiGroup.Use(DefaultRateLimit())
	{
		apiGroup.GET("/scene", handler.GetScene)
		apiGroup.POST("/scene/actions", handler.ApplyActions)
		apiGroup.POST("/scene/reset", handler.ResetScene)

		promptGroup := apiGroup.Group("/prompt")
		promptGroup.Use(PromptRateLimit())
		{
			promptGroup.POST("", handler.ExecutePrompt)
			promptGroup.POST("/parse", handler.ParsePrompt)
		}

		apiGroup.GET("/history", handler.GetHistory)
		apiGroup.POST("/history/clear", handler.ClearHistory)

		apiGroup.GET("/stats", handler.GetStats)
		apiGroup.GET("/ws/status", handler.WebSocketStatus)

		apiGroup.GET("/scenes", handler.ListScenes)
		apiGroup.POST("/scenes/:name", handler.SaveScene)
		apiGroup.POST("/scenes/:name/load", handler.LoadScene)
		apiGroup.DELETE("/scenes/:name", handler.DeleteScene)
	}

	router.GET("/ws/scene", handler.SceneWebSocket)

	return router
}
