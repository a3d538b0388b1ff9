package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(allowedOrigins []string, signalController *SignalController, streamController *StreamController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		config.AllowOrigins = allowedOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	if signalController != nil {
		api.GET("/signal", signalController.Dispatch)
		api.POST("/signal", signalController.Dispatch)
	}

	if streamController != nil {
		api.GET("/rooms/:roomID/notifications/ws", streamController.StreamNotifications)
	}

	return router
}
