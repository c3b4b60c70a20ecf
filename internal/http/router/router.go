package router

import (
	"github.com/gin-gonic/gin"

	"threadscribe.app/bot/internal/http/handler"
)

func SetupRoutes(router *gin.Engine, eventsHandler *handler.EventsHandler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	SlackRouter(router.Group("/slack"), eventsHandler)
}
