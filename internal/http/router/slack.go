package router

import (
	"github.com/gin-gonic/gin"

	"threadscribe.app/bot/internal/http/handler"
)

func SlackRouter(router *gin.RouterGroup, handler *handler.EventsHandler) {
	router.POST("/events", handler.HandleEvent)
}
