package router

import (
	"agentcomm.app/relay/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func NotificationRouter(rg *gin.RouterGroup, h *handler.NotificationHandler) {
	rg.GET("", h.List)
	rg.GET("/stream", h.Stream)
	rg.POST("/read-all", h.MarkAllRead)
	rg.POST("/:id/read", h.MarkRead)
}
