package router

import (
	"agentcomm.app/relay/internal/http/handler"
	"github.com/gin-gonic/gin"
)

func AgentRouter(rg *gin.RouterGroup, h *handler.AgentHandler) {
	rg.POST("/chat", h.Chat)
	rg.GET("/requests", h.ListRequests)
	rg.POST("/requests/:id/cancel", h.CancelRequest)
	rg.GET("/tasks", h.ListTasks)
	rg.POST("/tasks/:id/complete", h.CompleteTask)
}
