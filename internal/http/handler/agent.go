package handler

import (
	"net/http"
	"strconv"

	"agentcomm.app/relay/internal/http/dto"
	"agentcomm.app/relay/internal/http/middleware"
	"agentcomm.app/relay/internal/service"
	"github.com/gin-gonic/gin"
)

type AgentHandler struct {
	agentService service.AgentService
}

func NewAgentHandler(agentService service.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

func (h *AgentHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUser(c.Request.Context())
	reply, err := h.agentService.Chat(c.Request.Context(), user.ID, req.Message)
	if err != nil {
		writeError(c, err, "failed to process message")
		return
	}

	c.JSON(http.StatusOK, dto.ToChatResponse(reply))
}

func (h *AgentHandler) ListRequests(c *gin.Context) {
	user := middleware.GetUser(c.Request.Context())
	requests, err := h.agentService.ListRequests(c.Request.Context(), user.ID, c.Query("status"))
	if err != nil {
		writeError(c, err, "failed to list requests")
		return
	}

	c.JSON(http.StatusOK, dto.ToRequestResponses(requests))
}

func (h *AgentHandler) ListTasks(c *gin.Context) {
	user := middleware.GetUser(c.Request.Context())
	tasks, err := h.agentService.ListTasks(c.Request.Context(), user.ID, c.Query("status"))
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskResponses(tasks))
}

func (h *AgentHandler) CompleteTask(c *gin.Context) {
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.CompleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := middleware.GetUser(c.Request.Context())
	completion, err := h.agentService.CompleteTask(c.Request.Context(), user.ID, taskID, req.Response)
	if err != nil {
		writeError(c, err, "failed to complete task")
		return
	}

	c.JSON(http.StatusOK, dto.CompleteTaskResponse{
		Task:    dto.ToTaskResponse(completion.Task),
		Request: dto.ToRequestResponse(completion.Request),
	})
}

func (h *AgentHandler) CancelRequest(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user := middleware.GetUser(c.Request.Context())
	cancellation, err := h.agentService.CancelRequest(c.Request.Context(), user.ID, requestID)
	if err != nil {
		writeError(c, err, "failed to cancel request")
		return
	}

	c.JSON(http.StatusOK, dto.CancelRequestResponse{
		Request:        dto.ToRequestResponse(cancellation.Request),
		CancelledTasks: len(cancellation.Tasks),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
