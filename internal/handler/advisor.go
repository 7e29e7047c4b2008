package handler

import (
	"net/http"
	"time"

	"agent-advisor/internal/model"
	"agent-advisor/internal/service"
	"agent-advisor/internal/utils"
	"agent-advisor/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AdvisorHandler struct {
	advisor *service.AdvisorService
}

func NewAdvisorHandler(advisor *service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{
		advisor: advisor,
	}
}

func (h *AdvisorHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	// an empty body gets the default title
	_ = c.ShouldBindJSON(&req)

	session, err := h.advisor.CreateSession(c.Request.Context(), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AdvisorHandler) GetSession(c *gin.Context) {
	session, err := h.advisor.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AdvisorHandler) GetSessionList(c *gin.Context) {
	sessions, err := h.advisor.ListSessions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
	})
}

func (h *AdvisorHandler) DeleteSession(c *gin.Context) {
	if err := h.advisor.DeleteSession(c.Request.Context(), c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *AdvisorHandler) UpdateSessionTitle(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.advisor.UpdateSessionTitle(c.Request.Context(), c.Param("session_id"), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *AdvisorHandler) SendMessage(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.advisor.SendMessage(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// StreamMessage runs one chat turn and sends every appended message as a
// "message" event, followed by a "state" event and [DONE].
func (h *AdvisorHandler) StreamMessage(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// resolve the session first so an unknown id is still a plain 404
	if _, err := h.advisor.GetSession(c.Request.Context(), req.SessionID); err != nil {
		writeError(c, err)
		return
	}

	sseWriter := utils.NewSSEWriter(c.Writer)
	writeFailed := false

	resp, err := h.advisor.StreamMessage(c.Request.Context(), req.SessionID, req.Message, func(m model.ChatMessage) {
		if writeFailed {
			return
		}
		if err := sseWriter.WriteJSON("message", m); err != nil {
			// the turn still completes and is persisted
			logger.Warnf("Failed to write SSE: %v", err)
			writeFailed = true
		}
	})
	if writeFailed {
		return
	}
	if err != nil {
		_ = sseWriter.WriteJSON("error", gin.H{
			"error":     err.Error(),
			"timestamp": time.Now().Unix(),
		})
		_ = sseWriter.Close()
		return
	}

	_ = sseWriter.WriteJSON("state", gin.H{
		"session_id": resp.SessionID,
		"state":      resp.State,
		"busy":       resp.Busy,
	})
	_ = sseWriter.Close()
}

func (h *AdvisorHandler) GetMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.advisor.Messages(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"messages":   messages,
	})
}

func (h *AdvisorHandler) ResetChat(c *gin.Context) {
	resp, err := h.advisor.ResetChat(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
