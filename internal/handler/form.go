package handler

import (
	"context"
	"net/http"

	"agent-advisor/internal/model"
	"agent-advisor/internal/service"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	advisor *service.AdvisorService
}

func NewFormHandler(advisor *service.AdvisorService) *FormHandler {
	return &FormHandler{
		advisor: advisor,
	}
}

type formAction func(ctx context.Context, sessionID string) (model.FormView, error)

// respond writes the view for a finished action. Rejected actions still
// carry the current view next to the error.
func respond(c *gin.Context, view model.FormView, err error) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound || status == http.StatusInternalServerError {
			writeError(c, err)
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "view": view})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *FormHandler) run(action formAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := action(c.Request.Context(), c.Param("session_id"))
		respond(c, view, err)
	}
}

func (h *FormHandler) GetView(c *gin.Context)        { h.run(h.advisor.FormView)(c) }
func (h *FormHandler) Submit(c *gin.Context)         { h.run(h.advisor.SubmitForm)(c) }
func (h *FormHandler) ShowFrameworks(c *gin.Context) { h.run(h.advisor.ShowFrameworks)(c) }
func (h *FormHandler) Back(c *gin.Context)           { h.run(h.advisor.BackToUseCases)(c) }
func (h *FormHandler) Reset(c *gin.Context)          { h.run(h.advisor.ResetForm)(c) }

func (h *FormHandler) SetField(c *gin.Context) {
	var req model.SetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.advisor.SetFormField(c.Request.Context(), c.Param("session_id"), model.Field(req.Field), req.Value)
	respond(c, view, err)
}

func (h *FormHandler) TogglePriority(c *gin.Context) {
	var req model.TogglePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.advisor.ToggleFormPriority(c.Request.Context(), c.Param("session_id"), model.Priority(req.Tag))
	respond(c, view, err)
}

func (h *FormHandler) SelectUseCase(c *gin.Context) {
	var req model.SelectUseCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.advisor.SelectUseCase(c.Request.Context(), c.Param("session_id"), *req.Index)
	respond(c, view, err)
}
