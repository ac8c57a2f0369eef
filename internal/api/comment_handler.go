package api

import (
	"net/http"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/service"
	"github.com/commentflow-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CommentHandler handles draft comment endpoints
type CommentHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(services *service.Services, log zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		services: services,
		log:      log.With().Str("handler", "comment").Logger(),
	}
}

// List handles GET /v1/comments?group=awaiting|inflight|failed|all
func (h *CommentHandler) List(c *gin.Context) {
	group := models.StatusGroup(c.DefaultQuery("group", string(models.GroupAwaiting)))

	comments, err := h.services.Review.List(c.Request.Context(), c.GetString("userID"), group)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": comments,
		"count":    len(comments),
	})
}

// Edit handles PUT /v1/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := validation.ValidateDraftText(req.Text); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	comment, err := h.services.Review.Edit(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Approve handles POST /v1/comments/:id/approve
func (h *CommentHandler) Approve(c *gin.Context) {
	if err := h.services.Review.Approve(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Reject handles POST /v1/comments/:id/reject
func (h *CommentHandler) Reject(c *gin.Context) {
	if err := h.services.Review.Reject(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Retry handles POST /v1/comments/:id/retry — re-approve a failed draft
func (h *CommentHandler) Retry(c *gin.Context) {
	if err := h.services.Review.Retry(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Regenerate handles POST /v1/comments/:id/regenerate — reject the current
// draft and produce a fresh one for the same post
func (h *CommentHandler) Regenerate(c *gin.Context) {
	comment, err := h.services.Generation.Regenerate(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}
