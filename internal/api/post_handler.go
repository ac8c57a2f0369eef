package api

import (
	"net/http"

	"github.com/commentflow-api/internal/service"
	"github.com/commentflow-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// PostHandler handles discovered post endpoints
type PostHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(services *service.Services, log zerolog.Logger) *PostHandler {
	return &PostHandler{
		services: services,
		log:      log.With().Str("handler", "post").Logger(),
	}
}

// Generate handles POST /v1/posts/:id/generate
func (h *PostHandler) Generate(c *gin.Context) {
	comment, err := h.services.Generation.Generate(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "comment": comment})
}

// Queue handles POST /v1/posts/:id/queue
func (h *PostHandler) Queue(c *gin.Context) {
	if err := h.services.Review.QueuePost(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Skip handles POST /v1/posts/:id/skip
func (h *PostHandler) Skip(c *gin.Context) {
	if err := h.services.Review.SkipPost(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// WriteDraft handles POST /v1/posts/:id/comments — a reviewer hand-authoring
// the first draft for a post
func (h *PostHandler) WriteDraft(c *gin.Context) {
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

	comment, err := h.services.Review.WriteDraft(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Text)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
