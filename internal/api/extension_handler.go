package api

import (
	"net/http"

	"github.com/commentflow-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ExtensionHandler serves the browser-extension poller: claiming queued drafts
// and reporting per-item outcomes. Authentication is the opaque extension
// token resolved by extensionTokenMiddleware.
type ExtensionHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewExtensionHandler creates a new ExtensionHandler
func NewExtensionHandler(services *service.Services, log zerolog.Logger) *ExtensionHandler {
	return &ExtensionHandler{
		services: services,
		log:      log.With().Str("handler", "extension").Logger(),
	}
}

// Claim handles GET /v1/extension/queue. Claimed drafts belong to this caller
// until they are settled or reclaimed.
func (h *ExtensionHandler) Claim(c *gin.Context) {
	claimed, err := h.services.Queue.Claim(c.Request.Context(), c.GetString("extensionToken"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comments": claimed,
		"count":    len(claimed),
	})
}

// Settle handles POST /v1/extension/queue/:id with a terminal outcome for a
// claimed draft
func (h *ExtensionHandler) Settle(c *gin.Context) {
	var req struct {
		Status      string `json:"status"`
		PlatformURL string `json:"platform_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := c.GetString("extensionToken")
	id := c.Param("id")

	var err error
	switch req.Status {
	case "posted":
		err = h.services.Queue.SettlePosted(c.Request.Context(), token, id, req.PlatformURL)
	case "failed":
		err = h.services.Queue.SettleFailed(c.Request.Context(), token, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 'posted' or 'failed'"})
		return
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
