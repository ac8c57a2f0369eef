package api

import (
	"crypto/hmac"
	"net/http"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BillingHandler receives subscription lifecycle webhooks from the billing
// collaborator
type BillingHandler struct {
	services *service.Services
	secret   string
	log      zerolog.Logger
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *BillingHandler {
	return &BillingHandler{
		services: services,
		secret:   cfg.Billing.WebhookSecret,
		log:      log.With().Str("handler", "billing").Logger(),
	}
}

// Webhook handles POST /v1/billing/webhook. Callers authenticate with the
// shared secret in X-Billing-Secret.
func (h *BillingHandler) Webhook(c *gin.Context) {
	if h.secret == "" || !hmac.Equal([]byte(c.GetHeader("X-Billing-Secret")), []byte(h.secret)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook secret"})
		return
	}

	var event service.BillingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Subscription.ApplyBillingEvent(c.Request.Context(), &event); err != nil {
		h.log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to apply billing event")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
