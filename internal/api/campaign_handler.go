package api

import (
	"net/http"

	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/service"
	"github.com/commentflow-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CampaignHandler handles campaign endpoints
type CampaignHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(services *service.Services, log zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		services: services,
		log:      log.With().Str("handler", "campaign").Logger(),
	}
}

// List handles GET /v1/campaigns
func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.services.Campaign.List(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

// Create handles POST /v1/campaigns
func (h *CampaignHandler) Create(c *gin.Context) {
	var input models.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validation.ValidateCampaign(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	campaign, err := h.services.Campaign.Create(c.Request.Context(), c.GetString("userID"), &input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// Get handles GET /v1/campaigns/:id
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.services.Campaign.Get(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// Update handles PUT /v1/campaigns/:id
func (h *CampaignHandler) Update(c *gin.Context) {
	var input models.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validation.ValidateCampaign(&input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	campaign, err := h.services.Campaign.Update(c.Request.Context(), c.Param("id"), c.GetString("userID"), &input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// Delete handles DELETE /v1/campaigns/:id
func (h *CampaignHandler) Delete(c *gin.Context) {
	if err := h.services.Campaign.Delete(c.Request.Context(), c.Param("id"), c.GetString("userID")); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Discover handles POST /v1/campaigns/:id/discover
func (h *CampaignHandler) Discover(c *gin.Context) {
	report, err := h.services.Discovery.Run(c.Request.Context(), c.Param("id"), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListPosts handles GET /v1/campaigns/:id/posts
func (h *CampaignHandler) ListPosts(c *gin.Context) {
	status := models.PostStatus(c.Query("status"))

	posts, err := h.services.Campaign.ListPosts(c.Request.Context(), c.Param("id"), c.GetString("userID"), status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}
