package api

import (
	"net/http"

	"github.com/commentflow-api/internal/service"
	"github.com/commentflow-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		services: services,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if errs := validation.ValidateRegistration(req.Email, req.Password); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	user, err := h.services.Auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err == service.ErrConflict {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":            user,
		"extension_token": user.ExtensionToken,
	})
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.services.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err == service.ErrUnauthorized {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Subscription handles GET /v1/user/subscription
func (h *AuthHandler) Subscription(c *gin.Context) {
	sub, err := h.services.Subscription.Resolve(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription_status": sub.Status,
		"subscription_plan":   sub.Plan,
		"active":              sub.Active,
	})
}

// RotateExtensionToken handles POST /v1/user/extension-token/rotate
func (h *AuthHandler) RotateExtensionToken(c *gin.Context) {
	token, err := h.services.Auth.RotateExtensionToken(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"extension_token": token})
}
