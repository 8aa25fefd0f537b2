package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"

	"votearena/internal/apperr"
	"votearena/internal/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges the operator API key for an admin JWT.
type AuthHandler struct {
	adminAPIKey string
}

func NewAuthHandler(adminAPIKey string) *AuthHandler {
	return &AuthHandler{adminAPIKey: adminAPIKey}
}

// AdminLogin issues a short-lived admin token
// POST /auth/admin
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req struct {
		APIKey string `json:"apiKey" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("apiKey is required."))
		return
	}

	if h.adminAPIKey == "" ||
		subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.adminAPIKey)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "Invalid API key",
		})
		return
	}

	token, err := auth.GenerateToken("admin", true)
	if err != nil {
		log.Printf("[Auth] Failed to generate admin token: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token": token,
		},
	})
}
