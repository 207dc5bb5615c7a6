package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// ProfileHandler handles account and profile HTTP requests
type ProfileHandler struct {
	sessions *services.SessionService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(sessions *services.SessionService) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

// Me returns the signed-in user's session and profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetRoleRequest is the body of a role switch.
type SetRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required"`
}

// SetRole switches the signed-in user's role, preserving existing
// seller-profile fields.
func (h *ProfileHandler) SetRole(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be buyer or seller"})
		return
	}

	h.sessions.SetRole(c.Request.Context(), session, req.Role)
	c.JSON(http.StatusOK, session)
}

// SellerVerificationRequest is the body of a seller verification submission.
type SellerVerificationRequest struct {
	BusinessName  string `json:"businessName" binding:"required"`
	BusinessEmail string `json:"businessEmail" binding:"omitempty,email"`
}

// SubmitSellerVerification records business details and puts the user on the
// seller track pending payment and review.
func (h *ProfileHandler) SubmitSellerVerification(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
		return
	}

	var req SellerVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.sessions.SubmitSellerVerification(c.Request.Context(), session, req.BusinessName, req.BusinessEmail)
	c.JSON(http.StatusOK, session)
}

// RefreshProfile re-reads the profile from the document store.
func (h *ProfileHandler) RefreshProfile(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
		return
	}

	h.sessions.RefreshProfile(c.Request.Context(), session)
	c.JSON(http.StatusOK, session)
}
