package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/gateway"
	"storefront-service/internal/middleware"
	"storefront-service/internal/services"
)

// CheckoutHandler handles seller-onboarding checkout requests
type CheckoutHandler struct {
	checkout *services.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout}
}

// StartCheckoutRequest is the body of a seller-onboarding checkout.
type StartCheckoutRequest struct {
	BusinessName  string `json:"businessName" binding:"required"`
	BusinessEmail string `json:"businessEmail" binding:"omitempty,email"`
}

// StartCheckout opens a hosted checkout transaction for the onboarding fee.
// Gateway failures are surfaced to the caller, never swallowed.
func (h *CheckoutHandler) StartCheckout(c *gin.Context) {
	session := middleware.GetSession(c)
	if session == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign-in required"})
		return
	}

	var req StartCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkoutSession, err := h.checkout.StartSellerOnboarding(c.Request.Context(), session, req.BusinessName, req.BusinessEmail)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrMissingKey):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway is not configured"})
		case errors.Is(err, gateway.ErrMissingEmail), errors.Is(err, gateway.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "unable to start checkout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout": checkoutSession,
		"amount":   h.checkout.OnboardingFee(),
	})
}
