package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/gateway"
	"storefront-service/internal/services"
)

// WebhookHandler processes payment gateway webhook deliveries
type WebhookHandler struct {
	gateway  gateway.CheckoutGateway
	checkout *services.CheckoutService
	logger   *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(gw gateway.CheckoutGateway, checkout *services.CheckoutService, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{gateway: gw, checkout: checkout, logger: logger}
}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string            `json:"reference"`
		Metadata  map[string]string `json:"metadata"`
	} `json:"data"`
}

// HandlePaystack verifies and processes a Paystack event. A successful
// charge moves the paying user's seller verification to pending review.
func (h *WebhookHandler) HandlePaystack(c *gin.Context) {
	if h.gateway == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "payment gateway is not configured"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read payload"})
		return
	}

	if err := h.gateway.VerifyWebhook(payload, c.GetHeader("x-paystack-signature")); err != nil {
		h.logger.WithError(err).Warn("rejected webhook with bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event paystackEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	if event.Event != "charge.success" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	uid := event.Data.Metadata["userId"]
	if uid == "" {
		h.logger.WithField("reference", event.Data.Reference).Warn("charge event without userId metadata")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	err = h.checkout.ConfirmOnboardingPayment(
		c.Request.Context(),
		uid,
		event.Data.Metadata["businessName"],
		event.Data.Metadata["businessEmail"],
		event.Data.Reference,
	)
	if err != nil {
		h.logger.WithError(err).Error("failed to record onboarding payment")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}
