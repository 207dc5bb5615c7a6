package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// MockProfileRepository is a mock implementation of repository.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, uid string) (*models.MarketplaceUser, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MarketplaceUser), args.Error(1)
}

func (m *MockProfileRepository) UpsertProfile(ctx context.Context, user *models.MarketplaceUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateSellerVerification(ctx context.Context, uid string, patch models.SellerVerificationPatch) error {
	args := m.Called(ctx, uid, patch)
	return args.Error(0)
}

const webhookSecret = "sk_test_secret"

func newWebhookRouter(t *testing.T, repo *MockProfileRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gw, err := gateway.NewPaystackGateway(gateway.PaystackConfig{SecretKey: webhookSecret})
	assert.NoError(t, err)

	checkout := services.NewCheckoutService(gw, repo, logger, 200000)
	handler := NewWebhookHandler(gw, checkout, logger)

	router := gin.New()
	router.POST("/webhooks/paystack", handler.HandlePaystack)
	return router
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/webhooks/paystack", bytes.NewReader(payload))
	req.Header.Set("x-paystack-signature", signature)
	router.ServeHTTP(w, req)
	return w
}

func TestHandlePaystackChargeSuccess(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("UpdateSellerVerification", mock.Anything, "uid-1", mock.MatchedBy(func(patch models.SellerVerificationPatch) bool {
		return patch.PaymentReference != nil && *patch.PaymentReference == "ref-1" &&
			patch.VerificationStatus != nil && *patch.VerificationStatus == models.VerificationPending
	})).Return(nil)

	router := newWebhookRouter(t, repo)
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-1","metadata":{"userId":"uid-1","businessName":"Ada Traders"}}}`)

	w := postWebhook(router, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "processed")
	repo.AssertExpectations(t)
}

func TestHandlePaystackRejectsBadSignature(t *testing.T) {
	repo := new(MockProfileRepository)
	router := newWebhookRouter(t, repo)
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-1","metadata":{"userId":"uid-1"}}}`)

	w := postWebhook(router, payload, "deadbeef")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	repo.AssertNotCalled(t, "UpdateSellerVerification", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePaystackIgnoresOtherEvents(t *testing.T) {
	repo := new(MockProfileRepository)
	router := newWebhookRouter(t, repo)
	payload := []byte(`{"event":"transfer.success","data":{"reference":"ref-2"}}`)

	w := postWebhook(router, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	repo.AssertNotCalled(t, "UpdateSellerVerification", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlePaystackIgnoresChargeWithoutUser(t *testing.T) {
	repo := new(MockProfileRepository)
	router := newWebhookRouter(t, repo)
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-3","metadata":{}}}`)

	w := postWebhook(router, payload, signPayload(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}
