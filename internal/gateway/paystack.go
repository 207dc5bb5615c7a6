package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	paystackPrimaryURL = "https://api.paystack.co"

	defaultCheckoutCurrency = "NGN"
)

// PaystackConfig configures the Paystack gateway.
type PaystackConfig struct {
	SecretKey string
	PublicKey string
	// BaseURL overrides the primary API host (tests, proxies).
	BaseURL string
	// FallbackURL is tried when the primary host is unreachable. The
	// two-stage resolution mirrors the vendor's own SDK-then-CDN fallback.
	FallbackURL string
}

// PaystackGateway opens Paystack checkout transactions.
type PaystackGateway struct {
	config     PaystackConfig
	httpClient *http.Client
}

var _ CheckoutGateway = (*PaystackGateway)(nil)

// NewPaystackGateway creates a Paystack gateway instance.
func NewPaystackGateway(config PaystackConfig) (*PaystackGateway, error) {
	if config.SecretKey == "" {
		return nil, ErrMissingKey
	}
	if config.BaseURL == "" {
		config.BaseURL = paystackPrimaryURL
	}
	return &PaystackGateway{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// GetType returns the gateway type.
func (g *PaystackGateway) GetType() GatewayType { return GatewayPaystack }

type paystackInitRequest struct {
	Email     string            `json:"email"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Reference string            `json:"reference,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type paystackInitResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// StartCheckout opens a hosted checkout transaction. Validation failures are
// returned before any network access. The primary host is tried first; on
// transport failure the fallback host is tried once. Failure of both
// surfaces as an error — this path is never swallowed.
func (g *PaystackGateway) StartCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCheckoutCurrency
	}
	payload, err := json.Marshal(paystackInitRequest{
		Email:     req.Email,
		Amount:    req.Amount,
		Currency:  currency,
		Reference: req.Reference,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	session, primaryErr := g.initializeTransaction(ctx, g.config.BaseURL, payload)
	if primaryErr == nil {
		return session, nil
	}
	if g.config.FallbackURL == "" {
		return nil, primaryErr
	}

	session, fallbackErr := g.initializeTransaction(ctx, g.config.FallbackURL, payload)
	if fallbackErr != nil {
		return nil, fmt.Errorf("checkout failed on primary (%v) and fallback hosts: %w", primaryErr, fallbackErr)
	}
	return session, nil
}

func (g *PaystackGateway) initializeTransaction(ctx context.Context, host string, payload []byte) (*CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, host+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned %d: %s", resp.StatusCode, string(body))
	}

	var initResp paystackInitResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if !initResp.Status {
		return nil, fmt.Errorf("checkout initialization rejected: %s", initResp.Message)
	}

	return &CheckoutSession{
		AuthorizationURL: initResp.Data.AuthorizationURL,
		AccessCode:       initResp.Data.AccessCode,
		Reference:        initResp.Data.Reference,
	}, nil
}

// VerifyWebhook verifies the HMAC-SHA512 signature Paystack attaches to
// webhook deliveries.
func (g *PaystackGateway) VerifyWebhook(payload []byte, signature string) error {
	mac := hmac.New(sha512.New, []byte(g.config.SecretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return fmt.Errorf("invalid webhook signature")
	}
	return nil
}
