// Package gateway integrates the hosted payment platform used to collect
// seller-onboarding fees. Unlike the catalog's fail-soft reads, gateway
// failures surface as errors: the caller must be able to tell the user that
// payment could not start.
package gateway

import (
	"context"
	"errors"
)

// GatewayType identifies a payment gateway vendor.
type GatewayType string

const (
	GatewayPaystack GatewayType = "PAYSTACK"
)

// Validation errors returned before any network access is attempted.
var (
	ErrMissingKey    = errors.New("payment gateway key is missing")
	ErrMissingEmail  = errors.New("checkout email is required")
	ErrInvalidAmount = errors.New("checkout amount must be a positive number of minor currency units")
)

// CheckoutRequest describes a checkout transaction to open.
type CheckoutRequest struct {
	Email     string
	Amount    int64 // minor currency units (kobo)
	Currency  string
	Reference string
	Metadata  map[string]string
}

// CheckoutSession is an opened checkout transaction the buyer completes on
// the gateway's hosted page.
type CheckoutSession struct {
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	Reference        string `json:"reference"`
}

// CheckoutGateway is a thing that can open a checkout transaction.
type CheckoutGateway interface {
	GetType() GatewayType

	// StartCheckout validates the request and opens a transaction.
	StartCheckout(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)

	// VerifyWebhook verifies a gateway event signature.
	VerifyWebhook(payload []byte, signature string) error
}

// Validate checks the request invariants shared by all gateways.
func (r *CheckoutRequest) Validate() error {
	if r.Email == "" {
		return ErrMissingEmail
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
