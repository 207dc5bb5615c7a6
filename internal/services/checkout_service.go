package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// CheckoutService opens seller-onboarding checkout transactions and records
// their outcomes on the seller profile.
type CheckoutService struct {
	gateway       gateway.CheckoutGateway
	profiles      repository.ProfileRepository
	logger        *logrus.Logger
	onboardingFee int64 // minor currency units
}

// NewCheckoutService creates a checkout service.
func NewCheckoutService(gw gateway.CheckoutGateway, profiles repository.ProfileRepository, logger *logrus.Logger, onboardingFee int64) *CheckoutService {
	return &CheckoutService{
		gateway:       gw,
		profiles:      profiles,
		logger:        logger,
		onboardingFee: onboardingFee,
	}
}

// StartSellerOnboarding opens a checkout transaction for the onboarding fee.
// Gateway errors propagate to the caller: the user must be told when payment
// cannot start.
func (s *CheckoutService) StartSellerOnboarding(ctx context.Context, session *Session, businessName, businessEmail string) (*gateway.CheckoutSession, error) {
	if s.gateway == nil {
		return nil, gateway.ErrMissingKey
	}
	if businessEmail == "" {
		businessEmail = session.Email
	}

	return s.gateway.StartCheckout(ctx, &gateway.CheckoutRequest{
		Email:     businessEmail,
		Amount:    s.onboardingFee,
		Reference: "seller-onboarding-" + uuid.NewString(),
		Metadata: map[string]string{
			"userId":        session.UID,
			"businessName":  businessName,
			"businessEmail": businessEmail,
		},
	})
}

// ConfirmOnboardingPayment records a successful onboarding charge on the
// seller profile: the payment reference is stored and verification moves to
// pending review.
func (s *CheckoutService) ConfirmOnboardingPayment(ctx context.Context, uid, businessName, businessEmail, reference string) error {
	if s.profiles == nil {
		return fmt.Errorf("profile store is not configured")
	}

	pending := models.VerificationPending
	patch := models.SellerVerificationPatch{
		PaymentReference:   &reference,
		VerificationStatus: &pending,
	}
	if businessName != "" {
		patch.BusinessName = &businessName
	}
	if businessEmail != "" {
		patch.BusinessEmail = &businessEmail
	}

	if err := s.profiles.UpdateSellerVerification(ctx, uid, patch); err != nil {
		return fmt.Errorf("payment %s received but profile update failed: %w", reference, err)
	}

	s.logger.WithFields(logrus.Fields{
		"uid":       uid,
		"reference": reference,
	}).Info("seller onboarding payment recorded")
	return nil
}

// OnboardingFee returns the configured onboarding fee in minor units.
func (s *CheckoutService) OnboardingFee() int64 {
	return s.onboardingFee
}
