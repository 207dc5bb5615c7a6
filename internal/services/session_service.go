// Package services holds the application services between HTTP handlers and
// the external platform clients.
package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// Session pairs a verified identity-provider user with its marketplace
// profile for the duration of a request.
type Session struct {
	UID         string                  `json:"uid"`
	Email       string                  `json:"email"`
	DisplayName string                  `json:"displayName"`
	Profile     *models.MarketplaceUser `json:"profile"`
}

// SessionService resolves marketplace profiles for signed-in users. None of
// its methods return errors: profile-store failures are logged and degraded
// so sign-in is never blocked on the document database.
type SessionService struct {
	profiles repository.ProfileRepository
	logger   *logrus.Logger
}

// NewSessionService creates a session service. profiles may be nil when the
// document database is not configured; every resolution then falls back to
// an in-memory default profile.
func NewSessionService(profiles repository.ProfileRepository, logger *logrus.Logger) *SessionService {
	return &SessionService{profiles: profiles, logger: logger}
}

func defaultProfile(uid, email, displayName string) *models.MarketplaceUser {
	return &models.MarketplaceUser{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		Role:        models.RoleBuyer,
	}
}

// ResolveSession loads the profile for a verified user, seeding a default
// buyer profile on first sign-in. A failing profile store yields an
// in-memory default profile instead of an error.
func (s *SessionService) ResolveSession(ctx context.Context, uid, email, displayName string) *Session {
	session := &Session{UID: uid, Email: email, DisplayName: displayName}

	if s.profiles == nil {
		session.Profile = defaultProfile(uid, email, displayName)
		return session
	}

	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		s.logger.WithError(err).WithField("uid", uid).Warn("marketplace profile fetch failed")
		session.Profile = defaultProfile(uid, email, displayName)
		return session
	}

	if profile == nil {
		seeded := defaultProfile(uid, email, displayName)
		if err := s.profiles.UpsertProfile(ctx, seeded); err != nil {
			s.logger.WithError(err).WithField("uid", uid).Warn("unable to seed marketplace profile")
		}
		session.Profile = seeded
		return session
	}

	session.Profile = profile
	return session
}

// SetRole persists a role switch for the session's user, preserving any
// existing seller-profile fields. Persistence errors are logged only.
func (s *SessionService) SetRole(ctx context.Context, session *Session, role models.UserRole) {
	updated := &models.MarketplaceUser{
		UID:         session.UID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Role:        role,
	}
	if role == models.RoleSeller {
		seller := &models.SellerProfile{
			BusinessEmail:      session.Email,
			VerificationStatus: models.VerificationPending,
		}
		if session.Profile != nil && session.Profile.SellerProfile != nil {
			existing := session.Profile.SellerProfile
			seller.BusinessName = existing.BusinessName
			if existing.BusinessEmail != "" {
				seller.BusinessEmail = existing.BusinessEmail
			}
			if existing.VerificationStatus != "" {
				seller.VerificationStatus = existing.VerificationStatus
			}
			seller.PaymentReference = existing.PaymentReference
			seller.CreatedAt = existing.CreatedAt
		}
		updated.SellerProfile = seller
	}

	if s.profiles != nil {
		if err := s.profiles.UpsertProfile(ctx, updated); err != nil {
			s.logger.WithError(err).WithField("uid", session.UID).Warn("unable to update role")
			return
		}
	}
	session.Profile = updated
}

// SubmitSellerVerification records the business details a prospective seller
// submitted and moves them onto the seller track: role becomes seller and
// verification starts (or stays) pending until the onboarding fee is paid and
// reviewed. An existing payment reference survives resubmission.
func (s *SessionService) SubmitSellerVerification(ctx context.Context, session *Session, businessName, businessEmail string) {
	if businessEmail == "" {
		businessEmail = session.Email
	}

	seller := &models.SellerProfile{
		BusinessName:       businessName,
		BusinessEmail:      businessEmail,
		VerificationStatus: models.VerificationPending,
	}
	if session.Profile != nil && session.Profile.SellerProfile != nil {
		existing := session.Profile.SellerProfile
		seller.PaymentReference = existing.PaymentReference
		seller.CreatedAt = existing.CreatedAt
		if existing.VerificationStatus == models.VerificationVerified {
			seller.VerificationStatus = existing.VerificationStatus
		}
	}

	updated := &models.MarketplaceUser{
		UID:           session.UID,
		Email:         session.Email,
		DisplayName:   session.DisplayName,
		Role:          models.RoleSeller,
		SellerProfile: seller,
	}

	if s.profiles != nil {
		if err := s.profiles.UpsertProfile(ctx, updated); err != nil {
			s.logger.WithError(err).WithField("uid", session.UID).Warn("unable to record seller verification details")
			return
		}
	}
	session.Profile = updated
}

// RefreshProfile re-reads the session's profile from the store, keeping the
// current one on any failure.
func (s *SessionService) RefreshProfile(ctx context.Context, session *Session) {
	if s.profiles == nil {
		return
	}
	profile, err := s.profiles.GetProfile(ctx, session.UID)
	if err != nil {
		s.logger.WithError(err).WithField("uid", session.UID).Warn("unable to refresh profile")
		return
	}
	if profile != nil {
		session.Profile = profile
	}
}
