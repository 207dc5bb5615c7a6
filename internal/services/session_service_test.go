package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"storefront-service/internal/models"
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

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestResolveSessionSeedsFirstSignIn(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("GetProfile", mock.Anything, "uid-1").Return(nil, nil)
	repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(u *models.MarketplaceUser) bool {
		return u.UID == "uid-1" && u.Role == models.RoleBuyer
	})).Return(nil)

	svc := NewSessionService(repo, testLogger())
	session := svc.ResolveSession(context.Background(), "uid-1", "ada@example.com", "Ada")

	assert.Equal(t, "uid-1", session.UID)
	assert.NotNil(t, session.Profile)
	assert.Equal(t, models.RoleBuyer, session.Profile.Role)
	assert.Equal(t, "ada@example.com", session.Profile.Email)
	repo.AssertExpectations(t)
}

func TestResolveSessionReturnsStoredProfile(t *testing.T) {
	stored := &models.MarketplaceUser{UID: "uid-2", Email: "s@example.com", Role: models.RoleSeller}
	repo := new(MockProfileRepository)
	repo.On("GetProfile", mock.Anything, "uid-2").Return(stored, nil)

	svc := NewSessionService(repo, testLogger())
	session := svc.ResolveSession(context.Background(), "uid-2", "s@example.com", "Sam")

	assert.Same(t, stored, session.Profile)
	repo.AssertNotCalled(t, "UpsertProfile", mock.Anything, mock.Anything)
}

func TestResolveSessionDegradesOnStoreFailure(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("GetProfile", mock.Anything, "uid-3").Return(nil, errors.New("firestore unavailable"))

	svc := NewSessionService(repo, testLogger())
	session := svc.ResolveSession(context.Background(), "uid-3", "x@example.com", "Xo")

	assert.NotNil(t, session.Profile)
	assert.Equal(t, models.RoleBuyer, session.Profile.Role)
}

func TestResolveSessionWithoutStore(t *testing.T) {
	svc := NewSessionService(nil, testLogger())
	session := svc.ResolveSession(context.Background(), "uid-4", "y@example.com", "Yu")

	assert.NotNil(t, session.Profile)
	assert.Equal(t, models.RoleBuyer, session.Profile.Role)
}

func TestSetRolePreservesSellerFields(t *testing.T) {
	existing := &models.SellerProfile{
		BusinessName:       "Ada Traders",
		PaymentReference:   "seller-onboarding-abc",
		VerificationStatus: models.VerificationVerified,
	}
	session := &Session{
		UID:   "uid-5",
		Email: "ada@example.com",
		Profile: &models.MarketplaceUser{
			UID:           "uid-5",
			Role:          models.RoleBuyer,
			SellerProfile: existing,
		},
	}

	repo := new(MockProfileRepository)
	repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(u *models.MarketplaceUser) bool {
		return u.Role == models.RoleSeller &&
			u.SellerProfile != nil &&
			u.SellerProfile.BusinessName == "Ada Traders" &&
			u.SellerProfile.PaymentReference == "seller-onboarding-abc" &&
			u.SellerProfile.VerificationStatus == models.VerificationVerified
	})).Return(nil)

	svc := NewSessionService(repo, testLogger())
	svc.SetRole(context.Background(), session, models.RoleSeller)

	assert.Equal(t, models.RoleSeller, session.Profile.Role)
	repo.AssertExpectations(t)
}

func TestSetRoleKeepsSessionOnPersistenceFailure(t *testing.T) {
	session := &Session{UID: "uid-6", Email: "z@example.com", Profile: &models.MarketplaceUser{Role: models.RoleBuyer}}

	repo := new(MockProfileRepository)
	repo.On("UpsertProfile", mock.Anything, mock.Anything).Return(errors.New("write failed"))

	svc := NewSessionService(repo, testLogger())
	svc.SetRole(context.Background(), session, models.RoleSeller)

	// Failed writes leave the session's profile untouched.
	assert.Equal(t, models.RoleBuyer, session.Profile.Role)
}

func TestSubmitSellerVerification(t *testing.T) {
	session := &Session{
		UID:     "uid-9",
		Email:   "ada@example.com",
		Profile: &models.MarketplaceUser{UID: "uid-9", Role: models.RoleBuyer},
	}

	repo := new(MockProfileRepository)
	repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(u *models.MarketplaceUser) bool {
		return u.Role == models.RoleSeller &&
			u.SellerProfile != nil &&
			u.SellerProfile.BusinessName == "Ada Traders" &&
			u.SellerProfile.BusinessEmail == "ada@example.com" &&
			u.SellerProfile.VerificationStatus == models.VerificationPending
	})).Return(nil)

	svc := NewSessionService(repo, testLogger())
	svc.SubmitSellerVerification(context.Background(), session, "Ada Traders", "")

	assert.Equal(t, models.RoleSeller, session.Profile.Role)
	assert.Equal(t, "Ada Traders", session.Profile.SellerProfile.BusinessName)
	repo.AssertExpectations(t)
}

func TestSubmitSellerVerificationPreservesPaymentReference(t *testing.T) {
	session := &Session{
		UID:   "uid-10",
		Email: "ada@example.com",
		Profile: &models.MarketplaceUser{
			UID:  "uid-10",
			Role: models.RoleSeller,
			SellerProfile: &models.SellerProfile{
				BusinessName:       "Old Name",
				PaymentReference:   "seller-onboarding-abc",
				VerificationStatus: models.VerificationVerified,
			},
		},
	}

	repo := new(MockProfileRepository)
	repo.On("UpsertProfile", mock.Anything, mock.MatchedBy(func(u *models.MarketplaceUser) bool {
		return u.SellerProfile.BusinessName == "New Name" &&
			u.SellerProfile.PaymentReference == "seller-onboarding-abc" &&
			u.SellerProfile.VerificationStatus == models.VerificationVerified
	})).Return(nil)

	svc := NewSessionService(repo, testLogger())
	svc.SubmitSellerVerification(context.Background(), session, "New Name", "biz@example.com")

	repo.AssertExpectations(t)
}

func TestRefreshProfileKeepsCurrentOnFailure(t *testing.T) {
	current := &models.MarketplaceUser{UID: "uid-7", Role: models.RoleSeller}
	session := &Session{UID: "uid-7", Profile: current}

	repo := new(MockProfileRepository)
	repo.On("GetProfile", mock.Anything, "uid-7").Return(nil, errors.New("unavailable"))

	svc := NewSessionService(repo, testLogger())
	svc.RefreshProfile(context.Background(), session)

	assert.Same(t, current, session.Profile)
}

func TestRefreshProfileReplacesProfile(t *testing.T) {
	fresh := &models.MarketplaceUser{UID: "uid-8", Role: models.RoleSeller}
	session := &Session{UID: "uid-8", Profile: &models.MarketplaceUser{Role: models.RoleBuyer}}

	repo := new(MockProfileRepository)
	repo.On("GetProfile", mock.Anything, "uid-8").Return(fresh, nil)

	svc := NewSessionService(repo, testLogger())
	svc.RefreshProfile(context.Background(), session)

	assert.Same(t, fresh, session.Profile)
}
