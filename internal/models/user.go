package models

import "time"

// UserRole is the marketplace-facing role of an account.
type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// VerificationStatus tracks seller onboarding verification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// SellerProfile holds seller-onboarding state attached to a user profile.
type SellerProfile struct {
	BusinessName       string             `json:"businessName"`
	BusinessEmail      string             `json:"businessEmail"`
	PaymentReference   string             `json:"paymentReference,omitempty"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	CreatedAt          *time.Time         `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time         `json:"updatedAt,omitempty"`
}

// MarketplaceUser is a buyer/seller profile document. The hosted document
// database owns the record; this service only reads and merge-writes it.
type MarketplaceUser struct {
	UID           string         `json:"uid"`
	Email         string         `json:"email"`
	DisplayName   string         `json:"displayName"`
	Role          UserRole       `json:"role"`
	SellerProfile *SellerProfile `json:"sellerProfile,omitempty"`
}

// SellerVerificationPatch is a partial seller-profile update. Nil fields are
// left untouched by the merge write.
type SellerVerificationPatch struct {
	BusinessName       *string
	BusinessEmail      *string
	PaymentReference   *string
	VerificationStatus *VerificationStatus
}
