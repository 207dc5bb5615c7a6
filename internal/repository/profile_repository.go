// Package repository holds the persistence layer. The only persisted entity
// is the marketplace user profile, which lives in the hosted document
// database; everything here is a pass-through to its client.
package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storefront-service/internal/models"
)

const usersCollection = "users"

// ProfileRepository reads and merge-writes marketplace user profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, uid string) (*models.MarketplaceUser, error)
	UpsertProfile(ctx context.Context, user *models.MarketplaceUser) error
	UpdateSellerVerification(ctx context.Context, uid string, patch models.SellerVerificationPatch) error
}

// FirestoreProfileRepository implements ProfileRepository on Firestore.
type FirestoreProfileRepository struct {
	db *firestore.Client
}

// Ensure FirestoreProfileRepository implements the interface
var _ ProfileRepository = (*FirestoreProfileRepository)(nil)

// NewFirestoreProfileRepository creates a Firestore-backed profile store.
func NewFirestoreProfileRepository(db *firestore.Client) *FirestoreProfileRepository {
	return &FirestoreProfileRepository{db: db}
}

type sellerProfileDoc struct {
	BusinessName       string    `firestore:"businessName"`
	BusinessEmail      string    `firestore:"businessEmail"`
	PaymentReference   string    `firestore:"paymentReference"`
	VerificationStatus string    `firestore:"verificationStatus"`
	CreatedAt          time.Time `firestore:"createdAt"`
	UpdatedAt          time.Time `firestore:"updatedAt"`
}

type profileDoc struct {
	Email         string            `firestore:"email"`
	DisplayName   string            `firestore:"displayName"`
	Role          string            `firestore:"role"`
	SellerProfile *sellerProfileDoc `firestore:"sellerProfile"`
}

// GetProfile reads a profile document by uid, returning (nil, nil) when no
// document exists.
func (r *FirestoreProfileRepository) GetProfile(ctx context.Context, uid string) (*models.MarketplaceUser, error) {
	snapshot, err := r.db.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read profile %s: %w", uid, err)
	}

	var doc profileDoc
	if err := snapshot.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}

	role := models.UserRole(doc.Role)
	if !role.Valid() {
		role = models.RoleBuyer
	}

	user := &models.MarketplaceUser{
		UID:         uid,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
		Role:        role,
	}
	if doc.SellerProfile != nil {
		user.SellerProfile = &models.SellerProfile{
			BusinessName:       doc.SellerProfile.BusinessName,
			BusinessEmail:      doc.SellerProfile.BusinessEmail,
			PaymentReference:   doc.SellerProfile.PaymentReference,
			VerificationStatus: models.VerificationStatus(doc.SellerProfile.VerificationStatus),
		}
		if !doc.SellerProfile.CreatedAt.IsZero() {
			createdAt := doc.SellerProfile.CreatedAt
			user.SellerProfile.CreatedAt = &createdAt
		}
		if !doc.SellerProfile.UpdatedAt.IsZero() {
			updatedAt := doc.SellerProfile.UpdatedAt
			user.SellerProfile.UpdatedAt = &updatedAt
		}
	}
	return user, nil
}

// UpsertProfile writes a profile with merge semantics, stamping update and
// creation times server-side.
func (r *FirestoreProfileRepository) UpsertProfile(ctx context.Context, user *models.MarketplaceUser) error {
	data := map[string]any{
		"email":       user.Email,
		"displayName": user.DisplayName,
		"role":        string(user.Role),
		"updatedAt":   firestore.ServerTimestamp,
	}
	if user.SellerProfile != nil {
		seller := map[string]any{
			"businessName":       user.SellerProfile.BusinessName,
			"businessEmail":      user.SellerProfile.BusinessEmail,
			"verificationStatus": string(user.SellerProfile.VerificationStatus),
			"updatedAt":          firestore.ServerTimestamp,
		}
		if user.SellerProfile.PaymentReference != "" {
			seller["paymentReference"] = user.SellerProfile.PaymentReference
		}
		if user.SellerProfile.CreatedAt == nil {
			seller["createdAt"] = firestore.ServerTimestamp
		}
		data["sellerProfile"] = seller
	}

	if _, err := r.db.Collection(usersCollection).Doc(user.UID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", user.UID, err)
	}
	return nil
}

// UpdateSellerVerification merges a partial seller-profile patch into the
// profile document.
func (r *FirestoreProfileRepository) UpdateSellerVerification(ctx context.Context, uid string, patch models.SellerVerificationPatch) error {
	seller := map[string]any{
		"updatedAt": firestore.ServerTimestamp,
	}
	if patch.BusinessName != nil {
		seller["businessName"] = *patch.BusinessName
	}
	if patch.BusinessEmail != nil {
		seller["businessEmail"] = *patch.BusinessEmail
	}
	if patch.PaymentReference != nil {
		seller["paymentReference"] = *patch.PaymentReference
	}
	if patch.VerificationStatus != nil {
		seller["verificationStatus"] = string(*patch.VerificationStatus)
	}

	data := map[string]any{"sellerProfile": seller}
	if _, err := r.db.Collection(usersCollection).Doc(uid).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update seller verification for %s: %w", uid, err)
	}
	return nil
}
