package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	pfirestore "github.com/ramitaha13/KamelStore/internal/platform/firestore"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

const (
	usersCollection   = "users"
	adminCredentialID = "1"
)

// CredentialRepository reads the single admin login document.
type CredentialRepository struct {
	base *pfirestore.BaseRepository[domain.AdminCredential]
}

var _ repositories.CredentialRepository = (*CredentialRepository)(nil)

// NewCredentialRepository constructs a Firestore-backed credential repository.
func NewCredentialRepository(provider *pfirestore.Provider) (*CredentialRepository, error) {
	if provider == nil {
		return nil, errors.New("credential repository: firestore provider is required")
	}
	decoder := func(_ context.Context, snap *firestore.DocumentSnapshot) (domain.AdminCredential, error) {
		f := fields(snap.Data())
		return domain.AdminCredential{Username: f.str("username"), Password: f.str("password")}, nil
	}
	return &CredentialRepository{
		base: pfirestore.NewBaseRepository[domain.AdminCredential](provider, usersCollection, nil, decoder),
	}, nil
}

// AdminCredential loads users/1.
func (r *CredentialRepository) AdminCredential(ctx context.Context) (domain.AdminCredential, error) {
	doc, err := r.base.Get(ctx, adminCredentialID)
	if err != nil {
		return domain.AdminCredential{}, err
	}
	return doc.Data, nil
}
