package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ramitaha13/KamelStore/internal/repositories"
)

var (
	// ErrAdminInvalidCredentials indicates the username or password did not match.
	ErrAdminInvalidCredentials = errors.New("admin auth: invalid credentials")
	// ErrAdminUnavailable indicates the credential store cannot be reached.
	ErrAdminUnavailable = errors.New("admin auth: unavailable")
)

// AdminAuthServiceDeps wires the credential store.
type AdminAuthServiceDeps struct {
	Credentials repositories.CredentialRepository
	Logger      func(context.Context, string, map[string]any)
}

type adminAuthService struct {
	credentials repositories.CredentialRepository
	logger      func(context.Context, string, map[string]any)
}

var _ AdminAuthService = (*adminAuthService)(nil)

// NewAdminAuthService constructs the back-office login service.
func NewAdminAuthService(deps AdminAuthServiceDeps) (AdminAuthService, error) {
	if deps.Credentials == nil {
		return nil, errors.New("admin auth: credential repository is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &adminAuthService{credentials: deps.Credentials, logger: logger}, nil
}

// Authenticate compares against the stored record. Bcrypt hashes are verified as hashes; any other
// stored value is compared in constant time.
func (s *adminAuthService) Authenticate(ctx context.Context, username, password string) (AdminIdentity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return AdminIdentity{}, ErrAdminInvalidCredentials
	}

	stored, err := s.credentials.AdminCredential(ctx)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			s.logger(ctx, "admin.auth.no_credential", nil)
			return AdminIdentity{}, ErrAdminInvalidCredentials
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return AdminIdentity{}, err
		}
		return AdminIdentity{}, fmt.Errorf("%w: %v", ErrAdminUnavailable, err)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(strings.TrimSpace(stored.Username))) == 1
	passOK := passwordMatches(stored.Password, password)
	if !userOK || !passOK {
		s.logger(ctx, "admin.auth.rejected", map[string]any{"username": username})
		return AdminIdentity{}, ErrAdminInvalidCredentials
	}
	s.logger(ctx, "admin.auth.accepted", map[string]any{"username": username})
	return AdminIdentity{Username: username}, nil
}

func passwordMatches(stored, candidate string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
