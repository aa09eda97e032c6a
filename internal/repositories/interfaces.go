package repositories

import (
	"context"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProductRepository reads and writes catalog products. Each category lives in its own collection.
type ProductRepository interface {
	List(ctx context.Context, category domain.Category) ([]domain.Product, error)
	// Get performs a fresh point read. Returns a RepositoryError with IsNotFound when absent.
	Get(ctx context.Context, category domain.Category, productID string) (domain.Product, error)
	// Create stores a new product with a server-assigned creation timestamp and returns it with its id.
	Create(ctx context.Context, category domain.Category, product domain.Product) (domain.Product, error)
	// Update applies a field-mask update of the fields set in patch.
	Update(ctx context.Context, category domain.Category, productID string, patch domain.ProductPatch) error
	Delete(ctx context.Context, category domain.Category, productID string) error
}

// OrderRepository persists checkout orders.
type OrderRepository interface {
	// Insert stores order with a server timestamp as its order date and returns the stored copy.
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]domain.Order, error)
	// Watch invokes fn with the full ordered list on every change until ctx ends or fn returns an error.
	Watch(ctx context.Context, fn func([]domain.Order) error) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
	Delete(ctx context.Context, orderID string) error
}

// ContactListFilter narrows contact message listings. An empty status returns every message.
type ContactListFilter struct {
	Status domain.ContactStatus
}

// ContactRepository persists contact form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, message domain.ContactMessage) (domain.ContactMessage, error)
	// List returns messages newest first.
	List(ctx context.Context, filter ContactListFilter) ([]domain.ContactMessage, error)
	UpdateStatus(ctx context.Context, messageID string, status domain.ContactStatus) error
	Delete(ctx context.Context, messageID string) error
}

// CredentialRepository reads the back-office login record.
type CredentialRepository interface {
	AdminCredential(ctx context.Context) (domain.AdminCredential, error)
}

// CartRepository emulates browser key/value storage for carts. Namespace isolates shoppers, typically by
// session id. Implementations enforce a per-value quota and reject larger payloads with an error matching
// ErrCartQuotaExceeded.
type CartRepository interface {
	// Load returns the stored payload, or nil without error when the key is absent.
	Load(ctx context.Context, namespace, key string) ([]byte, error)
	Save(ctx context.Context, namespace, key string, payload []byte) error
	Remove(ctx context.Context, namespace string, keys ...string) error
}

// HealthRepository surfaces dependency health information for readiness probes.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}
