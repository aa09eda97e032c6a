// Package memory holds in-process repository implementations.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ramitaha13/KamelStore/internal/repositories"
)

// DefaultQuotaBytes mirrors the per-origin limit browsers apply to web storage.
const DefaultQuotaBytes = 5 << 20

// CartOption customises the in-memory cart repository.
type CartOption func(*CartRepository)

// WithQuota caps the size of a single stored value. Non-positive values keep the default.
func WithQuota(bytes int) CartOption {
	return func(r *CartRepository) {
		if bytes > 0 {
			r.quota = bytes
		}
	}
}

// WithTTL expires values the given duration after their last write. Zero keeps values until removed.
func WithTTL(ttl time.Duration) CartOption {
	return func(r *CartRepository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) CartOption {
	return func(r *CartRepository) {
		if now != nil {
			r.now = now
		}
	}
}

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// CartRepository keeps cart payloads in a mutex-guarded map.
type CartRepository struct {
	mu      sync.Mutex
	entries map[string]entry
	quota   int
	ttl     time.Duration
	now     func() time.Time
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs an empty in-memory cart repository.
func NewCartRepository(opts ...CartOption) *CartRepository {
	repo := &CartRepository{
		entries: make(map[string]entry),
		quota:   DefaultQuotaBytes,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

// Load returns a copy of the stored payload or nil when absent or expired.
func (r *CartRepository) Load(_ context.Context, namespace, key string) ([]byte, error) {
	id, err := storageKey("cart.load", namespace, key)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt) {
		delete(r.entries, id)
		return nil, nil
	}
	return append([]byte(nil), e.payload...), nil
}

// Save stores payload, rejecting values above the quota.
func (r *CartRepository) Save(_ context.Context, namespace, key string, payload []byte) error {
	id, err := storageKey("cart.save", namespace, key)
	if err != nil {
		return err
	}
	if len(payload) > r.quota {
		return repositories.NewCartQuotaError("cart.save", key, len(payload), r.quota)
	}
	e := entry{payload: append([]byte(nil), payload...)}
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.entries[id] = e
	r.mu.Unlock()
	return nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (r *CartRepository) Remove(_ context.Context, namespace string, keys ...string) error {
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id, err := storageKey("cart.remove", namespace, key)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	r.mu.Lock()
	for _, id := range ids {
		delete(r.entries, id)
	}
	r.mu.Unlock()
	return nil
}

func storageKey(op, namespace, key string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	key = strings.TrimSpace(key)
	if namespace == "" || key == "" {
		return "", repositories.NewCartStorageError(op, key, repositories.CartStorageInvalid, nil)
	}
	return namespace + "\x00" + key, nil
}
