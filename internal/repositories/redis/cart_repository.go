// Package redis stores shopper carts in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ramitaha13/KamelStore/internal/repositories"
)

const (
	defaultKeyPrefix  = "kamel:cart:"
	defaultQuotaBytes = 5 << 20
)

// Option customises the Redis cart repository.
type Option func(*CartRepository)

// WithKeyPrefix overrides the prefix applied to every stored key.
func WithKeyPrefix(prefix string) Option {
	return func(r *CartRepository) {
		if p := strings.TrimSpace(prefix); p != "" {
			r.prefix = p
		}
	}
}

// WithQuota caps the size of a single stored value.
func WithQuota(bytes int) Option {
	return func(r *CartRepository) {
		if bytes > 0 {
			r.quota = bytes
		}
	}
}

// WithTTL expires values after the duration. Every write refreshes the expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *CartRepository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// CartRepository persists cart payloads as Redis strings under prefix+namespace+":"+key.
type CartRepository struct {
	client goredis.UniversalClient
	prefix string
	quota  int
	ttl    time.Duration
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewClient dials Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}
	return client, nil
}

// NewCartRepository wraps a connected client.
func NewCartRepository(client goredis.UniversalClient, opts ...Option) (*CartRepository, error) {
	if client == nil {
		return nil, errors.New("redis cart repository: client is required")
	}
	repo := &CartRepository{
		client: client,
		prefix: defaultKeyPrefix,
		quota:  defaultQuotaBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// Load returns the stored payload or nil when the key is absent.
func (r *CartRepository) Load(ctx context.Context, namespace, key string) ([]byte, error) {
	id, err := r.key("cart.load", namespace, key)
	if err != nil {
		return nil, err
	}
	payload, err := r.client.Get(ctx, id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("cart.load", key, err)
	}
	return payload, nil
}

// Save writes payload, rejecting values above the quota.
func (r *CartRepository) Save(ctx context.Context, namespace, key string, payload []byte) error {
	id, err := r.key("cart.save", namespace, key)
	if err != nil {
		return err
	}
	if len(payload) > r.quota {
		return repositories.NewCartQuotaError("cart.save", key, len(payload), r.quota)
	}
	if err := r.client.Set(ctx, id, payload, r.ttl).Err(); err != nil {
		return wrap("cart.save", key, err)
	}
	return nil
}

// Remove deletes the keys in a single round trip.
func (r *CartRepository) Remove(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		id, err := r.key("cart.remove", namespace, key)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := r.client.Del(ctx, ids...).Err(); err != nil {
		return wrap("cart.remove", strings.Join(keys, ","), err)
	}
	return nil
}

// Ping verifies connectivity for readiness probes.
func (r *CartRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *CartRepository) key(op, namespace, key string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	key = strings.TrimSpace(key)
	if namespace == "" || key == "" {
		return "", repositories.NewCartStorageError(op, key, repositories.CartStorageInvalid, nil)
	}
	return r.prefix + namespace + ":" + key, nil
}

func wrap(op, key string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return repositories.NewCartStorageError(op, key, repositories.CartStorageUnavailable, err)
}
