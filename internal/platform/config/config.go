package config

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultCartBackend     = CartBackendMemory
	defaultCartScope       = CartScopeLocal
	defaultCartSessionTTL  = 12 * time.Hour
	defaultCartQuotaBytes  = 5 * 1024 * 1024
	defaultSessionIdle     = 30 * time.Minute
	defaultSessionLifetime = 30 * 24 * time.Hour
	defaultMaxImageBytes   = 2 * 1024 * 1024
	defaultLocale          = "he"
	defaultEnvironment     = "local"
	defaultMailFrom        = "no-reply@kamelstore.example"
)

// Cart storage backends.
const (
	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"
)

// Cart storage scopes. Local carts persist; session carts expire after the session TTL.
const (
	CartScopeLocal   = "local"
	CartScopeSession = "session"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firebase  FirebaseConfig
	Firestore FirestoreConfig
	Cart      CartConfig
	Redis     RedisConfig
	Session   SessionConfig
	Storage   StorageConfig
	Events    EventsConfig
	Mail      MailConfig
	Locale    LocaleConfig
	Secrets   SecretsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// CartConfig controls where carts live and how checkout treats them.
type CartConfig struct {
	Backend      string
	StorageScope string
	SessionTTL   time.Duration
	// QuotaBytes caps a single stored value, mirroring browser storage limits.
	QuotaBytes int
	// CheckoutLimit caps how many cart lines reach checkout. Zero means the whole cart.
	CheckoutLimit int
}

// RedisConfig points at the Redis instance backing carts when Cart.Backend is redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SessionConfig configures the signed session cookies.
type SessionConfig struct {
	HashKey     string
	BlockKey    string
	Secure      bool
	IdleTimeout time.Duration
	Lifetime    time.Duration
}

// StorageConfig lists bucket settings for uploaded product images.
type StorageConfig struct {
	ImagesBucket  string
	MaxImageBytes int
}

// EventsConfig names the Pub/Sub topics orders are announced on.
type EventsConfig struct {
	OrderTopic string
}

// MailConfig holds SendGrid settings for admin notifications.
type MailConfig struct {
	SendGridAPIKey string
	From           string
	AdminTo        []string
}

// LocaleConfig selects the fallback language.
type LocaleConfig struct {
	Default string
}

// SecretsConfig locates Secret Manager secrets.
type SecretsConfig struct {
	Environment string
	ProjectID   string
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

// Error implements the error interface.
func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

// Unwrap exposes the underlying error.
func (e *SecretError) Unwrap() error { return e.Err }

// MissingSecretsError indicates that one or more required secrets failed to resolve.
type MissingSecretsError struct {
	names []string
}

// Error implements the error interface.
func (e *MissingSecretsError) Error() string {
	if e == nil || len(e.names) == 0 {
		return "missing required secrets"
	}
	return fmt.Sprintf("missing required secrets [%s]", strings.Join(e.RedactedNames(), ", "))
}

// RedactedNames returns hashed identifiers safe for logs.
func (e *MissingSecretsError) RedactedNames() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.names))
	for _, name := range e.names {
		out = append(out, redactSecretName(name))
	}
	sort.Strings(out)
	return out
}

// Names returns the underlying secret identifiers.
func (e *MissingSecretsError) Names() []string {
	if e == nil {
		return nil
	}
	out := append([]string(nil), e.names...)
	sort.Strings(out)
	return out
}

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile         string
	envMap          map[string]string
	useSystemEnv    bool
	secret          SecretResolver
	requiredSecrets []string
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

// WithRequiredSecrets marks config fields (e.g. "Session.HashKey") that must resolve to a non-empty value.
func WithRequiredSecrets(names ...string) Option {
	return func(o *loaderOptions) {
		o.requiredSecrets = append(o.requiredSecrets, names...)
	}
}

// EnvironmentValues returns the merged environment (dotenv < OS env < explicit map) so callers can
// build dependencies, such as the secret fetcher, before invoking Load.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := newLoaderOptions(opts)

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(dotEnvValues))
	for key, value := range dotEnvValues {
		values[key] = value
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	for key, value := range options.envMap {
		values[key] = value
	}
	return values, nil
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables, and optional Secret Manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if value, ok := options.envMap[key]; ok {
			return value, true
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if value, ok := dotEnvValues[key]; ok {
			return value, true
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "KAMEL_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "KAMEL_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "KAMEL_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "KAMEL_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "KAMEL_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "KAMEL_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "KAMEL_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "KAMEL_FIRESTORE_EMULATOR_HOST", ""),
		},
		Cart: CartConfig{
			Backend:       strings.ToLower(stringWithDefault(lookup, "KAMEL_CART_BACKEND", defaultCartBackend)),
			StorageScope:  strings.ToLower(stringWithDefault(lookup, "KAMEL_CART_STORAGE_SCOPE", defaultCartScope)),
			SessionTTL:    durationWithDefault(lookup, "KAMEL_CART_SESSION_TTL", defaultCartSessionTTL),
			QuotaBytes:    intWithDefault(lookup, "KAMEL_CART_QUOTA_BYTES", defaultCartQuotaBytes),
			CheckoutLimit: intWithDefault(lookup, "KAMEL_CART_CHECKOUT_LIMIT", 0),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "KAMEL_REDIS_ADDR", ""),
			Password: stringWithDefault(lookup, "KAMEL_REDIS_PASSWORD", ""),
			DB:       intWithDefault(lookup, "KAMEL_REDIS_DB", 0),
		},
		Session: SessionConfig{
			HashKey:     stringWithDefault(lookup, "KAMEL_SESSION_HASH_KEY", ""),
			BlockKey:    stringWithDefault(lookup, "KAMEL_SESSION_BLOCK_KEY", ""),
			Secure:      boolWithDefault(lookup, "KAMEL_SESSION_SECURE", true),
			IdleTimeout: durationWithDefault(lookup, "KAMEL_SESSION_IDLE_TIMEOUT", defaultSessionIdle),
			Lifetime:    durationWithDefault(lookup, "KAMEL_SESSION_LIFETIME", defaultSessionLifetime),
		},
		Storage: StorageConfig{
			ImagesBucket:  stringWithDefault(lookup, "KAMEL_STORAGE_IMAGES_BUCKET", ""),
			MaxImageBytes: intWithDefault(lookup, "KAMEL_STORAGE_MAX_IMAGE_BYTES", defaultMaxImageBytes),
		},
		Events: EventsConfig{
			OrderTopic: stringWithDefault(lookup, "KAMEL_EVENTS_ORDER_TOPIC", ""),
		},
		Mail: MailConfig{
			SendGridAPIKey: stringWithDefault(lookup, "KAMEL_MAIL_SENDGRID_API_KEY", ""),
			From:           stringWithDefault(lookup, "KAMEL_MAIL_FROM", defaultMailFrom),
			AdminTo:        csvWithDefault(lookup, "KAMEL_MAIL_ADMIN_TO"),
		},
		Locale: LocaleConfig{
			Default: strings.ToLower(stringWithDefault(lookup, "KAMEL_LOCALE_DEFAULT", defaultLocale)),
		},
		Secrets: SecretsConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "KAMEL_SECRETS_ENVIRONMENT", defaultEnvironment)),
			ProjectID:   stringWithDefault(lookup, "KAMEL_SECRETS_PROJECT_ID", ""),
		},
	}

	// Firestore project defaults to Firebase project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.Secrets.ProjectID == "" {
		cfg.Secrets.ProjectID = cfg.Firebase.ProjectID
	}

	resolved := make(map[string]string)
	secretFields := []struct {
		name  string
		field *string
	}{
		{"Session.HashKey", &cfg.Session.HashKey},
		{"Session.BlockKey", &cfg.Session.BlockKey},
		{"Redis.Password", &cfg.Redis.Password},
		{"Mail.SendGridAPIKey", &cfg.Mail.SendGridAPIKey},
	}
	for _, target := range secretFields {
		value, err := resolveSecret(ctx, *target.field, options.secret)
		if err != nil {
			return Config{}, err
		}
		*target.field = value
		resolved[target.name] = strings.TrimSpace(value)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	if missing := findMissingSecrets(options.requiredSecrets, resolved); missing != nil {
		return Config{}, missing
	}
	return cfg, nil
}

func newLoaderOptions(opts []Option) loaderOptions {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if value == "" || !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if cfg.Firestore.ProjectID == "" {
		missing = append(missing, "Firestore.ProjectID")
	}
	switch cfg.Cart.Backend {
	case CartBackendMemory:
	case CartBackendRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			missing = append(missing, "Redis.Addr")
		}
	default:
		missing = append(missing, "Cart.Backend")
	}
	if cfg.Cart.StorageScope != CartScopeLocal && cfg.Cart.StorageScope != CartScopeSession {
		missing = append(missing, "Cart.StorageScope")
	}
	if cfg.Cart.StorageScope == CartScopeSession && cfg.Cart.SessionTTL <= 0 {
		missing = append(missing, "Cart.SessionTTL")
	}
	if cfg.Cart.QuotaBytes <= 0 {
		missing = append(missing, "Cart.QuotaBytes")
	}
	if cfg.Cart.CheckoutLimit < 0 {
		missing = append(missing, "Cart.CheckoutLimit")
	}
	if cfg.Session.IdleTimeout <= 0 {
		missing = append(missing, "Session.IdleTimeout")
	}
	if cfg.Session.Lifetime <= 0 {
		missing = append(missing, "Session.Lifetime")
	}
	if cfg.Storage.MaxImageBytes <= 0 {
		missing = append(missing, "Storage.MaxImageBytes")
	}
	if cfg.Mail.SendGridAPIKey != "" && len(cfg.Mail.AdminTo) == 0 {
		missing = append(missing, "Mail.AdminTo")
	}
	switch cfg.Locale.Default {
	case "he", "ar", "en":
	default:
		missing = append(missing, "Locale.Default")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func findMissingSecrets(required []string, resolved map[string]string) *MissingSecretsError {
	var missing []string
	seen := make(map[string]struct{}, len(required))
	for _, name := range required {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		if resolved[trimmed] == "" {
			missing = append(missing, trimmed)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &MissingSecretsError{names: missing}
}

func isSecretReference(value string) bool {
	trimmed := strings.TrimSpace(value)
	return strings.HasPrefix(trimmed, "secret://") || strings.HasPrefix(trimmed, "sm://")
}

func normalizeSecretReference(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "sm://") {
		return "secret://" + strings.TrimPrefix(trimmed, "sm://")
	}
	return trimmed
}

func redactSecretName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:8])
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
