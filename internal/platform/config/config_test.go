package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	env := map[string]string{
		"KAMEL_FIREBASE_PROJECT_ID": "kamel-dev",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "kamel-dev" {
		t.Errorf("expected firestore project to default to firebase project, got %s", cfg.Firestore.ProjectID)
	}
	if cfg.Secrets.ProjectID != "kamel-dev" {
		t.Errorf("expected secrets project to default to firebase project, got %s", cfg.Secrets.ProjectID)
	}
	if cfg.Cart.Backend != CartBackendMemory {
		t.Errorf("expected memory cart backend, got %s", cfg.Cart.Backend)
	}
	if cfg.Cart.StorageScope != CartScopeLocal {
		t.Errorf("expected local storage scope, got %s", cfg.Cart.StorageScope)
	}
	if cfg.Cart.CheckoutLimit != 0 {
		t.Errorf("expected uncapped checkout, got %d", cfg.Cart.CheckoutLimit)
	}
	if cfg.Cart.QuotaBytes != defaultCartQuotaBytes {
		t.Errorf("unexpected quota %d", cfg.Cart.QuotaBytes)
	}
	if !cfg.Session.Secure {
		t.Errorf("expected secure cookies by default")
	}
	if cfg.Locale.Default != "he" {
		t.Errorf("expected hebrew default locale, got %s", cfg.Locale.Default)
	}
	if len(cfg.Mail.AdminTo) != 0 {
		t.Errorf("expected no admin recipients, got %v", cfg.Mail.AdminTo)
	}
}

func TestLoadWithOverridesAndSecrets(t *testing.T) {
	env := map[string]string{
		"KAMEL_SERVER_PORT":           "9090",
		"KAMEL_SERVER_IDLE_TIMEOUT":   "2m",
		"KAMEL_FIREBASE_PROJECT_ID":   "kamel-prod",
		"KAMEL_FIRESTORE_PROJECT_ID":  "kamel-fire",
		"KAMEL_CART_BACKEND":          "Redis",
		"KAMEL_CART_STORAGE_SCOPE":    "session",
		"KAMEL_CART_SESSION_TTL":      "45m",
		"KAMEL_CART_QUOTA_BYTES":      "4096",
		"KAMEL_CART_CHECKOUT_LIMIT":   "2",
		"KAMEL_REDIS_ADDR":            "127.0.0.1:6379",
		"KAMEL_REDIS_PASSWORD":        "secret://redis/password",
		"KAMEL_REDIS_DB":              "3",
		"KAMEL_SESSION_HASH_KEY":      "secret://session/hash",
		"KAMEL_SESSION_SECURE":        "false",
		"KAMEL_STORAGE_IMAGES_BUCKET": "kamel-images",
		"KAMEL_EVENTS_ORDER_TOPIC":    "orders",
		"KAMEL_MAIL_SENDGRID_API_KEY": "sm://sendgrid/key",
		"KAMEL_MAIL_ADMIN_TO":         "owner@example.com, staff@example.com",
		"KAMEL_LOCALE_DEFAULT":        "AR",
	}

	secrets := map[string]string{
		"secret://redis/password": "redis-pass",
		"secret://session/hash":   "hash-key",
		"secret://sendgrid/key":   "sg-key",
	}
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if v, ok := secrets[ref]; ok {
			return v, nil
		}
		return "", errors.New("not found")
	})

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout != 2*time.Minute {
		t.Errorf("unexpected idle timeout: %s", cfg.Server.IdleTimeout)
	}
	if cfg.Firestore.ProjectID != "kamel-fire" {
		t.Errorf("unexpected firestore project %s", cfg.Firestore.ProjectID)
	}
	if cfg.Cart.Backend != CartBackendRedis || cfg.Cart.StorageScope != CartScopeSession {
		t.Errorf("unexpected cart config %+v", cfg.Cart)
	}
	if cfg.Cart.SessionTTL != 45*time.Minute || cfg.Cart.QuotaBytes != 4096 || cfg.Cart.CheckoutLimit != 2 {
		t.Errorf("unexpected cart limits %+v", cfg.Cart)
	}
	if cfg.Redis.Password != "redis-pass" || cfg.Redis.DB != 3 {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.Session.HashKey != "hash-key" {
		t.Errorf("expected resolved hash key, got %s", cfg.Session.HashKey)
	}
	if cfg.Session.Secure {
		t.Errorf("expected insecure cookies override")
	}
	if cfg.Mail.SendGridAPIKey != "sg-key" {
		t.Errorf("expected legacy sm:// reference resolved, got %s", cfg.Mail.SendGridAPIKey)
	}
	if len(cfg.Mail.AdminTo) != 2 || cfg.Mail.AdminTo[1] != "staff@example.com" {
		t.Errorf("unexpected admin recipients %v", cfg.Mail.AdminTo)
	}
	if cfg.Locale.Default != "ar" {
		t.Errorf("expected arabic locale, got %s", cfg.Locale.Default)
	}
}

func TestLoadDotEnvFallback(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "# local overrides\nKAMEL_SERVER_PORT=7070\nexport KAMEL_FIREBASE_PROJECT_ID=\"kamel-dot\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write dotenv file: %v", err)
	}

	cfg, err := Load(context.Background(), WithEnvFile(envPath), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from dotenv 7070, got %s", cfg.Server.Port)
	}
	if cfg.Firebase.ProjectID != "kamel-dot" {
		t.Errorf("expected firebase project from dotenv, got %s", cfg.Firebase.ProjectID)
	}
}

func TestLoadMissingDotEnvIsIgnored(t *testing.T) {
	env := map[string]string{"KAMEL_FIREBASE_PROJECT_ID": "kamel-dev"}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(filepath.Join(t.TempDir(), "absent.env")))
	if err != nil {
		t.Fatalf("expected missing dotenv to be ignored, got %v", err)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if fields := validation.Fields(); len(fields) != 1 || fields[0] != "Firestore.ProjectID" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestLoadRejectsInvalidCartSettings(t *testing.T) {
	env := map[string]string{
		"KAMEL_FIREBASE_PROJECT_ID": "kamel-dev",
		"KAMEL_CART_BACKEND":        "redis",
		"KAMEL_CART_STORAGE_SCOPE":  "cookie",
		"KAMEL_CART_CHECKOUT_LIMIT": "-1",
		"KAMEL_LOCALE_DEFAULT":      "fr",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := map[string]bool{"Redis.Addr": true, "Cart.StorageScope": true, "Cart.CheckoutLimit": true, "Locale.Default": true}
	for _, field := range validation.Fields() {
		delete(want, field)
	}
	if len(want) != 0 {
		t.Fatalf("expected fields %v to be reported, got %v", want, validation.Fields())
	}
}

func TestLoadSecretResolverError(t *testing.T) {
	env := map[string]string{
		"KAMEL_FIREBASE_PROJECT_ID": "kamel-dev",
		"KAMEL_SESSION_BLOCK_KEY":   "secret://missing",
	}

	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected secret resolution error, got nil")
	}
	var secretErr *SecretError
	if !errors.As(err, &secretErr) {
		t.Fatalf("expected SecretError, got %T", err)
	}
	if secretErr.Ref != "secret://missing" {
		t.Errorf("unexpected secret ref %s", secretErr.Ref)
	}
	if !errors.Is(err, errSecretResolverNotConfigured) {
		t.Errorf("expected resolver not configured cause, got %v", err)
	}
}

func TestEnvironmentValuesMergesSources(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "KAMEL_FIREBASE_PROJECT_ID=dot-project\nKAMEL_SECRETS_FALLBACK_FILE=.dot.local\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing env file: %v", err)
	}

	t.Setenv("KAMEL_FIREBASE_PROJECT_ID", "os-project")
	t.Setenv("KAMEL_SECRETS_ENVIRONMENT", "prod")

	overrides := map[string]string{
		"KAMEL_FIREBASE_PROJECT_ID": "override-project",
	}

	values, err := EnvironmentValues(WithEnvFile(envPath), WithEnvMap(overrides))
	if err != nil {
		t.Fatalf("EnvironmentValues returned error: %v", err)
	}

	if got := values["KAMEL_FIREBASE_PROJECT_ID"]; got != "override-project" {
		t.Fatalf("expected override project, got %s", got)
	}
	if got := values["KAMEL_SECRETS_FALLBACK_FILE"]; got != ".dot.local" {
		t.Fatalf("expected dotenv fallback file, got %s", got)
	}
	if got := values["KAMEL_SECRETS_ENVIRONMENT"]; got != "prod" {
		t.Fatalf("expected system env value, got %s", got)
	}
}

func TestLoadMissingRequiredSecrets(t *testing.T) {
	env := map[string]string{
		"KAMEL_FIREBASE_PROJECT_ID": "kamel-dev",
	}

	_, err := Load(context.Background(),
		WithEnvMap(env),
		WithoutSystemEnv(),
		WithEnvFile(""),
		WithRequiredSecrets("Session.HashKey", "Session.HashKey"),
	)
	var missing *MissingSecretsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSecretsError, got %v", err)
	}
	if got := missing.Names(); len(got) != 1 || got[0] != "Session.HashKey" {
		t.Fatalf("unexpected missing names %v", got)
	}
	if got := missing.RedactedNames(); len(got) != 1 || got[0] != redactSecretName("Session.HashKey") {
		t.Fatalf("unexpected redacted names %v", got)
	}
}
