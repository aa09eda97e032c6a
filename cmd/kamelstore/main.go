package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ramitaha13/KamelStore/internal/handlers"
	"github.com/ramitaha13/KamelStore/internal/platform/config"
	"github.com/ramitaha13/KamelStore/internal/platform/events"
	pfirestore "github.com/ramitaha13/KamelStore/internal/platform/firestore"
	"github.com/ramitaha13/KamelStore/internal/platform/i18n"
	"github.com/ramitaha13/KamelStore/internal/platform/idempotency"
	"github.com/ramitaha13/KamelStore/internal/platform/mail"
	"github.com/ramitaha13/KamelStore/internal/platform/observability"
	"github.com/ramitaha13/KamelStore/internal/platform/secrets"
	"github.com/ramitaha13/KamelStore/internal/platform/session"
	platformstorage "github.com/ramitaha13/KamelStore/internal/platform/storage"
	"github.com/ramitaha13/KamelStore/internal/repositories"
	firestoreRepo "github.com/ramitaha13/KamelStore/internal/repositories/firestore"
	"github.com/ramitaha13/KamelStore/internal/repositories/memory"
	redisRepo "github.com/ramitaha13/KamelStore/internal/repositories/redis"
	"github.com/ramitaha13/KamelStore/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("kamelstore")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets("Session.HashKey"),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(envValues, cfg, startedAt)

	localizer, err := i18n.NewLocalizer(cfg.Locale.Default)
	if err != nil {
		logger.Fatal("failed to initialise localizer", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore, pfirestore.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	contactRepo, err := firestoreRepo.NewContactRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise contact repository", zap.Error(err))
	}
	credentialRepo, err := firestoreRepo.NewCredentialRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise credential repository", zap.Error(err))
	}

	cartRepo, redisClient, err := newCartRepository(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise cart repository", zap.Error(err), zap.String("backend", cfg.Cart.Backend))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
	}

	systemService, err := newSystemService(firestoreProvider, redisClient, fetcher, buildInfo)
	if err != nil {
		logger.Warn("health: system service init failed", zap.Error(err))
	}

	var imageWriter platformstorage.ObjectWriter
	if bucket := strings.TrimSpace(cfg.Storage.ImagesBucket); bucket != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		gcsWriter, err := platformstorage.NewGCSWriter(storageClient)
		if err != nil {
			logger.Fatal("failed to initialise storage writer", zap.Error(err))
		}
		imageWriter = gcsWriter
	}
	imageStore := platformstorage.NewImageStore(imageWriter, cfg.Storage.ImagesBucket, cfg.Storage.MaxImageBytes)

	var orderEvents services.OrderEventPublisher
	if topicName := strings.TrimSpace(cfg.Events.OrderTopic); topicName != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		publisher, err := events.NewPubSubOrderPublisher(pubsubClient.Topic(topicName))
		if err != nil {
			logger.Fatal("failed to initialise order publisher", zap.Error(err))
		}
		defer func() {
			publisher.Close()
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		orderEvents = publisher
	}

	var notifier services.OrderNotifier
	if strings.TrimSpace(cfg.Mail.SendGridAPIKey) != "" {
		orderNotifier, err := mail.NewOrderNotifier(mail.NotifierConfig{
			APIKey:   cfg.Mail.SendGridAPIKey,
			From:     cfg.Mail.From,
			To:       cfg.Mail.AdminTo,
			Language: localizer.Default(),
		}, localizer)
		if err != nil {
			logger.Fatal("failed to initialise order notifier", zap.Error(err))
		}
		notifier = orderNotifier
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{Products: productRepo})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository:    cartRepo,
		Catalog:       catalogService,
		CheckoutLimit: cfg.Cart.CheckoutLimit,
		Clock:         time.Now,
		Logger:        observability.NewEventLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:     cartService,
		Orders:   orderRepo,
		Events:   orderEvents,
		Notifier: notifier,
		Clock:    time.Now,
		Logger:   observability.NewEventLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	contactService, err := services.NewContactService(services.ContactServiceDeps{
		Messages: contactRepo,
		Logger:   observability.NewEventLogger(logger.Named("contact")),
	})
	if err != nil {
		logger.Fatal("failed to initialise contact service", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders: orderRepo,
		Logger: observability.NewEventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	productService, err := services.NewAdminProductService(services.AdminProductServiceDeps{
		Products: productRepo,
		Images:   imageStore,
		Logger:   observability.NewEventLogger(logger.Named("products")),
	})
	if err != nil {
		logger.Fatal("failed to initialise product service", zap.Error(err))
	}

	authService, err := services.NewAdminAuthService(services.AdminAuthServiceDeps{
		Credentials: credentialRepo,
		Logger:      observability.NewEventLogger(logger.Named("admin_auth")),
	})
	if err != nil {
		logger.Fatal("failed to initialise admin auth service", zap.Error(err))
	}

	sessionManager, err := session.NewManager(session.Config{
		HashKey:      sessionKey(cfg.Session.HashKey),
		BlockKey:     sessionKey(cfg.Session.BlockKey),
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	var submissionStore idempotency.Store
	if redisClient != nil {
		redisStore, err := idempotency.NewRedisStore(redisClient, "")
		if err != nil {
			logger.Fatal("failed to initialise idempotency store", zap.Error(err))
		}
		submissionStore = redisStore
	} else {
		memoryStore := idempotency.NewMemoryStore()
		submissionStore = memoryStore
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-ticker.C:
					removed, err := memoryStore.CleanupExpired(cleanupCtx, time.Now().UTC(), 0)
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}
	checkoutGuard := idempotency.Middleware(submissionStore)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(systemService),
	)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService, localizer)
	cartHandlers := handlers.NewCartHandlers(cartService, localizer)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutService, localizer)
	contactHandlers := handlers.NewContactHandlers(contactService, localizer)
	adminHandlers := handlers.NewAdminHandlers(handlers.AdminHandlersDeps{
		Auth:           authService,
		Products:       productService,
		Orders:         orderService,
		Contacts:       contactService,
		Localizer:      localizer,
		MaxUploadBytes: int64(cfg.Storage.MaxImageBytes),
	})

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithAPIMiddlewares(session.Middleware(sessionManager), handlers.LocaleMiddleware(localizer)),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(func(r chi.Router) {
			r.Use(checkoutGuard)
			checkoutHandlers.Routes(r)
		}),
		handlers.WithContactRoutes(contactHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("kamel store api listening",
			zap.String("cartBackend", cfg.Cart.Backend),
			zap.Bool("inlineImages", imageStore.Inline()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["KAMEL_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["KAMEL_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: cfg.Secrets.Environment,
		StartedAt:   started,
	}
}

// newCartRepository returns the configured cart backend. The redis client is nil for the memory backend.
func newCartRepository(ctx context.Context, cfg config.Config) (repositories.CartRepository, *goredis.Client, error) {
	var ttl time.Duration
	if cfg.Cart.StorageScope == config.CartScopeSession {
		ttl = cfg.Cart.SessionTTL
	}

	switch cfg.Cart.Backend {
	case config.CartBackendRedis:
		client, err := redisRepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		repo, err := redisRepo.NewCartRepository(client,
			redisRepo.WithQuota(cfg.Cart.QuotaBytes),
			redisRepo.WithTTL(ttl),
		)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return repo, client, nil
	default:
		return memory.NewCartRepository(
			memory.WithQuota(cfg.Cart.QuotaBytes),
			memory.WithTTL(ttl),
		), nil, nil
	}
}

func newSystemService(provider *pfirestore.Provider, redisClient *goredis.Client, fetcher *secrets.Fetcher, build services.BuildInfo) (services.SystemService, error) {
	checks := make([]repositories.DependencyCheck, 0, 3)
	if provider != nil {
		checks = append(checks, repositories.DependencyCheck{
			Name:    "firestore",
			Timeout: 1500 * time.Millisecond,
			Check:   provider.Ping,
		})
	}
	if redisClient != nil {
		c := redisClient
		checks = append(checks, repositories.DependencyCheck{
			Name:     "redis",
			Timeout:  time.Second,
			Optional: true,
			Check: func(ctx context.Context) error {
				return c.Ping(ctx).Err()
			},
		})
	}
	if fetcher != nil {
		const secretHealthReference = "secret://system/healthz?version=latest"
		checks = append(checks, repositories.DependencyCheck{
			Name:     "secretManager",
			Timeout:  time.Second,
			Optional: true,
			Check: func(ctx context.Context) error {
				_, err := fetcher.Resolve(ctx, secretHealthReference)
				if err == nil {
					return nil
				}
				if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
					return nil
				}
				return err
			},
		})
	}
	if len(checks) == 0 {
		return nil, errors.New("health: no dependency checks configured")
	}
	repo, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		return nil, err
	}
	return services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: repo,
		Clock:            time.Now,
		Build:            build,
		CacheTTL:         2 * time.Second,
	})
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}

	envLabel := strings.ToLower(lookup("KAMEL_SECRETS_ENVIRONMENT"))
	if envLabel == "" {
		envLabel = "local"
	}
	project := lookup("KAMEL_SECRETS_PROJECT_ID")
	if project == "" {
		project = lookup("KAMEL_FIREBASE_PROJECT_ID")
	}

	opts := []secrets.Option{
		secrets.WithEnvironment(envLabel),
		secrets.WithLogger(logger.Named("secrets")),
	}
	if project != "" {
		opts = append(opts, secrets.WithProject(project))
	}
	if path := lookup("KAMEL_SECRETS_FALLBACK_FILE"); path != "" {
		opts = append(opts, secrets.WithFallbackFile(path))
	}
	if credentialsFile := lookup("KAMEL_FIREBASE_CREDENTIALS_FILE"); credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}
	return secrets.NewFetcher(ctx, opts...)
}

// sessionKey accepts hex-encoded keys and falls back to the raw bytes.
func sessionKey(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if decoded, err := hex.DecodeString(raw); err == nil {
		return decoded
	}
	return []byte(raw)
}
