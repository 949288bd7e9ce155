package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/background"
	"github.com/BradenHooton/shopflow/internal/commerce"
	"github.com/BradenHooton/shopflow/internal/config"
	"github.com/BradenHooton/shopflow/internal/database"
	"github.com/BradenHooton/shopflow/internal/handlers"
	middlewareCustom "github.com/BradenHooton/shopflow/internal/middleware"
	"github.com/BradenHooton/shopflow/internal/repositories"
	"github.com/BradenHooton/shopflow/internal/routes"
	"github.com/BradenHooton/shopflow/internal/services"
	pkglogger "github.com/BradenHooton/shopflow/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level.Set(parseLevel(cfg.Server.LogLevel))

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("verification_store", cfg.Auth.VerificationStore),
		slog.String("email_provider", cfg.Email.Provider))

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// Optional database
	var (
		db             *database.DB
		healthDB       handlers.HealthChecker
		contactStore   services.ContactStore
		checkoutStore  services.CheckoutSessionStore
		cleanupManager *background.CleanupManager
	)
	if cfg.Database.Enabled() {
		db, err = database.NewConnection(&cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer db.Close()

		migrateCtx, cancel := context.WithTimeout(appCtx, 30*time.Second)
		err = database.Migrate(migrateCtx, &cfg.Database, logger)
		cancel()
		if err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}

		healthDB = db
		contactStore = repositories.NewContactRepository(db)
		checkoutStore = repositories.NewCheckoutSessionRepository(db)
	} else {
		logger.Info("no database configured, contact and checkout records are not persisted")
	}

	// Verification code store
	verificationStore := services.NoVerificationStore()
	switch cfg.Auth.VerificationStore {
	case config.StorePostgres:
		repo := repositories.NewVerificationRepository(db)
		verificationStore = services.NewOptionalVerificationStore(repo)
		cleanupManager = background.NewCleanupManager(repo, logger, cfg.Auth.CleanupInterval)
	case config.StoreDynamoDB:
		client, err := repositories.NewDynamoClient(appCtx, &cfg.AWS)
		if err != nil {
			logger.Error("failed to create dynamodb client", slog.Any("error", err))
			os.Exit(1)
		}
		if err := repositories.EnsureVerificationTable(appCtx, client, cfg.AWS.VerificationsTableName, logger); err != nil {
			logger.Error("failed to ensure verification table", slog.Any("error", err))
			os.Exit(1)
		}
		verificationStore = services.NewOptionalVerificationStore(
			repositories.NewDynamoVerificationRepository(client, cfg.AWS.VerificationsTableName))
	default:
		logger.Info("no verification store configured, codes are kept in the session only")
	}

	// Session storage
	var sessionStore auth.SessionStore
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(appCtx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		sessionStore = auth.NewRedisSessionStore(redisClient)
	} else {
		sessionStore = auth.NewMemorySessionStore(appCtx, time.Minute)
	}

	sessionTokens := auth.NewSessionTokenManager(cfg.Session.Secret, cfg.Session.MaxAge)
	sessionManager := auth.NewSessionManager(sessionStore, cfg.Session.MaxAge)
	cookies := auth.CookieConfig{
		Name:     cfg.Session.CookieName,
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		SameSite: cfg.Session.CookieSameSite,
	}

	// Outbound integrations
	sender, err := services.NewNotificationSender(appCtx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize notification sender", slog.Any("error", err))
		os.Exit(1)
	}
	commerceClient := commerce.NewClient(&cfg.Commerce, logger)

	// Timing delay for failed verifications
	timingDelay := auth.NewTimingDelay(auth.TimingConfig{
		BaseDelayMs:   cfg.Auth.TimingDelayBaseMs,
		RandomDelayMs: cfg.Auth.TimingDelayRandomMs,
	})

	// Initialize services
	authService := services.NewAuthService(commerceClient, verificationStore, sender, sessionManager,
		services.AuthServiceConfig{CodeTTL: cfg.Auth.CodeTTL, Timing: timingDelay}, logger)
	catalogService := services.NewCatalogService(commerceClient)
	checkoutService := services.NewCheckoutService(commerceClient, checkoutStore, cfg.PayPal, cfg.Email.Brand, logger)
	contactService := services.NewContactService(contactStore, logger)
	invoiceService := services.NewInvoiceService(commerceClient)

	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize handlers
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, auditLogger, sessionTokens, cookies, logger),
		Products: handlers.NewProductHandler(catalogService, logger),
		Checkout: handlers.NewCheckoutHandler(checkoutService, logger),
		Contact:  handlers.NewContactHandler(contactService, logger),
		Invoices: handlers.NewInvoiceHandler(invoiceService, logger),
		Health:   handlers.NewHealthHandler(healthDB),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, h, routes.SessionDeps{
		Tokens:   sessionTokens,
		Cookies:  cookies,
		Sessions: sessionManager,
	}, cfg.Auth.RateLimitPerMinute, logger)

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	if cleanupManager != nil {
		go cleanupManager.Start(appCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	appCancel()
	logger.Info("server stopped gracefully")
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
