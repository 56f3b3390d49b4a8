package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"familytree/internal/config"
	"familytree/internal/handler"
	"familytree/internal/middleware"
	"familytree/internal/service"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logger, logFile, err := config.NewLogger(cfg, "server")
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"media", cfg.MediaBackend,
		"table_prefix", cfg.TablePrefix,
	)

	// Error reporting
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.Fatalf("Failed to initialise Sentry: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
		logger.Info("sentry enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence
	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer stores.close()

	media, uploads, err := openMedia(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s media storage: %v", cfg.MediaBackend, err)
	}

	// Tokens
	issuer, verifier, err := newTokens(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to set up tokens: %v", err)
	}
	defer verifier.Close()

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up rate limiting: %v", err)
	}
	if limiter != nil {
		defer limiter.Close()
	}

	// Services
	memberService := service.NewMemberService(stores.members, cfg.UploadURLPrefix, logger)
	treeService := service.NewTreeService(stores.members, logger)
	settingsService := service.NewSettingsService(stores.settings, cfg.UploadURLPrefix, logger)
	mediaService := service.NewMediaService(media, cfg.MaxUploadBytes, logger)
	authService := service.NewAuthService(service.AuthConfig{
		Users:       stores.users,
		ResetTokens: stores.resetTokens,
		Mailer:      newMailer(cfg, logger),
		Issuer:      issuer,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})

	seed(ctx, cfg, authService, memberService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes := &handler.Routes{
		Members:      handler.NewMemberHandler(memberService, logger),
		Tree:         handler.NewTreeHandler(treeService, logger),
		Settings:     handler.NewSettingsHandler(settingsService, logger),
		Media:        handler.NewMediaHandler(mediaService, cfg.MaxUploadBytes, logger),
		Auth:         handler.NewAuthHandler(authService, logger),
		Protect:      middleware.Passthrough,
		Uploads:      uploads,
		UploadPrefix: cfg.UploadURLPrefix,
	}
	if cfg.AuthRequired {
		routes.Protect = middleware.RequireAuth(verifier, logger)
	} else {
		logger.Warn("AUTH_REQUIRED=false: write endpoints are open")
	}
	routes.Register(mux)

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RateLimit → Routes
	if limiter != nil {
		h = middleware.RateLimit(limiter, logger)(h)
	}
	h = middleware.Recovery(logger)(h)

	// CORS - outermost so OPTIONS pre-flight requests are answered before limits and auth
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
