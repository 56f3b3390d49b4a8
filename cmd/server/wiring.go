package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"familytree/internal/auth"
	"familytree/internal/config"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"
	"familytree/internal/mailer"
	"familytree/internal/ratelimit"
	"familytree/internal/repository/jsonfile"
	mongostore "familytree/internal/repository/mongo"
	"familytree/internal/repository/postgres"
	"familytree/internal/storage"

	"github.com/google/uuid"
)

// stores holds the repositories of the configured backend
type stores struct {
	members     repositories.MemberRepository
	settings    repositories.SettingsRepository
	users       repositories.UserRepository
	resetTokens repositories.ResetTokenRepository
	close       func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StoreJSON:
		store, err := jsonfile.Open(cfg.DataFile, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("json store opened", "path", store.Path())
		return &stores{
			members:     jsonfile.NewMemberRepository(store),
			settings:    jsonfile.NewSettingsRepository(store),
			users:       jsonfile.NewUserRepository(store),
			resetTokens: jsonfile.NewResetTokenRepository(store),
			close:       func() {},
		}, nil

	case config.StorePostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected", "max_conns", pool.Config().MaxConns)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		return &stores{
			members:     postgres.NewMemberRepository(repoConfig),
			settings:    postgres.NewSettingsRepository(repoConfig),
			users:       postgres.NewUserRepository(repoConfig),
			resetTokens: postgres.NewResetTokenRepository(repoConfig),
			close:       pool.Close,
		}, nil

	case config.StoreMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s := mongostore.New(client.Database(cfg.MongoDatabase), cfg.TablePrefix)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("mongo connected", "database", cfg.MongoDatabase)
		return &stores{
			members:     s.Members,
			settings:    s.Settings,
			users:       s.Users,
			resetTokens: s.ResetTokens,
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}

// openMedia returns the media store and, for local disk, the handler serving its files
func openMedia(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.MediaStore, http.Handler, error) {
	switch cfg.MediaBackend {
	case config.MediaLocal:
		local, err := storage.NewLocal(cfg.UploadDir, cfg.UploadURLPrefix, logger)
		if err != nil {
			return nil, nil, err
		}
		return local, local.Handler(), nil
	case config.MediaS3:
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Prefix:    cfg.S3Prefix,
			PublicURL: cfg.S3PublicURL,
			Endpoint:  cfg.S3Endpoint,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
}

// newTokens builds the signin token issuer and the verifier for protected routes.
// Supabase tokens are accepted too when SUPABASE_URL is set.
func newTokens(cfg *config.Config, logger *slog.Logger) (*auth.TokenIssuer, auth.JWTVerifier, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Environment == "prod" {
			return nil, nil, fmt.Errorf("JWT_SECRET is required in prod")
		}
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set: using a random secret, tokens will not survive a restart")
	}

	issuer, err := auth.NewTokenIssuer(secret, cfg.TokenTTL)
	if err != nil {
		return nil, nil, err
	}

	chain := auth.ChainVerifier{issuer}
	if cfg.SupabaseJWKSURL != "" {
		supabase, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("supabase verifier: %w", err)
		}
		chain = append(chain, supabase)
	}
	return issuer, chain, nil
}

// newLimiter returns nil when RATE_LIMIT_PER_MINUTE is not positive
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, error) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, nil
	}
	if cfg.RedisURL != "" {
		limiter, err := ratelimit.NewRedisLimiter(ctx, cfg.RedisURL, cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			return nil, err
		}
		return limiter, nil
	}
	return ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute), nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if !cfg.SMTPConfigured() {
		logger.Warn("SMTP not configured: reset links are written to the log")
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.MailFrom,
	}, logger)
}

// seed creates the default admin account and a root member for an empty tree
func seed(ctx context.Context, cfg *config.Config, authService services.AuthService, memberService services.MemberService, logger *slog.Logger) {
	if cfg.DefaultAdminEmail != "" && cfg.DefaultAdminPassword != "" {
		if err := authService.EnsureUser(ctx, cfg.DefaultAdminEmail, cfg.DefaultAdminPassword); err != nil {
			logger.Warn("admin seeding failed", "email", cfg.DefaultAdminEmail, "error", err)
		}
	}
	if cfg.SeedRootName != "" {
		if _, err := memberService.EnsureRoot(ctx, cfg.SeedRootName); err != nil {
			logger.Warn("root seeding failed", "error", err)
		}
	}
}
