package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"familytree/internal/domain"
	"familytree/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// SupabaseJWTVerifier implements JWTVerifier using JWKS from Supabase.
type SupabaseJWTVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWTVerifier creates a verifier that fetches public keys from Supabase's JWKS endpoint.
// The JWKS keys are cached and refreshed based on HTTP cache headers.
func NewJWTVerifier(jwksURL string, logger *slog.Logger) (JWTVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "jwks_url", jwksURL)

	return &SupabaseJWTVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates a Supabase token and maps it onto session claims.
func (v *SupabaseJWTVerifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SupabaseClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}))
	if err != nil {
		v.logger.Debug("supabase token rejected", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SupabaseClaims)
	if !ok {
		v.logger.Error("failed to extract claims from token")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	// Anonymous sessions may read but never edit the tree
	if claims.Role != "authenticated" || claims.IsAnonymous {
		v.logger.Warn("token has invalid role",
			"role", claims.Role,
			"user_id", claims.Subject,
		)
		return nil, domain.ErrUnauthorized
	}

	return &models.SessionClaims{
		RegisteredClaims: claims.RegisteredClaims,
		Email:            claims.Email,
	}, nil
}

// Close is a no-op; keyfunc v3 manages its own refresh goroutine lifecycle.
func (v *SupabaseJWTVerifier) Close() error {
	v.logger.Info("JWT verifier closed")
	return nil
}
