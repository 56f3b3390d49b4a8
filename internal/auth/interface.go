package auth

import "familytree/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// Implementations normalize their provider's claims into SessionClaims
// so the middleware stays agnostic to who issued the token.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error wrapping domain.ErrUnauthorized if the token is invalid,
	// expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
