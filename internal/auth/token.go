package auth

import (
	"errors"
	"fmt"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "familytree"

// TokenIssuer signs HS256 session tokens for local accounts
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer. An empty secret is rejected.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed token for user
func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	now := i.now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Email:    user.Email,
		Username: user.Username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks a token issued by Issue
func (i *TokenIssuer) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (i *TokenIssuer) Close() error { return nil }

// ChainVerifier accepts a token if any of its verifiers does
type ChainVerifier []JWTVerifier

// VerifyToken returns the claims from the first verifier that accepts the token
func (c ChainVerifier) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	lastErr := error(domain.ErrUnauthorized)
	for _, v := range c {
		claims, err := v.VerifyToken(tokenString)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c ChainVerifier) Close() error {
	var errs []error
	for _, v := range c {
		if err := v.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
