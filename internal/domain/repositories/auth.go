package repositories

import (
	"context"

	"familytree/internal/domain/models"
)

// UserRepository stores accounts. Email lookups are case-insensitive.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateUsername(ctx context.Context, email, username string) (*models.User, error)
}

// ResetTokenRepository stores password reset tokens
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.ResetToken) error
	Get(ctx context.Context, token string) (*models.ResetToken, error)
	Delete(ctx context.Context, token string) error
	// Consume deletes the token and returns it; of concurrent calls only one succeeds
	Consume(ctx context.Context, token string) (*models.ResetToken, error)
}
