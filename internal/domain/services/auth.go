package services

import (
	"context"

	"familytree/internal/domain/models"
)

// AuthService manages accounts and password resets
type AuthService interface {
	Signup(ctx context.Context, req *models.SessionRequest) (*models.SessionResponse, error)
	Signin(ctx context.Context, req *models.SessionRequest) (*models.SessionResponse, error)

	// RequestPasswordReset issues a one hour token and delivers the link.
	// Unknown emails succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a token and sets a new password
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error

	UpdateUsername(ctx context.Context, req *models.UpdateUsernameRequest) (*models.PublicUser, error)

	// EnsureUser creates the account if no user has the email yet
	EnsureUser(ctx context.Context, email, password string) error
}
