package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"familytree/internal/config"
	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"
	"familytree/internal/mailer"

	"github.com/badoux/checkmail"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens for signed-in users
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthConfig holds the auth service collaborators
type AuthConfig struct {
	Users       repositories.UserRepository
	ResetTokens repositories.ResetTokenRepository
	Mailer      mailer.Mailer
	// Issuer is optional; without it signin returns no token
	Issuer      TokenIssuer
	FrontendURL string
	Logger      *slog.Logger
}

// authService implements the AuthService interface
type authService struct {
	users       repositories.UserRepository
	resetTokens repositories.ResetTokenRepository
	mailer      mailer.Mailer
	issuer      TokenIssuer
	frontendURL string
	sanitizer   *textSanitizer
	now         func() time.Time
	logger      *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthConfig) services.AuthService {
	return &authService{
		users:       cfg.Users,
		resetTokens: cfg.ResetTokens,
		mailer:      cfg.Mailer,
		issuer:      cfg.Issuer,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		sanitizer:   newTextSanitizer(),
		now:         time.Now,
		logger:      cfg.Logger,
	}
}

// Signup registers an account. Username defaults to the part of the email before @.
func (s *authService) Signup(ctx context.Context, req *models.SessionRequest) (*models.SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrEmailPasswordNeeded
	}
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrBadRequest, email)
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	username, err := s.sanitizer.Plain("username", req.Username)
	if err != nil {
		return nil, err
	}
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", "id", user.ID, "email", user.Email)

	return s.session(user)
}

// Signin reports unknown emails and wrong passwords identically
func (s *authService) Signin(ctx context.Context, req *models.SessionRequest) (*models.SessionResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("signin rejected", "email", email)
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info("user signed in", "id", user.ID)
	return s.session(user)
}

func (s *authService) session(user *models.User) (*models.SessionResponse, error) {
	resp := &models.SessionResponse{User: user.Public()}
	if s.issuer == nil {
		return resp, nil
	}
	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	resp.Token = token
	return resp, nil
}

// RequestPasswordReset never reveals whether the email has an account
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Info("reset requested for unknown email")
			return nil
		}
		return err
	}

	token := &models.ResetToken{
		Token:     uuid.NewString(),
		Email:     user.Email,
		ExpiresAt: s.now().Add(config.ResetTokenTTL).UTC(),
	}
	if err := s.resetTokens.Create(ctx, token); err != nil {
		return err
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(token.Token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		s.logger.Error("reset email failed", "email", user.Email, "error", err)
		return nil
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a token issued by RequestPasswordReset.
// The password is checked first so a rejected one leaves the token usable.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if req.Token == "" {
		return domain.ErrTokenInvalid
	}
	if err := validatePassword(req.Password); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token, err := s.resetTokens.Consume(ctx, req.Token)
	if err != nil {
		return err
	}
	if token.Expired(s.now()) {
		return fmt.Errorf("token expired at %s: %w", token.ExpiresAt.Format(time.RFC3339), domain.ErrTokenInvalid)
	}

	if err := s.users.UpdatePassword(ctx, token.Email, string(hash)); err != nil {
		return err
	}

	s.logger.Info("password reset", "email", token.Email)
	return nil
}

func (s *authService) UpdateUsername(ctx context.Context, req *models.UpdateUsernameRequest) (*models.PublicUser, error) {
	email := strings.TrimSpace(req.Email)
	username, err := s.sanitizer.Plain("username", req.Username)
	if err != nil {
		return nil, err
	}
	if email == "" || username == "" {
		return nil, domain.ErrBadRequest
	}
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.users.UpdateUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("username updated", "id", user.ID, "username", user.Username)

	public := user.Public()
	return &public, nil
}

// EnsureUser seeds an account, leaving an existing one untouched
func (s *authService) EnsureUser(ctx context.Context, email, password string) error {
	_, err := s.Signup(ctx, &models.SessionRequest{Email: email, Password: password})
	if errors.Is(err, domain.ErrEmailExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user %s: %w", email, err)
	}

	s.logger.Info("seeded user", "email", email)
	return nil
}

func validatePassword(password string) error {
	return validation.Validate(password,
		validation.Required.Error("password is required"),
		validation.RuneLength(config.MinPasswordLength, 0).Error("password is too short"),
	)
}

func validateUsername(username string) error {
	return validation.Validate(username, validation.RuneLength(1, config.MaxUsernameLength))
}
