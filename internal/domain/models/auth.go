package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is an account allowed to edit the tree
type User struct {
	ID           string    `json:"id" db:"id" bson:"_id"`
	Email        string    `json:"email" db:"email" bson:"email"`
	Username     string    `json:"username" db:"username" bson:"username"`
	PasswordHash string    `json:"-" db:"password_hash" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// PublicUser is the user shape returned to clients
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Public strips credentials from the user
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username}
}

// ResetToken is a single-use password reset token
type ResetToken struct {
	Token     string    `json:"token" db:"token" bson:"_id"`
	Email     string    `json:"email" db:"email" bson:"email"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at" bson:"expires_at"`
}

// Expired reports whether the token is no longer usable at now
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// SessionClaims are the claims carried by tokens issued at signin
type SessionClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}

// SupabaseClaims represents the JWT claims structure from Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// SessionRequest is the body of signup and signin
type SessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// SessionResponse is returned by signup and signin
type SessionResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token,omitempty"`
}

// ResetPasswordRequest consumes a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"newPassword"`
}

// UpdateUsernameRequest renames an account identified by email
type UpdateUsernameRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}
