package postgres

import (
	"context"
	"fmt"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{pool: config.Pool, tables: config.Tables}
}

const userColumns = "id, email, username, password_hash, created_at"

// Create inserts a user; the lower(email) unique index rejects duplicates
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Users)

	executor := executorFor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, user.ID, user.Email, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("user %s: %w", user.Email, domain.ErrEmailExists)
		}
		return storageError("create user", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE lower(email) = lower($1)`, userColumns, r.tables.Users)
	return r.getOne(ctx, query, email)
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)
	return r.getOne(ctx, query, id)
}

func (r *PostgresUserRepository) getOne(ctx context.Context, query string, arg string) (*models.User, error) {
	var u models.User
	executor := executorFor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", arg, domain.ErrUserNotFound)
		}
		return nil, storageError("get user", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := fmt.Sprintf(`UPDATE %s SET password_hash = $1 WHERE lower(email) = lower($2)`, r.tables.Users)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, passwordHash, email)
	if err != nil {
		return storageError("update password", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
	}
	return nil
}

func (r *PostgresUserRepository) UpdateUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET username = $1
		WHERE lower(email) = lower($2)
		RETURNING %s
	`, r.tables.Users, userColumns)

	var u models.User
	executor := executorFor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, username, email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", email, domain.ErrUserNotFound)
		}
		return nil, storageError("update username", err)
	}
	return &u, nil
}

// PostgresResetTokenRepository implements the ResetTokenRepository interface
type PostgresResetTokenRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(config *RepositoryConfig) repositories.ResetTokenRepository {
	return &PostgresResetTokenRepository{pool: config.Pool, tables: config.Tables}
}

func (r *PostgresResetTokenRepository) Create(ctx context.Context, token *models.ResetToken) error {
	query := fmt.Sprintf(`INSERT INTO %s (token, email, expires_at) VALUES ($1, $2, $3)`, r.tables.ResetTokens)

	executor := executorFor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, token.Token, token.Email, token.ExpiresAt); err != nil {
		return storageError("create reset token", err)
	}
	return nil
}

func (r *PostgresResetTokenRepository) Get(ctx context.Context, token string) (*models.ResetToken, error) {
	query := fmt.Sprintf(`SELECT token, email, expires_at FROM %s WHERE token = $1`, r.tables.ResetTokens)

	var t models.ResetToken
	executor := executorFor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, token).Scan(&t.Token, &t.Email, &t.ExpiresAt); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
		}
		return nil, storageError("get reset token", err)
	}
	return &t, nil
}

func (r *PostgresResetTokenRepository) Consume(ctx context.Context, token string) (*models.ResetToken, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token = $1 RETURNING token, email, expires_at`, r.tables.ResetTokens)

	var t models.ResetToken
	executor := executorFor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, token).Scan(&t.Token, &t.Email, &t.ExpiresAt); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("reset token: %w", domain.ErrTokenInvalid)
		}
		return nil, storageError("consume reset token", err)
	}
	return &t, nil
}

func (r *PostgresResetTokenRepository) Delete(ctx context.Context, token string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE token = $1`, r.tables.ResetTokens)

	executor := executorFor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, token); err != nil {
		return storageError("delete reset token", err)
	}
	return nil
}
