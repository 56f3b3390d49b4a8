package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMemberRepository implements the MemberRepository interface
type PostgresMemberRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(config *RepositoryConfig) repositories.MemberRepository {
	return &PostgresMemberRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const memberColumns = "id, name, image_url, image_kind, parent_id, created_at"

func scanMember(row pgx.Row, m *models.Member) error {
	return row.Scan(&m.ID, &m.Name, &m.ImageURL, &m.ImageKind, &m.ParentID, &m.CreatedAt)
}

// List retrieves all members ordered by created_at ASC
func (r *PostgresMemberRepository) List(ctx context.Context) ([]models.Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY created_at ASC, id ASC
	`, memberColumns, r.tables.Members)

	executor := executorFor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, storageError("list members", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, storageError("scan member", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate members", err)
	}

	return members, nil
}

// GetByID retrieves a member by ID
func (r *PostgresMemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, memberColumns, r.tables.Members)

	var m models.Member
	executor := executorFor(ctx, r.pool)
	if err := scanMember(executor.QueryRow(ctx, query, id), &m); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("get member", err)
	}

	return &m, nil
}

// Create inserts a new member
func (r *PostgresMemberRepository) Create(ctx context.Context, member *models.Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, image_url, image_kind, parent_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Members)

	executor := executorFor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		member.ID,
		member.Name,
		member.ImageURL,
		member.ImageKind,
		member.ParentID,
		member.CreatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("member %s: %w", member.ID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("%w: parent %v does not exist", domain.ErrValidation, deref(member.ParentID))
		}
		return storageError("create member", err)
	}

	return nil
}

// Update writes name and image; parent_id is never touched
func (r *PostgresMemberRepository) Update(ctx context.Context, member *models.Member) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, image_url = $2, image_kind = $3
		WHERE id = $4
	`, r.tables.Members)

	executor := executorFor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, member.Name, member.ImageURL, member.ImageKind, member.ID)
	if err != nil {
		return storageError("update member", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", member.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a member with no dependents. The row is locked and the
// dependents counted through the parent_id index inside one transaction; the
// ON DELETE RESTRICT foreign key backs this up against concurrent inserts.
func (r *PostgresMemberRepository) Delete(ctx context.Context, id string) error {
	return inTx(ctx, r.pool, r.logger, func(ctx context.Context) error {
		executor := executorFor(ctx, r.pool)

		lock := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 FOR UPDATE`, r.tables.Members)
		var locked string
		if err := executor.QueryRow(ctx, lock, id).Scan(&locked); err != nil {
			if IsPgNoRowsError(err) {
				return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
			}
			return storageError("lock member", err)
		}

		children, err := r.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 {
			return &domain.HasChildrenError{MemberID: id, ChildrenCount: children}
		}

		del := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Members)
		if _, err := executor.Exec(ctx, del, id); err != nil {
			if IsPgForeignKeyError(err) {
				return &domain.HasChildrenError{MemberID: id, ChildrenCount: 1}
			}
			return storageError("delete member", err)
		}
		return nil
	})
}

// CountChildren counts members whose parent is id
func (r *PostgresMemberRepository) CountChildren(ctx context.Context, id string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE parent_id = $1`, r.tables.Members)

	var n int
	executor := executorFor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, storageError("count children", err)
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
