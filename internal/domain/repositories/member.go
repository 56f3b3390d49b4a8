package repositories

import (
	"context"

	"familytree/internal/domain/models"
)

// MemberRepository persists family members
type MemberRepository interface {
	// List returns all members ordered by creation time ascending
	List(ctx context.Context) ([]models.Member, error)

	// GetByID returns a member or an ErrNotFound wrapped error
	GetByID(ctx context.Context, id string) (*models.Member, error)

	// Create stores a new member. ID and CreatedAt are filled by the caller.
	Create(ctx context.Context, member *models.Member) error

	// Update overwrites the mutable fields (name, image) of an existing member
	Update(ctx context.Context, member *models.Member) error

	// Delete removes a member. It fails with *domain.HasChildrenError when any
	// member references id as parent, and the store is left unchanged.
	Delete(ctx context.Context, id string) error

	// CountChildren returns the number of members whose parent is id
	CountChildren(ctx context.Context, id string) (int, error)
}
