package services

import (
	"context"

	"familytree/internal/domain/models"
)

// MemberService handles family member business logic
type MemberService interface {
	// ListMembers returns all members ordered by creation time
	ListMembers(ctx context.Context) ([]models.Member, error)

	// GetMember retrieves a member by ID
	GetMember(ctx context.Context, id string) (*models.Member, error)

	// CreateMember validates and stores a new member
	CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error)

	// UpdateMember changes name and/or image of a member
	UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error)

	// DeleteMember removes a member without children
	DeleteMember(ctx context.Context, id string) error

	// EnsureRoot creates a parentless member named name when no members exist.
	// Returns nil when the tree already has members.
	EnsureRoot(ctx context.Context, name string) (*models.Member, error)
}
