package services

import (
	"context"

	"familytree/internal/domain/models"
)

// TreeService builds the nested member tree
type TreeService interface {
	// GetTree returns the tree rooted at rootID, or at the true root when rootID is empty.
	// A nil node means there are no members.
	GetTree(ctx context.Context, rootID string) (*models.TreeNode, error)
}
