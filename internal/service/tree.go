package service

import (
	"context"
	"fmt"
	"log/slog"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
	"familytree/internal/domain/services"
	"familytree/internal/familytree"
)

// treeService implements the TreeService interface
type treeService struct {
	memberRepo repositories.MemberRepository
	logger     *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(memberRepo repositories.MemberRepository, logger *slog.Logger) services.TreeService {
	return &treeService{
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// GetTree builds the tree from scratch on every call
func (s *treeService) GetTree(ctx context.Context, rootID string) (*models.TreeNode, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	tree := familytree.BuildTree(members)
	s.logger.Debug("tree built",
		"members", len(members),
		"reachable", familytree.Count(tree),
	)

	if rootID == "" {
		return tree, nil
	}

	node := familytree.FindNode(tree, rootID)
	if node == nil {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("member %s is not in the tree", rootID)}
	}
	return node, nil
}
