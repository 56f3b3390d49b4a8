package jsonfile

import (
	"context"
	"fmt"
	"sort"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"
)

// MemberRepository implements repositories.MemberRepository on the JSON document
type MemberRepository struct {
	store *Store
}

// NewMemberRepository creates a member repository
func NewMemberRepository(store *Store) repositories.MemberRepository {
	return &MemberRepository{store: store}
}

// List returns members ordered by created_at ascending
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.store.view(func(doc *document) error {
		members = make([]models.Member, len(doc.Members))
		copy(members, doc.Members)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

// GetByID retrieves a member by ID
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	var found *models.Member
	err := r.store.view(func(doc *document) error {
		if i := indexOf(doc.Members, id); i >= 0 {
			m := doc.Members[i]
			found = &m
			return nil
		}
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	})
	return found, err
}

// Create appends a member. The parent lookup and the append happen under the same lock.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.store.update(func(doc *document) error {
		if indexOf(doc.Members, member.ID) >= 0 {
			return fmt.Errorf("member %s: %w", member.ID, domain.ErrConflict)
		}
		if member.ParentID != nil && indexOf(doc.Members, *member.ParentID) < 0 {
			return &domain.ValidationError{Message: fmt.Sprintf("parent %s does not exist", *member.ParentID)}
		}
		doc.Members = append(doc.Members, *member)
		return nil
	})
}

// Update replaces name and image of an existing member
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.store.update(func(doc *document) error {
		i := indexOf(doc.Members, member.ID)
		if i < 0 {
			return fmt.Errorf("member %s: %w", member.ID, domain.ErrNotFound)
		}
		doc.Members[i].Name = member.Name
		doc.Members[i].ImageURL = member.ImageURL
		doc.Members[i].ImageKind = member.ImageKind
		return nil
	})
}

// Delete removes a member that no other member references as parent.
// The scan and the removal happen under the same lock.
func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	return r.store.update(func(doc *document) error {
		i := indexOf(doc.Members, id)
		if i < 0 {
			return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
		}
		if n := countChildren(doc.Members, id); n > 0 {
			return &domain.HasChildrenError{MemberID: id, ChildrenCount: n}
		}
		doc.Members = append(doc.Members[:i], doc.Members[i+1:]...)
		return nil
	})
}

// CountChildren returns the number of direct dependents of id
func (r *MemberRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.store.view(func(doc *document) error {
		n = countChildren(doc.Members, id)
		return nil
	})
	return n, err
}

func indexOf(members []models.Member, id string) int {
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func countChildren(members []models.Member, id string) int {
	n := 0
	for _, m := range members {
		if m.ParentIs(id) {
			n++
		}
	}
	return n
}
