package familytree

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
)

// memStore is an in-memory MemberStore that enforces the children precondition
type memStore struct {
	members []models.Member
	nextID  int
	listErr error
}

func newMemStore(members ...models.Member) *memStore {
	return &memStore{members: members, nextID: 100}
}

func (s *memStore) ListMembers(ctx context.Context) ([]models.Member, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

func (s *memStore) CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	s.nextID++
	m := models.Member{
		ID:        fmt.Sprintf("m%d", s.nextID),
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		ImageKind: req.ImageKind,
		ParentID:  req.ParentID,
		CreatedAt: time.Now(),
	}
	s.members = append(s.members, m)
	return &m, nil
}

func (s *memStore) UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error) {
	for i := range s.members {
		if s.members[i].ID != id {
			continue
		}
		if req.Name != nil {
			s.members[i].Name = *req.Name
		}
		if req.ImageURL != nil {
			s.members[i].ImageURL = *req.ImageURL
		}
		m := s.members[i]
		return &m, nil
	}
	return nil, &domain.NotFoundError{Message: "member not found"}
}

func (s *memStore) DeleteMember(ctx context.Context, id string) error {
	idx := -1
	children := 0
	for i, m := range s.members {
		if m.ID == id {
			idx = i
		}
		if m.ParentIs(id) {
			children++
		}
	}
	if idx < 0 {
		return &domain.NotFoundError{Message: "member not found"}
	}
	if children > 0 {
		return &domain.HasChildrenError{MemberID: id, ChildrenCount: children}
	}
	s.members = append(s.members[:idx], s.members[idx+1:]...)
	return nil
}

func scenarioStore() *memStore {
	return newMemStore(
		member("1", "", "A"),
		member("2", "1", "B"),
		member("3", "1", "C"),
	)
}

func TestController_Scenario(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)

	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	tree := c.Tree()
	if tree.ID != "1" || !reflect.DeepEqual(childIDs(tree), []string{"2", "3"}) {
		t.Fatalf("tree = %s%v, want 1[2 3]", tree.ID, childIDs(tree))
	}
	if s := c.State(); s.ViewRootID != "1" || !s.IsExpanded("1") {
		t.Fatalf("view after reload = %+v, want root 1 expanded", s)
	}

	// deleting A is blocked and nothing changes
	before, _ := store.ListMembers(ctx)
	err := c.Delete(ctx, store.members[0])
	if !errors.Is(err, domain.ErrHasChildren) {
		t.Fatalf("Delete(A) error = %v, want ErrHasChildren", err)
	}
	if domain.CodeOf(err) != domain.CodeHasChildren {
		t.Errorf("CodeOf() = %s, want %s", domain.CodeOf(err), domain.CodeHasChildren)
	}
	after, _ := store.ListMembers(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Error("failed delete changed the store")
	}
	if c.State().ViewRootID != "1" {
		t.Error("failed delete changed the view root")
	}

	// deleting B succeeds
	if err := c.Delete(ctx, store.members[1]); err != nil {
		t.Fatalf("Delete(B) error = %v", err)
	}
	if got := childIDs(c.Tree()); !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("children after delete = %v, want [3]", got)
	}
}

func TestController_DeleteViewRootWithParent(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Navigate("2"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	b, _ := c.Member("2")
	if err := c.Delete(ctx, b); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if got := c.State().ViewRootID; got != "1" {
		t.Errorf("ViewRootID = %q, want parent 1", got)
	}
}

func TestController_DeleteParentlessViewRoot(t *testing.T) {
	tests := []struct {
		name     string
		members  []models.Member
		deleteID string
		want     string
	}{
		{
			name:     "another parentless member remains",
			members:  []models.Member{member("a", "", "A"), member("b", "", "B"), member("c", "b", "C")},
			deleteID: "a",
			want:     "b",
		},
		{
			name:     "no parentless member remains",
			members:  []models.Member{member("a", "", "A"), member("x", "missing", "X"), member("y", "x", "Y")},
			deleteID: "a",
			want:     "x",
		},
		{
			name:     "last member deleted",
			members:  []models.Member{member("a", "", "A")},
			deleteID: "a",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c := NewController(newMemStore(tt.members...))
			if err := c.Reload(ctx); err != nil {
				t.Fatal(err)
			}
			c.Dispatch(SetViewRoot{ID: tt.deleteID})

			if err := c.DeleteByID(ctx, tt.deleteID); err != nil {
				t.Fatalf("DeleteByID() error = %v", err)
			}
			if got := c.State().ViewRootID; got != tt.want {
				t.Errorf("ViewRootID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestController_DeleteOtherKeepsView(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	c.Toggle("3")

	if err := c.DeleteByID(ctx, "2"); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if s.ViewRootID != "1" || !s.IsExpanded("1") || !s.IsExpanded("3") {
		t.Errorf("view = %+v, want root 1 with 1 and 3 expanded", s)
	}
}

func TestController_AddExpandsParent(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if c.State().IsExpanded("3") {
		t.Fatal("3 should start collapsed")
	}

	added, err := c.Add(ctx, models.MemberData{Name: "D"}, "3")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if !c.State().IsExpanded("3") {
		t.Error("parent not expanded after add")
	}
	node := FindNode(c.Tree(), "3")
	if got := childIDs(node); !reflect.DeepEqual(got, []string{added.ID}) {
		t.Errorf("children of 3 = %v, want [%s]", got, added.ID)
	}

	// adding again keeps the parent expanded rather than toggling it
	if _, err := c.Add(ctx, models.MemberData{Name: "E"}, "3"); err != nil {
		t.Fatal(err)
	}
	if !c.State().IsExpanded("3") {
		t.Error("second add collapsed the parent")
	}
}

func TestController_AddParentlessTolerated(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	added, err := c.Add(ctx, models.MemberData{Name: "Z"}, "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(c.Members()) != 4 {
		t.Errorf("members = %d, want 4", len(c.Members()))
	}
	if FindNode(c.Tree(), added.ID) != nil {
		t.Error("second parentless member should not be in the rendered tree")
	}
	if c.State().ViewRootID != "1" {
		t.Errorf("ViewRootID = %q, want 1", c.State().ViewRootID)
	}
}

func TestController_AddValidationErrorSurfaces(t *testing.T) {
	ctx := context.Background()
	c := NewController(scenarioStore())
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := c.Add(ctx, models.MemberData{}, "1")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Add() error = %v, want ErrValidation", err)
	}
	if len(c.Members()) != 3 {
		t.Errorf("members = %d, want 3", len(c.Members()))
	}
}

func TestController_EditKeepsParent(t *testing.T) {
	ctx := context.Background()
	store := scenarioStore()
	c := NewController(store)
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Edit(ctx, models.MemberData{Name: "Bee", ImageURL: "/uploads/b.png"}, "2"); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	node := FindNode(c.Tree(), "2")
	if node.Name != "Bee" || node.ImageURL != "/uploads/b.png" {
		t.Errorf("node = %+v, want renamed with new image", node)
	}
	if node.ParentID == nil || *node.ParentID != "1" {
		t.Error("edit changed the parent")
	}

	_, err := c.Edit(ctx, models.MemberData{Name: "x"}, "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Edit(missing) error = %v, want ErrNotFound", err)
	}
}

func TestController_SeedsRootWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	c := NewController(store, WithSeedRoot("Root"))

	if err := c.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(store.members) != 1 || store.members[0].Name != "Root" {
		t.Fatalf("store = %+v, want one Root member", store.members)
	}
	s := c.State()
	if s.ViewRootID != store.members[0].ID || !s.IsExpanded(s.ViewRootID) {
		t.Errorf("view = %+v, want seeded root expanded", s)
	}
}

func TestController_ReloadError(t *testing.T) {
	store := scenarioStore()
	store.listErr = domain.ErrStorage
	c := NewController(store)

	err := c.Reload(context.Background())
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("Reload() error = %v, want ErrStorage", err)
	}
}

func TestController_Navigation(t *testing.T) {
	ctx := context.Background()
	c := NewController(newMemStore(
		member("1", "", "A"),
		member("2", "1", "B"),
		member("3", "2", "C"),
	))
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}

	if err := c.Navigate("3"); err != nil {
		t.Fatal(err)
	}
	node, path := c.ViewRoot()
	if node == nil || node.ID != "3" || !reflect.DeepEqual(path, []string{"1", "2", "3"}) {
		t.Errorf("ViewRoot() = %v %v, want 3 via [1 2 3]", node, path)
	}

	if err := c.Navigate("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Navigate(missing) error = %v, want ErrNotFound", err)
	}

	c.Toggle("2")
	c.ResetToRoot()
	s := c.State()
	if s.ViewRootID != "1" || !reflect.DeepEqual(s.Expanded.Slice(), []string{"1"}) {
		t.Errorf("after ResetToRoot view = %+v", s)
	}

	c.CollapseToRoot()
	s = c.State()
	if s.ViewRootID != "1" || len(s.Expanded) != 0 {
		t.Errorf("after CollapseToRoot view = %+v", s)
	}
}

func TestController_RestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	persisted := NewState()
	persisted.ViewRootID = "2"
	persisted.Expanded = NewIDSet("2")
	persisted.Zoom = 1.5

	c := NewController(scenarioStore(), WithState(persisted))
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	s := c.State()
	if s.ViewRootID != "2" || s.Zoom != 1.5 {
		t.Errorf("view = %+v, want persisted root 2 and zoom 1.5", s)
	}

	stale := NewState()
	stale.ViewRootID = "deleted-elsewhere"
	c = NewController(scenarioStore(), WithState(stale))
	if err := c.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if got := c.State().ViewRootID; got != "1" {
		t.Errorf("stale view root repaired to %q, want 1", got)
	}
}
