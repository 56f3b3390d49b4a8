package familytree

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
)

// MemberStore is the member persistence the controller drives.
// The member service satisfies it in-process and the API client over HTTP.
type MemberStore interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	CreateMember(ctx context.Context, req *models.CreateMemberRequest) (*models.Member, error)
	UpdateMember(ctx context.Context, id string, req *models.UpdateMemberRequest) (*models.Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// Controller applies member edits to the store and keeps the tree and view in sync.
// Every operation waits for the store and then reloads the full list; the tree is
// rebuilt from scratch each time.
type Controller struct {
	mu       sync.Mutex
	store    MemberStore
	view     *ViewState
	logger   *slog.Logger
	seedRoot string

	members []models.Member
	tree    *models.TreeNode
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithState starts the controller from a persisted view
func WithState(s State) ControllerOption {
	return func(c *Controller) { c.view = NewViewState(s) }
}

// WithSeedRoot creates a parentless member named name whenever a reload finds no members
func WithSeedRoot(name string) ControllerOption {
	return func(c *Controller) { c.seedRoot = name }
}

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a controller. Call Reload before reading the tree.
func NewController(store MemberStore, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:  store,
		view:   NewViewState(NewState()),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reload fetches all members, rebuilds the tree and repairs the view
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reload(ctx)
}

func (c *Controller) reload(ctx context.Context) error {
	members, err := c.store.ListMembers(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	if len(members) == 0 && c.seedRoot != "" {
		root, err := c.store.CreateMember(ctx, &models.CreateMemberRequest{Name: c.seedRoot})
		if err != nil {
			return fmt.Errorf("create root member: %w", err)
		}
		c.logger.Info("root member created for empty tree", "id", root.ID, "name", root.Name)
		members = []models.Member{*root}
	}

	c.members = members
	c.tree = BuildTree(members)
	c.view.RepairAfterReload(members)
	return nil
}

// Add creates a member under parentID (empty for a parentless member) and makes
// sure the parent is expanded so the new child is visible.
func (c *Controller) Add(ctx context.Context, data models.MemberData, parentID string) (*models.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	member, err := c.store.CreateMember(ctx, &models.CreateMemberRequest{
		Name:      data.Name,
		ImageURL:  data.ImageURL,
		ImageKind: data.ImageKind,
		ParentID:  models.StringPtr(parentID),
	})
	if err != nil {
		return nil, err
	}

	if err := c.reload(ctx); err != nil {
		return member, err
	}
	if parentID != "" {
		c.view.Dispatch(Expand{ID: parentID})
	}
	return member, nil
}

// Edit changes the name and image of memberID. The parent is never changed.
func (c *Controller) Edit(ctx context.Context, data models.MemberData, memberID string) (*models.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := &models.UpdateMemberRequest{Name: &data.Name}
	if data.ImageURL != "" || data.ImageKind != "" {
		req.ImageURL = &data.ImageURL
	}
	if data.ImageKind != "" {
		req.ImageKind = &data.ImageKind
	}

	member, err := c.store.UpdateMember(ctx, memberID, req)
	if err != nil {
		return nil, err
	}

	if err := c.reload(ctx); err != nil {
		return member, err
	}
	return member, nil
}

// Delete removes member. A member with children is rejected by the store with
// domain.ErrHasChildren and nothing changes. When the deleted member was the
// display root, the view moves to its parent, else to a remaining parentless member.
func (c *Controller) Delete(ctx context.Context, member models.Member) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteMember(ctx, member.ID); err != nil {
		return err
	}

	if member.ID == c.view.state.ViewRootID {
		c.view.SetViewRoot(c.deleteFallback(member))
	}

	return c.reload(ctx)
}

// DeleteByID deletes the loaded member with the given id
func (c *Controller) DeleteByID(ctx context.Context, id string) error {
	member, ok := c.Member(id)
	if !ok {
		return &domain.NotFoundError{Message: fmt.Sprintf("member %s not found", id)}
	}
	return c.Delete(ctx, member)
}

// deleteFallback picks the next display root from the members loaded before the delete
func (c *Controller) deleteFallback(deleted models.Member) string {
	if !deleted.IsRoot() {
		return *deleted.ParentID
	}
	for _, m := range c.members {
		if m.ID != deleted.ID && m.IsRoot() {
			return m.ID
		}
	}
	return ""
}

// Navigate makes id the display root, expanding it
func (c *Controller) Navigate(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !containsMember(c.members, id) {
		return &domain.NotFoundError{Message: fmt.Sprintf("member %s not found", id)}
	}
	c.view.SetViewRoot(id)
	c.view.Dispatch(Expand{ID: id})
	return nil
}

// ResetToRoot shows the whole tree from the true root with only the root expanded
func (c *Controller) ResetToRoot() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rootID := FallbackRoot(c.members)
	if rootID == "" {
		return
	}
	c.view.SetViewRoot(rootID)
	c.view.ResetExpansion(rootID)
}

// CollapseToRoot shows the true root with every node collapsed
func (c *Controller) CollapseToRoot() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rootID := FallbackRoot(c.members)
	if rootID == "" {
		return
	}
	c.view.ResetExpansion()
	c.view.SetViewRoot(rootID)
}

// Toggle flips the expansion of id
func (c *Controller) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.ToggleExpanded(id)
}

// Dispatch applies a view-only action such as zoom or title changes
func (c *Controller) Dispatch(a Action) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Dispatch(a)
}

// Tree returns the tree built by the last reload
func (c *Controller) Tree() *models.TreeNode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Members returns a copy of the member list from the last reload
func (c *Controller) Members() []models.Member {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Member, len(c.members))
	copy(out, c.members)
	return out
}

// Member returns the loaded member with id
func (c *Controller) Member(id string) (models.Member, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.members {
		if m.ID == id {
			return m, true
		}
	}
	return models.Member{}, false
}

// State returns the current view state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.State()
}

// ViewRoot returns the node displayed at the top, with the ids leading to it from the
// true root. The node is nil when the display root is not reachable from the tree.
func (c *Controller) ViewRoot() (*models.TreeNode, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FindPath(c.tree, c.view.state.ViewRootID)
}
