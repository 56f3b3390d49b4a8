// Package familytree turns the flat member list into a rooted tree and keeps the
// client view (display root, expanded nodes, zoom) consistent across edits.
package familytree

import "familytree/internal/domain/models"

// Forest is the result of linking a member list by parent reference.
// Roots holds every root candidate in input order: parentless members and
// members whose parent does not exist.
type Forest struct {
	Nodes map[string]*models.TreeNode
	Roots []*models.TreeNode
}

// Link builds fresh nodes for members in a single pass.
// Children keep input order, so a creation-ordered list yields creation-ordered children.
// Members never get mutated and no node is shared between calls.
func Link(members []models.Member) *Forest {
	forest := &Forest{
		Nodes: make(map[string]*models.TreeNode, len(members)),
		Roots: make([]*models.TreeNode, 0, 1),
	}

	// First pass: create all nodes
	for _, m := range members {
		forest.Nodes[m.ID] = newNode(m)
	}

	// Second pass: attach each member to its parent, in input order
	for _, m := range members {
		node := forest.Nodes[m.ID]
		if m.ParentID != nil && *m.ParentID != "" {
			if parent, ok := forest.Nodes[*m.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		forest.Roots = append(forest.Roots, node)
	}

	return forest
}

// BuildTree returns the first root candidate with its descendants, or nil for an empty list.
// Members whose parent chain never reaches that root (extra roots, dangling parents,
// cycles) are not part of the result.
func BuildTree(members []models.Member) *models.TreeNode {
	forest := Link(members)
	if len(forest.Roots) == 0 {
		return nil
	}
	return forest.Roots[0]
}

func newNode(m models.Member) *models.TreeNode {
	var parentID *string
	if m.ParentID != nil {
		p := *m.ParentID
		parentID = &p
	}
	return &models.TreeNode{
		ID:        m.ID,
		Name:      m.Name,
		ImageURL:  m.ImageURL,
		ImageKind: m.ImageKind,
		ParentID:  parentID,
		CreatedAt: m.CreatedAt,
		Children:  []*models.TreeNode{},
	}
}

// FindPath searches root depth-first for id and returns the ids from root down to it.
// The node is nil when id is not reachable from root.
func FindPath(root *models.TreeNode, id string) (*models.TreeNode, []string) {
	if root == nil {
		return nil, nil
	}
	var path []string
	var visit func(n *models.TreeNode) *models.TreeNode
	visit = func(n *models.TreeNode) *models.TreeNode {
		path = append(path, n.ID)
		if n.ID == id {
			return n
		}
		for _, child := range n.Children {
			if found := visit(child); found != nil {
				return found
			}
		}
		path = path[:len(path)-1]
		return nil
	}

	node := visit(root)
	if node == nil {
		return nil, nil
	}
	return node, path
}

// FindNode returns the node for id below root, or nil
func FindNode(root *models.TreeNode, id string) *models.TreeNode {
	node, _ := FindPath(root, id)
	return node
}

// Walk visits root and its descendants in pre-order.
// Returning false from fn skips the children of that node.
func Walk(root *models.TreeNode, fn func(node *models.TreeNode, depth int) bool) {
	var visit func(n *models.TreeNode, depth int)
	visit = func(n *models.TreeNode, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, child := range n.Children {
			visit(child, depth+1)
		}
	}
	if root != nil {
		visit(root, 0)
	}
}

// Count returns the number of nodes in the tree
func Count(root *models.TreeNode) int {
	n := 0
	Walk(root, func(*models.TreeNode, int) bool {
		n++
		return true
	})
	return n
}

// FallbackRoot picks the member a view should start from: the first parentless
// member, else the first member. Empty for an empty list.
func FallbackRoot(members []models.Member) string {
	for _, m := range members {
		if m.IsRoot() {
			return m.ID
		}
	}
	if len(members) > 0 {
		return members[0].ID
	}
	return ""
}

// containsMember reports whether id is in members
func containsMember(members []models.Member, id string) bool {
	for _, m := range members {
		if m.ID == id {
			return true
		}
	}
	return false
}
