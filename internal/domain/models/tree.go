package models

import "time"

// TreeNode is a member with its ordered children.
// Nodes are derived from the flat member list and never persisted.
type TreeNode struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ImageURL  string      `json:"image_url"`
	ImageKind ImageKind   `json:"image_kind"`
	ParentID  *string     `json:"parent_id"`
	CreatedAt time.Time   `json:"created_at"`
	Children  []*TreeNode `json:"children"` // Pointers for proper nesting
}

// Member returns the member record carried by the node (without children)
func (n *TreeNode) Member() Member {
	return Member{
		ID:        n.ID,
		Name:      n.Name,
		ImageURL:  n.ImageURL,
		ImageKind: n.ImageKind,
		ParentID:  n.ParentID,
		CreatedAt: n.CreatedAt,
	}
}

// HasChildren reports whether any member hangs below this node
func (n *TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}
