package models

import "time"

// DefaultMemberImage is the placeholder shown for members without a usable image
const DefaultMemberImage = "/assets/members/default.svg"

// Member is one person in the family tree.
// ParentID is nil for the root member (and for members whose parent was never set).
type Member struct {
	ID        string    `json:"id" db:"id" bson:"_id"`
	Name      string    `json:"name" db:"name" bson:"name"`
	ImageURL  string    `json:"image_url" db:"image_url" bson:"image_url"`
	ImageKind ImageKind `json:"image_kind" db:"image_kind" bson:"image_kind"`
	ParentID  *string   `json:"parent_id" db:"parent_id" bson:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at" bson:"created_at"`
}

// Image returns the member's tagged image reference
func (m Member) Image() ImageRef {
	return ImageRef{Kind: m.ImageKind, Value: m.ImageURL}
}

// IsRoot reports whether the member has no parent reference
func (m Member) IsRoot() bool {
	return m.ParentID == nil || *m.ParentID == ""
}

// ParentIs reports whether the member's parent is id
func (m Member) ParentIs(id string) bool {
	return m.ParentID != nil && *m.ParentID == id
}

// CreateMemberRequest is the partial member accepted on creation
type CreateMemberRequest struct {
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	ImageKind ImageKind `json:"image_kind,omitempty"`
	ParentID  *string   `json:"parent_id,omitempty"`
}

// UpdateMemberRequest carries the mutable member fields; nil means unchanged.
// Re-parenting is not supported.
type UpdateMemberRequest struct {
	Name      *string    `json:"name,omitempty"`
	ImageURL  *string    `json:"image_url,omitempty"`
	ImageKind *ImageKind `json:"image_kind,omitempty"`
}

// MemberData is the editable payload used by the tree controller for add and edit
type MemberData struct {
	Name      string
	ImageURL  string
	ImageKind ImageKind
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
