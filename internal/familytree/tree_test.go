package familytree

import (
	"reflect"
	"testing"
	"time"

	"familytree/internal/domain/models"
)

func member(id, parent, name string) models.Member {
	return models.Member{
		ID:        id,
		Name:      name,
		ParentID:  models.StringPtr(parent),
		ImageURL:  models.DefaultMemberImage,
		ImageKind: models.ImageKindAsset,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func childIDs(n *models.TreeNode) []string {
	ids := []string{}
	for _, c := range n.Children {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestBuildTree_Empty(t *testing.T) {
	if got := BuildTree(nil); got != nil {
		t.Errorf("BuildTree(nil) = %v, want nil", got)
	}
	if got := BuildTree([]models.Member{}); got != nil {
		t.Errorf("BuildTree([]) = %v, want nil", got)
	}
}

func TestBuildTree_Scenario(t *testing.T) {
	members := []models.Member{
		member("1", "", "A"),
		member("2", "1", "B"),
		member("3", "1", "C"),
	}

	root := BuildTree(members)
	if root == nil || root.ID != "1" {
		t.Fatalf("root = %v, want member 1", root)
	}
	if got, want := childIDs(root), []string{"2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
	if root.Children[0].Name != "B" || root.Children[1].Name != "C" {
		t.Errorf("child names = %s,%s, want B,C", root.Children[0].Name, root.Children[1].Name)
	}
}

func TestBuildTree_MirrorsParentEdges(t *testing.T) {
	members := []models.Member{
		member("r", "", "root"),
		member("a", "r", "a"),
		member("b", "r", "b"),
		member("a1", "a", "a1"),
		member("a2", "a", "a2"),
		member("b1", "b", "b1"),
		member("a1x", "a1", "a1x"),
	}

	root := BuildTree(members)
	if got := Count(root); got != len(members) {
		t.Fatalf("Count() = %d, want %d", got, len(members))
	}

	edges := map[string]string{}
	Walk(root, func(n *models.TreeNode, _ int) bool {
		for _, c := range n.Children {
			edges[c.ID] = n.ID
		}
		return true
	})

	for _, m := range members {
		if m.IsRoot() {
			if _, ok := edges[m.ID]; ok {
				t.Errorf("root %s has a parent edge", m.ID)
			}
			continue
		}
		if edges[m.ID] != *m.ParentID {
			t.Errorf("edge %s -> %s, want parent %s", m.ID, edges[m.ID], *m.ParentID)
		}
	}
}

func TestBuildTree_ChildOrderFollowsInput(t *testing.T) {
	// child listed before its parent still attaches, keeping input order among siblings
	members := []models.Member{
		member("c2", "p", "second"),
		member("p", "", "parent"),
		member("c1", "p", "first"),
	}

	root := BuildTree(members)
	if root.ID != "p" {
		t.Fatalf("root = %s, want p", root.ID)
	}
	if got, want := childIDs(root), []string{"c2", "c1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestBuildTree_DanglingParentExcluded(t *testing.T) {
	members := []models.Member{
		member("1", "", "A"),
		member("2", "1", "B"),
		member("orphan", "missing", "X"),
		member("orphan-child", "orphan", "Y"),
	}

	forest := Link(members)
	if len(forest.Roots) != 2 || forest.Roots[1].ID != "orphan" {
		t.Fatalf("roots = %v, want [1 orphan]", forest.Roots)
	}

	root := BuildTree(members)
	if root.ID != "1" {
		t.Fatalf("root = %s, want 1", root.ID)
	}
	for _, id := range []string{"orphan", "orphan-child"} {
		if FindNode(root, id) != nil {
			t.Errorf("%s reachable from root, want excluded", id)
		}
	}
	if got := Count(root); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
}

func TestBuildTree_NoParentlessFallsBackToFirst(t *testing.T) {
	members := []models.Member{
		member("x", "gone", "X"),
		member("y", "x", "Y"),
	}

	root := BuildTree(members)
	if root == nil || root.ID != "x" {
		t.Fatalf("root = %v, want x", root)
	}
	if got, want := childIDs(root), []string{"y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
}

func TestBuildTree_CycleExcluded(t *testing.T) {
	members := []models.Member{
		member("root", "", "R"),
		member("a", "b", "A"),
		member("b", "a", "B"),
	}

	root := BuildTree(members)
	if got := Count(root); got != 1 {
		t.Errorf("Count() = %d, want 1 (cycle members excluded)", got)
	}
}

func TestBuildTree_SecondParentlessTolerated(t *testing.T) {
	members := []models.Member{
		member("first", "", "first"),
		member("second", "", "second"),
	}

	root := BuildTree(members)
	if root.ID != "first" {
		t.Errorf("root = %s, want first", root.ID)
	}
	if FindNode(root, "second") != nil {
		t.Error("second parentless member should not be reachable")
	}
}

func TestBuildTree_Idempotent(t *testing.T) {
	members := []models.Member{
		member("1", "", "A"),
		member("2", "1", "B"),
		member("3", "2", "C"),
	}

	first := BuildTree(members)
	second := BuildTree(members)

	if !reflect.DeepEqual(first, second) {
		t.Error("BuildTree() not structurally identical across calls")
	}
	if first == second || first.Children[0] == second.Children[0] {
		t.Error("BuildTree() shares nodes between calls")
	}

	// mutating one result must not affect the input or the other tree
	first.Children[0].Name = "changed"
	*first.Children[0].ParentID = "changed"
	if members[1].Name != "B" || *members[1].ParentID != "1" {
		t.Error("BuildTree() result aliases input members")
	}
	if second.Children[0].Name != "B" {
		t.Error("BuildTree() results alias each other")
	}
}

func TestFindPath(t *testing.T) {
	root := BuildTree([]models.Member{
		member("1", "", "A"),
		member("2", "1", "B"),
		member("3", "1", "C"),
		member("4", "3", "D"),
	})

	tests := []struct {
		name     string
		id       string
		wantPath []string
	}{
		{name: "root", id: "1", wantPath: []string{"1"}},
		{name: "leaf", id: "4", wantPath: []string{"1", "3", "4"}},
		{name: "first child", id: "2", wantPath: []string{"1", "2"}},
		{name: "missing", id: "9", wantPath: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, path := FindPath(root, tt.id)
			if !reflect.DeepEqual(path, tt.wantPath) {
				t.Errorf("FindPath(%q) path = %v, want %v", tt.id, path, tt.wantPath)
			}
			if (node != nil) != (tt.wantPath != nil) {
				t.Errorf("FindPath(%q) node = %v", tt.id, node)
			}
		})
	}
}

func TestFallbackRoot(t *testing.T) {
	tests := []struct {
		name    string
		members []models.Member
		want    string
	}{
		{name: "empty", members: nil, want: ""},
		{name: "parentless preferred", members: []models.Member{member("c", "p", "c"), member("p", "", "p")}, want: "p"},
		{name: "first when none parentless", members: []models.Member{member("c", "x", "c"), member("d", "c", "d")}, want: "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackRoot(tt.members); got != tt.want {
				t.Errorf("FallbackRoot() = %q, want %q", got, tt.want)
			}
		})
	}
}
