package service

import (
	"context"
	"errors"
	"testing"

	"familytree/internal/config"
	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/services"
	"familytree/internal/repository/jsonfile"
)

func newMemberService(t *testing.T) services.MemberService {
	t.Helper()
	return NewMemberService(jsonfile.NewMemberRepository(openStore(t)), "/uploads", testLogger())
}

func TestCreateMember(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)

	root, err := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "  A  "})
	if err != nil {
		t.Fatalf("CreateMember() error = %v", err)
	}
	if root.ID == "" || root.Name != "A" || root.ParentID != nil {
		t.Errorf("CreateMember() = %+v", root)
	}
	if root.Image() != models.DefaultImageRef() {
		t.Errorf("Image() = %+v, want default", root.Image())
	}

	child, err := svc.CreateMember(ctx, &models.CreateMemberRequest{
		Name:     "B",
		ImageURL: "/uploads/1-abc-b.png",
		ParentID: &root.ID,
	})
	if err != nil {
		t.Fatalf("CreateMember(child) error = %v", err)
	}
	if !child.ParentIs(root.ID) {
		t.Errorf("ParentID = %v, want %s", child.ParentID, root.ID)
	}
	if child.ImageKind != models.ImageKindUpload {
		t.Errorf("ImageKind = %q, want upload", child.ImageKind)
	}

	list, err := svc.ListMembers(ctx)
	if err != nil || len(list) != 2 || list[0].ID != root.ID {
		t.Errorf("ListMembers() = %v, %v", list, err)
	}
}

func TestCreateMember_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)
	missing := "no-such-member"
	long := make([]rune, config.MaxMemberNameLength+1)
	for i := range long {
		long[i] = 'x'
	}

	tests := []struct {
		name string
		req  models.CreateMemberRequest
	}{
		{"empty name", models.CreateMemberRequest{Name: ""}},
		{"blank name", models.CreateMemberRequest{Name: "   "}},
		{"markup only", models.CreateMemberRequest{Name: "<b></b>"}},
		{"name too long", models.CreateMemberRequest{Name: string(long)}},
		{"unknown kind", models.CreateMemberRequest{Name: "A", ImageURL: "x", ImageKind: "video"}},
		{"dangling parent", models.CreateMemberRequest{Name: "A", ParentID: &missing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMember(ctx, &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateMember() error = %v, want ErrValidation", err)
			}
			if got := domain.CodeOf(err); got != domain.CodeValidation {
				t.Errorf("CodeOf() = %q, want %q", got, domain.CodeValidation)
			}
		})
	}

	list, _ := svc.ListMembers(ctx)
	if len(list) != 0 {
		t.Errorf("invalid creates stored %d members", len(list))
	}
}

func TestCreateMember_Markup(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)

	tests := []struct {
		name    string
		input   string
		want    string
		invalid bool
	}{
		{name: "ampersand", input: "Tom & Jerry", want: "Tom & Jerry"},
		{name: "heart", input: "a <3 b", want: "a <3 b"},
		{name: "arabic", input: " عبد الله ", want: "عبد الله"},
		{name: "less than", input: "x<y", invalid: true},
		{name: "angle brackets", input: "Ali <Abu Bakr>", invalid: true},
		{name: "script", input: `<script>x</script>Ali & <i>Sara</i>`, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: tt.input})
			if tt.invalid {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("CreateMember(%q) = %v, %v; want ErrValidation", tt.input, m, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateMember(%q) error = %v", tt.input, err)
			}
			if m.Name != tt.want {
				t.Errorf("Name = %q, want %q", m.Name, tt.want)
			}
		})
	}

	root, _ := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "Root"})
	markup := "Ali <Abu Bakr>"
	if _, err := svc.UpdateMember(ctx, root.ID, &models.UpdateMemberRequest{Name: &markup}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateMember(markup) error = %v, want ErrValidation", err)
	}
	if got, _ := svc.GetMember(ctx, root.ID); got.Name != "Root" {
		t.Errorf("rejected update changed name to %q", got.Name)
	}
}

func TestUpdateMember(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)
	root, _ := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "A"})
	child, _ := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "B", ParentID: &root.ID})

	name := "B2"
	url := "https://example.com/b.jpg"
	updated, err := svc.UpdateMember(ctx, child.ID, &models.UpdateMemberRequest{Name: &name, ImageURL: &url})
	if err != nil {
		t.Fatalf("UpdateMember() error = %v", err)
	}
	if updated.Name != "B2" || updated.ImageKind != models.ImageKindRemote || !updated.ParentIs(root.ID) {
		t.Errorf("UpdateMember() = %+v", updated)
	}

	// kind only: value kept, kind replaced
	kind := models.ImageKindAsset
	updated, err = svc.UpdateMember(ctx, child.ID, &models.UpdateMemberRequest{ImageKind: &kind})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ImageURL != url || updated.ImageKind != models.ImageKindAsset || updated.Name != "B2" {
		t.Errorf("UpdateMember(kind) = %+v", updated)
	}

	blank := " "
	if _, err := svc.UpdateMember(ctx, child.ID, &models.UpdateMemberRequest{Name: &blank}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("UpdateMember(blank) error = %v, want ErrValidation", err)
	}
	if _, err := svc.UpdateMember(ctx, "missing", &models.UpdateMemberRequest{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateMember(missing) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMember(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)
	root, _ := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "A"})
	child, _ := svc.CreateMember(ctx, &models.CreateMemberRequest{Name: "B", ParentID: &root.ID})

	err := svc.DeleteMember(ctx, root.ID)
	var hasChildren *domain.HasChildrenError
	if !errors.As(err, &hasChildren) || hasChildren.ChildrenCount != 1 {
		t.Fatalf("DeleteMember(root) error = %v, want HasChildrenError with 1 child", err)
	}

	if err := svc.DeleteMember(ctx, child.ID); err != nil {
		t.Fatalf("DeleteMember(child) error = %v", err)
	}
	if err := svc.DeleteMember(ctx, root.ID); err != nil {
		t.Fatalf("DeleteMember(root) error = %v", err)
	}
	if err := svc.DeleteMember(ctx, root.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("DeleteMember(gone) error = %v, want ErrNotFound", err)
	}
}

func TestEnsureRoot(t *testing.T) {
	ctx := context.Background()
	svc := newMemberService(t)

	root, err := svc.EnsureRoot(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if root == nil || root.Name != config.DefaultRootName || !root.IsRoot() {
		t.Fatalf("EnsureRoot() = %+v", root)
	}

	again, err := svc.EnsureRoot(ctx, "other")
	if err != nil || again != nil {
		t.Errorf("EnsureRoot() on populated tree = %v, %v; want nil, nil", again, err)
	}
}
