package familytree

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"

	"familytree/internal/domain/models"
)

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := NewState()
	s.Expanded = NewIDSet("a")

	next := Reduce(s, ToggleExpanded{ID: "b"})

	if s.IsExpanded("b") {
		t.Error("Reduce() modified input state")
	}
	if !next.IsExpanded("a") || !next.IsExpanded("b") {
		t.Errorf("expanded = %v, want [a b]", next.Expanded.Slice())
	}
}

func TestReduce_ZeroStateIsUsable(t *testing.T) {
	next := Reduce(State{}, ToggleExpanded{ID: "x"})
	if !next.IsExpanded("x") {
		t.Error("toggle on zero state did not expand")
	}
}

func TestToggleExpanded(t *testing.T) {
	v := NewViewState(NewState())

	v.ToggleExpanded("1")
	if !v.State().IsExpanded("1") {
		t.Fatal("first toggle should expand")
	}
	v.ToggleExpanded("1")
	if v.State().IsExpanded("1") {
		t.Error("second toggle should collapse")
	}
}

func TestSetViewRootAndResetExpansion(t *testing.T) {
	v := NewViewState(NewState())
	v.ToggleExpanded("old")

	v.SetViewRoot("anything")
	v.ResetExpansion("n1", "n2")

	s := v.State()
	if s.ViewRootID != "anything" {
		t.Errorf("ViewRootID = %q, want anything", s.ViewRootID)
	}
	if got, want := s.Expanded.Slice(), []string{"n1", "n2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expanded = %v, want %v", got, want)
	}
}

func TestRepairAfterReload(t *testing.T) {
	members := []models.Member{
		member("c", "p", "child"),
		member("p", "", "parent"),
	}

	tests := []struct {
		name         string
		viewRoot     string
		expanded     []string
		members      []models.Member
		wantRoot     string
		wantExpanded []string
	}{
		{name: "unset picks parentless", viewRoot: "", members: members, wantRoot: "p", wantExpanded: []string{"p"}},
		{name: "missing picks parentless", viewRoot: "gone", expanded: []string{"gone", "c"}, members: members, wantRoot: "p", wantExpanded: []string{"p"}},
		{name: "present keeps state", viewRoot: "c", expanded: []string{"c", "x"}, members: members, wantRoot: "c", wantExpanded: []string{"c", "x"}},
		{name: "no parentless picks first", viewRoot: "gone", members: []models.Member{member("a", "z", "a"), member("b", "a", "b")}, wantRoot: "a", wantExpanded: []string{"a"}},
		{name: "empty list clears", viewRoot: "gone", expanded: []string{"gone"}, members: nil, wantRoot: "", wantExpanded: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.ViewRootID = tt.viewRoot
			s.Expanded = NewIDSet(tt.expanded...)

			got := Reduce(s, RepairAfterReload{Members: tt.members})
			if got.ViewRootID != tt.wantRoot {
				t.Errorf("ViewRootID = %q, want %q", got.ViewRootID, tt.wantRoot)
			}
			if !reflect.DeepEqual(got.Expanded.Slice(), tt.wantExpanded) {
				t.Errorf("expanded = %v, want %v", got.Expanded.Slice(), tt.wantExpanded)
			}
		})
	}
}

func TestZoom(t *testing.T) {
	tests := []struct {
		name    string
		start   float64
		actions []Action
		want    float64
	}{
		{name: "in", start: 1, actions: []Action{ZoomIn{}}, want: 1.1},
		{name: "out", start: 1, actions: []Action{ZoomOut{}, ZoomOut{}}, want: 0.8},
		{name: "clamped high", start: 1.95, actions: []Action{ZoomIn{}, ZoomIn{}}, want: 2},
		{name: "clamped low", start: 0.55, actions: []Action{ZoomOut{}, ZoomOut{}}, want: 0.5},
		{name: "reset", start: 1.7, actions: []Action{ZoomReset{}}, want: 1},
		{name: "rounded", start: 1, actions: []Action{ZoomIn{}, ZoomIn{}, ZoomIn{}}, want: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.Zoom = tt.start
			for _, a := range tt.actions {
				s = Reduce(s, a)
			}
			if s.Zoom != tt.want {
				t.Errorf("Zoom = %v, want %v", s.Zoom, tt.want)
			}
		})
	}
}

func TestTitleAndFont(t *testing.T) {
	s := NewState()

	s = Reduce(s, SetTreeName{Name: "My tree"})
	s = Reduce(s, SetTreeName{Name: ""})
	if s.TreeName != "My tree" {
		t.Errorf("TreeName = %q, want My tree", s.TreeName)
	}

	s = Reduce(s, SetTitleFont{Font: "DiwaniBent"})
	s = Reduce(s, SetTitleFont{Font: "Comic Sans"})
	if s.TitleFont != "DiwaniBent" {
		t.Errorf("TitleFont = %q, want DiwaniBent", s.TitleFont)
	}
}

func TestStateYAMLRoundTrip(t *testing.T) {
	s := NewState()
	s.ViewRootID = "abc"
	s.Expanded = NewIDSet("b", "a")
	s.Zoom = 1.4
	s.TitleFont = "JassminTypo"

	data, err := MarshalState(s)
	if err != nil {
		t.Fatalf("MarshalState() error = %v", err)
	}
	got, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("UnmarshalState() error = %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip = %+v, want %+v", got, s)
	}
}

func TestUnmarshalStateFillsDefaults(t *testing.T) {
	got, err := UnmarshalState([]byte("view_root_id: x\nzoom: 9\ntitle_font: Unknown\n"))
	if err != nil {
		t.Fatalf("UnmarshalState() error = %v", err)
	}
	if got.Zoom != MaxZoom {
		t.Errorf("Zoom = %v, want %v", got.Zoom, MaxZoom)
	}
	if got.TreeName != DefaultTreeName || got.TitleFont != DefaultTitleFont {
		t.Errorf("defaults not applied: %+v", got)
	}
	if got.Expanded == nil {
		t.Error("Expanded is nil, want empty set")
	}
}

func TestIDSetJSON(t *testing.T) {
	data, err := json.Marshal(NewIDSet("z", "a"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["a","z"]` {
		t.Errorf("json = %s, want sorted list", data)
	}

	var s IDSet
	if err := json.Unmarshal([]byte(`["q"]`), &s); err != nil {
		t.Fatal(err)
	}
	if !s.Has("q") {
		t.Error("unmarshalled set missing q")
	}
}

func TestStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "view.yaml")

	s, err := LoadStateFile(path)
	if err != nil {
		t.Fatalf("LoadStateFile(missing) error = %v", err)
	}
	if !reflect.DeepEqual(s, NewState()) {
		t.Errorf("missing file state = %+v, want NewState()", s)
	}

	s.ViewRootID = "r"
	s.Expanded = NewIDSet("r")
	if err := SaveStateFile(path, s); err != nil {
		t.Fatalf("SaveStateFile() error = %v", err)
	}

	loaded, err := LoadStateFile(path)
	if err != nil {
		t.Fatalf("LoadStateFile() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, s) {
		t.Errorf("loaded = %+v, want %+v", loaded, s)
	}
}
