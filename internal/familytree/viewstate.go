package familytree

import (
	"encoding/json"
	"math"
	"sort"

	"familytree/internal/domain/models"

	"gopkg.in/yaml.v3"
)

// View defaults
const (
	DefaultTreeName  = "شجرة عائلة الزهيران"
	DefaultTitleFont = "Cairo"

	ZoomStep    = 0.1
	MinZoom     = 0.5
	MaxZoom     = 2.0
	DefaultZoom = 1.0
)

// TitleFonts lists the fonts available for the tree title
var TitleFonts = []string{"Cairo", "DecoThuluth", "DiwaniBent", "JassminTypo"}

// IDSet is a set of member ids. It serializes as a sorted list.
type IDSet map[string]struct{}

// NewIDSet returns a set holding ids
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Slice returns the ids in sorted order
func (s IDSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

func (s IDSet) MarshalYAML() (interface{}, error) {
	return s.Slice(), nil
}

func (s *IDSet) UnmarshalYAML(value *yaml.Node) error {
	var ids []string
	if err := value.Decode(&ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// State is the client-side view of the tree. Values are treated as immutable:
// Reduce always returns a new State and never modifies its input.
type State struct {
	ViewRootID string  `json:"view_root_id" yaml:"view_root_id"`
	Expanded   IDSet   `json:"expanded" yaml:"expanded"`
	Zoom       float64 `json:"zoom" yaml:"zoom"`
	TreeName   string  `json:"tree_name" yaml:"tree_name"`
	TitleFont  string  `json:"title_font" yaml:"title_font"`
}

// NewState returns the initial view: no root, nothing expanded, zoom 1
func NewState() State {
	return State{
		Expanded:  IDSet{},
		Zoom:      DefaultZoom,
		TreeName:  DefaultTreeName,
		TitleFont: DefaultTitleFont,
	}
}

// IsExpanded reports whether id currently shows its children
func (s State) IsExpanded(id string) bool {
	return s.Expanded.Has(id)
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	out := s
	out.Expanded = s.Expanded.clone()
	return out
}

// normalize fills zero values with defaults after deserialization
func (s State) normalize() State {
	if s.Expanded == nil {
		s.Expanded = IDSet{}
	}
	if s.Zoom == 0 {
		s.Zoom = DefaultZoom
	}
	s.Zoom = clampZoom(s.Zoom)
	if s.TreeName == "" {
		s.TreeName = DefaultTreeName
	}
	if !ValidTitleFont(s.TitleFont) {
		s.TitleFont = DefaultTitleFont
	}
	return s
}

// Action is one view update
type Action interface {
	apply(s State) State
}

type (
	// SetViewRoot replaces the display root unconditionally
	SetViewRoot struct{ ID string }

	// ToggleExpanded flips membership of ID in the expanded set
	ToggleExpanded struct{ ID string }

	// Expand adds ID to the expanded set if missing
	Expand struct{ ID string }

	// ResetExpansion replaces the expanded set wholesale
	ResetExpansion struct{ IDs []string }

	// RepairAfterReload moves the display root to a fallback when it no longer
	// exists in Members, expanding only that fallback
	RepairAfterReload struct{ Members []models.Member }

	// ZoomIn and ZoomOut change zoom by ZoomStep within [MinZoom, MaxZoom]
	ZoomIn    struct{}
	ZoomOut   struct{}
	ZoomReset struct{}

	// SetTreeName renames the tree title; blank names are ignored
	SetTreeName struct{ Name string }

	// SetTitleFont picks one of TitleFonts; unknown fonts are ignored
	SetTitleFont struct{ Font string }
)

// Reduce applies a to s and returns the resulting state
func Reduce(s State, a Action) State {
	return a.apply(s.Clone())
}

func (a SetViewRoot) apply(s State) State {
	s.ViewRootID = a.ID
	return s
}

func (a ToggleExpanded) apply(s State) State {
	if s.Expanded.Has(a.ID) {
		delete(s.Expanded, a.ID)
	} else {
		s.Expanded[a.ID] = struct{}{}
	}
	return s
}

func (a Expand) apply(s State) State {
	if a.ID != "" {
		s.Expanded[a.ID] = struct{}{}
	}
	return s
}

func (a ResetExpansion) apply(s State) State {
	s.Expanded = NewIDSet(a.IDs...)
	return s
}

func (a RepairAfterReload) apply(s State) State {
	if s.ViewRootID != "" && containsMember(a.Members, s.ViewRootID) {
		return s
	}
	fallback := FallbackRoot(a.Members)
	s.ViewRootID = fallback
	s.Expanded = NewIDSet(fallback)
	return s
}

func (ZoomIn) apply(s State) State {
	s.Zoom = clampZoom(s.Zoom + ZoomStep)
	return s
}

func (ZoomOut) apply(s State) State {
	s.Zoom = clampZoom(s.Zoom - ZoomStep)
	return s
}

func (ZoomReset) apply(s State) State {
	s.Zoom = DefaultZoom
	return s
}

func (a SetTreeName) apply(s State) State {
	if a.Name != "" {
		s.TreeName = a.Name
	}
	return s
}

func (a SetTitleFont) apply(s State) State {
	if ValidTitleFont(a.Font) {
		s.TitleFont = a.Font
	}
	return s
}

// ValidTitleFont reports whether font is one of TitleFonts
func ValidTitleFont(font string) bool {
	for _, f := range TitleFonts {
		if f == font {
			return true
		}
	}
	return false
}

// clampZoom bounds z to [MinZoom, MaxZoom] rounded to two decimals
func clampZoom(z float64) float64 {
	z = math.Round(z*100) / 100
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// ViewState holds the current State and applies actions to it
type ViewState struct {
	state State
}

// NewViewState starts from initial
func NewViewState(initial State) *ViewState {
	return &ViewState{state: initial.normalize()}
}

// Dispatch applies a and returns the new state
func (v *ViewState) Dispatch(a Action) State {
	v.state = Reduce(v.state, a)
	return v.state.Clone()
}

// State returns a copy of the current state
func (v *ViewState) State() State {
	return v.state.Clone()
}

func (v *ViewState) SetViewRoot(id string) {
	v.Dispatch(SetViewRoot{ID: id})
}

func (v *ViewState) ToggleExpanded(id string) {
	v.Dispatch(ToggleExpanded{ID: id})
}

func (v *ViewState) ResetExpansion(ids ...string) {
	v.Dispatch(ResetExpansion{IDs: ids})
}

func (v *ViewState) RepairAfterReload(members []models.Member) {
	v.Dispatch(RepairAfterReload{Members: members})
}

// MarshalState encodes s as YAML for persistence between sessions
func MarshalState(s State) ([]byte, error) {
	return yaml.Marshal(s)
}

// UnmarshalState decodes a persisted state, filling defaults for missing fields
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	return s.normalize(), nil
}
