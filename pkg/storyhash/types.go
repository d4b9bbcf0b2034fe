package storyhash

import (
	"encoding/json"
	"maps"
	"slices"
)

// LabelRenderer customizes how an item's label is shown in the sidebar.
type LabelRenderer func(item Item) string

// Parameters carries per-story metadata known before rendering.
type Parameters struct {
	// FileName is the import path of the file that declared the story.
	FileName string `json:"fileName,omitempty"`
	// DocsOnly marks entries that only render documentation.
	DocsOnly bool `json:"docsOnly,omitempty"`
	// ViewMode is the preferred view ("story" or "docs"); empty means default.
	ViewMode string `json:"viewMode,omitempty"`
	// Extra holds parameters this package does not interpret.
	Extra map[string]any `json:"extra,omitempty"`
}

// GroupParameters is the subset of story parameters copied onto groups.
type GroupParameters struct {
	DocsOnly bool   `json:"docsOnly,omitempty"`
	ViewMode string `json:"viewMode,omitempty"`
}

// LeafRecord is a single normalized story before tree construction.
type LeafRecord struct {
	ID         string
	Name       string
	Kind       string // raw delimited path, e.g. "UI/Button"
	Parameters Parameters
	Args       map[string]any
	ArgTypes   map[string]any
}

// Item is one entry of a Hash. It is implemented only by *Root, *Group
// and *Story.
type Item interface {
	ItemID() string
	item()
}

// Root is a top-level category.
type Root struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Depth          int           `json:"depth"`
	Children       []string      `json:"children"`
	StartCollapsed bool          `json:"startCollapsed,omitempty"`
	RenderLabel    LabelRenderer `json:"-"`
}

// Group is an intermediate node. Parent is empty when no root precedes it.
type Group struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Parent      string          `json:"parent,omitempty"`
	Depth       int             `json:"depth"`
	Children    []string        `json:"children"`
	IsComponent bool            `json:"isComponent"`
	Parameters  GroupParameters `json:"parameters"`
	RenderLabel LabelRenderer   `json:"-"`
}

// Story is a leaf. Prepared reports whether full story metadata (args,
// argTypes) was available when the item was built, as opposed to a
// placeholder derived from the index alone.
type Story struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	Parent      string         `json:"parent,omitempty"`
	Depth       int            `json:"depth"`
	Prepared    bool           `json:"prepared"`
	Parameters  Parameters     `json:"parameters"`
	Args        map[string]any `json:"args,omitempty"`
	ArgTypes    map[string]any `json:"argTypes,omitempty"`
	RenderLabel LabelRenderer  `json:"-"`
}

func (r *Root) ItemID() string  { return r.ID }
func (g *Group) ItemID() string { return g.ID }
func (s *Story) ItemID() string { return s.ID }

func (*Root) item()  {}
func (*Group) item() {}
func (*Story) item() {}

// MarshalJSON adds the type tag and the flag fields sidebar clients key on.
func (r *Root) MarshalJSON() ([]byte, error) {
	type alias Root
	return json.Marshal(struct {
		Type        string `json:"type"`
		IsRoot      bool   `json:"isRoot"`
		IsLeaf      bool   `json:"isLeaf"`
		IsComponent bool   `json:"isComponent"`
		*alias
	}{"root", true, false, false, (*alias)(r)})
}

// MarshalJSON adds the type tag and the flag fields sidebar clients key on.
func (g *Group) MarshalJSON() ([]byte, error) {
	type alias Group
	return json.Marshal(struct {
		Type   string `json:"type"`
		IsRoot bool   `json:"isRoot"`
		IsLeaf bool   `json:"isLeaf"`
		*alias
	}{"group", false, false, (*alias)(g)})
}

// MarshalJSON adds the type tag and the flag fields sidebar clients key on.
func (s *Story) MarshalJSON() ([]byte, error) {
	type alias Story
	return json.Marshal(struct {
		Type        string `json:"type"`
		IsRoot      bool   `json:"isRoot"`
		IsLeaf      bool   `json:"isLeaf"`
		IsComponent bool   `json:"isComponent"`
		*alias
	}{"story", false, true, false, (*alias)(s)})
}

// clone returns a copy that shares no slices or maps with it.
func clone(it Item) Item {
	switch v := it.(type) {
	case *Root:
		c := *v
		c.Children = slices.Clone(v.Children)
		return &c
	case *Group:
		c := *v
		c.Children = slices.Clone(v.Children)
		return &c
	case *Story:
		c := *v
		c.Parameters.Extra = maps.Clone(v.Parameters.Extra)
		c.Args = maps.Clone(v.Args)
		c.ArgTypes = maps.Clone(v.ArgTypes)
		return &c
	default:
		return it
	}
}

// typeName returns the type tag used in JSON output.
func typeName(it Item) string {
	switch it.(type) {
	case *Root:
		return "root"
	case *Group:
		return "group"
	default:
		return "story"
	}
}

// children returns the child ids of containers, and ok=false for stories.
func children(it Item) (ids []string, ok bool) {
	switch v := it.(type) {
	case *Root:
		return v.Children, true
	case *Group:
		return v.Children, true
	default:
		return nil, false
	}
}
