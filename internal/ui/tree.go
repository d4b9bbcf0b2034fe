package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	pipe       = "│   "
	gap        = "    "
)

// TreeRenderer prints a built hash as an indented tree.
type TreeRenderer struct {
	out     io.Writer
	styles  Styles
	showIDs bool
}

// NewTreeRenderer creates a tree renderer for cfg.
func NewTreeRenderer(cfg Config) *TreeRenderer {
	return &TreeRenderer{
		out:     cfg.Output,
		styles:  cfg.Styles(),
		showIDs: cfg.ShowIDs,
	}
}

// Render writes every top-level item of h and its descendants in hash order.
func (r *TreeRenderer) Render(h *storyhash.Hash) error {
	var b strings.Builder
	for _, id := range storyhash.Roots(h) {
		r.renderItem(&b, h, id, "", "")
	}
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *TreeRenderer) renderItem(b *strings.Builder, h *storyhash.Hash, id, branch, indent string) {
	item, ok := h.Get(id)
	if !ok {
		return
	}

	b.WriteString(r.styles.Branch.Render(branch))
	b.WriteString(r.label(item))
	b.WriteByte('\n')

	kids := childIDs(item)
	for i, kid := range kids {
		if i == len(kids)-1 {
			r.renderItem(b, h, kid, indent+branchLast, indent+gap)
		} else {
			r.renderItem(b, h, kid, indent+branchMid, indent+pipe)
		}
	}
}

func (r *TreeRenderer) label(item storyhash.Item) string {
	var text string
	switch v := item.(type) {
	case *storyhash.Root:
		text = r.styles.Root.Render(labelText(v.RenderLabel, item, v.Name))
		if v.StartCollapsed {
			text += r.styles.ID.Render(" (collapsed)")
		}
	case *storyhash.Group:
		name := labelText(v.RenderLabel, item, v.Name)
		if v.IsComponent {
			text = r.styles.Component.Render(name)
		} else {
			text = r.styles.Group.Render(name)
		}
	case *storyhash.Story:
		text = r.styles.Story.Render(labelText(v.RenderLabel, item, v.Name))
		if v.Parameters.DocsOnly {
			text += " " + r.styles.Docs.Render("[docs]")
		}
	}
	if r.showIDs {
		text += r.styles.ID.Render(fmt.Sprintf(" (%s)", item.ItemID()))
	}
	return text
}

func labelText(render storyhash.LabelRenderer, item storyhash.Item, name string) string {
	if render != nil {
		return render(item)
	}
	return name
}

func childIDs(item storyhash.Item) []string {
	switch v := item.(type) {
	case *storyhash.Root:
		return v.Children
	case *storyhash.Group:
		return v.Children
	default:
		return nil
	}
}
