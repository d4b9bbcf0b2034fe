package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

// Summary describes one built hash.
type Summary struct {
	Ref        string        `json:"ref"`
	Roots      int           `json:"roots"`
	Groups     int           `json:"groups"`
	Components int           `json:"components"`
	Stories    int           `json:"stories"`
	DocsOnly   int           `json:"docs_only"`
	Duration   time.Duration `json:"duration_ns"`
}

// Summarize counts the items of h. Component and story counts come from
// views, so repeated calls for the same hash reuse the cached lists. A nil
// views uses a fresh cache.
func Summarize(ref string, h *storyhash.Hash, views *storyhash.Views, took time.Duration) Summary {
	if views == nil {
		views = storyhash.NewViews()
	}
	leafs := views.LeafIDs(h)
	s := Summary{
		Ref:        ref,
		Components: len(views.ComponentChildGroups(h)),
		Stories:    len(leafs),
		Duration:   took,
	}
	for _, item := range h.All() {
		switch item.(type) {
		case *storyhash.Root:
			s.Roots++
		case *storyhash.Group:
			s.Groups++
		}
	}
	for _, id := range leafs {
		item, _ := h.Get(id)
		if story, ok := item.(*storyhash.Story); ok && story.Parameters.DocsOnly {
			s.DocsOnly++
		}
	}
	return s
}

// SummaryRenderer displays build summaries.
type SummaryRenderer struct {
	out    io.Writer
	styles Styles
}

// NewSummaryRenderer creates a summary renderer.
func NewSummaryRenderer(cfg Config) *SummaryRenderer {
	return &SummaryRenderer{
		out:    cfg.Output,
		styles: cfg.Styles(),
	}
}

// Render writes one line per summary.
func (r *SummaryRenderer) Render(summaries ...Summary) error {
	for _, s := range summaries {
		_, err := fmt.Fprintf(r.out, "%s %s %s %s %s %s %s\n",
			r.styles.Header.Render(s.Ref+":"),
			r.field("roots", s.Roots),
			r.field("groups", s.Groups),
			r.field("components", s.Components),
			r.field("stories", s.Stories),
			r.field("docs", s.DocsOnly),
			r.styles.Label.Render("("+s.Duration.Round(time.Millisecond).String()+")"),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SummaryRenderer) field(label string, n int) string {
	return r.styles.Value.Render(fmt.Sprint(n)) + " " + r.styles.Label.Render(label)
}

// RenderJSON writes the summaries as a JSON array.
func (r *SummaryRenderer) RenderJSON(summaries ...Summary) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if summaries == nil {
		summaries = []Summary{}
	}
	return enc.Encode(summaries)
}
