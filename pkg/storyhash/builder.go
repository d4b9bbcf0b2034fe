package storyhash

import (
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var (
	// kindSeparator splits kind paths; whitespace around '/' is ignored.
	kindSeparator = regexp.MustCompile(`\s*/\s*`)
	// legacySeparator matches the pre-'/' hierarchy separators.
	legacySeparator = regexp.MustCompile(`[.|]`)
)

const (
	msgDeprecatedShowRoots = "the top-level 'show_roots' option is deprecated, use 'sidebar.show_roots' instead"
	msgLegacySeparator     = "kind paths use '.' or '|', which are no longer hierarchy separators; " +
		"use '/' to nest entries, or set 'sidebar.show_roots' explicitly to silence this notice"
)

// Options configures a Builder.
type Options struct {
	// Provider supplies sidebar settings. Nil means default settings.
	Provider ConfigProvider
	// Features holds process-wide feature flags.
	Features Features
	// Notifier receives deprecation notices. Nil drops them.
	Notifier Notifier
	// Prepared marks built stories as carrying full metadata rather than
	// index-only placeholders.
	Prepared bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Builder stages records into a loosely connected node map. Call Finalize
// (or use Build) to obtain the ordered, classified Hash.
type Builder struct {
	opts   Options
	logger *slog.Logger
	staged *Hash
}

// NewBuilder creates a Builder with an empty staging area.
func NewBuilder(opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		opts:   opts,
		logger: logger,
		staged: newHash(0),
	}
}

// Build stages records from scratch and finalizes them. On error no hash
// is returned and the builder is left empty.
func (b *Builder) Build(records []LeafRecord) (*Hash, error) {
	b.Reset()
	if err := b.Add(records...); err != nil {
		return nil, err
	}
	return b.Finalize()
}

// Reset discards all staged nodes.
func (b *Builder) Reset() {
	b.staged = newHash(0)
}

// Staged returns the number of staged nodes (groups, roots and stories).
func (b *Builder) Staged() int {
	return b.staged.Len()
}

// Add stages records in order. A *PathCollisionError aborts the call and
// discards everything staged so far, including earlier calls.
func (b *Builder) Add(records ...LeafRecord) error {
	legacy := slices.ContainsFunc(records, func(r LeafRecord) bool {
		return legacySeparator.MatchString(r.Kind)
	})

	for _, rec := range records {
		if err := b.add(rec, legacy); err != nil {
			b.Reset()
			b.logger.Debug("story hash build aborted",
				slog.String("story", rec.ID),
				slog.String("kind", rec.Kind),
				slog.String("error", err.Error()))
			return err
		}
	}
	return nil
}

func (b *Builder) add(rec LeafRecord, legacy bool) error {
	settings := b.settings()
	if settings.DeprecatedShowRoots != nil {
		b.notify(SiteDeprecatedShowRoots, msgDeprecatedShowRoots)
	}

	showRoots := settings.effectiveShowRoots()
	if legacy && showRoots == nil && b.opts.Features.WarnOnLegacyHierarchySeparator {
		b.notify(SiteLegacySeparator, msgLegacySeparator)
	}

	segments := splitKind(rec.Kind)
	promote := (showRoots == nil || *showRoots) && len(segments) > 1

	nodes := make([]Item, 0, len(segments))
	parent := ""
	for depth, name := range segments {
		id := segmentID(parent, name)
		if id == parent {
			return &PathCollisionError{Kind: rec.Kind, Segment: name, ID: id, StoryID: rec.ID}
		}

		if promote && depth == 0 {
			nodes = append(nodes, &Root{
				ID:             id,
				Name:           name,
				Depth:          0,
				StartCollapsed: settings.collapsed(id),
				RenderLabel:    settings.Sidebar.RenderLabel,
			})
		} else {
			nodes = append(nodes, &Group{
				ID:     id,
				Name:   name,
				Parent: parent,
				Depth:  depth,
				Parameters: GroupParameters{
					DocsOnly: rec.Parameters.DocsOnly,
					ViewMode: rec.Parameters.ViewMode,
				},
				RenderLabel: settings.Sidebar.RenderLabel,
			})
		}
		parent = id
	}

	if err := b.checkClashes(rec, segments, nodes); err != nil {
		return err
	}

	for i, node := range nodes {
		child := rec.ID
		if i+1 < len(nodes) {
			child = nodes[i+1].ItemID()
		}
		b.merge(node, child)
	}

	params := rec.Parameters
	params.Extra = maps.Clone(rec.Parameters.Extra)
	b.staged.set(&Story{
		ID:          rec.ID,
		Name:        rec.Name,
		Kind:        rec.Kind,
		Parent:      parent,
		Depth:       len(nodes),
		Prepared:    b.opts.Prepared,
		Parameters:  params,
		Args:        maps.Clone(rec.Args),
		ArgTypes:    maps.Clone(rec.ArgTypes),
		RenderLabel: settings.Sidebar.RenderLabel,
	})
	return nil
}

// checkClashes rejects a record whose story id is shared with a segment
// node, either one of its own or one staged earlier, and segment nodes
// whose id already belongs to a staged story.
func (b *Builder) checkClashes(rec LeafRecord, segments []string, nodes []Item) error {
	for i, node := range nodes {
		clash := &PathCollisionError{Kind: rec.Kind, Segment: segments[i], ID: node.ItemID(), StoryID: rec.ID}
		if node.ItemID() == rec.ID {
			clash.With = typeName(node)
			return clash
		}
		if existing, ok := b.staged.Get(node.ItemID()); ok && IsStory(existing) {
			clash.With = typeName(existing)
			return clash
		}
	}
	if existing, ok := b.staged.Get(rec.ID); ok && !IsStory(existing) {
		return &PathCollisionError{Kind: rec.Kind, ID: rec.ID, StoryID: rec.ID, With: typeName(existing)}
	}
	return nil
}

// merge stores node, keeping the children of any container already staged
// under the same id. Children are unioned in first-seen order; every other
// field takes the latest value.
func (b *Builder) merge(node Item, child string) {
	var kids []string
	if existing, ok := b.staged.Get(node.ItemID()); ok {
		if prev, isContainer := children(existing); isContainer {
			kids = slices.Clone(prev)
		}
	}
	if !slices.Contains(kids, child) {
		kids = append(kids, child)
	}

	switch n := node.(type) {
	case *Root:
		n.Children = kids
	case *Group:
		n.Children = kids
	}
	b.staged.set(node)
}

func (b *Builder) settings() Settings {
	if b.opts.Provider == nil {
		return Settings{}
	}
	return b.opts.Provider.GetConfig()
}

func (b *Builder) notify(site, message string) {
	if b.opts.Notifier != nil {
		b.opts.Notifier.Notify(site, message)
	}
}

// splitKind trims a kind path and splits it into segments. An empty path
// has no segments.
func splitKind(kind string) []string {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil
	}
	return kindSeparator.Split(kind, -1)
}
