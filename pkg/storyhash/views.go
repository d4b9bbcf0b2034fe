package storyhash

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

// viewCacheSize keeps exactly one prior result per view: asking for a
// different hash evicts the previous entry.
const viewCacheSize = 1

// Views memoizes derived lists keyed by the identity of the *Hash passed in.
// A freshly built hash always misses, even if its content equals the cached
// one. Returned slices are shared between calls and must not be modified.
type Views struct {
	components *lru.Cache[*Hash, [][]string]
	leafs      *lru.Cache[*Hash, []string]
}

// NewViews creates an empty view cache.
func NewViews() *Views {
	components, _ := lru.New[*Hash, [][]string](viewCacheSize)
	leafs, _ := lru.New[*Hash, []string](viewCacheSize)
	return &Views{
		components: components,
		leafs:      leafs,
	}
}

// ComponentChildGroups returns, for every component in h, its ordered
// children ids. One list per component, in hash order.
func (v *Views) ComponentChildGroups(h *Hash) [][]string {
	if groups, ok := v.components.Get(h); ok {
		return groups
	}

	groups := make([][]string, 0)
	for _, item := range h.All() {
		if g, ok := item.(*Group); ok && g.IsComponent {
			groups = append(groups, slices.Clone(g.Children))
		}
	}
	v.components.Add(h, groups)
	return groups
}

// LeafIDs returns every id whose item has no children collection at all.
// Groups with an empty children list are not leafs.
func (v *Views) LeafIDs(h *Hash) []string {
	if ids, ok := v.leafs.Get(h); ok {
		return ids
	}

	ids := make([]string, 0)
	for id, item := range h.All() {
		if _, isContainer := children(item); !isContainer {
			ids = append(ids, id)
		}
	}
	v.leafs.Add(h, ids)
	return ids
}

// Reset drops all memoized results.
func (v *Views) Reset() {
	v.components.Purge()
	v.leafs.Purge()
}

// Cached reports whether both views currently hold a result for h.
func (v *Views) Cached(h *Hash) bool {
	return v.components.Contains(h) && v.leafs.Contains(h)
}
