package storyhash

import (
	"fmt"

	sterrors "github.com/Aman-CERP/storytree/internal/errors"
)

// Finalize freezes the staged nodes into a new Hash. Nodes are emitted
// depth-first, starting from each staged node in staging order and skipping
// ids already emitted. Groups whose children are all stories are marked as
// components. The staging area is left untouched, so Finalize may be
// called again after further Adds.
func (b *Builder) Finalize() (*Hash, error) {
	return finalize(b.staged)
}

func finalize(staged *Hash) (*Hash, error) {
	out := newHash(staged.Len())
	for _, id := range staged.keys {
		if err := emit(out, staged, staged.items[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// emit inserts item and, recursively, its children. The hierarchy is acyclic
// because ids strictly lengthen from parent to child.
func emit(out, staged *Hash, item Item) error {
	if out.has(item.ItemID()) {
		return nil
	}

	item = clone(item)
	out.set(item)

	kids, ok := children(item)
	if !ok {
		return nil
	}

	nodes := make([]Item, 0, len(kids))
	for _, id := range kids {
		child, found := staged.Get(id)
		if !found {
			return sterrors.New(sterrors.ErrCodeInternal,
				fmt.Sprintf("child %q of %q was never staged", id, item.ItemID()), nil).
				WithDetail("parent", item.ItemID()).
				WithDetail("child", id)
		}
		nodes = append(nodes, child)
	}

	if g, isGroup := item.(*Group); isGroup {
		g.IsComponent = allStories(nodes)
	}

	for _, child := range nodes {
		if err := emit(out, staged, child); err != nil {
			return err
		}
	}
	return nil
}

// allStories reports whether nodes is non-empty and holds only stories.
func allStories(nodes []Item) bool {
	if len(nodes) == 0 {
		return false
	}
	for _, n := range nodes {
		if !IsStory(n) {
			return false
		}
	}
	return true
}
