package storyhash

// parentID returns the parent id of item, or "" for roots and top-level items.
func parentID(item Item) string {
	switch v := item.(type) {
	case *Group:
		return v.Parent
	case *Story:
		return v.Parent
	default:
		return ""
	}
}

// Parent returns the parent item of id.
func Parent(h *Hash, id string) (Item, bool) {
	item, ok := h.Get(id)
	if !ok {
		return nil, false
	}
	p := parentID(item)
	if p == "" {
		return nil, false
	}
	return h.Get(p)
}

// Ancestors returns the ancestors of id, nearest first.
func Ancestors(h *Hash, id string) []Item {
	var out []Item
	for {
		p, ok := Parent(h, id)
		if !ok {
			return out
		}
		out = append(out, p)
		id = p.ItemID()
	}
}

// DescendantIDs returns the ids below id in depth-first order. With
// skipLeafs, stories are left out but still traversed through their groups.
func DescendantIDs(h *Hash, id string, skipLeafs bool) []string {
	item, ok := h.Get(id)
	if !ok {
		return nil
	}
	var out []string
	var walk func(Item)
	walk = func(it Item) {
		kids, _ := children(it)
		for _, cid := range kids {
			child, ok := h.Get(cid)
			if !ok {
				continue
			}
			if !skipLeafs || !IsStory(child) {
				out = append(out, cid)
			}
			walk(child)
		}
	}
	walk(item)
	return out
}

// Path returns the names from the top-level ancestor down to id.
func Path(h *Hash, id string) []string {
	item, ok := h.Get(id)
	if !ok {
		return nil
	}
	ancestors := Ancestors(h, id)
	names := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		names = append(names, itemName(ancestors[i]))
	}
	return append(names, itemName(item))
}

// Roots returns the ids of top-level items (roots, parentless groups and
// parentless stories) in hash order.
func Roots(h *Hash) []string {
	var ids []string
	for id, item := range h.All() {
		if parentID(item) == "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func itemName(item Item) string {
	switch v := item.(type) {
	case *Root:
		return v.Name
	case *Group:
		return v.Name
	case *Story:
		return v.Name
	default:
		return ""
	}
}
