package storyhash

// IsRoot reports whether item is a top-level category.
func IsRoot(item Item) bool {
	switch item.(type) {
	case *Root:
		return true
	default:
		return false
	}
}

// IsGroup reports whether item is neither a root nor a leaf.
func IsGroup(item Item) bool {
	switch item.(type) {
	case *Group:
		return true
	default:
		return false
	}
}

// IsStory reports whether item is a leaf.
func IsStory(item Item) bool {
	switch item.(type) {
	case *Story:
		return true
	default:
		return false
	}
}

// IsComponent reports whether item is a group whose children are all stories.
func IsComponent(item Item) bool {
	g, ok := item.(*Group)
	return ok && g.IsComponent
}
