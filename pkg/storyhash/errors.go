package storyhash

import (
	"errors"
	"fmt"
)

// ErrPathCollision matches any *PathCollisionError with errors.Is.
var ErrPathCollision = errors.New("storyhash: id collides with another item")

// PathCollisionError reports an id that cannot be placed in the hash. Either
// a kind path segment derives the same id as its parent, which almost always
// means a delimiter character appears inside a segment's label, or a story
// and a group (or root) derive the same id. It aborts the whole build.
type PathCollisionError struct {
	// Kind is the raw kind path of the offending record.
	Kind string
	// Segment is the trimmed segment text that produced the collision.
	Segment string
	// ID is the colliding id.
	ID string
	// StoryID is the record being processed.
	StoryID string
	// With is the type ("root", "group" or "story") of the item that
	// already holds ID, or the clashing segment of the record itself. It is
	// empty when a segment collides with its parent.
	With string
}

func (e *PathCollisionError) Error() string {
	if e.With != "" {
		return fmt.Sprintf("id %q of story %q inside kind %q is already used by a %s", e.ID, e.StoryID, e.Kind, e.With)
	}
	return fmt.Sprintf("invalid part %q, leading to id === parentId (%q), inside kind %q", e.Segment, e.ID, e.Kind)
}

// Is reports whether target is ErrPathCollision.
func (e *PathCollisionError) Is(target error) bool {
	return target == ErrPathCollision
}
