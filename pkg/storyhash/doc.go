// Package storyhash turns flat story records into the ordered, id-keyed tree
// index that drives a collapsible navigation sidebar.
//
// # Pipeline
//
// Records flow strictly forward through three stages:
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────┐
//	│  LeafRecord  │ ─▶ │   Builder    │ ─▶ │   Finalize   │ ─▶ *Hash
//	│ (normalized) │    │ (staging map)│    │ (DFS, flags) │
//	└──────────────┘    └──────────────┘    └──────────────┘
//
// The builder splits each record's kind path ("UI/Button") into segments,
// derives a stable id per segment, merges nodes reached through several
// records and attaches the story as a leaf. Finalize walks the staged
// nodes depth-first, marks groups whose children are all stories as
// components and freezes the result into a new Hash.
//
// # Items
//
// A Hash maps ids to exactly one Item, which is one of *Root, *Group or
// *Story. Use IsRoot, IsGroup and IsStory, or a type switch, to tell them
// apart.
//
// # Usage
//
//	b := storyhash.NewBuilder(storyhash.Options{Provider: provider})
//	h, err := b.Build(records)
//	if err != nil {
//	    var pce *storyhash.PathCollisionError
//	    if errors.As(err, &pce) {
//	        // pce.Kind, pce.Segment
//	    }
//	    return err
//	}
//
//	views := storyhash.NewViews()
//	leafs := views.LeafIDs(h)
//
// # Thread Safety
//
// A Builder must not be shared between goroutines. A finalized Hash is
// read-only and safe for concurrent readers. Views is safe for concurrent
// use.
package storyhash
