package storyhash

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Hash is an ordered mapping from id to Item. Iteration follows insertion
// order, which for a finalized hash is depth-first tree order.
//
// A Hash returned by Finalize or Build is read-only. Its identity is the
// cache key used by Views, so callers must not modify items in place.
type Hash struct {
	keys  []string
	items map[string]Item
}

func newHash(capacity int) *Hash {
	return &Hash{
		keys:  make([]string, 0, capacity),
		items: make(map[string]Item, capacity),
	}
}

// set inserts or replaces an item. Replacing keeps the original position.
func (h *Hash) set(it Item) {
	id := it.ItemID()
	if _, ok := h.items[id]; !ok {
		h.keys = append(h.keys, id)
	}
	h.items[id] = it
}

func (h *Hash) has(id string) bool {
	_, ok := h.items[id]
	return ok
}

// Get returns the item stored under id.
func (h *Hash) Get(id string) (Item, bool) {
	if h == nil {
		return nil, false
	}
	it, ok := h.items[id]
	return it, ok
}

// Len returns the number of items.
func (h *Hash) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Keys returns all ids in insertion order.
func (h *Hash) Keys() []string {
	if h == nil {
		return nil
	}
	return slices.Clone(h.keys)
}

// All iterates over ids and items in insertion order.
func (h *Hash) All() iter.Seq2[string, Item] {
	return func(yield func(string, Item) bool) {
		if h == nil {
			return
		}
		for _, id := range h.keys {
			if !yield(id, h.items[id]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the hash as a JSON object whose keys keep insertion order.
func (h *Hash) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range h.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(h.items[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
