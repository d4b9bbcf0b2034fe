package storyhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rec(id, name, kind string) LeafRecord {
	return LeafRecord{ID: id, Name: name, Kind: kind}
}

func boolPtr(b bool) *bool {
	return &b
}

func mustBuild(t *testing.T, opts Options, records ...LeafRecord) *Hash {
	t.Helper()
	h, err := NewBuilder(opts).Build(records)
	require.NoError(t, err)
	require.NotNil(t, h)
	return h
}

func mustGet[T Item](t *testing.T, h *Hash, id string) T {
	t.Helper()
	item, ok := h.Get(id)
	require.True(t, ok, "missing %q", id)
	typed, ok := item.(T)
	require.True(t, ok, "%q has type %T", id, item)
	return typed
}

// recordingNotifier keeps every notice, duplicates included.
type recordingNotifier struct {
	sites []string
}

func (n *recordingNotifier) Notify(site, _ string) {
	n.sites = append(n.sites, site)
}

func (n *recordingNotifier) count(site string) int {
	c := 0
	for _, s := range n.sites {
		if s == site {
			c++
		}
	}
	return c
}

// uiRecords is a small two-component library under one root.
func uiRecords() []LeafRecord {
	return []LeafRecord{
		rec("ui-button--basic", "Basic", "UI/Button"),
		rec("ui-button--primary", "Primary", "UI/Button"),
		rec("ui-input--text", "Text", "UI/Input"),
	}
}
