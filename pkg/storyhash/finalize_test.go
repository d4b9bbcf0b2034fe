package storyhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sterrors "github.com/Aman-CERP/storytree/internal/errors"
)

func TestFinalize_MissingChild_ReturnsInternalError(t *testing.T) {
	// Given: a staged group pointing at an id that was never staged
	staged := newHash(1)
	staged.set(&Group{ID: "g", Name: "G", Children: []string{"missing"}})

	// When: finalizing
	h, err := finalize(staged)

	// Then: an internal error names both ids
	require.Error(t, err)
	assert.Nil(t, h)
	se, ok := sterrors.As(err)
	require.True(t, ok)
	assert.Equal(t, sterrors.ErrCodeInternal, se.Code)
	assert.Equal(t, "g", se.Details["parent"])
	assert.Equal(t, "missing", se.Details["child"])
}

func TestFinalize_EmptyGroup_IsNotComponent(t *testing.T) {
	staged := newHash(1)
	staged.set(&Group{ID: "g", Name: "G", Children: []string{}})

	h, err := finalize(staged)

	require.NoError(t, err)
	assert.False(t, mustGet[*Group](t, h, "g").IsComponent)
}

func TestFinalize_RootWithOnlyStories_IsNotComponent(t *testing.T) {
	staged := newHash(2)
	staged.set(&Root{ID: "r", Name: "R", Children: []string{"s"}})
	staged.set(&Story{ID: "s", Name: "S", Parent: "r", Depth: 1})

	h, err := finalize(staged)

	require.NoError(t, err)
	assert.False(t, IsComponent(mustGet[*Root](t, h, "r")))
}

func TestFinalize_IncludesEveryStagedItemOnce(t *testing.T) {
	b := NewBuilder(Options{})
	require.NoError(t, b.Add(uiRecords()...))

	h, err := b.Finalize()

	require.NoError(t, err)
	assert.Equal(t, b.Staged(), h.Len())
	seen := map[string]bool{}
	for _, id := range h.Keys() {
		assert.False(t, seen[id], "duplicate %q", id)
		seen[id] = true
	}
}

func TestFinalize_ResultIsIndependentOfStaging(t *testing.T) {
	// Given: a builder finalized twice
	b := NewBuilder(Options{})
	require.NoError(t, b.Add(uiRecords()...))
	first, err := b.Finalize()
	require.NoError(t, err)
	second, err := b.Finalize()
	require.NoError(t, err)

	// When: the first result is modified in place
	root := mustGet[*Root](t, first, "ui")
	root.Children = append(root.Children, "intruder")

	// Then: the second result and the staging area are unaffected
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"ui-button", "ui-input"}, mustGet[*Root](t, second, "ui").Children)
	staged, _ := b.staged.Get("ui")
	assert.Equal(t, []string{"ui-button", "ui-input"}, staged.(*Root).Children)
}

func TestFinalize_ParentsAndChildrenAreConsistent(t *testing.T) {
	h := mustBuild(t, Options{},
		rec("a-b--one", "One", "A/B"),
		rec("a-b-c--two", "Two", "A/B/C"),
		rec("x--three", "Three", "X"),
		rec("loose", "Loose", ""),
	)

	for id, item := range h.All() {
		if kids, ok := children(item); ok {
			for _, kid := range kids {
				child, found := h.Get(kid)
				require.True(t, found, "child %q of %q", kid, id)
				assert.Equal(t, id, parentID(child))
			}
		}
		if p := parentID(item); p != "" {
			assert.NotEqual(t, id, p)
			_, found := h.Get(p)
			assert.True(t, found, "parent %q of %q", p, id)
		}
	}
}
