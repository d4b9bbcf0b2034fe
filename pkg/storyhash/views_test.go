package storyhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViews_ComponentChildGroups(t *testing.T) {
	// Given: a hash with two components and a non-component group
	h := mustBuild(t, Options{},
		append(uiRecords(), rec("ui-button-icon--x", "X", "UI/Button/Icon"))...,
	)

	// When: asking for component child groups
	groups := NewViews().ComponentChildGroups(h)

	// Then: only all-story groups are listed, in hash order
	assert.Equal(t, [][]string{
		{"ui-button-icon--x"},
		{"ui-input--text"},
	}, groups)
}

func TestViews_ComponentChildGroups_ScenarioSingleStory(t *testing.T) {
	h := mustBuild(t, Options{}, rec("ui-button--basic", "Basic", "UI/Button"))

	assert.Equal(t, [][]string{{"ui-button--basic"}}, NewViews().ComponentChildGroups(h))
}

func TestViews_LeafIDs_MatchesStories(t *testing.T) {
	// Given: a built hash
	h := mustBuild(t, Options{}, append(uiRecords(), rec("loose", "Loose", ""))...)

	// When: asking for leaf ids
	leafs := NewViews().LeafIDs(h)

	// Then: they are exactly the stories, in hash order
	var stories []string
	for id, item := range h.All() {
		if IsStory(item) {
			stories = append(stories, id)
		}
	}
	assert.Equal(t, stories, leafs)
}

func TestViews_LeafIDs_ExcludesEmptyGroups(t *testing.T) {
	h := newHash(2)
	h.set(&Group{ID: "empty", Children: []string{}})
	h.set(&Story{ID: "s"})

	assert.Equal(t, []string{"s"}, NewViews().LeafIDs(h))
}

func TestViews_EmptyHash(t *testing.T) {
	v := NewViews()
	h := newHash(0)

	assert.NotNil(t, v.LeafIDs(h))
	assert.Empty(t, v.LeafIDs(h))
	assert.NotNil(t, v.ComponentChildGroups(h))
	assert.Empty(t, v.ComponentChildGroups(h))
}

func TestViews_MemoizesOnIdentity(t *testing.T) {
	// Given: a views cache and a built hash
	v := NewViews()
	h := mustBuild(t, Options{}, uiRecords()...)

	// When: asking twice
	first := v.LeafIDs(h)
	second := v.LeafIDs(h)
	firstGroups := v.ComponentChildGroups(h)
	secondGroups := v.ComponentChildGroups(h)

	// Then: the same backing slices are returned
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0])
	require.NotEmpty(t, firstGroups)
	assert.Same(t, &firstGroups[0], &secondGroups[0])
	assert.True(t, v.Cached(h))
}

func TestViews_SingleSlotEviction(t *testing.T) {
	// Given: two hashes with equal content but distinct identity
	v := NewViews()
	h1 := mustBuild(t, Options{}, uiRecords()...)
	h2 := mustBuild(t, Options{}, uiRecords()...)
	require.NotSame(t, h1, h2)

	// When: views are computed for h1 and then for h2
	v.LeafIDs(h1)
	v.ComponentChildGroups(h1)
	assert.True(t, v.Cached(h1))
	assert.False(t, v.Cached(h2))

	v.LeafIDs(h2)
	v.ComponentChildGroups(h2)

	// Then: h1 was evicted
	assert.True(t, v.Cached(h2))
	assert.False(t, v.Cached(h1))
	assert.Equal(t, v.LeafIDs(h1), v.LeafIDs(h2))
}

func TestViews_Reset(t *testing.T) {
	v := NewViews()
	h := mustBuild(t, Options{}, uiRecords()...)
	v.LeafIDs(h)
	v.ComponentChildGroups(h)

	v.Reset()

	assert.False(t, v.Cached(h))
}

func TestViews_ChildGroupsDoNotAliasHash(t *testing.T) {
	h := mustBuild(t, Options{}, uiRecords()...)

	groups := NewViews().ComponentChildGroups(h)
	groups[0][0] = "changed"

	assert.Equal(t, "ui-button--basic", mustGet[*Group](t, h, "ui-button").Children[0])
}
