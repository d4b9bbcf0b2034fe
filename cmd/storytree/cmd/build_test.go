package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/storytree/internal/config"
	sterrors "github.com/Aman-CERP/storytree/internal/errors"
	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

// topLevelKeys returns the keys of a JSON object in document order.
func topLevelKeys(t *testing.T, data string) []string {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(data))
	tok, err := dec.Token()
	require.NoError(t, err)
	require.Equal(t, json.Delim('{'), tok)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		require.NoError(t, err)
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		require.NoError(t, dec.Decode(&skip))
	}
	return keys
}

func TestBuildCmd_JSON(t *testing.T) {
	// Given: an index with two stories of one component
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)

	// When: building
	res := execute(t, "--config-dir", dir, "build", path)

	// Then: the hash is printed depth-first with its classification
	require.NoError(t, res.err)
	assert.Equal(t, []string{"ui", "ui-button", "ui-button--basic", "ui-button--primary"}, topLevelKeys(t, res.stdout))

	var hash map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &hash))
	assert.Equal(t, "root", hash["ui"]["type"])
	assert.Equal(t, "group", hash["ui-button"]["type"])
	assert.Equal(t, true, hash["ui-button"]["isComponent"])
	assert.Equal(t, "ui-button", hash["ui-button--basic"]["parent"])
	assert.EqualValues(t, 2, hash["ui-button--basic"]["depth"])
	assert.Equal(t, false, hash["ui-button--basic"]["prepared"])
	assert.Contains(t, res.stderr, "Built 4 items from 1 index(es)")
}

func TestBuildCmd_Prepared(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)

	res := execute(t, "--config-dir", dir, "build", "--prepared", path)

	require.NoError(t, res.err)
	var hash map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &hash))
	assert.Equal(t, true, hash["ui-button--basic"]["prepared"])
}

func TestBuildCmd_Tree(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)

	res := execute(t, "--config-dir", dir, "build", "--format", "tree", path)

	require.NoError(t, res.err)
	assert.Equal(t, "UI\n└── Button\n    ├── Basic\n    └── Primary\n", res.stdout)
}

func TestBuildCmd_Summary(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)

	res := execute(t, "--config-dir", dir, "build", "-f", "summary", path)

	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "main: 1 roots 1 groups 1 components 2 stories 0 docs ("), res.stdout)
}

func TestBuildCmd_SummaryJSON(t *testing.T) {
	// Given: a primary index and a docs-only ref
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)
	design := writeFile(t, filepath.Join(dir, "design.json"), designIndex)

	// When: asking for the summary as JSON
	res := execute(t, "--config-dir", dir, "build", "-f", "summary", "--json", "--ref", "design="+design, path)

	// Then: one object per ref, main first
	require.NoError(t, res.err)
	var summaries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "main", summaries[0]["ref"])
	assert.EqualValues(t, 2, summaries[0]["stories"])
	assert.Equal(t, "design", summaries[1]["ref"])
	assert.EqualValues(t, 1, summaries[1]["docs_only"])
}

func TestBuildCmd_IndexPathFromConfig(t *testing.T) {
	// Given: a project whose config names the index relative to itself
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "static", "stories.json"), buttonIndex)
	writeFile(t, filepath.Join(dir, config.ProjectFileName), "index:\n  path: static/stories.json\n")

	// When: building without an argument
	res := execute(t, "--config-dir", dir, "build", "-f", "summary")

	// Then: the configured index is used
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "2 stories")
}

func TestBuildCmd_ShowRootsFromConfig(t *testing.T) {
	// Given: a project that disables root promotion
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)
	writeFile(t, filepath.Join(dir, config.ProjectFileName), "sidebar:\n  show_roots: false\n")

	// When: building
	res := execute(t, "--config-dir", dir, "build", path)

	// Then: the first segment is a depth-0 group
	require.NoError(t, res.err)
	var hash map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &hash))
	assert.Equal(t, "group", hash["ui"]["type"])
	assert.EqualValues(t, 0, hash["ui"]["depth"])
	assert.Equal(t, false, hash["ui"]["isComponent"])
}

func TestBuildCmd_Refs(t *testing.T) {
	// Given: a main index and a composed ref
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)
	design := writeFile(t, filepath.Join(dir, "design", "index.json"), designIndex)

	// When: building both
	res := execute(t, "--config-dir", dir, "build", path, "--ref", "design="+design)

	// Then: each ref gets its own hash, main first
	require.NoError(t, res.err)
	assert.Equal(t, []string{"main", "design"}, topLevelKeys(t, res.stdout))

	var hashes map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &hashes))
	assert.Contains(t, hashes["main"], "ui-button--basic")
	assert.NotContains(t, hashes["main"], "tokens-colors--page")
	page := hashes["design"]["tokens-colors--page"]
	require.NotNil(t, page)
	assert.Equal(t, true, page["parameters"].(map[string]any)["docsOnly"])
	assert.Contains(t, res.stderr, "from 2 index(es)")
}

func TestBuildCmd_RefsTree(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)
	design := writeFile(t, filepath.Join(dir, "design.json"), designIndex)

	res := execute(t, "--config-dir", dir, "build", "-f", "tree", path, "--ref", "design="+design)

	require.NoError(t, res.err)
	want := strings.Join([]string{
		"main:",
		"UI",
		"└── Button",
		"    ├── Basic",
		"    └── Primary",
		"",
		"design:",
		"Tokens",
		"└── Colors",
		"    └── Page [docs]",
		"",
	}, "\n")
	assert.Equal(t, want, res.stdout)
}

func TestBuildCmd_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown format", []string{"build", "-f", "yaml"}, sterrors.ErrCodeInvalidInput},
		{"json without summary", []string{"build", "--json"}, sterrors.ErrCodeInvalidInput},
		{"ref without path", []string{"build", "--ref", "design"}, sterrors.ErrCodeInvalidRef},
		{"ref with empty name", []string{"build", "--ref", "=x.json"}, sterrors.ErrCodeInvalidRef},
		{"reserved ref name", []string{"build", "--ref", "main=x.json"}, sterrors.ErrCodeInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a project with an index
			dir := t.TempDir()
			path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)

			// When: building with bad arguments
			res := execute(t, append([]string{"--config-dir", dir}, append(tt.args, path)...)...)

			// Then: a structured error is returned
			require.Error(t, res.err)
			assert.Equal(t, tt.code, sterrors.GetCode(res.err))
			assert.Empty(t, res.stdout)
		})
	}
}

func TestBuildCmd_MissingIndex(t *testing.T) {
	// Given: no index file
	dir := t.TempDir()

	// When: building
	res := execute(t, "--config-dir", dir, "build", filepath.Join(dir, "missing.json"))

	// Then: the error names the file and the ref
	require.Error(t, res.err)
	assert.Equal(t, sterrors.ErrCodeFileNotFound, sterrors.GetCode(res.err))
	se, ok := sterrors.As(res.err)
	require.True(t, ok)
	assert.Equal(t, "main", se.Details["ref"])
}

func TestBuildCmd_PathCollision(t *testing.T) {
	// Given: a kind whose middle segment reduces to its parent id
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), `{"v": 4, "entries": {
		"ui-button--basic": {"id": "ui-button--basic", "title": "UI/-/Button", "name": "Basic", "importPath": "./B.tsx"}
	}}`)

	// When: building
	res := execute(t, "--config-dir", dir, "build", path)

	// Then: the build fails with a fatal collision and prints nothing
	require.Error(t, res.err)
	assert.Equal(t, sterrors.ErrCodePathCollision, sterrors.GetCode(res.err))
	assert.True(t, sterrors.IsFatal(res.err))
	assert.True(t, errors.Is(res.err, storyhash.ErrPathCollision))
	var collision *storyhash.PathCollisionError
	require.True(t, errors.As(res.err, &collision))
	assert.Equal(t, "UI/-/Button", collision.Kind)
	se, _ := sterrors.As(res.err)
	assert.Contains(t, se.Suggestion, `"-"`)
	assert.Equal(t, "ui-button--basic", se.Details["story"])
	assert.Empty(t, res.stdout)
}

func TestBuildCmd_StoryIDSharedWithGroup(t *testing.T) {
	// Given: a story whose id equals the id of its own component
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), `{"v": 4, "entries": {
		"ui-button--basic": {"id": "ui-button--basic", "title": "UI/Button", "name": "Basic", "importPath": "./B.tsx"},
		"ui-button": {"id": "ui-button", "title": "UI/Button", "name": "Button", "importPath": "./B.tsx"}
	}}`)

	// When: building
	res := execute(t, "--config-dir", dir, "build", path)

	// Then: the build fails with a collision naming the story
	require.Error(t, res.err)
	assert.Equal(t, sterrors.ErrCodePathCollision, sterrors.GetCode(res.err))
	se, ok := sterrors.As(res.err)
	require.True(t, ok)
	assert.Equal(t, "ui-button", se.Details["story"])
	assert.Contains(t, se.Suggestion, "group")
	assert.Empty(t, res.stdout)
}

func TestBuildCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFileName), "logging:\n  level: loud\n")

	res := execute(t, "--config-dir", dir, "build")

	require.Error(t, res.err)
	assert.Equal(t, sterrors.ErrCodeConfigInvalid, sterrors.GetCode(res.err))
}

func TestBuildCmd_LegacySeparatorNoticeOnceAcrossRefs(t *testing.T) {
	// Given: two indexes that both use '.' in their titles
	dir := t.TempDir()
	legacy := `{"v": 4, "entries": {"ui-button--basic": {"id": "ui-button--basic", "title": "UI.Button", "name": "Basic"}}}`
	path := writeFile(t, filepath.Join(dir, "index.json"), legacy)
	other := writeFile(t, filepath.Join(dir, "other.json"), legacy)

	// When: building both concurrently
	res := execute(t, "--config-dir", dir, "build", path, "--ref", "other="+other)

	// Then: the notice is logged once
	require.NoError(t, res.err)
	assert.Equal(t, 1, strings.Count(res.stderr, storyhash.SiteLegacySeparator))
}

func TestBuildCmd_LegacySeparatorNotice_Disabled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"),
		`{"v": 4, "entries": {"a--b": {"id": "a--b", "title": "A|B", "name": "B"}}}`)
	t.Setenv("STORYTREE_FEATURE_WARN_ON_LEGACY_HIERARCHY_SEPARATOR", "false")

	res := execute(t, "--config-dir", dir, "build", path)

	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, storyhash.SiteLegacySeparator)
}

func TestResolveTargets(t *testing.T) {
	// Given: configured refs and a flag that overrides one of them
	cfg := config.NewConfig()
	cfg.Index.Path = "index.json"
	cfg.Index.Refs = map[string]string{"zeta": "z.json", "alpha": "/abs/a.json"}

	// When: resolving
	targets, err := resolveTargets(cfg, "/project", []string{"zeta=./cli.json", "beta=b.json"}, nil)

	// Then: main comes first, refs follow by name, config paths are project relative
	require.NoError(t, err)
	assert.Equal(t, []target{
		{name: "main", path: filepath.Join("/project", "index.json")},
		{name: "alpha", path: "/abs/a.json"},
		{name: "beta", path: "b.json"},
		{name: "zeta", path: "./cli.json"},
	}, targets)
}

func TestBuildCmd_Watch_RebuildsOnChange(t *testing.T) {
	// Given: a project with a short debounce
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "index.json"), buttonIndex)
	t.Setenv("STORYTREE_WATCH_DEBOUNCE", "20ms")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// When: the index is rewritten while watching
	go func() {
		time.Sleep(500 * time.Millisecond)
		updated := strings.Replace(buttonIndex, `"name": "Primary"`, `"name": "Secondary"`, 1)
		updated = strings.Replace(updated, "ui-button--primary", "ui-button--secondary", 2)
		_ = os.WriteFile(path, []byte(updated), 0o644)
		time.Sleep(1500 * time.Millisecond)
		cancel()
	}()
	res := executeContext(t, ctx, "--config-dir", dir, "build", "--format", "tree", "--watch", path)

	// Then: the initial and the rebuilt trees are printed
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "└── Primary")
	assert.Contains(t, res.stdout, "└── Secondary")
	assert.Contains(t, res.stderr, "Watching 1 index file(s)")
}
