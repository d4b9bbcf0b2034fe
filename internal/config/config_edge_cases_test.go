package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FindProjectRoot Edge Cases
// =============================================================================

func TestFindProjectRoot_NonExistentDir_ReturnsError(t *testing.T) {
	// Given: a directory that does not exist
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	// When: finding project root
	_, err := FindProjectRoot(missing)

	// Then: error is returned
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestFindProjectRoot_ProjectFile_StopsWalk(t *testing.T) {
	// Given: a .storytree.yaml two levels up
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFileName), "version: 1\n")
	deep := filepath.Join(root, "packages", "ui")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	// When: finding project root from the nested directory
	found, err := FindProjectRoot(deep)

	// Then: the directory holding the config is returned
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_DeepNesting_FindsGitRoot(t *testing.T) {
	// Given: a .git directory several levels up
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "a", "b", "c", "d")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	// When: finding project root
	found, err := FindProjectRoot(deep)

	// Then: the git root is returned
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_RelativePath_ResolvesToAbsolute(t *testing.T) {
	// Given: a relative path
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	t.Chdir(root)

	// When: finding project root with "."
	found, err := FindProjectRoot(".")

	// Then: an absolute path is returned
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(found))
	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

func TestFindProjectRoot_EmptyString_UsesCurrentDir(t *testing.T) {
	// Given: the working directory is a project root
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ProjectFileName), "version: 1\n")
	t.Chdir(root)

	// When: finding project root with ""
	found, err := FindProjectRoot("")

	// Then: the current directory is used
	require.NoError(t, err)
	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
}

// =============================================================================
// Merge Edge Cases
// =============================================================================

func TestMergeWith_ZeroValuesNotMerged(t *testing.T) {
	// Given: a config with customised values
	cfg := NewConfig()
	cfg.Sidebar.ShowRoots = boolPtr(true)
	cfg.Sidebar.CollapsedRoots = []string{"ui"}
	cfg.Logging.Level = "debug"

	// When: merging an all-zero config
	cfg.mergeWith(&Config{})

	// Then: nothing is overwritten
	require.NotNil(t, cfg.Sidebar.ShowRoots)
	assert.True(t, *cfg.Sidebar.ShowRoots)
	assert.Equal(t, []string{"ui"}, cfg.Sidebar.CollapsedRoots)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, *cfg.Features.WarnOnLegacyHierarchySeparator)
}

func TestMergeWith_ExplicitFalse_IsMerged(t *testing.T) {
	// Given: defaults and an explicit false for show_roots
	cfg := NewConfig()

	// When: merging
	cfg.mergeWith(&Config{Sidebar: SidebarConfig{ShowRoots: boolPtr(false)}})

	// Then: false is distinguishable from unset
	require.NotNil(t, cfg.Sidebar.ShowRoots)
	assert.False(t, *cfg.Sidebar.ShowRoots)
}

func TestMergeWith_RefsAreAdded(t *testing.T) {
	// Given: a config with one ref
	cfg := NewConfig()
	cfg.Index.Refs["a"] = "a.json"

	// When: merging a config with another ref and a replacement
	cfg.mergeWith(&Config{Index: IndexConfig{Refs: map[string]string{
		"a": "a2.json",
		"b": "b.json",
	}}})

	// Then: refs accumulate and later values win
	assert.Equal(t, map[string]string{"a": "a2.json", "b": "b.json"}, cfg.Index.Refs)
}

func TestMergeWith_NilRefsMap_IsInitialised(t *testing.T) {
	cfg := &Config{}
	cfg.mergeWith(&Config{Index: IndexConfig{Refs: map[string]string{"x": "x.json"}}})
	assert.Equal(t, "x.json", cfg.Index.Refs["x"])
}

func TestLoad_UnreadableConfigFile_ReturnsError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("file permissions are not enforced")
	}

	// Given: a config file without read permission
	isolate(t)
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ProjectFileName)
	writeFile(t, path, "version: 1\n")
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	// When: loading configuration
	_, err := Load(tmpDir)

	// Then: the read failure is reported
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{",,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.in))
		})
	}
}
