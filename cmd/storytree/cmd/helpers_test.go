package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const buttonIndex = `{
  "v": 4,
  "entries": {
    "ui-button--basic": {"id": "ui-button--basic", "title": "UI/Button", "name": "Basic", "importPath": "./Button.stories.tsx", "type": "story"},
    "ui-button--primary": {"id": "ui-button--primary", "title": "UI/Button", "name": "Primary", "importPath": "./Button.stories.tsx", "type": "story"}
  }
}`

const designIndex = `{
  "v": 4,
  "entries": {
    "tokens-colors--page": {"id": "tokens-colors--page", "title": "Tokens/Colors", "name": "Page", "importPath": "./Colors.mdx", "type": "docs"}
  }
}`

// isolate keeps user configuration, log files and the default logger out
// of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, args ...string) result {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	isolate(t)
	return run(t, ctx, args...)
}

// run executes the root command without isolating the environment.
func run(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}
