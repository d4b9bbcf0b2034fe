package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/storytree/internal/config"
	"github.com/Aman-CERP/storytree/internal/deprecate"
	sterrors "github.com/Aman-CERP/storytree/internal/errors"
	"github.com/Aman-CERP/storytree/internal/index"
	"github.com/Aman-CERP/storytree/internal/output"
	"github.com/Aman-CERP/storytree/internal/ui"
	"github.com/Aman-CERP/storytree/internal/watcher"
	"github.com/Aman-CERP/storytree/pkg/storyhash"
)

// mainRef names the primary index among composed refs.
const mainRef = "main"

// Output formats for build.
const (
	formatJSON    = "json"
	formatTree    = "tree"
	formatSummary = "summary"
)

type buildOptions struct {
	refs     []string
	format   string
	prepared bool
	watch    bool
	showIDs  bool
	json     bool
}

// target is one index to build.
type target struct {
	name string
	path string
}

type buildResult struct {
	target  target
	hash    *storyhash.Hash
	summary ui.Summary
}

func newBuildCmd(g *globalOptions) *cobra.Command {
	opts := &buildOptions{}

	cmd := &cobra.Command{
		Use:   "build [index.json]",
		Short: "Build the stories hash from a story index",
		Long: `Build the ordered stories hash from a story index and print it.

The index defaults to index.path from .storytree.yaml. Composed refs
(index.refs, or --ref name=path) are built concurrently, each into its own
hash. With --watch the hashes are rebuilt whenever an index file changes.`,
		Example: `  # Print the hash as JSON
  storytree build storybook-static/index.json

  # Preview the tree
  storytree build --format tree

  # Compose a second index and keep rebuilding
  storytree build --ref design=../design/index.json --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBuild(ctx, cmd, g, opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.refs, "ref", nil, "Compose another index as name=path (repeatable)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "Output format: json, tree, or summary")
	cmd.Flags().BoolVar(&opts.prepared, "prepared", false, "Mark stories as prepared (full metadata loaded)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Rebuild when an index file changes")
	cmd.Flags().BoolVar(&opts.showIDs, "show-ids", false, "Append item ids to tree labels")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the summary as JSON (with --format summary)")

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, g *globalOptions, opts *buildOptions, args []string) error {
	if !slices.Contains([]string{formatJSON, formatTree, formatSummary}, opts.format) {
		return sterrors.ValidationError(fmt.Sprintf("unknown output format %q", opts.format), nil).
			WithSuggestion("Use --format json, tree, or summary")
	}
	if opts.json && opts.format != formatSummary {
		return sterrors.ValidationError("--json only applies to --format summary", nil).
			WithSuggestion("Use --format summary --json, or --format json for the hash itself")
	}

	cfg, err := g.config()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(cfg, g.projectDir(), opts.refs, args)
	if err != nil {
		return err
	}

	provider := config.NewProvider(cfg)
	env := buildEnv{
		provider: provider,
		features: provider.Features(),
		notifier: deprecate.New(g.log()),
		prepared: opts.prepared,
		logger:   g.log(),
		retry:    sterrors.DefaultRetryConfig(),
		views:    make(map[string]*storyhash.Views, len(targets)),
	}
	for _, t := range targets {
		env.views[t.name] = storyhash.NewViews()
	}
	status := output.New(cmd.ErrOrStderr())

	results, err := env.buildAll(ctx, targets)
	if err != nil {
		if !opts.watch {
			return err
		}
		status.Failure(err, g.debug)
	} else if err := report(cmd.OutOrStdout(), status, results, opts); err != nil {
		return err
	}

	if !opts.watch {
		return nil
	}

	debounce, _ := cfg.WatchDebounce() // checked by Validate
	return watchAndRebuild(ctx, cmd, g, env, targets, opts, debounce)
}

// resolveTargets returns the main index followed by the refs in name order.
// Paths from the configuration are relative to the project directory; paths
// given on the command line are relative to the working directory.
func resolveTargets(cfg *config.Config, projectDir string, refFlags, args []string) ([]target, error) {
	mainPath := fromProject(projectDir, cfg.Index.Path)
	if len(args) > 0 {
		mainPath = args[0]
	}

	refs := make(map[string]string, len(cfg.Index.Refs)+len(refFlags))
	for name, path := range cfg.Index.Refs {
		refs[name] = fromProject(projectDir, path)
	}
	for _, flag := range refFlags {
		name, path, ok := strings.Cut(flag, "=")
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, sterrors.New(sterrors.ErrCodeInvalidRef, fmt.Sprintf("invalid ref %q", flag), nil).
				WithSuggestion("Use --ref name=path/to/index.json")
		}
		refs[name] = path
	}
	if _, ok := refs[mainRef]; ok {
		return nil, sterrors.New(sterrors.ErrCodeInvalidRef, fmt.Sprintf("ref name %q is reserved for the primary index", mainRef), nil).
			WithSuggestion("Pick another name for the ref")
	}

	targets := []target{{name: mainRef, path: mainPath}}
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		targets = append(targets, target{name: name, path: refs[name]})
	}
	return targets, nil
}

func fromProject(projectDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectDir, path)
}

// buildEnv is shared by every build of one command run. The notifier is
// shared too, so each deprecation is reported once across refs and rebuilds.
// views holds one view cache per target name.
type buildEnv struct {
	provider storyhash.ConfigProvider
	features storyhash.Features
	notifier storyhash.Notifier
	prepared bool
	logger   *slog.Logger
	retry    sterrors.RetryConfig
	views    map[string]*storyhash.Views
}

// buildAll builds every target concurrently. Each target gets its own
// builder; the first failure cancels the rest.
func (e buildEnv) buildAll(ctx context.Context, targets []target) ([]buildResult, error) {
	results := make([]buildResult, len(targets))
	grp, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		grp.Go(func() error {
			r, err := e.buildOne(gctx, t)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e buildEnv) buildOne(ctx context.Context, t target) (buildResult, error) {
	start := time.Now()
	logger := e.logger.With(slog.String("ref", t.name))

	// A generator may still be writing the file; truncated reads are retried.
	idx, err := sterrors.Retry(ctx, e.retry, func() (index.Index, error) {
		return index.Load(t.path)
	})
	if err != nil {
		return buildResult{}, targetError(t, err)
	}

	records := index.Normalize(idx)
	b := storyhash.NewBuilder(storyhash.Options{
		Provider: e.provider,
		Features: e.features,
		Notifier: e.notifier,
		Prepared: e.prepared,
		Logger:   logger,
	})
	h, err := b.Build(records)
	if err != nil {
		return buildResult{}, targetError(t, err)
	}

	took := time.Since(start)
	logger.Debug("built stories hash",
		slog.String("path", t.path),
		slog.Int("version", idx.Version),
		slog.Int("records", len(records)),
		slog.Int("items", h.Len()),
		slog.Duration("duration", took))

	return buildResult{target: t, hash: h, summary: ui.Summarize(t.name, h, e.views[t.name], took)}, nil
}

// targetError attaches the target to err and maps path collisions to their
// structured code.
func targetError(t target, err error) error {
	var collision *storyhash.PathCollisionError
	if errors.As(err, &collision) {
		suggestion := fmt.Sprintf("Remove punctuation or delimiter characters from the %q segment of %q", collision.Segment, collision.Kind)
		if collision.With != "" {
			suggestion = fmt.Sprintf("Give story %q an id that no %s in the index derives", collision.StoryID, collision.With)
		}
		return sterrors.New(sterrors.ErrCodePathCollision, collision.Error(), err).
			WithDetail("ref", t.name).
			WithDetail("path", t.path).
			WithDetail("story", collision.StoryID).
			WithSuggestion(suggestion)
	}
	if se, ok := sterrors.As(err); ok {
		return se.WithDetail("ref", t.name)
	}
	return sterrors.New(sterrors.ErrCodeBuildFailed, fmt.Sprintf("failed to build ref %q", t.name), err).
		WithDetail("path", t.path)
}

// report writes the results to out in the requested format and a one-line
// status to status.
func report(out io.Writer, status *output.Writer, results []buildResult, opts *buildOptions) error {
	var err error
	switch opts.format {
	case formatTree:
		err = writeTrees(out, results, opts.showIDs)
	case formatSummary:
		summaries := make([]ui.Summary, 0, len(results))
		for _, r := range results {
			summaries = append(summaries, r.summary)
		}
		renderer := ui.NewSummaryRenderer(ui.NewConfig(out))
		if opts.json {
			err = renderer.RenderJSON(summaries...)
		} else {
			err = renderer.Render(summaries...)
		}
	default:
		err = writeJSON(out, results)
	}
	if err != nil {
		return sterrors.InternalError("failed to write output", err)
	}

	items := 0
	for _, r := range results {
		items += r.hash.Len()
	}
	status.Successf("Built %d items from %d index(es)", items, len(results))
	return nil
}

// writeJSON prints a single hash as is. Several hashes are printed as one
// object keyed by ref name, in target order.
func writeJSON(out io.Writer, results []buildResult) error {
	if len(results) == 1 {
		data, err := json.MarshalIndent(results[0].hash, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", data)
		return err
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, r := range results {
		key, err := json.Marshal(r.target.name)
		if err != nil {
			return err
		}
		body, err := json.MarshalIndent(r.hash, "  ", "  ")
		if err != nil {
			return err
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(body)
		if i < len(results)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	_, err := out.Write(buf.Bytes())
	return err
}

func writeTrees(out io.Writer, results []buildResult, showIDs bool) error {
	cfg := ui.NewConfig(out, ui.WithShowIDs(showIDs))
	renderer := ui.NewTreeRenderer(cfg)
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(out, cfg.Styles().Header.Render(r.target.name+":")); err != nil {
				return err
			}
		}
		if err := renderer.Render(r.hash); err != nil {
			return err
		}
	}
	return nil
}

// watchAndRebuild rebuilds every target after each debounced batch of index
// changes until ctx is cancelled. Failed rebuilds are reported and watching
// continues.
func watchAndRebuild(ctx context.Context, cmd *cobra.Command, g *globalOptions, env buildEnv, targets []target, opts *buildOptions, debounce time.Duration) error {
	status := output.New(cmd.ErrOrStderr())

	paths := make([]string, 0, len(targets))
	for _, t := range targets {
		paths = append(paths, t.path)
	}

	w, err := watcher.New(paths, watcher.Options{DebounceWindow: debounce}, env.logger)
	if err != nil {
		return sterrors.InternalError("failed to create file watcher", err)
	}
	defer func() { _ = w.Stop() }()

	started := make(chan error, 1)
	go func() { started <- w.Start(ctx) }()

	status.Statusf("→", "Watching %d index file(s), press Ctrl+C to stop", len(paths))

	events, errs := w.Events(), w.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-started:
			if err != nil && !errors.Is(err, context.Canceled) {
				return sterrors.InternalError("file watcher stopped", err)
			}
			return nil
		case batch, ok := <-events:
			if !ok {
				return nil
			}
			env.logger.Info("index changed, rebuilding",
				slog.Int("files", len(batch)),
				slog.String("first", batch[0].Path),
				slog.String("op", batch[0].Operation.String()))

			results, err := env.buildAll(ctx, targets)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				status.Failure(err, g.debug)
				continue
			}
			if err := report(cmd.OutOrStdout(), status, results, opts); err != nil {
				return err
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			env.logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
