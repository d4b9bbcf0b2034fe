// Package cmd provides the CLI commands for storytree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storytree/internal/config"
	sterrors "github.com/Aman-CERP/storytree/internal/errors"
	"github.com/Aman-CERP/storytree/internal/logging"
	"github.com/Aman-CERP/storytree/internal/output"
	"github.com/Aman-CERP/storytree/internal/profiling"
	"github.com/Aman-CERP/storytree/pkg/version"
)

// globalOptions holds the persistent flags and the state derived from them.
type globalOptions struct {
	debug     bool
	configDir string
	profile   profiling.Options

	logger         *slog.Logger
	loggingCleanup func()
	profiler       *profiling.Session

	cfg       *config.Config
	cfgErr    error
	cfgLoaded bool
}

// projectDir is --config-dir, else the nearest project root above the
// working directory.
func (g *globalOptions) projectDir() string {
	if g.configDir != "" {
		return g.configDir
	}
	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}
	return root
}

// config loads the configuration once per command invocation.
func (g *globalOptions) config() (*config.Config, error) {
	if g.cfgLoaded {
		return g.cfg, g.cfgErr
	}
	g.cfgLoaded = true
	dir := g.projectDir()
	cfg, err := config.Load(dir)
	if err != nil {
		g.cfgErr = sterrors.ConfigError("failed to load configuration", err).
			WithDetail("dir", dir).
			WithSuggestion("Fix .storytree.yaml or regenerate it with 'storytree init --force'")
		return nil, g.cfgErr
	}
	g.cfg = cfg
	return cfg, nil
}

func (g *globalOptions) log() *slog.Logger {
	if g.logger == nil {
		return slog.Default()
	}
	return g.logger
}

// NewRootCmd creates the root command for the storytree CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *globalOptions) {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "storytree",
		Short: "Build the sidebar stories hash from a story index",
		Long: `storytree turns the flat entries of a story index into the ordered
tree of roots, groups, components and stories that a sidebar renders.

Kind paths such as "UI/Button" are split on '/', each segment becomes a
node with an id derived from its parents, and stories are attached as
leaves.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("storytree version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging (also written to the state log directory)")
	cmd.PersistentFlags().StringVar(&g.configDir, "config-dir", "", "Directory holding .storytree.yaml (default: project root)")

	cmd.PersistentFlags().StringVar(&g.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&g.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = g.start
	cmd.PersistentPostRunE = g.stop

	cmd.AddCommand(newBuildCmd(g))
	cmd.AddCommand(newInitCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd, g
}

func (g *globalOptions) start(cmd *cobra.Command, _ []string) error {
	if err := g.startLogging(cmd); err != nil {
		return err
	}
	if g.profile.Enabled() {
		session, err := profiling.Start(g.profile)
		if err != nil {
			return err
		}
		g.profiler = session
	}
	return nil
}

func (g *globalOptions) stop(_ *cobra.Command, _ []string) error {
	err := g.profiler.Stop()
	g.profiler = nil
	g.stopLogging()
	return err
}

// startLogging configures slog from the loaded configuration. A broken
// configuration is reported by the command that needs it, so logging falls
// back to defaults here.
func (g *globalOptions) startLogging(cmd *cobra.Command) error {
	logCfg := logging.DefaultConfig()
	if cfg, err := g.config(); err == nil {
		logCfg.Level = cfg.Logging.Level
		logCfg.Format = cfg.Logging.Format
		logCfg.FilePath = cfg.Logging.FilePath
	}
	if g.debug {
		logCfg.Level = "debug"
		if logCfg.FilePath == "" {
			logCfg.FilePath = logging.DefaultLogPath()
		}
	}
	logCfg.Output = cmd.ErrOrStderr()

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	g.logger = logger
	g.loggingCleanup = cleanup
	slog.SetDefault(logger)

	if g.debug {
		logger.Debug("debug logging enabled",
			slog.String("log_file", logCfg.FilePath),
			slog.String("version", version.Version))
	}
	return nil
}

func (g *globalOptions) stopLogging() {
	if g.loggingCleanup != nil {
		g.loggingCleanup()
		g.loggingCleanup = nil
	}
}

// Execute runs the root command and prints any error for the user.
func Execute() error {
	cmd, g := newRootCmd()
	err := cmd.Execute()
	if err != nil {
		if stopErr := g.stop(cmd, nil); stopErr != nil {
			slog.Warn("failed to write profiles", slog.String("error", stopErr.Error()))
		}
		output.New(cmd.ErrOrStderr()).Failure(err, g.debug)
	}
	return err
}
