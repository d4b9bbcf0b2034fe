package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/storytree/configs"
	"github.com/Aman-CERP/storytree/internal/config"
	sterrors "github.com/Aman-CERP/storytree/internal/errors"
	"github.com/Aman-CERP/storytree/internal/output"
)

// writeConfig writes the template. Tests replace it to simulate failures.
var writeConfig = os.WriteFile

func newInitCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .storytree.yaml template",
		Long: `Write a commented .storytree.yaml into the current directory
(or --config-dir).

An existing file is left alone unless --force is given, in which case it is
backed up next to itself before being replaced.`,
		Example: `  # Create .storytree.yaml in the current directory
  storytree init

  # Replace an existing file, keeping a backup
  storytree init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, g, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration (a backup is kept)")

	return cmd
}

func runInit(cmd *cobra.Command, g *globalOptions, force bool) error {
	out := output.New(cmd.ErrOrStderr())

	dir := g.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return sterrors.InternalError("failed to resolve working directory", err)
		}
		dir = wd
	}
	path := filepath.Join(dir, config.ProjectFileName)

	var backup string
	if _, err := os.Stat(path); err == nil {
		if !force {
			return sterrors.New(sterrors.ErrCodeFileExists, fmt.Sprintf("%s already exists", config.ProjectFileName), nil).
				WithDetail("path", path).
				WithSuggestion("Use 'storytree init --force' to replace it (the current file is backed up)")
		}
		backup, err = config.BackupFile(path)
		if err != nil {
			return sterrors.New(sterrors.ErrCodeFilePermission, "failed to back up existing configuration", err).
				WithDetail("path", path)
		}
		g.log().Debug("backed up configuration", slog.String("path", path), slog.String("backup", backup))
		out.Statusf("→", "Backed up existing configuration to %s", filepath.Base(backup))
	}

	if err := writeConfig(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		if backup != "" {
			if rerr := config.RestoreFile(path, backup); rerr != nil {
				g.log().Warn("failed to restore configuration", slog.String("backup", backup), slog.String("error", rerr.Error()))
			} else {
				out.Warningf("Restored previous configuration from %s", filepath.Base(backup))
			}
		}
		return sterrors.New(sterrors.ErrCodeFilePermission, "failed to write configuration", err).
			WithDetail("path", path).
			WithSuggestion("Check that the directory exists and is writable")
	}

	out.Successf("Created %s", path)
	out.Status("", "Next: build your stories hash")
	out.Code("storytree build --format tree")
	return nil
}
