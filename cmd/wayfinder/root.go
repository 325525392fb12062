package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aretw0/wayfinder/internal/cli"
	"github.com/aretw0/wayfinder/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what the persistent flags resolve to.
type app struct {
	configPath string
	basename   string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "wayfinder",
		Short: "Wayfinder resolves locations against nested route trees",
		Long: `Wayfinder matches paths against a nested route tree, runs the enter,
change and leave hooks of the routes that differ and loads their artifacts.

Routes come from a YAML or JSON file; see wayfinder.yaml for the settings.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default wayfinder.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&a.basename, "basename", "", "Path every route is mounted under")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newMatchCmd(a),
		newHrefCmd(a),
		newRoutesCmd(a),
		newValidateCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newBrowseCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// load reads .env, the config file and the environment, then applies the
// flags on top.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}
	if cmd.Flags().Changed("basename") {
		cfg.Basename = a.basename
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

func (a *app) runtime(ctx context.Context) (*cli.Runtime, error) {
	return cli.BuildEngine(ctx, a.cfg, a.logger)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
