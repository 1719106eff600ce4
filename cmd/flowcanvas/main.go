// Command flowcanvas serves the workflow editor API and works with workflow
// and catalog files from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"flowcanvas/internal/config"
	"flowcanvas/internal/ctxlog"
)

// app is the state shared by every subcommand once config is loaded
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "flowcanvas",
		Short:         "Visual workflow editor backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(logOut)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: search $"+config.EnvConfigPath+", ./"+config.ConfigFileName+", ~/.config/flowcanvas/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(a),
		newPlanCmd(a),
		newCatalogCmd(a),
	)
	return rootCmd
}

func (a *app) load(logOut io.Writer) error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.logger = ctxlog.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if path != "" {
		a.logger.Debug("config loaded", "path", path)
	} else {
		a.logger.Debug("no config file found, using defaults")
	}
	return nil
}
