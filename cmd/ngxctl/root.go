package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go_ngxmgr/internal/app"
	"go_ngxmgr/internal/config"
	"go_ngxmgr/internal/logging"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ngxctl",
	Short: "Operate ngxmgr-managed nginx configuration",
	Long: `ngxctl composes nginx configuration from the entity store, checks candidates
with nginx -t, activates them, and reports certificate and upstream state.

Configuration is read from the environment (and .env), optionally layered
over an INI file given with --config.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "INI config file path (env overrides INI)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromINI(cfgFile)
	}
	return config.Load()
}

// withApp wires the components, runs fn and closes everything
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(logLevel, cfg.Log.Format)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
