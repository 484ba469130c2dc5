package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timew-bot/internal/config"
	"github.com/Tiliavir/timew-bot/internal/dispatch"
	"github.com/Tiliavir/timew-bot/internal/logging"
	"github.com/Tiliavir/timew-bot/internal/storage"
	"github.com/Tiliavir/timew-bot/internal/tracker"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "twb",
	Short: "twb – a Telegram remote control for timewarrior",
	Long: `twb drives the timewarrior CLI from a Telegram chat with a status-aware
keyboard, and exports tracked intervals into a daily work-hours table.
Configuration is read from config.json (or $TWB_CONFIG) and TWB_* variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default config.json or $TWB_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(shortcutsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(initCmd)
}

// loadConfig reads the configuration and sets up the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	path := config.ResolvePath(configPath)
	cfg, err := config.Load(path)
	if errors.Is(err, config.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w (run `twb init --config %s` to create one)", err, path)
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewLogger(cfg.Log), nil
}

func newGateway(cfg *config.Config, log *slog.Logger) *tracker.Exec {
	return tracker.NewExec(cfg.Tracker.Path, cfg.Tracker.Timeout, log)
}

func vocabulary(cfg *config.Config) tracker.Vocabulary {
	return tracker.Vocabulary{Types: cfg.Vocab.Types, Tasks: cfg.Vocab.Tasks}
}

// loadShortcuts returns nil when shortcut mode is off.
func loadShortcuts(cfg *config.Config) (*storage.Shortcuts, error) {
	if !cfg.Shortcuts.Enabled {
		return nil, nil
	}
	return storage.LoadShortcuts(cfg.Shortcuts.File, cfg.Shortcuts.Aliases)
}

// newDispatcher wires the dispatcher. The tracker's subcommands come from the
// config when listed there, otherwise from `timew help`.
func newDispatcher(ctx context.Context, cfg *config.Config, gw tracker.Gateway, log *slog.Logger) (*dispatch.Dispatcher, error) {
	commands := cfg.Tracker.Commands
	if len(commands) == 0 {
		var err error
		commands, err = tracker.Commands(ctx, gw)
		if err != nil {
			log.Warn("listing tracker commands", "error", err)
		}
		log.Debug("tracker commands", "commands", commands)
	}

	shortcuts, err := loadShortcuts(cfg)
	if err != nil {
		return nil, err
	}

	return dispatch.New(gw, dispatch.Options{
		Vocab:        vocabulary(cfg),
		DefaultType:  cfg.Vocab.DefaultType,
		DefaultTask:  cfg.Vocab.DefaultTask,
		Commands:     commands,
		Shortcuts:    shortcuts,
		ReportWindow: cfg.Report.Window,
		SpecialTags:  cfg.Report.SpecialTags,
		Log:          log,
	}), nil
}
