// Package commands holds the kong command implementations for doc-builder.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/doc-builder/internal/config"
	"git.home.luguber.info/inful/doc-builder/internal/ledger"
	"git.home.luguber.info/inful/doc-builder/internal/logfields"
	"git.home.luguber.info/inful/doc-builder/internal/report"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Tool configuration file path" default:"doc-builder.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" help:"Generate the report for a single study directory"`
	Batch    BatchCmd    `cmd:"" help:"Generate reports for every study under a root directory"`
	Watch    WatchCmd    `cmd:"" help:"Watch studies and regenerate reports on change"`
	History  HistoryCmd  `cmd:"" help:"Show recorded run history"`
	Init     InitCmd     `cmd:"" help:"Write a starter doc-builder.yaml"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadTool reads the tool configuration and applies command-line overrides.
func loadTool(root *CLI, templateDir, outputDir string) (*config.Tool, error) {
	cfg, err := config.LoadTool(root.Config)
	if err != nil {
		return nil, err
	}
	if templateDir != "" {
		cfg.TemplateDir = templateDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg, nil
}

// openLedger opens the configured run ledger, or returns nil when history
// is disabled.
func openLedger(cfg *config.Tool) *ledger.Store {
	if !cfg.Ledger.Enabled {
		return nil
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		// History is an optional convenience; never block report builds on it.
		slog.Warn("Failed to open run ledger", logfields.Path(cfg.Ledger.Path), logfields.Error(err))
		return nil
	}
	return store
}

func newGenerator(cfg *config.Tool) *report.Generator {
	return report.NewGenerator(cfg)
}
