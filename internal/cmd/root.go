package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/engine"
	"github.com/shadowai/shadowdetect/internal/reporter"
	"github.com/shadowai/shadowdetect/internal/ui"
)

var (
	// Global flags
	verbose    bool
	format     string
	configPath string

	globalUI *ui.UI
)

var RootCmd = &cobra.Command{
	Use:   "shadow-detect",
	Short: "Estimate how likely source code is AI-generated",
	Long: `shadow-detect inspects source code for the telltale patterns of
AI-generated output: generic naming, templated comments, uniform block
structure, and mid-file style shifts.

It never calls a model. Every signal is a transparent heuristic over
the code's own structure, and every reported confidence comes with the
pattern labels and lines that produced it.`,
}

func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	RootCmd.PersistentFlags().StringVarP(&format, "format", "f", "terminal", "Output format (terminal, json)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a detector config overriding the defaults")
}

// GetUI returns the global UI, creating it on first use
func GetUI() *ui.UI {
	if globalUI == nil {
		globalUI = ui.New(os.Stdout, os.Stderr, format)
	}
	return globalUI
}

// loadConfig resolves the effective detector configuration.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	return cfg, nil
}

// newEngine builds the detector engine from the effective config.
func newEngine() (*engine.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg)
}

// newReporter picks the reporter matching the format flag.
func newReporter(u *ui.UI) reporter.Reporter {
	if format == "json" {
		return reporter.NewJSONReporter(os.Stdout)
	}
	return reporter.NewTerminalReporter(os.Stdout, u.Styles, verbose)
}
