package cmd

import (
	"fmt"
	"io"
	"os"

	cfgpkg "github.com/KaramelBytes/painel-emendas/internal/config"
	"github.com/KaramelBytes/painel-emendas/internal/emendas"
	"github.com/KaramelBytes/painel-emendas/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	sourcePath string

	// Loaded configuration and logger
	cfg *cfgpkg.Global
	log = zerolog.Nop()

	// logOutput receives the log stream.
	logOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "painel",
	Short: "Painel de Emendas: filter, summarize and serve parliamentary amendment spreadsheets",
	Long: `painel loads a spreadsheet of parliamentary amendments (emendas), normalizes it
and presents totals, breakdowns by area and expense group, a legislator ranking
and the detail table, either in the terminal or as an interactive web dashboard.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.painel/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&sourcePath, "source", "s", "", "spreadsheet to load (.xlsx, .csv, .tsv); overrides source_path")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config show/set still work and report the problem.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	if rootCmd.PersistentFlags().Changed("source") && sourcePath != "" {
		c.SourcePath = sourcePath
	}
	if debug {
		c.LogLevel = "debug"
	}
	cfg = c

	l, err := logger.NewWithWriter(logOutput, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		l, _ = logger.NewWithWriter(logOutput, "info", logger.FormatConsole)
	}
	log = l
}

// requireConfig returns the loaded configuration or the reason it is missing.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if sourcePath != "" {
		c.SourcePath = sourcePath
	}
	cfg = c
	return cfg, nil
}

// newCache builds the memoized loader for the configured source.
func newCache(c *cfgpkg.Global) (*emendas.Cache, error) {
	opt, err := c.SheetOptions()
	if err != nil {
		return nil, err
	}
	return emendas.NewCache(c.SourcePath, opt, log), nil
}
