package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/sheet"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultTitle is the dashboard heading used when none is configured.
const DefaultTitle = "Painel de Emendas Parlamentares 2025"

// Global configuration structure.
type Global struct {
	// Source spreadsheet
	SourcePath   string `mapstructure:"source_path" yaml:"source_path"`
	SheetName    string `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex   int    `mapstructure:"sheet_index" yaml:"sheet_index"`
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`
	CSVEncoding  string `mapstructure:"csv_encoding" yaml:"csv_encoding"`
	// Separators of amounts stored as text; empty means auto-detect.
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// Web server
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	SessionSecret string `mapstructure:"session_secret" yaml:"session_secret"`
	Watch         bool   `mapstructure:"watch" yaml:"watch"`

	// Dashboard behaviour
	FilterMode    string `mapstructure:"filter_mode" yaml:"filter_mode"`
	RankingMetric string `mapstructure:"ranking_metric" yaml:"ranking_metric"`
	RankingLimit  int    `mapstructure:"ranking_limit" yaml:"ranking_limit"`
	Title         string `mapstructure:"title" yaml:"title"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.painel.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".painel"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.painel/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("PAINEL")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source_path", "emendas.xlsx")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 0)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("csv_encoding", "utf-8")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("session_secret", "")
	v.SetDefault("watch", true)
	v.SetDefault("filter_mode", "exact")
	v.SetDefault("ranking_metric", "valor")
	v.SetDefault("ranking_limit", dashboard.DefaultRankLimit)
	v.SetDefault("title", DefaultTitle)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; a broken or missing explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// SheetOptions maps the source keys onto reader options.
func (c *Global) SheetOptions() (sheet.Options, error) {
	opt := sheet.Options{
		SheetName:  c.SheetName,
		SheetIndex: c.SheetIndex,
		Encoding:   c.CSVEncoding,
	}
	switch d := c.CSVDelimiter; strings.ToLower(d) {
	case "":
	case `\t`, "tab":
		opt.Delimiter = '\t'
	default:
		r, err := singleRune("csv_delimiter", d)
		if err != nil {
			return opt, err
		}
		opt.Delimiter = r
	}

	var err error
	if opt.DecimalSeparator, err = singleRune("decimal_separator", c.DecimalSeparator); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = singleRune("thousands_separator", c.ThousandsSeparator); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator != 0 && opt.DecimalSeparator == 0 {
		return opt, fmt.Errorf("thousands_separator requires decimal_separator")
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("decimal_separator and thousands_separator must differ")
	}
	return opt, nil
}

// singleRune returns 0 for "" and errors on anything longer than one character.
func singleRune(key, v string) (rune, error) {
	if v == "" {
		return 0, nil
	}
	r := []rune(v)
	if len(r) != 1 {
		return 0, fmt.Errorf("%s must be a single character, got %q", key, v)
	}
	return r[0], nil
}

// DashboardSettings parses the dashboard keys.
func (c *Global) DashboardSettings() (dashboard.Settings, error) {
	mode, err := dashboard.ParseFilterMode(c.FilterMode)
	if err != nil {
		return dashboard.Settings{}, err
	}
	metric, err := dashboard.ParseRankingMetric(c.RankingMetric)
	if err != nil {
		return dashboard.Settings{}, err
	}
	limit := c.RankingLimit
	if limit <= 0 {
		limit = dashboard.DefaultRankLimit
	}
	return dashboard.Settings{Mode: mode, Metric: metric, Limit: limit}, nil
}

// PageTitle returns Title or DefaultTitle.
func (c *Global) PageTitle() string {
	if strings.TrimSpace(c.Title) == "" {
		return DefaultTitle
	}
	return c.Title
}
