package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/painel-emendas/internal/config"
	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/logger"
	"github.com/KaramelBytes/painel-emendas/internal/utils"
	"github.com/spf13/cobra"
)

var configShowJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set painel configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if configShowJSON {
			b, err := utils.PrettyJSON(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "source_path: %s\n", cfg.SourcePath)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		if cfg.CSVDelimiter != "" {
			fmt.Fprintf(out, "csv_delimiter: %q\n", cfg.CSVDelimiter)
		}
		fmt.Fprintf(out, "csv_encoding: %s\n", cfg.CSVEncoding)
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Fprintf(out, "listen_addr: %s\n", cfg.ListenAddr)
		fmt.Fprintf(out, "session_secret: %s\n", mask(cfg.SessionSecret))
		fmt.Fprintf(out, "watch: %t\n", cfg.Watch)
		fmt.Fprintf(out, "filter_mode: %s\n", cfg.FilterMode)
		fmt.Fprintf(out, "ranking_metric: %s\n", cfg.RankingMetric)
		fmt.Fprintf(out, "ranking_limit: %d\n", cfg.RankingLimit)
		fmt.Fprintf(out, "title: %s\n", cfg.PageTitle())
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		switch key {
		case "source_path":
			c.SourcePath = val
		case "sheet_name":
			c.SheetName = val
		case "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for sheet_index: %v", val)
			}
			c.SheetIndex = i
		case "csv_delimiter":
			c.CSVDelimiter = val
			if _, err := c.SheetOptions(); err != nil {
				return err
			}
		case "decimal_separator":
			c.DecimalSeparator = val
			if _, err := c.SheetOptions(); err != nil {
				return err
			}
		case "thousands_separator":
			c.ThousandsSeparator = val
			if _, err := c.SheetOptions(); err != nil {
				return err
			}
		case "csv_encoding":
			c.CSVEncoding = val
		case "listen_addr":
			c.ListenAddr = val
		case "session_secret":
			c.SessionSecret = val
		case "watch":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for watch: %w", err)
			}
			c.Watch = b
		case "filter_mode":
			m, err := dashboard.ParseFilterMode(val)
			if err != nil {
				return err
			}
			c.FilterMode = m.String()
		case "ranking_metric":
			m, err := dashboard.ParseRankingMetric(val)
			if err != nil {
				return err
			}
			c.RankingMetric = m.String()
		case "ranking_limit":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for ranking_limit: %v", val)
			}
			c.RankingLimit = i
		case "title":
			c.Title = val
		case "log_level", "log_format":
			level, format := c.LogLevel, c.LogFormat
			if key == "log_level" {
				level = val
			} else {
				format = val
			}
			if _, err := logger.New(level, format); err != nil {
				return err
			}
			c.LogLevel, c.LogFormat = level, format
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "print as JSON")
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
