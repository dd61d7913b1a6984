package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/KaramelBytes/painel-emendas/internal/utils"
	"github.com/spf13/cobra"
)

var (
	sumFilters  filterFlags
	sumBy       []string
	sumFormat   string
	sumOutput   string
	sumNoDetail bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print totals, breakdowns, ranking and detail for the selected filters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var dims []dashboard.Dimension
		for _, name := range sumBy {
			d, err := dashboard.ParseDimension(name)
			if err != nil {
				return fmt.Errorf("--by: %w", err)
			}
			dims = append(dims, d)
		}
		v, loadErr := sumFilters.buildView(dims)
		if loadErr != nil && v.Message == "" {
			return loadErr
		}
		if sumNoDetail {
			v.Detail = nil
		}

		var buf bytes.Buffer
		var err error
		switch strings.ToLower(sumFormat) {
		case "json":
			err = dashboard.RenderJSON(&buf, v)
		case "md", "markdown":
			err = dashboard.RenderMarkdown(&buf, v)
		case "table", "":
			err = dashboard.RenderText(&buf, v)
		default:
			return fmt.Errorf("unsupported --format: %s (use table|md|json)", sumFormat)
		}
		if err != nil {
			return err
		}

		if sumOutput != "" {
			if err := utils.SafeWriteFile(sumOutput, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", sumOutput)
		} else {
			_, _ = buf.WriteTo(cmd.OutOrStdout())
		}
		return loadErr
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	sumFilters.bind(summaryCmd)
	summaryCmd.Flags().StringSliceVar(&sumBy, "by", nil, "breakdown dimensions: deputado, area, grupo, localizacao, beneficiario, transferencia, tipo (default area,grupo)")
	summaryCmd.Flags().StringVarP(&sumFormat, "format", "f", "table", "output format: table | md | json")
	summaryCmd.Flags().StringVarP(&sumOutput, "output", "o", "", "write to file instead of stdout")
	summaryCmd.Flags().BoolVar(&sumNoDetail, "no-detail", false, "omit the detail table")
}
