package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/painel-emendas/internal/charts"
	"github.com/KaramelBytes/painel-emendas/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chartFilters filterFlags
	chartDir     string
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Render the area pie chart and the legislator ranking as SVG files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := chartFilters.buildView(nil)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(chartDir); err != nil {
			return err
		}

		var area, rank bytes.Buffer
		if err := charts.AreaPie(&area, v.AreaSeries); err != nil {
			return err
		}
		if err := charts.RankingBar(&rank, v.Ranking, v.Settings.Metric); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		files := []struct {
			name string
			data []byte
		}{
			{"area.svg", area.Bytes()},
			{"ranking.svg", rank.Bytes()},
		}
		for _, f := range files {
			path := filepath.Join(chartDir, f.name)
			if err := utils.SafeWriteFile(path, f.data); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartFilters.bind(chartsCmd)
	chartsCmd.Flags().StringVar(&chartDir, "dir", ".", "directory to write area.svg and ranking.svg")
}
