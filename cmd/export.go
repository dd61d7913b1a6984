package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/painel-emendas/internal/export"
	"github.com/KaramelBytes/painel-emendas/internal/utils"
	"github.com/spf13/cobra"
)

var (
	expFilters filterFlags
	expOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered amendments and summary to an .xlsx workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := expFilters.buildView(nil)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, v); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(expOutput, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d emendas to %s\n", len(v.Detail), expOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	expFilters.bind(exportCmd)
	exportCmd.Flags().StringVarP(&expOutput, "output", "o", "emendas_filtradas.xlsx", "output workbook path")
}
