// Package export writes the filtered dashboard to spreadsheet files.
package export

import (
	"fmt"
	"io"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	DetailSheet  = "Emendas"
	SummarySheet = "Resumo"
)

// ContentType is the MIME type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const currencyFormat = `"R$" #,##0.00`

var detailHeader = []any{"Deputado", "Número", "Área", "Grupo de Despesa", "Valor"}

// WriteXLSX writes the view's detail rows and summary as an xlsx workbook.
func WriteXLSX(w io.Writer, v dashboard.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DetailSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeDetail(f, v, st); err != nil {
		return fmt.Errorf("detail sheet: %w", err)
	}
	if err := writeSummary(f, v, st); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type styles struct {
	header   int
	currency int
	percent  int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E9ECEF"}},
	}); err != nil {
		return s, err
	}
	cf := currencyFormat
	if s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &cf}); err != nil {
		return s, err
	}
	pf := `0.00"%"`
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pf}); err != nil {
		return s, err
	}
	return s, nil
}

func writeDetail(f *excelize.File, v dashboard.View, st styles) error {
	head := detailHeader
	if err := f.SetSheetRow(DetailSheet, "A1", &head); err != nil {
		return err
	}
	if err := f.SetCellStyle(DetailSheet, "A1", "E1", st.header); err != nil {
		return err
	}
	for i, d := range v.Detail {
		row := []any{d.Deputado, d.Numero, d.Area, d.GrupoDespesa, d.Amount.InexactFloat64()}
		if err := f.SetSheetRow(DetailSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if n := len(v.Detail); n > 0 {
		if err := f.SetCellStyle(DetailSheet, "E2", fmt.Sprintf("E%d", n+1), st.currency); err != nil {
			return err
		}
	}
	for col, width := range map[string]float64{"A": 32, "B": 14, "C": 24, "D": 18, "E": 18} {
		if err := f.SetColWidth(DetailSheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, v dashboard.View, st styles) error {
	sel := v.Selection.Normalized()
	rows := [][]any{
		{"Filtro", "Valor"},
		{"Deputado", sel.Deputado},
		{"Área", sel.Area},
		{"Grupo de Despesa", sel.GrupoDespesa},
		{},
		{"Métrica", "Valor"},
		{"Valor Total", v.Summary.Total.InexactFloat64()},
		{"Quantidade de Emendas", v.Summary.Count},
		{"Número de Deputados", v.Summary.Deputados},
	}
	line := 1
	put := func(row []any) error {
		err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", line), &row)
		line++
		return err
	}
	for _, r := range rows {
		if err := put(r); err != nil {
			return err
		}
	}
	for _, cell := range []string{"A1", "B1", "A6", "B6"} {
		if err := f.SetCellStyle(SummarySheet, cell, cell, st.header); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "B7", "B7", st.currency); err != nil {
		return err
	}

	for _, b := range v.Breakdowns {
		line++
		if err := put([]any{b.Title}); err != nil {
			return err
		}
		top := line
		if err := put([]any{b.Dimension.Label(), "Valor", "Percentual"}); err != nil {
			return err
		}
		if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("A%d", top), fmt.Sprintf("C%d", top), st.header); err != nil {
			return err
		}
		for _, s := range b.Shares {
			if err := put([]any{s.Label, s.Valor.InexactFloat64(), s.Percent.InexactFloat64()}); err != nil {
				return err
			}
			if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("B%d", line-1), fmt.Sprintf("B%d", line-1), st.currency); err != nil {
				return err
			}
			if err := f.SetCellStyle(SummarySheet, fmt.Sprintf("C%d", line-1), fmt.Sprintf("C%d", line-1), st.percent); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 32)
}
