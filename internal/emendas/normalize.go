package emendas

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/painel-emendas/internal/sheet"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Source headers, exactly as the spreadsheet carries them.
const (
	ColAutor         = "AUTOR"
	ColNumero        = "NÚMERO"
	ColObjeto        = "OBJETO"
	ColArea          = "ÁREA"
	ColLocalizacao   = "LOCALIZAÇÃO"
	ColGND           = "GND"
	ColBeneficiario  = "BENEFICIÁRIO"
	ColValor         = "VALOR"
	ColTransferencia = "TRANSFERÊNCIA ESPECIAL"
	ColVali          = "VALI"
)

// Columns lists the required headers in canonical order.
var Columns = []string{
	ColAutor, ColNumero, ColObjeto, ColArea, ColLocalizacao,
	ColGND, ColBeneficiario, ColValor, ColTransferencia, ColVali,
}

// CanonicalNames maps each source header to its normalized field name.
var CanonicalNames = map[string]string{
	ColAutor:         "nomeDeputado",
	ColNumero:        "numero",
	ColObjeto:        "objeto",
	ColArea:          "area",
	ColLocalizacao:   "localizacao",
	ColGND:           "grupoDespesa",
	ColBeneficiario:  "beneficiario",
	ColValor:         "valor",
	ColTransferencia: "transferenciaEspecial",
	ColVali:          "tipoEmenda",
}

// TransferSentinel is the only TRANSFERÊNCIA ESPECIAL value decoded as a special transfer.
const TransferSentinel = "Sim"

// MissingColumnsError reports required headers absent from the source.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValueError reports a VALOR cell that is present but not a number.
type ValueError struct {
	Row int // 1-based spreadsheet row, header is row 1
	Raw string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("row %d: VALOR %q is not a number", e.Row, e.Raw)
}

// Normalize renames, fills and recodes the rows of tbl. Rows are never dropped.
// Text amounts are parsed with auto-detected separators.
func Normalize(tbl *sheet.Table) ([]Record, error) {
	return NormalizeWith(tbl, NumberFormat{})
}

// NormalizeWith is Normalize with fixed separators for text amounts.
func NormalizeWith(tbl *sheet.Table, nf NumberFormat) ([]Record, error) {
	idx, err := columnIndex(tbl.Header)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		cell := func(col string) sheet.Cell {
			j := idx[col]
			if j >= len(row) {
				return sheet.Cell{}
			}
			return row[j]
		}
		valor, err := decodeValor(cell(ColValor), nf)
		if err != nil {
			return nil, &ValueError{Row: i + 2, Raw: cell(ColValor).Value}
		}
		out = append(out, Record{
			Deputado:      textOr(cell(ColAutor), DeputadoAusente),
			Numero:        textOr(cell(ColNumero), ""),
			Objeto:        textOr(cell(ColObjeto), ObjetoAusente),
			Area:          textOr(cell(ColArea), AreaAusente),
			Localizacao:   textOr(cell(ColLocalizacao), LocalizacaoAusente),
			GrupoDespesa:  decodeGND(cell(ColGND)),
			Beneficiario:  textOr(cell(ColBeneficiario), BeneficiarioAusente),
			Valor:         valor,
			Transferencia: DecodeTransfer(cell(ColTransferencia)),
			Tipo:          DecodeAmendment(cell(ColVali)),
		})
	}
	return out, nil
}

// DecodeTransfer recognizes only a text cell equal to "Sim". Other spellings
// ("sim", "S", " Sim"), numbers and booleans all decode as TransferOutro.
func DecodeTransfer(c sheet.Cell) TransferKind {
	if c.Kind == sheet.String && c.Value == TransferSentinel {
		return TransferEspecial
	}
	return TransferOutro
}

// DecodeAmendment recognizes only a boolean true cell. Number 1 and text such as
// "TRUE" or "Sim" decode as NaoImpositiva.
func DecodeAmendment(c sheet.Cell) AmendmentKind {
	if c.Kind == sheet.Bool && c.Value == "1" {
		return Impositiva
	}
	return NaoImpositiva
}

func columnIndex(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := norm.NFC.String(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	idx := make(map[string]int, len(Columns))
	var missing []string
	for _, col := range Columns {
		j, ok := pos[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = j
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return idx, nil
}

// textOr returns the cell as text, or placeholder when the cell is empty.
func textOr(c sheet.Cell, placeholder string) string {
	v := cellText(c)
	if v == "" {
		return placeholder
	}
	return v
}

func cellText(c sheet.Cell) string {
	switch c.Kind {
	case sheet.Empty:
		return ""
	case sheet.Number:
		return formatNumber(c.Value)
	case sheet.Bool:
		if c.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return strings.TrimSpace(c.Value)
	}
}

func decodeGND(c sheet.Cell) string {
	v := cellText(c)
	if v == "" {
		return GrupoAusente
	}
	return "GND " + v
}

func decodeValor(c sheet.Cell, nf NumberFormat) (decimal.Decimal, error) {
	switch c.Kind {
	case sheet.Empty:
		return decimal.Zero, nil
	case sheet.Number:
		return decimal.NewFromString(c.Value)
	case sheet.String:
		if strings.TrimSpace(c.Value) == "" {
			return decimal.Zero, nil
		}
		return nf.Parse(c.Value)
	default:
		return decimal.Zero, fmt.Errorf("boolean is not an amount")
	}
}

// formatNumber prints integral numbers without a fractional part ("3.0" → "3")
// and leaves everything else as stored.
func formatNumber(raw string) string {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	if d.Equal(d.Truncate(0)) {
		return d.Truncate(0).String()
	}
	return d.String()
}
