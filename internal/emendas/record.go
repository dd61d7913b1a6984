// Package emendas loads parliamentary amendment spreadsheets into normalized records.
package emendas

import (
	"github.com/shopspring/decimal"
)

// Placeholders written in place of missing values.
const (
	ObjetoAusente       = "Não especificado"
	AreaAusente         = "Não definida"
	LocalizacaoAusente  = "Não definida"
	GrupoAusente        = "Não definido"
	BeneficiarioAusente = "Não definido"
	DeputadoAusente     = "Não identificado"
)

// TransferKind is the recoded TRANSFERÊNCIA ESPECIAL flag.
type TransferKind int

const (
	TransferOutro TransferKind = iota
	TransferEspecial
)

func (k TransferKind) String() string {
	if k == TransferEspecial {
		return "Transferência Especial"
	}
	return "Outro Tipo"
}

// MarshalText renders the label so JSON output reads like the dashboard.
func (k TransferKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// AmendmentKind is the recoded VALI flag.
type AmendmentKind int

const (
	NaoImpositiva AmendmentKind = iota
	Impositiva
)

func (k AmendmentKind) String() string {
	if k == Impositiva {
		return "Impositiva"
	}
	return "Não Impositiva"
}

func (k AmendmentKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Record is one amendment after normalization. Every field holds a value.
type Record struct {
	Deputado      string          `json:"nomeDeputado"`
	Numero        string          `json:"numero"`
	Objeto        string          `json:"objeto"`
	Area          string          `json:"area"`
	Localizacao   string          `json:"localizacao"`
	GrupoDespesa  string          `json:"grupoDespesa"`
	Beneficiario  string          `json:"beneficiario"`
	Valor         decimal.Decimal `json:"valor"`
	Transferencia TransferKind    `json:"transferenciaEspecial"`
	Tipo          AmendmentKind   `json:"tipoEmenda"`
}
