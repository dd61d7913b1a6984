// Package sheet reads spreadsheet sources into typed rows.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// CellKind tells how a cell was stored in the source.
type CellKind int

const (
	Empty CellKind = iota
	String
	Number
	Bool
)

func (k CellKind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is a single value with the type the source gave it.
// Bool cells carry "1" or "0"; Number cells carry the raw numeric text.
type Cell struct {
	Kind  CellKind
	Value string
}

// Str builds a string cell; an empty string yields an Empty cell.
func Str(v string) Cell {
	if v == "" {
		return Cell{}
	}
	return Cell{Kind: String, Value: v}
}

// Num builds a number cell from its raw text.
func Num(v string) Cell { return Cell{Kind: Number, Value: v} }

// Boolean builds a bool cell.
func Boolean(b bool) Cell {
	if b {
		return Cell{Kind: Bool, Value: "1"}
	}
	return Cell{Kind: Bool, Value: "0"}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Kind == Empty }

// Table is a header plus rows padded to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]Cell
}

// Options selects the sheet (xlsx) or the dialect (csv) to read.
type Options struct {
	// SheetName wins over SheetIndex when set.
	SheetName string
	// SheetIndex is 1-based; 0 means the first sheet.
	SheetIndex int
	// Delimiter for CSV. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Encoding for CSV: "utf-8" (default) or "latin1".
	Encoding string
	// Separators for amounts stored as text. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// ErrUnsupported indicates a file extension with no reader.
var ErrUnsupported = errors.New("unsupported spreadsheet format")

// Read selects a reader based on the file extension.
func Read(path string, opt Options) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadXLSX(path, opt)
	case ".csv", ".tsv":
		return ReadCSV(path, opt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
}

func padRow(row []Cell, width int) []Cell {
	if len(row) >= width {
		return row
	}
	tmp := make([]Cell, width)
	copy(tmp, row)
	return tmp
}

func isBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
