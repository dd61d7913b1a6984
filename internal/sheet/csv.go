package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads a delimited text file. Exact TRUE/FALSE (the way spreadsheet
// programs export booleans) become Bool cells; other non-empty fields are strings.
func ReadCSV(path string, opt Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	src, err := decoderFor(f, opt.Encoding)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = sniffDelimiter(path)
	}

	tbl := &Table{Name: filepath.Base(path)}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return tbl, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	tbl.Header = append([]string(nil), header...)
	line := 1
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = csvCell(v)
		}
		if isBlankRow(row) {
			continue
		}
		tbl.Rows = append(tbl.Rows, padRow(row, len(tbl.Header)))
	}
	return tbl, nil
}

func csvCell(v string) Cell {
	switch v {
	case "TRUE":
		return Boolean(true)
	case "FALSE":
		return Boolean(false)
	}
	return Str(v)
}

// decoderFor wraps r so it yields UTF-8. A UTF-8 BOM is dropped.
func decoderFor(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "latin1", "latin-1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported csv encoding: %s (use utf-8, latin1 or windows-1252)", encoding)
	}
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
