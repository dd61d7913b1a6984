package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestReadCSVLatin1Semicolon(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "emendas.csv")
	content := "AUTOR;ÁREA;VALOR;VALI\n" +
		"José;Saúde;1.000,50;TRUE\n" +
		";;;\n" +
		"Maria;;10;true\n"
	enc, err := charmap.ISO8859_1.NewEncoder().String(content)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(p, []byte(enc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tbl, err := ReadCSV(p, Options{Delimiter: ';', Encoding: "latin1"})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Header[1] != "ÁREA" {
		t.Fatalf("header not decoded: %q", tbl.Header[1])
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("blank row should be skipped, got %d rows", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != Str("José") || tbl.Rows[0][1] != Str("Saúde") {
		t.Fatalf("row 0 = %+v", tbl.Rows[0])
	}
	if tbl.Rows[0][3] != Boolean(true) {
		t.Fatalf("TRUE should be a bool cell, got %+v", tbl.Rows[0][3])
	}
	// Only the exact spreadsheet spelling is a boolean.
	if tbl.Rows[1][3] != Str("true") {
		t.Fatalf("lowercase true should stay text, got %+v", tbl.Rows[1][3])
	}
	if !tbl.Rows[1][1].IsEmpty() {
		t.Fatalf("empty field should be an empty cell, got %+v", tbl.Rows[1][1])
	}
}

func TestReadCSVUTF8BOMAndShortRows(t *testing.T) {
	p := filepath.Join(t.TempDir(), "emendas.csv")
	if err := os.WriteFile(p, []byte("\xef\xbb\xbfAUTOR,GND,VALOR\nAna,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := ReadCSV(p, Options{})
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Header[0] != "AUTOR" {
		t.Fatalf("BOM not stripped: %q", tbl.Header[0])
	}
	if len(tbl.Rows[0]) != 3 || !tbl.Rows[0][2].IsEmpty() {
		t.Fatalf("short row should be padded: %+v", tbl.Rows[0])
	}
}

func TestReadCSVUnknownEncoding(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.csv")
	if err := os.WriteFile(p, []byte("A\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadCSV(p, Options{Encoding: "ebcdic"}); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestReadDispatch(t *testing.T) {
	if _, err := Read("dados.ods", Options{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if _, err := Read(filepath.Join(t.TempDir(), "missing.xlsx"), Options{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
