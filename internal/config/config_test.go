package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/painel-emendas/internal/dashboard"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SourcePath != "emendas.xlsx" || c.ListenAddr != "127.0.0.1:8501" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RankingLimit != dashboard.DefaultRankLimit || !c.Watch {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.PageTitle() != DefaultTitle {
		t.Fatalf("title = %q", c.PageTitle())
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "painel.yaml")
	if err := os.WriteFile(p, []byte("source_path: arquivo.xlsx\nranking_limit: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PAINEL_RANKING_LIMIT", "3")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.SourcePath != "arquivo.xlsx" {
		t.Fatalf("file value not applied: %q", c.SourcePath)
	}
	if c.RankingLimit != 3 {
		t.Fatalf("env should win over file, got %d", c.RankingLimit)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{SourcePath: "dados.csv", CSVDelimiter: ";", CSVEncoding: "latin1", FilterMode: "contains", Title: "Painel RN"}
	if err := Save(in, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.SourcePath != "dados.csv" || out.CSVEncoding != "latin1" || out.Title != "Painel RN" {
		t.Fatalf("round trip lost values: %+v", out)
	}
}

func TestSheetOptions(t *testing.T) {
	c := &Global{CSVDelimiter: ";", CSVEncoding: "latin1", SheetIndex: 2}
	opt, err := c.SheetOptions()
	if err != nil {
		t.Fatalf("SheetOptions: %v", err)
	}
	if opt.Delimiter != ';' || opt.Encoding != "latin1" || opt.SheetIndex != 2 {
		t.Fatalf("opt = %+v", opt)
	}
	c.CSVDelimiter = "tab"
	if opt, _ := c.SheetOptions(); opt.Delimiter != '\t' {
		t.Fatalf("tab not recognized: %q", opt.Delimiter)
	}
	c.CSVDelimiter = ";;"
	if _, err := c.SheetOptions(); err == nil {
		t.Fatal("expected error for multi-character delimiter")
	}
}

func TestDashboardSettings(t *testing.T) {
	c := &Global{FilterMode: "contains", RankingMetric: "quantidade"}
	s, err := c.DashboardSettings()
	if err != nil {
		t.Fatalf("DashboardSettings: %v", err)
	}
	if s.Mode != dashboard.ModeContains || s.Metric != dashboard.RankByCount || s.Limit != dashboard.DefaultRankLimit {
		t.Fatalf("settings = %+v", s)
	}
	c.FilterMode = "fuzzy"
	if _, err := c.DashboardSettings(); err == nil {
		t.Fatal("expected error for unknown filter mode")
	}
}

func TestSheetOptionsSeparators(t *testing.T) {
	c := &Global{DecimalSeparator: ",", ThousandsSeparator: "."}
	opt, err := c.SheetOptions()
	if err != nil {
		t.Fatalf("SheetOptions: %v", err)
	}
	if opt.DecimalSeparator != ',' || opt.ThousandsSeparator != '.' {
		t.Fatalf("opt = %+v", opt)
	}

	bad := []*Global{
		{DecimalSeparator: ",", ThousandsSeparator: ","},
		{ThousandsSeparator: "."},
		{DecimalSeparator: ",,"},
	}
	for _, c := range bad {
		if _, err := c.SheetOptions(); err == nil {
			t.Errorf("expected error for %+v", c)
		}
	}
}
