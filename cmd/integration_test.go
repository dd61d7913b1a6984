package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

const fixtureTSV = "AUTOR\tNÚMERO\tOBJETO\tÁREA\tLOCALIZAÇÃO\tGND\tBENEFICIÁRIO\tVALOR\tTRANSFERÊNCIA ESPECIAL\tVALI\n" +
	"Dep. Ana\t001\tReforma\tSaúde\tNatal\t3\tHospital\t1.000,50\tSim\tTRUE\n" +
	"Dep. Bruno\t002\t\tEducação\t\t4\t\t200\tNão\tFALSE\n"

func TestMain(m *testing.M) {
	logOutput = io.Discard
	os.Exit(m.Run())
}

// resetFlags restores every flag to its default so sticky values do not leak
// between invocations of the same command tree.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd is a helper to execute the root command with args and capture stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir and writes the fixture source there.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	src := filepath.Join(home, "emendas.tsv")
	if err := os.WriteFile(src, []byte(fixtureTSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return src
}

func TestCLI_SummaryTable(t *testing.T) {
	src := isolate(t)

	out := mustRun(t, "summary", "--source", src)
	for _, want := range []string{"Resumo", "R$ 1.200,50", "Dep. Ana", "Dep. Bruno", "Distribuição por Área", "(2 linhas)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "summary", "--source", src, "--deputado", "Dep. Bruno", "--no-detail")
	if !strings.Contains(out, "R$ 200,00") || strings.Contains(out, "R$ 1.200,50") {
		t.Fatalf("filtered summary wrong:\n%s", out)
	}
	if strings.Contains(out, "Detalhes das Emendas") {
		t.Fatalf("--no-detail still printed the detail table")
	}
}

func TestCLI_SummaryContainsModeAndJSON(t *testing.T) {
	src := isolate(t)

	out := mustRun(t, "summary", "--source", src, "--modo", "contains", "--area", "saú", "--format", "json")
	var v struct {
		Resumo struct {
			Quantidade int `json:"quantidade"`
		} `json:"resumo"`
		Detalhes []struct {
			NomeDeputado string `json:"nomeDeputado"`
		} `json:"detalhes"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if v.Resumo.Quantidade != 1 || len(v.Detalhes) != 1 || v.Detalhes[0].NomeDeputado != "Dep. Ana" {
		t.Fatalf("contains filter wrong: %+v", v)
	}
}

func TestCLI_SummaryToFile(t *testing.T) {
	src := isolate(t)
	dst := filepath.Join(filepath.Dir(src), "out", "resumo.md")

	out := mustRun(t, "summary", "--source", src, "-f", "md", "-o", dst)
	if !strings.Contains(out, "Wrote summary") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), "## Resumo") {
		t.Fatalf("markdown output missing heading:\n%s", b)
	}
}

func TestCLI_SummaryMissingSource(t *testing.T) {
	src := isolate(t)
	missing := filepath.Join(filepath.Dir(src), "nao-existe.xlsx")

	out, err := runCmd(t, "summary", "--source", missing)
	if err == nil {
		t.Fatalf("expected error for missing source")
	}
	if !strings.Contains(out, "não encontrado") || !strings.Contains(out, "R$ 0,00") {
		t.Fatalf("expected empty dashboard with message, got:\n%s", out)
	}
}

func TestCLI_SummaryRejectsBadFlags(t *testing.T) {
	src := isolate(t)
	if _, err := runCmd(t, "summary", "--source", src, "--by", "cor"); err == nil {
		t.Fatalf("expected error for unknown --by dimension")
	}
	if _, err := runCmd(t, "summary", "--source", src, "--ranking", "idade"); err == nil {
		t.Fatalf("expected error for unknown --ranking")
	}
	if _, err := runCmd(t, "summary", "--source", src, "--format", "csv"); err == nil {
		t.Fatalf("expected error for unknown --format")
	}
}

func TestCLI_Export(t *testing.T) {
	src := isolate(t)
	dst := filepath.Join(filepath.Dir(src), "saida.xlsx")

	out := mustRun(t, "export", "--source", src, "--grupo", "GND 3", "-o", dst)
	if !strings.Contains(out, "Exported 1 emendas") {
		t.Fatalf("unexpected output: %s", out)
	}
	f, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Emendas")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "Dep. Ana" {
		t.Fatalf("unexpected detail sheet: %v", rows)
	}
}

func TestCLI_Charts(t *testing.T) {
	src := isolate(t)
	dir := filepath.Join(filepath.Dir(src), "graficos")

	mustRun(t, "charts", "--source", src, "--dir", dir, "--ranking", "quantidade")
	for _, name := range []string{"area.svg", "ranking.svg"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !strings.Contains(string(b), "<svg") {
			t.Fatalf("%s is not svg", name)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)

	mustRun(t, "config", "set", "ranking_metric", "quantidade")
	mustRun(t, "config", "set", "session_secret", "segredo-muito-longo")
	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "ranking_metric: quantidade") {
		t.Fatalf("config show missing ranking_metric:\n%s", out)
	}
	if strings.Contains(out, "segredo-muito-longo") || !strings.Contains(out, "seg****ngo") {
		t.Fatalf("session_secret not masked:\n%s", out)
	}

	if _, err := runCmd(t, "config", "set", "filter_mode", "fuzzy"); err == nil {
		t.Fatalf("expected error for invalid filter_mode")
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestCLI_LogsGoToLogOutput(t *testing.T) {
	src := isolate(t)
	var buf bytes.Buffer
	logOutput = &buf
	t.Cleanup(func() { logOutput = io.Discard })

	out := mustRun(t, "summary", "--source", src, "--no-detail")
	if !strings.Contains(buf.String(), "source loaded") {
		t.Fatalf("expected load log in log output, got %q", buf.String())
	}
	if strings.Contains(out, "source loaded") {
		t.Fatalf("log line leaked into command output:\n%s", out)
	}
}

func TestCLI_ChartsSingleDeputado(t *testing.T) {
	src := isolate(t)
	dir := filepath.Join(filepath.Dir(src), "graficos")

	for _, metric := range []string{"valor", "quantidade"} {
		mustRun(t, "charts", "--source", src, "--dir", dir, "--deputado", "Dep. Ana", "--ranking", metric)
		b, err := os.ReadFile(filepath.Join(dir, "ranking.svg"))
		if err != nil {
			t.Fatalf("read ranking.svg: %v", err)
		}
		if strings.Contains(string(b), "Sem dados") {
			t.Fatalf("%s: single legislator rendered as placeholder", metric)
		}
	}
}
