package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/runway/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "a.CSV", "period,throughput,lead_time,quantity\n2024-01,10,2,1\n")
	tomlPath := writeFile(t, dir, "b.toml", "balances = [10, 5]\n")
	txtPath := writeFile(t, dir, "c.txt", "x")

	if res, err := LoadFile(csvPath); err != nil || res.Layout != LayoutLedger {
		t.Errorf("csv: %v, %v", res, err)
	}
	if res, err := LoadFile(tomlPath); err != nil || res.Layout != LayoutManual {
		t.Errorf("toml: %v, %v", res, err)
	}
	if _, err := LoadFile(txtPath); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("txt err = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing err = %v, want not-exist", err)
	}
}

func TestLoadWithBalances(t *testing.T) {
	dir := t.TempDir()
	items := writeFile(t, dir, "items.csv",
		"period,throughput,lead_time,quantity\n2024-01,100,10,5\n2024-02,100,10,5\n")
	bal := writeFile(t, dir, "bal.csv",
		"period,cash_start,cash_end\n2024-01,450,400\n2024-02,400,350\n2024-09,1,1\n")

	res, err := LoadWithBalances(items, bal)
	if err != nil {
		t.Fatal(err)
	}
	in := res.Input
	if in.Balance != model.BalanceBoundary {
		t.Errorf("balance = %s, want boundary", in.Balance)
	}
	if len(in.Periods) != 2 {
		t.Fatalf("periods = %d, want 2 (unmatched balance rows are dropped)", len(in.Periods))
	}
	if *in.Periods[1].CashEnd != 350 || len(in.Periods[1].Items) != 1 {
		t.Errorf("Feb = %+v", in.Periods[1])
	}
}

func TestMergeBalances_CountsUnmatched(t *testing.T) {
	primary := model.Input{Periods: []model.PeriodInput{{Label: "a"}, {Label: "b"}}}
	balances := model.Input{
		Balance: model.BalanceRunning,
		Periods: []model.PeriodInput{
			{Label: " a ", CashEnd: model.Float(10)},
			{Label: "z", CashEnd: model.Float(1)},
		},
	}
	out, unmatched := MergeBalances(primary, balances)
	if unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", unmatched)
	}
	if out.Periods[0].CashEnd == nil || *out.Periods[0].CashEnd != 10 {
		t.Errorf("a end = %v, want 10", out.Periods[0].CashEnd)
	}
	if out.Balance != model.BalanceRunning {
		t.Errorf("balance = %s, want running", out.Balance)
	}
	if primary.Periods[0].CashEnd != nil {
		t.Error("MergeBalances modified its input")
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	older := writeFile(t, dir, "old.csv", "x")
	writeFile(t, dir, "sub/new.toml", "x")
	writeFile(t, dir, "notes.md", "x")
	writeFile(t, dir, ".hidden/skip.csv", "x")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	files, err := ScanDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("found %d files, want 2: %+v", len(files), files)
	}
	if files[0].Name != filepath.Join("sub", "new.toml") || files[0].Format != "toml" {
		t.Errorf("first = %+v, want the newer toml file", files[0])
	}
	if files[1].Format != "csv" {
		t.Errorf("second format = %q", files[1].Format)
	}

	if files, err := ScanDir(filepath.Join(dir, "nope")); err != nil || files != nil {
		t.Errorf("missing dir = %v, %v", files, err)
	}
}
