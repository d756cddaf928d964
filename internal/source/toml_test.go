package source

import (
	"errors"
	"math"
	"testing"

	"github.com/theirongolddev/runway/internal/model"
)

func TestParseTOML_Periods(t *testing.T) {
	raw := []byte(`
balance = "boundary"

[[periods]]
label = "2024-01"
cash_start = 1000.0
cash_end = 950.0

  [[periods.items]]
  product = "Widget"
  throughput = 120.0
  lead_time = 8
  quantity = 3

  [[periods.items]]
  product = "Gadget"
  lead_time = 4
  quantity = 1

[[periods]]
cash_start = 950.0
cash_end = 880.0
`)
	res, err := ParseTOML(raw, "manual.toml")
	if err != nil {
		t.Fatal(err)
	}
	if res.Layout != LayoutManual || res.Rows != 2 {
		t.Errorf("layout=%s rows=%d", res.Layout, res.Rows)
	}

	in := res.Input
	if in.Balance != model.BalanceBoundary || len(in.Periods) != 2 {
		t.Fatalf("input = %+v", in)
	}
	if in.Periods[1].Label != "Month 2" {
		t.Errorf("default label = %q, want Month 2", in.Periods[1].Label)
	}

	w := in.Periods[0].Items[0]
	if w.Throughput != 120 || w.LeadTime != 8 || w.Quantity != 3 {
		t.Errorf("Widget = %+v", w)
	}
	if g := in.Periods[0].Items[1]; !math.IsNaN(g.Throughput) {
		t.Errorf("Gadget throughput = %v, want NaN", g.Throughput)
	}
	if *in.Periods[1].CashEnd != 880 {
		t.Errorf("period 2 end = %v", *in.Periods[1].CashEnd)
	}
}

func TestParseTOML_BalanceList(t *testing.T) {
	raw := []byte(`
balance = "running"
balances = [1000, 950, 900]

[[periods]]
label = "Jan"

[[periods]]
label = "Feb"
`)
	res, err := ParseTOML(raw, "list.toml")
	if err != nil {
		t.Fatal(err)
	}
	in := res.Input
	if in.Balance != model.BalanceBoundary {
		t.Errorf("balance = %s, want boundary once a list is given", in.Balance)
	}
	if *in.Periods[1].CashStart != 950 || *in.Periods[1].CashEnd != 900 {
		t.Errorf("Feb = %v..%v, want 950..900", *in.Periods[1].CashStart, *in.Periods[1].CashEnd)
	}
	if in.Periods[0].Label != "Jan" {
		t.Errorf("label = %q, want Jan", in.Periods[0].Label)
	}
}

func TestParseTOML_BalanceListOnly(t *testing.T) {
	res, err := ParseTOML([]byte(`balances = [500, 450, 430, 400]`), "only.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Input.Periods) != 3 || res.Input.Periods[2].Label != "Month 3" {
		t.Errorf("periods = %+v", res.Input.Periods)
	}
}

func TestParseTOML_NonFiniteBalancesAreMissing(t *testing.T) {
	raw := []byte(`
balance = "running"

[[periods]]
cash_end = 1000.0

[[periods]]
cash_end = nan

[[periods]]
cash_start = -inf
cash_end = 400.0

[[periods]]
cash_end = 100.0
`)
	res, err := ParseTOML(raw, "nan.toml")
	if err != nil {
		t.Fatal(err)
	}
	ps := res.Input.Periods
	if len(ps) != 4 {
		t.Fatalf("periods = %d, want 4", len(ps))
	}
	if ps[1].CashEnd != nil {
		t.Errorf("nan end balance = %v, want nil", *ps[1].CashEnd)
	}
	if ps[2].CashStart != nil {
		t.Errorf("-inf start balance = %v, want nil", *ps[2].CashStart)
	}
	if ps[2].CashEnd == nil || *ps[2].CashEnd != 400 {
		t.Errorf("finite end balance lost: %v", ps[2].CashEnd)
	}

	res, err = ParseTOML([]byte(`balances = [500, nan, 400]`), "list.toml")
	if err != nil {
		t.Fatal(err)
	}
	ps = res.Input.Periods
	if ps[0].CashEnd != nil || ps[1].CashStart != nil {
		t.Errorf("nan in balance list survived: %v %v", ps[0].CashEnd, ps[1].CashStart)
	}
	if *ps[0].CashStart != 500 || *ps[1].CashEnd != 400 {
		t.Errorf("finite list balances changed")
	}
}

func TestParseTOML_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"syntax", "balance = ", ErrUnreadable},
		{"bad balance mode", `balance = "monthly"`, ErrUnreadable},
		{"balance count", "balances = [1, 2]\n[[periods]]\n[[periods]]\n", ErrBalanceCountMisfit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTOML([]byte(tt.raw), tt.name)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
