package source

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
)

// manualFile is the on-disk shape of a hand-entered input.
//
//	balance = "boundary"            # or "running"
//	balances = [1000, 950, 900]     # optional: n+1 boundary balances
//
//	[[periods]]
//	label = "2024-01"
//	cash_start = 1000.0
//	cash_end = 950.0
//
//	  [[periods.items]]
//	  product = "Widget"
//	  throughput = 120.0
//	  lead_time = 8
//	  quantity = 3
type manualFile struct {
	Balance     string         `toml:"balance"`
	KeyedByDate bool           `toml:"keyed_by_date"`
	Balances    []float64      `toml:"balances"`
	Periods     []manualPeriod `toml:"periods"`
}

type manualPeriod struct {
	Label     string       `toml:"label"`
	CashStart *float64     `toml:"cash_start"`
	CashEnd   *float64     `toml:"cash_end"`
	Items     []manualItem `toml:"items"`
}

type manualItem struct {
	Product    string   `toml:"product"`
	Throughput *float64 `toml:"throughput"`
	LeadTime   *float64 `toml:"lead_time"`
	Quantity   *float64 `toml:"quantity"`
}

// ParseTOML reads a hand-entered TOML input. Missing numbers become the
// missing marker and are filtered by the engine like any other bad value.
func ParseTOML(raw []byte, name string) (*ParseResult, error) {
	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	var mf manualFile
	md, err := toml.Decode(string(text), &mf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		logging.Log.WithField("file", name).Warnf("ignoring unknown keys: %s", strings.Join(keys, ", "))
	}

	in := model.Input{
		KeyedByDate: mf.KeyedByDate,
		Source:      name,
	}
	switch strings.ToLower(strings.TrimSpace(mf.Balance)) {
	case "", "boundary":
		in.Balance = model.BalanceBoundary
	case "running":
		in.Balance = model.BalanceRunning
	default:
		return nil, fmt.Errorf("%w: balance must be \"boundary\" or \"running\", got %q", ErrUnreadable, mf.Balance)
	}

	res := &ParseResult{Layout: LayoutManual, Encoding: enc, HasQuantity: true}

	for i, mp := range mf.Periods {
		label := strings.TrimSpace(mp.Label)
		if label == "" {
			label = model.DefaultLabel(i)
		}
		p := model.PeriodInput{
			Label:     label,
			CashStart: finiteOrNil(mp.CashStart),
			CashEnd:   finiteOrNil(mp.CashEnd),
		}
		for _, mi := range mp.Items {
			p.Items = append(p.Items, model.Item{
				Product:    mi.Product,
				Throughput: floatOrMissing(mi.Throughput),
				LeadTime:   floatOrMissing(mi.LeadTime),
				Quantity:   quantityOrZero(mi.Quantity),
			})
			res.Rows++
		}
		in.Periods = append(in.Periods, p)
	}

	if len(mf.Balances) > 0 {
		if err := applyBoundaryBalances(&in, mf.Balances); err != nil {
			return nil, err
		}
	}

	res.Input = in
	return res, nil
}

// applyBoundaryBalances assigns n+1 balances to n periods as start/end pairs.
// With no periods declared, the periods are created from the list.
func applyBoundaryBalances(in *model.Input, balances []float64) error {
	if len(in.Periods) == 0 {
		in.Periods = model.BoundaryPeriods(nil, balances)
		for i := range in.Periods {
			in.Periods[i].CashStart = finiteOrNil(in.Periods[i].CashStart)
			in.Periods[i].CashEnd = finiteOrNil(in.Periods[i].CashEnd)
		}
		in.Balance = model.BalanceBoundary
		return nil
	}
	if len(balances) != len(in.Periods)+1 {
		return fmt.Errorf("%w: %d periods need %d balances, got %d",
			ErrBalanceCountMisfit, len(in.Periods), len(in.Periods)+1, len(balances))
	}

	labels := make([]string, len(in.Periods))
	for i, p := range in.Periods {
		labels[i] = p.Label
	}
	bounds := model.BoundaryPeriods(labels, balances)
	for i := range in.Periods {
		in.Periods[i].CashStart = finiteOrNil(bounds[i].CashStart)
		in.Periods[i].CashEnd = finiteOrNil(bounds[i].CashEnd)
	}
	in.Balance = model.BalanceBoundary
	return nil
}

// finiteOrNil drops nan and inf balances, which TOML accepts as literals.
func finiteOrNil(v *float64) *float64 {
	if v == nil || model.IsMissing(*v) {
		return nil
	}
	return v
}

func floatOrMissing(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func quantityOrZero(v *float64) int {
	if v == nil || model.IsMissing(*v) || math.Abs(*v) > math.MaxInt32 {
		return 0
	}
	return int(*v)
}
