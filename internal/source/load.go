// Package source discovers and parses runway input files.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/runway/internal/logging"
	"github.com/theirongolddev/runway/internal/model"
)

// LoadFile reads and parses one input file, choosing the parser by extension.
func LoadFile(path string) (*ParseResult, error) {
	format := FormatOf(path)
	if format == "" {
		return nil, fmt.Errorf("%s: %w (want .csv or .toml)", path, ErrUnsupportedFormat)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	name := filepath.Base(path)
	var res *ParseResult
	switch format {
	case "toml":
		res, err = ParseTOML(raw, name)
	default:
		res, err = ParseCSV(raw, name)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return res, nil
}

// LoadWithBalances loads an item file and, when balancesPath is set,
// overlays the cash balances from a second file.
func LoadWithBalances(path, balancesPath string) (*ParseResult, error) {
	res, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	if balancesPath == "" {
		return res, nil
	}

	bal, err := LoadFile(balancesPath)
	if err != nil {
		return nil, err
	}
	merged, unmatched := MergeBalances(res.Input, bal.Input)
	if unmatched > 0 {
		logging.Log.WithField("file", filepath.Base(balancesPath)).
			Warnf("%d balance periods have no matching label", unmatched)
	}
	res.Input = merged
	return res, nil
}

// MergeBalances overlays the cash balances of balances onto primary by
// period label. The balance mode of the balances input wins when it
// supplies any value. It returns the number of balance periods with no
// matching label in primary.
func MergeBalances(primary, balances model.Input) (model.Input, int) {
	byLabel := make(map[string]model.PeriodInput, len(balances.Periods))
	for _, p := range balances.Periods {
		byLabel[strings.TrimSpace(p.Label)] = p
	}

	out := primary
	out.Periods = make([]model.PeriodInput, len(primary.Periods))
	matched := make(map[string]bool)
	for i, p := range primary.Periods {
		label := strings.TrimSpace(p.Label)
		if b, ok := byLabel[label]; ok {
			matched[label] = true
			if b.CashStart != nil {
				p.CashStart = model.Float(*b.CashStart)
			}
			if b.CashEnd != nil {
				p.CashEnd = model.Float(*b.CashEnd)
			}
		}
		out.Periods[i] = p
	}

	if len(matched) > 0 {
		out.Balance = balances.Balance
	}
	if balances.Source != "" {
		out.Source = primary.Source + " + " + balances.Source
	}
	return out, len(byLabel) - len(matched)
}
