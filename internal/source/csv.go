package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/theirongolddev/runway/internal/model"
)

// Layout is the shape of an input file.
type Layout int

const (
	// LayoutLedger rows carry throughput and lead time directly.
	LayoutLedger Layout = iota
	// LayoutShipment rows carry prices, costs, and production/ship dates.
	LayoutShipment
	// LayoutBalances rows carry only period labels and cash balances.
	LayoutBalances
	// LayoutManual is a hand-entered TOML file.
	LayoutManual
)

func (l Layout) String() string {
	switch l {
	case LayoutShipment:
		return "shipment"
	case LayoutBalances:
		return "balances"
	case LayoutManual:
		return "manual"
	default:
		return "ledger"
	}
}

// ParseResult holds the output of parsing a single input file.
type ParseResult struct {
	Input       model.Input
	Layout      Layout
	Encoding    string
	Rows        int
	SkippedRows int  // rows without a period label
	HasQuantity bool // false when no quantity column was present
}

// ParseCSV reads a delimited text file into periods. Rows are grouped by
// period label (or by ship month for shipment files without one). Each
// period's cash balance is the first non-missing value among its rows.
func ParseCSV(raw []byte, name string) (*ParseResult, error) {
	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	idx := mapHeader(header)
	layout, err := detectLayout(idx)
	if err != nil {
		return nil, err
	}

	res := &ParseResult{Layout: layout, Encoding: enc}
	_, res.HasQuantity = idx[colQuantity]

	cell := func(rec []string, c column) string {
		i, ok := idx[c]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	type group struct {
		period    model.PeriodInput
		cashStart *float64
		cashEnd   *float64
	}
	groups := make(map[string]*group)
	var order []string

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		if blankRecord(rec) {
			continue
		}
		res.Rows++

		label := strings.TrimSpace(cell(rec, colPeriod))
		if label == "" && layout == LayoutShipment {
			if t, ok := ParseDate(cell(rec, colShipDate)); ok {
				label = t.Format("2006-01")
			}
		}
		if label == "" {
			res.SkippedRows++
			continue
		}

		g, ok := groups[label]
		if !ok {
			g = &group{period: model.PeriodInput{Label: label}}
			groups[label] = g
			order = append(order, label)
		}

		if v := ParseNumber(cell(rec, colCashStart)); g.cashStart == nil && !model.IsMissing(v) {
			g.cashStart = model.Float(v)
		}
		if v := ParseNumber(cell(rec, colCashEnd)); g.cashEnd == nil && !model.IsMissing(v) {
			g.cashEnd = model.Float(v)
		}

		switch layout {
		case LayoutLedger:
			g.period.Items = append(g.period.Items, model.Item{
				Product:    strings.TrimSpace(cell(rec, colProduct)),
				Throughput: ParseNumber(cell(rec, colThroughput)),
				LeadTime:   ParseNumber(cell(rec, colLeadTime)),
				Quantity:   ParseQuantity(cell(rec, colQuantity)),
			})
		case LayoutShipment:
			g.period.Items = append(g.period.Items, model.Item{
				Product: strings.TrimSpace(cell(rec, colProduct)),
				Throughput: ParseNumber(cell(rec, colUnitPrice)) -
					ParseNumber(cell(rec, colMaterial)) -
					costOrZero(idx, cell(rec, colSubcontract), colSubcontract),
				LeadTime: leadTimeDays(cell(rec, colStartDate), cell(rec, colShipDate)),
				Quantity: ParseQuantity(cell(rec, colQuantity)),
			})
		}
	}

	_, hasStart := idx[colCashStart]
	in := model.Input{
		Balance:     model.BalanceRunning,
		KeyedByDate: true,
		Source:      name,
		Periods:     make([]model.PeriodInput, 0, len(order)),
	}
	if hasStart {
		in.Balance = model.BalanceBoundary
	}

	sort.Strings(order)
	for _, label := range order {
		g := groups[label]
		g.period.CashStart = g.cashStart
		g.period.CashEnd = g.cashEnd
		in.Periods = append(in.Periods, g.period)
	}
	res.Input = in
	return res, nil
}

func detectLayout(idx map[column]int) (Layout, error) {
	has := func(cols ...column) bool {
		for _, c := range cols {
			if _, ok := idx[c]; !ok {
				return false
			}
		}
		return true
	}
	missing := func(cols ...column) string {
		var names []string
		for _, c := range cols {
			if _, ok := idx[c]; !ok {
				names = append(names, c.String())
			}
		}
		return strings.Join(names, ", ")
	}

	switch {
	case has(colThroughput, colLeadTime):
		if !has(colPeriod) {
			return 0, fmt.Errorf("%w: %s", ErrMissingColumns, missing(colPeriod))
		}
		return LayoutLedger, nil
	case has(colUnitPrice, colMaterial, colStartDate, colShipDate):
		return LayoutShipment, nil
	case has(colPeriod) && (has(colCashEnd) || has(colCashStart)):
		return LayoutBalances, nil
	case has(colUnitPrice) || has(colStartDate) || has(colShipDate):
		return 0, fmt.Errorf("%w: %s", ErrMissingColumns,
			missing(colUnitPrice, colMaterial, colStartDate, colShipDate))
	default:
		return 0, fmt.Errorf("%w: %s", ErrMissingColumns,
			missing(colPeriod, colThroughput, colLeadTime))
	}
}

// costOrZero treats an absent optional cost column as zero but keeps a
// present-but-unparseable cell missing.
func costOrZero(idx map[column]int, s string, c column) float64 {
	if _, ok := idx[c]; !ok {
		return 0
	}
	v := ParseNumber(s)
	if math.IsNaN(v) && strings.TrimSpace(s) == "" {
		return 0
	}
	return v
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
