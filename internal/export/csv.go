// Package export writes computed series and projections as delimited text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SeriesHeader is the column order of WriteSeries.
var SeriesHeader = []string{
	"period",
	"valid_items",
	"excluded_items",
	"total_throughput",
	"shipped_throughput",
	"weighted_lead_time",
	"weighted_productivity",
	"cash_start",
	"cash_end",
	"cash_delta",
	"adjusted_productivity",
	"adjusted_cash_delta",
}

// TrajectoryHeader is the column order of WriteTrajectory.
var TrajectoryHeader = []string{"step", "balance", "shortfall"}

// Options controls the output encoding.
type Options struct {
	BOM bool // prefix a UTF-8 byte order mark for spreadsheet tools
}

// Round2 formats v with two decimals, rounding half away from zero.
// Missing values format as the empty string.
func Round2(v float64) string {
	if model.IsMissing(v) {
		return ""
	}
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func optional(v *float64) string {
	if v == nil {
		return ""
	}
	return Round2(*v)
}

// WriteSeries writes one row per adjusted period.
func WriteSeries(w io.Writer, rows []model.AdjustedMetrics, opts Options) error {
	cw, err := newWriter(w, opts)
	if err != nil {
		return err
	}
	if err := cw.Write(SeriesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, am := range rows {
		rec := []string{
			am.Label,
			strconv.Itoa(am.ValidItems),
			strconv.Itoa(am.ExcludedItems),
			Round2(am.TotalThroughput),
			Round2(am.ShippedThroughput),
			Round2(am.WeightedLeadTime),
			Round2(am.Productivity),
			optional(am.CashStart),
			optional(am.CashEnd),
			optional(am.CashDelta),
			Round2(am.AdjustedProductivity),
			optional(am.AdjustedCashDelta),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing %s: %w", am.Label, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTrajectory writes the projected balance for each step of the horizon.
func WriteTrajectory(w io.Writer, proj pipeline.Projection, opts Options) error {
	cw, err := newWriter(w, opts)
	if err != nil {
		return err
	}
	if err := cw.Write(TrajectoryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for k, bal := range proj.Trajectory {
		flag := ""
		if proj.Mode == model.ProjectionExtrapolate && proj.MonthIndex != nil && *proj.MonthIndex == k {
			flag = "yes"
		}
		if err := cw.Write([]string{strconv.Itoa(k), Round2(bal), flag}); err != nil {
			return fmt.Errorf("writing step %d: %w", k, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile creates path (and its directory) and writes the series, or the
// trajectory when trajectory is set.
func WriteFile(path string, res *pipeline.Result, trajectory bool, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if trajectory {
		err = WriteTrajectory(f, res.Projection, opts)
	} else {
		err = WriteSeries(f, res.Adjusted, opts)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func newWriter(w io.Writer, opts Options) (*csv.Writer, error) {
	if opts.BOM {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("writing BOM: %w", err)
		}
	}
	return csv.NewWriter(w), nil
}
