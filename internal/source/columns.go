package source

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// column identifies a recognized CSV field.
type column int

const (
	colPeriod column = iota
	colProduct
	colUnitPrice
	colMaterial
	colSubcontract
	colStartDate
	colShipDate
	colQuantity
	colThroughput
	colLeadTime
	colCashStart
	colCashEnd
)

var columnNames = map[column]string{
	colPeriod:      "period",
	colProduct:     "product",
	colUnitPrice:   "unit_price",
	colMaterial:    "material_cost",
	colSubcontract: "subcontract_cost",
	colStartDate:   "start_date",
	colShipDate:    "ship_date",
	colQuantity:    "quantity",
	colThroughput:  "throughput",
	colLeadTime:    "lead_time",
	colCashStart:   "cash_start",
	colCashEnd:     "cash_end",
}

func (c column) String() string { return columnNames[c] }

// headerAliases maps normalized header text to a column. English names and
// the Japanese headers used by existing spreadsheets are both accepted.
var headerAliases = map[string]column{
	"period": colPeriod, "month": colPeriod, "label": colPeriod,
	"月": colPeriod, "月（yyyy-mm）": colPeriod, "月(yyyy-mm)": colPeriod,

	"product": colProduct, "item": colProduct, "品名": colProduct, "製品名": colProduct,

	"unit_price": colUnitPrice, "price": colUnitPrice, "売上単価": colUnitPrice,
	"material_cost": colMaterial, "material": colMaterial, "材料費": colMaterial,
	"subcontract_cost": colSubcontract, "subcontract": colSubcontract, "外注費": colSubcontract,

	"start_date": colStartDate, "生産開始日": colStartDate,
	"ship_date": colShipDate, "出荷日": colShipDate,

	"quantity": colQuantity, "qty": colQuantity, "shipped": colQuantity, "出荷数": colQuantity,

	"throughput": colThroughput, "tp": colThroughput, "スループット": colThroughput,
	"スループット（tp）": colThroughput, "tp（万円）": colThroughput,

	"lead_time": colLeadTime, "lt": colLeadTime, "リードタイム": colLeadTime,
	"リードタイム（lt）": colLeadTime, "lt（日）": colLeadTime,

	"cash_start": colCashStart, "opening_cash": colCashStart, "期首現金": colCashStart,
	"期首現金残高": colCashStart,

	"cash_end": colCashEnd, "closing_cash": colCashEnd, "cash": colCashEnd,
	"期末現金": colCashEnd, "期末現金残高": colCashEnd, "現金残高（期末）": colCashEnd,
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// mapHeader resolves header cells to column positions. The first occurrence
// of a column wins.
func mapHeader(header []string) map[column]int {
	idx := make(map[column]int)
	for i, h := range header {
		c, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := idx[c]; !dup {
			idx[c] = i
		}
	}
	return idx
}

// ParseNumber coerces a cell to a float. Thousands separators and
// surrounding whitespace are ignored; anything unparseable is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParseQuantity coerces a cell to a unit count. Fractions are truncated;
// missing or unparseable values are 0.
func ParseQuantity(s string) int {
	v := ParseNumber(s)
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return 0
	}
	return int(v)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04",
	time.RFC3339,
}

// ParseDate coerces a cell to a date. ok is false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// leadTimeDays returns whole days between start and ship, at least 1.
// Missing dates give NaN.
func leadTimeDays(start, ship string) float64 {
	s, ok1 := ParseDate(start)
	e, ok2 := ParseDate(ship)
	if !ok1 || !ok2 {
		return math.NaN()
	}
	days := math.Floor(e.Sub(s).Hours() / 24)
	return math.Max(days, 1)
}
