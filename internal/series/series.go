// Package series aligns per-currency rate series onto a shared daily axis.
//
// Combine is the single entry point: it takes independently fetched series,
// builds the union of their calendar days, left-joins every currency onto
// that axis and fills gaps forward, then backward.
package series

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// Point is a single dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ordered list of observations for one currency.
type Series []Point

// FromRatePoints groups rate points by currency.
func FromRatePoints(points []models.RatePoint) map[string]Series {
	out := make(map[string]Series)
	for _, p := range points {
		out[p.Currency] = append(out[p.Currency], Point{Date: p.Date, Value: p.Rate})
	}
	for code, s := range out {
		s.Sort()
		out[code] = s
	}
	return out
}

// Sort orders the series by date, keeping equal dates in input order.
func (s Series) Sort() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
}

// ParseValue coerces an upstream numeric string. Empty, malformed and
// non-finite inputs are rejected.
func ParseValue(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Cell is one table value. Valid is false when no observation exists.
type Cell struct {
	Value float64
	Valid bool
}

// Table is a date-indexed frame with one column per currency.
// Dates are unique UTC days in ascending order.
type Table struct {
	dates   []time.Time
	codes   []string
	columns map[string][]Cell
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.dates)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Dates returns the date axis.
func (t *Table) Dates() []time.Time {
	if t == nil {
		return nil
	}
	return t.dates
}

// Currencies returns the column codes in order.
func (t *Table) Currencies() []string {
	if t == nil {
		return nil
	}
	return t.codes
}

// Has reports whether the table carries a column for code.
func (t *Table) Has(code string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[code]
	return ok
}

// Cell returns the cell at row i of column code.
func (t *Table) Cell(i int, code string) Cell {
	col, ok := t.columns[code]
	if !ok || i < 0 || i >= len(col) {
		return Cell{}
	}
	return col[i]
}

// Column returns the valid values of a column in date order. Absent cells
// are dropped. The bool is false when the column does not exist.
func (t *Table) Column(code string) ([]float64, bool) {
	if t == nil {
		return nil, false
	}
	col, ok := t.columns[code]
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(col))
	for _, c := range col {
		if c.Valid {
			out = append(out, c.Value)
		}
	}
	return out, true
}

// Row is a view of one table row.
type Row struct {
	Date  time.Time
	Cells []Cell // aligned with Table.Currencies()
}

// Rows returns every row in date order.
func (t *Table) Rows() []Row {
	rows := make([]Row, t.Len())
	for i := range rows {
		cells := make([]Cell, len(t.codes))
		for j, code := range t.codes {
			cells[j] = t.columns[code][i]
		}
		rows[i] = Row{Date: t.dates[i], Cells: cells}
	}
	return rows
}

type jsonRow struct {
	Date  string              `json:"date"`
	Rates map[string]*float64 `json:"rates"`
}

// MarshalJSON encodes the table as {"currencies": [...], "rows": [...]},
// absent cells as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	rows := make([]jsonRow, 0, t.Len())
	for _, r := range t.Rows() {
		jr := jsonRow{Date: utils.FormatDay(r.Date), Rates: make(map[string]*float64, len(r.Cells))}
		for j, c := range r.Cells {
			if c.Valid {
				v := c.Value
				jr.Rates[t.codes[j]] = &v
			} else {
				jr.Rates[t.codes[j]] = nil
			}
		}
		rows = append(rows, jr)
	}
	codes := t.Currencies()
	if codes == nil {
		codes = []string{}
	}
	return json.Marshal(struct {
		Currencies []string  `json:"currencies"`
		Rows       []jsonRow `json:"rows"`
	}{codes, rows})
}
