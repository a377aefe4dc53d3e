package series

import (
	"math"
	"sort"
	"time"

	"github.com/seenimoa/fxdash/pkg/utils"
)

// Combine aligns the given series onto one daily axis.
//
// Observations are normalized to their UTC calendar day; when a currency
// has several observations on the same day the last one in input order
// wins. Currencies with no usable observation get no column. An empty
// input yields an empty table.
func Combine(in map[string]Series) *Table {
	t := &Table{columns: make(map[string][]Cell)}

	byDay := make(map[string]map[time.Time]float64, len(in))
	axis := make(map[time.Time]struct{})
	for code, s := range in {
		days := make(map[time.Time]float64, len(s))
		for _, p := range s {
			if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
				continue
			}
			d := utils.DayUTC(p.Date)
			days[d] = p.Value
			axis[d] = struct{}{}
		}
		if len(days) > 0 {
			byDay[code] = days
			t.codes = append(t.codes, code)
		}
	}
	if len(t.codes) == 0 {
		return t
	}
	sort.Strings(t.codes)

	t.dates = make([]time.Time, 0, len(axis))
	for d := range axis {
		t.dates = append(t.dates, d)
	}
	sort.Slice(t.dates, func(i, j int) bool { return t.dates[i].Before(t.dates[j]) })

	for _, code := range t.codes {
		col := make([]Cell, len(t.dates))
		for i, d := range t.dates {
			if v, ok := byDay[code][d]; ok {
				col[i] = Cell{Value: v, Valid: true}
			}
		}
		forwardFill(col)
		backFill(col)
		t.columns[code] = col
	}
	return t
}

// forwardFill replaces each absent cell with the most recent earlier value.
func forwardFill(col []Cell) {
	var last Cell
	for i := range col {
		if col[i].Valid {
			last = col[i]
		} else if last.Valid {
			col[i] = last
		}
	}
}

// backFill replaces leading absent cells with the first later value.
func backFill(col []Cell) {
	var next Cell
	for i := len(col) - 1; i >= 0; i-- {
		if col[i].Valid {
			next = col[i]
		} else if next.Valid {
			col[i] = next
		}
	}
}
