package analytics

import (
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
)

// MinCorrelationRows is the number of jointly complete rows below which no
// correlation matrix is produced.
const MinCorrelationRows = 10

// Correlation computes the Pearson matrix of the requested currencies over
// the rows where all of them have a value. Requested codes missing from
// the table are ignored; duplicates are collapsed.
//
// The bool is false, with a nil matrix, when fewer than two columns or
// fewer than MinCorrelationRows complete rows are available. That is the
// "not enough data" state, not a failure.
func Correlation(t *series.Table, currencies []string) (*models.CorrelationMatrix, bool) {
	codes := make([]string, 0, len(currencies))
	seen := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		if seen[c] || !t.Has(c) {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}
	if len(codes) < 2 {
		return nil, false
	}

	cols := make([][]float64, len(codes))
rows:
	for i := 0; i < t.Len(); i++ {
		row := make([]float64, len(codes))
		for j, c := range codes {
			cell := t.Cell(i, c)
			if !cell.Valid || !finite(cell.Value) {
				continue rows
			}
			row[j] = cell.Value
		}
		for j := range codes {
			cols[j] = append(cols[j], row[j])
		}
	}
	if len(cols[0]) < MinCorrelationRows {
		return nil, false
	}

	values := make([][]float64, len(codes))
	for i := range values {
		values[i] = make([]float64, len(codes))
		values[i][i] = 1
	}
	for i := 0; i < len(codes); i++ {
		for j := i + 1; j < len(codes); j++ {
			r, _ := pearson(cols[i], cols[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	return &models.CorrelationMatrix{Currencies: codes, Values: values}, true
}
