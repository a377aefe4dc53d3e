// Package analytics computes descriptive statistics over combined rate
// tables: percentage change, annualized volatility and correlation.
//
// Every statistic is best-effort. Short histories and undefined arithmetic
// resolve to a zero default instead of an error, and no function here
// returns NaN or ±Inf.
package analytics

import (
	"math"
	"sort"

	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
)

// Change windows, counted in observations.
const (
	Window7  = 7
	Window30 = 30
	Window90 = 90
)

// ════════════════════════════════════════════════════════════════════
// Tagged results
// ════════════════════════════════════════════════════════════════════

// Outcome tells why a statistic has the value it has.
type Outcome int

const (
	// OK means the statistic was computed.
	OK Outcome = iota
	// InsufficientData means the series is shorter than the window.
	InsufficientData
	// Undefined means the arithmetic had no finite answer, e.g. a zero base.
	Undefined
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case InsufficientData:
		return "insufficient_data"
	case Undefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is a statistic tagged with its outcome.
type Result struct {
	Value   float64
	Outcome Outcome
}

func okResult(v float64) Result {
	if !finite(v) {
		return Result{Outcome: Undefined}
	}
	return Result{Value: v, Outcome: OK}
}

// bestEffort collapses a tagged result to its value, or 0 when it is not OK.
func bestEffort(r Result) float64 {
	if r.Outcome != OK || !finite(r.Value) {
		return 0
	}
	return r.Value
}

// ════════════════════════════════════════════════════════════════════
// Single-series statistics
// ════════════════════════════════════════════════════════════════════

// ChangeResult computes the percentage change between the last value and
// the value n observations before it.
func ChangeResult(values []float64, n int) Result {
	if n <= 0 || len(values) <= n {
		return Result{Outcome: InsufficientData}
	}
	last := values[len(values)-1]
	base := values[len(values)-1-n]
	if base == 0 {
		return Result{Outcome: Undefined}
	}
	return okResult((last - base) / base * 100)
}

// PercentChange is ChangeResult with the zero default applied.
func PercentChange(values []float64, n int) float64 {
	return bestEffort(ChangeResult(values, n))
}

// VolatilityResult computes the annualized volatility in percent: the
// sample standard deviation of simple returns scaled by sqrt(252).
func VolatilityResult(values []float64) Result {
	rets := returns(values)
	if len(rets) < 2 {
		return Result{Outcome: InsufficientData}
	}
	for _, r := range rets {
		if !finite(r) {
			return Result{Outcome: Undefined}
		}
	}
	return okResult(stddev(rets) * math.Sqrt(TradingDaysPerYear) * 100)
}

// Volatility is VolatilityResult with the zero default applied.
func Volatility(values []float64) float64 {
	return bestEffort(VolatilityResult(values))
}

// ════════════════════════════════════════════════════════════════════
// Table-level metrics
// ════════════════════════════════════════════════════════════════════

// Metrics computes the record for one column of values.
func Metrics(values []float64) models.MetricsRecord {
	rec := models.MetricsRecord{DataPoints: len(values)}
	if len(values) == 0 {
		return rec
	}
	rec.CurrentValue = values[len(values)-1]
	rec.Change7d = PercentChange(values, Window7)
	rec.Change30d = PercentChange(values, Window30)
	rec.Change90d = PercentChange(values, Window90)
	rec.Volatility = Volatility(values)
	return rec
}

// ComputeMetrics returns a record per requested currency. Currencies with
// no column, or a column with no valid values, are left out.
func ComputeMetrics(t *series.Table, currencies []string) map[string]models.MetricsRecord {
	out := make(map[string]models.MetricsRecord, len(currencies))
	for _, code := range currencies {
		values, ok := t.Column(code)
		if !ok || len(values) == 0 {
			continue
		}
		out[code] = Metrics(values)
	}
	return out
}

// Explanation reports the outcome behind each defaulted field of a record.
type Explanation struct {
	Change7d   Outcome `json:"change_7d"`
	Change30d  Outcome `json:"change_30d"`
	Change90d  Outcome `json:"change_90d"`
	Volatility Outcome `json:"volatility"`
}

// Explain returns the outcomes for the same currencies ComputeMetrics
// would report on.
func Explain(t *series.Table, currencies []string) map[string]Explanation {
	out := make(map[string]Explanation, len(currencies))
	for _, code := range currencies {
		values, ok := t.Column(code)
		if !ok || len(values) == 0 {
			continue
		}
		out[code] = Explanation{
			Change7d:   ChangeResult(values, Window7).Outcome,
			Change30d:  ChangeResult(values, Window30).Outcome,
			Change90d:  ChangeResult(values, Window90).Outcome,
			Volatility: VolatilityResult(values).Outcome,
		}
	}
	return out
}

// VolatilityRanking orders currencies by volatility, highest first. The
// excluded codes (typically the reference currency) are skipped. Ties are
// broken by code.
func VolatilityRanking(metrics map[string]models.MetricsRecord, exclude ...string) []models.VolatilityRank {
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}

	ranks := make([]models.VolatilityRank, 0, len(metrics))
	for code, m := range metrics {
		if skip[code] {
			continue
		}
		ranks = append(ranks, models.VolatilityRank{Currency: code, Volatility: m.Volatility})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Volatility != ranks[j].Volatility {
			return ranks[i].Volatility > ranks[j].Volatility
		}
		return ranks[i].Currency < ranks[j].Currency
	})
	return ranks
}
