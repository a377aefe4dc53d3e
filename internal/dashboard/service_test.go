package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fxdash/internal/analytics"
	"github.com/seenimoa/fxdash/internal/apperrors"
	"github.com/seenimoa/fxdash/internal/datasource"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
)

// stubProvider returns canned data and records the last request.
type stubProvider struct {
	series   map[string]series.Series
	quotes   map[string]models.Quote
	lastDays int
	purged   bool
}

func (p *stubProvider) Reference() string { return "BRL" }

func (p *stubProvider) FetchAll(ctx context.Context, codes []string, days int) *datasource.Batch {
	p.lastDays = days
	b := &datasource.Batch{Series: map[string]series.Series{}, Failures: map[string]error{}}
	for _, c := range codes {
		if s, ok := p.series[c]; ok {
			b.Series[c] = s
		} else {
			b.Failures[c] = datasource.ErrNoData
		}
	}
	return b
}

func (p *stubProvider) Quote(ctx context.Context, code string) (models.Quote, error) {
	q, ok := p.quotes[code]
	if !ok {
		return models.Quote{}, errors.New("unreachable")
	}
	return q, nil
}

func (p *stubProvider) Quotes(ctx context.Context, codes []string) []models.Quote {
	out := make([]models.Quote, 0, len(codes))
	for _, c := range codes {
		q, err := p.Quote(ctx, c)
		if err != nil {
			q = models.Quote{Currency: c}
		}
		out = append(out, q)
	}
	return out
}

func (p *stubProvider) Purge() { p.purged = true }

func daily(n int, f func(i int) float64) series.Series {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := make(series.Series, n)
	for i := range s {
		s[i] = series.Point{Date: start.AddDate(0, 0, i), Value: f(i)}
	}
	return s
}

func newTestService(p Provider) *Service {
	return NewService(p, Options{
		Logger: logger.Discard(),
		Now:    func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) },
	})
}

func TestBuildSnapshot(t *testing.T) {
	p := &stubProvider{series: map[string]series.Series{
		"USD": daily(40, func(i int) float64 { return 5 + float64(i)*0.01 }),
		"EUR": daily(40, func(i int) float64 { return 5.5 + float64(i%5)*0.02 }),
		"BRL": daily(40, func(int) float64 { return 1 }),
	}}
	svc := newTestService(p)

	snap, err := svc.Build(context.Background(), Request{Currencies: []string{"usd", "EUR", "BRL"}, Period: "30 dias"})
	require.NoError(t, err)

	assert.Equal(t, 30, p.lastDays)
	assert.Equal(t, []string{"USD", "EUR", "BRL"}, snap.Currencies)
	assert.Equal(t, 40, snap.Table.Len())
	assert.Len(t, snap.Metrics, 3)
	assert.Equal(t, 1.0, snap.Metrics["BRL"].CurrentValue)
	assert.Zero(t, snap.Metrics["BRL"].Volatility)

	require.NotNil(t, snap.Correlation)
	assert.Len(t, snap.Correlation.Currencies, 3)

	require.Len(t, snap.VolatilityRanking, 2)
	for _, r := range snap.VolatilityRanking {
		assert.NotEqual(t, "BRL", r.Currency)
	}
	assert.Empty(t, snap.Warnings)
	assert.Nil(t, snap.Explanations)
}

func TestBuildPartialFailure(t *testing.T) {
	p := &stubProvider{series: map[string]series.Series{
		"USD": daily(5, func(i int) float64 { return 5 }),
	}}
	snap, err := newTestService(p).Build(context.Background(), Request{Currencies: []string{"USD", "EUR"}, Detail: true})
	require.NoError(t, err)

	assert.Contains(t, snap.Metrics, "USD")
	assert.NotContains(t, snap.Metrics, "EUR")
	assert.Nil(t, snap.Correlation, "one usable column cannot correlate")
	require.Len(t, snap.Warnings, 1)
	assert.Contains(t, snap.Warnings[0], "EUR")
	assert.Equal(t, analytics.InsufficientData, snap.Explanations["USD"].Change7d)
	assert.Equal(t, DefaultPeriodDays, p.lastDays)
}

func TestBuildSingleCurrencySkipsCorrelation(t *testing.T) {
	p := &stubProvider{series: map[string]series.Series{
		"USD": daily(20, func(i int) float64 { return 5 + float64(i) }),
	}}
	snap, err := newTestService(p).Build(context.Background(), Request{Currencies: []string{"USD"}})
	require.NoError(t, err)
	assert.Nil(t, snap.Correlation)
}

func TestBuildNoData(t *testing.T) {
	p := &stubProvider{}
	_, err := newTestService(p).Build(context.Background(), Request{Currencies: []string{"USD", "EUR"}})
	assert.ErrorIs(t, err, apperrors.ErrNoData)
}

func TestBuildDefaultsAndValidation(t *testing.T) {
	p := &stubProvider{series: map[string]series.Series{"USD": daily(3, func(int) float64 { return 5 })}}
	svc := newTestService(p)

	snap, err := svc.Build(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSelection, snap.Currencies)

	_, err = svc.Build(context.Background(), Request{Currencies: []string{"USD", "XYZ"}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedCurrency)

	_, err = svc.Build(context.Background(), Request{Currencies: []string{" ", ""}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestConvert(t *testing.T) {
	p := &stubProvider{quotes: map[string]models.Quote{
		"USD": {Currency: "USD", Bid: 5.1234, Available: true},
	}}
	svc := newTestService(p)

	conv, err := svc.Convert(context.Background(), decimal.NewFromInt(100), "usd")
	require.NoError(t, err)
	assert.Equal(t, "USD", conv.From)
	assert.Equal(t, "BRL", conv.To)
	assert.Equal(t, "512.3400", conv.Converted)
	assert.Equal(t, "R$ 512.34", conv.Formatted)

	_, err = svc.Convert(context.Background(), decimal.NewFromInt(-1), "USD")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Convert(context.Background(), decimal.NewFromInt(1), "EUR")
	assert.ErrorIs(t, err, apperrors.ErrNoData)

	_, err = svc.Convert(context.Background(), decimal.NewFromInt(1), "ABC")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuotesAndRefresh(t *testing.T) {
	p := &stubProvider{quotes: map[string]models.Quote{
		"USD": {Currency: "USD", Bid: 5, Available: true},
	}}
	svc := newTestService(p)

	quotes, err := svc.Quotes(context.Background(), []string{"USD", "GBP"})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.True(t, quotes[0].Available)
	assert.False(t, quotes[1].Available)

	svc.Refresh()
	assert.True(t, p.purged)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"7d", 7},
		{"7 dias", 7},
		{"30D", 30},
		{"90 dias", 90},
		{"6m", 180},
		{"6 meses", 180},
		{"180d", 180},
		{"30", 30},
		{"", DefaultPeriodDays},
		{"1 ano", DefaultPeriodDays},
		{"365d", DefaultPeriodDays},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePeriod(tt.in))
		})
	}
}

func TestPeriodDaysUsesConfiguredDefault(t *testing.T) {
	svc := NewService(&stubProvider{}, Options{DefaultPeriod: "7d", Logger: logger.Discard()})
	assert.Equal(t, 7, svc.PeriodDays(""))
	assert.Equal(t, 30, svc.PeriodDays("30d"))
}
