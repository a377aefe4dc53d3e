// Package dashboard runs the rate pipeline for one request: fetch the
// selected currencies, combine them on a daily axis, then compute metrics,
// correlation and the volatility ranking.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/fxdash/internal/analytics"
	"github.com/seenimoa/fxdash/internal/apperrors"
	"github.com/seenimoa/fxdash/internal/datasource"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// Provider is the fetch layer the service depends on. It is satisfied by
// *datasource.Fetcher.
type Provider interface {
	Reference() string
	FetchAll(ctx context.Context, codes []string, days int) *datasource.Batch
	Quote(ctx context.Context, code string) (models.Quote, error)
	Quotes(ctx context.Context, codes []string) []models.Quote
	Purge()
}

// Request selects currencies and a lookback period.
type Request struct {
	Currencies []string `json:"currencies"`
	Period     string   `json:"period"`
	Detail     bool     `json:"detail"` // include per-metric outcomes
}

// Snapshot is everything the dashboard shows for one request.
type Snapshot struct {
	Currencies        []string                         `json:"currencies"`
	PeriodDays        int                              `json:"period_days"`
	Table             *series.Table                    `json:"table"`
	Metrics           map[string]models.MetricsRecord  `json:"metrics"`
	Correlation       *models.CorrelationMatrix        `json:"correlation"`
	VolatilityRanking []models.VolatilityRank          `json:"volatility_ranking"`
	Explanations      map[string]analytics.Explanation `json:"explanations,omitempty"`
	Warnings          []string                         `json:"warnings,omitempty"`
	GeneratedAt       time.Time                        `json:"generated_at"`
}

// Options configures a Service.
type Options struct {
	DefaultCurrencies []string
	DefaultPeriod     string
	Logger            *logger.Log
	Now               func() time.Time
}

// Service runs dashboard requests against a Provider.
type Service struct {
	provider      Provider
	defaults      []string
	defaultPeriod string
	log           *logger.Entry
	now           func() time.Time
}

// NewService creates a Service.
func NewService(p Provider, opts Options) *Service {
	if len(opts.DefaultCurrencies) == 0 {
		opts.DefaultCurrencies = models.DefaultSelection
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		provider:      p,
		defaults:      opts.DefaultCurrencies,
		defaultPeriod: opts.DefaultPeriod,
		log:           opts.Logger.WithComponent("dashboard"),
		now:           opts.Now,
	}
}

// ResolveCurrencies normalizes and validates a selection. An empty
// selection yields the configured defaults.
func (s *Service) ResolveCurrencies(codes []string) ([]string, error) {
	if len(codes) == 0 {
		codes = s.defaults
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		code := models.NormalizeCode(c)
		if code == "" || seen[code] {
			continue
		}
		if !models.IsSupported(code) {
			return nil, fmt.Errorf("%w: %w: %q", apperrors.ErrValidation, apperrors.ErrUnsupportedCurrency, c)
		}
		seen[code] = true
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: select at least one currency", apperrors.ErrValidation)
	}
	return out, nil
}

// PeriodDays resolves a period label, falling back to the configured
// default and then to DefaultPeriodDays.
func (s *Service) PeriodDays(label string) int {
	if label == "" {
		label = s.defaultPeriod
	}
	return ParsePeriod(label)
}

// Build runs the full pipeline. It returns apperrors.ErrNoData when no
// requested currency produced any observation.
func (s *Service) Build(ctx context.Context, req Request) (*Snapshot, error) {
	codes, err := s.ResolveCurrencies(req.Currencies)
	if err != nil {
		return nil, err
	}
	days := s.PeriodDays(req.Period)
	started := time.Now()

	batch := s.provider.FetchAll(ctx, codes, days)
	table := series.Combine(batch.Series)
	if table.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w for %v over %d days", apperrors.ErrNoData, codes, days)
	}

	snap := &Snapshot{
		Currencies:  codes,
		PeriodDays:  days,
		Table:       table,
		Metrics:     analytics.ComputeMetrics(table, codes),
		Warnings:    batch.Warnings(),
		GeneratedAt: s.now().UTC(),
	}
	if len(codes) > 1 {
		snap.Correlation, _ = analytics.Correlation(table, codes)
	}
	snap.VolatilityRanking = analytics.VolatilityRanking(snap.Metrics, s.provider.Reference())
	if req.Detail {
		snap.Explanations = analytics.Explain(table, codes)
	}

	s.log.WithFields(logger.Fields{
		"currencies": codes,
		"days":       days,
		"rows":       table.Len(),
		"failures":   len(batch.Failures),
	}).LogDuration("build", started, nil)
	return snap, nil
}

// Quotes returns the latest quote of each selected currency.
func (s *Service) Quotes(ctx context.Context, codes []string) ([]models.Quote, error) {
	resolved, err := s.ResolveCurrencies(codes)
	if err != nil {
		return nil, err
	}
	return s.provider.Quotes(ctx, resolved), nil
}

// Convert converts amount units of from into the reference currency at
// the latest bid.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from string) (*models.Conversion, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", apperrors.ErrValidation)
	}
	codes, err := s.ResolveCurrencies([]string{from})
	if err != nil {
		return nil, err
	}
	code := codes[0]

	q, err := s.provider.Quote(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: no quote for %s: %w", apperrors.ErrNoData, code, err)
	}

	rate := decimal.NewFromFloat(q.Bid)
	converted := amount.Mul(rate).Round(4)

	ref := s.provider.Reference()
	symbol := ref
	if c, ok := models.LookupCurrency(ref); ok {
		symbol = c.Symbol
	}
	return &models.Conversion{
		From:      code,
		To:        ref,
		Amount:    amount.String(),
		Rate:      rate.String(),
		Converted: converted.StringFixed(4),
		Formatted: utils.FormatMoney(symbol, converted),
	}, nil
}

// Refresh drops cached upstream data so the next request refetches.
func (s *Service) Refresh() {
	s.provider.Purge()
}
