package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fxdash/internal/infra"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// Fetcher fetches many currencies at once from a Source. Successful
// results are kept in the injected caches; the reference currency is
// never requested upstream.
type Fetcher struct {
	source      Source
	reference   string
	concurrency int
	seriesCache infra.Store[string, series.Series]
	quoteCache  infra.Store[string, models.Quote]
	log         *logger.Entry
	now         func() time.Time
}

// FetcherOptions configures a Fetcher. Nil caches disable caching.
type FetcherOptions struct {
	Reference   string
	Concurrency int
	SeriesCache infra.Store[string, series.Series]
	QuoteCache  infra.Store[string, models.Quote]
	Logger      *logger.Log
	Now         func() time.Time
}

// NewFetcher creates a Fetcher around src.
func NewFetcher(src Source, opts FetcherOptions) *Fetcher {
	if opts.Reference == "" {
		opts.Reference = models.ReferenceCurrency
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		source:      src,
		reference:   models.NormalizeCode(opts.Reference),
		concurrency: opts.Concurrency,
		seriesCache: opts.SeriesCache,
		quoteCache:  opts.QuoteCache,
		log:         opts.Logger.WithComponent("datasource").WithField("source", src.Name()),
		now:         opts.Now,
	}
}

// Reference returns the quote currency.
func (f *Fetcher) Reference() string { return f.reference }

// Batch is the outcome of a multi-currency fetch. A currency that could
// not be fetched is absent from Series and present in Failures.
type Batch struct {
	Series   map[string]series.Series
	Failures map[string]error
}

// Warnings returns the failures as sorted human-readable messages.
func (b *Batch) Warnings() []string {
	out := make([]string, 0, len(b.Failures))
	for code, err := range b.Failures {
		out = append(out, fmt.Sprintf("%s: %v", code, err))
	}
	sort.Strings(out)
	return out
}

// FetchAll fetches the daily series of every code over the last days,
// concurrently. It returns after every fetch finished. Upstream failures
// never fail the batch; they are logged and reported in Failures.
func (f *Fetcher) FetchAll(ctx context.Context, codes []string, days int) *Batch {
	batch := &Batch{
		Series:   make(map[string]series.Series, len(codes)),
		Failures: make(map[string]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, code := range dedupe(codes) {
		g.Go(func() error {
			s, err := f.Daily(gctx, code, days)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				batch.Failures[code] = err
				return nil // non-fatal
			}
			batch.Series[code] = s
			return nil
		})
	}
	_ = g.Wait()

	return batch
}

// Daily returns the daily series for one code, from cache when possible.
// The reference currency is synthesized as a constant 1.0 per calendar day.
func (f *Fetcher) Daily(ctx context.Context, code string, days int) (series.Series, error) {
	code = models.NormalizeCode(code)
	if days <= 0 {
		return nil, ErrInvalidWindow
	}
	if code == f.reference {
		return f.referenceSeries(days), nil
	}

	key := fmt.Sprintf("series:%s:%d", code, days)
	if f.seriesCache != nil {
		if s, ok := f.seriesCache.Get(key); ok {
			return s, nil
		}
	}

	started := time.Now()
	s, err := f.source.GetDaily(ctx, code, days)
	if err != nil {
		f.log.WithError(err).WithFields(logger.Fields{"currency": code, "days": days}).Warn("daily series unavailable")
		return nil, err
	}
	f.log.WithField("currency", code).LogDuration("daily", started, logger.Fields{"points": len(s)})

	if f.seriesCache != nil {
		f.seriesCache.Set(key, s)
	}
	return s, nil
}

// referenceSeries covers each calendar day from now-days to now with 1.0.
func (f *Fetcher) referenceSeries(days int) series.Series {
	now := f.now()
	dates := utils.DayRange(now.AddDate(0, 0, -days), now)
	out := make(series.Series, len(dates))
	for i, d := range dates {
		out[i] = series.Point{Date: d, Value: 1.0}
	}
	return out
}

// Quote returns the latest quote for one code, from cache when possible.
func (f *Fetcher) Quote(ctx context.Context, code string) (models.Quote, error) {
	code = models.NormalizeCode(code)
	if code == f.reference {
		name := code
		if c, ok := models.LookupCurrency(code); ok {
			name = c.Name
		}
		return models.Quote{Currency: code, Name: name, Bid: 1.0, Ask: 1.0, High: 1.0, Low: 1.0, Timestamp: f.now().UTC(), Available: true}, nil
	}

	key := "quote:" + code
	if f.quoteCache != nil {
		if q, ok := f.quoteCache.Get(key); ok {
			return q, nil
		}
	}

	q, err := f.source.GetLatest(ctx, code)
	if err != nil {
		f.log.WithError(err).WithField("currency", code).Warn("latest quote unavailable")
		return models.Quote{}, err
	}
	if f.quoteCache != nil {
		f.quoteCache.Set(key, q)
	}
	return q, nil
}

// Quotes fetches the latest quote of every code concurrently. Codes whose
// quote could not be fetched are returned with Available set to false.
// The result follows the order of codes.
func (f *Fetcher) Quotes(ctx context.Context, codes []string) []models.Quote {
	codes = dedupe(codes)
	out := make([]models.Quote, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, code := range codes {
		g.Go(func() error {
			q, err := f.Quote(gctx, code)
			if err != nil {
				q = models.Quote{Currency: code}
			}
			out[i] = q
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Purge drops every cached series and quote.
func (f *Fetcher) Purge() {
	if f.seriesCache != nil {
		f.seriesCache.Flush()
	}
	if f.quoteCache != nil {
		f.quoteCache.Flush()
	}
	f.log.Info("caches purged")
}

func dedupe(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = models.NormalizeCode(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
