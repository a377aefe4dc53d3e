package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fxdash/internal/config"
	"github.com/seenimoa/fxdash/internal/dashboard"
	"github.com/seenimoa/fxdash/internal/datasource"
	"github.com/seenimoa/fxdash/internal/infra"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
)

// app holds the services shared by every command.
type app struct {
	log *logger.Log
	svc *dashboard.Service
}

// newApp wires logger, upstream client, caches and the dashboard service
// from cfg.
func newApp(cfg *config.Config) (*app, error) {
	log := logger.Get()
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		return nil, fmt.Errorf("logger setup failed: %w", err)
	}

	src := datasource.NewAwesomeAPI(datasource.AwesomeAPIOptions{
		BaseURL:    cfg.Source.BaseURL,
		Reference:  cfg.Source.Reference,
		APIKey:     cfg.Source.APIKey,
		Timeout:    cfg.Fetch.Timeout,
		RatePerSec: cfg.Fetch.RatePerSec,
		Burst:      cfg.Fetch.Burst,
	})
	fetcher := datasource.NewFetcher(src, datasource.FetcherOptions{
		Reference:   cfg.Source.Reference,
		Concurrency: cfg.Fetch.Concurrency,
		SeriesCache: infra.NewCache[string, series.Series](cfg.Cache.Size, cfg.Cache.SeriesTTL),
		QuoteCache:  infra.NewCache[string, models.Quote](cfg.Cache.Size, cfg.Cache.QuoteTTL),
		Logger:      log,
	})

	svc := dashboard.NewService(fetcher, dashboard.Options{
		DefaultCurrencies: cfg.Dashboard.DefaultCurrencies,
		DefaultPeriod:     cfg.Dashboard.DefaultPeriod,
		Logger:            log,
	})
	return &app{log: log, svc: svc}, nil
}

// build runs the dashboard for the --currencies and --period flags of cmd.
func (a *app) build(ctx context.Context, cmd *cobra.Command, detail bool) (*dashboard.Snapshot, error) {
	currencies, _ := cmd.Flags().GetString("currencies")
	period, _ := cmd.Flags().GetString("period")
	return a.svc.Build(ctx, dashboard.Request{
		Currencies: splitCodes(currencies),
		Period:     period,
		Detail:     detail,
	})
}
