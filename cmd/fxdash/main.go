// fxdash: exchange-rate dashboard for currencies quoted in BRL.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fxdash/api"
	"github.com/seenimoa/fxdash/internal/config"
	"github.com/seenimoa/fxdash/internal/dashboard"
	"github.com/seenimoa/fxdash/internal/export"
	"github.com/seenimoa/fxdash/internal/logger"
	"github.com/seenimoa/fxdash/internal/report"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	err := rootCmd.Execute()
	_ = logger.Get().Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fxdash",
	Short: "fxdash: exchange-rate dashboard against the Brazilian real",
	Long: `fxdash fetches daily exchange rates from AwesomeAPI, aligns them on a
common calendar and reports per-currency metrics, a correlation matrix and
a volatility ranking. It runs as a CLI or as an HTTP API server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	for _, c := range []*cobra.Command{dashboardCmd, metricsCmd, correlationCmd, exportCmd, reportCmd} {
		c.Flags().StringP("currencies", "c", "", "comma-separated currency codes (default from config)")
		c.Flags().StringP("period", "p", "", "lookback period: 7d, 30d, 90d or 6m")
	}
	metricsCmd.Flags().Bool("detail", false, "include the outcome of every statistic")
	exportCmd.Flags().StringP("format", "f", "zip", "export format: csv, json or zip")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: the standard file name for the format)")
	reportCmd.Flags().StringP("format", "f", "html", "report format: html or text")
	reportCmd.Flags().StringP("out", "o", "", "output file (default: dashboard_cambial.html; text goes to stdout)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(correlationCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fxdash %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		api.Version = version
		srv := api.NewServer(cfg, a.svc, a.log)
		return srv.ListenAndServe(cfg.Addr())
	},
}

// --- Dashboard Commands ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the full dashboard snapshot as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot(cmd, false)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), snap)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print per-currency metrics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		detail, _ := cmd.Flags().GetBool("detail")
		snap, err := buildSnapshot(cmd, detail)
		if err != nil {
			return err
		}
		printWarnings(cmd, snap.Warnings)
		if detail {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"metrics":      snap.Metrics,
				"explanations": snap.Explanations,
			})
		}
		return printJSON(cmd.OutOrStdout(), snap.Metrics)
	},
}

var correlationCmd = &cobra.Command{
	Use:   "correlation",
	Short: "Print the correlation matrix and volatility ranking",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := buildSnapshot(cmd, false)
		if err != nil {
			return err
		}
		printWarnings(cmd, snap.Warnings)
		out := cmd.OutOrStdout()

		m := snap.Correlation
		if m == nil {
			fmt.Fprintln(out, "correlation unavailable: need two currencies with enough overlapping history")
		} else {
			fmt.Fprintf(out, "%-6s", "")
			for _, c := range m.Currencies {
				fmt.Fprintf(out, "%8s", c)
			}
			fmt.Fprintln(out)
			for i, row := range m.Values {
				fmt.Fprintf(out, "%-6s", m.Currencies[i])
				for _, v := range row {
					fmt.Fprintf(out, "%8.3f", v)
				}
				fmt.Fprintln(out)
			}
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Volatility ranking:")
		for i, r := range snap.VolatilityRanking {
			fmt.Fprintf(out, "  %d. %s  %6.2f%%\n", i+1, r.Currency, r.Volatility)
		}
		return nil
	},
}

// --- Quote Command ---

var quoteCmd = &cobra.Command{
	Use:   "quote [currency...]",
	Short: "Show the latest quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		quotes, err := a.svc.Quotes(ctx, args)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, q := range quotes {
			if !q.Available {
				fmt.Fprintf(out, "%-4s unavailable\n", q.Currency)
				continue
			}
			fmt.Fprintf(out, "%-4s %s  %s\n", q.Currency, utils.FormatBRL(q.Bid), utils.FormatPercent(q.ChangePct))
		}
		return nil
	},
}

// --- Convert Command ---

var convertCmd = &cobra.Command{
	Use:   "convert [amount] [currency]",
	Short: "Convert an amount into the reference currency at the latest bid",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", "."))
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		conv, err := a.svc.Convert(ctx, amount, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (rate %s)\n", conv.Amount, conv.From, conv.Formatted, conv.Rate)
		return nil
	},
}

// --- Export Command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the rate table and metrics (csv, json or zip)",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("out")

		var defaultName string
		switch strings.ToLower(format) {
		case "csv":
			defaultName = export.TableFileName
		case "json":
			defaultName = export.MetricsFileName
		case "zip":
			defaultName = export.BundleFileName
		default:
			return fmt.Errorf("unknown export format %q", format)
		}
		if path == "" {
			path = defaultName
		}

		snap, err := buildSnapshot(cmd, false)
		if err != nil {
			return err
		}
		printWarnings(cmd, snap.Warnings)

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		switch strings.ToLower(format) {
		case "csv":
			err = export.WriteCSV(f, snap.Table)
		case "json":
			err = export.WriteMetricsJSON(f, snap.Metrics)
		default:
			err = export.WriteBundle(f, snap.Table, snap.Metrics, snap.GeneratedAt)
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the dashboard as an HTML page or plain text",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawFormat, _ := cmd.Flags().GetString("format")
		path, _ := cmd.Flags().GetString("out")
		format, err := report.ParseFormat(rawFormat)
		if err != nil {
			return err
		}

		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		snap, err := a.build(ctx, cmd, false)
		if err != nil {
			return err
		}
		printWarnings(cmd, snap.Warnings)
		quotes, err := a.svc.Quotes(ctx, snap.Currencies)
		if err != nil {
			return err
		}

		body, err := report.Generate(report.Input{
			Snapshot:  snap,
			Quotes:    quotes,
			Reference: cfg.Source.Reference,
		}, format, report.DefaultConfig())
		if err != nil {
			return err
		}

		if path == "" {
			if format == report.FormatHTML {
				path = "dashboard_cambial.html"
			} else {
				_, err = io.WriteString(cmd.OutOrStdout(), body)
				return err
			}
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("report %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  fxdash System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Source:        %s (reference %s)\n", cfg.Source.BaseURL, cfg.Source.Reference)
		fmt.Fprintf(out, "    Defaults:      %s over %s\n", strings.Join(cfg.Dashboard.DefaultCurrencies, ","), cfg.Dashboard.DefaultPeriod)
		fmt.Fprintf(out, "    Fetch:         %d concurrent, %.1f req/s\n", cfg.Fetch.Concurrency, cfg.Fetch.RatePerSec)
		fmt.Fprintf(out, "    Cache TTL:     series %s, quotes %s\n", cfg.Cache.SeriesTTL, cfg.Cache.QuoteTTL)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Supported currencies:")
		for _, c := range models.SupportedCurrencies() {
			fmt.Fprintf(out, "    %-4s %-4s %s\n", c.Code, c.Symbol, c.Name)
		}
		fmt.Fprintln(out)

		key := cfg.Source.KeyStatus()
		status := "not set"
		switch {
		case key.Set && key.FromEnv:
			status = "set via " + config.SourceAPIKeyEnv
		case key.Set:
			status = "set in config file"
		}
		if key.Hint != "" {
			status += " (" + key.Hint + ")"
		}
		fmt.Fprintf(out, "  AwesomeAPI key:  %s\n", status)

		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

// --- helpers ---

func buildSnapshot(cmd *cobra.Command, detail bool) (*dashboard.Snapshot, error) {
	a, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	ctx, cancel := requestContext(cmd)
	defer cancel()
	return a.build(ctx, cmd, detail)
}

// requestContext bounds a command by SIGINT and the configured request
// timeout.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	if cfg.API.RequestTimeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.API.RequestTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func splitCodes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if code := models.NormalizeCode(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
