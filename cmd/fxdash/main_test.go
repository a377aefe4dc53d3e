package main

import (
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/fxdash/internal/config"
)

func TestSplitCodes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"usd", "USD"},
		{"usd, eur ,,brl", "USD,EUR,BRL"},
	}
	for _, tt := range tests {
		if got := strings.Join(splitCodes(tt.in), ","); got != tt.want {
			t.Errorf("splitCodes(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "serve", "dashboard", "metrics", "correlation", "quote", "convert", "export", "report", "status"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestNewApp(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	cfg := &config.Config{
		Source:    config.SourceConfig{BaseURL: "http://127.0.0.1:0", Reference: "BRL"},
		Fetch:     config.FetchConfig{Timeout: time.Second, Concurrency: 2, RatePerSec: 1, Burst: 1},
		Cache:     config.CacheConfig{SeriesTTL: time.Minute, QuoteTTL: time.Minute, Size: 8},
		Dashboard: config.DashboardConfig{DefaultCurrencies: []string{"EUR"}, DefaultPeriod: "7d"},
		Logging:   config.LoggingConfig{Level: "error", Format: "text", Output: "stderr"},
	}
	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	codes, err := a.svc.ResolveCurrencies(nil)
	if err != nil || strings.Join(codes, ",") != "EUR" {
		t.Errorf("defaults: got %v, %v", codes, err)
	}
	if days := a.svc.PeriodDays(""); days != 7 {
		t.Errorf("default period: got %d, want 7", days)
	}
}

func TestNewAppRejectsBadLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	cfg := &config.Config{Logging: config.LoggingConfig{Level: "loud"}}
	if _, err := newApp(cfg); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	rootCmd.SetArgs([]string{"export", "--format", "xml"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown export format") {
		t.Errorf("got %v, want unknown export format", err)
	}
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	rootCmd.SetArgs([]string{"report", "--format", "pdf"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown report format") {
		t.Errorf("got %v, want unknown report format", err)
	}
}
