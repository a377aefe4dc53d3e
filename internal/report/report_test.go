package report

import (
	"errors"
	"html"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/fxdash/internal/analytics"
	"github.com/seenimoa/fxdash/internal/dashboard"
	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

func mkSeries(values ...float64) series.Series {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := make(series.Series, len(values))
	for i, v := range values {
		s[i] = series.Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return s
}

func sampleSnapshot() *dashboard.Snapshot {
	usd := make([]float64, 30)
	eur := make([]float64, 30)
	brl := make([]float64, 30)
	for i := range usd {
		usd[i] = 5.0 + 0.01*float64(i) + 0.02*math.Sin(float64(i))
		eur[i] = 5.4 + 0.005*float64(i) + 0.03*math.Cos(float64(i))
		brl[i] = 1
	}
	table := series.Combine(map[string]series.Series{
		"USD": mkSeries(usd...),
		"EUR": mkSeries(eur...),
		"BRL": mkSeries(brl...),
	})
	codes := []string{"USD", "EUR", "BRL"}
	metrics := analytics.ComputeMetrics(table, codes)
	corr, _ := analytics.Correlation(table, codes)
	return &dashboard.Snapshot{
		Currencies:        codes,
		PeriodDays:        30,
		Table:             table,
		Metrics:           metrics,
		Correlation:       corr,
		VolatilityRanking: analytics.VolatilityRanking(metrics, "BRL"),
		Warnings:          []string{"JPY: no data"},
		GeneratedAt:       time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC),
	}
}

func sampleQuotes() []models.Quote {
	return []models.Quote{
		{Currency: "USD", Name: "Dólar Americano", Bid: 5.1234, ChangePct: 0.42, Available: true},
		{Currency: "JPY"},
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

func TestGenerateHTML(t *testing.T) {
	snap := sampleSnapshot()
	out, err := GenerateHTML(Input{Snapshot: snap, Quotes: sampleQuotes()}, DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	// html/template escapes "+" in text; compare what a browser shows.
	page := html.UnescapeString(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"Dashboard de Câmbio",
		"Cotações Atuais",
		"R$ 5.1234",
		"+0.42%",
		"R$ --.--",
		"Métricas Principais",
		"Evolução Temporal",
		"Heatmap de Correlação",
		"Variações Percentuais",
		"Volatilidade",
		"Tabela Comparativa",
		"JPY: no data",
		"<svg",
		"01/03",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML missing %q", want)
		}
	}

	// Headline cards carry the signed weekly change.
	for _, code := range []string{"USD", "EUR"} {
		delta := "7d " + utils.FormatPercent(snap.Metrics[code].Change7d)
		if !strings.Contains(page, delta) {
			t.Errorf("%s card missing %q", code, delta)
		}
	}
	if !strings.Contains(out, `<div class="positive">&#43;0.42%</div>`) {
		t.Error("positive quote change should render with its sign and class")
	}
}

func TestGenerateHTMLSignedDeltas(t *testing.T) {
	snap := sampleSnapshot()
	snap.Metrics["USD"] = models.MetricsRecord{CurrentValue: 5.2, Change7d: 1.5, DataPoints: 30}
	snap.Metrics["EUR"] = models.MetricsRecord{CurrentValue: 5.4, Change7d: -2.25, DataPoints: 30}

	out, err := GenerateHTML(Input{Snapshot: snap}, DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	page := html.UnescapeString(out)
	for _, want := range []string{
		`<div class="positive">7d +1.50%</div>`,
		`<div class="negative">7d -2.25%</div>`,
		`<div class="">7d +0.00%</div>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestGenerateHTMLSingleCurrency(t *testing.T) {
	snap := sampleSnapshot()
	snap.Currencies = []string{"USD"}
	snap.Correlation = nil
	snap.VolatilityRanking = nil

	out, err := GenerateHTML(Input{Snapshot: snap}, Config{})
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	page := html.UnescapeString(out)
	if !strings.Contains(page, "Selecione moedas com dados suficientes.") {
		t.Error("missing correlation placeholder")
	}
	if !strings.Contains(page, "Nenhuma moeda com dados suficientes.") {
		t.Error("missing volatility placeholder")
	}
	if strings.Contains(page, "Cotações Atuais") {
		t.Error("quotes section should be omitted without quotes")
	}
}

func TestGenerateHTMLEscapesWarnings(t *testing.T) {
	snap := sampleSnapshot()
	snap.Warnings = []string{"<script>alert(1)</script>"}

	out, err := GenerateHTML(Input{Snapshot: snap}, DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	if strings.Contains(out, "<script>alert(1)</script>") {
		t.Error("warning text was not escaped")
	}
}

func TestGenerateNilSnapshot(t *testing.T) {
	if _, err := GenerateHTML(Input{}, DefaultConfig()); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("HTML: got %v, want ErrNoSnapshot", err)
	}
	if _, err := GenerateText(Input{}, DefaultConfig()); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("text: got %v, want ErrNoSnapshot", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// Text
// ════════════════════════════════════════════════════════════════════

func TestGenerateText(t *testing.T) {
	text, err := GenerateText(Input{Snapshot: sampleSnapshot(), Quotes: sampleQuotes()}, DefaultConfig())
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	for _, want := range []string{
		"COTAÇÕES ATUAIS",
		"MÉTRICAS PRINCIPAIS",
		"TABELA COMPARATIVA",
		"VOLATILIDADE",
		"AVISOS",
		"Período: 30 dias (2024-03-01 a 2024-03-30)",
		"1. ",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q", want)
		}
	}
	if strings.Contains(text, "<svg") {
		t.Error("text report should not contain SVG")
	}
}

func TestGenerateDispatch(t *testing.T) {
	in := Input{Snapshot: sampleSnapshot()}
	out, err := Generate(in, FormatHTML, DefaultConfig())
	if err != nil || !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("html: %v", err)
	}
	text, err := Generate(in, FormatText, DefaultConfig())
	if err != nil || strings.HasPrefix(text, "<!DOCTYPE") {
		t.Errorf("text: %v", err)
	}
	if _, err := Generate(in, Format("pdf"), DefaultConfig()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatHTML, false},
		{"HTML", FormatHTML, false},
		{"txt", FormatText, false},
		{" text ", FormatText, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q): got %q, %v", tt.in, got, err)
		}
	}
}

func TestBuildData(t *testing.T) {
	d := BuildData(Input{Snapshot: sampleSnapshot(), Quotes: sampleQuotes()}, Config{})

	if d.Title != "Dashboard de Câmbio" {
		t.Errorf("title: got %q", d.Title)
	}
	if len(d.Cards) != 3 || len(d.Rows) != 3 {
		t.Errorf("cards/rows: got %d/%d, want 3/3", len(d.Cards), len(d.Rows))
	}
	if len(d.Ranking) != 2 || d.Ranking[0].Position != 1 {
		t.Errorf("ranking: got %+v", d.Ranking)
	}
	if !d.HasCorrelation {
		t.Error("expected correlation")
	}
	if d.Quotes[1].Bid != "R$ --.--" || d.Quotes[1].Available {
		t.Errorf("unavailable quote: got %+v", d.Quotes[1])
	}
	if d.Quotes[0].Class != "positive" {
		t.Errorf("quote class: got %q", d.Quotes[0].Class)
	}
	// The reference rate is flat and stays off the evolution chart.
	evo := string(d.EvolutionChart)
	if strings.Contains(evo, "BRL") || !strings.Contains(evo, "USD") {
		t.Error("evolution chart should plot USD and EUR only")
	}
}

func TestBuildDataMissingMetrics(t *testing.T) {
	snap := sampleSnapshot()
	snap.Currencies = append(snap.Currencies, "GBP")

	d := BuildData(Input{Snapshot: snap}, DefaultConfig())
	last := d.Cards[len(d.Cards)-1]
	if last.Currency != "GBP" || last.Value != "R$ --.--" {
		t.Errorf("missing currency card: got %+v", last)
	}
	if len(d.Rows) != 3 {
		t.Errorf("comparison rows: got %d, want 3", len(d.Rows))
	}
}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

func TestLineChartSkipsNaN(t *testing.T) {
	svg := LineChart([]LineSeries{
		{Name: "USD", Values: []float64{5, math.NaN(), 5.2, 5.3}},
	}, []string{"a", "b", "c", "d"}, DefaultChartConfig())

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into the path")
	}
	// The gap splits the line into two segments.
	if strings.Count(svg, "M") < 2 {
		t.Error("expected the path to restart after the gap")
	}
}

func TestLineChartEmpty(t *testing.T) {
	for name, in := range map[string][]LineSeries{
		"nil":     nil,
		"all nan": {{Name: "USD", Values: []float64{math.NaN()}}},
	} {
		t.Run(name, func(t *testing.T) {
			if svg := LineChart(in, nil, DefaultChartConfig()); !strings.Contains(svg, "Sem dados") {
				t.Error("expected empty placeholder")
			}
		})
	}
}

func TestLineChartFlatSeries(t *testing.T) {
	svg := LineChart([]LineSeries{{Name: "BRL", Values: []float64{1, 1, 1}}}, nil, ChartConfig{})
	if strings.Contains(svg, "NaN") || strings.Contains(svg, "Inf") {
		t.Error("flat series produced non-finite coordinates")
	}
}

func TestHorizontalBarChart(t *testing.T) {
	svg := HorizontalBarChart([]BarItem{
		{Label: "USD", Value: 2.5},
		{Label: "EUR", Value: -1.25},
	}, "%", DefaultChartConfig())

	for _, want := range []string{"USD", "EUR", "2.50%", "-1.25%", "#4caf50", "#ef5350"} {
		if !strings.Contains(svg, want) {
			t.Errorf("bar chart missing %q", want)
		}
	}
}

func TestHeatmap(t *testing.T) {
	svg := Heatmap([]string{"USD", "EUR"}, [][]float64{{1, -0.5}, {-0.5, 1}}, DefaultChartConfig())
	for _, want := range []string{"1.00", "-0.50", "USD", "EUR", "#b2182b"} {
		if !strings.Contains(svg, want) {
			t.Errorf("heatmap missing %q", want)
		}
	}
	if got := strings.Count(svg, "<rect"); got != 5 { // background + 4 cells
		t.Errorf("rect count: got %d, want 5", got)
	}
}

func TestHeatmapMismatchedInput(t *testing.T) {
	svg := Heatmap([]string{"USD", "EUR"}, [][]float64{{1}}, DefaultChartConfig())
	if !strings.Contains(svg, "Selecione moedas") {
		t.Error("expected placeholder for mismatched matrix")
	}
}

func TestDivergingColor(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{-1, "#2166ac"},
		{0, "#ffffff"},
		{1, "#b2182b"},
		{2, "#b2182b"},
		{math.NaN(), "#cccccc"},
	}
	for _, tt := range tests {
		if got := divergingColor(tt.v); got != tt.want {
			t.Errorf("divergingColor(%v): got %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	if got := escapeXML(`<a & "b">`); got != "&lt;a &amp; &quot;b&quot;&gt;" {
		t.Errorf("got %q", got)
	}
}
