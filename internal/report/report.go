package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/seenimoa/fxdash/internal/dashboard"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Report Generator: chart + template rendering
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// ParseFormat maps a user-supplied name to a Format. Empty means HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return FormatHTML, nil
	case "text", "txt":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Config controls report generation.
type Config struct {
	Title    string      // default: "Dashboard de Câmbio"
	ChartCfg ChartConfig // chart rendering config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Title:    "Dashboard de Câmbio",
		ChartCfg: DefaultChartConfig(),
	}
}

// Input is what a report is rendered from.
type Input struct {
	Snapshot  *dashboard.Snapshot
	Quotes    []models.Quote
	Reference string // excluded from the evolution chart; default "BRL"
}

// ErrNoSnapshot is returned when Input carries no snapshot.
var ErrNoSnapshot = errors.New("report: no snapshot to render")

// ════════════════════════════════════════════════════════════════════
// Template data
// ════════════════════════════════════════════════════════════════════

// Data is the view model passed to the HTML template and text renderer.
type Data struct {
	Title       string
	GeneratedAt string
	PeriodDays  int
	FirstDay    string
	LastDay     string

	Quotes  []QuoteRow
	Cards   []MetricCard
	Rows    []CompareRow
	Ranking []RankRow

	EvolutionChart   template.HTML
	CorrelationChart template.HTML
	ChangeChart      template.HTML
	VolatilityChart  template.HTML
	HasCorrelation   bool

	Warnings []string
}

// QuoteRow is one latest quote.
type QuoteRow struct {
	Currency  string
	Name      string
	Bid       string
	Change    string
	Class     string
	Available bool
}

// MetricCard is the headline value of one currency with its weekly delta.
type MetricCard struct {
	Currency string
	Value    string
	Delta    string
	Class    string
}

// CompareRow is one line of the comparison table.
type CompareRow struct {
	Currency   string
	Value      string
	Change7d   string
	Change30d  string
	Change90d  string
	Volatility string
	DataPoints int
}

// RankRow is one entry of the volatility ranking.
type RankRow struct {
	Position   int
	Currency   string
	Volatility string
}

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

// GenerateHTML renders the snapshot as a self-contained HTML page.
func GenerateHTML(in Input, cfg Config) (string, error) {
	if in.Snapshot == nil {
		return "", ErrNoSnapshot
	}
	data := BuildData(in, cfg)

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders the snapshot for a terminal.
func GenerateText(in Input, cfg Config) (string, error) {
	if in.Snapshot == nil {
		return "", ErrNoSnapshot
	}
	return renderText(BuildData(in, cfg)), nil
}

// Generate dispatches on format.
func Generate(in Input, format Format, cfg Config) (string, error) {
	switch format {
	case FormatText:
		return GenerateText(in, cfg)
	case FormatHTML, "":
		return GenerateHTML(in, cfg)
	}
	return "", fmt.Errorf("unknown report format %q", format)
}

// BuildData turns a snapshot into the view model.
func BuildData(in Input, cfg Config) Data {
	snap := in.Snapshot
	if cfg.Title == "" {
		cfg.Title = DefaultConfig().Title
	}
	if cfg.ChartCfg.Width == 0 {
		cfg.ChartCfg = DefaultChartConfig()
	}
	ref := in.Reference
	if ref == "" {
		ref = "BRL"
	}

	d := Data{
		Title:       cfg.Title,
		GeneratedAt: snap.GeneratedAt.Format(time.RFC3339),
		PeriodDays:  snap.PeriodDays,
		Warnings:    snap.Warnings,
	}
	if snap.Table != nil && !snap.Table.Empty() {
		dates := snap.Table.Dates()
		d.FirstDay = utils.FormatDay(dates[0])
		d.LastDay = utils.FormatDay(dates[len(dates)-1])
	}

	for _, q := range in.Quotes {
		row := QuoteRow{Currency: q.Currency, Name: q.Name, Available: q.Available, Bid: utils.FormatBRL(math.NaN()), Change: "--"}
		if q.Available {
			row.Bid = utils.FormatBRL(q.Bid)
			row.Change = utils.FormatPercent(q.ChangePct)
			row.Class = signClass(q.ChangePct)
		}
		d.Quotes = append(d.Quotes, row)
	}

	for _, code := range snap.Currencies {
		m, ok := snap.Metrics[code]
		card := MetricCard{Currency: code, Value: utils.FormatBRL(math.NaN()), Delta: "--"}
		if ok {
			card.Value = utils.FormatBRL(m.CurrentValue)
			card.Delta = utils.FormatPercent(m.Change7d)
			card.Class = signClass(m.Change7d)
			d.Rows = append(d.Rows, CompareRow{
				Currency:   code,
				Value:      utils.FormatBRL(m.CurrentValue),
				Change7d:   utils.FormatPercent(m.Change7d),
				Change30d:  utils.FormatPercent(m.Change30d),
				Change90d:  utils.FormatPercent(m.Change90d),
				Volatility: fmt.Sprintf("%.1f%%", m.Volatility),
				DataPoints: m.DataPoints,
			})
		}
		d.Cards = append(d.Cards, card)
	}

	for i, r := range snap.VolatilityRanking {
		d.Ranking = append(d.Ranking, RankRow{
			Position:   i + 1,
			Currency:   r.Currency,
			Volatility: fmt.Sprintf("%.1f%%", r.Volatility),
		})
	}

	chart := func(title string) ChartConfig {
		c := cfg.ChartCfg
		c.Title = title
		return c
	}
	d.EvolutionChart = template.HTML(LineChart(evolutionSeries(in, ref), dayLabels(in), chart("Evolução Temporal")))
	if snap.Correlation != nil {
		d.HasCorrelation = true
		d.CorrelationChart = template.HTML(Heatmap(snap.Correlation.Currencies, snap.Correlation.Values, chart("Correlação")))
	} else {
		d.CorrelationChart = template.HTML(Heatmap(nil, nil, chart("Correlação")))
	}
	d.ChangeChart = template.HTML(HorizontalBarChart(changeBars(snap), "%", chart("Variação em 90 dias")))
	d.VolatilityChart = template.HTML(HorizontalBarChart(volatilityBars(snap), "%", chart("Volatilidade anualizada")))
	return d
}

// evolutionSeries returns one line per selected currency except the
// reference, whose rate is constant.
func evolutionSeries(in Input, ref string) []LineSeries {
	t := in.Snapshot.Table
	if t == nil || t.Empty() {
		return nil
	}
	var out []LineSeries
	for _, code := range in.Snapshot.Currencies {
		if code == ref || !t.Has(code) {
			continue
		}
		values := make([]float64, t.Len())
		for i := range values {
			c := t.Cell(i, code)
			values[i] = math.NaN()
			if c.Valid {
				values[i] = c.Value
			}
		}
		out = append(out, LineSeries{Name: code, Values: values})
	}
	return out
}

func dayLabels(in Input) []string {
	t := in.Snapshot.Table
	if t == nil {
		return nil
	}
	dates := t.Dates()
	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format("02/01")
	}
	return labels
}

func changeBars(snap *dashboard.Snapshot) []BarItem {
	var items []BarItem
	for _, code := range snap.Currencies {
		if m, ok := snap.Metrics[code]; ok {
			items = append(items, BarItem{Label: code, Value: m.Change90d})
		}
	}
	return items
}

func volatilityBars(snap *dashboard.Snapshot) []BarItem {
	items := make([]BarItem, 0, len(snap.VolatilityRanking))
	for _, r := range snap.VolatilityRanking {
		items = append(items, BarItem{Label: r.Currency, Value: r.Volatility, Color: "#ff9800"})
	}
	return items
}

func signClass(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	}
	return ""
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderText(d Data) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	fmt.Fprintf(&sb, "  %s\n", d.Title)
	fmt.Fprintf(&sb, "  Gerado em: %s | Período: %d dias", d.GeneratedAt, d.PeriodDays)
	if d.FirstDay != "" {
		fmt.Fprintf(&sb, " (%s a %s)", d.FirstDay, d.LastDay)
	}
	sb.WriteString("\n" + line + "\n")

	if len(d.Quotes) > 0 {
		sb.WriteString("\n  ■ COTAÇÕES ATUAIS\n")
		for _, q := range d.Quotes {
			fmt.Fprintf(&sb, "    %-5s %-16s %s\n", q.Currency, q.Bid, q.Change)
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n  ■ MÉTRICAS PRINCIPAIS\n")
	for _, c := range d.Cards {
		fmt.Fprintf(&sb, "    %-5s %-16s 7d %s\n", c.Currency, c.Value, c.Delta)
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ TABELA COMPARATIVA\n")
	fmt.Fprintf(&sb, "    %-5s %-14s %9s %9s %9s %8s %6s\n", "Moeda", "Cotação", "7d", "30d", "90d", "Vol.", "Dados")
	for _, r := range d.Rows {
		fmt.Fprintf(&sb, "    %-5s %-14s %9s %9s %9s %8s %6d\n",
			r.Currency, r.Value, r.Change7d, r.Change30d, r.Change90d, r.Volatility, r.DataPoints)
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ VOLATILIDADE\n")
	if len(d.Ranking) == 0 {
		sb.WriteString("    Nenhuma moeda com dados suficientes.\n")
	}
	for _, r := range d.Ranking {
		fmt.Fprintf(&sb, "    %d. %-5s %s\n", r.Position, r.Currency, r.Volatility)
	}
	sb.WriteString(thinLine + "\n")

	if len(d.Warnings) > 0 {
		warnings := append([]string(nil), d.Warnings...)
		sort.Strings(warnings)
		sb.WriteString("\n  ■ AVISOS\n")
		for _, w := range warnings {
			fmt.Fprintf(&sb, "    ! %s\n", w)
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Fonte: AwesomeAPI. Valores informativos, sem garantia.\n")
	sb.WriteString(line + "\n")
	return sb.String()
}
