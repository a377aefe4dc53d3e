// Package report renders the dashboard as a self-contained HTML page with
// inline SVG charts, or as plain text for the terminal.
package report

import (
	"fmt"
	"math"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

func (c ChartConfig) withDefaults() ChartConfig {
	if c.Width == 0 {
		title := c.Title
		c = DefaultChartConfig()
		c.Title = title
	}
	return c
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

var palette = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineSeries is one named line. NaN values leave a gap.
type LineSeries struct {
	Name   string
	Values []float64
	Color  string // optional, assigned from the palette when empty
}

// LineChart draws one or more series over a shared x axis. labels, when
// given, are placed under evenly spaced points.
func LineChart(series []LineSeries, labels []string, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(series) == 0 {
		return emptySVG(cfg, "Sem dados")
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if maxLen == 0 || math.IsInf(minVal, 1) {
		return emptySVG(cfg, "Sem dados")
	}

	vRange := maxVal - minVal
	if vRange < 1e-9 {
		vRange = math.Max(math.Abs(maxVal)*0.1, 1)
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	px, py, pw, ph := cfg.plotArea()
	xAt := func(i int) float64 {
		if maxLen == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	writeFrame(&sb, cfg)

	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := yAt(val)
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%.2f</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, val)
	}

	for si, s := range series {
		color := s.Color
		if color == "" {
			color = palette[si%len(palette)]
		}

		// A NaN breaks the path; the next point starts a new segment.
		var path strings.Builder
		pen := "M"
		for i, v := range s.Values {
			if math.IsNaN(v) {
				pen = "M"
				continue
			}
			fmt.Fprintf(&path, "%s%.1f,%.1f ", pen, xAt(i), yAt(v))
			pen = "L"
		}
		if path.Len() > 0 {
			fmt.Fprintf(&sb, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.TrimSpace(path.String()), color)
		}

		ly := py + 10 + si*16
		fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name))
	}

	if len(labels) > 0 {
		interval := max(maxLen/6, 1)
		for i := 0; i < len(labels) && i < maxLen; i += interval {
			fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
				xAt(i), py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i]))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Horizontal)
// ════════════════════════════════════════════════════════════════════

// BarItem is one bar of a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional; green for >= 0, red otherwise
}

// HorizontalBarChart draws labelled bars from a shared zero line. Values
// are printed with unit appended, e.g. "%".
func HorizontalBarChart(items []BarItem, unit string, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	if len(items) == 0 {
		return emptySVG(cfg, "Nenhuma moeda com dados suficientes.")
	}
	cfg.MarginLeft = 80

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := 0.0, 0.0
	for _, item := range items {
		minVal = math.Min(minVal, item.Value)
		maxVal = math.Max(maxVal, item.Value)
	}
	valRange := maxVal - minVal
	if valRange < 1e-9 {
		valRange = 1
	}
	zeroX := float64(px) + (-minVal/valRange)*float64(pw)

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 30)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	writeFrame(&sb, cfg)

	if minVal < 0 {
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`,
			zeroX, py, zeroX, py+ph)
	}

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			color = "#4caf50"
			if item.Value < 0 {
				color = "#ef5350"
			}
		}

		bw := math.Abs(item.Value) / valRange * float64(pw)
		bx := zeroX
		if item.Value < 0 {
			bx = zeroX - bw
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`,
			bx, by, bw, barH, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%.2f%s</text>`,
			bx+bw+5, by+barH/2+4, cfg.FontSize, cfg.TextColor, item.Value, escapeXML(unit))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Heatmap
// ════════════════════════════════════════════════════════════════════

// Heatmap draws a square matrix of values in [-1, 1] on a diverging
// blue-white-red scale with the value printed in each cell.
func Heatmap(labels []string, values [][]float64, cfg ChartConfig) string {
	cfg = cfg.withDefaults()
	n := len(labels)
	if n == 0 || len(values) != n {
		return emptySVG(cfg, "Selecione moedas com dados suficientes.")
	}

	px, py, pw, ph := cfg.plotArea()
	cell := math.Min(float64(pw), float64(ph)) / float64(n)

	var sb strings.Builder
	writeFrame(&sb, cfg)

	for i := 0; i < n; i++ {
		for j := 0; j < n && j < len(values[i]); j++ {
			v := values[i][j]
			x := float64(px) + float64(j)*cell
			y := float64(py) + float64(i)*cell
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#fff"/>`,
				x, y, cell, cell, divergingColor(v))
			textColor := cfg.TextColor
			if math.Abs(v) > 0.6 {
				textColor = "#ffffff"
			}
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%.2f</text>`,
				x+cell/2, y+cell/2+4, cfg.FontSize+1, textColor, v)
		}
		// row and column labels
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, float64(py)+float64(i)*cell+cell/2+4, cfg.FontSize, cfg.TextColor, escapeXML(labels[i]))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			float64(px)+float64(i)*cell+cell/2, float64(py)+float64(n)*cell+16, cfg.FontSize, cfg.TextColor, escapeXML(labels[i]))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// divergingColor maps -1 to blue, 0 to white and +1 to red. Values
// outside [-1, 1] are clamped; NaN is grey.
func divergingColor(v float64) string {
	if math.IsNaN(v) {
		return "#cccccc"
	}
	v = math.Max(-1, math.Min(1, v))
	// endpoints: #2166ac (blue), #b2182b (red)
	lerp := func(from, to int, t float64) int {
		return int(math.Round(float64(from) + (float64(to)-float64(from))*t))
	}
	if v < 0 {
		t := -v
		return fmt.Sprintf("#%02x%02x%02x", lerp(255, 0x21, t), lerp(255, 0x66, t), lerp(255, 0xac, t))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(255, 0xb2, v), lerp(255, 0x18, v), lerp(255, 0x2b, v))
}

// ════════════════════════════════════════════════════════════════════
// SVG Helpers
// ════════════════════════════════════════════════════════════════════

// writeFrame opens the svg element and draws the background and title.
func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	fmt.Fprintf(sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor)
	if cfg.Title != "" {
		fmt.Fprintf(sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
	}
}

func emptySVG(cfg ChartConfig, msg string) string {
	w, h := cfg.Width, cfg.Height
	if w == 0 {
		w = 400
	}
	if h == 0 {
		h = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		w, h, w, h, w/2, h/2, escapeXML(msg))
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
