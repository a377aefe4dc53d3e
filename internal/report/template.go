package report

// reportTemplate is the HTML layout of the dashboard report. Charts are
// inline SVG so the page has no external assets.
const reportTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 960px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 12px; margin-bottom: 16px; }
  .cards { display: flex; flex-wrap: wrap; gap: 12px; }
  .card {
    flex: 1 1 160px;
    background: var(--section-bg);
    border: 1px solid var(--border);
    border-radius: 6px;
    padding: 10px 14px;
  }
  .card .label { color: var(--muted); font-size: 0.8rem; }
  .card .value { font-size: 1.2rem; font-weight: 600; }
  .positive { color: var(--green); }
  .negative { color: var(--red); }
  table { width: 100%; border-collapse: collapse; font-size: 0.9rem; }
  th, td { padding: 6px 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: var(--section-bg); }
  .chart { margin: 12px 0; overflow-x: auto; }
  .warnings { background: #fff7ed; border-left: 4px solid #ea580c; padding: 8px 12px; }
  .footer { margin-top: 32px; font-size: 0.8rem; color: var(--muted); text-align: center; }
</style>
</head>
<body>

<div class="header">
  <h1>{{.Title}}</h1>
  <p class="muted">Período: {{.PeriodDays}} dias{{if .FirstDay}} ({{.FirstDay}} a {{.LastDay}}){{end}} · Gerado em {{.GeneratedAt}}</p>
</div>

{{if .Quotes}}
<h2>Cotações Atuais</h2>
<div class="cards">
  {{range .Quotes}}
  <div class="card">
    <div class="label">{{.Currency}}{{if .Name}} · {{.Name}}{{end}}</div>
    <div class="value">{{.Bid}}</div>
    <div class="{{.Class}}">{{.Change}}</div>
  </div>
  {{end}}
</div>
{{end}}

<h2>Métricas Principais</h2>
<div class="cards">
  {{range .Cards}}
  <div class="card">
    <div class="label">{{.Currency}}</div>
    <div class="value">{{.Value}}</div>
    <div class="{{.Class}}">7d {{.Delta}}</div>
  </div>
  {{end}}
</div>

<h2>Evolução Temporal</h2>
<div class="chart">{{.EvolutionChart}}</div>

<h2>Heatmap de Correlação</h2>
<div class="chart">{{.CorrelationChart}}</div>

<h2>Variações Percentuais</h2>
<div class="chart">{{.ChangeChart}}</div>

<h2>Volatilidade</h2>
<div class="chart">{{.VolatilityChart}}</div>
{{if .Ranking}}
<table>
  <tr><th>#</th><th>Moeda</th><th>Volatilidade</th></tr>
  {{range .Ranking}}<tr><td>{{.Position}}</td><td>{{.Currency}}</td><td>{{.Volatility}}</td></tr>{{end}}
</table>
{{end}}

<h2>Tabela Comparativa</h2>
<table>
  <tr><th>Moeda</th><th>Cotação</th><th>Var. 7d</th><th>Var. 30d</th><th>Var. 90d</th><th>Volatilidade</th><th>Dados</th></tr>
  {{range .Rows}}
  <tr>
    <td>{{.Currency}}</td><td>{{.Value}}</td><td>{{.Change7d}}</td><td>{{.Change30d}}</td>
    <td>{{.Change90d}}</td><td>{{.Volatility}}</td><td>{{.DataPoints}}</td>
  </tr>
  {{end}}
</table>

{{if .Warnings}}
<h2>Avisos</h2>
<div class="warnings">
  {{range .Warnings}}<p>{{.}}</p>{{end}}
</div>
{{end}}

<div class="footer">Fonte: AwesomeAPI. Valores informativos, sem garantia.</div>

</body>
</html>
`
