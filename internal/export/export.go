// Package export serializes dashboard results: the combined rate table as
// CSV, the metrics as JSON, and both bundled in a ZIP archive.
package export

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/seenimoa/fxdash/internal/series"
	"github.com/seenimoa/fxdash/pkg/models"
	"github.com/seenimoa/fxdash/pkg/utils"
)

// File names inside the bundle and of the bundle itself.
const (
	TableFileName   = "historico_cotacoes.csv"
	MetricsFileName = "metricas_analise.json"
	BundleFileName  = "dashboard_cambial.zip"
)

// WriteCSV writes the table with a "date" column followed by one column
// per currency. Absent cells are written as empty fields.
func WriteCSV(w io.Writer, t *series.Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"date"}, t.Currencies()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range t.Rows() {
		record[0] = utils.FormatDay(row.Date)
		for j, c := range row.Cells {
			if c.Valid {
				record[j+1] = strconv.FormatFloat(c.Value, 'f', -1, 64)
			} else {
				record[j+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteMetricsJSON writes the metrics mapping as an indented JSON object
// keyed by currency.
func WriteMetricsJSON(w io.Writer, metrics map[string]models.MetricsRecord) error {
	if metrics == nil {
		metrics = map[string]models.MetricsRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(metrics); err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return nil
}

// WriteBundle writes a ZIP archive holding the CSV table and the JSON
// metrics. modified stamps both entries.
func WriteBundle(w io.Writer, t *series.Table, metrics map[string]models.MetricsRecord, modified time.Time) error {
	zw := zip.NewWriter(w)

	entries := []struct {
		name  string
		write func(io.Writer) error
	}{
		{TableFileName, func(w io.Writer) error { return WriteCSV(w, t) }},
		{MetricsFileName, func(w io.Writer) error { return WriteMetricsJSON(w, metrics) }},
	}
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", e.name, err)
		}
		if err := e.write(fw); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}
