package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders timetable grids into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the grids. Each grid is preceded by a
// title row and separated from the next by a blank record.
func (e *CSVExporter) Render(grids []Grid) ([]byte, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("csv requires at least one grid")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for i, grid := range grids {
		if len(grid.Headers) == 0 {
			return nil, fmt.Errorf("csv grid %q requires at least one header", grid.Title)
		}
		if grid.Title != "" {
			if err := writer.Write([]string{grid.Title}); err != nil {
				return nil, fmt.Errorf("write csv title: %w", err)
			}
		}
		if err := writer.Write(grid.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range grid.Rows {
			record := make([]string, len(grid.Headers))
			for j, header := range grid.Headers {
				record[j] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
		if i < len(grids)-1 {
			if err := writer.Write([]string{""}); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
