package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"

	"realty-analyzer/models"
)

// CSVWriter writes records as CSV to an io.Writer, header first.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	writer *csv.Writer
}

// NewCSVWriter wraps w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{writer: csv.NewWriter(w)}
}

// WriteRecords writes a header row followed by one row per record. The
// four dataset columns come first, then any extra columns sorted by name.
func (c *CSVWriter) WriteRecords(records []models.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	extras := extraColumns(records)
	header := append([]string{
		models.ColLocation, models.ColYear, models.ColUnits, models.ColRate,
	}, extras...)
	if err := c.writer.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, r := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			r.Location,
			strconv.Itoa(r.Year),
			formatFloat(r.FlatTotal),
			formatRate(r),
		)
		for _, key := range extras {
			row = append(row, formatCell(r.Extra[key]))
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

func extraColumns(records []models.Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r.Extra {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatRate(r models.Record) string {
	if r.RateMissing {
		return ""
	}
	return formatFloat(r.FlatRate)
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
