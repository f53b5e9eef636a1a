package storage

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"realty-analyzer/models"
	"realty-analyzer/utils"
)

var (
	// numberRegexp captures the first numeric value in a cell
	numberRegexp = regexp.MustCompile(`-?\d*\.?\d+(?:[eE][-+]?\d+)?`)
	// headerRegexp matches runs of characters that are not allowed in a column key
	headerRegexp = regexp.MustCompile(`[^a-z0-9]+`)
)

var requiredColumns = []string{
	models.ColLocation,
	models.ColYear,
	models.ColUnits,
	models.ColRate,
}

// normaliseHeader turns "flat - weighted average rate" into "flat_weighted_average_rate".
func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerRegexp.ReplaceAllString(h, "_")
	return strings.Trim(h, "_")
}

// rowCleaner converts raw string rows of a sheet into Records.
type rowCleaner struct {
	logger *utils.Logger
	keys   []string
	index  map[string]int
}

func newRowCleaner(headers []string, logger *utils.Logger) (*rowCleaner, error) {
	c := &rowCleaner{
		logger: logger,
		keys:   make([]string, len(headers)),
		index:  make(map[string]int, len(headers)),
	}
	for i, h := range headers {
		key := normaliseHeader(h)
		c.keys[i] = key
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; !dup {
			c.index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := c.index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}
	return c, nil
}

// Clean processes raw rows and returns records in input order. Blank rows
// and rows without a usable year are dropped.
func (c *rowCleaner) Clean(rows [][]string) []models.Record {
	result := make([]models.Record, 0, len(rows))

	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		yearRaw := c.cell(row, models.ColYear)
		year, ok := parseNumber(yearRaw)
		if !ok {
			c.logger.Warn("[dataset] Dropping row %d with unusable year %q", i+2, yearRaw)
			continue
		}
		units, _ := parseNumber(c.cell(row, models.ColUnits))
		rate, hasRate := parseNumber(c.cell(row, models.ColRate))

		rec := models.Record{
			Location:    normaliseText(c.cell(row, models.ColLocation)),
			Year:        int(year),
			FlatTotal:   units,
			FlatRate:    rate,
			RateMissing: !hasRate,
		}

		for j, key := range c.keys {
			if key == "" || c.index[key] != j || isRequired(key) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]any)
			}
			var raw string
			if j < len(row) {
				raw = strings.TrimSpace(row[j])
			}
			rec.Extra[key] = extraValue(raw)
		}

		result = append(result, rec)
	}

	c.logger.Debug("[dataset] Cleaned %d → %d rows (dropped %d)",
		len(rows), len(result), len(rows)-len(result))
	return result
}

func (c *rowCleaner) cell(row []string, col string) string {
	i := c.index[col]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// parseNumber extracts the first numeric value of a cell, ignoring
// thousands separators and currency symbols: "₹5,250.50" → 5250.5.
func parseNumber(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	match := numberRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// extraValue keeps numeric cells numeric and everything else as text.
// Empty cells become nil.
func extraValue(raw string) any {
	if raw == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return raw
}

func isRequired(key string) bool {
	for _, col := range requiredColumns {
		if col == key {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
