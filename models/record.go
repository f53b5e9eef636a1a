package models

import "encoding/json"

// Column keys of the dataset after header normalisation.
const (
	ColLocation = "final_location"
	ColYear     = "year"
	ColUnits    = "flat_total"
	ColRate     = "flat_weighted_average_rate"
)

// Record is one row of the housing dataset. It is never modified after load.
// Columns beyond the four the analyzer needs are carried in Extra so the
// table output reproduces the source row.
type Record struct {
	Location  string
	Year      int
	FlatTotal float64
	FlatRate  float64
	Extra     map[string]any

	// RateMissing marks a blank or non-numeric rate cell. Such rows still
	// count toward units but are left out of every rate average.
	RateMissing bool
}

// MarshalJSON renders the record as a flat column -> value mapping.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		m[k] = v
	}
	m[ColLocation] = r.Location
	m[ColYear] = r.Year
	m[ColUnits] = r.FlatTotal
	if r.RateMissing {
		m[ColRate] = nil
	} else {
		m[ColRate] = r.FlatRate
	}
	return json.Marshal(m)
}

// ChartPoint is one aggregated value of a chart series. Area is set only
// when the chart holds more than one series.
type ChartPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
	Area  string  `json:"area,omitempty"`
}

// AnalysisResponse is the success payload of the analyze endpoint.
type AnalysisResponse struct {
	Summary string       `json:"summary"`
	Chart   []ChartPoint `json:"chart"`
	Table   []Record     `json:"table"`
}

// ErrorResponse is the failure payload of the analyze endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
