package storage

import (
	"fmt"
	"sort"

	"realty-analyzer/models"
	"realty-analyzer/utils"
)

// Dataset is the in-memory, read-only housing dataset. It is built once at
// start-up and shared by all requests without locking.
type Dataset struct {
	records   []models.Record
	locations map[string]struct{}
}

// NewDataset copies records into a Dataset and indexes the distinct
// lower-cased locations.
func NewDataset(records []models.Record) *Dataset {
	d := &Dataset{
		records:   make([]models.Record, len(records)),
		locations: make(map[string]struct{}),
	}
	copy(d.records, records)
	for _, r := range d.records {
		d.locations[utils.FoldKey(r.Location)] = struct{}{}
	}
	return d
}

// Load fetches all records from src and wraps them in a Dataset.
func Load(src RecordSource) (*Dataset, error) {
	records, err := src.FetchAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: load: %w", err)
	}
	return NewDataset(records), nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []models.Record {
	out := make([]models.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Filter returns the records whose location equals area, ignoring case,
// in load order. The result is never nil.
func (d *Dataset) Filter(area string) []models.Record {
	key := utils.FoldKey(area)
	out := make([]models.Record, 0)
	for _, r := range d.records {
		if utils.FoldKey(r.Location) == key {
			out = append(out, r)
		}
	}
	return out
}

// HasLocation reports whether area is one of the dataset's locations.
func (d *Dataset) HasLocation(area string) bool {
	_, ok := d.locations[utils.FoldKey(area)]
	return ok
}

// Locations returns the distinct lower-cased locations, sorted.
func (d *Dataset) Locations() []string {
	out := make([]string, 0, len(d.locations))
	for loc := range d.locations {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}
