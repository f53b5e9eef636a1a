package storage

import "realty-analyzer/models"

// RecordSource is anything the dataset can be loaded from.
type RecordSource interface {
	FetchAll() ([]models.Record, error)
}

// RecordWriter is the interface any storage backend accepting records must satisfy.
type RecordWriter interface {
	Write(records []models.Record) error
	Close() error
}
