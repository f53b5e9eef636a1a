// Command seed loads the spreadsheet at DATASET_PATH and stores it in the
// housing_records table so the server can run with DATASET_SOURCE=postgres.
package main

import (
	"os"

	"realty-analyzer/config"
	"realty-analyzer/storage"
	"realty-analyzer/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.LogDebug)

	logger.Info("=== Seeding housing_records from %s ===", cfg.DatasetPath)

	records, err := storage.NewFileSource(cfg.DatasetPath, cfg.DatasetSheet, logger).FetchAll()
	if err != nil {
		logger.Error("Failed to read dataset: %v", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Error("Dataset file has no usable rows. Exiting.")
		os.Exit(1)
	}
	logger.Info("Read %d records", len(records))

	pg, err := storage.NewPostgresStore(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer pg.Close()

	var w storage.RecordWriter = pg
	if err := w.Write(records); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		os.Exit(1)
	}

	stored, err := pg.FetchAll()
	if err != nil {
		logger.Error("Failed to read back records: %v", err)
		os.Exit(1)
	}
	logger.Info("Stored %d records in PostgreSQL (table: housing_records)", len(stored))
}
