package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"realty-analyzer/models"
)

// PostgresStore keeps the housing dataset in the housing_records table.
// The analyzer only reads from it; Write is used by the seed command.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresStore.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	_, err := ps.db.Exec(`
		CREATE TABLE IF NOT EXISTS housing_records (
			id                         SERIAL PRIMARY KEY,
			final_location             TEXT          NOT NULL,
			year                       INTEGER       NOT NULL,
			flat_total                 NUMERIC(14,2) NOT NULL DEFAULT 0,
			flat_weighted_average_rate NUMERIC(14,2)
		);
		ALTER TABLE housing_records ALTER COLUMN flat_weighted_average_rate DROP NOT NULL;
		ALTER TABLE housing_records ALTER COLUMN flat_weighted_average_rate DROP DEFAULT;

		CREATE INDEX IF NOT EXISTS idx_housing_location ON housing_records(LOWER(final_location));
		CREATE INDEX IF NOT EXISTS idx_housing_year     ON housing_records(year);
	`)
	return err
}

// Clear deletes all existing records from the table.
func (ps *PostgresStore) Clear() error {
	_, err := ps.db.Exec("DELETE FROM housing_records")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the table contents with records, batch-inserted in order.
// Extra columns are not stored.
func (ps *PostgresStore) Write(records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := ps.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		query, args := buildInsert(records[i:end])
		if _, err := ps.db.Exec(query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

func buildInsert(batch []models.Record) (string, []interface{}) {
	const cols = 4
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		rate := sql.NullFloat64{Float64: r.FlatRate, Valid: !r.RateMissing}
		valueArgs = append(valueArgs, r.Location, r.Year, r.FlatTotal, rate)
	}

	query := fmt.Sprintf(`
		INSERT INTO housing_records (final_location, year, flat_total, flat_weighted_average_rate)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// FetchAll retrieves all stored records in insertion order.
func (ps *PostgresStore) FetchAll() ([]models.Record, error) {
	rows, err := ps.db.Query(`
		SELECT final_location, year, flat_total, flat_weighted_average_rate
		FROM housing_records
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			r    models.Record
			rate sql.NullFloat64
		)
		if err := rows.Scan(&r.Location, &r.Year, &r.FlatTotal, &rate); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.FlatRate, r.RateMissing = rate.Float64, !rate.Valid
		records = append(records, r)
	}
	return records, rows.Err()
}
