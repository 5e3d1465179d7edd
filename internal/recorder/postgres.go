package recorder

import (
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// PostgresRecorder persists run history to PostgreSQL.
type PostgresRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewPostgresRecorder connects with connStr and creates the schema.
func NewPostgresRecorder(connStr string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &PostgresRecorder{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	log.Info("postgres recorder opened")
	return r, nil
}

func (r *PostgresRecorder) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id           UUID PRIMARY KEY,
		collected_at BIGINT NOT NULL,
		source       VARCHAR(32),
		start_date   VARCHAR(10),
		end_date     VARCHAR(10),
		tickers      TEXT,
		row_count    INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(collected_at);
	CREATE TABLE IF NOT EXISTS adj_close (
		run_id UUID NOT NULL REFERENCES runs(id),
		date   VARCHAR(10) NOT NULL,
		ticker VARCHAR(20) NOT NULL,
		value  DOUBLE PRECISION,
		PRIMARY KEY (run_id, date, ticker)
	);
	CREATE TABLE IF NOT EXISTS pct_change (
		run_id UUID NOT NULL REFERENCES runs(id),
		date   VARCHAR(10) NOT NULL,
		ticker VARCHAR(20) NOT NULL,
		value  DOUBLE PRECISION,
		PRIMARY KEY (run_id, date, ticker)
	);
	CREATE TABLE IF NOT EXISTS means (
		run_id     UUID NOT NULL REFERENCES runs(id),
		ticker     VARCHAR(20) NOT NULL,
		mean_value DOUBLE PRECISION,
		PRIMARY KEY (run_id, ticker)
	);
	`
	_, err := r.db.Exec(query)
	return err
}

func (r *PostgresRecorder) RecordRun(snap *RunSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := writeRun(tx, snap, postgresPlaceholders); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *PostgresRecorder) Close() error {
	log.Info("closing postgres recorder")
	return r.db.Close()
}

func postgresPlaceholders(n int) string {
	return placeholders(n, func(i int) string { return "$" + strconv.Itoa(i) })
}
