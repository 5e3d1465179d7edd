package recorder

import (
	"database/sql"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"MarketInsights/internal/model"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			collected_at INTEGER NOT NULL,
			source       TEXT,
			start_date   TEXT,
			end_date     TEXT,
			tickers      TEXT,
			row_count    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(collected_at)`,

		`CREATE TABLE IF NOT EXISTS adj_close (
			run_id TEXT NOT NULL,
			date   TEXT NOT NULL,
			ticker TEXT NOT NULL,
			value  REAL,
			PRIMARY KEY (run_id, date, ticker)
		)`,

		`CREATE TABLE IF NOT EXISTS pct_change (
			run_id TEXT NOT NULL,
			date   TEXT NOT NULL,
			ticker TEXT NOT NULL,
			value  REAL,
			PRIMARY KEY (run_id, date, ticker)
		)`,

		`CREATE TABLE IF NOT EXISTS means (
			run_id     TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			mean_value REAL,
			PRIMARY KEY (run_id, ticker)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(snap *RunSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := writeRun(tx, snap, sqlitePlaceholders); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}

func sqlitePlaceholders(n int) string { return placeholders(n, func(int) string { return "?" }) }

// writeRun inserts snap inside tx. ph renders the driver's bind markers.
func writeRun(tx *sql.Tx, snap *RunSnapshot, ph func(int) string) error {
	ds := snap.Dataset
	id := snap.ID.String()
	rows := 0
	var tickers string
	if ds.Prices != nil {
		rows = ds.Prices.Len()
		tickers = fmt.Sprint(ds.Prices.Columns)
	}

	if _, err := tx.Exec(`INSERT INTO runs
		(id, collected_at, source, start_date, end_date, tickers, row_count)
		VALUES (`+ph(7)+`)`,
		id, ds.CollectedAt.Unix(), ds.Source,
		ds.Start.Format(model.DateFormat), ds.End.Format(model.DateFormat),
		tickers, rows,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, tbl := range []struct {
		name  string
		table *model.Table
	}{
		{"adj_close", ds.Prices},
		{"pct_change", ds.Changes},
	} {
		stmt, err := tx.Prepare(`INSERT INTO ` + tbl.name + ` (run_id, date, ticker, value) VALUES (` + ph(4) + `)`)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", tbl.name, err)
		}
		for _, c := range cells(tbl.table) {
			if _, err := stmt.Exec(id, c.date.Format(model.DateFormat), c.ticker, c.value); err != nil {
				stmt.Close()
				return fmt.Errorf("insert %s: %w", tbl.name, err)
			}
		}
		stmt.Close()
	}

	for _, m := range ds.Means.Rows {
		if model.IsMissing(m.MeanValue) {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO means (run_id, ticker, mean_value) VALUES (`+ph(3)+`)`,
			id, m.Ticker, m.MeanValue); err != nil {
			return fmt.Errorf("insert mean: %w", err)
		}
	}
	return nil
}

func placeholders(n int, mark func(int) string) string {
	s := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ","
		}
		s += mark(i)
	}
	return s
}
