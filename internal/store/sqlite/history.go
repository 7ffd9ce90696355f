// Package sqlite persists the raw price history between process restarts.
//
// The layout mirrors the in-memory window: a flat ordered list of
// (timestamp, symbol, price) records. Flushes rewrite the table in full
// inside one transaction; the window is the source of truth and already
// bounded, so incremental appends would only accumulate evicted rows.
package sqlite

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"cryptotrader/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// HistoryConfig configures the history store.
type HistoryConfig struct {
	DBPath string // path to SQLite database file, e.g. "data/history.db"
}

// History is a single-writer SQLite store for the price log.
type History struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (h *History) DB() *sql.DB { return h.db }

// Open opens (creating if needed) the history database in WAL mode.
func Open(cfg HistoryConfig) (*History, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened history database at %s", cfg.DBPath)
	return &History{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			seq    INTEGER PRIMARY KEY AUTOINCREMENT,
			ts     INTEGER NOT NULL,
			symbol TEXT    NOT NULL,
			price  REAL    NOT NULL
		);
	`)
	return err
}

// Flush replaces the persisted log with the given points, preserving
// their order, in a single transaction. Full rewrite, not incremental.
func (h *History) Flush(points []model.PricePoint) error {
	start := time.Now()
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM price_history`); err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite clear: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO price_history (ts, symbol, price) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(p.TS.UnixMilli(), p.Symbol, p.Price); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	log.Printf("[sqlite] flushed %d points in %v", len(points), time.Since(start))
	return nil
}

// LoadAll returns every persisted point in insertion order.
// Failure here is a startup error; the daemon must not run on a
// history it cannot read.
func (h *History) LoadAll() ([]model.PricePoint, error) {
	rows, err := h.db.Query(`SELECT ts, symbol, price FROM price_history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var points []model.PricePoint
	for rows.Next() {
		var ms int64
		var p model.PricePoint
		if err := rows.Scan(&ms, &p.Symbol, &p.Price); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		p.TS = time.UnixMilli(ms).UTC()
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite rows: %w", err)
	}
	return points, nil
}

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}
