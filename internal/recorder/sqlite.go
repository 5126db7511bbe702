package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"TrendEdge/internal/model"
)

// SQLiteRecorder persists scan runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read history while a scan is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_runs (
			run_id      TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			symbols     INTEGER,
			results     INTEGER,
			failures    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON scan_runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS scan_results (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       TEXT NOT NULL,
			rank         INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			bar_time     INTEGER,
			close        REAL,
			verdict      TEXT,
			notes        TEXT,
			rsi          REAL,
			macd_hist    REAL,
			sma_trend    REAL,
			target       REAL,
			distance     REAL,
			distance_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON scan_results(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_results_symbol ON scan_results(symbol)`,

		`CREATE TABLE IF NOT EXISTS scan_failures (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			kind   TEXT,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run ON scan_failures(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable stores undefined indicator values as NULL.
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// RecordScan writes the run, its ranked results and its failures in one transaction.
func (r *SQLiteRecorder) RecordScan(report *model.ScanReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	symbols := len(report.Results) + len(report.Failures) + len(report.NoSignal)
	if _, err := tx.Exec(`INSERT INTO scan_runs
		(run_id, mode, started_at, finished_at, symbols, results, failures)
		VALUES (?,?,?,?,?,?,?)`,
		report.RunID, report.Mode, report.StartedAt.UnixMilli(), report.FinishedAt.UnixMilli(),
		symbols, len(report.Results), len(report.Failures),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, res := range report.Results {
		s := res.Snapshot
		if _, err := tx.Exec(`INSERT INTO scan_results
			(run_id, rank, symbol, bar_time, close, verdict, notes,
			 rsi, macd_hist, sma_trend, target, distance, distance_pct)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, i+1, res.Symbol, s.Time.Unix(), s.Close, string(res.Verdict), res.Notes,
			nullable(s.RSI), nullable(s.MACDHist), nullable(s.SMATrend),
			nullable(res.Target), nullable(res.Distance), nullable(res.DistancePct),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", res.Symbol, err)
		}
	}

	for _, f := range report.Failures {
		if _, err := tx.Exec(`INSERT INTO scan_failures (run_id, symbol, kind, reason) VALUES (?,?,?,?)`,
			report.RunID, f.Symbol, string(f.Kind), f.Reason,
		); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.Symbol, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent runs first, each with its top three symbols.
func (r *SQLiteRecorder) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT r.run_id, r.mode, r.started_at, r.finished_at,
			r.symbols, r.results, r.failures,
			COALESCE((SELECT group_concat(symbol, ',') FROM
				(SELECT symbol FROM scan_results WHERE run_id = r.run_id ORDER BY rank LIMIT 3)), '')
		FROM scan_runs r
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			s                 RunSummary
			started, finished int64
			top               string
		)
		if err := rows.Scan(&s.RunID, &s.Mode, &started, &finished,
			&s.Symbols, &s.Results, &s.Failures, &top); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.UnixMilli(started).UTC()
		s.FinishedAt = time.UnixMilli(finished).UTC()
		if top != "" {
			s.Top = strings.Split(top, ",")
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
