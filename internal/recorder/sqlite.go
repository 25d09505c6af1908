package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL keeps readers (ad-hoc SQL, dashboards) off the writer's lock.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS calc_requests (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			request_id      TEXT,
			source          TEXT,
			raw_amount      TEXT,
			raw_premium     TEXT,
			raw_settle_days TEXT,
			raw_current_day TEXT,
			raw_sell_delay  TEXT,
			raw_limit       TEXT,
			error_kind      TEXT,
			remaining_days  INTEGER,
			effective_days  INTEGER,
			min_profit      REAL,
			max_profit      REAL,
			min_roi         REAL,
			max_roi         REAL,
			note_kind       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calc_ts ON calc_requests(timestamp)`,

		`CREATE TABLE IF NOT EXISTS tracker_events (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			event_type      TEXT,
			subscription_id TEXT,
			name            TEXT,
			note            TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracker_ts ON tracker_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCalc(rec *CalcRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		errKind              sql.NullString
		remaining, effective sql.NullInt64
		minProfit, maxProfit sql.NullFloat64
		minRoi, maxRoi       sql.NullFloat64
		noteKind             sql.NullString
	)
	if rec.Err != nil {
		errKind = sql.NullString{String: string(rec.Err.Kind), Valid: true}
	}
	if res := rec.Result; res != nil {
		remaining = sql.NullInt64{Int64: int64(res.RemainingDays), Valid: true}
		effective = sql.NullInt64{Int64: int64(res.EffectiveDays), Valid: true}
		minProfit = sql.NullFloat64{Float64: res.MinProfit, Valid: true}
		maxProfit = sql.NullFloat64{Float64: res.MaxProfit, Valid: true}
		minRoi = sql.NullFloat64{Float64: res.MinRoi, Valid: true}
		maxRoi = sql.NullFloat64{Float64: res.MaxRoi, Valid: true}
		noteKind = sql.NullString{String: string(rec.Note), Valid: rec.Note != ""}
	}

	in := rec.Input
	_, err := r.db.Exec(`INSERT INTO calc_requests
		(timestamp, request_id, source,
		 raw_amount, raw_premium, raw_settle_days, raw_current_day, raw_sell_delay, raw_limit,
		 error_kind, remaining_days, effective_days,
		 min_profit, max_profit, min_roi, max_roi, note_kind)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.RequestID, string(rec.Source),
		string(in.Amount), string(in.PremiumPct), string(in.SettleDays),
		string(in.CurrentDay), string(in.SellDelayDays), string(in.LimitPct),
		errKind, remaining, effective,
		minProfit, maxProfit, minRoi, maxRoi, noteKind,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrackerEvent(evt *TrackerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO tracker_events
		(timestamp, event_type, subscription_id, name, note)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.EventType, evt.SubscriptionID, evt.Name, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
