// Package sqlite keeps the CLI's local run history in a SQLite file.
package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/RMahshie/alloptic/internal/repository"
)

// History wraps a SQLite connection for run records.
type History struct {
	conn *sqlx.DB
}

// Open opens or creates a history database at path. ":memory:" is accepted.
func Open(path string) (*History, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a second connection to :memory: would see an empty database
	conn.SetMaxOpenConns(1)

	h := &History{conn: conn}
	if err := h.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return h, nil
}

var _ repository.HistoryRepository = (*History)(nil)

// Close closes the database connection.
func (h *History) Close() error {
	return h.conn.Close()
}

func (h *History) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		alloy TEXT NOT NULL,
		method TEXT NOT NULL,
		fraction REAL NOT NULL,
		samples INTEGER NOT NULL,
		unresolved INTEGER NOT NULL,
		output_dir TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`
	_, err := h.conn.Exec(schema)
	return err
}

// Record stores one run, filling ID and CreatedAt when unset.
func (h *History) Record(ctx context.Context, run *repository.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt == "" {
		run.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	_, err := h.conn.NamedExecContext(ctx, `INSERT INTO runs
		(id, alloy, method, fraction, samples, unresolved, output_dir, created_at)
		VALUES (:id, :alloy, :method, :fraction, :samples, :unresolved, :output_dir, :created_at)`, run)
	return err
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]repository.RunRecord, error) {
	var runs []repository.RunRecord
	err := h.conn.SelectContext(ctx, &runs,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	return runs, nil
}
