package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	station          TEXT NOT NULL,
	plate            TEXT NOT NULL,
	reservation_time TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'running',
	error            TEXT NOT NULL DEFAULT '',
	started_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS evidence (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	label      TEXT NOT NULL,
	uri        TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Trail persists run outcomes and evidence pointers to Postgres for later
// forensics. It never holds reservation state; the portal is the only source
// of truth for that. A nil *Trail is valid and records nothing, so callers
// do not branch on whether auditing is configured.
type Trail struct {
	pool *pgxpool.Pool
}

// Open connects to the audit database and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Trail, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse audit dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect audit db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit db: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate audit schema: %w", err)
	}
	return &Trail{pool: pool}, nil
}

// StartRun records the beginning of a run.
func (t *Trail) StartRun(ctx context.Context, runID, station, plate, reservationTime string) error {
	if t == nil {
		return nil
	}
	_, err := t.pool.Exec(ctx,
		`INSERT INTO runs (id, station, plate, reservation_time) VALUES ($1, $2, $3, $4)`,
		runID, station, plate, reservationTime)
	return err
}

// FinishRun closes out a run with its final status. runErr may be nil.
func (t *Trail) FinishRun(ctx context.Context, runID string, runErr error) error {
	if t == nil {
		return nil
	}
	status, msg := "succeeded", ""
	if runErr != nil {
		status, msg = "failed", runErr.Error()
	}
	_, err := t.pool.Exec(ctx,
		`UPDATE runs SET status = $2, error = $3, finished_at = now() WHERE id = $1`,
		runID, status, msg)
	return err
}

// RecordEvidence links a captured screenshot to its run.
func (t *Trail) RecordEvidence(ctx context.Context, runID, recID, label, uri string) error {
	if t == nil {
		return nil
	}
	_, err := t.pool.Exec(ctx,
		`INSERT INTO evidence (id, run_id, label, uri) VALUES ($1, $2, $3, $4)`,
		recID, runID, label, uri)
	return err
}

// Close releases the pool. Safe on a nil Trail.
func (t *Trail) Close() {
	if t != nil && t.pool != nil {
		t.pool.Close()
	}
}
