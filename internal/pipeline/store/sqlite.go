package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/scheduler"
)

// SQLite is the Store implementation backed by a single embedded SQLite
// file, per §4.4 and §6.
type SQLite struct {
	db  *sql.DB
	log *slog.Logger

	// schedule collapses concurrent ScheduleDataComputation calls for the
	// same path_id within this process into one read-modify-write; the
	// BEGIN IMMEDIATE transaction underneath remains the cross-process
	// source of truth.
	schedule singleflight.Group

	scheduler scheduler.Scheduler

	publishCount  metric.Int64Counter
	scheduleCount metric.Int64Counter
}

// Open opens (creating if absent) the SQLite file at path, applies pragmas
// and the schema, and returns a ready Store wired to sched (the external
// compute backend consulted by ScheduleDataComputation). One connection is
// used per call, as §4.4 requires; the pool is capped at a single writer
// connection to keep BEGIN IMMEDIATE semantics predictable under SQLite's
// single writer lock. Open registers the Store as sched's completion
// receiver, per §4.5.
func Open(ctx context.Context, path string, sched scheduler.Scheduler, log *slog.Logger, meter metric.Meter) (*SQLite, error) {
	if log == nil {
		log = slog.Default()
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s := &SQLite{db: db, log: log, scheduler: sched}
	if meter != nil {
		if c, err := meter.Int64Counter("pipeline.store.publishes_total"); err == nil {
			s.publishCount = c
		}
		if c, err := meter.Int64Counter("pipeline.store.schedule_calls_total"); err == nil {
			s.scheduleCount = c
		}
	}
	if sched != nil {
		sched.AddTaskCompletionCallbackReceiver(s)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var (
	_ Store                        = (*SQLite)(nil)
	_ scheduler.CompletionReceiver = (*SQLite)(nil)
)
