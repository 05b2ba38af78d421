package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/go-sqlite3"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

// wrapDBError normalizes a raw database/sql or sqlite3 error into one of
// the registry's sentinel error kinds, tagged with op for context.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, pipelinepb.ErrNotFound)
	}

	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.CONSTRAINT:
			return fmt.Errorf("%s: %w: %v", op, pipelinepb.ErrConflict, err)
		}
	}
	// Older drivers/string-based errors (e.g. from a mocked connection in
	// tests) surface UNIQUE/FOREIGN KEY violations as plain text.
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "FOREIGN KEY constraint") {
		return fmt.Errorf("%s: %w: %v", op, pipelinepb.ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isBusy reports whether err represents SQLITE_BUSY, the only error the
// immediate-transaction retry loop should retry on.
func isBusy(err error) bool {
	var sqliteErr *sqlite3.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.BUSY || code == sqlite3.LOCKED
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked")
}
