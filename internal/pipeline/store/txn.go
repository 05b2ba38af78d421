package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// withImmediateTx runs fn inside a BEGIN IMMEDIATE transaction on a
// dedicated connection, retrying the BEGIN itself on SQLITE_BUSY with an
// exponential backoff (database/sql's Tx type has no way to request a
// transaction mode, hence the manual BEGIN/COMMIT/ROLLBACK over a raw
// *sql.Conn). fn's error, if any, causes a rollback; otherwise the
// transaction is committed.
func withImmediateTx(ctx context.Context, db *sql.DB, fn func(conn *sql.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8), ctx)
	beginOp := func() error {
		_, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err != nil && isBusy(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(beginOp, bo); err != nil {
		return fmt.Errorf("begin immediate: %w", err)
	}

	if err := fn(conn); err != nil {
		if _, rbErr := conn.ExecContext(ctx, "ROLLBACK"); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
