package store

import (
	"context"
	"database/sql"
)

// AddDependencies is a no-op on empty input; existing edges are left alone
// via INSERT OR IGNORE.
func (s *SQLite) AddDependencies(ctx context.Context, dependantPathID string, dependsOn []string) error {
	if len(dependsOn) == 0 {
		return nil
	}
	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		for _, dep := range dependsOn {
			if _, err := conn.ExecContext(ctx,
				`INSERT OR IGNORE INTO asset_version_dependencies(dependant, depends_on) VALUES (?, ?)`,
				dependantPathID, dep); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapDBError("add_dependencies", err)
}

// RemoveDependencies is idempotent: removing an edge that doesn't exist is
// not an error.
func (s *SQLite) RemoveDependencies(ctx context.Context, dependantPathID string, dependsOn []string) error {
	if len(dependsOn) == 0 {
		return nil
	}
	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		for _, dep := range dependsOn {
			if _, err := conn.ExecContext(ctx,
				`DELETE FROM asset_version_dependencies WHERE dependant = ? AND depends_on = ?`,
				dependantPathID, dep); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapDBError("remove_dependencies", err)
}

func (s *SQLite) GetDependencies(ctx context.Context, pathID string) ([]string, error) {
	return s.queryEdgeColumn(ctx, `SELECT depends_on FROM asset_version_dependencies WHERE dependant = ?`, pathID, "get_dependencies")
}

func (s *SQLite) GetDependants(ctx context.Context, pathID string) ([]string, error) {
	return s.queryEdgeColumn(ctx, `SELECT dependant FROM asset_version_dependencies WHERE depends_on = ?`, pathID, "get_dependants")
}

func (s *SQLite) queryEdgeColumn(ctx context.Context, query, pathID, op string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, pathID)
	if err != nil {
		return nil, wrapDBError(op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError(op, err)
		}
		out = append(out, id)
	}
	return out, wrapDBError(op, rows.Err())
}
