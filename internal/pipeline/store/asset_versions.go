package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

// PublishNewAssetVersion implements the publish transaction of §4.4/§4.1.
func (s *SQLite) PublishNewAssetVersion(ctx context.Context, assetPathID string, explicitVersion *version.Triple, pathID string, params pipelinepb.GenerationTaskParameters, deps []string) (pipelinepb.AssetVersionData, error) {
	var result pipelinepb.AssetVersionData

	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		var exists int
		if err := conn.QueryRowContext(ctx, `SELECT 1 FROM assets WHERE pathid = ?`, assetPathID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("unknown asset %s: %w", assetPathID, pipelinepb.ErrConflict)
			}
			return err
		}

		ver := explicitVersion
		if ver == nil {
			max, err := maxVersionTriple(ctx, conn, assetPathID)
			if err != nil {
				return err
			}
			next := version.NextAfter(max)
			ver = &next
		}

		if pathID == "" {
			pathID = assetPathID + "/" + ver.String()
		}

		paramsJSON, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}

		_, err = conn.ExecContext(ctx, `
			INSERT INTO asset_versions(pathid, asset_pathid, version_0, version_1, version_2, data_task_attr, data_produced, data_calculator_id, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
			pathID, assetPathID, ver[0], ver[1], ver[2], string(paramsJSON), dataNotComputed)
		if err != nil {
			return err
		}

		for _, dep := range deps {
			if _, err := conn.ExecContext(ctx,
				`INSERT OR IGNORE INTO asset_version_dependencies(dependant, depends_on) VALUES (?, ?)`,
				pathID, dep); err != nil {
				return err
			}
		}

		result = pipelinepb.AssetVersionData{
			PathID:             pathID,
			AssetPathID:        assetPathID,
			VersionID:          *ver,
			DataProducerParams: params,
			DataAvailability:   pipelinepb.NotComputed,
		}
		return nil
	})
	if err != nil {
		return pipelinepb.AssetVersionData{}, wrapDBError("publish_new_asset_version", err)
	}
	if s.publishCount != nil {
		s.publishCount.Add(ctx, 1)
	}
	s.log.Info("published asset version", "path_id", result.PathID, "asset_path_id", assetPathID, "version", result.VersionID.String())
	return result, nil
}

func maxVersionTriple(ctx context.Context, conn *sql.Conn, assetPathID string) (version.Triple, error) {
	var v0, v1, v2 sql.NullInt64
	err := conn.QueryRowContext(ctx, `
		SELECT version_0, version_1, version_2 FROM asset_versions
		WHERE asset_pathid = ?
		ORDER BY version_0 DESC, version_1 DESC, version_2 DESC
		LIMIT 1`, assetPathID).Scan(&v0, &v1, &v2)
	if err == sql.ErrNoRows {
		return version.Zero, nil
	}
	if err != nil {
		return version.Triple{}, err
	}
	return version.Triple{int(v0.Int64), int(v1.Int64), int(v2.Int64)}, nil
}

func scanAssetVersionRow(row interface {
	Scan(dest ...any) error
}) (pipelinepb.AssetVersionData, error) {
	var (
		a          pipelinepb.AssetVersionData
		v0, v1, v2 int
		paramsJSON string
		produced   int
		calcID     sql.NullString
		data       sql.NullString
	)
	if err := row.Scan(&a.PathID, &a.AssetPathID, &v0, &v1, &v2, &paramsJSON, &produced, &calcID, &data); err != nil {
		return pipelinepb.AssetVersionData{}, err
	}
	a.VersionID = version.Triple{v0, v1, v2}
	if err := json.Unmarshal([]byte(paramsJSON), &a.DataProducerParams); err != nil {
		return pipelinepb.AssetVersionData{}, fmt.Errorf("unmarshal params for %s: %w", a.PathID, err)
	}
	a.DataAvailability = pipelinepb.DataAvailability(produced)
	if calcID.Valid {
		a.DataCalculatorID = calcID.String
	}
	if data.Valid {
		if err := json.Unmarshal([]byte(data.String), &a.Data); err != nil {
			return pipelinepb.AssetVersionData{}, fmt.Errorf("unmarshal data for %s: %w", a.PathID, err)
		}
	}
	return a, nil
}

const assetVersionColumns = `pathid, asset_pathid, version_0, version_1, version_2, data_task_attr, data_produced, data_calculator_id, data`

// GetAssetVersionDatas resolves each pair to a version row: explicit
// Version selects that exact triple, nil selects the asset's current
// maximum, per §4.4.
func (s *SQLite) GetAssetVersionDatas(ctx context.Context, pairs []AssetVersionPair) ([]pipelinepb.AssetVersionData, error) {
	out := make([]pipelinepb.AssetVersionData, 0, len(pairs))
	for _, p := range pairs {
		var row *sql.Row
		if p.Version != nil {
			row = s.db.QueryRowContext(ctx,
				`SELECT `+assetVersionColumns+` FROM asset_versions WHERE asset_pathid = ? AND version_0 = ? AND version_1 = ? AND version_2 = ?`,
				p.AssetPathID, p.Version[0], p.Version[1], p.Version[2])
		} else {
			row = s.db.QueryRowContext(ctx,
				`SELECT `+assetVersionColumns+` FROM asset_versions WHERE asset_pathid = ? ORDER BY version_0 DESC, version_1 DESC, version_2 DESC LIMIT 1`,
				p.AssetPathID)
		}
		a, err := scanAssetVersionRow(row)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return nil, wrapDBError("get_asset_version_datas", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// GetAssetVersionDatasFromPathIDs fetches many versions by path id at once;
// missing ids are silently dropped.
func (s *SQLite) GetAssetVersionDatasFromPathIDs(ctx context.Context, pathIDs []string) ([]pipelinepb.AssetVersionData, error) {
	if len(pathIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pathIDs)), ",")
	args := make([]any, len(pathIDs))
	for i, id := range pathIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM asset_versions WHERE pathid IN (%s)`, assetVersionColumns, placeholders),
		args...)
	if err != nil {
		return nil, wrapDBError("get_asset_version_datas_from_path_id", err)
	}
	defer rows.Close()

	var out []pipelinepb.AssetVersionData
	for rows.Next() {
		a, err := scanAssetVersionRow(rows)
		if err != nil {
			return nil, wrapDBError("get_asset_version_datas_from_path_id", err)
		}
		out = append(out, a)
	}
	return out, wrapDBError("get_asset_version_datas_from_path_id", rows.Err())
}

// GetLeafAssetVersionPathIDs returns every version with no incoming
// dependency edges (i.e. nothing depends on it).
func (s *SQLite) GetLeafAssetVersionPathIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pathid FROM asset_versions
		WHERE pathid NOT IN (SELECT depends_on FROM asset_version_dependencies)`)
	if err != nil {
		return nil, wrapDBError("get_leaf_asset_version_pathids", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBError("get_leaf_asset_version_pathids", err)
		}
		out = append(out, id)
	}
	return out, wrapDBError("get_leaf_asset_version_pathids", rows.Err())
}
