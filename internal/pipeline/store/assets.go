package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

var nonWordRe = regexp.MustCompile(`\W`)

// slugify replaces each character matched by Go's \W (anything outside
// [0-9A-Za-z_], so non-ASCII letters too) with its own '_'; runs are not
// collapsed.
func slugify(name string) string {
	return nonWordRe.ReplaceAllString(name, "_")
}

func (s *SQLite) CreateNewAsset(ctx context.Context, typeName string, asset pipelinepb.AssetData) (pipelinepb.AssetData, error) {
	if asset.PathID == "" {
		asset.PathID = slugify(asset.Name)
	}
	asset.TypeName = typeName

	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO assets(pathid, name, description, type_name) VALUES (?, ?, ?, ?)`,
			asset.PathID, asset.Name, asset.Description, asset.TypeName)
		return err
	})
	if err != nil {
		return pipelinepb.AssetData{}, wrapDBError("create_new_asset", err)
	}
	s.log.Info("created asset", "path_id", asset.PathID, "type_name", typeName)
	return asset, nil
}

func (s *SQLite) GetAssetTypeName(ctx context.Context, pathID string) (string, error) {
	var typeName string
	err := s.db.QueryRowContext(ctx, `SELECT type_name FROM assets WHERE pathid = ?`, pathID).Scan(&typeName)
	if err != nil {
		return "", wrapDBError("get_asset_type_name", err)
	}
	return typeName, nil
}

func (s *SQLite) GetAssetData(ctx context.Context, pathID string) (pipelinepb.AssetData, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT pathid, name, description, type_name FROM assets WHERE pathid = ?`, pathID)
	var a pipelinepb.AssetData
	if err := row.Scan(&a.PathID, &a.Name, &a.Description, &a.TypeName); err != nil {
		return pipelinepb.AssetData{}, wrapDBError("get_asset_data", err)
	}
	return a, nil
}

// GetAssetDatas fetches many assets at once; missing ids are silently
// dropped from the result, per §4.4.
func (s *SQLite) GetAssetDatas(ctx context.Context, pathIDs []string) ([]pipelinepb.AssetData, error) {
	if len(pathIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(pathIDs)), ",")
	args := make([]any, len(pathIDs))
	for i, id := range pathIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT pathid, name, description, type_name FROM assets WHERE pathid IN (%s)`, placeholders),
		args...)
	if err != nil {
		return nil, wrapDBError("get_asset_datas", err)
	}
	defer rows.Close()

	var out []pipelinepb.AssetData
	for rows.Next() {
		var a pipelinepb.AssetData
		if err := rows.Scan(&a.PathID, &a.Name, &a.Description, &a.TypeName); err != nil {
			return nil, wrapDBError("get_asset_datas", err)
		}
		out = append(out, a)
	}
	return out, wrapDBError("get_asset_datas", rows.Err())
}
