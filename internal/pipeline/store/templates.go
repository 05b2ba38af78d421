package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

// CreateAssetTemplate upserts the template row (INSERT OR REPLACE on
// asset_path_id) and inserts its trigger/fixed-dependency edges uniquely.
func (s *SQLite) CreateAssetTemplate(ctx context.Context, tmpl pipelinepb.AssetTemplateData) (pipelinepb.AssetTemplateData, error) {
	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		paramsJSON, err := json.Marshal(tmpl.DataProducerParams)
		if err != nil {
			return err
		}
		if _, err := conn.ExecContext(ctx,
			`INSERT OR REPLACE INTO asset_templates(asset_path_id, data_task_attr) VALUES (?, ?)`,
			tmpl.AssetPathID, string(paramsJSON)); err != nil {
			return err
		}
		for _, trigger := range tmpl.TriggerInputs {
			if _, err := conn.ExecContext(ctx,
				`INSERT OR IGNORE INTO asset_template_trigger_inputs(asset_path_id, depends_on) VALUES (?, ?)`,
				tmpl.AssetPathID, trigger); err != nil {
				return err
			}
		}
		for _, dep := range tmpl.FixedDependencies {
			if _, err := conn.ExecContext(ctx,
				`INSERT OR IGNORE INTO asset_template_version_inputs(asset_path_id, depends_on) VALUES (?, ?)`,
				tmpl.AssetPathID, dep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return pipelinepb.AssetTemplateData{}, wrapDBError("create_asset_template", err)
	}
	s.log.Info("created asset template", "asset_path_id", tmpl.AssetPathID)
	return tmpl, nil
}

// UpdateAssetTemplateData updates only data_task_attr, leaving trigger and
// fixed-dependency edges untouched.
func (s *SQLite) UpdateAssetTemplateData(ctx context.Context, assetPathID string, params pipelinepb.GenerationTaskParameters) error {
	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		paramsJSON, err := json.Marshal(params)
		if err != nil {
			return err
		}
		res, err := conn.ExecContext(ctx,
			`UPDATE asset_templates SET data_task_attr = ? WHERE asset_path_id = ?`,
			string(paramsJSON), assetPathID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	return wrapDBError("update_asset_template_data", err)
}

func (s *SQLite) GetAssetTemplate(ctx context.Context, assetPathID string) (pipelinepb.AssetTemplateData, error) {
	var paramsJSON string
	if err := s.db.QueryRowContext(ctx,
		`SELECT data_task_attr FROM asset_templates WHERE asset_path_id = ?`, assetPathID,
	).Scan(&paramsJSON); err != nil {
		return pipelinepb.AssetTemplateData{}, wrapDBError("get_asset_template", err)
	}

	tmpl := pipelinepb.AssetTemplateData{AssetPathID: assetPathID}
	if err := json.Unmarshal([]byte(paramsJSON), &tmpl.DataProducerParams); err != nil {
		return pipelinepb.AssetTemplateData{}, wrapDBError("get_asset_template", err)
	}

	triggers, err := s.queryEdgeColumn(ctx,
		`SELECT depends_on FROM asset_template_trigger_inputs WHERE asset_path_id = ?`, assetPathID, "get_asset_template")
	if err != nil {
		return pipelinepb.AssetTemplateData{}, err
	}
	tmpl.TriggerInputs = triggers

	fixed, err := s.GetTemplateFixedDependencies(ctx, assetPathID)
	if err != nil {
		return pipelinepb.AssetTemplateData{}, err
	}
	tmpl.FixedDependencies = fixed
	return tmpl, nil
}

// GetAssetTemplatesTriggeredBy joins asset_template_trigger_inputs against
// asset_templates to find every template that fires when assetPathID
// publishes a new version.
func (s *SQLite) GetAssetTemplatesTriggeredBy(ctx context.Context, assetPathID string) ([]pipelinepb.AssetTemplateData, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.asset_path_id
		FROM asset_template_trigger_inputs ti
		JOIN asset_templates t ON t.asset_path_id = ti.asset_path_id
		WHERE ti.depends_on = ?`, assetPathID)
	if err != nil {
		return nil, wrapDBError("get_asset_templates_triggered_by", err)
	}
	var targetIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, wrapDBError("get_asset_templates_triggered_by", err)
		}
		targetIDs = append(targetIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, wrapDBError("get_asset_templates_triggered_by", err)
	}
	rows.Close()

	out := make([]pipelinepb.AssetTemplateData, 0, len(targetIDs))
	for _, id := range targetIDs {
		tmpl, err := s.GetAssetTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

func (s *SQLite) GetTemplateFixedDependencies(ctx context.Context, assetPathID string) ([]string, error) {
	return s.queryEdgeColumn(ctx,
		`SELECT depends_on FROM asset_template_version_inputs WHERE asset_path_id = ?`, assetPathID, "get_template_fixed_dependencies")
}
