package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/future"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/version"
)

// ScheduleDataComputation implements the §4.4.1 state machine. Concurrent
// calls for the same pathID are collapsed by the in-process singleflight
// group before they ever contend for BEGIN IMMEDIATE; the transaction below
// is still what makes "exactly one wins" correct across processes.
func (s *SQLite) ScheduleDataComputation(ctx context.Context, pathID string) (future.Future, error) {
	if s.scheduleCount != nil {
		s.scheduleCount.Add(ctx, 1)
	}

	v, err, _ := s.schedule.Do(pathID, func() (any, error) {
		var result future.Future
		txErr := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
			var (
				assetPathID string
				v0, v1, v2  int
				paramsJSON  string
				produced    int
				calcID      sql.NullString
			)
			err := conn.QueryRowContext(ctx, `
				SELECT asset_pathid, version_0, version_1, version_2, data_task_attr, data_produced, data_calculator_id
				FROM asset_versions WHERE pathid = ?`, pathID).
				Scan(&assetPathID, &v0, &v1, &v2, &paramsJSON, &produced, &calcID)
			if err == sql.ErrNoRows {
				return fmt.Errorf("%s: %w", pathID, pipelinepb.ErrNotFound)
			}
			if err != nil {
				return err
			}

			if produced == dataIsComputing {
				if !calcID.Valid || calcID.String == "" {
					return fmt.Errorf("row %s is IS_COMPUTING with no calculator id: %w", pathID, pipelinepb.ErrConflict)
				}
				f, ferr := s.scheduler.GetScheduleEventFuture(ctx, calcID.String)
				if ferr != nil {
					return ferr
				}
				result = f
				return nil
			}

			var params pipelinepb.GenerationTaskParameters
			if err := json.Unmarshal([]byte(paramsJSON), &params); err != nil {
				return fmt.Errorf("unmarshal params for %s: %w", pathID, err)
			}
			triple := version.Triple{v0, v1, v2}

			versionData := pipelinepb.AssetVersionData{
				PathID:             pathID,
				AssetPathID:        assetPathID,
				VersionID:          triple,
				DataProducerParams: params,
				DataAvailability:   pipelinepb.DataAvailability(produced),
			}

			augmented := params.Clone()
			augmented.Attributes["asset_version_id"] = pathID
			augmented.Attributes["asset_id"] = assetPathID
			augmented.Attributes["version"] = triple.String()
			augmented.Attributes["locked_asset_versions"] = augmented.VersionLockMapping

			f, eventID, serr := s.scheduler.ScheduleDataGenerationTask(ctx, versionData, augmented)
			if serr != nil {
				return fmt.Errorf("%s: %w: %v", pathID, pipelinepb.ErrSchedulerUnavailable, serr)
			}

			if _, err := conn.ExecContext(ctx,
				`UPDATE asset_versions SET data_produced = ?, data_calculator_id = ? WHERE pathid = ?`,
				dataIsComputing, eventID, pathID); err != nil {
				return err
			}
			result = f
			return nil
		})
		if txErr != nil {
			return nil, txErr
		}
		return result, nil
	})
	if err != nil {
		return nil, wrapDBError("schedule_data_computation", err)
	}
	s.log.Info("scheduled data computation", "path_id", pathID)
	return v.(future.Future), nil
}

// OnDataComputationCompleted implements the §4.4.1 completion transition.
func (s *SQLite) OnDataComputationCompleted(ctx context.Context, pathID string, data map[string]any) error {
	err := withImmediateTx(ctx, s.db, func(conn *sql.Conn) error {
		var produced int
		err := conn.QueryRowContext(ctx,
			`SELECT data_produced FROM asset_versions WHERE pathid = ?`, pathID).Scan(&produced)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%s: %w", pathID, pipelinepb.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if produced != dataIsComputing {
			return fmt.Errorf("completion for %s while not IS_COMPUTING: %w", pathID, pipelinepb.ErrConflict)
		}

		dataJSON, err := json.Marshal(data)
		if err != nil {
			return err
		}
		_, err = conn.ExecContext(ctx,
			`UPDATE asset_versions SET data_produced = ?, data_calculator_id = NULL, data = ? WHERE pathid = ?`,
			dataAvailable, string(dataJSON), pathID)
		return err
	})
	if err != nil {
		return wrapDBError("on_data_computation_completed", err)
	}
	s.log.Info("data computation completed", "path_id", pathID)
	return nil
}

// DataComputationCompletedCallback implements scheduler.CompletionReceiver,
// so the Store can be registered directly with a Scheduler backend at
// startup, per §4.5.
func (s *SQLite) DataComputationCompletedCallback(ctx context.Context, pathID string, data map[string]any) error {
	return s.OnDataComputationCompleted(ctx, pathID, data)
}
