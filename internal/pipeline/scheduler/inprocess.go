package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/future"
	"github.com/pedohorse/dldo-asset-pipeline/internal/pipeline/pipelinepb"
)

// Compute actually produces a version's payload. InProcess is a stand-in
// for an external compute backend; Compute is where a real implementation
// would plug in a renderer, a cache warmer, or similar.
type Compute func(ctx context.Context, versionData pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (map[string]any, error)

// InProcess runs Compute in a goroutine per scheduled job and fans out
// completion to registered receivers.
type InProcess struct {
	compute Compute
	log     *slog.Logger

	mu        sync.Mutex
	jobs      map[string]*job
	receivers []CompletionReceiver

	jobDuration metric.Float64Histogram
}

type job struct {
	mu   sync.Mutex
	done bool
	data map[string]any
	err  error
}

func (j *job) isDone() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.done
}

func (j *job) result() any {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.data
}

func (j *job) finish(data map[string]any, err error) {
	j.mu.Lock()
	j.done = true
	j.data = data
	j.err = err
	j.mu.Unlock()
}

// New builds an in-process scheduler backend. meter may be nil, in which
// case no job-duration metric is recorded.
func New(compute Compute, log *slog.Logger, meter metric.Meter) *InProcess {
	if log == nil {
		log = slog.Default()
	}
	s := &InProcess{
		compute: compute,
		log:     log,
		jobs:    make(map[string]*job),
	}
	if meter != nil {
		h, err := meter.Float64Histogram("pipeline.scheduler.job_duration_seconds",
			metric.WithDescription("duration of in-process compute jobs"))
		if err == nil {
			s.jobDuration = h
		}
	}
	return s
}

func (s *InProcess) ScheduleDataGenerationTask(ctx context.Context, versionData pipelinepb.AssetVersionData, params pipelinepb.GenerationTaskParameters) (future.Future, string, error) {
	eventID := uuid.NewString()
	j := &job{}

	s.mu.Lock()
	s.jobs[eventID] = j
	receivers := append([]CompletionReceiver(nil), s.receivers...)
	s.mu.Unlock()

	s.log.Info("scheduling data generation task", "path_id", versionData.PathID, "event_id", eventID)

	go func() {
		start := time.Now()
		data, err := s.compute(context.Background(), versionData, params)
		if s.jobDuration != nil {
			s.jobDuration.Record(context.Background(), time.Since(start).Seconds())
		}
		if err != nil {
			s.log.Error("compute job failed", "path_id", versionData.PathID, "event_id", eventID, "err", err)
			j.finish(data, err)
			return
		}
		for _, rcv := range receivers {
			if cbErr := rcv.DataComputationCompletedCallback(context.Background(), versionData.PathID, data); cbErr != nil {
				s.log.Error("completion callback failed", "path_id", versionData.PathID, "err", cbErr)
			}
		}
		// Marked done only after the receivers ran, so a caller woken by the
		// future already sees the version's row as AVAILABLE.
		j.finish(data, nil)
	}()

	f := future.NewPolling(j.isDone, j.result, 20*time.Millisecond)
	return f, eventID, nil
}

func (s *InProcess) GetScheduleEventFuture(ctx context.Context, eventID string) (future.Future, error) {
	s.mu.Lock()
	j, ok := s.jobs[eventID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("scheduler: event %s: %w", eventID, pipelinepb.ErrNotFound)
	}
	return future.NewPolling(j.isDone, j.result, 20*time.Millisecond), nil
}

func (s *InProcess) AddTaskCompletionCallbackReceiver(rcv CompletionReceiver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receivers = append(s.receivers, rcv)
}

var _ Scheduler = (*InProcess)(nil)
