package db

import (
	"context"
	"time"

	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/pipeline"
)

// StageRunWriter is the subset of DB a StageRecorder writes through.
type StageRunWriter interface {
	CreateStageRun(ctx context.Context, runID string, input *StageRunInput) (*StageRun, error)
	UpdateStageRunStatus(ctx context.Context, runID, stage string, update StageRunUpdate) error
	SkipPendingStageRuns(ctx context.Context, runID string) (int64, error)
}

// recordTimeout bounds each write made from an observer callback.
const recordTimeout = 5 * time.Second

// StageRecorder is a pipeline.Observer that persists stage status for one
// run. Write failures are logged and never interrupt the pipeline.
type StageRecorder struct {
	store     StageRunWriter
	runID     string
	sessionID string
	log       *logger.Logger
}

var _ pipeline.Observer = (*StageRecorder)(nil)

// NewStageRecorder creates a recorder for runID.
func NewStageRecorder(store StageRunWriter, runID, sessionID string, log *logger.Logger) *StageRecorder {
	if log == nil {
		log = logger.Nop()
	}
	return &StageRecorder{store: store, runID: runID, sessionID: sessionID, log: log.With("run_id", runID)}
}

// Plan records every stage as pending before the run starts.
func (r *StageRecorder) Plan(ctx context.Context, stages []pipeline.Stage) error {
	for i, s := range stages {
		if _, err := r.store.CreateStageRun(ctx, r.runID, &StageRunInput{
			SessionID: r.sessionID,
			Position:  i,
			Stage:     s.Name,
			Category:  s.Category,
			OutputKey: s.OutputKey,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *StageRecorder) update(stage string, u StageRunUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.store.UpdateStageRunStatus(ctx, r.runID, stage, u); err != nil {
		r.log.Warn("failed to record stage status", "stage", stage, "status", u.Status, "error", err)
	}
}

// StageStarted implements pipeline.Observer.
func (r *StageRecorder) StageStarted(e pipeline.StageEvent) {
	r.update(e.Stage, StageRunUpdate{Status: StageStatusInProgress})
}

// StageCompleted implements pipeline.Observer.
func (r *StageRecorder) StageCompleted(e pipeline.StageEvent) {
	r.update(e.Stage, StageRunUpdate{
		Status:      StageStatusCompleted,
		ToolCalls:   len(e.ToolCalls),
		OutputChars: len(e.Output),
	})
}

// StageFailed implements pipeline.Observer. Stages that never started are
// marked skipped.
func (r *StageRecorder) StageFailed(e pipeline.StageEvent) {
	var msg *string
	if e.Err != nil {
		s := e.Err.Error()
		msg = &s
	}
	r.update(e.Stage, StageRunUpdate{Status: StageStatusFailed, ErrorMessage: msg})

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if n, err := r.store.SkipPendingStageRuns(ctx, r.runID); err != nil {
		r.log.Warn("failed to skip pending stages", "error", err)
	} else if n > 0 {
		r.log.Debug("skipped pending stages", "count", n)
	}
}
