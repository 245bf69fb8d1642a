package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Stage run statuses.
const (
	StageStatusPending    = "pending"
	StageStatusInProgress = "in_progress"
	StageStatusCompleted  = "completed"
	StageStatusFailed     = "failed"
	StageStatusSkipped    = "skipped"
)

// IsTerminal reports whether a stage in this status will not change again.
func IsTerminal(status string) bool {
	switch status {
	case StageStatusCompleted, StageStatusFailed, StageStatusSkipped:
		return true
	}
	return false
}

// StageRun is the persisted record of one stage of one pipeline run.
type StageRun struct {
	ID           uuid.UUID  `json:"id"`
	RunID        string     `json:"run_id"`
	SessionID    *string    `json:"session_id,omitempty"`
	Position     int        `json:"position"`
	Stage        string     `json:"stage"`
	Category     string     `json:"category"`
	OutputKey    string     `json:"output_key"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	DurationMs   *int       `json:"duration_ms,omitempty"`
	ToolCalls    int        `json:"tool_calls"`
	OutputChars  int        `json:"output_chars"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StageRunInput describes a stage run to create.
type StageRunInput struct {
	SessionID string
	Position  int
	Stage     string
	Category  string
	OutputKey string
	Status    string
}

// StageRunUpdate carries a status transition and what the stage produced.
type StageRunUpdate struct {
	Status       string
	ErrorMessage *string
	ToolCalls    int
	OutputChars  int
}

const stageRunColumns = `id, run_id, session_id, position, stage, category, output_key, status,
	started_at, completed_at, duration_ms, tool_calls, output_chars, error_message, created_at, updated_at`

func scanStageRun(row pgx.Row) (*StageRun, error) {
	var r StageRun
	err := row.Scan(&r.ID, &r.RunID, &r.SessionID, &r.Position, &r.Stage, &r.Category, &r.OutputKey, &r.Status,
		&r.StartedAt, &r.CompletedAt, &r.DurationMs, &r.ToolCalls, &r.OutputChars, &r.ErrorMessage,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateStageRun records a stage of a run. Status defaults to pending.
func (db *DB) CreateStageRun(ctx context.Context, runID string, input *StageRunInput) (*StageRun, error) {
	status := input.Status
	if status == "" {
		status = StageStatusPending
	}
	var sessionID *string
	if input.SessionID != "" {
		sessionID = &input.SessionID
	}

	r, err := scanStageRun(db.pool.QueryRow(ctx,
		`INSERT INTO stage_runs (run_id, session_id, position, stage, category, output_key, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+stageRunColumns,
		runID, sessionID, input.Position, input.Stage, input.Category, input.OutputKey, status))
	if err != nil {
		return nil, fmt.Errorf("failed to create stage run: %w", err)
	}
	return r, nil
}

// GetStageRun returns nil, nil when the stage was never recorded for the run.
func (db *DB) GetStageRun(ctx context.Context, runID, stage string) (*StageRun, error) {
	r, err := scanStageRun(db.pool.QueryRow(ctx,
		`SELECT `+stageRunColumns+` FROM stage_runs WHERE run_id = $1 AND stage = $2`, runID, stage))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage run: %w", err)
	}
	return r, nil
}

// ListStageRuns returns a run's stages in pipeline order, optionally
// filtered by status.
func (db *DB) ListStageRuns(ctx context.Context, runID string, status *string) ([]StageRun, error) {
	query := `SELECT ` + stageRunColumns + ` FROM stage_runs WHERE run_id = $1`
	args := []any{runID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY position"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage runs: %w", err)
	}
	defer rows.Close()

	var out []StageRun
	for rows.Next() {
		r, err := scanStageRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage run: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateStageRunStatus moves a stage to a new status. Entering in_progress
// stamps started_at; entering a terminal status stamps completed_at and, when
// the stage had started, its duration.
func (db *DB) UpdateStageRunStatus(ctx context.Context, runID, stage string, update StageRunUpdate) error {
	current, err := db.GetStageRun(ctx, runID, stage)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("stage run not found: %s", stage)
	}

	now := time.Now()
	var startedAt, completedAt *time.Time
	var durationMs *int
	if update.Status == StageStatusInProgress && current.StartedAt == nil {
		startedAt = &now
	}
	if IsTerminal(update.Status) {
		completedAt = &now
		if current.StartedAt != nil {
			d := int(now.Sub(*current.StartedAt).Milliseconds())
			durationMs = &d
		}
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE stage_runs
		 SET status = $1, started_at = COALESCE($2, started_at), completed_at = $3,
		     duration_ms = $4, error_message = $5, tool_calls = $6, output_chars = $7,
		     updated_at = NOW()
		 WHERE run_id = $8 AND stage = $9`,
		update.Status, startedAt, completedAt, durationMs, update.ErrorMessage,
		update.ToolCalls, update.OutputChars, runID, stage)
	if err != nil {
		return fmt.Errorf("failed to update stage run status: %w", err)
	}
	return nil
}

// SkipPendingStageRuns marks every still-pending stage of a run as skipped.
func (db *DB) SkipPendingStageRuns(ctx context.Context, runID string) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE stage_runs SET status = $1, completed_at = NOW(), updated_at = NOW()
		 WHERE run_id = $2 AND status = $3`,
		StageStatusSkipped, runID, StageStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to skip pending stage runs: %w", err)
	}
	return result.RowsAffected(), nil
}
