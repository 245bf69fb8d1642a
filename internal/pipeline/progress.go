package pipeline

import (
	"fmt"
	"time"

	"github.com/jonathan/content-agent/internal/llm"
)

// StageEvent describes a stage transition. Output and ToolCalls are set on
// completion, Err on failure.
type StageEvent struct {
	Index     int
	Total     int
	Stage     string
	Category  string
	OutputKey string
	Output    string
	Duration  time.Duration
	ToolCalls []llm.ToolCall
	Err       error
}

// Observer is notified as stages start and finish.
type Observer interface {
	StageStarted(e StageEvent)
	StageCompleted(e StageEvent)
	StageFailed(e StageEvent)
}

// Progress event kinds.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// ProgressEvent represents a progress update during pipeline execution.
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// ProgressObserver adapts a ProgressCallback to Observer. runID is copied
// into every event.
func ProgressObserver(runID string, cb ProgressCallback) Observer {
	return &progressObserver{runID: runID, cb: cb}
}

type progressObserver struct {
	runID string
	cb    ProgressCallback
}

func (p *progressObserver) emit(e StageEvent, status, message string, content any) {
	if p.cb == nil {
		return
	}
	p.cb(ProgressEvent{
		Step:     e.Stage,
		Category: e.Category,
		Status:   status,
		Message:  message,
		RunID:    p.runID,
		Content:  content,
	})
}

func (p *progressObserver) StageStarted(e StageEvent) {
	p.emit(e, EventStarted, fmt.Sprintf("Step %d/%d: %s", e.Index+1, e.Total, e.Stage), nil)
}

func (p *progressObserver) StageCompleted(e StageEvent) {
	p.emit(e, EventCompleted,
		fmt.Sprintf("%s wrote %s (%d chars, %d tool calls) in %s", e.Stage, e.OutputKey, len(e.Output), len(e.ToolCalls), e.Duration.Round(time.Millisecond)),
		map[string]any{"output_key": e.OutputKey, "output": e.Output})
}

func (p *progressObserver) StageFailed(e StageEvent) {
	p.emit(e, EventFailed, fmt.Sprintf("%s failed: %v", e.Stage, e.Err), nil)
}
