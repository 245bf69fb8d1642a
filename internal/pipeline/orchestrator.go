// Package pipeline runs a fixed, ordered list of model stages. Each stage
// reads named outputs of earlier stages from a shared Context, asks the
// oracle for its own output and writes it under a new key.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/tools"
)

// seedSource names the initial context in duplicate-key errors.
const seedSource = "initial context"

// Orchestrator executes stages strictly in order. It is safe to call Run
// concurrently; every run owns its own Context.
type Orchestrator struct {
	stages     []Stage
	stageTools [][]tools.Tool
	oracle     llm.Oracle
	registry   *tools.Registry
	seedKeys   []string
	observers  []Observer
	sentinel   string
	log        *logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTools sets the registry stage tool names resolve against.
func WithTools(r *tools.Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithSeedKeys declares keys the caller provides in the initial context.
// Stages may read them and every run must supply them.
func WithSeedKeys(keys ...string) Option {
	return func(o *Orchestrator) { o.seedKeys = append(o.seedKeys, keys...) }
}

// WithObserver adds a stage observer. Observers are called synchronously.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithSentinel overrides the final output returned when the last stage is empty.
func WithSentinel(s string) Option {
	return func(o *Orchestrator) { o.sentinel = s }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// StageRecord describes one completed stage.
type StageRecord struct {
	Name      string         `json:"name"`
	OutputKey string         `json:"output_key"`
	Duration  time.Duration  `json:"duration"`
	ToolCalls []llm.ToolCall `json:"tool_calls,omitempty"`
}

// Result is the outcome of a run. On failure Final is empty and Context
// holds only the keys of stages that completed.
type Result struct {
	Final   string
	Context *Context
	Stages  []StageRecord
}

// New validates the stage list and builds an orchestrator.
func New(stages []Stage, oracle llm.Oracle, opts ...Option) (*Orchestrator, error) {
	if oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	o := &Orchestrator{
		stages:   append([]Stage(nil), stages...),
		oracle:   oracle,
		sentinel: NoContentSentinel,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Stages returns a copy of the stage list.
func (o *Orchestrator) Stages() []Stage {
	return append([]Stage(nil), o.stages...)
}

func (o *Orchestrator) validate() error {
	if len(o.stages) == 0 {
		return fmt.Errorf("pipeline has no stages")
	}

	writers := make(map[string]string)
	for _, k := range o.seedKeys {
		writers[k] = seedSource
	}

	o.stageTools = make([][]tools.Tool, len(o.stages))
	for i, s := range o.stages {
		if s.Name == "" {
			return fmt.Errorf("stage %d has no name", i+1)
		}
		if s.OutputKey == "" {
			return fmt.Errorf("stage %s has no output key", s.Name)
		}

		inputs := make(map[string]bool, len(s.Inputs))
		for _, key := range s.Inputs {
			if _, ok := writers[key]; !ok {
				return &MissingContextKeyError{Stage: s.Name, Key: key}
			}
			inputs[key] = true
		}
		for _, key := range s.Placeholders() {
			if !inputs[key] {
				return &MissingContextKeyError{Stage: s.Name, Key: key}
			}
		}

		if prev, ok := writers[s.OutputKey]; ok {
			return &DuplicateOutputError{Key: s.OutputKey, Stages: []string{prev, s.Name}}
		}
		writers[s.OutputKey] = s.Name

		if len(s.Tools) > 0 {
			if o.registry == nil {
				return &tools.UnknownToolError{Name: s.Tools[0]}
			}
			ts, err := o.registry.Select(s.Tools...)
			if err != nil {
				return fmt.Errorf("stage %s: %w", s.Name, err)
			}
			o.stageTools[i] = ts
		}
	}
	return nil
}

// Run executes every stage for topic. The topic is sent to the oracle as the
// user message.
func (o *Orchestrator) Run(ctx context.Context, topic string, initial map[string]string) (*Result, error) {
	return o.RunConversation(ctx, topic, initial, nil)
}

// RunConversation is Run with an explicit conversation, used when resuming a
// session. When conversation is empty the topic becomes the only user message.
func (o *Orchestrator) RunConversation(ctx context.Context, topic string, initial map[string]string, conversation []llm.Message) (*Result, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}
	for _, k := range o.seedKeys {
		if _, ok := initial[k]; !ok {
			return nil, &MissingContextKeyError{Key: k}
		}
	}
	for _, s := range o.stages {
		if _, ok := initial[s.OutputKey]; ok {
			return nil, &DuplicateOutputError{Key: s.OutputKey, Stages: []string{seedSource, s.Name}}
		}
	}

	state := NewContext()
	if err := state.seed(initial); err != nil {
		return nil, err
	}
	if len(conversation) == 0 {
		conversation = []llm.Message{{Role: llm.RoleUser, Text: topic}}
	}

	result := &Result{Context: state}
	total := len(o.stages)
	for i, s := range o.stages {
		if err := ctx.Err(); err != nil {
			return result, o.cancelled(i, s, err)
		}

		event := StageEvent{Index: i, Total: total, Stage: s.Name, Category: s.Category, OutputKey: s.OutputKey}
		o.notify(func(obs Observer) { obs.StageStarted(event) })
		o.log.Debug("stage started", "stage", s.Name, "index", i+1, "total", total)

		instruction, err := s.Render(state)
		if err != nil {
			return result, err
		}

		start := time.Now()
		resp, err := o.oracle.Respond(context.WithoutCancel(ctx), llm.Request{
			Stage:        s.Name,
			Instruction:  instruction,
			Tools:        o.stageTools[i],
			Conversation: conversation,
			Tier:         s.Tier,
		})
		event.Duration = time.Since(start)
		if err != nil {
			stageErr := &StageError{Stage: s.Name, Index: i, Err: err}
			event.Err = stageErr
			o.notify(func(obs Observer) { obs.StageFailed(event) })
			o.log.Error("stage failed", "stage", s.Name, "error", err)
			return result, stageErr
		}
		if err := ctx.Err(); err != nil {
			return result, o.cancelled(i, s, err)
		}

		var output string
		var calls []llm.ToolCall
		if resp != nil {
			output = resp.Value()
			calls = resp.ToolCalls
		}
		if err := state.Set(s.OutputKey, output); err != nil {
			return result, err
		}
		result.Stages = append(result.Stages, StageRecord{
			Name:      s.Name,
			OutputKey: s.OutputKey,
			Duration:  event.Duration,
			ToolCalls: calls,
		})

		event.Output = output
		event.ToolCalls = calls
		o.notify(func(obs Observer) { obs.StageCompleted(event) })
		o.log.Debug("stage completed", "stage", s.Name, "chars", len(output), "tool_calls", len(calls))
	}

	last := o.stages[total-1].OutputKey
	if v, ok := state.Get(last); ok && strings.TrimSpace(v) != "" {
		result.Final = v
	} else {
		result.Final = o.sentinel
	}
	return result, nil
}

func (o *Orchestrator) cancelled(i int, s Stage, cause error) error {
	err := &cancelledError{cause: cause}
	event := StageEvent{Index: i, Total: len(o.stages), Stage: s.Name, Category: s.Category, OutputKey: s.OutputKey, Err: err}
	o.notify(func(obs Observer) { obs.StageFailed(event) })
	o.log.Warn("run cancelled", "stage", s.Name)
	return err
}

func (o *Orchestrator) notify(fn func(Observer)) {
	for _, obs := range o.observers {
		fn(obs)
	}
}

// IsCancelled reports whether err is a cancelled run.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
