package pipeline_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/pipeline/steps"
	"github.com/jonathan/content-agent/internal/tools"
	"github.com/jonathan/content-agent/internal/types"
)

type noSearch struct{}

func (noSearch) Name() string { return "none" }

func (noSearch) Search(context.Context, string, int) ([]types.Paper, error) { return nil, nil }

func testRegistry() *tools.Registry {
	return tools.NewDefaultRegistry(noSearch{}, tools.DefaultDefaults())
}

// stubOracle answers every stage with the length of its rendered instruction.
type stubOracle struct {
	mu       sync.Mutex
	requests []llm.Request
	failAt   string
	failErr  error
	onCall   func(req llm.Request)
}

func (s *stubOracle) Respond(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.onCall != nil {
		s.onCall(req)
	}
	if req.Stage == s.failAt {
		return nil, s.failErr
	}
	return &llm.Response{Text: strconv.Itoa(len(req.Instruction))}, nil
}

type recordingObserver struct {
	events []string
}

func (r *recordingObserver) StageStarted(e pipeline.StageEvent) {
	r.events = append(r.events, "start:"+e.Stage)
}

func (r *recordingObserver) StageCompleted(e pipeline.StageEvent) {
	r.events = append(r.events, "done:"+e.Stage)
}

func (r *recordingObserver) StageFailed(e pipeline.StageEvent) {
	r.events = append(r.events, "fail:"+e.Stage)
}

func TestRun_FederatedLearning(t *testing.T) {
	oracle := &stubOracle{}
	o, err := pipeline.New(steps.ContentStages(), oracle, pipeline.WithTools(testRegistry()))
	require.NoError(t, err)

	res, err := o.Run(context.Background(), "Federated Learning", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"research_findings", "content_strategy", "generated_content", "optimized_linkedin", "final_content",
	}, res.Context.Keys())
	final, ok := res.Context.Get("final_content")
	require.True(t, ok)
	assert.Equal(t, final, res.Final)
	assert.Len(t, res.Stages, 5)

	require.Len(t, oracle.requests, 5)
	first := oracle.requests[0]
	assert.Equal(t, steps.Research, first.Stage)
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Text: "Federated Learning"}}, first.Conversation)
	assert.Len(t, first.Tools, 2)

	research, _ := res.Context.Get("research_findings")
	assert.Contains(t, oracle.requests[1].Instruction, research)
	assert.NotContains(t, oracle.requests[4].Instruction, "{optimized_linkedin}")
}

func TestRun_StageFailure(t *testing.T) {
	boom := errors.New("quota exhausted")
	oracle := &stubOracle{failAt: steps.ContentGenerator, failErr: boom}
	obs := &recordingObserver{}
	o, err := pipeline.New(steps.ContentStages(), oracle, pipeline.WithTools(testRegistry()), pipeline.WithObserver(obs))
	require.NoError(t, err)

	res, err := o.Run(context.Background(), "Federated Learning", nil)
	require.Error(t, err)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, steps.ContentGenerator, stageErr.Stage)
	assert.Equal(t, 2, stageErr.Index)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "stage ContentGeneratorAgent failed: quota exhausted", err.Error())

	assert.Equal(t, 2, res.Context.Len())
	assert.Empty(t, res.Final)
	assert.Len(t, oracle.requests, 3)
	assert.Equal(t, []string{
		"start:ResearchAgent", "done:ResearchAgent",
		"start:StrategyAgent", "done:StrategyAgent",
		"start:ContentGeneratorAgent", "fail:ContentGeneratorAgent",
	}, obs.events)
}

func TestRun_CancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	oracle := &stubOracle{onCall: func(req llm.Request) {
		if req.Stage == steps.Strategy {
			cancel()
		}
	}}
	o, err := pipeline.New(steps.ContentStages(), oracle, pipeline.WithTools(testRegistry()))
	require.NoError(t, err)

	res, err := o.Run(ctx, "Federated Learning", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, pipeline.IsCancelled(err))
	assert.Empty(t, res.Final)
	assert.Equal(t, []string{"research_findings"}, res.Context.Keys())
	assert.Len(t, oracle.requests, 2)
}

func TestRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	oracle := &stubOracle{}
	o, err := pipeline.New(steps.ContentStages(), oracle, pipeline.WithTools(testRegistry()))
	require.NoError(t, err)

	_, err = o.Run(ctx, "topic", nil)
	assert.ErrorIs(t, err, pipeline.ErrCancelled)
	assert.Empty(t, oracle.requests)
}

func TestRun_EmptyTopic(t *testing.T) {
	o, err := pipeline.New(steps.ContentStages(), &stubOracle{}, pipeline.WithTools(testRegistry()))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, pipeline.ErrEmptyTopic)
}

func TestRun_EmptyFinalReturnsSentinel(t *testing.T) {
	stages := []pipeline.Stage{
		{Name: "A", Instruction: "write", OutputKey: "a"},
		{Name: "B", Inputs: []string{"a"}, Instruction: "use {a}", OutputKey: "b"},
	}
	oracle := llm.OracleFunc(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		if req.Stage == "B" {
			return &llm.Response{Text: "  "}, nil
		}
		return &llm.Response{Text: "x"}, nil
	})

	o, err := pipeline.New(stages, oracle)
	require.NoError(t, err)
	res, err := o.Run(context.Background(), "topic", nil)
	require.NoError(t, err)
	assert.Equal(t, pipeline.NoContentSentinel, res.Final)

	o, err = pipeline.New(stages, oracle, pipeline.WithSentinel("nothing"))
	require.NoError(t, err)
	res, err = o.Run(context.Background(), "topic", nil)
	require.NoError(t, err)
	assert.Equal(t, "nothing", res.Final)
}

func TestRun_FinalValuePreferred(t *testing.T) {
	stages := []pipeline.Stage{{Name: "A", Instruction: "write", OutputKey: "a"}}
	oracle := llm.OracleFunc(func(context.Context, llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "chatter", FinalValue: "explicit"}, nil
	})

	o, err := pipeline.New(stages, oracle)
	require.NoError(t, err)
	res, err := o.Run(context.Background(), "topic", nil)
	require.NoError(t, err)
	assert.Equal(t, "explicit", res.Final)
}

func TestRun_SeedKeys(t *testing.T) {
	stages := []pipeline.Stage{
		{Name: "A", Inputs: []string{"profile"}, Instruction: "for {profile}", OutputKey: "a"},
	}
	var got string
	oracle := llm.OracleFunc(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		got = req.Instruction
		return &llm.Response{Text: "ok"}, nil
	})

	_, err := pipeline.New(stages, oracle)
	var missing *pipeline.MissingContextKeyError
	require.ErrorAs(t, err, &missing)

	o, err := pipeline.New(stages, oracle, pipeline.WithSeedKeys("profile"))
	require.NoError(t, err)

	_, err = o.Run(context.Background(), "topic", map[string]string{})
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "profile", missing.Key)

	res, err := o.Run(context.Background(), "topic", map[string]string{"profile": "Ada", "extra": "1"})
	require.NoError(t, err)
	assert.Equal(t, "for Ada", got)
	assert.Equal(t, []string{"extra", "profile", "a"}, res.Context.Keys())

	_, err = o.Run(context.Background(), "topic", map[string]string{"profile": "Ada", "a": "clash"})
	var dup *pipeline.DuplicateOutputError
	assert.ErrorAs(t, err, &dup)
}

func TestRunConversation(t *testing.T) {
	stages := []pipeline.Stage{{Name: "A", Instruction: "write", OutputKey: "a"}}
	var conv []llm.Message
	oracle := llm.OracleFunc(func(_ context.Context, req llm.Request) (*llm.Response, error) {
		conv = req.Conversation
		return &llm.Response{Text: "ok"}, nil
	})
	o, err := pipeline.New(stages, oracle)
	require.NoError(t, err)

	history := []llm.Message{
		{Role: llm.RoleUser, Text: "first"},
		{Role: llm.RoleModel, Text: "reply"},
		{Role: llm.RoleUser, Text: "second"},
	}
	_, err = o.RunConversation(context.Background(), "topic", nil, history)
	require.NoError(t, err)
	assert.Equal(t, history, conv)
}

func TestNew_Validation(t *testing.T) {
	oracle := &stubOracle{}
	tests := []struct {
		name   string
		stages []pipeline.Stage
		opts   []pipeline.Option
		check  func(t *testing.T, err error)
	}{
		{
			name: "no stages",
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "pipeline has no stages")
			},
		},
		{
			name:   "missing name",
			stages: []pipeline.Stage{{OutputKey: "a"}},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "stage 1 has no name")
			},
		},
		{
			name:   "missing output key",
			stages: []pipeline.Stage{{Name: "A"}},
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "stage A has no output key")
			},
		},
		{
			name: "duplicate output keys",
			stages: []pipeline.Stage{
				{Name: "A", OutputKey: "x"},
				{Name: "B", OutputKey: "x"},
			},
			check: func(t *testing.T, err error) {
				var dup *pipeline.DuplicateOutputError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, "x", dup.Key)
				assert.Equal(t, []string{"A", "B"}, dup.Stages)
			},
		},
		{
			name: "input from a later stage",
			stages: []pipeline.Stage{
				{Name: "A", Inputs: []string{"b"}, OutputKey: "a"},
				{Name: "B", OutputKey: "b"},
			},
			check: func(t *testing.T, err error) {
				var missing *pipeline.MissingContextKeyError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "A", missing.Stage)
				assert.Equal(t, "b", missing.Key)
			},
		},
		{
			name:   "own output as input",
			stages: []pipeline.Stage{{Name: "A", Inputs: []string{"a"}, OutputKey: "a"}},
			check: func(t *testing.T, err error) {
				var missing *pipeline.MissingContextKeyError
				assert.ErrorAs(t, err, &missing)
			},
		},
		{
			name:   "undeclared placeholder",
			stages: []pipeline.Stage{{Name: "A", Instruction: "use {secret}", OutputKey: "a"}},
			check: func(t *testing.T, err error) {
				var missing *pipeline.MissingContextKeyError
				require.ErrorAs(t, err, &missing)
				assert.Equal(t, "secret", missing.Key)
			},
		},
		{
			name:   "tools without registry",
			stages: []pipeline.Stage{{Name: "A", Tools: []string{tools.SearchPapers}, OutputKey: "a"}},
			check: func(t *testing.T, err error) {
				var unknown *tools.UnknownToolError
				assert.ErrorAs(t, err, &unknown)
			},
		},
		{
			name:   "unknown tool",
			stages: []pipeline.Stage{{Name: "A", Tools: []string{"teleport"}, OutputKey: "a"}},
			opts:   []pipeline.Option{pipeline.WithTools(testRegistry())},
			check: func(t *testing.T, err error) {
				var unknown *tools.UnknownToolError
				require.ErrorAs(t, err, &unknown)
				assert.Equal(t, "teleport", unknown.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.New(tt.stages, oracle, tt.opts...)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	_, err := pipeline.New([]pipeline.Stage{{Name: "A", OutputKey: "a"}}, nil)
	assert.EqualError(t, err, "oracle is required")
}

func TestProgressObserver(t *testing.T) {
	var events []pipeline.ProgressEvent
	obs := pipeline.ProgressObserver("run-1", func(e pipeline.ProgressEvent) {
		events = append(events, e)
	})

	stages := []pipeline.Stage{{Name: "A", Category: "research", Instruction: "write", OutputKey: "a"}}
	o, err := pipeline.New(stages, &stubOracle{}, pipeline.WithObserver(obs))
	require.NoError(t, err)
	_, err = o.Run(context.Background(), "topic", nil)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, pipeline.EventStarted, events[0].Status)
	assert.Equal(t, "Step 1/1: A", events[0].Message)
	assert.Equal(t, pipeline.EventCompleted, events[1].Status)
	assert.Equal(t, "run-1", events[1].RunID)
	assert.Equal(t, "research", events[1].Category)
}
