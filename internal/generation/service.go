// Package generation runs the content pipeline end to end: it resolves the
// session, builds the user message from the profile, runs every stage and
// stores the results.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/llm"
	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/pipeline/steps"
	"github.com/jonathan/content-agent/internal/profile"
	"github.com/jonathan/content-agent/internal/sessions"
	"github.com/jonathan/content-agent/internal/tools"
	"github.com/jonathan/content-agent/internal/types"
)

// Config wires a Service.
type Config struct {
	Oracle   llm.Oracle
	Tools    *tools.Registry
	Sessions sessions.Store
	Profile  *profile.UserProfile
	Logger   *logger.Logger
	// Stages overrides the content pipeline, mainly for tests.
	Stages []pipeline.Stage
	// AppName scopes created sessions; defaults to sessions.DefaultAppName.
	AppName string
}

// Service runs generation requests.
type Service struct {
	oracle  llm.Oracle
	tools   *tools.Registry
	store   sessions.Store
	profile *profile.UserProfile
	log     *logger.Logger
	stages  []pipeline.Stage
	appName string
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Oracle == nil {
		return nil, fmt.Errorf("oracle is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	s := &Service{
		oracle:  cfg.Oracle,
		tools:   cfg.Tools,
		store:   cfg.Sessions,
		profile: cfg.Profile,
		log:     cfg.Logger,
		stages:  cfg.Stages,
		appName: cfg.AppName,
	}
	if s.profile == nil {
		s.profile = profile.Default()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.stages == nil {
		s.stages = steps.ContentStages()
	}
	if s.appName == "" {
		s.appName = sessions.DefaultAppName
	}
	return s, nil
}

// Stages returns the pipeline stages a run executes.
func (s *Service) Stages() []pipeline.Stage {
	return s.stages
}

// Options describe one run.
type Options struct {
	Topic     string
	Platforms []string
	Tone      string
	Audience  string
	// SessionID resumes an existing session when set.
	SessionID string
	// UserID owns a newly created session; defaults to the profile name.
	UserID string
	// OutputDir receives content_<topic>.txt when set.
	OutputDir  string
	OnProgress pipeline.ProgressCallback
	// Observers receive stage events alongside OnProgress.
	Observers []pipeline.Observer
	// RunID is generated when empty.
	RunID string
}

// FromRequest converts an API request to run options.
func FromRequest(req *types.GenerateRequest) Options {
	return Options{
		Topic:     req.Topic,
		Platforms: req.Platforms,
		Tone:      req.Tone,
		Audience:  req.TargetAudience,
		SessionID: req.SessionID,
	}
}

// Run executes the pipeline for opts. When a stage fails the completed
// outputs are still saved to the session state and the error is returned.
func (s *Service) Run(ctx context.Context, opts Options) (*types.GenerateResponse, error) {
	topic := strings.TrimSpace(opts.Topic)
	if topic == "" {
		return nil, pipeline.ErrEmptyTopic
	}

	session, history, err := s.resolveSession(ctx, opts)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := s.log.With("session_id", session.ID, "run_id", runID)

	message := BuildUserMessage(topic, opts.Platforms, opts.Tone, opts.Audience, s.profile)
	if err := s.store.AppendMessage(ctx, session.ID, sessions.Message{Role: sessions.RoleUser, Content: message}); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}
	conversation := append(toConversation(history), llm.Message{Role: llm.RoleUser, Text: message})

	pipeOpts := []pipeline.Option{pipeline.WithTools(s.tools), pipeline.WithLogger(log)}
	if opts.OnProgress != nil {
		pipeOpts = append(pipeOpts, pipeline.WithObserver(pipeline.ProgressObserver(runID, opts.OnProgress)))
	}
	for _, obs := range opts.Observers {
		pipeOpts = append(pipeOpts, pipeline.WithObserver(obs))
	}
	orch, err := pipeline.New(s.stages, s.oracle, pipeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	log.Info("run started", "topic", topic, "resumed", len(history) > 0)
	result, runErr := orch.RunConversation(ctx, topic, nil, conversation)

	if result != nil {
		state := sessions.NewStateMap(s.store, session.ID, runID)
		for _, key := range result.Context.Keys() {
			v, _ := result.Context.Get(key)
			// The run may already be cancelled; state must still be saved.
			if err := state.Set(context.WithoutCancel(ctx), key, v); err != nil {
				return nil, fmt.Errorf("failed to save run state: %w", err)
			}
		}
	}
	if runErr != nil {
		log.Error("run failed", "error", runErr)
		return nil, runErr
	}

	if err := s.store.AppendMessage(ctx, session.ID, sessions.Message{Role: sessions.RoleModel, Content: result.Final}); err != nil {
		return nil, fmt.Errorf("failed to save final content: %w", err)
	}

	resp := &types.GenerateResponse{
		SessionID:    session.ID,
		RunID:        runID,
		FinalContent: result.Final,
		Outputs:      result.Context.Snapshot(),
		Order:        result.Context.Keys(),
	}
	if opts.OutputDir != "" {
		path, err := WriteOutput(opts.OutputDir, topic, result.Final)
		if err != nil {
			return nil, err
		}
		resp.OutputFile = path
	}
	log.Info("run completed", "stages", len(result.Stages))
	return resp, nil
}

func (s *Service) resolveSession(ctx context.Context, opts Options) (*sessions.Session, []sessions.Message, error) {
	if opts.SessionID != "" {
		session, err := s.store.GetSession(ctx, opts.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil {
			return nil, nil, &sessions.NotFoundError{ID: opts.SessionID}
		}
		history, err := s.store.ListMessages(ctx, session.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load session messages: %w", err)
		}
		return session, history, nil
	}

	userID := opts.UserID
	if userID == "" {
		userID = s.profile.Name
	}
	session := &sessions.Session{ID: uuid.NewString(), AppName: s.appName, UserID: userID}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil, nil
}

func toConversation(history []sessions.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == sessions.RoleModel {
			role = llm.RoleModel
		}
		out = append(out, llm.Message{Role: role, Text: m.Content})
	}
	return out
}

// IsNotFound reports whether err refers to a missing session.
func IsNotFound(err error) bool {
	return errors.Is(err, sessions.ErrSessionNotFound)
}
