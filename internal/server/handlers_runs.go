package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/content-agent/internal/db"
	"github.com/jonathan/content-agent/internal/generation"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/server/middleware"
	"github.com/jonathan/content-agent/internal/sessions"
	"github.com/jonathan/content-agent/internal/types"
)

// prepareRun decodes the request, resolves the caller's session and plans
// stage records. It writes the error response itself and reports false on
// failure.
func (s *Server) prepareRun(w http.ResponseWriter, r *http.Request) (generation.Options, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, s.log, http.StatusUnauthorized, "unauthorized")
		return generation.Options{}, false
	}

	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, s.log, http.StatusBadRequest, "invalid request body")
		return generation.Options{}, false
	}
	if err := req.Validate(); err != nil {
		writeError(w, s.log, http.StatusBadRequest, extractValidationErrors(err))
		return generation.Options{}, false
	}

	opts := generation.FromRequest(&req)
	opts.UserID = userID.String()
	opts.OutputDir = s.cfg.OutputDir
	opts.RunID = uuid.NewString()

	ctx := r.Context()
	if opts.SessionID != "" {
		if _, ok := s.ownedSession(w, r, opts.SessionID); !ok {
			return generation.Options{}, false
		}
	} else {
		// Created here so stage records can reference the session.
		session := &sessions.Session{ID: uuid.NewString(), UserID: opts.UserID}
		if err := s.sessions.CreateSession(ctx, session); err != nil {
			s.errorResponse(w, err)
			return generation.Options{}, false
		}
		opts.SessionID = session.ID
	}

	if s.stageRuns != nil {
		rec := db.NewStageRecorder(s.stageRuns, opts.RunID, opts.SessionID, s.log)
		if err := rec.Plan(ctx, s.generator.Stages()); err != nil {
			s.log.Warn("failed to plan stage records", "run_id", opts.RunID, "error", err)
		} else {
			opts.Observers = append(opts.Observers, rec)
		}
	}
	return opts, true
}

// handleRun runs the pipeline and responds once it finishes.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.prepareRun(w, r)
	if !ok {
		return
	}
	resp, err := s.generator.Run(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, resp)
}

// handleRunStream runs the pipeline and streams stage events as SSE.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.prepareRun(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeError(w, s.log, http.StatusInternalServerError, err.Error())
		return
	}
	opts.OnProgress = func(e pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventProgress, e); err != nil {
			s.log.Debug("failed to write progress event", "run_id", opts.RunID, "error", err)
		}
	}

	resp, err := s.generator.Run(r.Context(), opts)
	if err != nil {
		msg := err.Error()
		if HTTPStatus(err) == http.StatusInternalServerError {
			s.log.Error("streamed run failed", "run_id", opts.RunID, "error", err)
			msg = "internal server error"
		}
		_ = sse.WriteEvent(EventError, map[string]string{"error": msg, "run_id": opts.RunID, "session_id": opts.SessionID})
		return
	}
	_ = sse.WriteComplete(resp)
}

// handleListStages returns the stage records of a run the caller owns.
func (s *Server) handleListStages(w http.ResponseWriter, r *http.Request) {
	if s.stageRuns == nil {
		writeError(w, s.log, http.StatusNotImplemented, "stage records are not enabled")
		return
	}
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, s.log, http.StatusUnauthorized, "unauthorized")
		return
	}

	runID := r.PathValue("run_id")
	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}
	runs, err := s.stageRuns.ListStageRuns(r.Context(), runID, status)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if len(runs) > 0 && runs[0].SessionID != nil {
		session, err := s.sessions.GetSession(r.Context(), *runs[0].SessionID)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		if session == nil || session.UserID != userID.String() {
			runs = nil
		}
	}
	if len(runs) == 0 {
		writeError(w, s.log, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, s.log, http.StatusOK, map[string]any{"run_id": runID, "stages": runs})
}
