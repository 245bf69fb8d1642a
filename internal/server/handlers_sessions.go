package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/content-agent/internal/server/middleware"
	"github.com/jonathan/content-agent/internal/sessions"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

// ownedSession loads id and checks the caller owns it. Sessions of other
// users are reported as missing.
func (s *Server) ownedSession(w http.ResponseWriter, r *http.Request, id string) (*sessions.Session, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, s.log, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	session, err := s.sessions.GetSession(r.Context(), id)
	if err != nil {
		s.errorResponse(w, err)
		return nil, false
	}
	if session == nil || session.UserID != userID.String() {
		s.errorResponse(w, &sessions.NotFoundError{ID: id})
		return nil, false
	}
	return session, true
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, s.log, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := defaultSessionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, s.log, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSessionLimit)
	}

	list, err := s.sessions.ListSessions(r.Context(), "", userID.String(), limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if list == nil {
		list = []sessions.Session{}
	}
	writeJSON(w, s.log, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}

type sessionDetail struct {
	*sessions.Session
	Messages []sessions.Message    `json:"messages"`
	State    []sessions.StateEntry `json:"state"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.ownedSession(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	messages, err := s.sessions.ListMessages(r.Context(), session.ID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	state, err := s.sessions.ListState(r.Context(), session.ID, r.URL.Query().Get("run_id"))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if messages == nil {
		messages = []sessions.Message{}
	}
	if state == nil {
		state = []sessions.StateEntry{}
	}
	writeJSON(w, s.log, http.StatusOK, sessionDetail{Session: session, Messages: messages, State: state})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.ownedSession(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	if err := s.sessions.DeleteSession(r.Context(), session.ID); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
