// Package sessions persists conversations and per-run pipeline state so a
// run can be inspected or resumed later.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultAppName scopes sessions created by this application.
const DefaultAppName = "scientific-content-agent"

// DefaultUserID is used for local CLI sessions.
const DefaultUserID = "default_user"

// Message roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrSessionNotFound is returned when an operation targets a missing session.
var ErrSessionNotFound = errors.New("session not found")

// NotFoundError wraps ErrSessionNotFound with the session ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session '%s' not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrSessionNotFound
}

// Session is one conversation between a user and the pipeline.
type Session struct {
	ID           string    `json:"session_id"`
	AppName      string    `json:"app_name"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Message is one turn in a session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// StateEntry is one pipeline context value written during a run.
type StateEntry struct {
	SessionID string    `json:"session_id"`
	RunID     string    `json:"run_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists sessions, their messages and run state. GetSession returns
// nil, nil when the session does not exist.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	ListSessions(ctx context.Context, appName, userID string, limit int) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error

	AppendMessage(ctx context.Context, sessionID string, m Message) error
	ListMessages(ctx context.Context, sessionID string) ([]Message, error)

	SetState(ctx context.Context, sessionID, runID, key, value string) error
	GetState(ctx context.Context, sessionID, runID, key string) (string, bool, error)
	ListState(ctx context.Context, sessionID, runID string) ([]StateEntry, error)

	Close() error
}

func prepareSession(s *Session, now time.Time) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.AppName == "" {
		s.AppName = DefaultAppName
	}
	if s.UserID == "" {
		s.UserID = DefaultUserID
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = s.CreatedAt
	return nil
}
