package sessions

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. It is used by tests and
// when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	nextID   int64
	sessions map[string]*Session
	messages map[string][]Message
	state    map[string][]StateEntry
	runs     []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
		state:    make(map[string][]StateEntry),
	}
}

// CreateSession implements Store.
func (m *MemoryStore) CreateSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := prepareSession(s, m.now().UTC()); err != nil {
		return err
	}
	if _, ok := m.sessions[s.ID]; ok {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

// GetSession implements Store.
func (m *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.MessageCount = len(m.messages[id])
	return &cp, nil
}

// ListSessions implements Store. Sessions are ordered by last update, newest first.
func (m *MemoryStore) ListSessions(_ context.Context, appName, userID string, limit int) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if appName != "" && s.AppName != appName {
			continue
		}
		if userID != "" && s.UserID != userID {
			continue
		}
		cp := *s
		cp.MessageCount = len(m.messages[s.ID])
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.sessions, id)
	delete(m.messages, id)
	runs := m.runs[:0]
	for _, k := range m.runs {
		if entries := m.state[k]; len(entries) > 0 && entries[0].SessionID == id {
			delete(m.state, k)
			continue
		}
		runs = append(runs, k)
	}
	m.runs = runs
	return nil
}

// AppendMessage implements Store.
func (m *MemoryStore) AppendMessage(_ context.Context, sessionID string, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return &NotFoundError{ID: sessionID}
	}
	now := m.now().UTC()
	m.nextID++
	msg.ID = m.nextID
	msg.SessionID = sessionID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	m.messages[sessionID] = append(m.messages[sessionID], msg)
	s.UpdatedAt = now
	return nil
}

// ListMessages implements Store.
func (m *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Message(nil), m.messages[sessionID]...), nil
}

// SetState implements Store. Setting an existing key replaces its value in place.
func (m *MemoryStore) SetState(_ context.Context, sessionID, runID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return &NotFoundError{ID: sessionID}
	}
	k := stateKey(sessionID, runID)
	for i, e := range m.state[k] {
		if e.Key == key {
			m.state[k][i].Value = value
			return nil
		}
	}
	if _, ok := m.state[k]; !ok {
		m.runs = append(m.runs, k)
	}
	m.state[k] = append(m.state[k], StateEntry{
		SessionID: sessionID,
		RunID:     runID,
		Key:       key,
		Value:     value,
		CreatedAt: m.now().UTC(),
	})
	return nil
}

// GetState implements Store.
func (m *MemoryStore) GetState(_ context.Context, sessionID, runID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.state[stateKey(sessionID, runID)] {
		if e.Key == key {
			return e.Value, true, nil
		}
	}
	return "", false, nil
}

// ListState implements Store. An empty runID lists every run of the session.
func (m *MemoryStore) ListState(_ context.Context, sessionID, runID string) ([]StateEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if runID != "" {
		return append([]StateEntry(nil), m.state[stateKey(sessionID, runID)]...), nil
	}
	var out []StateEntry
	for _, k := range m.runs {
		if entries := m.state[k]; len(entries) > 0 && entries[0].SessionID == sessionID {
			out = append(out, entries...)
		}
	}
	return out, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }

func stateKey(sessionID, runID string) string {
	return sessionID + "\x00" + runID
}
