package sessions

import "context"

// StateMap is the get/set-by-key view of one run's state inside a session.
type StateMap struct {
	store     Store
	sessionID string
	runID     string
}

// NewStateMap binds a StateMap to a session and run.
func NewStateMap(store Store, sessionID, runID string) *StateMap {
	return &StateMap{store: store, sessionID: sessionID, runID: runID}
}

// Set stores value under key.
func (m *StateMap) Set(ctx context.Context, key, value string) error {
	return m.store.SetState(ctx, m.sessionID, m.runID, key, value)
}

// Get returns the value under key.
func (m *StateMap) Get(ctx context.Context, key string) (string, bool, error) {
	return m.store.GetState(ctx, m.sessionID, m.runID, key)
}

// All returns the run's entries in the order they were first written.
func (m *StateMap) All(ctx context.Context) ([]StateEntry, error) {
	return m.store.ListState(ctx, m.sessionID, m.runID)
}

// RunID returns the bound run ID.
func (m *StateMap) RunID() string { return m.runID }
