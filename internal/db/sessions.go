package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jonathan/content-agent/internal/sessions"
)

// CreateSession implements sessions.Store.
func (db *DB) CreateSession(ctx context.Context, s *sessions.Session) error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.AppName == "" {
		s.AppName = sessions.DefaultAppName
	}
	if s.UserID == "" {
		s.UserID = sessions.DefaultUserID
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	s.UpdatedAt = s.CreatedAt

	_, err := db.pool.Exec(ctx,
		`INSERT INTO sessions (session_id, app_name, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		s.ID, s.AppName, s.UserID, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

const sessionColumns = `s.session_id, s.app_name, s.user_id, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM session_messages m WHERE m.session_id = s.session_id)`

func scanSession(row pgx.Row) (*sessions.Session, error) {
	var s sessions.Session
	if err := row.Scan(&s.ID, &s.AppName, &s.UserID, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession implements sessions.Store. Returns nil, nil when absent.
func (db *DB) GetSession(ctx context.Context, id string) (*sessions.Session, error) {
	s, err := scanSession(db.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions s WHERE s.session_id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// ListSessions implements sessions.Store, most recently updated first.
func (db *DB) ListSessions(ctx context.Context, appName, userID string, limit int) ([]sessions.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE 1=1`
	args := []any{}
	argNum := 1

	if appName != "" {
		query += fmt.Sprintf(" AND s.app_name = $%d", argNum)
		args = append(args, appName)
		argNum++
	}
	if userID != "" {
		query += fmt.Sprintf(" AND s.user_id = $%d", argNum)
		args = append(args, userID)
		argNum++
	}
	query += " ORDER BY s.updated_at DESC, s.session_id ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []sessions.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// DeleteSession implements sessions.Store. Messages, state and stage runs
// are removed by cascade.
func (db *DB) DeleteSession(ctx context.Context, id string) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &sessions.NotFoundError{ID: id}
	}
	return nil
}

// AppendMessage implements sessions.Store.
func (db *DB) AppendMessage(ctx context.Context, sessionID string, m sessions.Message) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE sessions SET updated_at = NOW() WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &sessions.NotFoundError{ID: sessionID}
	}

	var createdAt *time.Time
	if !m.CreatedAt.IsZero() {
		createdAt = &m.CreatedAt
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO session_messages (session_id, role, content, created_at)
		 VALUES ($1, $2, $3, COALESCE($4, NOW()))`,
		sessionID, m.Role, m.Content, createdAt); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return tx.Commit(ctx)
}

// ListMessages implements sessions.Store in insertion order.
func (db *DB) ListMessages(ctx context.Context, sessionID string) ([]sessions.Message, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM session_messages WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var out []sessions.Message
	for rows.Next() {
		var m sessions.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetState implements sessions.Store. An existing key is overwritten.
func (db *DB) SetState(ctx context.Context, sessionID, runID, key, value string) error {
	result, err := db.pool.Exec(ctx,
		`INSERT INTO session_state (session_id, run_id, key, value)
		 SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM sessions WHERE session_id = $1)
		 ON CONFLICT (session_id, run_id, key) DO UPDATE SET value = EXCLUDED.value`,
		sessionID, runID, key, value)
	if err != nil {
		return fmt.Errorf("failed to set state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return &sessions.NotFoundError{ID: sessionID}
	}
	return nil
}

// GetState implements sessions.Store.
func (db *DB) GetState(ctx context.Context, sessionID, runID, key string) (string, bool, error) {
	var value string
	err := db.pool.QueryRow(ctx,
		`SELECT value FROM session_state WHERE session_id = $1 AND run_id = $2 AND key = $3`,
		sessionID, runID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get state: %w", err)
	}
	return value, true, nil
}

// ListState implements sessions.Store. An empty runID lists every run.
func (db *DB) ListState(ctx context.Context, sessionID, runID string) ([]sessions.StateEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT session_id, run_id, key, value, created_at FROM session_state
		 WHERE session_id = $1 AND ($2 = '' OR run_id = $2)
		 ORDER BY id`, sessionID, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}
	defer rows.Close()

	var out []sessions.StateEntry
	for rows.Next() {
		var e sessions.StateEntry
		if err := rows.Scan(&e.SessionID, &e.RunID, &e.Key, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
