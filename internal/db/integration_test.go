//go:build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/content-agent/internal/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and applies the schema.
// Skipped when the variable is unset or the database is unreachable.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestIntegration_Users(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	email := "user-" + uuid.New().String() + "@Example.com"
	u, err := db.CreateUser(ctx, "Test User", email, "hash")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, u.ID)
	assert.True(t, u.PasswordSet)

	_, err = db.CreateUser(ctx, "Again", email, "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := db.GetUserByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	require.NoError(t, db.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	missing, err := db.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = db.GetUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIntegration_Sessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	userID := "user-" + uuid.New().String()
	s := &sessions.Session{ID: uuid.New().String(), UserID: userID}
	require.NoError(t, db.CreateSession(ctx, s))
	defer db.DeleteSession(ctx, s.ID)
	assert.Equal(t, sessions.DefaultAppName, s.AppName)

	require.NoError(t, db.AppendMessage(ctx, s.ID, sessions.Message{Role: sessions.RoleUser, Content: "hi"}))
	require.NoError(t, db.AppendMessage(ctx, s.ID, sessions.Message{Role: sessions.RoleModel, Content: "hello"}))

	msgs, err := db.ListMessages(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Content)
	assert.Equal(t, sessions.RoleModel, msgs[1].Role)

	got, err := db.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.MessageCount)

	list, err := db.ListSessions(ctx, sessions.DefaultAppName, userID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, db.SetState(ctx, s.ID, "run-1", "research_findings", "v1"))
	require.NoError(t, db.SetState(ctx, s.ID, "run-1", "research_findings", "v2"))
	v, ok, err := db.GetState(ctx, s.ID, "run-1", "research_findings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	entries, err := db.ListState(ctx, s.ID, "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	var nf *sessions.NotFoundError
	assert.ErrorAs(t, db.SetState(ctx, "missing", "run", "k", "v"), &nf)
	assert.ErrorAs(t, db.AppendMessage(ctx, "missing", sessions.Message{Role: "user"}), &nf)

	require.NoError(t, db.DeleteSession(ctx, s.ID))
	assert.True(t, errors.Is(db.DeleteSession(ctx, s.ID), sessions.ErrSessionNotFound))
	gone, err := db.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIntegration_StageRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	runID := uuid.New().String()

	for i, name := range []string{"A", "B", "C"} {
		_, err := db.CreateStageRun(ctx, runID, &StageRunInput{Position: i, Stage: name, OutputKey: name})
		require.NoError(t, err)
	}

	require.NoError(t, db.UpdateStageRunStatus(ctx, runID, "A", StageRunUpdate{Status: StageStatusInProgress}))
	require.NoError(t, db.UpdateStageRunStatus(ctx, runID, "A", StageRunUpdate{Status: StageStatusCompleted, ToolCalls: 2}))
	msg := "boom"
	require.NoError(t, db.UpdateStageRunStatus(ctx, runID, "B", StageRunUpdate{Status: StageStatusFailed, ErrorMessage: &msg}))
	n, err := db.SkipPendingStageRuns(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := db.ListStageRuns(ctx, runID, nil)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, StageStatusCompleted, runs[0].Status)
	assert.NotNil(t, runs[0].DurationMs)
	assert.Equal(t, 2, runs[0].ToolCalls)
	assert.Equal(t, StageStatusFailed, runs[1].Status)
	assert.Equal(t, StageStatusSkipped, runs[2].Status)

	failed := StageStatusFailed
	only, err := db.ListStageRuns(ctx, runID, &failed)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "boom", *only[0].ErrorMessage)

	assert.Error(t, db.UpdateStageRunStatus(ctx, runID, "missing", StageRunUpdate{Status: StageStatusCompleted}))
}
