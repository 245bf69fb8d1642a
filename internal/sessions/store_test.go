package sessions

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	mem := NewMemoryStore()
	mem.now = tickingClock()

	lite, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", DBFile))
	require.NoError(t, err)
	lite.now = tickingClock()
	t.Cleanup(func() { lite.Close() })

	return map[string]Store{"memory": mem, "sqlite": lite}
}

func TestStore_SessionLifecycle(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := store.GetSession(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			require.Error(t, store.CreateSession(ctx, &Session{}))

			first := &Session{ID: "s1"}
			require.NoError(t, store.CreateSession(ctx, first))
			assert.Equal(t, DefaultAppName, first.AppName)
			assert.Equal(t, DefaultUserID, first.UserID)
			require.Error(t, store.CreateSession(ctx, &Session{ID: "s1"}))

			require.NoError(t, store.CreateSession(ctx, &Session{ID: "s2", UserID: "ada"}))
			require.NoError(t, store.CreateSession(ctx, &Session{ID: "s3", AppName: "other"}))

			require.NoError(t, store.AppendMessage(ctx, "s1", Message{Role: RoleUser, Content: "hello"}))
			require.NoError(t, store.AppendMessage(ctx, "s1", Message{Role: RoleModel, Content: "hi"}))
			err = store.AppendMessage(ctx, "ghost", Message{Role: RoleUser, Content: "x"})
			assert.ErrorIs(t, err, ErrSessionNotFound)

			got, err := store.GetSession(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, 2, got.MessageCount)
			assert.True(t, got.UpdatedAt.After(got.CreatedAt))

			msgs, err := store.ListMessages(ctx, "s1")
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, "hello", msgs[0].Content)
			assert.Equal(t, RoleModel, msgs[1].Role)
			assert.Equal(t, "s1", msgs[1].SessionID)

			list, err := store.ListSessions(ctx, DefaultAppName, "", 0)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "s1", list[0].ID, "most recently updated first")

			list, err = store.ListSessions(ctx, DefaultAppName, "ada", 0)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "s2", list[0].ID)

			list, err = store.ListSessions(ctx, "", "", 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)

			require.NoError(t, store.DeleteSession(ctx, "s1"))
			err = store.DeleteSession(ctx, "s1")
			assert.ErrorIs(t, err, ErrSessionNotFound)
			assert.EqualError(t, err, "session 's1' not found")

			msgs, err = store.ListMessages(ctx, "s1")
			require.NoError(t, err)
			assert.Empty(t, msgs)
		})
	}
}

func TestStore_State(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.CreateSession(ctx, &Session{ID: "s"}))

			run1 := NewStateMap(store, "s", "r1")
			require.NoError(t, run1.Set(ctx, "research_findings", "papers"))
			require.NoError(t, run1.Set(ctx, "content_strategy", "plan"))
			require.NoError(t, run1.Set(ctx, "research_findings", "papers v2"))

			run2 := NewStateMap(store, "s", "r2")
			require.NoError(t, run2.Set(ctx, "research_findings", "other"))

			v, ok, err := run1.Get(ctx, "research_findings")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "papers v2", v)

			_, ok, err = run1.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			entries, err := run1.All(ctx)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "research_findings", entries[0].Key)
			assert.Equal(t, "content_strategy", entries[1].Key)
			assert.Equal(t, "r1", run1.RunID())

			all, err := store.ListState(ctx, "s", "")
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "r2", all[2].RunID)

			err = store.SetState(ctx, "ghost", "r", "k", "v")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			require.NoError(t, store.DeleteSession(ctx, "s"))
			all, err = store.ListState(ctx, "s", "")
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DBFile)
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(ctx, &Session{ID: "persisted"}))
	require.NoError(t, s.AppendMessage(ctx, "persisted", Message{Role: RoleUser, Content: "topic"}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetSession(ctx, "persisted")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.MessageCount)
}

func TestFormatTable(t *testing.T) {
	assert.Equal(t, "No sessions found.", FormatTable(nil))

	out := FormatTable([]Session{
		{ID: strings.Repeat("a", 40), UserID: "a-rather-long-user-name", MessageCount: 3},
		{ID: "short", MessageCount: 0},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.Repeat("=", 100), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Session ID"))
	assert.True(t, strings.HasPrefix(lines[3], strings.Repeat("a", 37)+"..."))
	assert.Contains(t, lines[3], "a-rather-long-user-name 3")
	assert.Contains(t, lines[3], "Unknown")
	assert.Contains(t, lines[4], "Unknown")
	assert.Equal(t, lines[0], lines[5])
}
