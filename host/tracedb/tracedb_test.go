package tracedb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quasar/core"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBeginUsesUUIDv7(t *testing.T) {
	db := openTest(t)
	id, err := db.Begin(context.Background(), "/dev/ttyUSB0", "a17ddl")
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestAppendAndReadBack(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	id, err := db.Begin(ctx, "sim", "nanjg105d")
	require.NoError(t, err)

	first := []core.Event{
		{Kind: core.EvtBoot, Tick: 0},
		{Kind: core.EvtShortClick, Tick: 0, A: 1, B: 1},
	}
	second := []core.Event{
		{Kind: core.EvtLockIn, Tick: 50, A: 1},
		{Kind: core.EvtDerate, Tick: 900, A: -127, B: -66},
	}
	require.NoError(t, db.Append(ctx, id, first...))
	require.NoError(t, db.Append(ctx, id, second...))

	got, err := db.Events(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), got)

	n, err := db.CountKind(ctx, id, core.EvtLockIn)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSessionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	start := time.UnixMilli(1_700_000_000_000)
	db.now = func() time.Time { return start }

	older, err := db.Begin(ctx, "a", "")
	require.NoError(t, err)
	newer, err := db.Begin(ctx, "b", "")
	require.NoError(t, err)
	require.NoError(t, db.SetPreset(ctx, newer, "a17ddl"))
	require.NoError(t, db.Append(ctx, newer, core.Event{Kind: core.EvtBoot}))

	sessions, err := db.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer, sessions[0].ID)
	assert.Equal(t, "a17ddl", sessions[0].Preset)
	assert.Equal(t, 1, sessions[0].Events)
	assert.Equal(t, older, sessions[1].ID)
	assert.Equal(t, 0, sessions[1].Events)
	assert.True(t, sessions[1].StartedAt.Equal(start))
}

func TestAppendUnknownSession(t *testing.T) {
	db := openTest(t)
	err := db.Append(context.Background(), "missing", core.Event{Kind: core.EvtBoot})
	assert.Error(t, err)
}
