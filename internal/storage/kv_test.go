package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSQLiteKV verifies get/set round trips and missing keys on disk.
func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "plancoach.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)

	got, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, kv.Set(ctx, "k", []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, "k", []byte(`[1,2]`)))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
	require.NoError(t, kv.Close())

	// Reopen to verify persistence.
	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))
}

// TestSQLiteWorkoutStore runs the store over a real sqlite file.
func TestSQLiteWorkoutStore(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "plancoach.db"))
	require.NoError(t, err)
	defer kv.Close()

	s := NewWorkoutStore(kv, "", testLogger)
	w, err := s.Save(ctx, newWorkout("Long run", 21.1))
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)

	got, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Long run", got.Name)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestRedisKV verifies GET/SET mapping and redis.Nil handling.
func TestRedisKV(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	kv := NewRedisFromClient(db)

	mock.ExpectGet("saved_workouts").RedisNil()
	got, err := kv.Get(ctx, "saved_workouts")
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectSet("saved_workouts", `[]`, 0).SetVal("OK")
	require.NoError(t, kv.Set(ctx, "saved_workouts", []byte(`[]`)))

	mock.ExpectGet("saved_workouts").SetVal(`[]`)
	got, err = kv.Get(ctx, "saved_workouts")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	mock.ExpectGet("saved_workouts").SetErr(errors.New("connection refused"))
	_, err = kv.Get(ctx, "saved_workouts")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestOpenMemoryAndUnknown verifies driver selection.
func TestOpenMemoryAndUnknown(t *testing.T) {
	ctx := context.Background()
	kv, err := Open(ctx, Options{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	_, err = Open(ctx, Options{Driver: "cassandra"})
	assert.Error(t, err)
}
