package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when a workout ID is not in the collection.
	ErrNotFound = errors.New("workout not found")
	// ErrInvalidWorkout wraps rejected save and update input.
	ErrInvalidWorkout = errors.New("invalid workout")
)

// KV is a minimal key-value store. Get returns (nil, nil) for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Migrations  string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
}

// Open connects the KV backend named by opts.Driver. Postgres migrations are
// applied before the pool is opened.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		return OpenSQLite(opts.SQLitePath)
	case DriverPostgres:
		if err := RunMigrations(opts.PostgresDSN, opts.Migrations); err != nil {
			return nil, err
		}
		return NewPostgres(ctx, opts.PostgresDSN)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisAddr, opts.RedisPass, opts.RedisDB)
	case DriverMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

// MemoryKV keeps values in a map. Used in tests and by -driver memory.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
