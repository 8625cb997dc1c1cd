package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/abhisek/roadmapper/internal/config"
)

// ErrNotFound is returned by KV.Get when the key has never been written or
// was deleted.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value store holding opaque values. Progress and
// review state each live under a single key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the KV backend selected by cfg.
func Open(cfg config.StorageConfig) (KV, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryKV(), nil
	case "redis":
		return OpenRedis(cfg.Redis)
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	switch cfg.Backend {
	case "file", "":
		return OpenFile(dir)
	case "sqlite":
		path := filepath.Join(dir, "roadmapper.db")
		if err := EnsureDir(path); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Backend)
	}
}

// EventsOf returns the event repository backing kv, or a repository that
// discards events when the backend does not record them.
func EventsOf(kv KV) EventRepo {
	if s, ok := kv.(interface{ EventRepo() EventRepo }); ok {
		return s.EventRepo()
	}
	return NopEventRepo{}
}

// DefaultDataDir resolves the data directory in priority order:
// 1. ROADMAPPER_DATA environment variable
// 2. $XDG_DATA_HOME/roadmapper
// 3. ~/.local/share/roadmapper
func DefaultDataDir() (string, error) {
	if p := os.Getenv("ROADMAPPER_DATA"); p != "" {
		return p, os.MkdirAll(p, 0o755)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "roadmapper")
	return p, os.MkdirAll(p, 0o755)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// MemoryKV is an in-process KV. Nothing survives Close.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailPuts makes every Put fail; used to exercise persistence errors.
	FailPuts error
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
