// Package progress holds the learner's per-item completion values and
// persists them as a single JSON object under one KV key.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/store"
)

// DefaultKey is the KV key progress is stored under.
const DefaultKey = "progress"

// Min and Max bound every stored value.
const (
	Min = 0.0
	Max = 100.0
)

// Change describes one notification. Snapshot is a copy of the full map
// after the change was applied.
type Change struct {
	ID       string
	Old      float64
	New      float64
	Reset    bool
	Snapshot map[string]float64
}

// Listener receives changes. Listeners run on the goroutine that made the
// change and must not block.
type Listener func(Change)

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the KV key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for load and persist failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Store is the authoritative in-memory progress map, written through to a
// KV on every change.
type Store struct {
	kv     store.KV
	key    string
	logger *zap.Logger

	mu      sync.RWMutex
	values  map[string]float64
	loadErr *LoadError
	closed  bool

	// persistMu orders writes to kv and the notification queue so both
	// follow the order in which updates were applied to values.
	persistMu sync.Mutex

	qmu         sync.Mutex
	queue       []Change
	dispatching bool

	lmu       sync.Mutex
	listeners map[int]Listener
	order     []int
	nextID    int
}

// Open loads progress from kv. A missing key yields an empty map. Unreadable
// or malformed data also yields an empty (or sanitized) map; the problem is
// logged and available from LoadErr, and Open still succeeds.
func Open(ctx context.Context, kv store.KV, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("progress: nil KV")
	}
	s := &Store{
		kv:        kv,
		key:       DefaultKey,
		logger:    zap.NewNop(),
		values:    make(map[string]float64),
		listeners: make(map[int]Listener),
	}
	for _, o := range opts {
		o(s)
	}

	s.values, s.loadErr = s.load(ctx)
	if s.loadErr != nil {
		s.logger.Warn("progress data could not be fully loaded",
			zap.String("key", s.key),
			zap.Error(s.loadErr))
	}
	s.logger.Debug("progress loaded", zap.Int("items", len(s.values)))
	return s, nil
}

func (s *Store) load(ctx context.Context) (map[string]float64, *LoadError) {
	values := make(map[string]float64)

	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return values, nil
	}
	if err != nil {
		return values, &LoadError{Key: s.key, Err: err}
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return values, &LoadError{Key: s.key, Err: fmt.Errorf("malformed progress data: %w", err)}
	}

	le := &LoadError{Key: s.key}
	for id, msg := range entries {
		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			le.Dropped = append(le.Dropped, id)
			continue
		}
		if c := Clamp(v); c != v {
			le.Clamped = append(le.Clamped, id)
			v = c
		}
		values[id] = v
	}
	if len(le.Dropped) == 0 && len(le.Clamped) == 0 {
		return values, nil
	}
	sort.Strings(le.Dropped)
	sort.Strings(le.Clamped)
	return values, le
}

// Clamp bounds v to [Min, Max]. NaN becomes Min.
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return Min
	case v < Min:
		return Min
	case v > Max:
		return Max
	}
	return v
}

// LoadErr returns the problem found when loading, or nil.
func (s *Store) LoadErr() error {
	if s.loadErr == nil {
		return nil
	}
	return s.loadErr
}

// Key returns the KV key progress is stored under.
func (s *Store) Key() string {
	return s.key
}

// Get returns the progress of id, or 0 if it has never been set.
func (s *Store) Get(id string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[id]
}

// Snapshot returns a copy of every stored value.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

// Set clamps value into [0, 100], stores it for id, writes the full map to
// the KV and notifies every subscriber, even when the value is unchanged.
//
// If the write fails a *PersistError is returned, but the in-memory update
// stands and subscribers are still notified.
//
// When another goroutine is already delivering changes, Set queues its
// change for that goroutine and may return before subscribers have seen
// it. Get and Snapshot reflect the write as soon as Set returns.
func (s *Store) Set(ctx context.Context, id string, value float64) error {
	v := Clamp(value)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old := s.values[id]
	s.values[id] = v
	snap := maps.Clone(s.values)
	s.persistMu.Lock()
	s.mu.Unlock()

	err := s.persist(ctx, snap)
	s.enqueue(Change{ID: id, Old: old, New: v, Snapshot: snap})
	s.persistMu.Unlock()

	s.dispatch()

	if err != nil {
		perr := &PersistError{Key: s.key, ID: id, Err: err}
		s.logger.Error("progress not persisted",
			zap.String("item", id),
			zap.Float64("value", v),
			zap.Error(err))
		return perr
	}
	return nil
}

// Reset clears every value and deletes the persisted key.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.values = make(map[string]float64)
	s.loadErr = nil
	s.persistMu.Lock()
	s.mu.Unlock()

	err := s.kv.Delete(ctx, s.key)
	s.enqueue(Change{Reset: true, Snapshot: map[string]float64{}})
	s.persistMu.Unlock()

	s.dispatch()

	if err != nil {
		s.logger.Error("progress reset not persisted", zap.Error(err))
		return &PersistError{Key: s.key, Err: err}
	}
	return nil
}

func (s *Store) persist(ctx context.Context, snap map[string]float64) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	return s.kv.Put(ctx, s.key, data)
}

// Subscribe registers l for every subsequent change. The returned function
// removes it and may be called more than once.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			delete(s.listeners, id)
			for i, oid := range s.order {
				if oid == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) subscribers() []Listener {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}

func (s *Store) enqueue(c Change) {
	s.qmu.Lock()
	s.queue = append(s.queue, c)
	s.qmu.Unlock()
}

// dispatch delivers queued changes in order. Only one caller drains at a
// time; a Set made from inside a listener is queued and delivered after the
// current change has reached every listener.
func (s *Store) dispatch() {
	s.qmu.Lock()
	if s.dispatching {
		s.qmu.Unlock()
		return
	}
	s.dispatching = true
	for len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		for _, l := range s.subscribers() {
			l(c)
		}

		s.qmu.Lock()
	}
	s.dispatching = false
	s.qmu.Unlock()
}

// Close drops all subscribers. Later Set and Reset calls fail with
// ErrClosed. The underlying KV is owned by the caller and left open.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.lmu.Lock()
	s.listeners = make(map[int]Listener)
	s.order = nil
	s.lmu.Unlock()
	return nil
}
