// Package review schedules spaced reviews of completed roadmap items and
// supplies the needsReview overrides for the status projection.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/store"
)

// DefaultKey is the KV key review state is stored under.
const DefaultKey = "reviews"

// ErrNotTracked is returned when reviewing an item that has no schedule.
var ErrNotTracked = errors.New("item is not scheduled for review")

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler manages review scheduling for completed items.
type Scheduler struct {
	kv     store.KV
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	reviews  map[string]*State
	onChange []func()
}

// Open loads review state from kv. Unreadable state is logged and
// discarded.
func Open(ctx context.Context, kv store.KV, opts ...Option) *Scheduler {
	s := &Scheduler{
		kv:      kv,
		logger:  zap.NewNop(),
		now:     time.Now,
		reviews: make(map[string]*State),
	}
	for _, o := range opts {
		o(s)
	}

	raw, err := kv.Get(ctx, DefaultKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		s.logger.Warn("review state not loaded", zap.Error(err))
	default:
		reviews, err := decodeStates(raw)
		if err != nil {
			s.logger.Warn("review state malformed, starting fresh", zap.Error(err))
			break
		}
		s.reviews = reviews
	}
	return s
}

// decodeStates parses stored review state. A null document or null entries
// are dropped rather than kept as nil states.
func decodeStates(raw []byte) (map[string]*State, error) {
	var decoded map[string]*State
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	out := make(map[string]*State, len(decoded))
	for id, rs := range decoded {
		if rs == nil {
			continue
		}
		if rs.ItemID == "" {
			rs.ItemID = id
		}
		out[id] = rs
	}
	return out, nil
}

// Track reconciles the schedule with the current progress and keeps it in
// sync as items are completed or reopened. The returned function stops
// tracking.
func (s *Scheduler) Track(ctx context.Context, p *progress.Store) (stop func()) {
	s.reconcile(ctx, p.Snapshot())
	return p.Subscribe(func(c progress.Change) {
		if c.Reset {
			s.reconcile(ctx, c.Snapshot)
			return
		}
		s.apply(ctx, c.ID, c.New)
	})
}

func (s *Scheduler) reconcile(ctx context.Context, values map[string]float64) {
	s.mu.Lock()
	changed := false
	for id := range s.reviews {
		if values[id] < status.CompleteAt {
			delete(s.reviews, id)
			changed = true
		}
	}
	for id, v := range values {
		if v >= status.CompleteAt && s.reviews[id] == nil {
			s.reviews[id] = newState(id, s.now())
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.commit(ctx)
	}
}

func (s *Scheduler) apply(ctx context.Context, id string, value float64) {
	s.mu.Lock()
	_, tracked := s.reviews[id]
	switch {
	case value >= status.CompleteAt && !tracked:
		s.reviews[id] = newState(id, s.now())
	case value < status.CompleteAt && tracked:
		delete(s.reviews, id)
	default:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.commit(ctx)
}

// MarkReviewed records a successful review of id and schedules the next one.
func (s *Scheduler) MarkReviewed(ctx context.Context, id string) error {
	s.mu.Lock()
	rs := s.reviews[id]
	if rs == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotTracked, id)
	}
	rs.advance(s.now())
	s.mu.Unlock()
	return s.commit(ctx)
}

// Due returns items due for review, most overdue first.
func (s *Scheduler) Due() []string {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	type dueItem struct {
		id   string
		late time.Duration
	}
	var due []dueItem
	for id, rs := range s.reviews {
		if rs.IsDue(now) {
			due = append(due, dueItem{id: id, late: rs.Late(now)})
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].late != due[j].late {
			return due[i].late > due[j].late
		}
		return due[i].id < due[j].id
	})

	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.id
	}
	return ids
}

// Overrides returns the needsReview set for the status projection.
func (s *Scheduler) Overrides() status.Overrides {
	due := s.Due()
	o := make(status.Overrides, len(due))
	for _, id := range due {
		o[id] = status.NeedsReview
	}
	return o
}

// State returns a copy of the review state for id, or nil if not tracked.
func (s *Scheduler) State(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs := s.reviews[id]
	if rs == nil {
		return nil
	}
	cp := *rs
	return &cp
}

// Now returns the scheduler's clock reading.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// OnChange registers fn to run after every schedule change.
func (s *Scheduler) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// commit persists the schedule and runs change hooks. Persist failures are
// logged; the in-memory schedule stays authoritative.
func (s *Scheduler) commit(ctx context.Context) error {
	s.mu.Lock()
	data, err := json.Marshal(s.reviews)
	hooks := append([]func(){}, s.onChange...)
	s.mu.Unlock()

	if err == nil {
		err = s.kv.Put(ctx, DefaultKey, data)
	}
	if err != nil {
		s.logger.Error("review state not persisted", zap.Error(err))
		err = fmt.Errorf("persist review state: %w", err)
	}

	for _, fn := range hooks {
		fn()
	}
	return err
}
