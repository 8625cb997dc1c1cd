// Package dashboard is the top-level view model shared by the terminal UI
// and the browser API. It owns no persisted state: everything it shows is
// re-projected from the progress store on every change.
package dashboard

import (
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/review"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
)

// View selects what the dashboard body shows.
type View string

const (
	ViewOverview View = "overview"
	ViewGraph    View = "graph"
	ViewKanban   View = "kanban"
)

// Views returns the views in toggle order.
func Views() []View {
	return []View{ViewOverview, ViewGraph, ViewKanban}
}

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	switch v {
	case ViewOverview, ViewGraph, ViewKanban:
		return true
	}
	return false
}

// Stats is the headline summary of the roadmap. Completed counts every
// finished item, including those due for review, so it always agrees with
// Percent. NeedsReview is the part of Completed that is due again.
type Stats struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	InProgress  int     `json:"inProgress"`
	Todo        int     `json:"todo"`
	Locked      int     `json:"locked"`
	NeedsReview int     `json:"needsReview"`
	Broken      int     `json:"broken"`
	Percent     float64 `json:"percent"`
}

// Option configures a Shell.
type Option func(*Shell)

// WithReviews layers the scheduler's needsReview overrides on top of the
// derived statuses and refreshes whenever the schedule changes.
func WithReviews(r *review.Scheduler) Option {
	return func(s *Shell) { s.reviews = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithView sets the initial view.
func WithView(v View) Option {
	return func(s *Shell) {
		if v.Valid() {
			s.view = v
		}
	}
}

// Shell ties the roadmap, the progress store and the review schedule into
// one projection.
type Shell struct {
	graph    *roadmap.Graph
	progress *progress.Store
	reviews  *review.Scheduler
	logger   *zap.Logger

	// calc orders recomputes: the snapshot read and the publish happen
	// under it, so an older projection never replaces a newer one.
	calc sync.Mutex

	mu     sync.RWMutex
	proj   *status.Projection
	stats  Stats
	view   View
	hooks  []func()
	closed bool

	unsub func()
}

// New builds a shell and subscribes it to p. Call Close to unsubscribe.
func New(g *roadmap.Graph, p *progress.Store, opts ...Option) *Shell {
	s := &Shell{
		graph:    g,
		progress: p,
		logger:   zap.NewNop(),
		view:     ViewOverview,
	}
	for _, o := range opts {
		o(s)
	}

	s.recompute()
	s.unsub = p.Subscribe(func(progress.Change) {
		s.recompute()
	})
	if s.reviews != nil {
		s.reviews.OnChange(s.Refresh)
	}
	return s
}

// Refresh re-projects from the store's current values. Review overrides are
// time dependent, so UIs call this on a tick as well.
func (s *Shell) Refresh() {
	s.recompute()
}

// recompute always reads the store itself rather than the snapshot carried
// by a change: a change may be delivered after a later write has landed.
func (s *Shell) recompute() {
	s.calc.Lock()
	values := s.progress.Snapshot()
	var overrides status.Overrides
	if s.reviews != nil {
		overrides = s.reviews.Overrides()
	}
	proj := status.Project(s.graph, status.Values(values), overrides)
	stats := statsFrom(proj)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.calc.Unlock()
		return
	}
	s.proj = proj
	s.stats = stats
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()
	s.calc.Unlock()

	s.logger.Debug("dashboard recomputed",
		zap.Int("completed", stats.Completed),
		zap.Int("total", stats.Total))
	for _, fn := range hooks {
		fn()
	}
}

func statsFrom(p *status.Projection) Stats {
	c := p.Counts()
	sum := p.Summary()
	return Stats{
		Total:       sum.Total,
		Completed:   sum.Completed,
		InProgress:  c[status.InProgress],
		Todo:        c[status.Todo],
		Locked:      c[status.Locked],
		NeedsReview: c[status.NeedsReview],
		Broken:      c[status.Broken],
		Percent:     sum.Percent,
	}
}

// Stats returns the current summary.
func (s *Shell) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Projection returns the current status projection.
func (s *Shell) Projection() *status.Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.proj
}

func (s *Shell) Graph() *roadmap.Graph { return s.graph }

func (s *Shell) Progress() *progress.Store { return s.progress }

// Reviews returns the review scheduler, or nil when reviews are off.
func (s *Shell) Reviews() *review.Scheduler { return s.reviews }

func (s *Shell) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// SetView switches the view. Unknown views are ignored.
func (s *Shell) SetView(v View) {
	if !v.Valid() {
		return
	}
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// ToggleView advances to the next view and returns it.
func (s *Shell) ToggleView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := Views()
	for i, v := range views {
		if v == s.view {
			s.view = views[(i+1)%len(views)]
			return s.view
		}
	}
	s.view = ViewOverview
	return s.view
}

// OnChange registers fn to run after every recompute.
func (s *Shell) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Close unsubscribes from the progress store. The last projection stays
// readable.
func (s *Shell) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.hooks = nil
	s.closed = true
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
