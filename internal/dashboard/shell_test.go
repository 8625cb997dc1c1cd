package dashboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/roadmapper/internal/progress"
	"github.com/abhisek/roadmapper/internal/review"
	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/store"
)

// chain: a → b → c, plus an independent d. Topological order is a, d, b, c.
func chain() *roadmap.Graph {
	return roadmap.NewGraph(roadmap.Data{Items: map[string]roadmap.Item{
		"a": {Label: "A", NodeType: roadmap.NodeTopic},
		"b": {Label: "B", NodeType: roadmap.NodeTopic, Prerequisites: []string{"a"}},
		"c": {Label: "C", NodeType: roadmap.NodeTopic, Prerequisites: []string{"b"}},
		"d": {Label: "D", NodeType: roadmap.NodeTopic},
	}})
}

func newShell(t *testing.T, opts ...Option) (*Shell, *progress.Store) {
	t.Helper()
	p, err := progress.Open(context.Background(), store.NewMemoryKV())
	require.NoError(t, err)
	s := New(chain(), p, opts...)
	t.Cleanup(func() {
		s.Close()
		p.Close()
	})
	return s, p
}

func cardIDs(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestStats_Initial(t *testing.T) {
	s, _ := newShell(t)
	assert.Equal(t, Stats{Total: 4, Todo: 2, Locked: 2}, s.Stats())
}

func TestStats_RecomputedOnEveryChange(t *testing.T) {
	s, p := newShell(t)
	ctx := context.Background()
	calls := 0
	s.OnChange(func() { calls++ })

	p.Set(ctx, "a", 40)
	assert.Equal(t, 1, s.Stats().InProgress)

	p.Set(ctx, "a", 100)
	st := s.Stats()
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 2, st.Todo, "b unlocks once a completes")
	assert.Equal(t, 1, st.Locked)
	assert.InDelta(t, 25.0, st.Percent, 0.001)

	p.Set(ctx, "a", 100)
	assert.Equal(t, 3, calls, "unchanged values still notify")
}

func TestNext_InProgressFirstThenTodo(t *testing.T) {
	s, p := newShell(t)
	ctx := context.Background()
	p.Set(ctx, "a", 100)
	p.Set(ctx, "b", 30)

	assert.Equal(t, []string{"b", "d"}, cardIDs(s.Next(5)))
	assert.Equal(t, []string{"b"}, cardIDs(s.Next(1)))
	assert.Nil(t, s.Next(0))

	next := s.Next(1)
	assert.Equal(t, 30.0, next[0].Progress)
}

func TestKanban_ColumnsInFixedOrder(t *testing.T) {
	s, p := newShell(t)
	p.Set(context.Background(), "a", 100)

	cols := s.Kanban()
	require.Len(t, cols, len(status.All()))
	for i, st := range status.All() {
		assert.Equal(t, st, cols[i].Status)
		assert.NotNil(t, cols[i].Cards)
	}

	byStatus := map[status.Status][]string{}
	for _, c := range cols {
		byStatus[c.Status] = cardIDs(c.Cards)
	}
	assert.Equal(t, []string{"d", "b"}, byStatus[status.Todo])
	assert.Equal(t, []string{"a"}, byStatus[status.Completed])
	assert.Equal(t, []string{"c"}, byStatus[status.Locked])
	assert.Empty(t, byStatus[status.InProgress])
}

func TestToggleView(t *testing.T) {
	s, _ := newShell(t)
	assert.Equal(t, ViewOverview, s.View())
	assert.Equal(t, ViewGraph, s.ToggleView())
	assert.Equal(t, ViewKanban, s.ToggleView())
	assert.Equal(t, ViewOverview, s.ToggleView())

	s.SetView(ViewKanban)
	assert.Equal(t, ViewKanban, s.View())
	s.SetView("bogus")
	assert.Equal(t, ViewKanban, s.View())
}

func TestWithView(t *testing.T) {
	s, _ := newShell(t, WithView(ViewGraph))
	assert.Equal(t, ViewGraph, s.View())
}

func TestClose_StopsUpdates(t *testing.T) {
	s, p := newShell(t)
	s.Close()
	p.Set(context.Background(), "a", 50)
	assert.Equal(t, 0, s.Stats().InProgress)
	s.Close()
}

func TestWithReviews_NeedsReviewOverride(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	p, err := progress.Open(ctx, kv)
	require.NoError(t, err)
	defer p.Close()
	r := review.Open(ctx, kv, review.WithClock(clock))
	stop := r.Track(ctx, p)
	defer stop()

	s := New(chain(), p, WithReviews(r))
	defer s.Close()

	p.Set(ctx, "a", 100)
	assert.Equal(t, 1, s.Stats().Completed)

	now = now.Add(48 * time.Hour)
	s.Refresh()
	st := s.Stats()
	assert.Equal(t, 1, st.Completed, "items due for review are still finished")
	assert.Equal(t, 1, st.NeedsReview)
	assert.InDelta(t, 25.0, st.Percent, 0.001, "needsReview still counts toward completion")
	assert.Equal(t, status.NeedsReview, s.Projection().Status("a"))

	require.NoError(t, r.MarkReviewed(ctx, "a"))
	assert.Equal(t, 1, s.Stats().Completed, "review change refreshes the shell")
}

func TestRefresh_DoesNotOverwriteNewerChange(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	// The first clock read after arming parks until released, holding a
	// refresh between its snapshot and its publish.
	var armed atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})
	clock := func() time.Time {
		if armed.CompareAndSwap(true, false) {
			close(entered)
			<-release
		}
		return base
	}

	r := review.Open(ctx, store.NewMemoryKV(), review.WithClock(clock))
	s, p := newShell(t, WithReviews(r))

	armed.Store(true)
	refreshed := make(chan struct{})
	go func() {
		s.Refresh()
		close(refreshed)
	}()
	<-entered

	set := make(chan error, 1)
	go func() { set <- p.Set(ctx, "a", 100) }()
	require.Eventually(t, func() bool { return p.Get("a") == 100 }, time.Second, time.Millisecond)

	close(release)
	<-refreshed
	require.NoError(t, <-set)

	assert.Equal(t, status.Completed, s.Projection().Status("a"))
	assert.Equal(t, 1, s.Stats().Completed)
	assert.Equal(t, status.Todo, s.Projection().Status("b"))
}
