package progress

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/roadmapper/internal/store"
)

func openStore(t *testing.T, kv store.KV, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyStorage(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	if got := s.Get("anything"); got != 0 {
		t.Errorf("Get on empty store = %v, want 0", got)
	}
	if s.LoadErr() != nil {
		t.Errorf("unexpected load error: %v", s.LoadErr())
	}
}

func TestOpen_MalformedStorageYieldsEmptyMap(t *testing.T) {
	kv := store.NewMemoryKV()
	kv.Put(context.Background(), DefaultKey, []byte(`{not json`))

	s, err := Open(context.Background(), kv)
	if err != nil {
		t.Fatalf("Open should not fail on malformed data, got %v", err)
	}
	if len(s.Snapshot()) != 0 {
		t.Errorf("snapshot = %v, want empty", s.Snapshot())
	}
	var le *LoadError
	if !errors.As(s.LoadErr(), &le) {
		t.Fatalf("LoadErr = %v, want *LoadError", s.LoadErr())
	}
	if le.Err == nil {
		t.Error("expected wrapped decode error")
	}
}

func TestOpen_SanitizesEntries(t *testing.T) {
	kv := store.NewMemoryKV()
	kv.Put(context.Background(), DefaultKey, []byte(`{"a": 50, "b": "x", "c": 250, "d": -5}`))

	s := openStore(t, kv)
	want := map[string]float64{"a": 50, "c": 100, "d": 0}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	var le *LoadError
	if !errors.As(s.LoadErr(), &le) {
		t.Fatalf("LoadErr = %v", s.LoadErr())
	}
	if diff := cmp.Diff([]string{"b"}, le.Dropped); diff != "" {
		t.Errorf("dropped (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "d"}, le.Clamped); diff != "" {
		t.Errorf("clamped (-want +got):\n%s", diff)
	}
}

func TestSet_RoundTripAcrossReopen(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()

	s := openStore(t, kv)
	if err := s.Set(ctx, "x", 42); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	reopened := openStore(t, kv)
	if got := reopened.Get("x"); got != 42 {
		t.Errorf("after reopen Get(x) = %v, want 42", got)
	}
}

func TestSet_RoundTripFileBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, _ := store.OpenFile(dir)
	s := openStore(t, kv)
	s.Set(ctx, "x", 42)

	kv2, _ := store.OpenFile(dir)
	if got := openStore(t, kv2).Get("x"); got != 42 {
		t.Errorf("Get(x) = %v, want 42", got)
	}
}

func TestSet_Clamps(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	tests := []struct {
		in, want float64
	}{
		{-10, 0},
		{0, 0},
		{55.5, 55.5},
		{100, 100},
		{140, 100},
		{math.NaN(), 0},
		{math.Inf(1), 100},
	}
	for _, tt := range tests {
		s.Set(ctx, "a", tt.in)
		if got := s.Get("a"); got != tt.want {
			t.Errorf("Set(%v): Get = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSet_NotifiesEveryTimeEvenIfUnchanged(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	var got []Change
	s.Subscribe(func(c Change) { got = append(got, c) })

	s.Set(ctx, "a", 30)
	s.Set(ctx, "a", 30)
	s.Set(ctx, "a", 30)

	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3", len(got))
	}
	if got[1].Old != 30 || got[1].New != 30 {
		t.Errorf("second change = %+v", got[1])
	}
}

func TestSet_ABScenario(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Set(ctx, "A", 100)
	s.Set(ctx, "B", 50)

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	if changes[0].ID != "A" || changes[1].ID != "B" {
		t.Errorf("notification order = %s, %s", changes[0].ID, changes[1].ID)
	}
	want := map[string]float64{"A": 100, "B": 50}
	if diff := cmp.Diff(want, changes[1].Snapshot); diff != "" {
		t.Errorf("final snapshot (-want +got):\n%s", diff)
	}
	// The first snapshot is not affected by later writes.
	if diff := cmp.Diff(map[string]float64{"A": 100}, changes[0].Snapshot); diff != "" {
		t.Errorf("first snapshot (-want +got):\n%s", diff)
	}
}

func TestSet_PersistErrorKeepsMemoryAndNotifies(t *testing.T) {
	kv := store.NewMemoryKV()
	s := openStore(t, kv)
	kv.FailPuts = errors.New("quota exceeded")

	notified := false
	s.Subscribe(func(Change) { notified = true })

	err := s.Set(context.Background(), "a", 70)
	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *PersistError", err)
	}
	if pe.ID != "a" {
		t.Errorf("PersistError.ID = %q", pe.ID)
	}
	if s.Get("a") != 70 {
		t.Errorf("in-memory value = %v, want 70", s.Get("a"))
	}
	if !notified {
		t.Error("subscriber not notified after persist failure")
	}
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	count := 0
	unsub := s.Subscribe(func(Change) { count++ })
	s.Set(ctx, "a", 1)
	unsub()
	unsub() // idempotent
	s.Set(ctx, "a", 2)

	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestSubscribe_UnsubscribeDuringNotification(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	var calls []string
	var unsubB func()
	s.Subscribe(func(Change) {
		calls = append(calls, "a")
		unsubB()
	})
	unsubB = s.Subscribe(func(Change) { calls = append(calls, "b") })

	s.Set(ctx, "x", 10)
	s.Set(ctx, "x", 20)

	// b still receives the change that was in flight when it was removed.
	want := []string{"a", "b", "a"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls (-want +got):\n%s", diff)
	}
}

func TestSet_FromListenerIsDeliveredInOrder(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	ctx := context.Background()

	var seen []string
	s.Subscribe(func(c Change) {
		seen = append(seen, c.ID)
		if c.ID == "parent" {
			s.Set(ctx, "child", 100)
		}
	})
	s.Subscribe(func(c Change) { seen = append(seen, "2:"+c.ID) })

	s.Set(ctx, "parent", 100)

	want := []string{"parent", "2:parent", "child", "2:child"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("delivery order (-want +got):\n%s", diff)
	}
}

func TestSet_ConcurrentLastWriteWins(t *testing.T) {
	kv := store.NewMemoryKV()
	s := openStore(t, kv)
	ctx := context.Background()

	var mu sync.Mutex
	var last float64
	s.Subscribe(func(c Change) {
		mu.Lock()
		last = c.New
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			s.Set(ctx, "a", v)
		}(float64(i))
	}
	wg.Wait()

	// Memory, storage and the last notification agree.
	final := s.Get("a")
	reopened := openStore(t, kv)
	if reopened.Get("a") != final {
		t.Errorf("persisted %v, in memory %v", reopened.Get("a"), final)
	}
	mu.Lock()
	defer mu.Unlock()
	if last != final {
		t.Errorf("last notification %v, in memory %v", last, final)
	}
}

func TestReset(t *testing.T) {
	kv := store.NewMemoryKV()
	s := openStore(t, kv)
	ctx := context.Background()

	s.Set(ctx, "a", 80)
	var resetSeen bool
	s.Subscribe(func(c Change) { resetSeen = c.Reset })

	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if !resetSeen {
		t.Error("reset not notified")
	}
	if s.Get("a") != 0 {
		t.Errorf("Get after reset = %v", s.Get("a"))
	}
	if _, err := kv.Get(ctx, DefaultKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("key still stored: %v", err)
	}
}

func TestClose(t *testing.T) {
	s := openStore(t, store.NewMemoryKV())
	count := 0
	s.Subscribe(func(Change) { count++ })
	s.Close()

	if err := s.Set(context.Background(), "a", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
	if count != 0 {
		t.Errorf("listener called after Close")
	}
}

func TestWithKey(t *testing.T) {
	kv := store.NewMemoryKV()
	s := openStore(t, kv, WithKey("custom"))
	s.Set(context.Background(), "a", 5)

	if _, err := kv.Get(context.Background(), "custom"); err != nil {
		t.Errorf("value not stored under custom key: %v", err)
	}
}
