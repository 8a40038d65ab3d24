package queue

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/llehouerou/mixtape/internal/api"
	"github.com/llehouerou/mixtape/internal/api/apitest"
	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

// fakeStore is an in-memory Store that records calls.
type fakeStore struct {
	mu       sync.Mutex
	tracks   []mixtape.Track
	calls    []string
	addErr   error
	rmErr    error
	fetchErr error
}

func (s *fakeStore) Queue(_ context.Context, _ *session.Session) ([]mixtape.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "queue")
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return slices.Clone(s.tracks), nil
}

func (s *fakeStore) AddTrack(_ context.Context, _ *session.Session, t mixtape.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "add:"+t.ID)
	if s.addErr != nil {
		return s.addErr
	}
	if mixtape.IndexOf(s.tracks, t.ID) < 0 {
		s.tracks = append(s.tracks, t)
	}
	return nil
}

func (s *fakeStore) RemoveTrack(_ context.Context, _ *session.Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "remove:"+id)
	if s.rmErr != nil {
		return s.rmErr
	}
	i := mixtape.IndexOf(s.tracks, id)
	if i < 0 {
		return &mixtape.NetworkError{Op: "remove song", Status: 404, Message: "Song not found", Err: mixtape.ErrTrackNotFound}
	}
	s.tracks = slices.Delete(s.tracks, i, i+1)
	return nil
}

func (s *fakeStore) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

var authed = session.Static{S: &session.Session{Token: "tok"}}

func track(id string) mixtape.Track {
	return mixtape.Track{ID: id, Title: "Title " + id, Artist: "Artist " + id}
}

func ids(tracks []mixtape.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestManager_Unauthenticated(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, session.Static{}, nil)
	ctx := context.Background()

	if err := m.Load(ctx); !errors.Is(err, mixtape.ErrUnauthenticated) {
		t.Errorf("Load() error = %v, want ErrUnauthenticated", err)
	}
	if err := m.Add(ctx, track("a")); !errors.Is(err, mixtape.ErrUnauthenticated) {
		t.Errorf("Add() error = %v, want ErrUnauthenticated", err)
	}
	if err := m.Remove(ctx, "a"); !errors.Is(err, mixtape.ErrUnauthenticated) {
		t.Errorf("Remove() error = %v, want ErrUnauthenticated", err)
	}
	if calls := store.callLog(); len(calls) != 0 {
		t.Errorf("store calls = %v, want none", calls)
	}
}

func TestManager_LoadReplacesWholesale(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a"), track("b")}}
	m := NewManager(store, authed, nil)

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	store.tracks = []mixtape.Track{track("c")}
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := ids(m.Tracks()); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Tracks() = %v, want [c]", got)
	}
	if m.Version() != 2 {
		t.Errorf("Version() = %d, want 2", m.Version())
	}
	if !m.Loaded() {
		t.Error("Loaded() = false")
	}
}

func TestManager_LoadCollapsesDuplicates(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a"), track("b"), track("a")}}
	m := NewManager(store, authed, nil)

	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := ids(m.Tracks()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Tracks() = %v, want [a b]", got)
	}
}

func TestManager_LoadFailureKeepsQueue(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}}
	m := NewManager(store, authed, nil)
	_ = m.Load(context.Background())

	store.fetchErr = &mixtape.NetworkError{Op: "load queue", Status: 500}
	if err := m.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := ids(m.Tracks()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Tracks() = %v, want previous queue kept", got)
	}
}

func TestManager_AddRefetches(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, authed, nil)

	if err := m.Add(context.Background(), track("a")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if got := store.callLog(); !slices.Equal(got, []string{"add:a", "queue"}) {
		t.Errorf("calls = %v, want [add:a queue]", got)
	}
	if got := ids(m.Tracks()); !slices.Equal(got, ids(store.tracks)) {
		t.Errorf("local %v != store %v", got, ids(store.tracks))
	}
}

func TestManager_AddRejectsLocally(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}}
	m := NewManager(store, authed, nil)
	_ = m.Load(context.Background())
	before := len(store.callLog())

	if err := m.Add(context.Background(), track("a")); !errors.Is(err, mixtape.ErrDuplicateTrack) {
		t.Errorf("duplicate Add() error = %v, want ErrDuplicateTrack", err)
	}
	if err := m.Add(context.Background(), mixtape.Track{ID: "x"}); !mixtape.IsValidation(err) {
		t.Errorf("invalid Add() error = %v, want ValidationError", err)
	}
	if after := len(store.callLog()); after != before {
		t.Errorf("store called %d times for rejected adds", after-before)
	}
}

func TestManager_AddFailureStillRefetches(t *testing.T) {
	// The server already has "a" but the local copy is stale.
	store := &fakeStore{}
	m := NewManager(store, authed, nil)
	_ = m.Load(context.Background())
	store.tracks = []mixtape.Track{track("a")}
	store.addErr = &mixtape.NetworkError{Op: "add song", Status: 400, Message: "Song already in mixtape"}

	err := m.Add(context.Background(), track("a"))
	if !errors.Is(err, mixtape.ErrMutationFailed) {
		t.Fatalf("Add() error = %v, want ErrMutationFailed", err)
	}
	if got := mixtape.UserMessage(err, ""); got != "Song already in mixtape" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := ids(m.Tracks()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Tracks() = %v, want converged [a]", got)
	}
}

func TestManager_AddRejectedCredentialsSkipRefetch(t *testing.T) {
	store := &fakeStore{addErr: &mixtape.NetworkError{Op: "add song", Status: 401, Err: mixtape.ErrUnauthenticated}}
	m := NewManager(store, authed, nil)

	err := m.Add(context.Background(), track("a"))
	if !errors.Is(err, mixtape.ErrUnauthenticated) {
		t.Fatalf("Add() error = %v, want ErrUnauthenticated in chain", err)
	}
	if got := store.callLog(); !slices.Equal(got, []string{"add:a"}) {
		t.Errorf("calls = %v, want only the add", got)
	}
}

func TestManager_AddRefetchFailure(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, authed, nil)
	store.fetchErr = &mixtape.NetworkError{Op: "load queue", Status: 502}

	if err := m.Add(context.Background(), track("a")); err == nil {
		t.Fatal("expected refetch error")
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want local queue unchanged", m.Len())
	}
}

func TestManager_RemoveAbsentStillRefetches(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}}
	m := NewManager(store, authed, nil)

	if err := m.Remove(context.Background(), "zzz"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got := store.callLog(); !slices.Equal(got, []string{"remove:zzz", "queue"}) {
		t.Errorf("calls = %v", got)
	}
	if got := ids(m.Tracks()); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Tracks() = %v", got)
	}
}

func TestManager_RemoveFailure(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}, rmErr: &mixtape.NetworkError{Op: "remove song", Status: 500}}
	m := NewManager(store, authed, nil)

	err := m.Remove(context.Background(), "a")
	var me *mixtape.MutationError
	if !errors.As(err, &me) || me.Op != "remove" {
		t.Fatalf("Remove() error = %v, want remove MutationError", err)
	}
	if got := store.callLog(); !slices.Equal(got, []string{"remove:a", "queue"}) {
		t.Errorf("calls = %v, want refetch after failure", got)
	}
}

func TestManager_UniquenessUnderRandomOps(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store, authed, nil)
	rng := rand.New(rand.NewPCG(1, 2))
	pool := []string{"a", "b", "c", "d", "e"}
	ctx := context.Background()

	for range 200 {
		id := pool[rng.IntN(len(pool))]
		if rng.IntN(2) == 0 {
			_ = m.Add(ctx, track(id))
		} else {
			_ = m.Remove(ctx, id)
		}
		got := ids(m.Tracks())
		seen := map[string]bool{}
		for _, id := range got {
			if seen[id] {
				t.Fatalf("duplicate %q in %v", id, got)
			}
			seen[id] = true
		}
		if !slices.Equal(got, ids(store.tracks)) {
			t.Fatalf("local %v diverged from store %v", got, ids(store.tracks))
		}
	}
}

// gatedStore returns a scripted result for each Queue call once released.
type gatedStore struct {
	fakeStore
	gates chan chan []mixtape.Track
}

func (s *gatedStore) Queue(ctx context.Context, _ *session.Session) ([]mixtape.Track, error) {
	gate := make(chan []mixtape.Track)
	s.gates <- gate
	select {
	case tracks := <-gate:
		return tracks, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestManager_LastRefetchToCompleteWins(t *testing.T) {
	store := &gatedStore{gates: make(chan chan []mixtape.Track)}
	m := NewManager(store, authed, nil)
	sub := m.Subscribe()
	defer m.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = m.Load(ctx) }()
	first := <-store.gates
	go func() { defer wg.Done(); _ = m.Load(ctx) }()
	second := <-store.gates

	// The later request completes first and is applied.
	second <- []mixtape.Track{track("new")}
	c := <-sub.Changed
	if got := ids(c.Tracks); c.Version != 1 || !slices.Equal(got, []string{"new"}) {
		t.Fatalf("first change = %v (version %d), want [new] at version 1", got, c.Version)
	}

	first <- []mixtape.Track{track("old")}
	wg.Wait()

	if got := ids(m.Tracks()); !slices.Equal(got, []string{"old"}) {
		t.Errorf("Tracks() = %v, want result of the refetch that completed last", got)
	}
	if v := m.Version(); v != 2 {
		t.Errorf("Version() = %d, want 2", v)
	}
}

func TestManager_Subscribe(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}}
	m := NewManager(store, authed, nil)
	sub := m.Subscribe()

	_ = m.Load(context.Background())
	store.tracks = []mixtape.Track{track("a"), track("b")}
	_ = m.Load(context.Background())

	// The subscriber fell behind: only the latest change is pending.
	c := <-sub.Changed
	if c.Version != 2 || len(c.Tracks) != 2 {
		t.Errorf("change = %+v, want version 2 with 2 tracks", c)
	}
	select {
	case extra := <-sub.Changed:
		t.Errorf("unexpected extra change %+v", extra)
	default:
	}

	m.Close()
	<-sub.Done
}

func TestManager_ClearResets(t *testing.T) {
	store := &fakeStore{tracks: []mixtape.Track{track("a")}}
	m := NewManager(store, authed, nil)
	_ = m.Load(context.Background())

	m.Clear()
	if m.Len() != 0 || m.Loaded() {
		t.Errorf("after Clear: len=%d loaded=%v", m.Len(), m.Loaded())
	}
}

func TestManager_CandidateScenario(t *testing.T) {
	backend := apitest.New(t)
	tok := backend.AddUser("ana", "ana@example.com", "pw")
	client := api.New(backend.URL, 0, nil)
	m := NewManager(client, session.Static{S: &session.Session{Token: tok}}, nil)
	ctx := context.Background()

	candidates := []mixtape.Track{track("c1"), track("c2"), track("c3"), track("c4"), track("c5")}
	if err := m.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := m.Add(ctx, candidates[1]); err != nil {
		t.Fatalf("Add(#2) error = %v", err)
	}
	if err := m.Add(ctx, candidates[3]); err != nil {
		t.Fatalf("Add(#4) error = %v", err)
	}

	if got := ids(m.Tracks()); !slices.Equal(got, []string{"c2", "c4"}) {
		t.Errorf("Tracks() = %v, want [c2 c4]", got)
	}
	if got := backend.Calls("/api/add_song"); got != 2 {
		t.Errorf("add calls = %d, want 2", got)
	}
	// One initial load plus one refetch per add.
	if got := backend.Calls("/api/mixtape_queue"); got != 3 {
		t.Errorf("queue fetches = %d, want 3", got)
	}
	if got := ids(backend.QueueOf(tok)); !slices.Equal(got, ids(m.Tracks())) {
		t.Errorf("local %v != server %v", ids(m.Tracks()), got)
	}
}
