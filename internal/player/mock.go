// internal/player/mock.go
package player

import (
	"context"
	"sync"
	"time"
)

// Mock is a test double for Player.
type Mock struct {
	mu          sync.Mutex
	state       State
	handle      uint64
	loaded      bool
	loadErr     error
	playErr     error
	loadGate    chan struct{}
	loadCalls   []string
	playCalls   int
	pauseCalls  int
	unloadCalls int
	seekCalls   []time.Duration
	events      chan Event
	closed      bool
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:  Stopped,
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) Load(ctx context.Context, url string) (uint64, error) {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, url)
	gate := m.loadGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	m.handle++
	m.loaded = true
	m.state = Stopped
	return m.handle, nil
}

func (m *Mock) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	if !m.loaded {
		return ErrNotLoaded
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Seek(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, d)
}

func (m *Mock) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadCalls++
	if m.loaded {
		m.handle++
	}
	m.loaded = false
	m.state = Stopped
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

// BlockLoad makes Load wait until release is called or its context ends.
func (m *Mock) BlockLoad() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.loadGate = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.loadGate = nil
			m.mu.Unlock()
			close(gate)
		})
	}
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) UnloadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloadCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) Handle() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle
}

func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SimulateLoadedMetadata reports the duration of the current source.
func (m *Mock) SimulateLoadedMetadata(d time.Duration) {
	m.events <- Event{Kind: EventLoadedMetadata, Handle: m.Handle(), Duration: d}
}

// SimulateTimeUpdate reports a playback position for the current source.
func (m *Mock) SimulateTimeUpdate(pos time.Duration) {
	m.events <- Event{Kind: EventTimeUpdate, Handle: m.Handle(), Position: pos}
}

// SimulateFinished simulates the current source ending.
func (m *Mock) SimulateFinished() {
	m.mu.Lock()
	m.state = Stopped
	h := m.handle
	m.mu.Unlock()
	m.events <- Event{Kind: EventEnded, Handle: h}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
