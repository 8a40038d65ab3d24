// internal/state/mock.go
package state

import (
	"database/sql"
	"slices"
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

// Mock is a test double for Manager.
type Mock struct {
	mu      sync.Mutex
	sess    *session.Session
	history []mixtape.HistoryEntry
	colors  map[string]colorful.Color
	prefs   Prefs
	closed  bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{colors: make(map[string]colorful.Color), prefs: DefaultPrefs}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) SaveSession(s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.sess = &copied
	return nil
}

func (m *Mock) LoadSession() (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	copied := *m.sess
	return &copied, nil
}

func (m *Mock) ClearSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

func (m *Mock) RecordPrompt(prompt string, a mixtape.AnalysisResult, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, mixtape.HistoryEntry{
		ID:        int64(len(m.history) + 1),
		Prompt:    prompt,
		Analysis:  a,
		CreatedAt: at,
	})
	return nil
}

func (m *Mock) History(limit int) ([]mixtape.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.history)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Mock) ClearHistory() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = nil
	return nil
}

func (m *Mock) LoadColor(url string) (colorful.Color, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colors[url]
	return c, ok, nil
}

func (m *Mock) SaveColor(url string, c colorful.Color) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.colors[url] = c
	return nil
}

func (m *Mock) GetPrefs() (Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *Mock) SavePrefs(p Prefs) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
