// internal/state/interface.go
package state

import (
	"database/sql"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB
	session.Store
	RecordPrompt(prompt string, a mixtape.AnalysisResult, at time.Time) error
	History(limit int) ([]mixtape.HistoryEntry, error)
	ClearHistory() error
	LoadColor(url string) (colorful.Color, bool, error)
	SaveColor(url string, c colorful.Color) error
	GetPrefs() (Prefs, error)
	SavePrefs(p Prefs)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
