package state

import (
	"database/sql"
	"errors"
)

// Prefs are the persisted player preferences.
type Prefs struct {
	Volume float64
	Muted  bool
}

// DefaultPrefs is returned when nothing was saved yet.
var DefaultPrefs = Prefs{Volume: 1.0}

// GetPrefs returns the saved player preferences.
func (m *Manager) GetPrefs() (Prefs, error) {
	return getPrefs(m.db)
}

func getPrefs(db *sql.DB) (Prefs, error) {
	var p Prefs
	row := db.QueryRow(`SELECT volume, muted FROM player_prefs WHERE id = 1`)
	err := row.Scan(&p.Volume, &p.Muted)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPrefs, nil
	}
	if err != nil {
		return Prefs{}, err
	}
	return p, nil
}

func savePrefs(db *sql.DB, p Prefs) error {
	_, err := db.Exec(`
		INSERT INTO player_prefs (id, volume, muted)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted
	`, p.Volume, p.Muted)
	return err
}
