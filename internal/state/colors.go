package state

import (
	"database/sql"
	"errors"

	"github.com/lucasb-eyer/go-colorful"
)

// LoadColor returns the cached color for an artwork URL.
func (m *Manager) LoadColor(url string) (colorful.Color, bool, error) {
	var hex string
	err := m.db.QueryRow(`SELECT color FROM artwork_colors WHERE url = ?`, url).Scan(&hex)
	if errors.Is(err, sql.ErrNoRows) {
		return colorful.Color{}, false, nil
	}
	if err != nil {
		return colorful.Color{}, false, err
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, false, nil //nolint:nilerr // corrupt entries are resampled
	}
	return c, true, nil
}

// SaveColor caches the color sampled for an artwork URL.
func (m *Manager) SaveColor(url string, c colorful.Color) error {
	_, err := m.db.Exec(`
		INSERT INTO artwork_colors (url, color, sampled_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			color = excluded.color,
			sampled_at = excluded.sampled_at
	`, url, c.Clamped().Hex(), m.now().Unix())
	return err
}
