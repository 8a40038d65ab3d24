package state

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

// DefaultHistoryLimit is the number of entries kept in prompt history.
const DefaultHistoryLimit = 200

// RecordPrompt appends a prompt and its analysis to the history and drops
// entries beyond DefaultHistoryLimit.
func (m *Manager) RecordPrompt(prompt string, a mixtape.AnalysisResult, at time.Time) error {
	keywords, err := json.Marshal(a.Keywords)
	if err != nil {
		return err
	}
	return withTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO prompt_history (prompt, mood, genre, language, keywords, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, prompt, a.Mood, a.Genre, a.Language, string(keywords), at.UnixMilli())
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			DELETE FROM prompt_history
			WHERE id NOT IN (
				SELECT id FROM prompt_history ORDER BY created_at DESC, id DESC LIMIT ?
			)
		`, DefaultHistoryLimit)
		return err
	})
}

// History returns up to limit entries, newest first. limit <= 0 means all.
func (m *Manager) History(limit int) ([]mixtape.HistoryEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := m.db.Query(`
		SELECT id, prompt, mood, genre, language, keywords, created_at
		FROM prompt_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []mixtape.HistoryEntry
	for rows.Next() {
		var (
			e                           mixtape.HistoryEntry
			mood, genre, lang, keywords sql.NullString
			created                     int64
		)
		if err := rows.Scan(&e.ID, &e.Prompt, &mood, &genre, &lang, &keywords, &created); err != nil {
			return nil, err
		}
		e.Analysis = mixtape.AnalysisResult{
			Mood:     nullStringValue(mood),
			Genre:    nullStringValue(genre),
			Language: nullStringValue(lang),
		}
		if kw := nullStringValue(keywords); kw != "" {
			_ = json.Unmarshal([]byte(kw), &e.Analysis.Keywords)
		}
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearHistory deletes all history entries.
func (m *Manager) ClearHistory() error {
	_, err := m.db.Exec(`DELETE FROM prompt_history`)
	return err
}
