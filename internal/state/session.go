package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/mixtape/internal/session"
)

// SaveSession persists s as the current session.
func (m *Manager) SaveSession(s *session.Session) error {
	var expires any
	if !s.ExpiresAt.IsZero() {
		expires = s.ExpiresAt.Unix()
	}
	_, err := m.db.Exec(`
		INSERT INTO session (id, user_id, username, email, token, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			username = excluded.username,
			email = excluded.email,
			token = excluded.token,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at
	`, s.UserID, s.Username, s.Email, s.Token, expires, m.now().Unix())
	return err
}

// LoadSession returns the persisted session, or nil if there is none.
func (m *Manager) LoadSession() (*session.Session, error) {
	var (
		s               session.Session
		username, email sql.NullString
		expires         sql.NullInt64
	)
	row := m.db.QueryRow(`SELECT user_id, username, email, token, expires_at FROM session WHERE id = 1`)
	err := row.Scan(&s.UserID, &username, &email, &s.Token, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Username = nullStringValue(username)
	s.Email = nullStringValue(email)
	if expires.Valid {
		s.ExpiresAt = time.Unix(expires.Int64, 0)
	}
	return &s, nil
}

// ClearSession removes the persisted session.
func (m *Manager) ClearSession() error {
	_, err := m.db.Exec(`DELETE FROM session WHERE id = 1`)
	return err
}
