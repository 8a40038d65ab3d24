package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/llehouerou/mixtape/internal/session"
)

// User is the account returned by the auth endpoints.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type meResponse struct {
	User User `json:"user"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	req := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return sessionFromAuth(resp)
}

// Signup creates an account and returns its session.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*session.Session, error) {
	req := map[string]string{"username": username, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/api/auth/signup", nil, req, &resp); err != nil {
		return nil, err
	}
	return sessionFromAuth(resp)
}

// Me returns the user the session belongs to.
func (c *Client) Me(ctx context.Context, sess *session.Session) (*User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	var resp meResponse
	if err := c.do(ctx, "fetch user", http.MethodGet, "/api/auth/me", sess, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func sessionFromAuth(resp authResponse) (*session.Session, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("auth response has no token")
	}
	s, err := session.FromToken(resp.Token)
	if err != nil {
		// Opaque tokens are still usable, only expiry is unknown.
		s = &session.Session{Token: resp.Token}
	}
	s.UserID = resp.User.ID
	s.Username = resp.User.Username
	s.Email = resp.User.Email
	return s, nil
}
