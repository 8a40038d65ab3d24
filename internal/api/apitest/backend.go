// Package apitest provides an in-memory mixtape backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/llehouerou/mixtape/internal/mixtape"
)

const secret = "apitest-secret"

// GenerateFunc answers a prompt submission.
type GenerateFunc func(prompt string) (mixtape.AnalysisResult, []mixtape.Track, error)

type user struct {
	id       int64
	username string
	email    string
	password string
}

type failure struct {
	status int
	msg    string
}

// Backend mimics the HTTP backend with per-user queues.
type Backend struct {
	*httptest.Server

	mu        sync.Mutex
	users     []user
	tokens    map[string]int64
	queues    map[int64][]mixtape.Track
	calls     map[string]int
	failures  map[string][]failure
	delays    map[string]chan struct{}
	generate  GenerateFunc
	batchPick []mixtape.Track
}

// New starts a backend that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		tokens:   make(map[string]int64),
		queues:   make(map[int64][]mixtape.Track),
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
		delays:   make(map[string]chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", b.handleSignup)
	mux.HandleFunc("POST /api/auth/login", b.handleLogin)
	mux.HandleFunc("GET /api/auth/me", b.authed(b.handleMe))
	mux.HandleFunc("GET /api/mixtape_queue", b.authed(b.handleQueue))
	mux.HandleFunc("POST /api/add_song", b.authed(b.handleAdd))
	mux.HandleFunc("POST /api/remove_song", b.authed(b.handleRemove))
	mux.HandleFunc("POST /api/generate", b.authed(b.handleGenerate))
	mux.HandleFunc("POST /api/generate_playlist_from_songs", b.authed(b.handleBatch))
	b.Server = httptest.NewServer(b.instrument(mux))
	t.Cleanup(b.Close)
	return b
}

// AddUser registers a user and returns a valid token for it.
func (b *Backend) AddUser(username, email, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := user{id: int64(len(b.users) + 1), username: username, email: email, password: password}
	b.users = append(b.users, u)
	return b.issueLocked(u.id)
}

// SetQueue replaces the persisted queue of the token's user.
func (b *Backend) SetQueue(token string, tracks []mixtape.Track) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queues[b.tokens[token]] = append([]mixtape.Track(nil), tracks...)
}

// QueueOf returns the persisted queue of the token's user.
func (b *Backend) QueueOf(token string) []mixtape.Track {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]mixtape.Track(nil), b.queues[b.tokens[token]]...)
}

// Calls returns how many requests hit path.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// TotalCalls returns the number of requests served.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

// Fail makes the next request to path answer status with an error body.
func (b *Backend) Fail(path string, status int, msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[path] = append(b.failures[path], failure{status: status, msg: msg})
}

// Hold blocks requests to path until the returned release func is called.
func (b *Backend) Hold(path string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.delays[path] = ch
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.delays, path)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// OnGenerate sets the prompt handler.
func (b *Backend) OnGenerate(fn GenerateFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generate = fn
}

// BatchPicks sets the tracks appended by playlist generation.
func (b *Backend) BatchPicks(tracks []mixtape.Track) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batchPick = append([]mixtape.Track(nil), tracks...)
}

func (b *Backend) issueLocked(id int64) string {
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(id, 10),
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": strconv.Itoa(len(b.tokens)),
	}).SignedString([]byte(secret))
	b.tokens[tok] = id
	return tok
}

func (b *Backend) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		hold := b.delays[r.URL.Path]
		var f *failure
		if fs := b.failures[r.URL.Path]; len(fs) > 0 {
			f = &fs[0]
			b.failures[r.URL.Path] = fs[1:]
		}
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold:
			case <-r.Context().Done():
				return
			}
		}
		if f != nil {
			writeError(w, f.status, f.msg)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authed(h func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tok == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}
		b.mu.Lock()
		id, known := b.tokens[tok]
		b.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		h(w, r, id)
	}
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct{ Username, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	b.mu.Lock()
	for _, u := range b.users {
		if u.email == req.Email {
			b.mu.Unlock()
			writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
	}
	u := user{id: int64(len(b.users) + 1), username: req.Username, email: req.Email, password: req.Password}
	b.users = append(b.users, u)
	tok := b.issueLocked(u.id)
	b.mu.Unlock()
	writeAuth(w, tok, u)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	for _, u := range b.users {
		if u.email == req.Email && u.password == req.Password {
			tok := b.issueLocked(u.id)
			b.mu.Unlock()
			writeAuth(w, tok, u)
			return
		}
	}
	b.mu.Unlock()
	writeError(w, http.StatusUnauthorized, "Invalid email or password")
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.id == id {
			writeJSON(w, http.StatusOK, map[string]any{"user": userJSON(u)})
			return
		}
	}
	writeError(w, http.StatusNotFound, "User not found")
}

func (b *Backend) handleQueue(w http.ResponseWriter, _ *http.Request, id int64) {
	b.mu.Lock()
	q := append([]mixtape.Track(nil), b.queues[id]...)
	b.mu.Unlock()
	if q == nil {
		q = []mixtape.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"queue": q})
}

func (b *Backend) handleAdd(w http.ResponseWriter, r *http.Request, id int64) {
	var t mixtape.Track
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil || t.ID == "" || t.Title == "" || t.Artist == "" || t.URI == "" {
		writeError(w, http.StatusBadRequest, "Missing required song data")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if mixtape.IndexOf(b.queues[id], t.ID) >= 0 {
		writeError(w, http.StatusBadRequest, "Song already in mixtape")
		return
	}
	b.queues[id] = append(b.queues[id], t)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) handleRemove(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		ID string `json:"spotify_track_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "Spotify track ID is required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	q := b.queues[id]
	i := mixtape.IndexOf(q, req.ID)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Song not found")
		return
	}
	b.queues[id] = append(q[:i:i], q[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request, _ int64) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	b.mu.Lock()
	gen := b.generate
	b.mu.Unlock()
	if gen == nil {
		writeError(w, http.StatusInternalServerError, "no generator configured")
		return
	}
	analysis, tracks, err := gen(req.Prompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"analysis":        analysis,
		"spotify_results": tracks,
		"prompt":          req.Prompt,
	})
}

func (b *Backend) handleBatch(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Songs []mixtape.SongRef `json:"songs"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	if len(req.Songs) < 4 {
		writeError(w, http.StatusBadRequest, "At least 4 songs are required")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	added := []mixtape.Track{}
	for _, t := range b.batchPick {
		if mixtape.IndexOf(b.queues[id], t.ID) < 0 {
			b.queues[id] = append(b.queues[id], t)
			added = append(added, t)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"added":         added,
		"not_found":     []mixtape.SongRef{},
		"mixtape_queue": b.queues[id],
	})
}

func userJSON(u user) map[string]any {
	return map[string]any{"id": u.id, "username": u.username, "email": u.email}
}

func writeAuth(w http.ResponseWriter, tok string, u user) {
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": userJSON(u)})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
