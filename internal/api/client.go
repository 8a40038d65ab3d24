// Package api provides a client for the mixtape backend: authentication,
// the queue store, and the inference service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/llehouerou/mixtape/internal/mixtape"
	"github.com/llehouerou/mixtape/internal/session"
)

const (
	userAgent    = "mixtape/1.0"
	maxBodyBytes = 4 << 20
)

// Client is a backend API client. Credentials are passed per call; the
// client itself holds no session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a new backend client.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("api"),
	}
}

// errorBody covers both the backend's {"error": ...} and the JWT layer's {"msg": ...}.
type errorBody struct {
	Error string `json:"error"`
	Msg   string `json:"msg"`
}

func (c *Client) do(ctx context.Context, op, method, path string, sess *session.Session, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	c.setHeaders(req, sess, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &mixtape.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &mixtape.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return statusError(op, resp, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &mixtape.NetworkError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, sess *session.Session, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
}

func statusError(op string, resp *http.Response, data []byte) error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Msg
	}

	ne := &mixtape.NetworkError{Op: op, Status: resp.StatusCode, Message: msg}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusUnprocessableEntity:
		// flask-jwt-extended answers 422 for malformed tokens
		ne.Err = mixtape.ErrUnauthenticated
	}
	return ne
}

// requireSession guards calls that need credentials.
func requireSession(sess *session.Session) error {
	if sess == nil || sess.Token == "" {
		return mixtape.ErrUnauthenticated
	}
	return nil
}

// IsUnauthorized reports whether the backend rejected the credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, mixtape.ErrUnauthenticated)
}
