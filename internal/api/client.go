// Package api is the HTTP client for the blog REST API. The remote API
// grew two route conventions over time (`/auth/X/` and `/X/`), so every
// operation carries an ordered list of candidate paths tried in
// sequence. Authorized calls that come back 401 are transparently
// retried once after a token refresh.
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
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/tokenstore"
	apperrors "github.com/openpress/quill/pkg/errors"
)

// BearerToken holds the current outbound Authorization token. It is
// injected into the client rather than living in ambient global state;
// the refresh coordinator and the session manager are its only writers,
// and writes are last-write-wins.
type BearerToken struct {
	mu    sync.RWMutex
	value string
}

// Set replaces the token
func (b *BearerToken) Set(value string) {
	b.mu.Lock()
	b.value = value
	b.mu.Unlock()
}

// Get returns the current token, empty when unauthenticated
func (b *BearerToken) Get() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value
}

// Clear removes the token
func (b *BearerToken) Clear() {
	b.Set("")
}

// Client performs calls against the remote blog API
type Client struct {
	baseURL       string
	httpClient    *http.Client
	auth          *BearerToken
	store         *tokenstore.Store
	logger        *zap.Logger
	cookieTTLDays int

	mu           sync.Mutex
	onSessionEnd func()
}

// NewClient creates a new API client. The bearer holder and token store
// are shared with the session manager that owns the login lifecycle.
func NewClient(cfg *config.Config, auth *BearerToken, store *tokenstore.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		auth:          auth,
		store:         store,
		logger:        logger,
		cookieTTLDays: cfg.CookieTTLDays,
	}
}

// SetSessionEndHandler registers the full-logout callback invoked when a
// token refresh fails irrecoverably.
func (c *Client) SetSessionEndHandler(fn func()) {
	c.mu.Lock()
	c.onSessionEnd = fn
	c.mu.Unlock()
}

func (c *Client) endSession() {
	c.mu.Lock()
	fn := c.onSessionEnd
	c.mu.Unlock()

	if fn != nil {
		fn()
		return
	}
	// No manager attached; drop credentials directly
	c.auth.Clear()
	if err := c.store.Clear(); err != nil {
		c.logger.Warn("failed to clear token store", zap.Error(err))
	}
}

// request describes one logical API operation
type request struct {
	method string
	paths  []string
	body   interface{}
	// authed calls get the 401-refresh-replay treatment
	authed bool
	// the refresh endpoint itself must never recurse into a refresh
	noRefresh bool
}

// do runs the request against each candidate path until one succeeds.
// A failed refresh ends the sequence immediately: the session is gone,
// alternate paths would only fail the same way.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	payload, err := marshalBody(r.body)
	if err != nil {
		return err
	}

	var lastErr error
	for i, path := range r.paths {
		if i > 0 {
			recordFallback()
			c.logger.Debug("endpoint failed, trying alternate path",
				zap.String("method", r.method),
				zap.String("path", path),
			)
		}

		err := c.attempt(ctx, r, path, payload, out)
		if err == nil {
			return nil
		}
		if errors.Is(err, apperrors.ErrNoRefreshToken) || errors.Is(err, apperrors.ErrRefreshFailed) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (c *Client) attempt(ctx context.Context, r request, path string, payload []byte, out interface{}) error {
	status, body, err := c.send(ctx, r.method, path, payload, "")
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && r.authed && !r.noRefresh {
		newToken, refreshErr := c.refreshAccessToken(ctx)
		if refreshErr != nil {
			c.endSession()
			return refreshErr
		}

		// Replay the original call exactly once with the new token. A
		// second 401 falls through to normal error handling.
		status, body, err = c.send(ctx, r.method, path, payload, newToken)
		if err != nil {
			return err
		}
	}

	if status >= 400 {
		return parseAuthError(status, body, fmt.Sprintf("request failed with status %d", status))
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// send issues a single HTTP exchange and returns the status and body.
// overrideToken, when set, replaces the held bearer token (the replay
// after a refresh uses it so concurrent writers cannot interleave).
func (c *Client) send(ctx context.Context, method, path string, payload []byte, overrideToken string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	bearer := overrideToken
	if bearer == "" {
		bearer = c.auth.Get()
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordRequest(method, 0, time.Since(start))
		return 0, nil, fmt.Errorf("%w: %s %s: %v",
			apperrors.NewAppError(apperrors.ErrCodeNetworkError, "request failed", 0), method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	recordRequest(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return payload, nil
}
