// Package session owns the process-wide authentication state: the
// current user, the loading flag the UI gates on, and the last auth
// error. One Manager is created at startup and lives for the life of
// the process; everything that needs the session receives it
// explicitly.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/openpress/quill/internal/api"
	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/token"
	"github.com/openpress/quill/internal/tokenstore"
	apperrors "github.com/openpress/quill/pkg/errors"
)

// Manager holds the session lifecycle
type Manager struct {
	client *api.Client
	auth   *api.BearerToken
	store  *tokenstore.Store
	logger *zap.Logger

	cookieTTLDays int

	mu      sync.RWMutex
	user    *User
	loading bool
	errMsg  string

	initOnce sync.Once
}

// NewManager wires the token store, bearer holder and API client
// together. The manager starts in the loading state; callers must run
// Initialize before trusting IsAuthenticated.
func NewManager(cfg *config.Config, logger *zap.Logger) *Manager {
	auth := &api.BearerToken{}
	store := tokenstore.New(cfg.StateDir, cfg.IsProduction())
	client := api.NewClient(cfg, auth, store, logger)

	m := &Manager{
		client:        client,
		auth:          auth,
		store:         store,
		logger:        logger,
		cookieTTLDays: cfg.CookieTTLDays,
		loading:       true,
	}

	// Irrecoverable refresh failures anywhere in the client terminate
	// the session here.
	client.SetSessionEndHandler(m.dropSession)

	return m
}

// Client exposes the underlying API client for resource calls that
// ride on the session's credentials.
func (m *Manager) Client() *api.Client {
	return m.client
}

// Initialize restores a persisted session, once. A missing or invalid
// token ends in a clean logged-out state, never a surfaced error.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		defer m.setLoading(false)

		pair, err := m.store.Load()
		if err != nil {
			m.logger.Warn("failed to load persisted tokens", zap.Error(err))
			return
		}
		if pair == nil || pair.AccessToken == "" {
			return
		}

		if err := m.establish(ctx, pair.AccessToken, "", nil, true); err != nil {
			m.logger.Warn("session restore failed, dropping session", zap.Error(err))
			m.dropSession()
		}
	})
}

// Login authenticates and establishes a session
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	m.setError("")

	resp, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}

	if err := m.handleAuthResponse(ctx, resp); err != nil {
		m.setError(err.Error())
		return nil, err
	}
	return m.User(), nil
}

// Register creates an account and establishes a session
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*User, error) {
	m.setError("")

	resp, err := m.client.Register(ctx, req)
	if err != nil {
		m.setError(err.Error())
		return nil, err
	}

	if err := m.handleAuthResponse(ctx, resp); err != nil {
		m.setError(err.Error())
		return nil, err
	}
	return m.User(), nil
}

// UpdateProfile patches the user's own fields and merges the result
// into the session user.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]interface{}) error {
	m.setError("")

	updated, err := m.client.UpdateProfile(ctx, fields)
	if err != nil {
		m.setError(err.Error())
		return err
	}

	m.mu.Lock()
	if m.user != nil {
		mergeUserFields(m.user, updated)
	}
	m.mu.Unlock()
	return nil
}

// Logout drops the session unconditionally, notifying the server
// best-effort first. It never fails and calling it twice leaves the
// same state as calling it once.
func (m *Manager) Logout(ctx context.Context) {
	if m.IsAuthenticated() {
		m.client.Logout(ctx)
	}
	m.dropSession()
	m.setError("")
}

// ClearError resets the last auth error
func (m *Manager) ClearError() {
	m.setError("")
}

// User returns the current session user, nil when logged out
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// IsAuthenticated reports whether a user is established
func (m *Manager) IsAuthenticated() bool {
	return m.User() != nil
}

// Loading reports whether startup initialization has settled. UI must
// not render protected content while this is true.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the last auth error message, empty when none
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

// handleAuthResponse establishes a session from a login or register
// payload.
func (m *Manager) handleAuthResponse(ctx context.Context, resp *api.AuthResponse) error {
	var user *User
	if resp.User != nil {
		user = fromAPIUser(resp.User)
	}
	return m.establish(ctx, resp.Token, resp.Refresh, user, false)
}

// establish runs the session-establishment sequence: validate the
// token, persist the pair, publish the bearer token, resolve the user,
// publish the session. fetchProfile is set on the startup-from-token
// path, where no user payload exists and the profile endpoint fills the
// gap. A profile fetch failure falls back to claims alone.
func (m *Manager) establish(ctx context.Context, access, refresh string, user *User, fetchProfile bool) error {
	if access == "" {
		return m.invalidSession(apperrors.ErrMissingCredentials)
	}

	claims, err := token.Decode(access)
	if err != nil {
		return m.invalidSession(err)
	}

	if user == nil && claims.SubjectID() == 0 {
		return m.invalidSession(apperrors.ErrMissingCredentials)
	}

	if err := m.store.Save(token.Pair(access, refresh, claims.ExpiresAtTime()), m.cookieTTLDays); err != nil {
		m.logger.Warn("failed to persist credentials", zap.Error(err))
	}
	m.auth.Set(access)

	if user == nil {
		user = &User{
			ID:       claims.SubjectID(),
			Username: claims.Username,
			Email:    claims.Email,
		}
		if user.Username == "" {
			user.Username = "User"
		}

		if fetchProfile {
			if profile, err := m.client.GetProfile(ctx, user.ID); err != nil {
				m.logger.Warn("could not fetch user profile, using token data only", zap.Error(err))
			} else {
				user.Profile = profile
				if profile.User != nil {
					if profile.User.Username != "" {
						user.Username = profile.User.Username
					}
					if profile.User.Email != "" {
						user.Email = profile.User.Email
					}
				}
			}
		}
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return nil
}

// invalidSession performs a full logout and surfaces the failure as an
// invalid session, keeping the root cause in the chain.
func (m *Manager) invalidSession(cause error) error {
	m.dropSession()
	return fmt.Errorf("%w: %w", apperrors.ErrInvalidSession, cause)
}

// dropSession clears every trace of the session: stored tokens, the
// outbound bearer token and the published user.
func (m *Manager) dropSession() {
	m.auth.Clear()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear token store", zap.Error(err))
	}

	m.mu.Lock()
	m.user = nil
	m.mu.Unlock()
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}

func mergeUserFields(user *User, fields map[string]interface{}) {
	if v, ok := fields["username"].(string); ok && v != "" {
		user.Username = v
	}
	if v, ok := fields["email"].(string); ok && v != "" {
		user.Email = v
	}
	if v, ok := fields["user_type"].(string); ok && v != "" {
		user.UserType = v
	}
}
