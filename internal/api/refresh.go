package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/openpress/quill/internal/token"
	apperrors "github.com/openpress/quill/pkg/errors"
)

// refreshRequest is the body posted to the refresh endpoints
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refreshResponse carries the replacement access token
type refreshResponse struct {
	Access string `json:"access"`
}

// refreshAccessToken obtains a new access token from the refresh
// endpoints and publishes it. The refresh token is loaded from the
// store, falling back to the legacy storage location; any legacy hit is
// migrated into the store so the next run finds it in one place.
//
// Returns ErrNoRefreshToken when neither location holds a token and
// ErrRefreshFailed when the endpoints cannot produce an access token.
// Callers treat both as session-ending.
//
// Concurrent 401s each run their own refresh. That is redundant network
// traffic, not a correctness problem: the store write and the bearer
// update are both last-write-wins over interchangeable tokens.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := c.loadRefreshToken()
	if err != nil {
		recordRefresh(false)
		return "", err
	}

	var out refreshResponse
	err = c.do(ctx, request{
		method:    http.MethodPost,
		paths:     []string{"/auth/token/refresh/", "/token/refresh/"},
		body:      refreshRequest{Refresh: refresh},
		noRefresh: true,
	}, &out)
	if err != nil {
		recordRefresh(false)
		c.logger.Warn("token refresh failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", apperrors.ErrRefreshFailed, err)
	}

	if out.Access == "" {
		recordRefresh(false)
		return "", fmt.Errorf("%w: no access token in response", apperrors.ErrRefreshFailed)
	}

	// Persist the replacement access token; the refresh token is
	// unchanged and stays as stored.
	if err := c.store.Save(token.Pair(out.Access, "", claimExpiry(out.Access)), c.cookieTTLDays); err != nil {
		c.logger.Warn("failed to persist refreshed access token", zap.Error(err))
	}
	c.auth.Set(out.Access)

	recordRefresh(true)
	c.logger.Debug("access token refreshed")
	return out.Access, nil
}

// claimExpiry reads the exp claim for store bookkeeping; zero when the
// token will not decode (the server is trusted to have issued it fresh).
func claimExpiry(access string) time.Time {
	claims, err := token.Decode(access)
	if err != nil {
		return time.Time{}
	}
	return claims.ExpiresAtTime()
}

func (c *Client) loadRefreshToken() (string, error) {
	pair, err := c.store.Load()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrNoRefreshToken, err)
	}
	if pair != nil && pair.RefreshToken != "" {
		return pair.RefreshToken, nil
	}

	// Legacy storage fallback, migrated into the store on discovery
	legacy, err := c.store.LoadLegacyRefreshToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrNoRefreshToken, err)
	}
	if legacy == "" {
		return "", apperrors.ErrNoRefreshToken
	}

	if err := c.store.SaveRefreshToken(legacy, c.cookieTTLDays); err != nil {
		c.logger.Warn("failed to migrate legacy refresh token", zap.Error(err))
	} else {
		c.logger.Info("migrated refresh token from legacy storage")
	}
	return legacy, nil
}
