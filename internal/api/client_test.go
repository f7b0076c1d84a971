package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/tokenstore"
	apperrors "github.com/openpress/quill/pkg/errors"
)

func newTestClient(t *testing.T, baseURL string) (*Client, *BearerToken, *tokenstore.Store) {
	t.Helper()

	auth := &BearerToken{}
	store := tokenstore.New(t.TempDir(), false)
	cfg := &config.Config{
		APIBaseURL:     baseURL,
		RequestTimeout: 5 * time.Second,
		CookieTTLDays:  7,
	}
	return NewClient(cfg, auth, store, zap.NewNop()), auth, store
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestEndpointFallback(t *testing.T) {
	var primaryHits, fallbackHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login/":
			atomic.AddInt32(&primaryHits, 1)
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		case "/login/":
			atomic.AddInt32(&fallbackHits, 1)
			writeJSON(w, http.StatusOK, AuthResponse{Token: "access", User: &User{ID: 1, Username: "alice"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)

	resp, err := client.Login(context.Background(), "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.Token != "access" || resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("Login() = %+v, want token and user from fallback path", resp)
	}
	if primaryHits != 1 || fallbackHits != 1 {
		t.Errorf("hits = %d primary, %d fallback, want 1 and 1", primaryHits, fallbackHits)
	}
}

func TestLoginSurfacesFieldErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Invalid credentials"},
		})
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)

	_, err := client.Login(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatal("Login() should fail")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %T, want *AuthError", err)
	}
	if authErr.Message != "Invalid credentials" {
		t.Errorf("Message = %q, want %q", authErr.Message, "Invalid credentials")
	}
	if authErr.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", authErr.Status)
	}
}

func TestRefreshReplayOn401(t *testing.T) {
	var refreshHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			atomic.AddInt32(&refreshHits, 1)
			var body refreshRequest
			json.NewDecoder(r.Body).Decode(&body)
			if body.Refresh != "refresh-1" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, refreshResponse{Access: "new-access"})
		case "/profiles/1/":
			if r.Header.Get("Authorization") != "Bearer new-access" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, Profile{ID: 1, UserType: "regular"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, auth, store := newTestClient(t, srv.URL)
	auth.Set("stale-access")
	if err := store.SaveRefreshToken("refresh-1", 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}

	profile, err := client.GetProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}
	if profile.ID != 1 {
		t.Errorf("GetProfile() = %+v, want profile 1", profile)
	}

	if refreshHits != 1 {
		t.Errorf("refresh endpoint hit %d times, want 1", refreshHits)
	}
	if got := auth.Get(); got != "new-access" {
		t.Errorf("bearer token = %q, want new-access", got)
	}

	pair, err := store.Load()
	if err != nil || pair == nil {
		t.Fatalf("store.Load() = %+v, %v", pair, err)
	}
	if pair.AccessToken != "new-access" {
		t.Errorf("stored access = %q, want new-access", pair.AccessToken)
	}
	if pair.RefreshToken != "refresh-1" {
		t.Errorf("stored refresh = %q, want refresh-1 untouched", pair.RefreshToken)
	}
}

func TestReplayHappensExactlyOnce(t *testing.T) {
	var profileHits, refreshHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			atomic.AddInt32(&refreshHits, 1)
			writeJSON(w, http.StatusOK, refreshResponse{Access: "new-access"})
		case "/profiles/1/":
			atomic.AddInt32(&profileHits, 1)
			// Still 401 after the refresh; the client must not loop
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, _, store := newTestClient(t, srv.URL)
	if err := store.SaveRefreshToken("refresh-1", 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}

	_, err := client.GetProfile(context.Background(), 1)
	if err == nil {
		t.Fatal("GetProfile() should fail on persistent 401")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Status != http.StatusUnauthorized {
		t.Errorf("error = %v, want *AuthError with status 401", err)
	}
	if profileHits != 2 {
		t.Errorf("protected endpoint hit %d times, want exactly 2", profileHits)
	}
	if refreshHits != 1 {
		t.Errorf("refresh endpoint hit %d times, want exactly 1", refreshHits)
	}
}

func TestRefreshFailureEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
	}))
	defer srv.Close()

	client, auth, store := newTestClient(t, srv.URL)
	auth.Set("stale-access")
	if err := store.SaveRefreshToken("dead-refresh", 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}

	var ended int32
	client.SetSessionEndHandler(func() { atomic.AddInt32(&ended, 1) })

	_, err := client.GetProfile(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrRefreshFailed) {
		t.Errorf("error = %v, want ErrRefreshFailed", err)
	}
	if ended != 1 {
		t.Errorf("session end handler called %d times, want 1", ended)
	}
}

func TestNoRefreshTokenEndsSession(t *testing.T) {
	var refreshHits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token/refresh/" || r.URL.Path == "/token/refresh/" {
			atomic.AddInt32(&refreshHits, 1)
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
	}))
	defer srv.Close()

	client, _, _ := newTestClient(t, srv.URL)

	var ended int32
	client.SetSessionEndHandler(func() { atomic.AddInt32(&ended, 1) })

	_, err := client.GetProfile(context.Background(), 1)
	if !errors.Is(err, apperrors.ErrNoRefreshToken) {
		t.Errorf("error = %v, want ErrNoRefreshToken", err)
	}
	if refreshHits != 0 {
		t.Errorf("refresh endpoint hit %d times, want 0 with nothing to post", refreshHits)
	}
	if ended != 1 {
		t.Errorf("session end handler called %d times, want 1", ended)
	}
}

func TestLegacyRefreshTokenMigration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			var body refreshRequest
			json.NewDecoder(r.Body).Decode(&body)
			// The migrated token, not an empty string, must be posted
			if body.Refresh != "legacy-token" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, refreshResponse{Access: "new-access"})
		case "/profiles/1/":
			if r.Header.Get("Authorization") != "Bearer new-access" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, Profile{ID: 1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	auth := &BearerToken{}
	store := tokenstore.New(dir, false)
	cfg := &config.Config{APIBaseURL: srv.URL, RequestTimeout: 5 * time.Second, CookieTTLDays: 7}
	client := NewClient(cfg, auth, store, zap.NewNop())

	if err := os.WriteFile(filepath.Join(dir, "refreshToken"), []byte("legacy-token"), 0o600); err != nil {
		t.Fatalf("writing legacy token: %v", err)
	}

	if _, err := client.GetProfile(context.Background(), 1); err != nil {
		t.Fatalf("GetProfile() error: %v", err)
	}

	pair, err := store.Load()
	if err != nil || pair == nil {
		t.Fatalf("store.Load() = %+v, %v", pair, err)
	}
	if pair.RefreshToken != "legacy-token" {
		t.Errorf("stored refresh = %q, want migrated legacy-token", pair.RefreshToken)
	}
}

func TestConcurrentRequestsWithStaleToken(t *testing.T) {
	var mu sync.Mutex
	issued := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token/refresh/":
			mu.Lock()
			issued++
			mu.Unlock()
			writeJSON(w, http.StatusOK, refreshResponse{Access: "fresh-access"})
		case "/profiles/1/":
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token_not_valid"})
				return
			}
			writeJSON(w, http.StatusOK, Profile{ID: 1})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, auth, store := newTestClient(t, srv.URL)
	auth.Set("stale-access")
	if err := store.SaveRefreshToken("refresh-1", 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}

	// Each 401 runs its own refresh; both callers must still succeed
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.GetProfile(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("request %d failed: %v", i, err)
		}
	}
	if got := auth.Get(); got != "fresh-access" {
		t.Errorf("bearer token = %q, want fresh-access", got)
	}
}

func TestNetworkErrorWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client, _, _ := newTestClient(t, srv.URL)

	_, err := client.ListArticles(context.Background())
	if err == nil {
		t.Fatal("ListArticles() should fail against a closed server")
	}
	if !errors.Is(err, apperrors.NewAppError(apperrors.ErrCodeNetworkError, "", 0)) {
		t.Errorf("error = %v, want NETWORK_ERROR classification", err)
	}
}
