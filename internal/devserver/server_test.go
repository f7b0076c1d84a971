package devserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openpress/quill/internal/api"
	"github.com/openpress/quill/internal/config"
	"github.com/openpress/quill/internal/tokenstore"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := &config.DevServerConfig{
		Port: "0",
		Env:  "development",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		RateLimit: config.RateLimitConfig{Window: time.Minute, MaxAttempts: 10},
	}

	srv := NewServer(cfg, NewMemoryAccountStore(), nil, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newAPIClient(t *testing.T, baseURL string) (*api.Client, *api.BearerToken, *tokenstore.Store) {
	t.Helper()

	auth := &api.BearerToken{}
	store := tokenstore.New(t.TempDir(), false)
	cfg := &config.Config{
		APIBaseURL:     baseURL + "/api",
		RequestTimeout: 5 * time.Second,
		CookieTTLDays:  7,
	}
	return api.NewClient(cfg, auth, store, zap.NewNop()), auth, store
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)
	client, _, _ := newAPIClient(t, ts.URL)
	ctx := context.Background()

	resp, err := client.Register(ctx, api.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "changeme123",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if resp.Token == "" || resp.Refresh == "" {
		t.Fatal("Register() returned an incomplete token pair")
	}
	if resp.User == nil || resp.User.Username != "alice" || resp.User.UserType != "regular" {
		t.Errorf("Register() user = %+v, want regular alice", resp.User)
	}

	login, err := client.Login(ctx, "alice@example.com", "changeme123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if login.User == nil || login.User.ID != resp.User.ID {
		t.Errorf("Login() user = %+v, want id %d", login.User, resp.User.ID)
	}

	_, err = client.Login(ctx, "alice@example.com", "wrong-password")
	if err == nil {
		t.Fatal("Login() with a bad password should fail")
	}
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login() error = %T, want *api.AuthError", err)
	}
	if authErr.Message != "Invalid credentials" {
		t.Errorf("Message = %q, want %q", authErr.Message, "Invalid credentials")
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	_, ts := newTestServer(t)
	client, _, _ := newAPIClient(t, ts.URL)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       api.RegisterRequest
		wantField string
	}{
		{
			"short password",
			api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "short"},
			"password",
		},
		{
			"invalid email",
			api.RegisterRequest{Username: "bob", Email: "not-an-email", Password: "changeme123"},
			"email",
		},
		{
			"missing username",
			api.RegisterRequest{Email: "bob@example.com", Password: "changeme123"},
			"username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Register(ctx, tt.req)
			if err == nil {
				t.Fatal("Register() should fail")
			}
			var authErr *api.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("error = %T, want *api.AuthError", err)
			}
			if _, ok := authErr.FieldErrors[tt.wantField]; !ok {
				t.Errorf("FieldErrors = %v, want an entry for %q", authErr.FieldErrors, tt.wantField)
			}
		})
	}

	// Duplicate username
	if _, err := client.Register(ctx, api.RegisterRequest{
		Username: "carol", Email: "carol@example.com", Password: "changeme123",
	}); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	_, err := client.Register(ctx, api.RegisterRequest{
		Username: "carol", Email: "carol2@example.com", Password: "changeme123",
	})
	var authErr *api.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("duplicate Register() error = %T, want *api.AuthError", err)
	}
	if authErr.FieldErrors["username"] != "A user with that username already exists." {
		t.Errorf("FieldErrors[username] = %q", authErr.FieldErrors["username"])
	}
}

func TestStaleTokenRefreshedTransparently(t *testing.T) {
	_, ts := newTestServer(t)
	client, auth, store := newAPIClient(t, ts.URL)
	ctx := context.Background()

	resp, err := client.Register(ctx, api.RegisterRequest{
		Username: "dana", Email: "dana@example.com", Password: "changeme123",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	// Keep the real refresh token but publish a garbage access token; the
	// first authed call must 401, refresh, and replay.
	if err := store.SaveRefreshToken(resp.Refresh, 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}
	auth.Set("not-a-valid-token")

	category, err := client.CreateCategory(ctx, api.Category{Name: "Go", Description: "Gopher things"})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}

	article, err := client.CreateArticle(ctx, api.ArticleInput{
		Title:    "Hello",
		Content:  "First post",
		Category: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}
	if article.Author == nil || article.Author.Username != "dana" {
		t.Errorf("article author = %+v, want dana", article.Author)
	}

	if got := auth.Get(); got == "not-a-valid-token" || got == "" {
		t.Error("bearer token was not replaced by the refresh")
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	_, ts := newTestServer(t)
	client, _, _ := newAPIClient(t, ts.URL)
	ctx := context.Background()

	// No session at all: the 401 cannot be refreshed and must surface
	_, err := client.CreateArticle(ctx, api.ArticleInput{Title: "x", Content: "y", Category: 1})
	if err == nil {
		t.Fatal("CreateArticle() without credentials should fail")
	}

	// Public reads stay open
	if _, err := client.ListArticles(ctx); err != nil {
		t.Errorf("ListArticles() error: %v", err)
	}
}

func TestOwnerOrAdminEditRules(t *testing.T) {
	srv, ts := newTestServer(t)
	ctx := context.Background()

	owner, ownerAuth, ownerStore := newAPIClient(t, ts.URL)
	or, err := owner.Register(ctx, api.RegisterRequest{
		Username: "owner", Email: "owner@example.com", Password: "changeme123",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	seedSession(t, ownerAuth, ownerStore, or)

	other, otherAuth, otherStore := newAPIClient(t, ts.URL)
	xr, err := other.Register(ctx, api.RegisterRequest{
		Username: "other", Email: "other@example.com", Password: "changeme123",
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	seedSession(t, otherAuth, otherStore, xr)

	category, err := owner.CreateCategory(ctx, api.Category{Name: "News"})
	if err != nil {
		t.Fatalf("CreateCategory() error: %v", err)
	}
	article, err := owner.CreateArticle(ctx, api.ArticleInput{
		Title: "Mine", Content: "body", Category: category.ID,
	})
	if err != nil {
		t.Fatalf("CreateArticle() error: %v", err)
	}

	// A different regular user may not delete it
	err = other.DeleteArticle(ctx, article.ID)
	var authErr *api.AuthError
	if !errors.As(err, &authErr) || authErr.Status != 403 {
		t.Errorf("DeleteArticle() by non-owner = %v, want 403", err)
	}

	// Promote the other user to admin and retry
	acct, err := srv.accounts.FindByUsername(ctx, "other")
	if err != nil || acct == nil {
		t.Fatalf("looking up account: %v", err)
	}
	acct.UserType = "admin"
	if err := srv.accounts.Update(ctx, acct); err != nil {
		t.Fatalf("promoting account: %v", err)
	}

	if err := other.DeleteArticle(ctx, article.ID); err != nil {
		t.Errorf("DeleteArticle() by admin error: %v", err)
	}
}

// seedSession publishes an auth response's tokens into a client's state
func seedSession(t *testing.T, auth *api.BearerToken, store *tokenstore.Store, resp *api.AuthResponse) {
	t.Helper()
	auth.Set(resp.Token)
	if err := store.SaveRefreshToken(resp.Refresh, 7); err != nil {
		t.Fatalf("seeding refresh token: %v", err)
	}
}
