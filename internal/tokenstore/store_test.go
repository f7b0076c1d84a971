package tokenstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openpress/quill/internal/token"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir(), false)

	pair := token.Pair("access-123", "refresh-456", time.Now().Add(time.Hour))
	if err := store.Save(pair, 7); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load() returned nil after save")
	}
	if loaded.AccessToken != "access-123" || loaded.RefreshToken != "refresh-456" {
		t.Errorf("Load() = %q/%q, want access-123/refresh-456", loaded.AccessToken, loaded.RefreshToken)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	store := New(t.TempDir(), false)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() = %+v, want nil from empty store", loaded)
	}
}

func TestSaveRejectsEmptyPair(t *testing.T) {
	store := New(t.TempDir(), false)

	if err := store.Save(nil, 7); err == nil {
		t.Error("Save(nil) should fail")
	}
	if err := store.Save(token.Pair("", "refresh", time.Time{}), 7); err == nil {
		t.Error("Save() without access token should fail")
	}
}

func TestAccessOnlySavePreservesRefresh(t *testing.T) {
	store := New(t.TempDir(), false)

	if err := store.Save(token.Pair("old-access", "keep-me", time.Time{}), 7); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	// The refresh path stores a replacement access token with no refresh
	if err := store.Save(token.Pair("new-access", "", time.Time{}), 7); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.AccessToken != "new-access" {
		t.Errorf("AccessToken = %q, want new-access", loaded.AccessToken)
	}
	if loaded.RefreshToken != "keep-me" {
		t.Errorf("RefreshToken = %q, want keep-me", loaded.RefreshToken)
	}
}

func TestExpiredRecordsAbsent(t *testing.T) {
	store := New(t.TempDir(), false)

	// TTL of -1 days makes both records already expired
	if err := store.Save(token.Pair("access", "refresh", time.Time{}), -1); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() = %+v, want nil when all records expired", loaded)
	}
}

func TestLegacyRefreshToken(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, false)

	// Nothing stored yet
	legacy, err := store.LoadLegacyRefreshToken()
	if err != nil {
		t.Fatalf("LoadLegacyRefreshToken() error: %v", err)
	}
	if legacy != "" {
		t.Errorf("LoadLegacyRefreshToken() = %q, want empty", legacy)
	}

	if err := os.WriteFile(filepath.Join(dir, "refreshToken"), []byte("legacy-token\n"), 0o600); err != nil {
		t.Fatalf("failed to write legacy file: %v", err)
	}

	legacy, err = store.LoadLegacyRefreshToken()
	if err != nil {
		t.Fatalf("LoadLegacyRefreshToken() error: %v", err)
	}
	if legacy != "legacy-token" {
		t.Errorf("LoadLegacyRefreshToken() = %q, want legacy-token", legacy)
	}

	// Migration path writes it into the cookie store
	if err := store.SaveRefreshToken(legacy, 7); err != nil {
		t.Fatalf("SaveRefreshToken() error: %v", err)
	}
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded == nil || loaded.RefreshToken != "legacy-token" {
		t.Errorf("Load() = %+v, want migrated refresh token", loaded)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, false)

	if err := store.Save(token.Pair("access", "refresh", time.Time{}), 7); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "refreshToken"), []byte("legacy"), 0o600); err != nil {
		t.Fatalf("failed to write legacy file: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() = %+v, want nil after clear", loaded)
	}
	legacy, err := store.LoadLegacyRefreshToken()
	if err != nil || legacy != "" {
		t.Errorf("legacy token survived clear: %q, %v", legacy, err)
	}

	// Clearing an already-empty store succeeds
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error: %v", err)
	}
}

func TestCorruptStoreTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, false)

	if err := os.WriteFile(filepath.Join(dir, "cookies.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt store: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error on corrupt store: %v", err)
	}
	if loaded != nil {
		t.Errorf("Load() = %+v, want nil from corrupt store", loaded)
	}

	// The next save rewrites the store cleanly
	if err := store.Save(token.Pair("access", "refresh", time.Time{}), 7); err != nil {
		t.Fatalf("Save() after corruption error: %v", err)
	}
	loaded, err = store.Load()
	if err != nil || loaded == nil || loaded.AccessToken != "access" {
		t.Errorf("store did not recover from corruption: %+v, %v", loaded, err)
	}
}

func TestSecureFlagOnRecords(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, true)

	if err := store.Save(token.Pair("access", "refresh", time.Time{}), 7); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	records, err := store.read()
	if err != nil {
		t.Fatalf("read() error: %v", err)
	}
	for name, r := range records {
		if !r.Secure {
			t.Errorf("record %s not marked secure", name)
		}
		if r.Path != "/" || r.SameSite != "strict" {
			t.Errorf("record %s attributes = %q/%q, want / and strict", name, r.Path, r.SameSite)
		}
	}
}
