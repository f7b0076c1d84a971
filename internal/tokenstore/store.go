// Package tokenstore persists the credential pair across process runs,
// the way the browser client kept it in cookies. Records carry the same
// attributes the web client set (Path=/, SameSite=Strict, Secure in
// production, 7-day expiry) so a session exported here round-trips
// against the same API deployment.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/openpress/quill/internal/token"
)

const (
	accessCookieName  = "token"
	refreshCookieName = "refreshToken"

	cookieFileName = "cookies.json"
	// legacy pre-cookie storage location, read for migration only
	legacyFileName = "refreshToken"
)

// record mirrors the attributes js-cookie wrote for each value
type record struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	SameSite string    `json:"same_site"`
	Secure   bool      `json:"secure"`
	Expires  time.Time `json:"expires"`
}

func (r record) expired(now time.Time) bool {
	return !r.Expires.IsZero() && r.Expires.Before(now)
}

// Store is a file-backed credential store
type Store struct {
	dir    string
	secure bool
}

// New creates a store rooted at dir. secure marks records
// transport-secure, which production configs enable.
func New(dir string, secure bool) *Store {
	return &Store{dir: dir, secure: secure}
}

// Save persists the credential pair with the given TTL in days. The
// refresh record is only replaced when the pair carries a refresh token;
// an access-only save (the refresh path) leaves the stored one intact.
func (s *Store) Save(pair *oauth2.Token, ttlDays int) error {
	if pair == nil || pair.AccessToken == "" {
		return fmt.Errorf("cannot save empty credential pair")
	}

	records, err := s.read()
	if err != nil {
		return err
	}

	expires := time.Now().AddDate(0, 0, ttlDays)
	records[accessCookieName] = s.newRecord(accessCookieName, pair.AccessToken, expires)
	if pair.RefreshToken != "" {
		records[refreshCookieName] = s.newRecord(refreshCookieName, pair.RefreshToken, expires)
	}

	return s.write(records)
}

// SaveRefreshToken replaces only the refresh record. Used when migrating
// a token discovered in the legacy storage location.
func (s *Store) SaveRefreshToken(value string, ttlDays int) error {
	if value == "" {
		return fmt.Errorf("cannot save empty refresh token")
	}

	records, err := s.read()
	if err != nil {
		return err
	}

	records[refreshCookieName] = s.newRecord(refreshCookieName, value, time.Now().AddDate(0, 0, ttlDays))
	return s.write(records)
}

// Load returns the persisted credential pair, nil when nothing usable
// survives. Expired records are treated as absent.
func (s *Store) Load() (*oauth2.Token, error) {
	records, err := s.read()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var access, refresh string
	if r, ok := records[accessCookieName]; ok && !r.expired(now) {
		access = r.Value
	}
	if r, ok := records[refreshCookieName]; ok && !r.expired(now) {
		refresh = r.Value
	}

	if access == "" && refresh == "" {
		return nil, nil
	}
	return token.Pair(access, refresh, time.Time{}), nil
}

// LoadLegacyRefreshToken reads the pre-cookie storage location. Callers
// migrate any hit into the store via SaveRefreshToken.
func (s *Store) LoadLegacyRefreshToken() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, legacyFileName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read legacy refresh token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes all persisted credentials, legacy location included.
// Clearing an already-empty store succeeds.
func (s *Store) Clear() error {
	for _, name := range []string{cookieFileName, legacyFileName} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear token store: %w", err)
		}
	}
	return nil
}

func (s *Store) newRecord(name, value string, expires time.Time) record {
	return record{
		Name:     name,
		Value:    value,
		Path:     "/",
		SameSite: "strict",
		Secure:   s.secure,
		Expires:  expires,
	}
}

func (s *Store) read() (map[string]record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, cookieFileName))
	if os.IsNotExist(err) {
		return map[string]record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token store: %w", err)
	}

	var records map[string]record
	if err := json.Unmarshal(data, &records); err != nil {
		// A corrupt store is treated as empty rather than wedging the
		// session; the next save rewrites it.
		return map[string]record{}, nil
	}
	return records, nil
}

func (s *Store) write(records map[string]record) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token store: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, cookieFileName), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token store: %w", err)
	}
	return nil
}
