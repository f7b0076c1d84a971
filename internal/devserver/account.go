package devserver

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Account is a registered user of the fixture API
type Account struct {
	ID             int       `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordDigest string    `db:"password_digest" json:"-"`
	UserType       string    `db:"user_type" json:"user_type"`
	Bio            string    `db:"bio" json:"bio"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Store sentinel errors
var (
	ErrUsernameTaken = errors.New("a user with that username already exists")
	ErrEmailTaken    = errors.New("a user with this email already exists")
)

// AccountStore persists accounts. The default is in-memory; a Postgres
// implementation backs it when a database URL is configured.
type AccountStore interface {
	Create(ctx context.Context, acct *Account) error
	FindByID(ctx context.Context, id int) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Update(ctx context.Context, acct *Account) error
}

// MemoryAccountStore keeps accounts in process memory
type MemoryAccountStore struct {
	mu     sync.RWMutex
	nextID int
	byID   map[int]*Account
}

// NewMemoryAccountStore creates an empty in-memory account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{nextID: 1, byID: make(map[int]*Account)}
}

// Create assigns an id and stores the account, enforcing username and
// email uniqueness the way the real API does.
func (s *MemoryAccountStore) Create(_ context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.Username == acct.Username {
			return ErrUsernameTaken
		}
		if existing.Email == acct.Email {
			return ErrEmailTaken
		}
	}

	now := time.Now()
	acct.ID = s.nextID
	acct.CreatedAt = now
	acct.UpdatedAt = now
	s.nextID++

	copied := *acct
	s.byID[acct.ID] = &copied
	return nil
}

// FindByID returns the account with the given id, nil when absent
func (s *MemoryAccountStore) FindByID(_ context.Context, id int) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *acct
	return &copied, nil
}

// FindByEmail returns the account with the given email, nil when absent
func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.byID {
		if acct.Email == email {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, nil
}

// FindByUsername returns the account with the given username, nil when absent
func (s *MemoryAccountStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, acct := range s.byID {
		if acct.Username == username {
			copied := *acct
			return &copied, nil
		}
	}
	return nil, nil
}

// List returns all accounts ordered by id
func (s *MemoryAccountStore) List(_ context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.byID))
	for _, acct := range s.byID {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces a stored account's mutable fields
func (s *MemoryAccountStore) Update(_ context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[acct.ID]
	if !ok {
		return errors.New("account not found")
	}

	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = time.Now()
	copied := *acct
	s.byID[acct.ID] = &copied
	return nil
}
