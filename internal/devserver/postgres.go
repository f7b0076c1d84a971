package devserver

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresAccountStore persists accounts in PostgreSQL, for dev setups
// that want registrations to survive restarts.
type PostgresAccountStore struct {
	db *sqlx.DB
}

// NewPostgresAccountStore connects to PostgreSQL and ensures the
// accounts table exists.
func NewPostgresAccountStore(databaseURL string) (*PostgresAccountStore, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS accounts (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_digest TEXT NOT NULL,
		user_type TEXT NOT NULL DEFAULT 'regular',
		bio TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create accounts table: %w", err)
	}

	return &PostgresAccountStore{db: db}, nil
}

// Close closes the database connection
func (s *PostgresAccountStore) Close() error {
	return s.db.Close()
}

// Create inserts a new account, enforcing uniqueness
func (s *PostgresAccountStore) Create(ctx context.Context, acct *Account) error {
	if existing, err := s.FindByUsername(ctx, acct.Username); err != nil {
		return err
	} else if existing != nil {
		return ErrUsernameTaken
	}
	if existing, err := s.FindByEmail(ctx, acct.Email); err != nil {
		return err
	} else if existing != nil {
		return ErrEmailTaken
	}

	query := `INSERT INTO accounts (username, email, password_digest, user_type, bio)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		acct.Username, acct.Email, acct.PasswordDigest, acct.UserType, acct.Bio,
	).Scan(&acct.ID, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindByID finds an account by id
func (s *PostgresAccountStore) FindByID(ctx context.Context, id int) (*Account, error) {
	return s.findBy(ctx, "id = $1", id)
}

// FindByEmail finds an account by email
func (s *PostgresAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findBy(ctx, "email = $1", email)
}

// FindByUsername finds an account by username
func (s *PostgresAccountStore) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return s.findBy(ctx, "username = $1", username)
}

func (s *PostgresAccountStore) findBy(ctx context.Context, where string, arg interface{}) (*Account, error) {
	var acct Account
	query := `SELECT id, username, email, password_digest, user_type, bio, created_at, updated_at
			  FROM accounts WHERE ` + where

	err := s.db.GetContext(ctx, &acct, query, arg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &acct, nil
}

// List returns all accounts ordered by id
func (s *PostgresAccountStore) List(ctx context.Context) ([]Account, error) {
	var out []Account
	query := `SELECT id, username, email, password_digest, user_type, bio, created_at, updated_at
			  FROM accounts ORDER BY id`

	if err := s.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return out, nil
}

// Update replaces an account's mutable fields
func (s *PostgresAccountStore) Update(ctx context.Context, acct *Account) error {
	query := `UPDATE accounts
			  SET username = $2, email = $3, password_digest = $4, user_type = $5, bio = $6, updated_at = now()
			  WHERE id = $1
			  RETURNING updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		acct.ID, acct.Username, acct.Email, acct.PasswordDigest, acct.UserType, acct.Bio,
	).Scan(&acct.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}
