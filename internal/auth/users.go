package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBadCredentials is returned for unknown users and wrong passwords
// alike, so a caller cannot distinguish the two.
var ErrBadCredentials = errors.New("invalid email or password")

// Store verifies and manages user credentials in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the users table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			email         TEXT PRIMARY KEY,
			password_salt TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}

// CreateUser registers a user with a fresh random salt. Existing users
// keep their current credentials.
func (s *Store) CreateUser(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (email, password_salt, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		email, saltHex, digest(saltHex, password))
	if err != nil {
		return fmt.Errorf("creating user %s: %w", email, err)
	}
	return nil
}

// Authenticate checks a password against the stored digest.
func (s *Store) Authenticate(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	var salt, hash string
	err := s.pool.QueryRow(ctx,
		`SELECT password_salt, password_hash FROM users WHERE email = $1`,
		email).Scan(&salt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		// Burn a comparison so unknown users cost the same as wrong
		// passwords.
		subtle.ConstantTimeCompare([]byte(digest("", password)), []byte(digest("", "")))
		return ErrBadCredentials
	}
	if err != nil {
		return fmt.Errorf("looking up user %s: %w", email, err)
	}

	if subtle.ConstantTimeCompare([]byte(digest(salt, password)), []byte(hash)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// digest hashes a password with its salt, hex encoded.
func digest(saltHex, password string) string {
	sum := sha256.Sum256([]byte(saltHex + ":" + password))
	return hex.EncodeToString(sum[:])
}
