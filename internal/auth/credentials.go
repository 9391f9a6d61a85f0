package auth

import (
	"errors"
	"fmt"

	"github.com/dfryer1193/quill/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const (
	DefaultUsername = "admin"
	defaultPassword = "admin"
)

// CredentialProvider checks a username/password pair
type CredentialProvider interface {
	Verify(username, password string) bool
}

var _ CredentialProvider = (*Table)(nil)

// Table maps usernames to bcrypt hashes; it is never written after construction
type Table struct {
	hashes map[string][]byte
}

// NewTable builds a Table from configured users.
// With no users it falls back to admin/admin and logs a warning.
func NewTable(users []config.User) (*Table, error) {
	t := &Table{hashes: make(map[string][]byte, len(users))}

	for _, u := range users {
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash for user %s: %w", u.Username, err)
		}
		t.hashes[u.Username] = []byte(u.PasswordHash)
	}

	if len(t.hashes) == 0 {
		hash, err := HashPassword(defaultPassword)
		if err != nil {
			return nil, err
		}
		t.hashes[DefaultUsername] = []byte(hash)
		log.Warn().Str("username", DefaultUsername).Msg("No admin users configured, using the default credentials")
	}

	return t, nil
}

// Verify reports whether password matches the stored hash for username
func (t *Table) Verify(username, password string) bool {
	return t.Check(username, password) == nil
}

// Check returns ErrInvalidCredentials for unknown users and wrong passwords
func (t *Table) Check(username, password string) error {
	hash, ok := t.hashes[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a salted bcrypt hash suitable for the config file
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
