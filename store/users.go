package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/alphabeta2023/cubegame/game"
)

// ErrUserExists reports a registration for a username that is taken.
var ErrUserExists = errors.New("username already exists")

// CreateUser stores a new user record. Usernames are case-insensitive.
func (s *Store) CreateUser(username, passwordHash string) error {
	_, err := s.db.Exec(`INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)`,
		strings.ToLower(username), passwordHash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "PRIMARY KEY constraint") {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// PasswordHash returns the stored hash for a username, or game.ErrNotFound.
func (s *Store) PasswordHash(username string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT password_hash FROM users WHERE username = ?`,
		strings.ToLower(username)).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", game.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// UserExists reports whether a username is registered.
func (s *Store) UserExists(username string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM users WHERE username = ?`,
		strings.ToLower(username)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
