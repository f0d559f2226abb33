// Package auth issues and validates login tokens. User records live in the
// store; the signing key is bootstrapped into the data dir on first run.
package auth

import (
	"crypto/rand"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/alphabeta2023/cubegame/game"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUsernameTaken      = errors.New("username already exists")
)

// UserStore is the persistence auth needs.
type UserStore interface {
	CreateUser(username, passwordHash string) error
	PasswordHash(username string) (string, error)
	UserExists(username string) (bool, error)
}

type Service struct {
	users  UserStore
	jwtKey []byte
	issuer string
	ttl    time.Duration
}

// NewService loads (or generates) the signing key under dataDir.
func NewService(dataDir string, users UserStore, ttl time.Duration) (*Service, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	keyPath := filepath.Join(dataDir, "jwt.key")
	key, err := os.ReadFile(keyPath)
	if err != nil || len(key) < 32 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		if err := os.WriteFile(keyPath, key, 0o600); err != nil {
			return nil, err
		}
	}
	return &Service{users: users, jwtKey: key, issuer: "cubegame", ttl: ttl}, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return game.Validationf("username must not be blank")
	}
	if len(password) < 6 {
		return game.Validationf("password must be at least 6 characters")
	}
	exists, err := s.users.UserExists(username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.CreateUser(username, string(hash))
}

// Login verifies the password and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	hash, err := s.users.PasswordHash(username)
	if errors.Is(err, game.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub": strings.ToLower(strings.TrimSpace(username)),
		"iss": s.issuer,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtKey)
}

// Validate parses a token and returns the username it names. The user must
// still exist; a token for a deleted account is rejected.
func (s *Service) Validate(tok string) (string, error) {
	if tok == "" {
		return "", ErrInvalidToken
	}
	t, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.jwtKey, nil
	})
	if err != nil || !t.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	exists, err := s.users.UserExists(sub)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// BearerToken pulls the token from the Authorization header, falling back to
// the token query parameter.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
