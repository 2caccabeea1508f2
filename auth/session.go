// Package auth identifies who is making a request: password hashes,
// the signed session cookie and the gin middleware built on them.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cdfmlr/crud/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var logger = log.ZoneLogger("crewboard/auth")

const (
	SessionCookieName = "crewboard_session"
	DefaultSessionTTL = 7 * 24 * time.Hour
)

var ErrNoSession = errors.New("no session")

// Sessions issues and reads the session cookie: an HS256 JWT whose
// subject is the user id.
type Sessions struct {
	key    []byte
	ttl    time.Duration
	secure bool
}

// NewSessions signs sessions with key. A ttl <= 0 means DefaultSessionTTL.
// secure marks the cookie HTTPS-only.
func NewSessions(key []byte, ttl time.Duration, secure bool) (*Sessions, error) {
	if len(key) == 0 {
		return nil, errors.New("NewSessions: empty signing key")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{key: key, ttl: ttl, secure: secure}, nil
}

// Login establishes a session for userID on the response.
func (s *Sessions) Login(c *gin.Context, userID uint) error {
	token, err := s.sign(userID, time.Now())
	if err != nil {
		return fmt.Errorf("Login: %w", err)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(s.ttl/time.Second), "/", "", s.secure, true)
	return nil
}

// Logout clears the session cookie.
func (s *Sessions) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", s.secure, true)
}

// UserID returns the user id of a valid session on the request.
func (s *Sessions) UserID(c *gin.Context) (uint, error) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		return 0, ErrNoSession
	}
	return s.parse(raw)
}

func (s *Sessions) sign(userID uint, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Sessions) parse(raw string) (uint, error) {
	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrNoSession, claims.Subject)
	}
	return uint(id), nil
}
