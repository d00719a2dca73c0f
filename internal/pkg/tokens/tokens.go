// Package tokens signs and verifies the three JWT kinds the service issues:
// short-lived access tokens, long-lived refresh tokens, and email tokens used
// for address confirmation and password reset links. Each kind carries a
// distinct scope claim so one can never stand in for another.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongScope   = errors.New("invalid scope for token")
)

type claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// Service issues and parses tokens with a single HMAC secret.
type Service struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

// NewService builds a token service. TTLs of zero fall back to sane values.
func NewService(secret string, accessTTL, refreshTTL, emailTTL time.Duration) *Service {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if emailTTL <= 0 {
		emailTTL = 24 * time.Hour
	}
	return &Service{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
	}
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BcryptHasher adapts the package-level hash helpers to the interfaces the
// HTTP layer consumes.
type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) (string, error) { return HashPassword(password) }

func (BcryptHasher) Verify(hash, password string) bool { return VerifyPassword(hash, password) }

// CreateAccessToken signs an access token for the given user.
func (s *Service) CreateAccessToken(email string) (string, error) {
	return s.sign(email, ScopeAccess, s.accessTTL)
}

// CreateRefreshToken signs a refresh token for the given user.
func (s *Service) CreateRefreshToken(email string) (string, error) {
	return s.sign(email, ScopeRefresh, s.refreshTTL)
}

// CreateEmailToken signs a token embedded in confirmation / reset links.
func (s *Service) CreateEmailToken(email string) (string, error) {
	return s.sign(email, ScopeEmail, s.emailTTL)
}

func (s *Service) sign(email, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scope: scope,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", scope, err)
	}
	return signed, nil
}

// ParseAccessToken validates an access token and returns the subject email.
func (s *Service) ParseAccessToken(tokenString string) (string, error) {
	return s.parse(tokenString, ScopeAccess)
}

// DecodeRefreshToken validates a refresh token and returns the subject email.
func (s *Service) DecodeRefreshToken(tokenString string) (string, error) {
	return s.parse(tokenString, ScopeRefresh)
}

// EmailFromToken validates an email token and returns the subject email.
func (s *Service) EmailFromToken(tokenString string) (string, error) {
	return s.parse(tokenString, ScopeEmail)
}

func (s *Service) parse(tokenString, wantScope string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if c.Scope != wantScope {
		return "", ErrWrongScope
	}
	if c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
