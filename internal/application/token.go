package application

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the caller identity.
func (c Claims) Principal() Principal {
	p := Principal{
		UserID:  c.UserID,
		Email:   c.Email,
		IsAdmin: c.IsAdmin,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

// IssuedToken is a signed token together with the claims it carries.
type IssuedToken struct {
	Token  string
	Claims Claims
}

// ExpiresAt returns the exp claim.
func (t IssuedToken) ExpiresAt() time.Time {
	if t.Claims.ExpiresAt == nil {
		return time.Time{}
	}
	return t.Claims.ExpiresAt.Time
}

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	Secret         string
	TTL            time.Duration
	ClockTolerance time.Duration
	Now            func() time.Time
}

// DefaultTokenTTL and DefaultClockTolerance apply when TokenConfig leaves the
// corresponding field zero.
const (
	DefaultTokenTTL       = time.Hour
	DefaultClockTolerance = 300 * time.Second
)

// TokenManager issues and verifies HS256 session tokens with a process-wide
// secret. It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	tolerance time.Duration
	now       func() time.Time
	parser    *jwt.Parser
}

// NewTokenManager fails with *ConfigurationError when the secret is empty;
// there is no fallback secret.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, &ConfigurationError{Setting: "token secret", Reason: "must not be empty"}
	}
	if cfg.TTL < 0 || cfg.ClockTolerance < 0 {
		return nil, &ConfigurationError{Setting: "token timing", Reason: "durations must not be negative"}
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := &TokenManager{
		secret:    []byte(cfg.Secret),
		ttl:       cfg.TTL,
		tolerance: cfg.ClockTolerance,
		now:       cfg.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.tolerance),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for user. isAdmin is embedded as given and is not
// re-derived when the token is later verified.
func (m *TokenManager) Issue(user User, isAdmin bool) (IssuedToken, error) {
	if user.ID == "" || user.Email == "" {
		return IssuedToken{}, fmt.Errorf("issue token: user id and email are required")
	}

	issuedAt := m.now().Truncate(time.Second)
	claims := Claims{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}
	return IssuedToken{Token: signed, Claims: claims}, nil
}

// Verify checks structure, signature and expiry, in that order.
//
// The token is accepted while now < exp + clock tolerance. Failures are
// ErrMissingCredential, ErrMalformedToken, ErrInvalidSignature or
// *ExpiredError.
func (m *TokenManager) Verify(presented string) (Claims, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return Claims{}, ErrMissingCredential
	}

	var claims Claims
	_, err := m.parser.ParseWithClaims(presented, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			expired := &ExpiredError{Now: m.now()}
			if claims.ExpiresAt != nil {
				expired.ExpiredAt = claims.ExpiresAt.Time
			}
			return Claims{}, expired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if claims.UserID == "" || claims.Email == "" || claims.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: required claims missing", ErrMalformedToken)
	}

	return claims, nil
}
