package client

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest is the registration form.
type RegisterRequest struct {
	UserName  string `json:"user_name"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserGroup string `json:"user_group"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// Identity is the server's answer to GET /me.
type Identity struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Exp     int64  `json:"exp"`
}

// Event mirrors the server event representation.
type Event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Place       string `json:"place"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// EventInput is the body of POST /events.
type EventInput struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Place       string `json:"place"`
	Image       string `json:"image"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
}

// EventPatch is the body of PATCH /events/{id}; nil fields are not sent.
type EventPatch struct {
	Name        *string `json:"name,omitempty"`
	Date        *string `json:"date,omitempty"`
	Place       *string `json:"place,omitempty"`
	Image       *string `json:"image,omitempty"`
	Price       *string `json:"price,omitempty"`
	Description *string `json:"description,omitempty"`
}

type subscriptionRequest struct {
	EventID string `json:"event_id"`
}

// ServerTime is the body of GET /time.
type ServerTime struct {
	NowMs  int64  `json:"nowMs"`
	NowISO string `json:"nowIso"`
}

type tokenClaims struct {
	UserID  string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// LocalClaims are token claims decoded without signature verification.
type LocalClaims struct {
	UserID    string
	Email     string
	IsAdmin   bool
	ExpiresAt time.Time
}

// ExpiredAt reports whether the token should be treated as expired at now,
// counting buffer as already elapsed. A token without exp is expired.
func (c LocalClaims) ExpiredAt(now time.Time, buffer time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return c.ExpiresAt.Before(now.Add(buffer))
}
