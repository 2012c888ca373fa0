package client

import (
	"context"
	"log/slog"
	"time"
)

// GuardState is the outcome of a session check.
type GuardState string

const (
	GuardChecking   GuardState = "checking"
	GuardOK         GuardState = "ok"
	GuardRedirected GuardState = "redirected"
)

// DefaultExpiryBuffer is subtracted from a token's lifetime before it is
// treated as expired locally.
const DefaultExpiryBuffer = 5 * time.Second

// GuardResult reports where a session check ended and why.
type GuardResult struct {
	State    GuardState
	Identity Identity
	Reason   string
}

// SessionGuard decides whether the stored session may use admin-only
// features. The server still enforces the same rules on every request.
type SessionGuard struct {
	client *Client
	buffer time.Duration
	logger *slog.Logger
}

func NewSessionGuard(c *Client) *SessionGuard {
	return &SessionGuard{
		client: c,
		buffer: DefaultExpiryBuffer,
		logger: c.logger.With(slog.String("component", "session_guard")),
	}
}

// Check runs the guard once. It never returns an error; every failure ends
// in GuardRedirected with a reason.
func (g *SessionGuard) Check(ctx context.Context) GuardResult {
	token, err := g.client.tokens.Load()
	if err != nil {
		return g.redirect(ctx, "token store unavailable: "+err.Error())
	}
	if token == "" {
		return g.redirect(ctx, "not logged in")
	}

	if g.locallyExpired(token) {
		if !g.client.Refresh(ctx) {
			if clearErr := g.client.tokens.Clear(); clearErr != nil {
				g.logger.WarnContext(ctx, "failed to clear expired token", "error", clearErr)
			}
			return g.redirect(ctx, "session expired")
		}
	}

	if identity, ok := g.checkMe(ctx); ok {
		return GuardResult{State: GuardOK, Identity: identity}
	}

	// The token may have become invalid between the local check and /me.
	if g.client.Refresh(ctx) {
		if identity, ok := g.checkMe(ctx); ok {
			return GuardResult{State: GuardOK, Identity: identity}
		}
	}
	return g.redirect(ctx, "administrator access required")
}

func (g *SessionGuard) locallyExpired(token string) bool {
	claims, err := DecodeUnverified(token)
	if err != nil {
		return true
	}
	return claims.ExpiredAt(g.client.now(), g.buffer)
}

func (g *SessionGuard) checkMe(ctx context.Context) (Identity, bool) {
	identity, err := g.client.Me(ctx)
	if err != nil {
		g.logger.DebugContext(ctx, "identity check failed", "error", err)
		return Identity{}, false
	}
	return identity, identity.IsAdmin
}

func (g *SessionGuard) redirect(ctx context.Context, reason string) GuardResult {
	g.logger.InfoContext(ctx, "session guard redirected", "reason", reason)
	return GuardResult{State: GuardRedirected, Reason: reason}
}
