// Package client is a Go client for the eventboard API. It keeps the session
// token in a TokenStore and offers the SessionGuard used before admin-only
// actions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Client talks to one eventboard server.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenStore
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTokenStore overrides where the session token is kept.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithClock overrides the time source used for local expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for baseURL, for example "http://localhost:3001".
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("client: base url %q must include scheme and host", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: 15 * time.Second},
		tokens:  &MemoryTokenStore{},
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Tokens exposes the token store.
func (c *Client) Tokens() TokenStore {
	return c.tokens
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register", req, nil, false)
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &resp, false); err != nil {
		return LoginResponse{}, err
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// Logout forgets the stored token. The server keeps no session state.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Me asks the server who the stored token belongs to.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodGet, "/me", nil, &identity, true)
	return identity, err
}

// Refresh tries POST /refresh and stores a returned token. It reports false
// for any failure, including the endpoint not existing.
func (c *Client) Refresh(ctx context.Context) bool {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/refresh", nil, &resp, false); err != nil {
		c.logger.DebugContext(ctx, "token refresh unavailable", "error", err)
		return false
	}
	if resp.Token == "" {
		return false
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		c.logger.WarnContext(ctx, "failed to store refreshed token", "error", err)
		return false
	}
	return true
}

func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	err := c.do(ctx, http.MethodGet, "/events", nil, &events, false)
	return events, err
}

func (c *Client) GetEvent(ctx context.Context, id string) (Event, error) {
	var event Event
	err := c.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), nil, &event, false)
	return event, err
}

func (c *Client) CreateEvent(ctx context.Context, input EventInput) (Event, error) {
	var event Event
	err := c.do(ctx, http.MethodPost, "/events", input, &event, true)
	return event, err
}

func (c *Client) UpdateEvent(ctx context.Context, id string, patch EventPatch) (Event, error) {
	var event Event
	err := c.do(ctx, http.MethodPatch, "/events/"+url.PathEscape(id), patch, &event, true)
	return event, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil, true)
}

// Subscribe reports whether a new subscription was created.
func (c *Client) Subscribe(ctx context.Context, eventID string) (bool, error) {
	status, err := c.doStatus(ctx, http.MethodPost, "/subscribe", subscriptionRequest{EventID: eventID}, nil, true)
	return status == http.StatusCreated, err
}

func (c *Client) Unsubscribe(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodPost, "/unsubscribe", subscriptionRequest{EventID: eventID}, nil, true)
}

func (c *Client) IsSubscribed(ctx context.Context, eventID string) (bool, error) {
	var resp struct {
		Subscribed bool `json:"subscribed"`
	}
	err := c.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(eventID), nil, &resp, true)
	return resp.Subscribed, err
}

func (c *Client) MySubscriptions(ctx context.Context) ([]Event, error) {
	var events []Event
	err := c.do(ctx, http.MethodGet, "/my-subscriptions", nil, &events, true)
	return events, err
}

// ServerTime returns the server clock.
func (c *Client) ServerTime(ctx context.Context) (ServerTime, error) {
	var resp ServerTime
	err := c.do(ctx, http.MethodGet, "/time", nil, &resp, false)
	return resp, err
}

// LocalClaims decodes the stored token without verifying its signature. The
// result is only fit for display; the server decides authorization.
func (c *Client) LocalClaims() (LocalClaims, error) {
	token, err := c.tokens.Load()
	if err != nil {
		return LocalClaims{}, err
	}
	if token == "" {
		return LocalClaims{}, ErrNoToken
	}
	return DecodeUnverified(token)
}

// DecodeUnverified reads the claims of token without checking its signature.
func DecodeUnverified(token string) (LocalClaims, error) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return LocalClaims{}, fmt.Errorf("client: decode token: %w", err)
	}

	local := LocalClaims{UserID: claims.UserID, Email: claims.Email, IsAdmin: claims.IsAdmin}
	if claims.ExpiresAt != nil {
		local.ExpiresAt = claims.ExpiresAt.Time
	}
	return local, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	_, err := c.doStatus(ctx, method, path, body, out, authenticated)
	return err
}

func (c *Client) doStatus(ctx context.Context, method, path string, body, out any, authenticated bool) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return 0, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticated {
		token, err := c.tokens.Load()
		if err != nil {
			return 0, err
		}
		if token == "" {
			return 0, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			// Non-JSON error bodies still yield a usable status.
			if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		apiErr.Status = resp.StatusCode
		return resp.StatusCode, apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("client: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
