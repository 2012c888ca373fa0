package http

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type RouterConfig struct {
	Auth          *AuthHandler
	Events        *EventHandler
	Subscriptions *SubscriptionHandler
	Time          *TimeHandler
	DebugToken    *DebugTokenHandler
	Authenticator TokenAuthenticator
	Logger        *slog.Logger
	MaxBodyBytes  int64
	Middleware    []func(http.Handler) http.Handler
}

// NewRouter wires the API routes. Public routes need no token, protected
// routes run RequireToken, and admin routes add RequireAdmin on top.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)

	router := httprouter.New()
	router.HandleMethodNotAllowed = true
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusNotFound, errRouteNotFound)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responder.writeError(r.Context(), w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})
	// httprouter fills in the Allow header; CORS headers come from the outer
	// middleware.
	router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var protected, admin []func(http.Handler) http.Handler
	if cfg.Authenticator != nil {
		protected = []func(http.Handler) http.Handler{RequireToken(cfg.Authenticator, logger)}
		admin = append(protected, RequireAdmin(logger))
	}

	public := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, h)
	}
	withToken := func(method, path string, h http.HandlerFunc) {
		if protected == nil {
			return
		}
		router.Handler(method, path, chain(h, protected...))
	}
	withAdmin := func(method, path string, h http.HandlerFunc) {
		if admin == nil {
			return
		}
		router.Handler(method, path, chain(h, admin...))
	}

	if cfg.Auth != nil {
		public(http.MethodPost, "/register", cfg.Auth.Register)
		public(http.MethodPost, "/login", cfg.Auth.Login)
		withToken(http.MethodGet, "/me", cfg.Auth.Me)
	}

	if cfg.Events != nil {
		public(http.MethodGet, "/events", cfg.Events.List)
		public(http.MethodGet, "/events/:id", cfg.Events.Get)
		withAdmin(http.MethodPost, "/events", cfg.Events.Create)
		withAdmin(http.MethodPatch, "/events/:id", cfg.Events.Update)
		withAdmin(http.MethodDelete, "/events/:id", cfg.Events.Delete)
	}

	if cfg.Subscriptions != nil {
		withToken(http.MethodPost, "/subscribe", cfg.Subscriptions.Subscribe)
		withToken(http.MethodPost, "/unsubscribe", cfg.Subscriptions.Unsubscribe)
		withToken(http.MethodGet, "/subscriptions/:eventId", cfg.Subscriptions.Status)
		withToken(http.MethodGet, "/my-subscriptions", cfg.Subscriptions.Mine)
	}

	if cfg.Time != nil {
		router.Handler(http.MethodGet, "/time", cfg.Time)
	}
	if cfg.DebugToken != nil {
		router.Handler(http.MethodGet, "/debug-token", cfg.DebugToken)
	}

	middleware := append([]func(http.Handler) http.Handler{}, cfg.Middleware...)
	middleware = append(middleware, CORS(), LimitRequestBody(cfg.MaxBodyBytes))
	return chain(router, middleware...)
}
