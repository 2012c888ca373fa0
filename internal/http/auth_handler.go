package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/eventboard/internal/application"
)

type authService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
	Login(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
	CurrentIdentity(ctx context.Context, principal application.Principal) (application.Identity, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Register handles POST /register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode registration", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), application.RegisterParams{
		DisplayName: req.UserName,
		Surname:     req.Surname,
		Email:       req.Email,
		Password:    req.Password,
		Group:       req.UserGroup,
		Phone:       req.Phone,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Register", "user_id", user.ID).InfoContext(r.Context(), "user registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, successResponse{Success: true})
}

// Login handles POST /login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode login", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), application.LoginParams{Email: req.Email, Password: req.Password})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     result.Token.Token,
		ExpiresAt: result.Token.ExpiresAt().UTC().Format(time.RFC3339Nano),
	})
}

// Me handles GET /me. The admin flag is recomputed from the stored user, so
// it may differ from the claim in the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.handleServiceError(r.Context(), w, application.ErrMissingCredential)
		return
	}

	identity, err := h.service.CurrentIdentity(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := meResponse{ID: identity.UserID, Email: identity.Email, IsAdmin: identity.IsAdmin}
	if !identity.ExpiresAt.IsZero() {
		resp.Exp = identity.ExpiresAt.Unix()
	}
	if identity.IsAdmin != principal.IsAdmin {
		h.log(r.Context(), "Me", "principal_id", principal.UserID).InfoContext(r.Context(),
			"admin claim differs from allow-list", "token_is_admin", principal.IsAdmin, "current_is_admin", identity.IsAdmin)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type registerRequest struct {
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

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

type meResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Exp     int64  `json:"exp"`
}
