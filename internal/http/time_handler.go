package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TimeHandler reports the server clock so clients can diagnose skew against
// token expiry.
type TimeHandler struct {
	now       func() time.Time
	responder responder
}

func NewTimeHandler(now func() time.Time) *TimeHandler {
	if now == nil {
		now = time.Now
	}
	return &TimeHandler{now: now, responder: newResponder(nil)}
}

func (h *TimeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, timeResponse{
		NowMs:  now.UnixMilli(),
		NowISO: now.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

type timeResponse struct {
	NowMs  int64  `json:"nowMs"`
	NowISO string `json:"nowIso"`
}

// DebugTokenHandler decodes a presented token without verifying it and
// reports it next to the server clock. The bearer header wins over the ?t=
// query parameter. Nothing it returns grants access.
type DebugTokenHandler struct {
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewDebugTokenHandler(now func() time.Time, logger *slog.Logger) *DebugTokenHandler {
	if now == nil {
		now = time.Now
	}
	logger = defaultLogger(logger)
	return &DebugTokenHandler{now: now, responder: newResponder(logger), logger: logger}
}

func (h *DebugTokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := extractTokenFromRequest(r)
	if raw == "" {
		raw = r.URL.Query().Get("t")
	}
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errNoTokenProvided)
		return
	}

	now := h.now().UTC()
	resp := debugTokenResponse{
		NowSec: now.Unix(),
		NowISO: now.Format("2006-01-02T15:04:05.000Z07:00"),
	}

	claims := jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(raw, claims)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "DebugTokenHandler", "Decode").DebugContext(r.Context(), "token not decodable", "error", err)
	} else {
		resp.Header = token.Header
		resp.Payload = claims
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

type debugTokenResponse struct {
	NowSec  int64          `json:"nowSec"`
	NowISO  string         `json:"nowIso"`
	Header  map[string]any `json:"header,omitempty"`
	Payload jwt.MapClaims  `json:"payload,omitempty"`
}
