package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/eventboard/internal/application"
)

type subscriptionService interface {
	Subscribe(ctx context.Context, principal application.Principal, eventID string) (bool, error)
	Unsubscribe(ctx context.Context, principal application.Principal, eventID string) error
	IsSubscribed(ctx context.Context, principal application.Principal, eventID string) (bool, error)
	ListForUser(ctx context.Context, principal application.Principal) ([]application.Event, error)
}

type SubscriptionHandler struct {
	service   subscriptionService
	responder responder
	logger    *slog.Logger
}

func NewSubscriptionHandler(service subscriptionService, logger *slog.Logger) *SubscriptionHandler {
	base := defaultLogger(logger)
	return &SubscriptionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SubscriptionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SubscriptionHandler", operation, attrs...)
}

// Subscribe answers 201 for a new subscription and 200 when it already existed.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Subscribe", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode subscription", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	created, err := h.service.Subscribe(r.Context(), principal, req.EventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, successResponse{Success: true})
}

func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Unsubscribe", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode subscription", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.Unsubscribe(r.Context(), principal, req.EventID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	subscribed, err := h.service.IsSubscribed(r.Context(), principal, pathParam(r, "eventId"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, subscriptionStatusResponse{Subscribed: subscribed})
}

func (h *SubscriptionHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	events, err := h.service.ListForUser(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

type subscriptionRequest struct {
	EventID string `json:"event_id"`
}

type subscriptionStatusResponse struct {
	Subscribed bool `json:"subscribed"`
}
