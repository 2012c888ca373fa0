package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/example/eventboard/internal/application"
)

type eventService interface {
	List(ctx context.Context) ([]application.Event, error)
	Get(ctx context.Context, id string) (application.Event, error)
	Create(ctx context.Context, principal application.Principal, input application.EventInput) (application.Event, error)
	Update(ctx context.Context, principal application.Principal, id string, patch application.EventPatch) (application.Event, error)
	Delete(ctx context.Context, principal application.Principal, id string) error
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.service.List(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTOs(events))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	event, err := h.service.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode event", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	event, err := h.service.Create(r.Context(), principal, req.input())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode event patch", "error", err)
		h.responder.writeDecodeError(w, r, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	event, err := h.service.Update(r.Context(), principal, pathParam(r, "id"), req.patch())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, pathParam(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func pathParam(r *http.Request, name string) string {
	return httprouter.ParamsFromContext(r.Context()).ByName(name)
}

type eventDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Place       string `json:"place"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

func toEventDTO(event application.Event) eventDTO {
	return eventDTO{
		ID:          event.ID,
		Name:        event.Name,
		Date:        event.Date,
		Place:       event.Place,
		Image:       event.Image,
		Price:       event.Price,
		Description: event.Description,
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	dtos := make([]eventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, toEventDTO(event))
	}
	return dtos
}

type eventRequest struct {
	Name        string         `json:"name"`
	Date        string         `json:"date"`
	Place       string         `json:"place"`
	Image       string         `json:"image"`
	Price       flexibleString `json:"price"`
	Description string         `json:"description"`
}

func (req eventRequest) input() application.EventInput {
	return application.EventInput{
		Name:        req.Name,
		Date:        req.Date,
		Place:       req.Place,
		Image:       req.Image,
		Price:       string(req.Price),
		Description: req.Description,
	}
}

type eventPatchRequest struct {
	Name        *string         `json:"name"`
	Date        *string         `json:"date"`
	Place       *string         `json:"place"`
	Image       *string         `json:"image"`
	Price       *flexibleString `json:"price"`
	Description *string         `json:"description"`
}

func (req eventPatchRequest) patch() application.EventPatch {
	return application.EventPatch{
		Name:        req.Name,
		Date:        req.Date,
		Place:       req.Place,
		Image:       req.Image,
		Price:       req.Price.ptr(),
		Description: req.Description,
	}
}
