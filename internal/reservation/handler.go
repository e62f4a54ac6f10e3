// internal/reservation/handler.go
package reservation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the reservation endpoints on an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/reservations", h.handleCreate)
	r.Get("/reservations/mine", h.handleListMine)
	r.Get("/reservations/pending", h.handleListPending)
	r.Post("/reservations/{id}/cancel", h.handleCancel)
	r.Post("/books/{id}/notify-availability", h.handleNotifyAvailability)
	r.Get("/books/{id}/waitlist", h.handleWaitlist)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	var body struct {
		BookID uuid.UUID `json:"book_id"`
		Notes  string    `json:"notes"`
	}
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	if body.BookID == uuid.Nil {
		response.BadRequest(w, r, errors.New("book_id is required"))
		return
	}

	res, err := h.service.CreateReservation(r.Context(), actor, body.BookID, body.Notes)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, res)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	list, err := h.service.ListMyReservations(r.Context(), actor)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *Handler) handleListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	list, err := h.service.ListPendingReservations(r.Context(), actor)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}
	id, err := request.RouteUUIDParam(r, "id")
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	res, err := h.service.CancelReservation(r.Context(), actor, id, body.Reason)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, res)
}

func (h *Handler) handleNotifyAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}
	bookID, err := request.RouteUUIDParam(r, "id")
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}

	res, err := h.service.NotifyAvailability(r.Context(), actor, bookID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, res)
}

func (h *Handler) handleWaitlist(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}
	bookID, err := request.RouteUUIDParam(r, "id")
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}

	entries, err := h.service.Waitlist(r.Context(), actor, bookID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, entries)
}
