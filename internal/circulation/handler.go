// internal/circulation/handler.go
package circulation

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the borrow and loan endpoints on an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/borrow-requests", func(r chi.Router) {
		r.Post("/", h.handleCreateRequest)
		r.Get("/pending", h.handleListPendingRequests)
		r.Get("/mine", h.handleListMyRequests)
		r.Post("/{id}/approve", h.handleApproveRequest)
		r.Post("/{id}/decline", h.handleDeclineRequest)
	})
	r.Route("/loans", func(r chi.Router) {
		r.Get("/mine", h.handleListMyLoans)
		r.Get("/renewals/pending", h.handleListPendingRenewals)
		r.Post("/{id}/renewal", h.handleRequestRenewal)
		r.Post("/{id}/renewal/approve", h.handleApproveRenewal)
		r.Post("/{id}/renewal/decline", h.handleDeclineRenewal)
	})
}

type createRequestBody struct {
	BookID  uuid.UUID `json:"book_id"`
	Message string    `json:"message"`
}

type reasonBody struct {
	Reason string `json:"reason"`
}

type noteBody struct {
	Note string `json:"note"`
}

func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	var body createRequestBody
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	if body.BookID == uuid.Nil {
		response.BadRequest(w, r, errors.New("book_id is required"))
		return
	}

	req, err := h.service.CreateBorrowRequest(r.Context(), actor, body.BookID, body.Message)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, req)
}

func (h *Handler) handleListPendingRequests(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.ListPendingRequests)
}

func (h *Handler) handleListMyRequests(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.ListMyRequests)
}

func (h *Handler) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(actor model.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
		return h.service.ApproveRequest(r.Context(), actor, id)
	})
}

func (h *Handler) handleDeclineRequest(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	h.decide(w, r, func(actor model.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
		return h.service.DeclineRequest(r.Context(), actor, id, body.Reason)
	})
}

func (h *Handler) handleListMyLoans(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.ListMyLoans)
}

func (h *Handler) handleListPendingRenewals(w http.ResponseWriter, r *http.Request) {
	list(w, r, h.service.ListPendingRenewals)
}

func (h *Handler) handleRequestRenewal(w http.ResponseWriter, r *http.Request) {
	var body noteBody
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	h.decide(w, r, func(actor model.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
		return h.service.RequestRenewal(r.Context(), actor, id, body.Note)
	})
}

func (h *Handler) handleApproveRenewal(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, func(actor model.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
		return h.service.ApproveRenewal(r.Context(), actor, id)
	})
}

func (h *Handler) handleDeclineRenewal(w http.ResponseWriter, r *http.Request) {
	var body reasonBody
	if err := request.DecodeJSON(r, &body); err != nil {
		response.BadRequest(w, r, err)
		return
	}
	h.decide(w, r, func(actor model.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
		return h.service.DeclineRenewal(r.Context(), actor, id, body.Reason)
	})
}

// decide runs a state transition on the borrow request named by {id}.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, op func(model.Actor, uuid.UUID) (*model.BorrowRequest, error)) {
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

	req, err := op(actor, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, req)
}

func list[T any](w http.ResponseWriter, r *http.Request, op func(context.Context, model.Actor) ([]T, error)) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	items, err := op(r.Context(), actor)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, items)
}
