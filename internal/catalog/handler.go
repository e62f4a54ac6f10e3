// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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

// PublicRoutes mounts the read-only catalog endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/books", h.handleList)
	r.Get("/books/{id}", h.handleGet)
}

// Routes mounts the staff endpoints on an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/books", h.handleAdd)
	r.Patch("/books/{id}", h.handleUpdate)
	r.Delete("/books/{id}", h.handleRemove)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var q Query
	if v := request.QueryStringParam(r, "q"); v != nil {
		q.Search = *v
	}
	if v := request.QueryStringParam(r, "category"); v != nil {
		q.Category = *v
	}
	if v := request.QueryStringParam(r, "status"); v != nil {
		q.Status = model.BookStatus(*v)
	}

	books, err := h.service.ListBooks(r.Context(), q)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, books)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := request.RouteUUIDParam(r, "id")
	if err != nil {
		response.BadRequest(w, r, err)
		return
	}

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	var in BookInput
	if err := request.DecodeJSON(r, &in); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	book, err := h.service.AddBook(r.Context(), actor, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, book)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var patch BookPatch
	if err := request.DecodeJSON(r, &patch); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), actor, id, patch)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, book)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.RemoveBook(r.Context(), actor, id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.NoContent(w, r)
}
