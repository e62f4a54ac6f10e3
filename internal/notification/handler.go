// internal/notification/handler.go
package notification

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the handler on an authenticated router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/notifications", h.handleList)
	r.Post("/notifications/{id}/read", h.handleMarkRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	list, err := h.service.ListForUser(r.Context(), actor)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, list)
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.MarkRead(r.Context(), actor, id); err != nil {
		response.Error(w, r, err)
		return
	}
	response.NoContent(w, r)
}
