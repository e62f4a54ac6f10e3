// internal/feedback/handler.go
package feedback

import (
	"context"
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

func (h *Handler) Routes(r chi.Router) {
	r.Post("/feedback", h.handleSubmit)
	r.Get("/feedback", h.list(h.service.List))
	r.Get("/feedback/mine", h.list(h.service.ListMine))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	var sub Submission
	if err := request.DecodeJSON(r, &sub); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	fb, err := h.service.Submit(r.Context(), actor, sub)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, fb)
}

func (h *Handler) list(op func(context.Context, model.Actor) ([]*model.Feedback, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := request.GetActor(r)
		if !ok {
			response.Unauthorized(w, r)
			return
		}

		list, err := op(r.Context(), actor)
		if err != nil {
			response.Error(w, r, err)
			return
		}
		response.OK(w, r, list)
	}
}
