// internal/membership/handler.go
package membership

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(user *model.User) (string, time.Time, error)
}

type Handler struct {
	service Service
	tokens  TokenIssuer
}

func NewHandler(service Service, tokens TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

// PublicRoutes mounts registration and login.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/users/me", h.handleMe)
	r.Get("/users", h.handleList)
	r.Patch("/users/{id}/role", h.handleUpdateRole)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg Registration
	if err := request.DecodeJSON(r, &reg); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), reg)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.Created(w, r, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, r, err)
		return
	}

	token, expiresAt, err := h.tokens.Generate(user)
	if err != nil {
		response.ServerError(w, r, err)
		return
	}
	response.OK(w, r, Session{AccessToken: token, ExpiresAt: expiresAt, User: user.Summary()})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	user, err := h.service.GetUser(r.Context(), actor.UserID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, user)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := request.GetActor(r)
	if !ok {
		response.Unauthorized(w, r)
		return
	}

	users, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, users)
}

func (h *Handler) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Role model.Role `json:"role"`
	}
	if err := request.DecodeJSON(r, &req); err != nil {
		response.BadRequest(w, r, err)
		return
	}

	user, err := h.service.UpdateRole(r.Context(), actor, id, req.Role)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, user)
}
