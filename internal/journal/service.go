// internal/journal/service.go
package journal

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

// Service exposes entity histories to staff.
type Service struct {
	journal Journal
	inst    *telemetry.Instrument
}

func NewService(journal Journal) *Service {
	return &Service{journal: journal, inst: telemetry.NewInstrument("journal")}
}

func (s *Service) History(ctx context.Context, actor model.Actor, entityID uuid.UUID) (_ []Entry, err error) {
	ctx, end := s.inst.Start(ctx, "journal.entity_history", attribute.String("entity.id", entityID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can view activity")
	}
	entries, err := s.journal.History(ctx, entityID)
	if err != nil {
		return nil, apperr.Internal(err, "load activity")
	}
	return entries, nil
}

// Routes mounts GET /activity/{id} on an authenticated router.
func (s *Service) Routes(r chi.Router) {
	r.Get("/activity/{id}", s.handleHistory)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
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

	entries, err := s.History(r.Context(), actor, id)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.OK(w, r, entries)
}
