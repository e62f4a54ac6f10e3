// internal/notification/implementation.go
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

// service implements the Service interface.
type service struct {
	notifications store.Notifications
	users         store.Users
	logger        *zap.Logger
	now           func() time.Time
	inst          *telemetry.Instrument
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new notification service instance.
func NewService(notifications store.Notifications, users store.Users, opts ...Option) Service {
	s := &service{
		notifications: notifications,
		users:         users,
		logger:        zap.NewNop(),
		now:           time.Now,
		inst:          telemetry.NewInstrument("notification"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Emit(ctx context.Context, m Message) {
	kind, ok := m.Type.RelatedKind()
	if !ok {
		s.logger.Warn("Dropping notification of unknown type", zap.String("type", string(m.Type)))
		return
	}

	n := &model.Notification{
		ID:         uuid.New(),
		UserID:     m.UserID,
		Title:      m.Title,
		Message:    m.Body,
		Type:       m.Type,
		Related:    model.Related{Kind: kind, ID: m.RelatedID},
		ActionLink: m.ActionLink,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.notifications.Insert(ctx, n); err != nil {
		s.logger.Error("Failed to store notification",
			zap.Error(err),
			zap.Stringer("user_id", m.UserID),
			zap.String("type", string(m.Type)),
			zap.Stringer("related_id", m.RelatedID),
		)
	}
}

func (s *service) EmitToStaff(ctx context.Context, m Message) {
	staff, err := s.users.Find(ctx, model.FindUser{Roles: model.StaffRoles}, model.Sort{})
	if err != nil {
		s.logger.Error("Failed to load staff for notification", zap.Error(err), zap.String("type", string(m.Type)))
		return
	}
	for _, user := range staff {
		m.UserID = user.ID
		s.Emit(ctx, m)
	}
}

func (s *service) DeleteRelated(ctx context.Context, typ model.NotificationType, relatedID uuid.UUID) {
	n, err := s.notifications.DeleteMany(ctx, model.FindNotification{Type: &typ, RelatedID: &relatedID})
	if err != nil {
		s.logger.Error("Failed to delete stale notifications",
			zap.Error(err),
			zap.String("type", string(typ)),
			zap.Stringer("related_id", relatedID),
		)
		return
	}
	s.logger.Debug("Deleted stale notifications", zap.String("type", string(typ)), zap.Int64("count", n))
}

func (s *service) ListForUser(ctx context.Context, actor model.Actor) (_ []*model.Notification, err error) {
	ctx, end := s.inst.Start(ctx, "notification.list", attribute.String("user.id", actor.UserID.String()))
	defer end(&err)

	list, err := s.notifications.Find(ctx, model.FindNotification{UserID: &actor.UserID}, model.Desc(model.SortByCreatedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list notifications")
	}
	return list, nil
}

func (s *service) MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) (err error) {
	ctx, end := s.inst.Start(ctx, "notification.mark_read", attribute.String("notification.id", id.String()))
	defer end(&err)

	n, err := s.notifications.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal(err, "load notification")
	}
	if !actor.Owns(n.UserID) {
		return apperr.Forbidden("notification belongs to another user")
	}

	if _, err := s.notifications.DeleteMany(ctx, model.FindNotification{ID: &id}); err != nil {
		return apperr.Internal(err, "delete notification")
	}
	return nil
}
