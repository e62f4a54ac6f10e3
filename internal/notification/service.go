// internal/notification/service.go
package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// Message is a notification before delivery. The related kind follows from Type.
type Message struct {
	UserID     uuid.UUID
	Type       model.NotificationType
	Title      string
	Body       string
	RelatedID  uuid.UUID
	ActionLink string
}

// Emitter is what the workflows use to notify users. Every method is
// best-effort: failures are logged and never reach the caller.
type Emitter interface {
	Emit(ctx context.Context, m Message)
	EmitToStaff(ctx context.Context, m Message)
	DeleteRelated(ctx context.Context, typ model.NotificationType, relatedID uuid.UUID)
}

// Service is the notification sink.
type Service interface {
	Emitter
	ListForUser(ctx context.Context, actor model.Actor) ([]*model.Notification, error)
	// MarkRead deletes the notification. Read notifications are not kept.
	MarkRead(ctx context.Context, actor model.Actor, id uuid.UUID) error
}
