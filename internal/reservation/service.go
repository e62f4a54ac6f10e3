// internal/reservation/service.go
package reservation

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// Service is the reservation waitlist. Pending reservations of a book are
// served FIFO by RequestedAt.
type Service interface {
	CreateReservation(ctx context.Context, actor model.Actor, bookID uuid.UUID, notes string) (*model.Reservation, error)
	ListMyReservations(ctx context.Context, actor model.Actor) ([]*View, error)
	ListPendingReservations(ctx context.Context, actor model.Actor) ([]*View, error)
	Waitlist(ctx context.Context, actor model.Actor, bookID uuid.UUID) ([]*WaitlistEntry, error)
	CancelReservation(ctx context.Context, actor model.Actor, reservationID uuid.UUID, reason string) (*model.Reservation, error)
	// NotifyAvailability fulfils the oldest pending reservation that has not
	// been notified yet. It does not check the book's available copies.
	NotifyAvailability(ctx context.Context, actor model.Actor, bookID uuid.UUID) (*model.Reservation, error)
}
