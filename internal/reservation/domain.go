// internal/reservation/domain.go
package reservation

import (
	"time"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const (
	// ExpiryDays sets Reservation.ExpiryDate relative to the request time.
	ExpiryDays = 30
	// PickupWindow is how long a notified reader has to collect the book.
	// It is recorded on the reservation and never enforced.
	PickupWindow = 48 * time.Hour
)

const (
	actionCreated   = "created"
	actionCancelled = "cancelled"
	actionFulfilled = "fulfilled"
)

// View is a reservation with its book and user expanded.
type View struct {
	*model.Reservation
	Book *model.BookSummary `json:"book"`
	User *model.UserSummary `json:"user,omitempty"`
}

// WaitlistEntry is a pending reservation with its 1-based queue position.
type WaitlistEntry struct {
	Position int `json:"position"`
	*model.Reservation
	User *model.UserSummary `json:"user"`
}
