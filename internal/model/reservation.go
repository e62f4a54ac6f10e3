// internal/model/reservation.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a waitlist entry for a book without available copies.
type Reservation struct {
	ID           uuid.UUID         `json:"id"`
	BookID       uuid.UUID         `json:"book_id"`
	UserID       uuid.UUID         `json:"user_id"`
	Status       ReservationStatus `json:"status"`
	RequestedAt  time.Time         `json:"requested_at"`
	ExpiryDate   time.Time         `json:"expiry_date"`
	NotifiedUser bool              `json:"notified_user"`
	FulfilledAt  *time.Time        `json:"fulfilled_at,omitempty"`
	// PickupDeadline is informational. Nothing expires a fulfilled reservation.
	PickupDeadline *time.Time `json:"pickup_deadline,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CancelReason   string     `json:"cancel_reason,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

func (r *Reservation) Clone() *Reservation {
	c := *r
	return &c
}

type FindReservation struct {
	ID           *uuid.UUID
	BookID       *uuid.UUID
	UserID       *uuid.UUID
	Status       *ReservationStatus
	NotifiedUser *bool
}
