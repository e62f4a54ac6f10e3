// internal/model/notification.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyBorrowRequest       NotificationType = "borrow_request"
	NotifyBorrowApproved      NotificationType = "borrow_approved"
	NotifyBorrowDeclined      NotificationType = "borrow_declined"
	NotifyRenewalRequest      NotificationType = "loan_renewal_request"
	NotifyRenewalDecision     NotificationType = "loan_renewal_decision"
	NotifyReservationCreated  NotificationType = "reservation_created"
	NotifyReservationCanceled NotificationType = "reservation_cancelled"
	NotifyBookAvailable       NotificationType = "book_available"
	NotifyFeedback            NotificationType = "feedback"
)

// RelatedKind names the entity a notification points at.
type RelatedKind string

const (
	RelatedBorrowRequest RelatedKind = "borrow_request"
	RelatedLoan          RelatedKind = "loan"
	RelatedReservation   RelatedKind = "reservation"
	RelatedFeedback      RelatedKind = "feedback"
)

var relatedKinds = map[NotificationType]RelatedKind{
	NotifyBorrowRequest:       RelatedBorrowRequest,
	NotifyBorrowApproved:      RelatedBorrowRequest,
	NotifyBorrowDeclined:      RelatedBorrowRequest,
	NotifyRenewalRequest:      RelatedLoan,
	NotifyRenewalDecision:     RelatedLoan,
	NotifyReservationCreated:  RelatedReservation,
	NotifyReservationCanceled: RelatedReservation,
	NotifyBookAvailable:       RelatedReservation,
	NotifyFeedback:            RelatedFeedback,
}

// RelatedKind returns the kind of entity every notification of type t refers to.
func (t NotificationType) RelatedKind() (RelatedKind, bool) {
	k, ok := relatedKinds[t]
	return k, ok
}

// Related is a typed reference to the entity that triggered a notification.
type Related struct {
	Kind RelatedKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// Notification is an append-only message addressed to one user.
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"user_id"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Type       NotificationType `json:"type"`
	Related    Related          `json:"related"`
	ActionLink string           `json:"action_link,omitempty"`
	IsRead     bool             `json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (n *Notification) Clone() *Notification {
	c := *n
	return &c
}

type FindNotification struct {
	ID        *uuid.UUID
	UserID    *uuid.UUID
	Type      *NotificationType
	RelatedID *uuid.UUID
}
