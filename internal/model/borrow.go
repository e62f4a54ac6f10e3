// internal/model/borrow.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

type RenewalStatus string

const (
	RenewalNone     RenewalStatus = "none"
	RenewalPending  RenewalStatus = "pending"
	RenewalApproved RenewalStatus = "approved"
	RenewalDeclined RenewalStatus = "declined"
)

// BorrowRequest is a borrow intent. Once approved it doubles as the loan record.
type BorrowRequest struct {
	ID          uuid.UUID     `json:"id"`
	BookID      uuid.UUID     `json:"book_id"`
	UserID      uuid.UUID     `json:"user_id"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
	ProcessedBy *uuid.UUID    `json:"processed_by,omitempty"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty"`
	Message     string        `json:"message,omitempty"`

	DueDate            *time.Time    `json:"due_date,omitempty"`
	Returned           bool          `json:"returned"`
	ReturnedAt         *time.Time    `json:"returned_at,omitempty"`
	ApprovedAt         *time.Time    `json:"approved_at,omitempty"`
	RenewalStatus      RenewalStatus `json:"renewal_status"`
	RenewalRequestedAt *time.Time    `json:"renewal_requested_at,omitempty"`
	RenewalDecisionAt  *time.Time    `json:"renewal_decision_at,omitempty"`
	RenewalDecisionBy  *uuid.UUID    `json:"renewal_decision_by,omitempty"`
	RenewalNotes       string        `json:"renewal_notes,omitempty"`
	RenewalCount       int           `json:"renewal_count"`
	LastRenewedAt      *time.Time    `json:"last_renewed_at,omitempty"`
}

func (r *BorrowRequest) Clone() *BorrowRequest {
	c := *r
	return &c
}

type FindBorrowRequest struct {
	ID            *uuid.UUID
	BookID        *uuid.UUID
	UserID        *uuid.UUID
	Status        *RequestStatus
	RenewalStatus *RenewalStatus
	Returned      *bool
}

// LoanStatus is derived at read time and never stored.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanOverdue  LoanStatus = "overdue"
	LoanReturned LoanStatus = "returned"
)

// DeriveLoanStatus computes the status of an approved request at now.
// A loan without a due date is never overdue.
func DeriveLoanStatus(r *BorrowRequest, now time.Time) LoanStatus {
	if r.Returned {
		return LoanReturned
	}
	if r.DueDate != nil && r.DueDate.Before(now) {
		return LoanOverdue
	}
	return LoanActive
}
