// internal/circulation/domain.go
package circulation

import (
	"time"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const (
	// MaxRenewals bounds how many times one loan can be extended.
	MaxRenewals = 2
	// RenewalExtensionDays is added to the due date on every approved renewal.
	RenewalExtensionDays = 30
	// LoanPeriodDays sets the first due date when a request is approved.
	LoanPeriodDays = 14
)

// Journal actions recorded for borrow requests.
const (
	actionRequested        = "requested"
	actionApproved         = "approved"
	actionDeclined         = "declined"
	actionRenewalRequested = "renewal_requested"
	actionRenewalApproved  = "renewal_approved"
	actionRenewalDeclined  = "renewal_declined"
)

// RequestView is a borrow request with its book and requester expanded.
// Book or User is nil when the referenced record no longer exists.
type RequestView struct {
	*model.BorrowRequest
	Book *model.BookSummary `json:"book"`
	User *model.UserSummary `json:"user"`
}

// Loan is the read-time view of an approved borrow request.
type Loan struct {
	*model.BorrowRequest
	LoanStatus model.LoanStatus   `json:"loan_status"`
	Book       *model.BookSummary `json:"book"`
	User       *model.UserSummary `json:"user,omitempty"`
}

func newLoan(r *model.BorrowRequest, now time.Time) *Loan {
	return &Loan{BorrowRequest: r, LoanStatus: model.DeriveLoanStatus(r, now)}
}

// copiesChanged is the journal payload for a copy-count mutation.
type copiesChanged struct {
	BookID          uuid.UUID `json:"book_id"`
	AvailableBefore int       `json:"available_before"`
	AvailableAfter  int       `json:"available_after"`
}

type renewalDecided struct {
	RenewalCount int        `json:"renewal_count"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}
