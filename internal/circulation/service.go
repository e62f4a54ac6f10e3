// internal/circulation/service.go
package circulation

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// Service covers the borrow-request workflow and the loan renewal workflow.
// Every operation re-reads the entities it touches; nothing is cached and
// multi-entity writes are not atomic.
type Service interface {
	CreateBorrowRequest(ctx context.Context, actor model.Actor, bookID uuid.UUID, message string) (*model.BorrowRequest, error)
	ListPendingRequests(ctx context.Context, actor model.Actor) ([]*RequestView, error)
	ListMyRequests(ctx context.Context, actor model.Actor) ([]*RequestView, error)
	ApproveRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID) (*model.BorrowRequest, error)
	DeclineRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, reason string) (*model.BorrowRequest, error)

	ListMyLoans(ctx context.Context, actor model.Actor) ([]*Loan, error)
	RequestRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID, note string) (*model.BorrowRequest, error)
	ListPendingRenewals(ctx context.Context, actor model.Actor) ([]*Loan, error)
	ApproveRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID) (*model.BorrowRequest, error)
	DeclineRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID, reason string) (*model.BorrowRequest, error)
}
