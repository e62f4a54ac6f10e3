// internal/circulation/renewal.go
package circulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/notification"
)

func (s *service) ListMyLoans(ctx context.Context, actor model.Actor) (_ []*Loan, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.list_my_loans", attribute.String("user.id", actor.UserID.String()))
	defer end(&err)

	approved := model.RequestApproved
	list, err := s.requests.Find(ctx, model.FindBorrowRequest{UserID: &actor.UserID, Status: &approved}, model.Desc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list loans")
	}

	now := s.now()
	books := make(map[uuid.UUID]*model.BookSummary)
	loans := make([]*Loan, 0, len(list))
	for _, req := range list {
		loan := newLoan(req, now)
		if loan.Book, err = s.bookSummary(ctx, books, req.BookID); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (s *service) RequestRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID, note string) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.request_renewal", attribute.String("loan.id", loanID.String()))
	defer end(&err)

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(loan.UserID) {
		return nil, apperr.Forbidden("you can only renew your own loans")
	}
	switch {
	case loan.Returned:
		return nil, apperr.InvalidState("loan has already been returned")
	case loan.Status != model.RequestApproved:
		return nil, apperr.InvalidState("only approved loans can be renewed")
	case loan.RenewalStatus == model.RenewalPending:
		return nil, apperr.InvalidState("a renewal request is already pending")
	case loan.RenewalCount >= MaxRenewals:
		return nil, renewalLimit()
	}

	now := s.now().UTC()
	loan.RenewalStatus = model.RenewalPending
	loan.RenewalRequestedAt = &now
	loan.RenewalNotes = note
	loan.RenewalDecisionAt = nil
	loan.RenewalDecisionBy = nil
	if err := s.requests.Save(ctx, loan); err != nil {
		return nil, apperr.Internal(err, "request renewal")
	}

	s.logger.Info("Renewal requested", zap.Stringer("loan_id", loan.ID), zap.Int("renewal_count", loan.RenewalCount))
	s.activity.Record(ctx, journal.EntityBorrowRequest, loan.ID, actionRenewalRequested, actor.UserID, loan)

	// Replace any earlier request notification so staff see one entry per loan.
	s.notify.DeleteRelated(ctx, model.NotifyRenewalRequest, loan.ID)
	s.notify.EmitToStaff(ctx, notification.Message{
		Type:       model.NotifyRenewalRequest,
		Title:      "Loan renewal requested",
		Body:       renewalRequestBody(loan, note),
		RelatedID:  loan.ID,
		ActionLink: "/loans/renewals/pending",
	})
	return loan, nil
}

func (s *service) ListPendingRenewals(ctx context.Context, actor model.Actor) (_ []*Loan, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.list_pending_renewals")
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can view pending renewals")
	}

	approved, renewal, returned := model.RequestApproved, model.RenewalPending, false
	list, err := s.requests.Find(ctx,
		model.FindBorrowRequest{Status: &approved, RenewalStatus: &renewal, Returned: &returned},
		model.Asc(model.SortByRenewalRequestedAt),
	)
	if err != nil {
		return nil, apperr.Internal(err, "list pending renewals")
	}

	now := s.now()
	books := make(map[uuid.UUID]*model.BookSummary)
	users := make(map[uuid.UUID]*model.UserSummary)
	loans := make([]*Loan, 0, len(list))
	for _, req := range list {
		loan := newLoan(req, now)
		if loan.Book, err = s.bookSummary(ctx, books, req.BookID); err != nil {
			return nil, err
		}
		if loan.User, err = s.userSummary(ctx, users, req.UserID); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (s *service) ApproveRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.approve_renewal", attribute.String("loan.id", loanID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can approve renewals")
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	switch {
	case loan.Returned:
		return nil, apperr.InvalidState("loan has already been returned")
	case loan.RenewalStatus != model.RenewalPending:
		return nil, apperr.InvalidState("no renewal request is pending for this loan")
	case loan.RenewalCount >= MaxRenewals:
		return nil, renewalLimit()
	}

	now := s.now().UTC()
	base := now
	if loan.DueDate != nil {
		base = *loan.DueDate
	}
	due := base.AddDate(0, 0, RenewalExtensionDays)
	loan.DueDate = &due
	loan.RenewalCount++
	loan.LastRenewedAt = &now
	loan.RenewalStatus = model.RenewalApproved
	loan.RenewalDecisionAt = &now
	loan.RenewalDecisionBy = &actor.UserID
	if err := s.requests.Save(ctx, loan); err != nil {
		return nil, apperr.Internal(err, "approve renewal")
	}

	s.logger.Info("Renewal approved",
		zap.Stringer("loan_id", loan.ID),
		zap.Time("due_date", due),
		zap.Int("renewal_count", loan.RenewalCount),
		zap.Stringer("staff_id", actor.UserID),
	)
	s.activity.Record(ctx, journal.EntityBorrowRequest, loan.ID, actionRenewalApproved, actor.UserID, renewalDecided{
		RenewalCount: loan.RenewalCount, DueDate: loan.DueDate,
	})
	s.notify.DeleteRelated(ctx, model.NotifyRenewalRequest, loan.ID)
	s.notify.Emit(ctx, notification.Message{
		UserID:     loan.UserID,
		Type:       model.NotifyRenewalDecision,
		Title:      "Loan renewal approved",
		Body:       fmt.Sprintf("Your loan was renewed. New due date: %s.", due.Format(time.DateOnly)),
		RelatedID:  loan.ID,
		ActionLink: "/loans/mine",
	})
	return loan, nil
}

func (s *service) DeclineRenewal(ctx context.Context, actor model.Actor, loanID uuid.UUID, reason string) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.decline_renewal", attribute.String("loan.id", loanID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can decline renewals")
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.RenewalStatus != model.RenewalPending {
		return nil, apperr.InvalidState("no renewal request is pending for this loan")
	}

	now := s.now().UTC()
	loan.RenewalStatus = model.RenewalDeclined
	loan.RenewalDecisionAt = &now
	loan.RenewalDecisionBy = &actor.UserID
	loan.RenewalNotes = reason
	if err := s.requests.Save(ctx, loan); err != nil {
		return nil, apperr.Internal(err, "decline renewal")
	}

	s.logger.Info("Renewal declined", zap.Stringer("loan_id", loan.ID), zap.Stringer("staff_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityBorrowRequest, loan.ID, actionRenewalDeclined, actor.UserID, renewalDecided{
		RenewalCount: loan.RenewalCount, Reason: reason,
	})

	body := "Your loan renewal request was declined."
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notify.DeleteRelated(ctx, model.NotifyRenewalRequest, loan.ID)
	s.notify.Emit(ctx, notification.Message{
		UserID:     loan.UserID,
		Type:       model.NotifyRenewalDecision,
		Title:      "Loan renewal declined",
		Body:       body,
		RelatedID:  loan.ID,
		ActionLink: "/loans/mine",
	})
	return loan, nil
}

func (s *service) loadLoan(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error) {
	loan, err := s.loadRequest(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("loan not found")
	}
	return loan, err
}

func renewalLimit() error {
	return apperr.LimitExceeded("loan has reached the maximum of %d renewals", MaxRenewals).WithCode(apperr.CodeRenewalLimit)
}

func renewalRequestBody(loan *model.BorrowRequest, note string) string {
	body := fmt.Sprintf("Renewal %d of %d requested.", loan.RenewalCount+1, MaxRenewals)
	if note != "" {
		body += " Note: " + note
	}
	return body
}
