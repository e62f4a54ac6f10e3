// internal/circulation/implementation.go
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
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

// service implements the Service interface.
type service struct {
	books    store.Books
	users    store.Users
	requests store.BorrowRequests
	notify   notification.Emitter
	activity *journal.Recorder
	logger   *zap.Logger
	now      func() time.Time
	inst     *telemetry.Instrument
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithRecorder journals every state transition.
func WithRecorder(r *journal.Recorder) Option {
	return func(s *service) { s.activity = r }
}

// NewService creates a new circulation service instance.
func NewService(st store.Store, notify notification.Emitter, opts ...Option) Service {
	s := &service{
		books:    st.Books(),
		users:    st.Users(),
		requests: st.BorrowRequests(),
		notify:   notify,
		logger:   zap.NewNop(),
		now:      time.Now,
		inst:     telemetry.NewInstrument("circulation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateBorrowRequest(ctx context.Context, actor model.Actor, bookID uuid.UUID, message string) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.create_borrow_request",
		attribute.String("book.id", bookID.String()),
		attribute.String("user.id", actor.UserID.String()),
	)
	defer end(&err)

	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Check-then-insert: two concurrent calls can both pass this check.
	pending := model.RequestPending
	_, err = s.requests.FindOne(ctx, model.FindBorrowRequest{BookID: &bookID, UserID: &actor.UserID, Status: &pending})
	switch {
	case err == nil:
		return nil, apperr.Conflict("you already have a pending request for this book")
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err, "check pending requests")
	}

	req := &model.BorrowRequest{
		ID:            uuid.New(),
		BookID:        bookID,
		UserID:        actor.UserID,
		Status:        model.RequestPending,
		RequestedAt:   s.now().UTC(),
		Message:       message,
		RenewalStatus: model.RenewalNone,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, apperr.Internal(err, "create borrow request")
	}

	s.logger.Info("Borrow request created",
		zap.Stringer("request_id", req.ID),
		zap.Stringer("book_id", bookID),
		zap.Stringer("user_id", actor.UserID),
	)
	s.activity.Record(ctx, journal.EntityBorrowRequest, req.ID, actionRequested, actor.UserID, req)
	s.notify.EmitToStaff(ctx, notification.Message{
		Type:       model.NotifyBorrowRequest,
		Title:      "New borrow request",
		Body:       fmt.Sprintf("A borrow request was submitted for %q.", book.Title),
		RelatedID:  req.ID,
		ActionLink: "/borrow-requests/pending",
	})
	return req, nil
}

func (s *service) ListPendingRequests(ctx context.Context, actor model.Actor) (_ []*RequestView, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.list_pending_requests")
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can view pending requests")
	}

	pending := model.RequestPending
	list, err := s.requests.Find(ctx, model.FindBorrowRequest{Status: &pending}, model.Desc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list pending requests")
	}
	return s.expand(ctx, list)
}

func (s *service) ListMyRequests(ctx context.Context, actor model.Actor) (_ []*RequestView, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.list_my_requests", attribute.String("user.id", actor.UserID.String()))
	defer end(&err)

	list, err := s.requests.Find(ctx, model.FindBorrowRequest{UserID: &actor.UserID}, model.Desc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list borrow requests")
	}
	return s.expand(ctx, list)
}

func (s *service) ApproveRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.approve_request", attribute.String("request.id", requestID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can approve requests")
	}

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending {
		return nil, apperr.InvalidState("request has already been %s", req.Status)
	}

	book, err := s.loadBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, apperr.Conflict("no copies of %q are available", book.Title).WithCode(apperr.CodeNoCopies)
	}

	now := s.now().UTC()
	due := now.AddDate(0, 0, LoanPeriodDays)
	req.Status = model.RequestApproved
	req.ProcessedBy = &actor.UserID
	req.ProcessedAt = &now
	req.ApprovedAt = &now
	req.DueDate = &due
	req.RenewalStatus = model.RenewalNone
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, apperr.Internal(err, "approve request")
	}

	// Second, independent write. A failure here leaves the request approved
	// without the copy being taken.
	before := book.AvailableCopies
	book.AvailableCopies = max(0, book.AvailableCopies-1)
	book.UpdatedAt = now
	if err := s.books.Save(ctx, book); err != nil {
		return nil, apperr.Internal(err, "update available copies")
	}

	s.logger.Info("Borrow request approved",
		zap.Stringer("request_id", req.ID),
		zap.Stringer("book_id", book.ID),
		zap.Int("available_copies", book.AvailableCopies),
		zap.Stringer("staff_id", actor.UserID),
	)
	s.activity.Record(ctx, journal.EntityBorrowRequest, req.ID, actionApproved, actor.UserID, req)
	s.activity.Record(ctx, journal.EntityBook, book.ID, "copies_taken", actor.UserID, copiesChanged{
		BookID: book.ID, AvailableBefore: before, AvailableAfter: book.AvailableCopies,
	})
	s.notify.Emit(ctx, notification.Message{
		UserID:     req.UserID,
		Type:       model.NotifyBorrowApproved,
		Title:      "Borrow request approved",
		Body:       fmt.Sprintf("Your request for %q was approved. Due back by %s.", book.Title, due.Format(time.DateOnly)),
		RelatedID:  req.ID,
		ActionLink: "/loans/mine",
	})
	return req, nil
}

func (s *service) DeclineRequest(ctx context.Context, actor model.Actor, requestID uuid.UUID, reason string) (_ *model.BorrowRequest, err error) {
	ctx, end := s.inst.Start(ctx, "circulation.decline_request", attribute.String("request.id", requestID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can decline requests")
	}

	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != model.RequestPending {
		return nil, apperr.InvalidState("request has already been %s", req.Status)
	}

	now := s.now().UTC()
	req.Status = model.RequestDeclined
	req.ProcessedBy = &actor.UserID
	req.ProcessedAt = &now
	if reason != "" {
		req.Message = reason
	}
	if err := s.requests.Save(ctx, req); err != nil {
		return nil, apperr.Internal(err, "decline request")
	}

	s.logger.Info("Borrow request declined", zap.Stringer("request_id", req.ID), zap.Stringer("staff_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityBorrowRequest, req.ID, actionDeclined, actor.UserID, req)

	body := "Your borrow request was declined."
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notify.Emit(ctx, notification.Message{
		UserID:     req.UserID,
		Type:       model.NotifyBorrowDeclined,
		Title:      "Borrow request declined",
		Body:       body,
		RelatedID:  req.ID,
		ActionLink: "/borrow-requests/mine",
	})
	return req, nil
}

func (s *service) loadBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("book not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load book")
	}
	return book, nil
}

func (s *service) loadRequest(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error) {
	req, err := s.requests.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("borrow request not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load borrow request")
	}
	return req, nil
}

// expand resolves book and user summaries. Dangling references stay nil.
func (s *service) expand(ctx context.Context, list []*model.BorrowRequest) ([]*RequestView, error) {
	books := make(map[uuid.UUID]*model.BookSummary)
	users := make(map[uuid.UUID]*model.UserSummary)

	out := make([]*RequestView, 0, len(list))
	for _, req := range list {
		book, err := s.bookSummary(ctx, books, req.BookID)
		if err != nil {
			return nil, err
		}
		user, err := s.userSummary(ctx, users, req.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, &RequestView{BorrowRequest: req, Book: book, User: user})
	}
	return out, nil
}

func (s *service) bookSummary(ctx context.Context, cache map[uuid.UUID]*model.BookSummary, id uuid.UUID) (*model.BookSummary, error) {
	if summary, ok := cache[id]; ok {
		return summary, nil
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "load book")
	}
	cache[id] = book.Summary()
	return cache[id], nil
}

func (s *service) userSummary(ctx context.Context, cache map[uuid.UUID]*model.UserSummary, id uuid.UUID) (*model.UserSummary, error) {
	if summary, ok := cache[id]; ok {
		return summary, nil
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "load user")
	}
	cache[id] = user.Summary()
	return cache[id], nil
}
