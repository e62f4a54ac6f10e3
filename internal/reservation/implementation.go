// internal/reservation/implementation.go
package reservation

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

type service struct {
	books        store.Books
	users        store.Users
	reservations store.Reservations
	notify       notification.Emitter
	activity     *journal.Recorder
	logger       *zap.Logger
	now          func() time.Time
	inst         *telemetry.Instrument
}

type Option func(*service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *service) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithRecorder(r *journal.Recorder) Option {
	return func(s *service) { s.activity = r }
}

func NewService(st store.Store, notify notification.Emitter, opts ...Option) Service {
	s := &service{
		books:        st.Books(),
		users:        st.Users(),
		reservations: st.Reservations(),
		notify:       notify,
		logger:       zap.NewNop(),
		now:          time.Now,
		inst:         telemetry.NewInstrument("reservation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateReservation(ctx context.Context, actor model.Actor, bookID uuid.UUID, notes string) (_ *model.Reservation, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.create",
		attribute.String("book.id", bookID.String()),
		attribute.String("user.id", actor.UserID.String()),
	)
	defer end(&err)

	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies > 0 {
		return nil, apperr.InvalidState("%q has copies available, borrow it instead of reserving", book.Title).WithCode(apperr.CodeCopiesPresent)
	}

	pending := model.ReservationPending
	_, err = s.reservations.FindOne(ctx, model.FindReservation{BookID: &bookID, UserID: &actor.UserID, Status: &pending})
	switch {
	case err == nil:
		return nil, apperr.Conflict("you already have a pending reservation for this book")
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Internal(err, "check pending reservations")
	}

	now := s.now().UTC()
	res := &model.Reservation{
		ID:          uuid.New(),
		BookID:      bookID,
		UserID:      actor.UserID,
		Status:      model.ReservationPending,
		RequestedAt: now,
		ExpiryDate:  now.AddDate(0, 0, ExpiryDays),
		Notes:       notes,
	}
	if err := s.reservations.Insert(ctx, res); err != nil {
		return nil, apperr.Internal(err, "create reservation")
	}

	s.logger.Info("Reservation created", zap.Stringer("reservation_id", res.ID), zap.Stringer("book_id", bookID), zap.Stringer("user_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityReservation, res.ID, actionCreated, actor.UserID, res)
	s.notify.Emit(ctx, notification.Message{
		UserID:     actor.UserID,
		Type:       model.NotifyReservationCreated,
		Title:      "Reservation confirmed",
		Body:       fmt.Sprintf("You are on the waitlist for %q. We will let you know when a copy is free.", book.Title),
		RelatedID:  res.ID,
		ActionLink: "/reservations/mine",
	})
	return res, nil
}

func (s *service) ListMyReservations(ctx context.Context, actor model.Actor) (_ []*View, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.list_mine", attribute.String("user.id", actor.UserID.String()))
	defer end(&err)

	list, err := s.reservations.Find(ctx, model.FindReservation{UserID: &actor.UserID}, model.Desc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list reservations")
	}
	return s.expand(ctx, list, false)
}

func (s *service) ListPendingReservations(ctx context.Context, actor model.Actor) (_ []*View, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.list_pending")
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can view pending reservations")
	}

	pending := model.ReservationPending
	list, err := s.reservations.Find(ctx, model.FindReservation{Status: &pending}, model.Asc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "list pending reservations")
	}
	return s.expand(ctx, list, true)
}

func (s *service) Waitlist(ctx context.Context, actor model.Actor, bookID uuid.UUID) (_ []*WaitlistEntry, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.waitlist", attribute.String("book.id", bookID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can view the waitlist")
	}
	if _, err := s.loadBook(ctx, bookID); err != nil {
		return nil, err
	}

	pending := model.ReservationPending
	list, err := s.reservations.Find(ctx, model.FindReservation{BookID: &bookID, Status: &pending}, model.Asc(model.SortByRequestedAt))
	if err != nil {
		return nil, apperr.Internal(err, "load waitlist")
	}

	entries := make([]*WaitlistEntry, 0, len(list))
	for i, res := range list {
		user, err := s.users.FindByID(ctx, res.UserID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Internal(err, "load user")
		}
		entries = append(entries, &WaitlistEntry{Position: i + 1, Reservation: res, User: user.Summary()})
	}
	return entries, nil
}

func (s *service) CancelReservation(ctx context.Context, actor model.Actor, reservationID uuid.UUID, reason string) (_ *model.Reservation, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.cancel", attribute.String("reservation.id", reservationID.String()))
	defer end(&err)

	res, err := s.reservations.FindByID(ctx, reservationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("reservation not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load reservation")
	}
	if !actor.Owns(res.UserID) {
		return nil, apperr.Forbidden("you can only cancel your own reservations")
	}
	if res.Status != model.ReservationPending {
		return nil, apperr.InvalidState("reservation is already %s", res.Status)
	}

	now := s.now().UTC()
	res.Status = model.ReservationCancelled
	res.CancelledAt = &now
	res.CancelReason = reason
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, apperr.Internal(err, "cancel reservation")
	}

	s.logger.Info("Reservation cancelled", zap.Stringer("reservation_id", res.ID), zap.Stringer("user_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityReservation, res.ID, actionCancelled, actor.UserID, map[string]string{"reason": reason})

	body := "Your reservation was cancelled."
	if reason != "" {
		body += " Reason: " + reason
	}
	s.notify.Emit(ctx, notification.Message{
		UserID:     res.UserID,
		Type:       model.NotifyReservationCanceled,
		Title:      "Reservation cancelled",
		Body:       body,
		RelatedID:  res.ID,
		ActionLink: "/reservations/mine",
	})
	return res, nil
}

func (s *service) NotifyAvailability(ctx context.Context, actor model.Actor, bookID uuid.UUID) (_ *model.Reservation, err error) {
	ctx, end := s.inst.Start(ctx, "reservation.notify_availability", attribute.String("book.id", bookID.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can notify reservations")
	}
	book, err := s.loadBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// Select-then-save: concurrent calls can pick the same reservation.
	pending, notified := model.ReservationPending, false
	queue, err := s.reservations.Find(ctx,
		model.FindReservation{BookID: &bookID, Status: &pending, NotifiedUser: &notified},
		model.Asc(model.SortByRequestedAt),
	)
	if err != nil {
		return nil, apperr.Internal(err, "load waitlist")
	}
	if len(queue) == 0 {
		return nil, apperr.NotFound("no pending reservation is waiting for this book")
	}
	res := queue[0]

	now := s.now().UTC()
	deadline := now.Add(PickupWindow)
	res.Status = model.ReservationFulfilled
	res.FulfilledAt = &now
	res.NotifiedUser = true
	res.PickupDeadline = &deadline
	if err := s.reservations.Save(ctx, res); err != nil {
		return nil, apperr.Internal(err, "fulfil reservation")
	}

	s.logger.Info("Reservation fulfilled",
		zap.Stringer("reservation_id", res.ID),
		zap.Stringer("book_id", bookID),
		zap.Int("waiting", len(queue)-1),
		zap.Stringer("staff_id", actor.UserID),
	)
	s.activity.Record(ctx, journal.EntityReservation, res.ID, actionFulfilled, actor.UserID, res)
	s.notify.Emit(ctx, notification.Message{
		UserID:     res.UserID,
		Type:       model.NotifyBookAvailable,
		Title:      "Your reserved book is available",
		Body:       fmt.Sprintf("%q is ready for pickup until %s.", book.Title, deadline.Format(time.DateTime)),
		RelatedID:  res.ID,
		ActionLink: "/reservations/mine",
	})
	return res, nil
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

func (s *service) expand(ctx context.Context, list []*model.Reservation, withUser bool) ([]*View, error) {
	books := make(map[uuid.UUID]*model.BookSummary)
	users := make(map[uuid.UUID]*model.UserSummary)

	views := make([]*View, 0, len(list))
	for _, res := range list {
		view := &View{Reservation: res}

		summary, ok := books[res.BookID]
		if !ok {
			book, err := s.books.FindByID(ctx, res.BookID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperr.Internal(err, "load book")
			}
			summary = book.Summary()
			books[res.BookID] = summary
		}
		view.Book = summary

		if withUser {
			user, ok := users[res.UserID]
			if !ok {
				u, err := s.users.FindByID(ctx, res.UserID)
				if err != nil && !errors.Is(err, store.ErrNotFound) {
					return nil, apperr.Internal(err, "load user")
				}
				user = u.Summary()
				users[res.UserID] = user
			}
			view.User = user
		}
		views = append(views, view)
	}
	return views, nil
}
