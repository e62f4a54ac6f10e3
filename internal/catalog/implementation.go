// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

// service implements the Service interface.
type service struct {
	books    store.Books
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

func WithRecorder(r *journal.Recorder) Option {
	return func(s *service) { s.activity = r }
}

// NewService creates a new catalog service instance.
func NewService(st store.Store, opts ...Option) Service {
	s := &service{
		books:  st.Books(),
		logger: zap.NewNop(),
		now:    time.Now,
		inst:   telemetry.NewInstrument("catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBook creates a new book with every copy available.
func (s *service) AddBook(ctx context.Context, actor model.Actor, in BookInput) (_ *model.Book, err error) {
	ctx, end := s.inst.Start(ctx, "catalog.add_book", attribute.String("isbn", in.ISBN))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can add books")
	}
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkISBN(ctx, in.ISBN, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	book := &model.Book{
		ID:              uuid.New(),
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Categories:      in.Categories,
		Description:     in.Description,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		Status:          in.Status,
		Rating:          in.Rating,
		CoverImage:      in.CoverImage,
		PDFFile:         in.PDFFile,
		Tags:            in.Tags,
		AddedBy:         actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.books.Insert(ctx, book); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("a book with ISBN %s already exists", in.ISBN).WithCode(apperr.CodeDuplicate)
		}
		return nil, apperr.Internal(err, "add book")
	}

	s.logger.Info("Book added", zap.Stringer("book_id", book.ID), zap.String("title", book.Title), zap.Int("copies", book.TotalCopies))
	s.activity.Record(ctx, journal.EntityBook, book.ID, actionAdded, actor.UserID, book)
	return book, nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (_ *model.Book, err error) {
	ctx, end := s.inst.Start(ctx, "catalog.get_book", attribute.String("book.id", id.String()))
	defer end(&err)

	book, err := s.books.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("book not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "load book")
	}
	return book, nil
}

// ListBooks returns matching books sorted by title.
func (s *service) ListBooks(ctx context.Context, q Query) (_ []*model.Book, err error) {
	ctx, end := s.inst.Start(ctx, "catalog.list_books",
		attribute.String("query.search", q.Search),
		attribute.String("query.category", q.Category),
	)
	defer end(&err)

	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Invalid("unknown status %q", q.Status)
	}
	books, err := s.books.Find(ctx, q.filter(), model.Asc(model.SortByTitle))
	if err != nil {
		return nil, apperr.Internal(err, "list books")
	}
	if books == nil {
		books = []*model.Book{}
	}
	return books, nil
}

func (s *service) UpdateBook(ctx context.Context, actor model.Actor, id uuid.UUID, patch BookPatch) (_ *model.Book, err error) {
	ctx, end := s.inst.Start(ctx, "catalog.update_book", attribute.String("book.id", id.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return nil, apperr.Forbidden("only staff can update books")
	}
	book, err := s.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	previousISBN := book.ISBN
	in := patch.apply(book)
	if err := in.validate(); err != nil {
		return nil, err
	}
	if book.ISBN != previousISBN {
		if err := s.checkISBN(ctx, book.ISBN, book.ID); err != nil {
			return nil, err
		}
	}

	book.UpdatedAt = s.now().UTC()
	if err := s.books.Save(ctx, book); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict("a book with ISBN %s already exists", book.ISBN).WithCode(apperr.CodeDuplicate)
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("book not found")
		}
		return nil, apperr.Internal(err, "update book")
	}

	s.logger.Info("Book updated",
		zap.Stringer("book_id", book.ID),
		zap.Int("total_copies", book.TotalCopies),
		zap.Int("available_copies", book.AvailableCopies),
	)
	s.activity.Record(ctx, journal.EntityBook, book.ID, actionUpdated, actor.UserID, patch)
	return book, nil
}

// RemoveBook deletes the book. Requests and reservations that reference it
// are left in place.
func (s *service) RemoveBook(ctx context.Context, actor model.Actor, id uuid.UUID) (err error) {
	ctx, end := s.inst.Start(ctx, "catalog.remove_book", attribute.String("book.id", id.String()))
	defer end(&err)

	if !actor.IsStaff() {
		return apperr.Forbidden("only staff can remove books")
	}

	n, err := s.books.DeleteMany(ctx, model.FindBook{ID: &id})
	if err != nil {
		return apperr.Internal(err, "remove book")
	}
	if n == 0 {
		return apperr.NotFound("book not found")
	}

	s.logger.Info("Book removed", zap.Stringer("book_id", id), zap.Stringer("staff_id", actor.UserID))
	s.activity.Record(ctx, journal.EntityBook, id, actionRemoved, actor.UserID, nil)
	return nil
}

func (s *service) checkISBN(ctx context.Context, isbn string, self uuid.UUID) error {
	if isbn == "" {
		return nil
	}
	existing, err := s.books.FindOne(ctx, model.FindBook{ISBN: &isbn})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return apperr.Internal(err, "check isbn")
	case existing.ID != self:
		return apperr.Conflict("a book with ISBN %s already exists", isbn).WithCode(apperr.CodeDuplicate)
	}
	return nil
}
