// internal/store/postgres/store.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

const driverName = "postgres"

var dialect = goqu.Dialect("postgres")

// Store is the PostgreSQL implementation of store.Store.
type Store struct {
	db *sqlx.DB

	books          *table[model.Book, model.FindBook, bookRow]
	users          *table[model.User, model.FindUser, userRow]
	borrowRequests *table[model.BorrowRequest, model.FindBorrowRequest, borrowRequestRow]
	reservations   *table[model.Reservation, model.FindReservation, reservationRow]
	notifications  *table[model.Notification, model.FindNotification, notificationRow]
	feedback       *table[model.Feedback, model.FindFeedback, feedbackRow]
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection pool. The schema must already be migrated.
func New(db *sqlx.DB) *Store {
	tracer := otel.Tracer("libraxpert/store")

	return &Store{
		db: db,
		books: &table[model.Book, model.FindBook, bookRow]{
			db: db, tracer: tracer, name: "books",
			id:      func(b *model.Book) uuid.UUID { return b.ID },
			toRow:   toBookRow,
			fromRow: fromBookRow,
			where:   whereBook,
			sorts: map[string]string{
				model.SortByTitle:     "title",
				model.SortByCreatedAt: "created_at",
			},
		},
		users: &table[model.User, model.FindUser, userRow]{
			db: db, tracer: tracer, name: "users",
			id:      func(u *model.User) uuid.UUID { return u.ID },
			toRow:   toUserRow,
			fromRow: fromUserRow,
			where:   whereUser,
			sorts: map[string]string{
				model.SortByName:      "name",
				model.SortByCreatedAt: "created_at",
			},
		},
		borrowRequests: &table[model.BorrowRequest, model.FindBorrowRequest, borrowRequestRow]{
			db: db, tracer: tracer, name: "borrow_requests",
			id:      func(r *model.BorrowRequest) uuid.UUID { return r.ID },
			toRow:   toBorrowRequestRow,
			fromRow: fromBorrowRequestRow,
			where:   whereBorrowRequest,
			sorts: map[string]string{
				model.SortByRequestedAt:        "requested_at",
				model.SortByRenewalRequestedAt: "renewal_requested_at",
			},
		},
		reservations: &table[model.Reservation, model.FindReservation, reservationRow]{
			db: db, tracer: tracer, name: "reservations",
			id:      func(r *model.Reservation) uuid.UUID { return r.ID },
			toRow:   toReservationRow,
			fromRow: fromReservationRow,
			where:   whereReservation,
			sorts: map[string]string{
				model.SortByRequestedAt: "requested_at",
			},
		},
		notifications: &table[model.Notification, model.FindNotification, notificationRow]{
			db: db, tracer: tracer, name: "notifications",
			id:      func(n *model.Notification) uuid.UUID { return n.ID },
			toRow:   toNotificationRow,
			fromRow: fromNotificationRow,
			where:   whereNotification,
			sorts: map[string]string{
				model.SortByCreatedAt: "created_at",
			},
		},
		feedback: &table[model.Feedback, model.FindFeedback, feedbackRow]{
			db: db, tracer: tracer, name: "feedback",
			id:      func(f *model.Feedback) uuid.UUID { return f.ID },
			toRow:   toFeedbackRow,
			fromRow: fromFeedbackRow,
			where:   whereFeedback,
			sorts: map[string]string{
				model.SortByCreatedAt: "created_at",
			},
		},
	}
}

func (s *Store) Books() store.Books                   { return s.books }
func (s *Store) Users() store.Users                   { return s.users }
func (s *Store) BorrowRequests() store.BorrowRequests { return s.borrowRequests }
func (s *Store) Reservations() store.Reservations     { return s.reservations }
func (s *Store) Notifications() store.Notifications   { return s.notifications }
func (s *Store) Feedback() store.Feedback             { return s.feedback }

// DB exposes the pool for the activity journal and migrations.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func whereBook(f model.FindBook) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.ISBN != nil {
		where = append(where, goqu.C("isbn").Eq(*f.ISBN))
	}
	if f.Category != nil {
		where = append(where, goqu.L("? = ANY(categories)", *f.Category))
	}
	if f.Search != nil {
		pattern := "%" + likeEscaper.Replace(*f.Search) + "%"
		where = append(where, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("author").ILike(pattern),
		))
	}
	if f.Status != nil {
		where = append(where, goqu.C("status").Eq(string(*f.Status)))
	}
	return where
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func whereUser(f model.FindUser) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.Email != nil {
		where = append(where, goqu.Func("LOWER", goqu.C("email")).Eq(strings.ToLower(*f.Email)))
	}
	if len(f.Roles) > 0 {
		roles := make([]any, len(f.Roles))
		for i, r := range f.Roles {
			roles[i] = string(r)
		}
		where = append(where, goqu.C("role").In(roles...))
	}
	return where
}

func whereBorrowRequest(f model.FindBorrowRequest) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.BookID != nil {
		where = append(where, goqu.C("book_id").Eq(*f.BookID))
	}
	if f.UserID != nil {
		where = append(where, goqu.C("user_id").Eq(*f.UserID))
	}
	if f.Status != nil {
		where = append(where, goqu.C("status").Eq(string(*f.Status)))
	}
	if f.RenewalStatus != nil {
		where = append(where, goqu.C("renewal_status").Eq(string(*f.RenewalStatus)))
	}
	if f.Returned != nil {
		where = append(where, goqu.C("returned").Eq(*f.Returned))
	}
	return where
}

func whereReservation(f model.FindReservation) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.BookID != nil {
		where = append(where, goqu.C("book_id").Eq(*f.BookID))
	}
	if f.UserID != nil {
		where = append(where, goqu.C("user_id").Eq(*f.UserID))
	}
	if f.Status != nil {
		where = append(where, goqu.C("status").Eq(string(*f.Status)))
	}
	if f.NotifiedUser != nil {
		where = append(where, goqu.C("notified_user").Eq(*f.NotifiedUser))
	}
	return where
}

func whereNotification(f model.FindNotification) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.UserID != nil {
		where = append(where, goqu.C("user_id").Eq(*f.UserID))
	}
	if f.Type != nil {
		where = append(where, goqu.C("type").Eq(string(*f.Type)))
	}
	if f.RelatedID != nil {
		where = append(where, goqu.C("related_id").Eq(*f.RelatedID))
	}
	return where
}

func whereFeedback(f model.FindFeedback) []exp.Expression {
	var where []exp.Expression
	if f.ID != nil {
		where = append(where, goqu.C("id").Eq(*f.ID))
	}
	if f.UserID != nil {
		where = append(where, goqu.C("user_id").Eq(*f.UserID))
	}
	return where
}
