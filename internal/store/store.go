// internal/store/store.go
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

var (
	// ErrNotFound is returned by FindByID and FindOne when nothing matches.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicate is returned by Insert and Save when a unique field collides.
	ErrDuplicate = errors.New("duplicate entity")
	// ErrEmptyFilter guards DeleteMany against wiping a collection.
	ErrEmptyFilter = errors.New("delete requires at least one filter field")
	// ErrUnsupportedSort is returned for a sort field the collection does not know.
	ErrUnsupportedSort = errors.New("unsupported sort field")
)

// Repository is the minimal per-entity contract the workflows rely on.
// Every method is atomic for a single entity only.
type Repository[T any, F any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	FindOne(ctx context.Context, filter F) (*T, error)
	Find(ctx context.Context, filter F, sort model.Sort) ([]*T, error)
	Insert(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	DeleteMany(ctx context.Context, filter F) (int64, error)
}

type (
	Books          = Repository[model.Book, model.FindBook]
	Users          = Repository[model.User, model.FindUser]
	BorrowRequests = Repository[model.BorrowRequest, model.FindBorrowRequest]
	Reservations   = Repository[model.Reservation, model.FindReservation]
	Notifications  = Repository[model.Notification, model.FindNotification]
	Feedback       = Repository[model.Feedback, model.FindFeedback]
)

// Store groups the entity collections.
type Store interface {
	Books() Books
	Users() Users
	BorrowRequests() BorrowRequests
	Reservations() Reservations
	Notifications() Notifications
	Feedback() Feedback

	Ping(ctx context.Context) error
	Close() error
}
