// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, actor model.Actor, in BookInput) (*model.Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	ListBooks(ctx context.Context, q Query) ([]*model.Book, error)
	UpdateBook(ctx context.Context, actor model.Actor, id uuid.UUID, patch BookPatch) (*model.Book, error)
	RemoveBook(ctx context.Context, actor model.Actor, id uuid.UUID) error
}
