// internal/store/storetest/storetest.go

// Package storetest wraps repositories to inject failures and to force
// interleavings in workflow tests.
package storetest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

// Faulty returns the configured error from the matching operation instead of
// delegating. Nil errors delegate.
type Faulty[T any, F any] struct {
	store.Repository[T, F]

	FindErr   error
	InsertErr error
	SaveErr   error
	DeleteErr error
}

func (f *Faulty[T, F]) Find(ctx context.Context, filter F, sort model.Sort) ([]*T, error) {
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	return f.Repository.Find(ctx, filter, sort)
}

func (f *Faulty[T, F]) Insert(ctx context.Context, entity *T) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	return f.Repository.Insert(ctx, entity)
}

func (f *Faulty[T, F]) Save(ctx context.Context, entity *T) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	return f.Repository.Save(ctx, entity)
}

func (f *Faulty[T, F]) DeleteMany(ctx context.Context, filter F) (int64, error) {
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}
	return f.Repository.DeleteMany(ctx, filter)
}

// Barrier holds every FindByID call until Parties callers have read, so all
// of them observe the same snapshot before any of them writes.
type Barrier[T any, F any] struct {
	store.Repository[T, F]

	once    sync.Once
	mu      sync.Mutex
	parties int
	arrived int
	release chan struct{}
}

func NewBarrier[T any, F any](repo store.Repository[T, F], parties int) *Barrier[T, F] {
	return &Barrier[T, F]{Repository: repo, parties: parties, release: make(chan struct{})}
}

func (b *Barrier[T, F]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	entity, err := b.Repository.FindByID(ctx, id)

	b.mu.Lock()
	b.arrived++
	if b.arrived >= b.parties {
		b.once.Do(func() { close(b.release) })
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return entity, err
}

// Store overrides individual collections of an underlying store.Store.
type Store struct {
	store.Store

	BooksRepo         store.Books
	UsersRepo         store.Users
	BorrowRepo        store.BorrowRequests
	ReservationsRepo  store.Reservations
	NotificationsRepo store.Notifications
	FeedbackRepo      store.Feedback
}

func (s *Store) Books() store.Books {
	if s.BooksRepo != nil {
		return s.BooksRepo
	}
	return s.Store.Books()
}

func (s *Store) Users() store.Users {
	if s.UsersRepo != nil {
		return s.UsersRepo
	}
	return s.Store.Users()
}

func (s *Store) BorrowRequests() store.BorrowRequests {
	if s.BorrowRepo != nil {
		return s.BorrowRepo
	}
	return s.Store.BorrowRequests()
}

func (s *Store) Reservations() store.Reservations {
	if s.ReservationsRepo != nil {
		return s.ReservationsRepo
	}
	return s.Store.Reservations()
}

func (s *Store) Notifications() store.Notifications {
	if s.NotificationsRepo != nil {
		return s.NotificationsRepo
	}
	return s.Store.Notifications()
}

func (s *Store) Feedback() store.Feedback {
	if s.FeedbackRepo != nil {
		return s.FeedbackRepo
	}
	return s.Store.Feedback()
}
