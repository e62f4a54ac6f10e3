// internal/store/memory/memory.go
package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

// Store is an in-memory implementation of store.Store. Each collection is
// individually locked; nothing spans collections.
type Store struct {
	books          *collection[model.Book, model.FindBook]
	users          *collection[model.User, model.FindUser]
	borrowRequests *collection[model.BorrowRequest, model.FindBorrowRequest]
	reservations   *collection[model.Reservation, model.FindReservation]
	notifications  *collection[model.Notification, model.FindNotification]
	feedback       *collection[model.Feedback, model.FindFeedback]
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		books:          newBooks(),
		users:          newUsers(),
		borrowRequests: newBorrowRequests(),
		reservations:   newReservations(),
		notifications:  newNotifications(),
		feedback:       newFeedback(),
	}
}

func (s *Store) Books() store.Books                   { return s.books }
func (s *Store) Users() store.Users                   { return s.users }
func (s *Store) BorrowRequests() store.BorrowRequests { return s.borrowRequests }
func (s *Store) Reservations() store.Reservations     { return s.reservations }
func (s *Store) Notifications() store.Notifications   { return s.notifications }
func (s *Store) Feedback() store.Feedback             { return s.feedback }

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func newCollection[T any, F any](id func(*T) uuid.UUID, clone func(*T) *T, match func(F, *T) bool, isEmpty func(F) bool) *collection[T, F] {
	return &collection[T, F]{
		items:   make(map[uuid.UUID]*T),
		seq:     make(map[uuid.UUID]uint64),
		id:      id,
		clone:   clone,
		match:   match,
		isEmpty: isEmpty,
		order:   make(map[string]func(a, b *T) int),
	}
}

func eq[V comparable](want *V, got V) bool {
	return want == nil || *want == got
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

// compareOptionalTime sorts nil after every set time.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func newBooks() *collection[model.Book, model.FindBook] {
	c := newCollection(
		func(b *model.Book) uuid.UUID { return b.ID },
		(*model.Book).Clone,
		func(f model.FindBook, b *model.Book) bool {
			if !eq(f.ID, b.ID) || !eq(f.ISBN, b.ISBN) || !eq(f.Status, b.Status) {
				return false
			}
			if f.Category != nil && !slices.Contains(b.Categories, *f.Category) {
				return false
			}
			if f.Search != nil {
				q := strings.ToLower(*f.Search)
				if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
					return false
				}
			}
			return true
		},
		func(f model.FindBook) bool {
			return f.ID == nil && f.ISBN == nil && f.Category == nil && f.Search == nil && f.Status == nil
		},
	)
	c.collides = func(a, b *model.Book) bool {
		return a.ISBN != "" && a.ISBN == b.ISBN
	}
	c.order[model.SortByTitle] = func(a, b *model.Book) int { return strings.Compare(a.Title, b.Title) }
	c.order[model.SortByCreatedAt] = func(a, b *model.Book) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	return c
}

func newUsers() *collection[model.User, model.FindUser] {
	c := newCollection(
		func(u *model.User) uuid.UUID { return u.ID },
		(*model.User).Clone,
		func(f model.FindUser, u *model.User) bool {
			if !eq(f.ID, u.ID) || !eq(f.Email, u.Email) {
				return false
			}
			return len(f.Roles) == 0 || slices.Contains(f.Roles, u.Role)
		},
		func(f model.FindUser) bool {
			return f.ID == nil && f.Email == nil && len(f.Roles) == 0
		},
	)
	c.collides = func(a, b *model.User) bool {
		return strings.EqualFold(a.Email, b.Email)
	}
	c.order[model.SortByName] = func(a, b *model.User) int { return strings.Compare(a.Name, b.Name) }
	c.order[model.SortByCreatedAt] = func(a, b *model.User) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	return c
}

func newBorrowRequests() *collection[model.BorrowRequest, model.FindBorrowRequest] {
	c := newCollection(
		func(r *model.BorrowRequest) uuid.UUID { return r.ID },
		(*model.BorrowRequest).Clone,
		func(f model.FindBorrowRequest, r *model.BorrowRequest) bool {
			return eq(f.ID, r.ID) && eq(f.BookID, r.BookID) && eq(f.UserID, r.UserID) &&
				eq(f.Status, r.Status) && eq(f.RenewalStatus, r.RenewalStatus) && eq(f.Returned, r.Returned)
		},
		func(f model.FindBorrowRequest) bool {
			return f.ID == nil && f.BookID == nil && f.UserID == nil && f.Status == nil && f.RenewalStatus == nil && f.Returned == nil
		},
	)
	c.order[model.SortByRequestedAt] = func(a, b *model.BorrowRequest) int { return compareTime(a.RequestedAt, b.RequestedAt) }
	c.order[model.SortByRenewalRequestedAt] = func(a, b *model.BorrowRequest) int {
		return compareOptionalTime(a.RenewalRequestedAt, b.RenewalRequestedAt)
	}
	return c
}

func newReservations() *collection[model.Reservation, model.FindReservation] {
	c := newCollection(
		func(r *model.Reservation) uuid.UUID { return r.ID },
		(*model.Reservation).Clone,
		func(f model.FindReservation, r *model.Reservation) bool {
			return eq(f.ID, r.ID) && eq(f.BookID, r.BookID) && eq(f.UserID, r.UserID) &&
				eq(f.Status, r.Status) && eq(f.NotifiedUser, r.NotifiedUser)
		},
		func(f model.FindReservation) bool {
			return f.ID == nil && f.BookID == nil && f.UserID == nil && f.Status == nil && f.NotifiedUser == nil
		},
	)
	c.order[model.SortByRequestedAt] = func(a, b *model.Reservation) int { return compareTime(a.RequestedAt, b.RequestedAt) }
	return c
}

func newNotifications() *collection[model.Notification, model.FindNotification] {
	c := newCollection(
		func(n *model.Notification) uuid.UUID { return n.ID },
		(*model.Notification).Clone,
		func(f model.FindNotification, n *model.Notification) bool {
			return eq(f.ID, n.ID) && eq(f.UserID, n.UserID) && eq(f.Type, n.Type) && eq(f.RelatedID, n.Related.ID)
		},
		func(f model.FindNotification) bool {
			return f.ID == nil && f.UserID == nil && f.Type == nil && f.RelatedID == nil
		},
	)
	c.order[model.SortByCreatedAt] = func(a, b *model.Notification) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	return c
}

func newFeedback() *collection[model.Feedback, model.FindFeedback] {
	c := newCollection(
		func(f *model.Feedback) uuid.UUID { return f.ID },
		(*model.Feedback).Clone,
		func(f model.FindFeedback, fb *model.Feedback) bool {
			return eq(f.ID, fb.ID) && eq(f.UserID, fb.UserID)
		},
		func(f model.FindFeedback) bool {
			return f.ID == nil && f.UserID == nil
		},
	)
	c.order[model.SortByCreatedAt] = func(a, b *model.Feedback) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	return c
}
