package circulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/notification"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/memory"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/storetest"
)

type fixture struct {
	store   *memory.Store
	journal *journal.Memory
	notify  notification.Service
	service Service
	clock   time.Time
	staff   model.Actor
}

func newFixture(t rapid.TB) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.New(),
		journal: journal.NewMemory(),
		clock:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.clock }
	f.notify = notification.NewService(f.store.Notifications(), f.store.Users(), notification.WithClock(clock))
	f.service = f.newService(f.store)
	f.staff = f.addUser(t, model.RoleLibrarian)
	return f
}

func (f *fixture) newService(st *memory.Store, wrap ...func(*storetest.Store)) Service {
	wrapped := &storetest.Store{Store: st}
	for _, w := range wrap {
		w(wrapped)
	}
	return NewService(wrapped, f.notify,
		WithLogger(zap.NewNop()),
		WithClock(func() time.Time { return f.clock }),
		WithRecorder(journal.NewRecorder(f.journal, zap.NewNop())),
	)
}

func (f *fixture) addUser(t rapid.TB, role model.Role) model.Actor {
	t.Helper()
	u := &model.User{ID: uuid.New(), Name: string(role), Email: uuid.NewString() + "@example.com", Role: role}
	require.NoError(t, f.store.Users().Insert(context.Background(), u))
	return model.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) addBook(t rapid.TB, available int) *model.Book {
	t.Helper()
	b := &model.Book{
		ID: uuid.New(), Title: "The Dispossessed", Author: "Ursula K. Le Guin",
		TotalCopies: max(available, 1), AvailableCopies: available, Status: model.BookAvailable,
	}
	require.NoError(t, f.store.Books().Insert(context.Background(), b))
	return b
}

func (f *fixture) book(t rapid.TB, id uuid.UUID) *model.Book {
	t.Helper()
	b, err := f.store.Books().FindByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) notifications(t rapid.TB, actor model.Actor) []*model.Notification {
	t.Helper()
	list, err := f.notify.ListForUser(context.Background(), actor)
	require.NoError(t, err)
	return list
}

// approvedLoan creates and approves a request, returning the loan.
func (f *fixture) approvedLoan(t rapid.TB, borrower model.Actor) *model.BorrowRequest {
	t.Helper()
	ctx := context.Background()
	book := f.addBook(t, 1)
	req, err := f.service.CreateBorrowRequest(ctx, borrower, book.ID, "")
	require.NoError(t, err)
	loan, err := f.service.ApproveRequest(ctx, f.staff, req.ID)
	require.NoError(t, err)
	return loan
}

func TestCreateBorrowRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown book", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)

		_, err := f.service.CreateBorrowRequest(ctx, student, uuid.New(), "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("notifies every staff user", func(t *testing.T) {
		f := newFixture(t)
		admin := f.addUser(t, model.RoleAdmin)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 1)

		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "for my thesis")
		require.NoError(t, err)
		assert.Equal(t, model.RequestPending, req.Status)
		assert.Equal(t, model.RenewalNone, req.RenewalStatus)
		assert.Equal(t, f.clock, req.RequestedAt)

		for _, staff := range []model.Actor{f.staff, admin} {
			list := f.notifications(t, staff)
			require.Len(t, list, 1)
			assert.Equal(t, model.NotifyBorrowRequest, list[0].Type)
			assert.Equal(t, model.Related{Kind: model.RelatedBorrowRequest, ID: req.ID}, list[0].Related)
		}
		assert.Empty(t, f.notifications(t, student))
	})

	t.Run("second pending request conflicts", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 3)

		first, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		_, err = f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		assert.ErrorIs(t, err, apperr.ErrConflict)

		// Another user is unaffected.
		_, err = f.service.CreateBorrowRequest(ctx, f.addUser(t, model.RoleStudent), book.ID, "")
		require.NoError(t, err)

		// Once decided, the same user may ask again.
		_, err = f.service.DeclineRequest(ctx, f.staff, first.ID, "")
		require.NoError(t, err)
		_, err = f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		assert.NoError(t, err)
	})
}

func TestApproveRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("takes a copy and starts the loan", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 2)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		f.clock = f.clock.Add(time.Hour)
		approved, err := f.service.ApproveRequest(ctx, f.staff, req.ID)
		require.NoError(t, err)

		assert.Equal(t, model.RequestApproved, approved.Status)
		assert.Equal(t, f.staff.UserID, *approved.ProcessedBy)
		assert.Equal(t, f.clock, *approved.ProcessedAt)
		assert.Equal(t, f.clock, *approved.ApprovedAt)
		assert.Equal(t, f.clock.AddDate(0, 0, LoanPeriodDays), *approved.DueDate)
		assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)

		list := f.notifications(t, student)
		require.Len(t, list, 1)
		assert.Equal(t, model.NotifyBorrowApproved, list[0].Type)
		assert.Equal(t, req.ID, list[0].Related.ID)
	})

	t.Run("no copies left", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 0)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		_, err = f.service.ApproveRequest(ctx, f.staff, req.ID)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, apperr.CodeNoCopies, apperr.CodeOf(err))

		stored, err := f.store.BorrowRequests().FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestPending, stored.Status)
	})

	t.Run("staff only", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 1)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		_, err = f.service.ApproveRequest(ctx, student, req.ID)
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.ApproveRequest(ctx, f.staff, uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("book removed after request", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 1)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)
		_, err = f.store.Books().DeleteMany(ctx, model.FindBook{ID: &book.ID})
		require.NoError(t, err)

		_, err = f.service.ApproveRequest(ctx, f.staff, req.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("notification failure does not fail the approval", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 1)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		broken := &storetest.Faulty[model.Notification, model.FindNotification]{
			Repository: f.store.Notifications(),
			InsertErr:  errors.New("disk full"),
		}
		notify := notification.NewService(broken, f.store.Users())
		svc := NewService(f.store, notify, WithClock(func() time.Time { return f.clock }))

		approved, err := svc.ApproveRequest(ctx, f.staff, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, approved.Status)
		assert.Equal(t, 0, f.book(t, book.ID).AvailableCopies)
	})

	t.Run("book write failure surfaces after the request is saved", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		book := f.addBook(t, 1)
		req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "")
		require.NoError(t, err)

		svc := f.newService(f.store, func(s *storetest.Store) {
			s.BooksRepo = &storetest.Faulty[model.Book, model.FindBook]{Repository: f.store.Books(), SaveErr: errors.New("connection reset")}
		})
		_, err = svc.ApproveRequest(ctx, f.staff, req.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

		// No rollback: the request stays approved while the copy count is untouched.
		stored, err := f.store.BorrowRequests().FindByID(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RequestApproved, stored.Status)
		assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
	})

	t.Run("journals the transition", func(t *testing.T) {
		f := newFixture(t)
		student := f.addUser(t, model.RoleStudent)
		loan := f.approvedLoan(t, student)

		history, err := f.journal.History(ctx, loan.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, actionRequested, history[0].Action)
		assert.Equal(t, actionApproved, history[1].Action)
		assert.Equal(t, f.staff.UserID, history[1].ActorID)

		book, err := f.journal.History(ctx, loan.BookID)
		require.NoError(t, err)
		require.Len(t, book, 1)
		assert.JSONEq(t, `{"book_id":"`+loan.BookID.String()+`","available_before":1,"available_after":0}`, string(book[0].Data))
	})
}

func TestDeclineRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.addUser(t, model.RoleStudent)
	book := f.addBook(t, 1)
	req, err := f.service.CreateBorrowRequest(ctx, student, book.ID, "please")
	require.NoError(t, err)

	declined, err := f.service.DeclineRequest(ctx, f.staff, req.ID, "reserved for course")
	require.NoError(t, err)
	assert.Equal(t, model.RequestDeclined, declined.Status)
	assert.Equal(t, "reserved for course", declined.Message)
	assert.Nil(t, declined.DueDate)
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)

	list := f.notifications(t, student)
	require.Len(t, list, 1)
	assert.Equal(t, model.NotifyBorrowDeclined, list[0].Type)
	assert.Contains(t, list[0].Message, "reserved for course")

	_, err = f.service.DeclineRequest(ctx, f.staff, req.ID, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	student := f.addUser(t, model.RoleStudent)
	other := f.addUser(t, model.RoleStudent)
	kept := f.addBook(t, 1)
	removed := f.addBook(t, 1)

	first, err := f.service.CreateBorrowRequest(ctx, student, kept.ID, "")
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Minute)
	second, err := f.service.CreateBorrowRequest(ctx, other, removed.ID, "")
	require.NoError(t, err)
	_, err = f.store.Books().DeleteMany(ctx, model.FindBook{ID: &removed.ID})
	require.NoError(t, err)

	_, err = f.service.ListPendingRequests(ctx, student)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	pending, err := f.service.ListPendingRequests(ctx, f.staff)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID, "newest first")
	assert.Nil(t, pending[0].Book, "dangling book reference")
	assert.Equal(t, first.ID, pending[1].ID)
	assert.Equal(t, kept.Title, pending[1].Book.Title)
	assert.Equal(t, student.UserID, pending[1].User.ID)

	mine, err := f.service.ListMyRequests(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

// Two approvals racing for the last copy both read availableCopies=1 before
// either writes. Both succeed and the book ends at 0 with two loans out.
// This is the known lost-update gap of the copy counter.
func TestConcurrentApprovalsOverAllocate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	book := f.addBook(t, 1)

	var requests []*model.BorrowRequest
	for range 2 {
		req, err := f.service.CreateBorrowRequest(ctx, f.addUser(t, model.RoleStudent), book.ID, "")
		require.NoError(t, err)
		requests = append(requests, req)
	}

	barrier := storetest.NewBarrier(f.store.Books(), 2)
	racing := f.newService(f.store, func(s *storetest.Store) { s.BooksRepo = barrier })

	timeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, len(requests))
	for i, req := range requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = racing.ApproveRequest(timeout, f.staff, req.ID)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 0, f.book(t, book.ID).AvailableCopies)

	approved := model.RequestApproved
	loans, err := f.store.BorrowRequests().Find(ctx, model.FindBorrowRequest{BookID: &book.ID, Status: &approved}, model.Sort{})
	require.NoError(t, err)
	assert.Len(t, loans, 2, "two loans for a single copy")
}
