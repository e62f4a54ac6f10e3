package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/memory"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type testSuite struct {
	t      *testing.T
	app    *App
	store  *memory.Store
	server *httptest.Server
}

func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()
	st := memory.New()
	app, err := NewApp(st, journal.NewMemory(), Options{
		JWTSecret:          "integration-secret",
		RateLimitPerMinute: 600,
		RateLimitBurst:     100,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(srv.Close)
	return &testSuite{t: t, app: app, store: st, server: srv}
}

// staffToken creates a staff account directly, since staff cannot self-register.
func (ts *testSuite) staffToken(role model.Role) string {
	ts.t.Helper()
	u := &model.User{ID: uuid.New(), Name: "Staff " + string(role), Email: uuid.NewString() + "@library.test", Role: role}
	require.NoError(ts.t, ts.store.Users().Insert(context.Background(), u))
	token, _, err := ts.app.tokens.Generate(u)
	require.NoError(ts.t, err)
	return token
}

func (ts *testSuite) register(name, email string) string {
	ts.t.Helper()
	resp := ts.do(http.MethodPost, "/auth/register", "", map[string]string{"name": name, "email": email, "password": "SecurePass123!"})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)

	var session struct {
		AccessToken string `json:"access_token"`
	}
	resp = ts.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "SecurePass123!"})
	require.Equal(ts.t, http.StatusOK, resp.StatusCode)
	decode(ts.t, resp, &session)
	return session.AccessToken
}

func (ts *testSuite) do(method, path, token string, body any) *http.Response {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.server.URL+APIPrefix+path, &buf)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.server.Client().Do(req)
	require.NoError(ts.t, err)
	ts.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

func TestHealthz(t *testing.T) {
	ts := setupTestSuite(t)
	resp, err := ts.server.Client().Get(ts.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type brokenStore struct {
	*memory.Store
}

func (brokenStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthzReportsStoreFailure(t *testing.T) {
	app, err := NewApp(brokenStore{memory.New()}, journal.NewMemory(), Options{JWTSecret: "s"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestNewAppRequiresSecret(t *testing.T) {
	_, err := NewApp(memory.New(), journal.NewMemory(), Options{})
	assert.Error(t, err)
}

func TestAuthenticationBoundary(t *testing.T) {
	ts := setupTestSuite(t)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/books", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodPost, "/books", "", map[string]any{"title": "x"}).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/loans/mine", "not-a-token", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/notifications", "", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/nowhere", "", nil).StatusCode)
}

func TestBorrowAndRenewFlow(t *testing.T) {
	ts := setupTestSuite(t)
	librarian := ts.staffToken(model.RoleLibrarian)
	admin := ts.staffToken(model.RoleAdmin)
	student := ts.register("Test User", "test@example.com")

	var book struct {
		idOnly
		AvailableCopies int `json:"available_copies"`
	}
	resp := ts.do(http.MethodPost, "/books", librarian, map[string]any{
		"isbn": "9780141439518", "title": "Pride and Prejudice", "author": "Jane Austen", "total_copies": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &book)
	assert.Equal(t, 2, book.AvailableCopies)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodPost, "/books", student, map[string]any{"title": "t", "author": "a"}).StatusCode)

	var borrow idOnly
	resp = ts.do(http.MethodPost, "/borrow-requests", student, map[string]any{"book_id": book.ID, "message": "for my thesis"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &borrow)

	resp = ts.do(http.MethodPost, "/borrow-requests", student, map[string]any{"book_id": book.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var pending []idOnly
	resp = ts.do(http.MethodGet, "/borrow-requests/pending", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, borrow.ID, pending[0].ID)

	resp = ts.do(http.MethodPost, fmt.Sprintf("/borrow-requests/%s/approve", borrow.ID), librarian, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.do(http.MethodPost, fmt.Sprintf("/borrow-requests/%s/approve", borrow.ID), librarian, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/books/"+book.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &book)
	assert.Equal(t, 1, book.AvailableCopies)

	var loans []struct {
		idOnly
		LoanStatus model.LoanStatus `json:"loan_status"`
		DueDate    time.Time        `json:"due_date"`
	}
	resp = ts.do(http.MethodGet, "/loans/mine", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &loans)
	require.Len(t, loans, 1)
	assert.Equal(t, model.LoanActive, loans[0].LoanStatus)
	firstDue := loans[0].DueDate

	renewal := fmt.Sprintf("/loans/%s/renewal", borrow.ID)
	for i := 0; i < 2; i++ {
		resp = ts.do(http.MethodPost, renewal, student, map[string]string{"note": "still reading"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp = ts.do(http.MethodPost, renewal+"/approve", librarian, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp = ts.do(http.MethodPost, renewal, student, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = ts.do(http.MethodGet, "/loans/mine", student, nil)
	decode(t, resp, &loans)
	assert.Equal(t, firstDue.AddDate(0, 0, 60), loans[0].DueDate)

	var notifications []struct {
		Type model.NotificationType `json:"type"`
	}
	resp = ts.do(http.MethodGet, "/notifications", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &notifications)
	assert.NotEmpty(t, notifications)

	var history []journal.Entry
	resp = ts.do(http.MethodGet, "/activity/"+borrow.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &history)
	assert.Len(t, history, 6)

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/activity/"+borrow.ID.String(), student, nil).StatusCode)
}

func TestReservationFlow(t *testing.T) {
	ts := setupTestSuite(t)
	librarian := ts.staffToken(model.RoleLibrarian)
	first := ts.register("First", "first@example.com")
	second := ts.register("Second", "second@example.com")

	var book idOnly
	resp := ts.do(http.MethodPost, "/books", librarian, map[string]any{"title": "The Great Gatsby", "author": "F. Scott Fitzgerald", "total_copies": 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &book)

	for _, token := range []string{first, second} {
		resp = ts.do(http.MethodPost, "/reservations", token, map[string]any{"book_id": book.ID})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var waitlist []struct {
		Position int `json:"position"`
	}
	resp = ts.do(http.MethodGet, "/books/"+book.ID.String()+"/waitlist", librarian, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &waitlist)
	require.Len(t, waitlist, 2)
	assert.Equal(t, 1, waitlist[0].Position)

	notify := "/books/" + book.ID.String() + "/notify-availability"
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, notify, librarian, nil).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(http.MethodPost, notify, librarian, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, notify, librarian, nil).StatusCode)

	var mine []struct {
		Status model.ReservationStatus `json:"status"`
	}
	resp = ts.do(http.MethodGet, "/reservations/mine", first, nil)
	decode(t, resp, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, model.ReservationFulfilled, mine[0].Status)
}

func TestFeedbackFlow(t *testing.T) {
	ts := setupTestSuite(t)
	librarian := ts.staffToken(model.RoleLibrarian)
	student := ts.register("Reader", "reader@example.com")

	resp := ts.do(http.MethodPost, "/feedback", student, map[string]any{"subject": "Hours", "message": "Open later", "rating": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var all []idOnly
	resp = ts.do(http.MethodGet, "/feedback", librarian, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &all)
	assert.Len(t, all, 1)

	var notifications []struct {
		ID   uuid.UUID              `json:"id"`
		Type model.NotificationType `json:"type"`
	}
	resp = ts.do(http.MethodGet, "/notifications", librarian, nil)
	decode(t, resp, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyFeedback, notifications[0].Type)

	resp = ts.do(http.MethodPost, "/notifications/"+notifications[0].ID.String()+"/read", librarian, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRoleChangeAppliesToExistingToken(t *testing.T) {
	ts := setupTestSuite(t)
	admin := ts.staffToken(model.RoleAdmin)
	student := ts.register("Promoted", "promoted@example.com")

	assert.Equal(t, http.StatusForbidden, ts.do(http.MethodGet, "/users", student, nil).StatusCode)

	var me idOnly
	resp := ts.do(http.MethodGet, "/users/me", student, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &me)

	resp = ts.do(http.MethodPatch, "/users/"+me.ID.String()+"/role", admin, map[string]string{"role": "librarian"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/users", student, nil).StatusCode)
}
