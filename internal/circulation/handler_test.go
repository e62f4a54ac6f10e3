package circulation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

func newRouter(f *fixture, actor *model.Actor) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if actor != nil {
				req = req.WithContext(request.WithActor(req.Context(), *actor))
			}
			next.ServeHTTP(w, req)
		})
	})
	NewHandler(f.service).Routes(r)
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, strings.NewReader(body)))
	return w
}

func TestHandlerBorrowFlow(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, model.RoleStudent)
	book := f.addBook(t, 1)
	asStudent := newRouter(f, &student)
	asStaff := newRouter(f, &f.staff)

	w := serve(asStudent, http.MethodPost, "/borrow-requests", `{"book_id":"`+book.ID.String()+`","message":"hi"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = serve(asStudent, http.MethodPost, "/borrow-requests", `{"book_id":"`+book.ID.String()+`"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(asStudent, http.MethodGet, "/borrow-requests/pending", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	mine, err := f.service.ListMyRequests(t.Context(), student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	id := mine[0].ID.String()

	w = serve(asStaff, http.MethodPost, "/borrow-requests/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"approved"`)

	w = serve(asStaff, http.MethodPost, "/borrow-requests/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error_message":"request has already been approved"}`, w.Body.String())

	w = serve(asStudent, http.MethodGet, "/loans/mine", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"loan_status":"active"`)

	for range MaxRenewals {
		w = serve(asStudent, http.MethodPost, "/loans/"+id+"/renewal", `{"note":"more time"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		w = serve(asStaff, http.MethodPost, "/loans/"+id+"/renewal/approve", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w = serve(asStudent, http.MethodPost, "/loans/"+id+"/renewal", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(asStaff, http.MethodGet, "/loans/renewals/pending", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHandlerRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	student := f.addUser(t, model.RoleStudent)
	h := newRouter(f, &student)

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/borrow-requests", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/borrow-requests", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodPost, "/loans/not-a-uuid/renewal", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(f, nil), http.MethodGet, "/loans/mine", "").Code)
}
