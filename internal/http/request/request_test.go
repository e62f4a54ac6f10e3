package request

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

func TestFindClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded for, first valid", map[string]string{"X-Forwarded-For": "garbage, 203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", nil, "192.0.2.9", "192.0.2.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, FindClientIP(r))
		})
	}
}

func TestActorContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetActor(r)
	assert.False(t, ok)

	actor := model.Actor{UserID: uuid.New(), Role: model.RoleLibrarian}
	r = r.WithContext(WithActor(r.Context(), actor))
	got, ok := GetActor(r)
	require.True(t, ok)
	assert.Equal(t, actor, got)
}

func TestClientIPPrefersContext(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), ClientIPContextKey, "203.0.113.1"))
	assert.Equal(t, "203.0.113.1", ClientIP(r))
}

func TestRouteUUIDParam(t *testing.T) {
	id := uuid.New()
	router := chi.NewRouter()

	var got uuid.UUID
	var gotErr error
	router.Get("/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = RouteUUIDParam(r, "id")
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/"+id.String(), nil))
	require.NoError(t, gotErr)
	assert.Equal(t, id, got)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/not-a-uuid", nil))
	assert.Error(t, gotErr)
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Reason string `json:"reason"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"damaged"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "damaged", body.Reason)

	r = httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	assert.NoError(t, DecodeJSON(r, &body))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":`))
	assert.Error(t, DecodeJSON(r, &body))
}

func TestQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?q=dune&available=true&bad=maybe", nil)
	require.NotNil(t, QueryStringParam(r, "q"))
	assert.Equal(t, "dune", *QueryStringParam(r, "q"))
	assert.Nil(t, QueryStringParam(r, "category"))
	assert.True(t, QueryBoolParam(r, "available", false))
	assert.False(t, QueryBoolParam(r, "bad", false))
}
