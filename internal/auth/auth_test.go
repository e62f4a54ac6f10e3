package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/memory"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	user := &model.User{ID: uuid.New(), Role: model.RoleLibrarian}

	signed, expiresAt, err := tokens.Generate(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	actor, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, user.ID, actor.UserID)
	assert.Equal(t, model.RoleLibrarian, actor.Role)
}

func TestVerifyRejects(t *testing.T) {
	user := &model.User{ID: uuid.New(), Role: model.RoleStudent}
	tokens := NewTokens("secret", time.Hour)

	other, _, err := NewTokens("other", time.Hour).Generate(user)
	require.NoError(t, err)

	expiredIssuer := NewTokens("secret", time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.Generate(user)
	require.NoError(t, err)

	noKid := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: Issuer, Subject: user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	noKidSigned, err := noKid.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not.a.token",
		"wrong secret": other,
		"expired":      expired,
		"missing kid":  noKidSigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	tokens := NewTokens("secret", time.Hour)

	user := &model.User{ID: uuid.New(), Email: "a@example.com", Role: model.RoleStudent}
	require.NoError(t, s.Users().Insert(ctx, user))

	// The role in the token is stale; the middleware uses the stored role.
	promoted := user.Clone()
	promoted.Role = model.RoleAdmin
	require.NoError(t, s.Users().Save(ctx, promoted))

	signed, _, err := tokens.Generate(user)
	require.NoError(t, err)

	ghost, _, err := tokens.Generate(&model.User{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)

	var seen model.Actor
	handler := NewMiddleware(tokens, s.Users(), zap.NewNop()).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = request.GetActor(r)
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + signed, http.StatusTeapot},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + signed, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, model.RoleAdmin, seen.Role)
}
