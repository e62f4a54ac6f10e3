// internal/auth/middleware.go
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

// UserFinder loads the account behind a token.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Middleware authenticates bearer tokens. The role is re-read from the user
// record so role changes apply without reissuing tokens.
type Middleware struct {
	tokens *Tokens
	users  UserFinder
	logger *zap.Logger
}

func NewMiddleware(tokens *Tokens, users UserFinder, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, users: users, logger: logger}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := request.ClientIP(r)

		actor, err := m.tokens.Verify(getAccessToken(r))
		if err != nil {
			m.logger.Debug("Failed to authenticate request",
				zap.String("client_ip", clientIP),
				zap.String("user_agent", r.UserAgent()),
				zap.Error(err),
			)
			response.Unauthorized(w, r)
			return
		}

		user, err := m.users.FindByID(r.Context(), actor.UserID)
		if errors.Is(err, store.ErrNotFound) {
			m.logger.Debug("Token subject no longer exists",
				zap.String("client_ip", clientIP),
				zap.Stringer("user_id", actor.UserID),
			)
			response.Unauthorized(w, r)
			return
		}
		if err != nil {
			response.ServerError(w, r, err)
			return
		}

		actor.Role = user.Role
		next.ServeHTTP(w, r.WithContext(request.WithActor(r.Context(), actor)))
	})
}

func getAccessToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
