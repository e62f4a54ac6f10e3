// internal/server/middleware.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/request"
)

// logRequests stores the client IP in the request context and logs every
// request once it completes.
func logRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := request.FindClientIP(r)
			ctx := context.WithValue(r.Context(), request.ClientIPContextKey, clientIP)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()
			defer func() {
				logger.Debug("Incoming request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("proto", r.Proto),
					zap.Int("status", ww.Status()),
					zap.String("client_ip", clientIP),
					zap.Duration("duration", time.Since(t1)))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
