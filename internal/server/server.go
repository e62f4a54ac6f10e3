// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/auth"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/catalog"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/circulation"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/feedback"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/http/response"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/membership"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/notification"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/reservation"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

// APIPrefix is where every endpoint except the health check is mounted.
const APIPrefix = "/api/v1"

// Options configures NewApp. Zero values fall back to defaults.
type Options struct {
	Logger             *zap.Logger
	Clock              func() time.Time
	JWTSecret          string
	JWTTTL             time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

// App holds the wired services of one process.
type App struct {
	store  store.Store
	tokens *auth.Tokens
	logger *zap.Logger

	Catalog       catalog.Service
	Circulation   circulation.Service
	Reservations  reservation.Service
	Membership    membership.Service
	Feedback      feedback.Service
	Notifications notification.Service
	Activity      *journal.Service
}

// NewApp builds every service on top of st, journaling transitions to j.
func NewApp(st store.Store, j journal.Journal, opts Options) (*App, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.JWTTTL <= 0 {
		opts.JWTTTL = 24 * time.Hour
	}
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = membership.DefaultRateLimitPerMinute
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = membership.DefaultRateLimitBurst
	}

	logger := opts.Logger
	recorder := journal.NewRecorder(j, logger.Named("journal"))
	notifications := notification.NewService(st.Notifications(), st.Users(),
		notification.WithLogger(logger.Named("notification")),
		notification.WithClock(opts.Clock),
	)

	return &App{
		store:  st,
		tokens: auth.NewTokens(opts.JWTSecret, opts.JWTTTL),
		logger: logger,

		Catalog: catalog.NewService(st,
			catalog.WithLogger(logger.Named("catalog")),
			catalog.WithClock(opts.Clock),
			catalog.WithRecorder(recorder),
		),
		Circulation: circulation.NewService(st, notifications,
			circulation.WithLogger(logger.Named("circulation")),
			circulation.WithClock(opts.Clock),
			circulation.WithRecorder(recorder),
		),
		Reservations: reservation.NewService(st, notifications,
			reservation.WithLogger(logger.Named("reservation")),
			reservation.WithClock(opts.Clock),
			reservation.WithRecorder(recorder),
		),
		Membership: membership.NewService(st,
			membership.WithLogger(logger.Named("membership")),
			membership.WithClock(opts.Clock),
			membership.WithRecorder(recorder),
			membership.WithRateLimit(opts.RateLimitPerMinute, opts.RateLimitBurst),
		),
		Feedback: feedback.NewService(st, notifications,
			feedback.WithLogger(logger.Named("feedback")),
			feedback.WithClock(opts.Clock),
			feedback.WithRecorder(recorder),
		),
		Notifications: notifications,
		Activity:      journal.NewService(j),
	}, nil
}

// Handler returns the complete HTTP API.
func (a *App) Handler() http.Handler {
	books := catalog.NewHandler(a.Catalog)
	members := membership.NewHandler(a.Membership, a.tokens)
	authn := auth.NewMiddleware(a.tokens, a.store.Users(), a.logger.Named("auth"))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logRequests(a.logger.Named("http")))

	r.Get("/healthz", a.handleHealth)

	r.Route(APIPrefix, func(r chi.Router) {
		books.PublicRoutes(r)
		members.PublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(authn.Authenticate)

			books.Routes(r)
			members.Routes(r)
			circulation.NewHandler(a.Circulation).Routes(r)
			reservation.NewHandler(a.Reservations).Routes(r)
			notification.NewHandler(a.Notifications).Routes(r)
			feedback.NewHandler(a.Feedback).Routes(r)
			a.Activity.Routes(r)
		})
	})

	return otelhttp.NewHandler(r, "libraxpert.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		a.logger.Error("Health check failed", zap.Error(err))
		response.ServerError(w, r, fmt.Errorf("store unavailable: %w", err))
		return
	}
	response.OK(w, r, map[string]string{"status": "ok"})
}

// Run serves handler on addr until ctx is cancelled, then shuts down within
// shutdownTimeout.
func Run(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
