// cmd/libraxpert/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/config"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/journal"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/log"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/server"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/memory"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store/postgres"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, opts)
	},
}

func serve(ctx context.Context, opts *config.Options) error {
	if opts.JWTSecret == "" {
		return errors.New("jwt_secret must be set")
	}
	logger := log.Logger

	shutdownTracing, err := telemetry.Setup(ctx, opts.OTelEndpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	st, j, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	app, err := server.NewApp(st, j, server.Options{
		Logger:             logger,
		JWTSecret:          opts.JWTSecret,
		JWTTTL:             opts.JWTTTL,
		RateLimitPerMinute: opts.RateLimitPerMinute,
		RateLimitBurst:     opts.RateLimitBurst,
	})
	if err != nil {
		return err
	}

	logger.Info("LibraXpert started",
		zap.String("version", version),
		zap.String("store", opts.Store),
		zap.String("addr", opts.Addr()),
	)
	return server.Run(ctx, opts.Addr(), app.Handler(), opts.ShutdownTimeout, logger)
}

// openStore returns the configured backend and a journal stored alongside it.
func openStore(ctx context.Context, opts *config.Options) (store.Store, journal.Journal, error) {
	if opts.Store == config.StoreMemory {
		log.Warn("Using the in-memory store, data is lost on exit")
		return memory.New(), journal.NewMemory(), nil
	}

	st, err := postgres.Open(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Ping(ctx); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if opts.MigrateOnStart {
		migrator, err := postgres.NewMigrator(st.DB().DB)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		applied, err := migrator.Up(ctx)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		log.Info("Applied migrations", zap.Int64s("versions", applied))
	}
	return st, journal.NewPostgres(st.DB()), nil
}
