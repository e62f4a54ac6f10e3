// internal/journal/postgres.go
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

// Postgres stores entries in the activity table.
type Postgres struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

var _ Journal = (*Postgres)(nil)

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{
		db:     db,
		tracer: otel.Tracer("libraxpert/journal"),
	}
}

func (p *Postgres) Append(ctx context.Context, e *Entry) error {
	return p.append(ctx, e, -1)
}

func (p *Postgres) AppendAt(ctx context.Context, e *Entry, expectedVersion int) error {
	if expectedVersion < 0 {
		return ErrInvalidVersion
	}
	return p.append(ctx, e, expectedVersion)
}

// append with a negative expectedVersion appends after whatever is current.
// Two writers reading the same current version collide on the
// (entity_id, version) key and the loser gets ErrConcurrencyConflict.
func (p *Postgres) append(ctx context.Context, e *Entry, expectedVersion int) error {
	ctx, span := p.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(
			attribute.String("entity.id", e.EntityID.String()),
			attribute.String("entity.type", e.EntityType),
			attribute.String("action", e.Action),
			attribute.Int("expected.version", expectedVersion),
		),
	)
	defer span.End()

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.GetContext(ctx, &current, `
		SELECT COALESCE(MAX(version), 0)
		FROM activity
		WHERE entity_id = $1
	`, e.EntityID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query current version: %w", err)
	}

	if expectedVersion >= 0 && current != expectedVersion {
		span.SetAttributes(
			attribute.Int("actual.version", current),
			attribute.Bool("conflict.detected", true),
		)
		return ErrConcurrencyConflict
	}

	data := e.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	version := current + 1
	createdAt := time.Now().UTC()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO activity (entity_id, entity_type, action, actor_id, data, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, e.EntityID, e.EntityType, e.Action, e.ActorID, string(data), version, createdAt).Scan(&e.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return ErrConcurrencyConflict
		}
		return fmt.Errorf("insert entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	e.Version = version
	e.CreatedAt = createdAt
	e.Data = data
	span.SetAttributes(attribute.Int64("entry.id", e.ID), attribute.Int("entry.version", version))
	return nil
}

func (p *Postgres) History(ctx context.Context, entityID uuid.UUID) ([]Entry, error) {
	ctx, span := p.tracer.Start(ctx, "journal.history",
		trace.WithAttributes(attribute.String("entity.id", entityID.String())),
	)
	defer span.End()

	entries := []Entry{}
	err := p.db.SelectContext(ctx, &entries, `
		SELECT id, entity_id, entity_type, action, actor_id, data, version, created_at
		FROM activity
		WHERE entity_id = $1
		ORDER BY version ASC
	`, entityID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	span.SetAttributes(attribute.Int("entries.loaded", len(entries)))
	return entries, nil
}

func (p *Postgres) CurrentVersion(ctx context.Context, entityID uuid.UUID) (int, error) {
	ctx, span := p.tracer.Start(ctx, "journal.current_version",
		trace.WithAttributes(attribute.String("entity.id", entityID.String())),
	)
	defer span.End()

	var version int
	err := p.db.GetContext(ctx, &version, `
		SELECT COALESCE(MAX(version), 0)
		FROM activity
		WHERE entity_id = $1
	`, entityID)
	if err != nil {
		return 0, fmt.Errorf("query version: %w", err)
	}

	span.SetAttributes(attribute.Int("current.version", version))
	return version, nil
}
