// internal/journal/journal.go
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var (
	ErrConcurrencyConflict = errors.New("concurrency conflict: version mismatch")
	ErrInvalidVersion      = errors.New("invalid version number")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entity types recorded in the journal.
const (
	EntityBook          = "book"
	EntityUser          = "user"
	EntityBorrowRequest = "borrow_request"
	EntityReservation   = "reservation"
	EntityFeedback      = "feedback"
)

// Entry is one workflow transition of an entity.
type Entry struct {
	ID         int64               `json:"id" db:"id"`
	EntityID   uuid.UUID           `json:"entity_id" db:"entity_id"`
	EntityType string              `json:"entity_type" db:"entity_type"`
	Action     string              `json:"action" db:"action"`
	ActorID    uuid.UUID           `json:"actor_id" db:"actor_id"`
	Data       jsoniter.RawMessage `json:"data" db:"data"`
	Version    int                 `json:"version" db:"version"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
}

// Journal is an append-only, per-entity versioned log.
type Journal interface {
	// Append stores e as the next version of its entity and fills in ID,
	// Version and CreatedAt.
	Append(ctx context.Context, e *Entry) error
	// AppendAt stores e only if the entity is currently at expectedVersion.
	AppendAt(ctx context.Context, e *Entry, expectedVersion int) error
	History(ctx context.Context, entityID uuid.UUID) ([]Entry, error)
	CurrentVersion(ctx context.Context, entityID uuid.UUID) (int, error)
}
