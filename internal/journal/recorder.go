// internal/journal/recorder.go
package journal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recorder appends workflow transitions without ever failing the workflow.
// A nil *Recorder records nothing.
type Recorder struct {
	journal Journal
	logger  *zap.Logger
}

func NewRecorder(journal Journal, logger *zap.Logger) *Recorder {
	return &Recorder{journal: journal, logger: logger}
}

// Record appends an entry. data is encoded as JSON; encoding or storage
// failures are logged.
func (r *Recorder) Record(ctx context.Context, entityType string, entityID uuid.UUID, action string, actorID uuid.UUID, data any) {
	if r == nil || r.journal == nil {
		return
	}

	var raw []byte
	if data != nil {
		var err error
		if raw, err = json.Marshal(data); err != nil {
			r.logger.Error("Failed to encode journal data", zap.Error(err), zap.String("action", action))
			return
		}
	}

	entry := &Entry{
		EntityID:   entityID,
		EntityType: entityType,
		Action:     action,
		ActorID:    actorID,
		Data:       raw,
	}
	if err := r.journal.Append(ctx, entry); err != nil {
		level := r.logger.Error
		if errors.Is(err, ErrConcurrencyConflict) {
			level = r.logger.Warn
		}
		level("Failed to record activity",
			zap.Error(err),
			zap.String("entity_type", entityType),
			zap.Stringer("entity_id", entityID),
			zap.String("action", action),
		)
	}
}
