package history

import (
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists the ordered turn log of every session.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]Record, error)
	Append(ctx context.Context, rec Record) error
	Close() error
}

// Recorder is the best-effort boundary in front of a Store: failures are
// logged and never reach the caller. A failed load yields an empty history,
// a failed save is dropped.
type Recorder struct {
	store Store
	now   func() time.Time
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, now: time.Now}
}

func (r *Recorder) Load(ctx context.Context, sessionID string) []Turn {
	recs, err := r.store.Load(ctx, sessionID)
	if err != nil {
		log.Error("Failed to load history", "session", sessionID, "err", err)
		return nil
	}

	turns := make([]Turn, 0, len(recs))
	for _, rec := range recs {
		t, err := rec.Turn()
		if err != nil {
			log.Warn("Skipping stored turn", "session", sessionID, "id", rec.ID, "err", err)
			continue
		}
		turns = append(turns, t)
	}

	log.Info("Loaded conversation history", "session", sessionID, "count", len(turns))
	return turns
}

func (r *Recorder) Save(ctx context.Context, sessionID string, t Turn) {
	rec := Record{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      t.Role,
		Content:   t.Content,
		Intent:    t.Intent,
		Timestamp: r.now().UTC(),
	}

	if err := r.store.Append(ctx, rec); err != nil {
		log.Error("Failed to save turn", "session", sessionID, "role", t.Role, "err", err)
		return
	}

	log.Debug("Saved turn", "session", sessionID, "role", t.Role)
}

func (r *Recorder) Close() error {
	return r.store.Close()
}
