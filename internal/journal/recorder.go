package journal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"voxbridge.dev/internal/audioplayer"
	"voxbridge.dev/internal/engine"
)

// Recorder persists player activity transitions to the journal database.
// Recording failures disable the recorder rather than disturb playback.
type Recorder struct {
	db       *sql.DB
	disabled atomic.Bool
	now      func() time.Time
}

// NewRecorder creates a recorder writing to the given database
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{
		db:  db,
		now: time.Now,
	}
}

// RecordTransition inserts a single activity transition row
func (r *Recorder) RecordTransition(sessionID string, previous, current audioplayer.PlayerActivity, positionMs, durationMs int64) error {
	if r.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	ib := sqlbuilder.NewInsertBuilder()
	ib.InsertInto("activity_events")
	ib.Cols("timestamp", "session_id", "activity", "previous_activity", "position_ms", "duration_ms")
	ib.Values(r.now().Unix(), sessionID, current.String(), previous.String(), positionMs, durationMs)

	query, args := ib.Build()
	_, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}

	slog.Debug("journal recorded activity transition",
		"session_id", sessionID,
		"previous", previous.String(),
		"activity", current.String(),
		"position_ms", positionMs,
		"duration_ms", durationMs)

	return nil
}

// Hook returns an ActivityHook for wiring the recorder into a dispatcher.
// The hook never propagates errors; the first failure disables journaling.
func (r *Recorder) Hook() engine.ActivityHook {
	return func(sessionID string, previous, current audioplayer.PlayerActivity, positionMs, durationMs int64) {
		if r.disabled.Load() {
			return
		}

		if err := r.RecordTransition(sessionID, previous, current, positionMs, durationMs); err != nil {
			slog.Warn("activity journal disabled after write failure",
				"error", err,
				"session_id", sessionID,
				"activity", current.String())
			r.disabled.Store(true)
		}
	}
}
