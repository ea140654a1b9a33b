// Package telemetry writes a JSONL log of dashboard sessions. Arrivals,
// skipped journal lines, cache writes and tail failures are recorded as
// structured events so a session can be inspected after the fact without
// disturbing the terminal UI.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds identify the type of telemetry event.
const (
	KindSessionStart    = "session_start"
	KindSessionEnd      = "session_end"
	KindArrival         = "arrival"
	KindLineSkipped     = "line_skipped"
	KindSystemStored    = "system_stored"
	KindStoreFailed     = "store_failed"
	KindJournalSwitched = "journal_switched"
	KindTailStopped     = "tail_stopped"
	KindMetricsStopped  = "metrics_stopped"
)

// Event represents a single telemetry record.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	SessionID string    `json:"session,omitempty"`
	System    string    `json:"system,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for concurrent
// use by multiple goroutines. A nil *Emitter is a valid no-op emitter.
type Emitter struct {
	file    *os.File
	enc     *json.Encoder
	mu      sync.Mutex
	session string
	now     func() time.Time
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path. The file is created if it does not exist, or appended to if it does.
// Every emitter gets a fresh session id.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{
		file:    f,
		enc:     json.NewEncoder(f),
		session: uuid.NewString(),
		now:     time.Now,
	}, nil
}

// SessionID returns the id stamped on every event. Empty for a nil Emitter.
func (e *Emitter) SessionID() string {
	if e == nil {
		return ""
	}
	return e.session
}

// Emit writes a single event, filling in the timestamp and session id when
// they are unset. Calling Emit on a nil Emitter is a no-op.
func (e *Emitter) Emit(evt Event) error {
	if e == nil {
		return nil
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}
	if evt.SessionID == "" {
		evt.SessionID = e.session
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// Record emits an event built from its parts and drops any write error.
// Telemetry must never interrupt journal processing.
func (e *Emitter) Record(kind, system string, data any) {
	_ = e.Emit(Event{Kind: kind, System: system, Data: data})
}

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
