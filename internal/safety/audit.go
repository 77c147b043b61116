// Package safety provides target selection, confirmation tokens, and audit
// logging around submissions to the observing database.
package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrNilWriter means the audit trail has nowhere to go.
var ErrNilWriter = errors.New("audit logger: writer is nil")

// AuditEntry is one line of the audit trail: a submission attempt made by a
// load run, or an MCP tool call.
type AuditEntry struct {
	Timestamp  time.Time      `json:"timestamp"`
	RunID      string         `json:"run_id,omitempty"`
	Action     string         `json:"action"`
	Target     string         `json:"target,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Result     string         `json:"result"`
	StatusCode int            `json:"status_code,omitempty"`
	Duration   time.Duration  `json:"duration_ns"`
}

// AuditLogger appends entries to w, one JSON object per line. Lines from
// concurrent callers never interleave.
type AuditLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAuditLogger returns nil for a nil w, which every caller treats as
// "auditing off".
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		return nil
	}
	return &AuditLogger{w: w}
}

// Log appends entry. A zero Timestamp is stamped with the current time.
func (l *AuditLogger) Log(entry AuditEntry) error {
	if l == nil || l.w == nil {
		return ErrNilWriter
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("audit logger: encode %s entry: %w", entry.Action, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(line)
	return err
}
