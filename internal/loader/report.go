package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/jamesprial/odb-target-loader/internal/odb"
)

// JSONReporter writes each outcome as 2-space indented JSON: the created
// target for a success, the errors list for a rejection.
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter returns a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// Report implements Reporter.
func (r *JSONReporter) Report(o Outcome) error {
	raw := o.Result.Payload
	if o.Result.Status == odb.StatusFailure {
		raw = o.Result.Errors
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent %s result: %w", o.Result.Target, err)
	}
	buf.WriteByte('\n')

	_, err := r.w.Write(buf.Bytes())
	return err
}

// Collector keeps outcomes in memory. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

// Report implements Reporter.
func (c *Collector) Report(o Outcome) error {
	c.mu.Lock()
	c.outcomes = append(c.outcomes, o)
	c.mu.Unlock()
	return nil
}

// Outcomes returns a copy of everything reported so far.
func (c *Collector) Outcomes() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outcome(nil), c.outcomes...)
}

// Reporters fans each outcome out to several reporters, stopping at the
// first error.
type Reporters []Reporter

// Report implements Reporter.
func (rs Reporters) Report(o Outcome) error {
	for _, r := range rs {
		if err := r.Report(o); err != nil {
			return err
		}
	}
	return nil
}
