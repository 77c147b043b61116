package safety

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const tokenTTL = 5 * time.Minute

// pendingConfirmation is an outstanding confirmation token and the call it
// was issued for.
type pendingConfirmation struct {
	tool      string
	target    string
	createdAt time.Time
}

// ConfirmationTracker manages single-use, time-limited confirmation tokens for
// tools that create entities in the remote catalog. Creation is not
// idempotent, so a repeated call would create a second entity.
type ConfirmationTracker struct {
	gated map[string]struct{}
	now   func() time.Time

	mu     sync.Mutex
	tokens map[string]pendingConfirmation
}

// NewConfirmationTracker returns a ConfirmationTracker whose gated tools are
// listed in creatingTools. A nil or empty slice means no tool is gated.
func NewConfirmationTracker(creatingTools []string) *ConfirmationTracker {
	ct := &ConfirmationTracker{
		gated:  make(map[string]struct{}, len(creatingTools)),
		now:    time.Now,
		tokens: make(map[string]pendingConfirmation),
	}
	for _, tool := range creatingTools {
		ct.gated[tool] = struct{}{}
	}
	return ct
}

// NeedsConfirmation reports whether tool is gated.
func (ct *ConfirmationTracker) NeedsConfirmation(tool string) bool {
	_, ok := ct.gated[tool]
	return ok
}

// sweepExpired drops every token older than tokenTTL. The caller must hold
// ct.mu.
func (ct *ConfirmationTracker) sweepExpired() {
	now := ct.now()
	for token, p := range ct.tokens {
		if now.Sub(p.createdAt) > tokenTTL {
			delete(ct.tokens, token)
		}
	}
}

// RequestConfirmation issues a token for calling tool on target. Tokens are
// valid for five minutes and are single-use.
func (ct *ConfirmationTracker) RequestConfirmation(tool, target string) string {
	token := uuid.NewString()

	ct.mu.Lock()
	ct.sweepExpired()
	ct.tokens[token] = pendingConfirmation{
		tool:      tool,
		target:    target,
		createdAt: ct.now(),
	}
	ct.mu.Unlock()

	return token
}

// Confirm consumes token and reports whether it was issued for the same tool
// and target and has not expired. The token is spent even when the check
// fails.
func (ct *ConfirmationTracker) Confirm(token, tool, target string) bool {
	if token == "" {
		return false
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	p, ok := ct.tokens[token]
	if !ok {
		return false
	}
	delete(ct.tokens, token)

	if ct.now().Sub(p.createdAt) > tokenTTL {
		return false
	}
	return p.tool == tool && p.target == target
}

// Pending returns the number of live tokens.
func (ct *ConfirmationTracker) Pending() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.sweepExpired()
	return len(ct.tokens)
}
