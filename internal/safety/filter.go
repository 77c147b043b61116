package safety

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Filter selects catalog targets by name using an allowlist and a denylist of
// glob patterns.
//
// Rules:
//   - If both lists are empty (or nil), every target is allowed.
//   - Denylist always takes priority over the allowlist.
//   - If a non-empty allowlist is present, a target must match at least one
//     allowlist pattern to be selected (after the denylist check).
type Filter struct {
	allow []glob.Glob
	deny  []glob.Glob
}

// NewFilter compiles the allowlist and denylist patterns. Either or both may
// be nil or empty. A malformed pattern is an error.
func NewFilter(allowlist, denylist []string) (*Filter, error) {
	allow, err := compileAll(allowlist)
	if err != nil {
		return nil, fmt.Errorf("allowlist: %w", err)
	}
	deny, err := compileAll(denylist)
	if err != nil {
		return nil, fmt.Errorf("denylist: %w", err)
	}
	return &Filter{allow: allow, deny: deny}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// IsAllowed reports whether the target called name is selected. A nil Filter
// allows everything.
func (f *Filter) IsAllowed(name string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.deny {
		if g.Match(name) {
			return false
		}
	}
	if len(f.allow) == 0 {
		return true
	}
	for _, g := range f.allow {
		if g.Match(name) {
			return true
		}
	}
	return false
}
