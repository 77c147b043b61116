package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog is returned by LoadFile when the file lists no targets.
var ErrEmptyCatalog = errors.New("catalog: no targets")

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Targets []Target `yaml:"targets"`
}

// LoadFile reads a YAML catalog of the form
//
//	targets:
//	  - name: Bellatrix
//	    ra: { hms: "05:25:07.863" }
//	    ...
//
// Targets keep file order. Every target must be valid and names must be
// unique.
func LoadFile(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if len(f.Targets) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrEmptyCatalog, path)
	}

	seen := make(map[string]struct{}, len(f.Targets))
	for i, t := range f.Targets {
		if err := Validate(t); err != nil {
			return nil, fmt.Errorf("catalog: %s: target %d: %w", path, i, err)
		}
		if _, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("catalog: %s: duplicate target name %q", path, t.Name)
		}
		seen[t.Name] = struct{}{}
	}
	return f.Targets, nil
}

// Validate checks that t carries the fields every creation request needs.
func Validate(t Target) error {
	switch {
	case t.Name == "":
		return errors.New("name is required")
	case t.RA.HMS == "":
		return fmt.Errorf("%s: ra.hms is required", t.Name)
	case t.Dec.DMS == "":
		return fmt.Errorf("%s: dec.dms is required", t.Name)
	}
	for i, m := range t.Magnitudes {
		if m.Band == "" || m.System == "" {
			return fmt.Errorf("%s: magnitude %d needs band and system", t.Name, i)
		}
	}
	return nil
}

// Names returns the target names in order.
func Names(targets []Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// Find returns the first target named name.
func Find(targets []Target, name string) (Target, bool) {
	for _, t := range targets {
		if t.Name == name {
			return t.Clone(), true
		}
	}
	return Target{}, false
}

// Select returns the targets whose names satisfy keep, preserving order.
func Select(targets []Target, keep func(name string) bool) []Target {
	out := make([]Target, 0, len(targets))
	for _, t := range targets {
		if keep(t.Name) {
			out = append(out, t)
		}
	}
	return out
}
