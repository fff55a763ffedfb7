// Package identifier formats and validates human-readable entity codes
// derived from monotonic sequence values.
//
// These functions are PURE:
// - No side effects
// - No DB access
// - Fully deterministic
package identifier

import (
	"fmt"
	"regexp"
)

// Class selects the prefix and zero-pad width for an entity code.
type Class string

const (
	ClassTenant  Class = "tenant"
	ClassClient  Class = "client"
	ClassAccount Class = "account"
)

type classSpec struct {
	prefix  string
	width   int
	pattern *regexp.Regexp
}

var specs = map[Class]classSpec{
	ClassTenant:  {prefix: "FIRM", width: 3, pattern: regexp.MustCompile(`^FIRM\d{3,}$`)},
	ClassClient:  {prefix: "CLI", width: 4, pattern: regexp.MustCompile(`^CLI\d{4,}$`)},
	ClassAccount: {prefix: "ADM", width: 4, pattern: regexp.MustCompile(`^ADM\d{4,}$`)},
}

// Format renders a fixed-width, zero-padded, prefixed code from a sequence
// value. The width grows once the sequence outruns the pad.
func Format(class Class, seq int64) (string, error) {
	spec, ok := specs[class]
	if !ok {
		return "", fmt.Errorf("unknown identifier class %q", class)
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid %s sequence: %d", class, seq)
	}
	return fmt.Sprintf("%s%0*d", spec.prefix, spec.width, seq), nil
}

// Validate reports whether candidate matches the expected pattern for class.
func Validate(class Class, candidate string) bool {
	spec, ok := specs[class]
	if !ok {
		return false
	}
	return spec.pattern.MatchString(candidate)
}
