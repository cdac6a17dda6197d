// Package mcerr defines the two fatal error classes from the error-handling
// design: configuration/topology errors (raised at load, before any sweep
// runs) and runtime consistency errors (raised by sanity checks after an
// accepted step). Expected rejections -- feasibility failures, energy
// overflow, hard-core overlap -- are never modeled as errors; moves return
// an empty Change and the driver treats that as an ordinary rejection.
package mcerr

import "fmt"

// ConfigError reports a malformed topology or configuration document.
// Init aborts on the first one; there is no partial initialization.
type ConfigError struct {
	Section string // e.g. "atomlist", "reactionlist"
	Key     string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error in %s[%s]: %s", e.Section, e.Key, e.Reason)
	}
	return fmt.Sprintf("config error in %s: %s", e.Section, e.Reason)
}

// NewConfigError builds a ConfigError.
func NewConfigError(section, key, reason string) error {
	return &ConfigError{Section: section, Key: key, Reason: reason}
}

// ConsistencyError reports a violated runtime invariant: mass-center drift,
// a particle outside the cell, a NaN bond energy, a canonic reservoir gone
// negative. It indicates a bug in the engine, not bad user input, and is
// always fatal.
type ConsistencyError struct {
	Move      string
	Step      int64
	GroupIdx  int
	PartIdx   int
	Reason    string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf(
		"consistency error at step %d (move=%q group=%d particle=%d): %s",
		e.Step, e.Move, e.GroupIdx, e.PartIdx, e.Reason,
	)
}

// NewConsistencyError builds a ConsistencyError with -1 used for fields
// that don't apply (e.g. no single particle is implicated).
func NewConsistencyError(move string, step int64, groupIdx, partIdx int, reason string) error {
	return &ConsistencyError{Move: move, Step: step, GroupIdx: groupIdx, PartIdx: partIdx, Reason: reason}
}
