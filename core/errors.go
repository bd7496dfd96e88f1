package core

// These errors are user errors, not internal errors.
//
// Each one carries every problem that was found rather than just the
// first one.

import (
	"strings"
)

// ViolationKind says what's wrong with a (state, symbol) pair of a
// deterministic automaton.
type ViolationKind int

const (
	// Missing means no transition was given for the pair.
	Missing ViolationKind = iota

	// NoDestination means a transition was given with an empty
	// set of destinations.
	NoDestination

	// MultipleDestinations means the pair has more than one
	// destination.
	MultipleDestinations
)

func (k ViolationKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case NoDestination:
		return "no destination"
	case MultipleDestinations:
		return "multiple destinations"
	default:
		return "unknown"
	}
}

// Violation is a (state, symbol) pair that breaks DFA completeness or
// determinism.
type Violation struct {
	State  State         `json:"state"`
	Symbol Symbol        `json:"symbol"`
	Kind   ViolationKind `json:"kind"`
}

func (v Violation) String() string {
	s := "(" + string(v.State) + ", " + string(v.Symbol) + ")"
	switch v.Kind {
	case NoDestination:
		s += " - no destination state"
	case MultipleDestinations:
		s += " - multiple transitions not allowed in DFA"
	}
	return s
}

// TransitionError occurs when an automaton that's deterministic in
// shape is missing a transition for some (non-accepting state,
// symbol) pair or has a pair with other than one destination.
//
// No Automaton is produced when construction returns this error.
type TransitionError struct {
	Violations []Violation `json:"violations"`
}

func (e *TransitionError) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, "DFA validation errors:")
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// Pairs returns the offending pairs as "(state, symbol)" strings.
func (e *TransitionError) Pairs() []string {
	acc := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		acc[i] = "(" + string(v.State) + ", " + string(v.Symbol) + ")"
	}
	return acc
}

// InputError occurs when an input contains symbols that aren't in
// the alphabet.
//
// The Automaton is still fine after this error.
type InputError struct {
	// Invalid are the offending symbols in order of first
	// appearance.
	Invalid []Symbol `json:"invalid"`

	// Alphabet is the automaton's alphabet.
	Alphabet []Symbol `json:"alphabet"`
}

func (e *InputError) Error() string {
	return "input string contains invalid symbols:\n" +
		"invalid symbols: " + joinSymbols(e.Invalid) + "\n" +
		"allowed symbols (alphabet): " + joinSymbols(e.Alphabet)
}

// ConfigError occurs when a Definition is structurally broken: an
// unknown start state, accept states that aren't states, transitions
// that refer to unknown states or symbols, and so on.
type ConfigError struct {
	Name     string   `json:"name,omitempty"`
	Problems []string `json:"problems"`
}

func (e *ConfigError) Error() string {
	prefix := "automaton definition errors:\n"
	if e.Name != "" {
		prefix = `automaton "` + e.Name + `" definition errors:` + "\n"
	}
	return prefix + strings.Join(e.Problems, "\n")
}

func joinSymbols(ss []Symbol) string {
	strs := make([]string, len(ss))
	for i, s := range ss {
		strs[i] = string(s)
	}
	return strings.Join(strs, ", ")
}
