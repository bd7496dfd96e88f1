package core

import (
	"fmt"
)

// Kind is the classification of an Automaton.
type Kind int

const (
	DFA        Kind = iota // Deterministic and complete.
	NFA                    // Nondeterministic without ε-transitions.
	EpsilonNFA             // Has at least one ε-transition.
)

func (k Kind) String() string {
	switch k {
	case DFA:
		return "DFA"
	case NFA:
		return "NFA"
	case EpsilonNFA:
		return "ε-NFA"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler, which both the JSON
// and YAML encoders use.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case DFA, NFA, EpsilonNFA:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown kind %d", int(k))
	}
}

// UnmarshalText accepts "DFA", "NFA", and "ε-NFA" (or "eps-NFA").
func (k *Kind) UnmarshalText(bs []byte) error {
	switch string(bs) {
	case "DFA":
		*k = DFA
	case "NFA":
		*k = NFA
	case "ε-NFA", "eps-NFA", "epsilon-NFA":
		*k = EpsilonNFA
	default:
		return fmt.Errorf("unknown kind %q", bs)
	}
	return nil
}

// Kind derives the classification from IsDFA and HasEpsilon.
func (a *Automaton) Kind() Kind {
	switch {
	case a.isDFA:
		return DFA
	case a.hasEpsilon:
		return EpsilonNFA
	default:
		return NFA
	}
}

// classify computes isDFA and hasEpsilon.  Only called during
// construction.
//
// Any ε-transition or any (state, symbol) with more than one
// destination means not a DFA.  Otherwise the automaton is
// deterministic in shape and claims to be a DFA, and validate must
// then confirm completeness.  With Partial set, an incomplete
// automaton is an NFA instead.
func (a *Automaton) classify() {
	deterministic := true
	for _, m := range a.transitions {
		for sym, tos := range m {
			if sym == Epsilon {
				a.hasEpsilon = true
				deterministic = false
			}
			if 1 < len(tos) {
				deterministic = false
			}
		}
	}

	if !deterministic {
		a.isDFA = false
		return
	}

	if a.partial && !a.complete() {
		a.isDFA = false
		return
	}

	a.isDFA = true
}

// complete reports whether every non-accepting state has exactly one
// destination for every symbol.
func (a *Automaton) complete() bool {
	for _, s := range a.states {
		if a.accept.Has(s) {
			continue
		}
		m := a.transitions[s]
		for _, sym := range a.symbols {
			if len(m[sym]) != 1 {
				return false
			}
		}
	}
	return true
}

// violations accumulates Violations.
type violations []Violation

func (vs *violations) add(s State, sym Symbol, kind ViolationKind) {
	*vs = append(*vs, Violation{
		State:  s,
		Symbol: sym,
		Kind:   kind,
	})
}

func (vs violations) err() error {
	if len(vs) == 0 {
		return nil
	}
	return &TransitionError{
		Violations: vs,
	}
}

// validate checks a DFA for completeness and determinism and reports
// every problem at once.
//
// Accept states are skipped.
func (a *Automaton) validate() error {
	if !a.isDFA {
		return nil
	}

	var vs violations

	for _, s := range a.states {
		if a.accept.Has(s) {
			continue
		}
		// A state with no transitions at all has a nil map here.
		m := a.transitions[s]
		for _, sym := range a.symbols {
			tos, have := m[sym]
			switch {
			case !have:
				vs.add(s, sym, Missing)
			case len(tos) == 0:
				vs.add(s, sym, NoDestination)
			case 1 < len(tos):
				vs.add(s, sym, MultipleDestinations)
			}
		}
	}

	return vs.err()
}
