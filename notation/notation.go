// Package notation reads automata written the way people type them
// into a form: comma-separated lists of states and symbols, and one
// transition per line in the form
//
//	state,symbol -> next_state
//
// The symbol is case-insensitive (it's lowercased).  "eps",
// "epsilon", and "ε" all mean core.Epsilon.  Blank lines are ignored.
//
// For example:
//
//	q0,0 -> q1
//	q0,eps -> q2
//	q1,1 -> q2
package notation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Comcast/automata/core"
)

// Arrow separates a transition's left and right sides.
const Arrow = "->"

// EpsilonAliases are the spellings that mean core.Epsilon.
var EpsilonAliases = []string{"eps", "epsilon", string(core.Epsilon)}

// LineError reports a problem with one line of transition notation.
type LineError struct {
	// Line is 1-based.
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Reason, e.Text)
}

// ParseList splits a comma-separated list.  Items are trimmed, and
// empty items are dropped.
func ParseList(s string) []string {
	parts := strings.Split(s, ",")
	acc := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			acc = append(acc, p)
		}
	}
	return acc
}

// IsEpsilon reports whether the (lowercased) symbol spells ε.
func IsEpsilon(sym string) bool {
	for _, alias := range EpsilonAliases {
		if sym == alias {
			return true
		}
	}
	return false
}

// ParseTransitions parses transition notation.
//
// Every source and destination must be one of the given states.
// Every symbol must be in the alphabet or be an alias for ε.
// Parsing stops at the first bad line, which is reported as a
// *LineError.
//
// The alphabet is compared after lowercasing the line's symbol, so an
// alphabet with upper-case symbols can't be used here.
func ParseTransitions(text string, states []core.State, alphabet []core.Symbol) (core.Transitions, error) {
	known := core.NewStateSet(states...)
	symbols := make(map[core.Symbol]bool, len(alphabet))
	for _, sym := range alphabet {
		symbols[sym] = true
	}

	ts := make(core.Transitions)

	for i, line := range strings.Split(text, "\n") {
		n := i + 1
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		bad := func(reason string) error {
			return &LineError{
				Line:   n,
				Text:   line,
				Reason: reason,
			}
		}

		parts := strings.Split(line, Arrow)
		if len(parts) != 2 {
			return nil, bad("expected format state,symbol -> next_state")
		}

		left := strings.Split(strings.TrimSpace(parts[0]), ",")
		if len(left) != 2 {
			return nil, bad("left side must contain exactly one state and one symbol separated by a comma")
		}

		var (
			from = core.State(strings.TrimSpace(left[0]))
			sym  = strings.ToLower(strings.TrimSpace(left[1]))
			to   = core.State(strings.TrimSpace(parts[1]))
		)

		if !known.Has(from) {
			return nil, bad(fmt.Sprintf("invalid state %q; state must be one of: %s",
				from, joinStates(known.Sorted())))
		}

		var symbol core.Symbol
		if IsEpsilon(sym) {
			symbol = core.Epsilon
		} else if symbols[core.Symbol(sym)] {
			symbol = core.Symbol(sym)
		} else {
			return nil, bad(fmt.Sprintf("invalid symbol %q; symbol must be one of: %s (or 'eps'/'epsilon' for ε-transitions)",
				sym, joinSymbols(sortedSymbols(alphabet))))
		}

		if !known.Has(to) {
			return nil, bad(fmt.Sprintf("invalid next state %q; next state must be one of: %s",
				to, joinStates(known.Sorted())))
		}

		ts.Add(from, symbol, to)
	}

	return ts, nil
}

// FormatTransitions writes transitions in notation, one line per
// destination, sorted.  ε is written as "eps".
func FormatTransitions(ts core.Transitions) string {
	lines := make([]string, 0, 4*len(ts))
	for from, m := range ts {
		for sym, tos := range m {
			s := string(sym)
			if sym == core.Epsilon {
				s = "eps"
			}
			for _, to := range tos {
				lines = append(lines, fmt.Sprintf("%s,%s %s %s", from, s, Arrow, to))
			}
		}
	}
	sort.Strings(lines)
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// SplitInput turns text into symbols.  With an empty separator, each
// character is a symbol.  Otherwise the text is split on the
// separator and each piece is trimmed.  Empty text is the empty
// input.
func SplitInput(s, sep string) []core.Symbol {
	if s == "" {
		return []core.Symbol{}
	}
	if sep == "" {
		acc := make([]core.Symbol, 0, len(s))
		for _, r := range s {
			acc = append(acc, core.Symbol(string(r)))
		}
		return acc
	}
	parts := strings.Split(s, sep)
	acc := make([]core.Symbol, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			acc = append(acc, core.Symbol(p))
		}
	}
	return acc
}

func joinStates(ss []core.State) string {
	strs := make([]string, len(ss))
	for i, s := range ss {
		strs[i] = string(s)
	}
	return strings.Join(strs, ", ")
}

func joinSymbols(ss []core.Symbol) string {
	strs := make([]string, len(ss))
	for i, s := range ss {
		strs[i] = string(s)
	}
	return strings.Join(strs, ", ")
}

func sortedSymbols(ss []core.Symbol) []core.Symbol {
	acc := append([]core.Symbol(nil), ss...)
	sort.Slice(acc, func(i, j int) bool { return acc[i] < acc[j] })
	return acc
}
