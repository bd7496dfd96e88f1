package notation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Comcast/automata/core"
)

// Form is what a person fills in to describe an automaton.  Every
// field is raw text.
type Form struct {
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// States is a comma-separated list.
	States string `json:"states" yaml:"states"`

	// Alphabet is a comma-separated list.
	Alphabet string `json:"alphabet" yaml:"alphabet"`

	Start string `json:"start" yaml:"start"`

	// Accept is a comma-separated list.
	Accept string `json:"accept" yaml:"accept"`

	// Transitions is in transition notation.
	Transitions string `json:"transitions" yaml:"transitions"`
}

// FormError is a problem with the basic fields of a Form (everything
// except Transitions).
type FormError struct {
	Field   string `json:"field"`
	Problem string `json:"problem"`
}

func (e *FormError) Error() string {
	return e.Field + ": " + e.Problem
}

var (
	// ErrNoStates, ErrNoAlphabet, ErrNoStart, and ErrNoAccept are
	// the problems of empty fields.
	ErrNoStates   = &FormError{Field: "states", Problem: "states cannot be empty"}
	ErrNoAlphabet = &FormError{Field: "alphabet", Problem: "alphabet cannot be empty"}
	ErrNoStart    = &FormError{Field: "start", Problem: "start state cannot be empty"}
	ErrNoAccept   = &FormError{Field: "accept", Problem: "accept states cannot be empty"}
)

// Definition checks the basic fields, parses the transitions, and
// returns a Definition ready to Compile.
//
// The basic checks come first and stop at the first problem, which
// is a *FormError.  Transition problems are *LineErrors.
func (f *Form) Definition() (*core.Definition, error) {
	states := core.States(ParseList(f.States)...)
	if len(states) == 0 {
		return nil, ErrNoStates
	}

	alphabet := core.Symbols(ParseList(f.Alphabet)...)
	if len(alphabet) == 0 {
		return nil, ErrNoAlphabet
	}
	for _, sym := range alphabet {
		if IsEpsilon(strings.ToLower(string(sym))) {
			return nil, &FormError{
				Field:   "alphabet",
				Problem: fmt.Sprintf("%q is reserved for ε-transitions", sym),
			}
		}
	}

	known := core.NewStateSet(states...)

	start := core.State(strings.TrimSpace(f.Start))
	if start == "" {
		return nil, ErrNoStart
	}
	if !known.Has(start) {
		return nil, &FormError{
			Field: "start",
			Problem: fmt.Sprintf("start state %q must be one of the defined states: %s",
				start, joinStates(states)),
		}
	}

	accept := core.States(ParseList(f.Accept)...)
	if len(accept) == 0 {
		return nil, ErrNoAccept
	}
	var invalid []core.State
	for _, s := range accept {
		if !known.Has(s) {
			invalid = append(invalid, s)
		}
	}
	if 0 < len(invalid) {
		return nil, &FormError{
			Field: "accept",
			Problem: fmt.Sprintf("invalid accept states: %s; accept states must be from defined states: %s",
				joinStates(invalid), joinStates(states)),
		}
	}

	ts, err := ParseTransitions(f.Transitions, states, alphabet)
	if err != nil {
		return nil, err
	}

	return &core.Definition{
		Name:        f.Name,
		States:      states,
		Alphabet:    alphabet,
		Transitions: ts,
		Start:       start,
		Accept:      accept,
	}, nil
}

// Compile is Definition followed by core's Compile.
func (f *Form) Compile() (*core.Automaton, error) {
	d, err := f.Definition()
	if err != nil {
		return nil, err
	}
	return d.Compile()
}

// FormFor writes an Automaton back into a Form.
func FormFor(a *core.Automaton) *Form {
	strs := func(n int, at func(int) string) string {
		acc := make([]string, n)
		for i := range acc {
			acc[i] = at(i)
		}
		return strings.Join(acc, ", ")
	}
	states := a.States()
	alphabet := a.Alphabet()
	accept := a.Accept().Sorted()
	return &Form{
		Name:        a.Name(),
		States:      strs(len(states), func(i int) string { return string(states[i]) }),
		Alphabet:    strs(len(alphabet), func(i int) string { return string(alphabet[i]) }),
		Start:       string(a.Start()),
		Accept:      strs(len(accept), func(i int) string { return string(accept[i]) }),
		Transitions: FormatTransitions(a.Transitions()),
	}
}

// IsFormError reports whether the error came from the basic fields or
// the transition lines.
func IsFormError(err error) bool {
	var fe *FormError
	var le *LineError
	return errors.As(err, &fe) || errors.As(err, &le)
}
