package core

var (
	// StridesInitialCap is the initial capacity for the Strides
	// of a Walked.
	StridesInitialCap = 16
)

// StopReason represents the possible reasons for a Walk to terminate.
type StopReason int

const (
	Done  StopReason = iota // Consumed all of the input.
	Stuck                   // No current states remained.
)

func (r StopReason) String() string {
	switch r {
	case Done:
		return "done"
	case Stuck:
		return "stuck"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Stride represents one input symbol's worth of progress.
type Stride struct {
	// From is the set of current states before the symbol.
	From StateSet `json:"from"`

	// Consumed is the input symbol.
	Consumed Symbol `json:"consumed"`

	// To is the ε-closure of the destinations.  Empty if the walk
	// got stuck.
	To StateSet `json:"to"`
}

// Walked is the result of a Walk.
type Walked struct {
	// Initial is the ε-closure of the start state.
	Initial StateSet `json:"initial"`

	// Strides has one Stride per consumed symbol.
	Strides []*Stride `json:"strides,omitempty"`

	Accepted bool `json:"accepted"`

	StoppedBecause StopReason `json:"stoppedBecause"`
}

// Final returns the last set of current states.
func (w *Walked) Final() StateSet {
	if n := len(w.Strides); 0 < n {
		return w.Strides[n-1].To
	}
	return w.Initial
}

// EpsilonClosure returns the given states plus every state reachable
// from them using only ε-transitions.
//
// The given set is not modified.
func (a *Automaton) EpsilonClosure(states StateSet) StateSet {
	closure := states.Copy()
	if !a.hasEpsilon {
		return closure
	}

	stack := make([]State, 0, len(states))
	for s := range states {
		stack = append(stack, s)
	}

	for 0 < len(stack) {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for next := range a.transitions[s][Epsilon] {
			if closure.Add(next) {
				stack = append(stack, next)
			}
		}
	}

	return closure
}

// ValidateInput checks that every symbol is in the alphabet.
//
// All of the invalid symbols are reported in one *InputError.
func (a *Automaton) ValidateInput(input []Symbol) error {
	var (
		invalid []Symbol
		seen    map[Symbol]bool
	)
	for _, sym := range input {
		if a.InAlphabet(sym) {
			continue
		}
		if seen == nil {
			seen = make(map[Symbol]bool)
		}
		if !seen[sym] {
			seen[sym] = true
			invalid = append(invalid, sym)
		}
	}

	if 0 < len(invalid) {
		return &InputError{
			Invalid:  invalid,
			Alphabet: a.Alphabet(),
		}
	}
	return nil
}

// step moves the set of current states along the given symbol and
// then takes the ε-closure.
func (a *Automaton) step(current StateSet, sym Symbol) StateSet {
	next := make(StateSet, len(current))
	for s := range current {
		next.Union(a.transitions[s][sym])
	}
	if len(next) == 0 {
		return next
	}
	return a.EpsilonClosure(next)
}

// Simulate reports whether the automaton accepts the input.
//
// The input is validated first, so an *InputError means nothing was
// simulated.
func (a *Automaton) Simulate(input []Symbol) (bool, error) {
	if err := a.ValidateInput(input); err != nil {
		return false, err
	}

	current := a.EpsilonClosure(NewStateSet(a.start))
	for _, sym := range input {
		if current = a.step(current, sym); len(current) == 0 {
			return false, nil
		}
	}

	return current.Intersects(a.accept), nil
}

// Walk is Simulate with a record of every step.
//
// The verdict is the same as Simulate's.  A walk that runs out of
// current states stops with Stuck and a last Stride with an empty To.
func (a *Automaton) Walk(input []Symbol) (*Walked, error) {
	if err := a.ValidateInput(input); err != nil {
		return nil, err
	}

	n := StridesInitialCap
	if len(input) < n {
		n = len(input)
	}

	w := &Walked{
		Initial: a.EpsilonClosure(NewStateSet(a.start)),
		Strides: make([]*Stride, 0, n),
	}

	current := w.Initial
	for _, sym := range input {
		next := a.step(current, sym)
		w.Strides = append(w.Strides, &Stride{
			From:     current,
			Consumed: sym,
			To:       next,
		})
		if len(next) == 0 {
			w.StoppedBecause = Stuck
			return w, nil
		}
		current = next
	}

	w.StoppedBecause = Done
	w.Accepted = current.Intersects(a.accept)

	return w, nil
}
