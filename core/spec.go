package core

import (
	"fmt"
)

// State is an opaque state label.
type State string

// Symbol is a token from an alphabet, or Epsilon.
type Symbol string

// Epsilon is the reserved symbol for a transition that doesn't
// consume input.  It is never a member of an alphabet.
const Epsilon Symbol = "ε"

// Transitions maps a source state and a symbol (or Epsilon) to
// destination states.
//
// A missing (state, symbol) key means no transition.  An empty
// destination list also means no transition.
type Transitions map[State]map[Symbol][]State

// Add appends a destination for the given source and symbol.
func (t Transitions) Add(from State, sym Symbol, to State) {
	m, have := t[from]
	if !have {
		m = make(map[Symbol][]State)
		t[from] = m
	}
	m[sym] = append(m[sym], to)
}

// Copy makes a deep copy of the Transitions.
func (t Transitions) Copy() Transitions {
	if t == nil {
		return nil
	}
	acc := make(Transitions, len(t))
	for from, m := range t {
		n := make(map[Symbol][]State, len(m))
		for sym, tos := range m {
			n[sym] = append([]State(nil), tos...)
		}
		acc[from] = n
	}
	return acc
}

// Definition is the specification used to build an Automaton.
//
// A Definition is plain data.  It can be read from JSON or YAML.  Use
// Compile to get an Automaton.
type Definition struct {
	// Name is an optional name for the automaton.  Something
	// like "even-zeros".
	Name string `json:"name,omitempty" yaml:",omitempty"`

	// Doc is optional documentation in Markdown.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	States []State `json:"states" yaml:"states"`

	Alphabet []Symbol `json:"alphabet" yaml:"alphabet"`

	// Transitions is the transition relation.  Use Epsilon (or
	// see package notation) for ε-transitions.
	Transitions Transitions `json:"transitions,omitempty" yaml:",omitempty"`

	Start State `json:"start" yaml:"start"`

	Accept []State `json:"accept" yaml:"accept"`

	// Partial, when true, classifies a deterministic automaton
	// that's missing transitions as an NFA instead of returning a
	// TransitionError.
	Partial bool `json:"partial,omitempty" yaml:",omitempty"`
}

// Copy makes a deep copy of the Definition.
func (d *Definition) Copy() *Definition {
	return &Definition{
		Name:        d.Name,
		Doc:         d.Doc,
		States:      append([]State(nil), d.States...),
		Alphabet:    append([]Symbol(nil), d.Alphabet...),
		Transitions: d.Transitions.Copy(),
		Start:       d.Start,
		Accept:      append([]State(nil), d.Accept...),
		Partial:     d.Partial,
	}
}

// Automaton is a validated, immutable finite automaton.
//
// Build one with Definition.Compile or New.
type Automaton struct {
	name string
	doc  string

	// states and symbols remember the declared order.
	states    []State
	stateSet  StateSet
	symbols   []Symbol
	symbolSet map[Symbol]struct{}

	transitions map[State]map[Symbol]StateSet

	start  State
	accept StateSet

	partial bool

	// isDFA and hasEpsilon are computed once by classify.
	isDFA      bool
	hasEpsilon bool
}

// New builds an Automaton from its five defining parts.
//
// See Definition.Compile.
func New(states []State, alphabet []Symbol, transitions Transitions, start State, accept []State) (*Automaton, error) {
	d := &Definition{
		States:      states,
		Alphabet:    alphabet,
		Transitions: transitions,
		Start:       start,
		Accept:      accept,
	}
	return d.Compile()
}

// Compile checks the Definition and builds an Automaton.
//
// A structurally broken Definition results in a *ConfigError.  An
// automaton that is deterministic in shape but incomplete results in
// a *TransitionError.  In either case, no Automaton is returned.
//
// The Definition is copied, so later changes to it don't affect the
// Automaton.
func (d *Definition) Compile() (*Automaton, error) {
	if err := d.check(); err != nil {
		return nil, err
	}

	a := &Automaton{
		name:      d.Name,
		doc:       d.Doc,
		stateSet:  make(StateSet, len(d.States)),
		symbolSet: make(map[Symbol]struct{}, len(d.Alphabet)),
		start:     d.Start,
		accept:    NewStateSet(d.Accept...),
		partial:   d.Partial,
	}

	for _, s := range d.States {
		if a.stateSet.Add(s) {
			a.states = append(a.states, s)
		}
	}
	for _, sym := range d.Alphabet {
		if _, have := a.symbolSet[sym]; !have {
			a.symbolSet[sym] = struct{}{}
			a.symbols = append(a.symbols, sym)
		}
	}

	a.transitions = make(map[State]map[Symbol]StateSet, len(d.Transitions))
	for from, m := range d.Transitions {
		n := make(map[Symbol]StateSet, len(m))
		for sym, tos := range m {
			n[sym] = NewStateSet(tos...)
		}
		a.transitions[from] = n
	}

	a.classify()

	if a.isDFA {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// check looks for structural problems and reports all of them.
func (d *Definition) check() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	states := make(StateSet, len(d.States))
	for _, s := range d.States {
		if s == "" {
			add("empty state name")
			continue
		}
		states.Add(s)
	}
	if len(states) == 0 {
		add("states cannot be empty")
	}

	alphabet := make(map[Symbol]bool, len(d.Alphabet))
	for _, sym := range d.Alphabet {
		switch sym {
		case "":
			add("empty symbol in alphabet")
		case Epsilon:
			add("alphabet cannot contain the epsilon symbol %q", Epsilon)
		default:
			alphabet[sym] = true
		}
	}
	if len(alphabet) == 0 {
		add("alphabet cannot be empty")
	}

	if d.Start == "" {
		add("start state cannot be empty")
	} else if !states.Has(d.Start) {
		add("start state %q is not a state", d.Start)
	}

	if len(d.Accept) == 0 {
		add("accept states cannot be empty")
	}
	for _, s := range d.Accept {
		if !states.Has(s) {
			add("accept state %q is not a state", s)
		}
	}

	for _, from := range sortedSources(d.Transitions) {
		m := d.Transitions[from]
		if !states.Has(from) {
			add("transition source %q is not a state", from)
		}
		for _, sym := range sortedSymbols(m) {
			if sym != Epsilon && !alphabet[sym] {
				add("transition (%s, %s) uses a symbol not in the alphabet", from, sym)
			}
			for _, to := range m[sym] {
				if !states.Has(to) {
					add("transition (%s, %s) has destination %q, which is not a state", from, sym, to)
				}
			}
		}
	}

	if 0 < len(problems) {
		return &ConfigError{
			Name:     d.Name,
			Problems: problems,
		}
	}
	return nil
}

// Name returns the automaton's name, which might be empty.
func (a *Automaton) Name() string {
	return a.name
}

// Doc returns the automaton's documentation, which might be empty.
func (a *Automaton) Doc() string {
	return a.doc
}

// States returns the states in declared order.
func (a *Automaton) States() []State {
	return append([]State(nil), a.states...)
}

// Alphabet returns the alphabet in declared order.
func (a *Automaton) Alphabet() []Symbol {
	return append([]Symbol(nil), a.symbols...)
}

// HasState reports whether the given state is a state of the
// automaton.
func (a *Automaton) HasState(s State) bool {
	return a.stateSet.Has(s)
}

// InAlphabet reports whether the given symbol is in the alphabet.
func (a *Automaton) InAlphabet(sym Symbol) bool {
	_, have := a.symbolSet[sym]
	return have
}

// Start returns the start state.
func (a *Automaton) Start() State {
	return a.start
}

// Accept returns (a copy of) the accept states.
func (a *Automaton) Accept() StateSet {
	return a.accept.Copy()
}

// IsAccept reports whether the given state is an accept state.
func (a *Automaton) IsAccept(s State) bool {
	return a.accept.Has(s)
}

// Transitions returns a copy of the transition relation with
// destinations in lexical order.
func (a *Automaton) Transitions() Transitions {
	acc := make(Transitions, len(a.transitions))
	for from, m := range a.transitions {
		n := make(map[Symbol][]State, len(m))
		for sym, tos := range m {
			n[sym] = tos.Sorted()
		}
		acc[from] = n
	}
	return acc
}

// Next returns (a copy of) the destinations for the given state and
// symbol.  The result is empty if there are none.
func (a *Automaton) Next(from State, sym Symbol) StateSet {
	return a.transitions[from][sym].Copy()
}

// IsDFA reports the classification computed at construction.
func (a *Automaton) IsDFA() bool {
	return a.isDFA
}

// HasEpsilon reports whether any ε-transition exists.
func (a *Automaton) HasEpsilon() bool {
	return a.hasEpsilon
}

// Definition returns a Definition that would Compile to an
// equivalent Automaton.
func (a *Automaton) Definition() *Definition {
	return &Definition{
		Name:        a.name,
		Doc:         a.doc,
		States:      a.States(),
		Alphabet:    a.Alphabet(),
		Transitions: a.Transitions(),
		Start:       a.start,
		Accept:      a.accept.Sorted(),
		Partial:     a.partial,
	}
}
