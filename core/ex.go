package core

// TurnstileDefinition makes an example DFA that's useful to have
// around.
//
// See https://en.wikipedia.org/wiki/Finite-state_machine#Example:_coin-operated_turnstile.
func TurnstileDefinition() *Definition {
	return &Definition{
		Name:     "turnstile",
		Doc:      "A coin-operated turnstile.  Accepts when the turnstile is left unlocked.",
		States:   States("locked", "unlocked"),
		Alphabet: Symbols("coin", "push"),
		Transitions: Transitions{
			"locked": {
				"coin": {"unlocked"},
				"push": {"locked"},
			},
			"unlocked": {
				"coin": {"unlocked"},
				"push": {"locked"},
			},
		},
		Start:  "locked",
		Accept: States("unlocked"),
	}
}

// OddZerosDefinition is a DFA over {0,1} that accepts strings with
// an odd number of 0s.
func OddZerosDefinition() *Definition {
	return &Definition{
		Name:     "odd-zeros",
		States:   States("q0", "q1"),
		Alphabet: Symbols("0", "1"),
		Transitions: Transitions{
			"q0": {
				"0": {"q1"},
				"1": {"q0"},
			},
			"q1": {
				"0": {"q0"},
				"1": {"q1"},
			},
		},
		Start:  "q0",
		Accept: States("q1"),
	}
}

// EpsilonDefinition is a small ε-NFA over {a} that accepts "a".
func EpsilonDefinition() *Definition {
	return &Definition{
		Name:     "eps-a",
		States:   States("q0", "q1", "q2"),
		Alphabet: Symbols("a"),
		Transitions: Transitions{
			"q0": {
				Epsilon: {"q1"},
			},
			"q1": {
				"a": {"q2"},
			},
		},
		Start:  "q0",
		Accept: States("q2"),
	}
}

// EndsWithABDefinition is an NFA over {a,b} that accepts strings
// that end with "ab".
func EndsWithABDefinition() *Definition {
	return &Definition{
		Name:     "ends-with-ab",
		States:   States("s", "x", "f"),
		Alphabet: Symbols("a", "b"),
		Transitions: Transitions{
			"s": {
				"a": {"s", "x"},
				"b": {"s"},
			},
			"x": {
				"b": {"f"},
			},
		},
		Start:  "s",
		Accept: States("f"),
	}
}

// Turnstile compiles TurnstileDefinition.
func Turnstile() (*Automaton, error) {
	return TurnstileDefinition().Compile()
}
