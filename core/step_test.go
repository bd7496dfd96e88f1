package core

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"

	. "github.com/Comcast/automata/util/testutil"
)

func mustCompile(t *testing.T, d *Definition) *Automaton {
	t.Helper()
	a, err := d.Compile()
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func chars(s string) []Symbol {
	acc := make([]Symbol, 0, len(s))
	for _, r := range s {
		acc = append(acc, Symbol(string(r)))
	}
	return acc
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		description string
		def         *Definition
		input       string
		expected    bool
	}{
		{"dfa empty", OddZerosDefinition(), "", false},
		{"dfa one", OddZerosDefinition(), "1", false},
		{"dfa zero", OddZerosDefinition(), "0", true},
		{"dfa zero zero", OddZerosDefinition(), "00", false},
		{"dfa mixed", OddZerosDefinition(), "10110", false},
		{"dfa mixed odd", OddZerosDefinition(), "100110", true},
		{"eps a", EpsilonDefinition(), "a", true},
		{"eps empty", EpsilonDefinition(), "", false},
		{"eps aa stuck", EpsilonDefinition(), "aa", false},
		{"nfa ab", EndsWithABDefinition(), "ab", true},
		{"nfa aab", EndsWithABDefinition(), "aab", true},
		{"nfa abb", EndsWithABDefinition(), "abb", false},
		{"nfa babab", EndsWithABDefinition(), "babab", true},
		{"nfa empty", EndsWithABDefinition(), "", false},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			a := mustCompile(t, tc.def)
			ok, err := a.Simulate(chars(tc.input))
			if err != nil {
				t.Fatal(err)
			}
			if ok != tc.expected {
				t.Fatalf("expected %v but received %v for %q", tc.expected, ok, tc.input)
			}
		})
	}
}

func TestSimulateTurnstile(t *testing.T) {
	a, err := Turnstile()
	if err != nil {
		t.Fatal(err)
	}
	ok, err := a.Simulate(Symbols("push", "coin", "coin"))
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("should have been left unlocked")
	}
	if ok, _ = a.Simulate(Symbols("coin", "push")); ok {
		t.Fatal("should be locked")
	}
}

func TestInputError(t *testing.T) {
	a := mustCompile(t, OddZerosDefinition())

	// "0" alone would be accepted.
	ok, err := a.Simulate(chars("0x2x"))
	if ok {
		t.Fatal("accepted invalid input")
	}

	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected a %T but received %#v", ie, err)
	}
	if want := Symbols("x", "2"); !reflect.DeepEqual(ie.Invalid, want) {
		t.Fatalf("expected %v but received %v", want, ie.Invalid)
	}
	if want := Symbols("0", "1"); !reflect.DeepEqual(ie.Alphabet, want) {
		t.Fatalf("expected %v but received %v", want, ie.Alphabet)
	}
	want := "input string contains invalid symbols:\ninvalid symbols: x, 2\nallowed symbols (alphabet): 0, 1"
	if err.Error() != want {
		t.Fatalf("expected %q but received %q", want, err.Error())
	}

	// Epsilon is never input.
	if _, err = a.Simulate([]Symbol{Epsilon}); !errors.As(err, &ie) {
		t.Fatalf("expected a %T but received %#v", ie, err)
	}

	// The automaton is still fine.
	if ok, err = a.Simulate(chars("0")); err != nil || !ok {
		t.Fatalf("automaton broken after input error: %v %v", ok, err)
	}
}

func TestEpsilonClosure(t *testing.T) {
	a := mustCompile(t, &Definition{
		States:   States("a", "b", "c", "d", "e"),
		Alphabet: Symbols("x"),
		Transitions: Transitions{
			"a": {Epsilon: {"b"}},
			"b": {Epsilon: {"c", "a"}, "x": {"e"}},
			"c": {Epsilon: {"c"}},
			"d": {Epsilon: {"e"}},
		},
		Start:  "a",
		Accept: States("e"),
	})

	tests := []struct {
		from     StateSet
		expected StateSet
	}{
		{NewStateSet("a"), NewStateSet("a", "b", "c")},
		{NewStateSet("c"), NewStateSet("c")},
		{NewStateSet("d"), NewStateSet("d", "e")},
		{NewStateSet("a", "d"), NewStateSet("a", "b", "c", "d", "e")},
		{NewStateSet(), NewStateSet()},
	}

	for _, tc := range tests {
		t.Run(tc.from.String(), func(t *testing.T) {
			from := tc.from.Copy()
			got := a.EpsilonClosure(tc.from)
			if !got.Equal(tc.expected) {
				t.Fatalf("expected %s but received %s", tc.expected, got)
			}
			if !tc.from.Equal(from) {
				t.Fatalf("argument modified")
			}
			if again := a.EpsilonClosure(got); !again.Equal(got) {
				t.Fatalf("not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	a := mustCompile(t, EpsilonDefinition())

	w, err := a.Walk(chars("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !w.Initial.Equal(NewStateSet("q0", "q1")) {
		t.Fatalf("initial %s", w.Initial)
	}
	if len(w.Strides) != 1 {
		t.Fatalf("strides %s", JS(w.Strides))
	}
	if !w.Final().Equal(NewStateSet("q2")) || !w.Accepted || w.StoppedBecause != Done {
		t.Fatalf("walked %s", JS(w))
	}

	if w, err = a.Walk(chars("aaa")); err != nil {
		t.Fatal(err)
	}
	if w.Accepted || w.StoppedBecause != Stuck || len(w.Strides) != 2 {
		t.Fatalf("walked %s", JS(w))
	}
	if 0 != w.Final().Len() {
		t.Fatalf("final %s", w.Final())
	}

	js := JS(w)
	want := `{"initial":["q0","q1"],"strides":[{"from":["q0","q1"],"consumed":"a","to":["q2"]},{"from":["q2"],"consumed":"a","to":[]}],"accepted":false,"stoppedBecause":"stuck"}`
	if js != want {
		t.Fatalf("expected %s but received %s", want, js)
	}
}

// pathAccepts explores every path explicitly, which is what the
// set-of-states simulation collapses.
func pathAccepts(a *Automaton, s State, input []Symbol, seen map[string]bool) bool {
	key := fmt.Sprintf("%s/%d", s, len(input))
	if seen[key] {
		return false
	}
	seen[key] = true

	if len(input) == 0 && a.IsAccept(s) {
		return true
	}
	for next := range a.transitions[s][Epsilon] {
		if pathAccepts(a, next, input, seen) {
			return true
		}
	}
	if 0 < len(input) {
		for next := range a.transitions[s][input[0]] {
			if pathAccepts(a, next, input[1:], seen) {
				return true
			}
		}
	}
	return false
}

func randomDefinition(r *rand.Rand) *Definition {
	n := 1 + r.Intn(5)
	states := make([]State, n)
	for i := range states {
		states[i] = State(fmt.Sprintf("s%d", i))
	}
	alphabet := Symbols("a", "b")
	ts := make(Transitions)
	for _, from := range states {
		for _, sym := range append([]Symbol{Epsilon}, alphabet...) {
			for k := r.Intn(3); 0 < k; k-- {
				if sym == Epsilon && r.Intn(2) == 0 {
					continue
				}
				ts.Add(from, sym, states[r.Intn(n)])
			}
		}
	}
	return &Definition{
		States:      states,
		Alphabet:    alphabet,
		Transitions: ts,
		Start:       states[0],
		Accept:      []State{states[r.Intn(n)]},
		Partial:     true,
	}
}

func TestSimulateAgreesWithPaths(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	inputs := []string{"", "a", "b", "ab", "ba", "aab", "abab", "bbbb", "abba"}

	for i := 0; i < 200; i++ {
		d := randomDefinition(r)
		a := mustCompile(t, d)
		for _, s := range inputs {
			input := chars(s)
			ok, err := a.Simulate(input)
			if err != nil {
				t.Fatal(err)
			}
			if want := pathAccepts(a, a.Start(), input, map[string]bool{}); ok != want {
				t.Fatalf("%s on %q: simulate %v paths %v", JS(d), s, ok, want)
			}
			w, err := a.Walk(input)
			if err != nil {
				t.Fatal(err)
			}
			if w.Accepted != ok {
				t.Fatalf("%s on %q: simulate %v walk %v", JS(d), s, ok, w.Accepted)
			}
			if s == "" {
				want := a.EpsilonClosure(NewStateSet(a.Start())).Intersects(a.Accept())
				if ok != want {
					t.Fatalf("%s: empty input %v closure says %v", JS(d), ok, want)
				}
			}
		}
		for _, st := range a.States() {
			c := a.EpsilonClosure(NewStateSet(st))
			if !c.Has(st) {
				t.Fatalf("closure of %s lacks %s", st, st)
			}
			if !a.EpsilonClosure(c).Equal(c) {
				t.Fatalf("closure of %s not idempotent", st)
			}
		}
	}
}

func TestSimulateConcurrently(t *testing.T) {
	a := mustCompile(t, EndsWithABDefinition())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				input := "ba"
				if (i+j)%2 == 0 {
					input = "bab"
				}
				ok, err := a.Simulate(chars(input))
				if err != nil {
					errs <- err
					return
				}
				if ok != (input == "bab") {
					errs <- fmt.Errorf("wrong verdict for %q", input)
					return
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
