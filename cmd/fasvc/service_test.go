package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/storage"
	. "github.com/Comcast/automata/util/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(nil)
	if err := s.Load(context.Background(), "../../specs"); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := newTestService(t)
	names := s.Names()
	want := []string{"ends-with-ab", "eps-a", "odd-zeros", "turnstile"}
	if len(names) != len(want) {
		t.Fatal(names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatal(names)
		}
	}
}

func TestServiceSimulate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	var saw []*Verdict
	s.Hooks = append(s.Hooks, func(ctx context.Context, v *Verdict) {
		saw = append(saw, v)
	})

	tests := []struct {
		description string
		name        string
		req         SimulateRequest
		accepted    bool
		status      int
	}{
		{
			description: "text",
			name:        "odd-zeros",
			req:         SimulateRequest{Text: "010"},
		},
		{
			description: "symbols",
			name:        "turnstile",
			req:         SimulateRequest{Input: core.Symbols("push", "coin")},
			accepted:    true,
		},
		{
			description: "separator",
			name:        "turnstile",
			req:         SimulateRequest{Text: "coin push", Sep: " "},
		},
		{
			description: "ε",
			name:        "eps-a",
			req:         SimulateRequest{Text: "a"},
			accepted:    true,
		},
		{
			description: "bad symbols",
			name:        "odd-zeros",
			req:         SimulateRequest{Text: "0x"},
			status:      http.StatusBadRequest,
		},
		{
			description: "runes",
			name:        "odd-zeros",
			req:         SimulateRequest{Input: core.Symbols(Runes("0110")...)},
		},
		{
			description: "unknown",
			name:        "tacos",
			req:         SimulateRequest{Text: "0"},
			status:      http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			v, err := s.Simulate(ctx, tc.name, &tc.req)
			if tc.status != 0 {
				if err == nil {
					t.Fatal("expected an error")
				}
				if got := status(err); got != tc.status {
					t.Fatalf("status %d for %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if v.Accepted != tc.accepted {
				t.Fatalf("%#v", v)
			}
		})
	}

	// Every verdict (even with an input error) was seen.
	if len(saw) != 6 {
		t.Fatal(len(saw))
	}

	runs, err := s.Runs(ctx, "odd-zeros", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 || runs[1].Error == "" || runs[2].Error != "" {
		t.Fatalf("%#v", runs)
	}
}

func TestServicePut(t *testing.T) {
	ctx := context.Background()
	s := NewService(nil)

	d := &core.Definition{
		States:   core.States("q0", "q1"),
		Alphabet: core.Symbols("0", "1"),
		Transitions: core.Transitions{
			"q0": {"0": core.States("q1")},
		},
		Start:  "q0",
		Accept: core.States("q1"),
	}

	_, err := s.Put(ctx, "partial", d)
	CheckErr(t, err, errors.New("DFA validation errors"))
	var te *core.TransitionError
	if !errors.As(err, &te) {
		t.Fatal(err)
	}
	if status(err) != http.StatusBadRequest {
		t.Fatal(err)
	}
	if _, err = s.Get("partial"); !errors.Is(err, NotFound) {
		t.Fatal(err)
	}

	d.Partial = true
	a, err := s.Put(ctx, "partial", d)
	if err != nil {
		t.Fatal(err)
	}
	if a.Kind() != core.NFA || a.Name() != "partial" {
		t.Fatal(a.Kind(), a.Name())
	}

	// Replacing leaves the old automaton alone.
	d.Transitions.Add("q0", "1", "q0")
	d.Transitions.Add("q1", "0", "q1")
	d.Transitions.Add("q1", "1", "q1")
	d.Partial = false
	b, err := s.Put(ctx, "partial", d)
	if err != nil {
		t.Fatal(err)
	}
	if b.Kind() != core.DFA || a.Kind() != core.NFA {
		t.Fatal(b.Kind(), a.Kind())
	}
	if got, _ := s.Get("partial"); got != b {
		t.Fatal("not replaced")
	}

	if _, err = s.Put(ctx, "", d); status(err) != http.StatusBadRequest {
		t.Fatal(err)
	}
}

func TestServiceClosure(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	ss, err := s.Closure(ctx, "eps-a", &ClosureRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if !ss.Equal(core.NewStateSet("q0", "q1")) {
		t.Fatal(ss)
	}

	if _, err = s.Closure(ctx, "eps-a", &ClosureRequest{States: core.States("q9")}); status(err) != http.StatusBadRequest {
		t.Fatal(err)
	}
}

func TestServiceAnalyzeCached(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	s.Analyses = NewAnalysisCache(time.Minute, 8)

	an, err := s.Analyze(ctx, "ends-with-ab")
	if err != nil {
		t.Fatal(err)
	}
	again, err := s.Analyze(ctx, "ends-with-ab")
	if err != nil {
		t.Fatal(err)
	}
	if an != again {
		t.Fatal("not cached")
	}

	// A new definition means a new analysis.
	a, _ := s.Get("ends-with-ab")
	if _, err = s.Put(ctx, "ends-with-ab", a.Definition()); err != nil {
		t.Fatal(err)
	}
	fresh, err := s.Analyze(ctx, "ends-with-ab")
	if err != nil {
		t.Fatal(err)
	}
	if fresh == an {
		t.Fatal("stale analysis")
	}
}

func TestAnalysisCacheExpires(t *testing.T) {
	s := newTestService(t)
	a, _ := s.Get("odd-zeros")
	c := NewAnalysisCache(-time.Second, 8)
	c.Put("odd-zeros", a, nil)
	if c.Get("odd-zeros", a) != nil {
		t.Fatal("should have expired")
	}
	if _, have := c.Entries["odd-zeros"]; have {
		t.Fatal("should have been removed")
	}
}

func TestPruner(t *testing.T) {
	ctx := context.Background()

	if _, err := NewPruner("tacos", time.Hour, nil); err == nil {
		t.Fatal("expected a cron error")
	}

	store := storage.NewMemStorage()
	p, err := NewPruner("0 * * * *", time.Hour, store)
	if err != nil {
		t.Fatal(err)
	}

	then := time.Date(2020, 1, 1, 10, 30, 0, 0, time.UTC)
	if next := p.Next(then); !next.Equal(time.Date(2020, 1, 1, 11, 0, 0, 0, time.UTC)) {
		t.Fatal(next)
	}

	s := newTestService(t)
	a, _ := s.Get("odd-zeros")
	old := storage.NewRun(a, core.Symbols("0"), true, nil)
	old.At = then
	recent := storage.NewRun(a, core.Symbols("1"), false, nil)
	recent.At = then.Add(90 * time.Minute)
	for _, r := range []*storage.Run{old, recent} {
		if err = store.Record(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := p.Prune(ctx, then.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatal(n)
	}
	runs, _ := store.Runs(ctx, "odd-zeros", 0)
	if len(runs) != 1 || !runs[0].At.Equal(recent.At) {
		t.Fatalf("%#v", runs)
	}
}

func TestNoHistory(t *testing.T) {
	ctx := context.Background()
	s := NewService(&storage.NoopStorage{})
	if err := s.Load(ctx, "../../specs"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Simulate(ctx, "odd-zeros", &SimulateRequest{Text: "0"}); err != nil {
		t.Fatal(err)
	}
	runs, err := s.Runs(ctx, "odd-zeros", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Fatal(len(runs))
	}
}
