package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/notation"
	"github.com/Comcast/automata/storage"
	"github.com/Comcast/automata/tools"
)

var (
	NotFound = errors.New("not found")
)

// BadRequest is a complaint about a request that's not about an
// automaton's definition or input.
type BadRequest struct {
	Problem string `json:"problem"`
}

func (e *BadRequest) Error() string {
	return e.Problem
}

// SimulateRequest asks for a verdict.
//
// The input is either Input (a list of symbols) or Text, which is
// split by Sep (one symbol per character when Sep is empty).
type SimulateRequest struct {
	// Name is the automaton's name, which is only needed when the
	// request doesn't arrive at /automata/NAME (websockets, MQTT).
	Name string `json:"name,omitempty"`

	Input []core.Symbol `json:"input,omitempty"`
	Text  string        `json:"text,omitempty"`
	Sep   string        `json:"sep,omitempty"`
}

func (r *SimulateRequest) symbols() []core.Symbol {
	if 0 < len(r.Input) {
		return r.Input
	}
	return notation.SplitInput(r.Text, r.Sep)
}

// Verdict is the result of a simulation.
type Verdict struct {
	Name     string        `json:"name"`
	Kind     core.Kind     `json:"kind"`
	Input    []core.Symbol `json:"input"`
	Accepted bool          `json:"accepted"`
	Error    string        `json:"error,omitempty"`
}

// ClosureRequest asks for the ε-closure of some states (the start
// state if none are given).
type ClosureRequest struct {
	States []core.State `json:"states,omitempty"`
}

// Service keeps named automata and answers questions about them.
type Service struct {
	sync.RWMutex

	automata map[string]*core.Holder

	// Storage records every verdict.
	Storage storage.Storage

	// Analyses caches tools.Analyze results.  Optional.
	Analyses *AnalysisCache

	// Hooks are called (synchronously) with every verdict.
	Hooks []func(ctx context.Context, v *Verdict)

	firehose chan interface{}
}

// NewService makes a Service with the given Storage (a MemStorage if
// nil), which should already be open.
func NewService(store storage.Storage) *Service {
	if store == nil {
		store = storage.NewMemStorage()
	}
	return &Service{
		automata: make(map[string]*core.Holder, 32),
		Storage:  store,
	}
}

// Put compiles the definition and installs it under the given name.
//
// The definition's Name is replaced by the given name.  Callers that
// already have the previous automaton for this name can keep using
// it.
func (s *Service) Put(ctx context.Context, name string, d *core.Definition) (*core.Automaton, error) {
	if name == "" {
		return nil, &BadRequest{"no name"}
	}
	d = d.Copy()
	d.Name = name
	a, err := d.Compile()
	if err != nil {
		return nil, err
	}

	s.Lock()
	if h, have := s.automata[name]; have {
		h.Set(a)
	} else {
		s.automata[name] = core.NewHolder(a)
	}
	s.Unlock()

	if s.Analyses != nil {
		s.Analyses.Rem(name)
	}

	log.Printf("Service.Put %s (%s)", name, a.Kind())
	s.fire(map[string]interface{}{
		"put":  name,
		"kind": a.Kind(),
	})

	return a, nil
}

// Get returns the current automaton with the given name.
func (s *Service) Get(name string) (*core.Automaton, error) {
	s.RLock()
	h, have := s.automata[name]
	s.RUnlock()
	if !have {
		return nil, fmt.Errorf("automaton %q %w", name, NotFound)
	}
	return h.Automaton(), nil
}

// Names returns the names of all automata in order.
func (s *Service) Names() []string {
	s.RLock()
	names := make([]string, 0, len(s.automata))
	for name := range s.automata {
		names = append(names, name)
	}
	s.RUnlock()
	sort.Strings(names)
	return names
}

// Simulate runs the input and records the verdict.
//
// If the input has symbols outside the alphabet, the returned
// Verdict has an Error, and the error is also returned.
func (s *Service) Simulate(ctx context.Context, name string, r *SimulateRequest) (*Verdict, error) {
	a, err := s.Get(name)
	if err != nil {
		return nil, err
	}

	in := r.symbols()
	accepted, err := a.Simulate(in)

	v := &Verdict{
		Name:     name,
		Kind:     a.Kind(),
		Input:    in,
		Accepted: accepted,
	}
	if err != nil {
		v.Error = err.Error()
	}

	if rerr := s.Storage.Record(ctx, storage.NewRun(a, in, accepted, err)); rerr != nil {
		log.Printf("Service.Simulate Record error %v", rerr)
	}

	s.fire(v)
	for _, hook := range s.Hooks {
		hook(ctx, v)
	}

	return v, err
}

// Walk reports the sets of current states symbol by symbol.
func (s *Service) Walk(ctx context.Context, name string, r *SimulateRequest) (*core.Walked, error) {
	a, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return a.Walk(r.symbols())
}

// Closure returns the ε-closure of the requested states.
func (s *Service) Closure(ctx context.Context, name string, r *ClosureRequest) (core.StateSet, error) {
	a, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	ss := core.NewStateSet(a.Start())
	if 0 < len(r.States) {
		ss = core.NewStateSet(r.States...)
		for st := range ss {
			if !a.HasState(st) {
				return nil, &BadRequest{fmt.Sprintf("unknown state %q", st)}
			}
		}
	}
	return a.EpsilonClosure(ss), nil
}

// Analyze returns a (possibly cached) analysis.
func (s *Service) Analyze(ctx context.Context, name string) (*tools.Analysis, error) {
	a, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if s.Analyses != nil {
		if an := s.Analyses.Get(name, a); an != nil {
			return an, nil
		}
	}
	an, err := tools.Analyze(a)
	if err != nil {
		return nil, err
	}
	if s.Analyses != nil {
		s.Analyses.Put(name, a, an)
	}
	return an, nil
}

// Runs returns the recorded runs for the named automaton.
func (s *Service) Runs(ctx context.Context, name string, limit int) ([]*storage.Run, error) {
	if _, err := s.Get(name); err != nil {
		return nil, err
	}
	return s.Storage.Runs(ctx, name, limit)
}

// fire sends the message to the firehose (if any) without blocking.
func (s *Service) fire(x interface{}) {
	s.RLock()
	firehose := s.firehose
	s.RUnlock()
	if firehose == nil {
		return
	}
	select {
	case firehose <- x:
	default:
		log.Printf("Service firehose blocked")
	}
}
