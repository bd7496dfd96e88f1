// Package storage keeps a history of runs: which input was given to
// which automaton and what the verdict was.
//
// Automata themselves are not stored.
package storage

import (
	"context"
	"time"

	"github.com/Comcast/automata/core"
)

// Run is the record of one simulation.
type Run struct {
	// Id is assigned by the Storage.
	Id string `json:"id,omitempty"`

	// Automaton is the name of the automaton.
	Automaton string `json:"automaton"`

	Kind core.Kind `json:"kind"`

	Input []core.Symbol `json:"input"`

	Accepted bool `json:"accepted"`

	// Error is the text of any error (probably an InputError).
	Error string `json:"error,omitempty"`

	At time.Time `json:"at"`
}

// NewRun makes a Run for the given verdict at the current time.
func NewRun(a *core.Automaton, input []core.Symbol, accepted bool, err error) *Run {
	r := &Run{
		Automaton: a.Name(),
		Kind:      a.Kind(),
		Input:     append([]core.Symbol{}, input...),
		Accepted:  accepted,
		At:        time.Now().UTC(),
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Storage is a persistence interface for Runs.
type Storage interface {
	Open(ctx context.Context) error

	Close(ctx context.Context) error

	// Record writes the Run and sets its Id.
	Record(ctx context.Context, r *Run) error

	// Runs returns the named automaton's runs in the order they
	// happened.  When limit is positive, only the most recent
	// limit runs are returned.
	Runs(ctx context.Context, automaton string, limit int) ([]*Run, error)

	// Prune removes every run that happened before the given
	// time.  Returns the number of runs removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}
