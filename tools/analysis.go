/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package tools

import (
	"fmt"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/util"

	"gopkg.in/yaml.v2"
)

// Analysis reports on the structure of an automaton.
type Analysis struct {
	a *core.Automaton

	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Kind core.Kind `json:"kind" yaml:"kind"`

	States      int `json:"states" yaml:"states"`
	Symbols     int `json:"symbols" yaml:"symbols"`
	Edges       int `json:"edges" yaml:"edges"`
	EpsilonEdge int `json:"epsilonEdges" yaml:"epsilonEdges"`

	// Reachable states can be reached from the start state.
	Reachable []core.State `json:"reachable" yaml:"reachable"`

	// Unreachable states can't.
	Unreachable []core.State `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`

	// DeadEnds are non-accepting states with no outgoing
	// transitions.
	DeadEnds []core.State `json:"deadEnds,omitempty" yaml:"deadEnds,omitempty"`

	// Hopeless states can't reach any accept state.
	Hopeless []core.State `json:"hopeless,omitempty" yaml:"hopeless,omitempty"`

	// Nondeterministic pairs have more than one destination.
	Nondeterministic []string `json:"nondeterministic,omitempty" yaml:"nondeterministic,omitempty"`

	// Missing pairs (non-accepting state, symbol) have no
	// transition.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`

	// Warnings summarize anything above that looks suspicious.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Analyze examines the automaton's transition graph.
func Analyze(a *core.Automaton) (*Analysis, error) {
	states := a.States()
	alphabet := a.Alphabet()

	util.Logf("analysis", "processing %d states", len(states))

	an := Analysis{
		a:        a,
		Name:     a.Name(),
		Kind:     a.Kind(),
		States:   len(states),
		Symbols:  len(alphabet),
		Warnings: make([]string, 0, 4),
	}

	symbols := alphabet
	if a.HasEpsilon() {
		symbols = append(append([]core.Symbol(nil), alphabet...), core.Epsilon)
	}

	// successors and predecessors ignoring symbols.
	succ := make(map[core.State]core.StateSet, len(states))
	pred := make(map[core.State]core.StateSet, len(states))
	for _, s := range states {
		succ[s] = core.NewStateSet()
		pred[s] = core.NewStateSet()
	}

	for _, s := range states {
		for _, sym := range symbols {
			tos := a.Next(s, sym)
			n := tos.Len()
			if sym == core.Epsilon {
				an.EpsilonEdge += n
			} else {
				an.Edges += n
				if 1 < n {
					an.Nondeterministic = append(an.Nondeterministic, pair(s, sym))
				}
				if n == 0 && !a.IsAccept(s) {
					an.Missing = append(an.Missing, pair(s, sym))
				}
			}
			for to := range tos {
				succ[s].Add(to)
				pred[to].Add(s)
			}
		}
	}

	reachable := closure(core.NewStateSet(a.Start()), succ)
	canAccept := closure(a.Accept(), pred)

	for _, s := range states {
		if reachable.Has(s) {
			an.Reachable = append(an.Reachable, s)
		} else {
			an.Unreachable = append(an.Unreachable, s)
		}
		if !a.IsAccept(s) && succ[s].Len() == 0 {
			an.DeadEnds = append(an.DeadEnds, s)
		}
		if !canAccept.Has(s) {
			an.Hopeless = append(an.Hopeless, s)
		}
	}

	if 0 < len(an.Unreachable) {
		an.Warnings = append(an.Warnings, fmt.Sprintf("%d unreachable states", len(an.Unreachable)))
	}
	if !canAccept.Has(a.Start()) {
		an.Warnings = append(an.Warnings, "the start state can't reach an accept state, so nothing is accepted")
	}
	if !a.IsDFA() && len(an.Nondeterministic) == 0 && an.EpsilonEdge == 0 {
		an.Warnings = append(an.Warnings, "deterministic but incomplete")
	}

	util.Logf("analysis", "analysis done")

	return &an, nil
}

// YAML renders the analysis as YAML.
func (an *Analysis) YAML() ([]byte, error) {
	return yaml.Marshal(an)
}

func pair(s core.State, sym core.Symbol) string {
	return "(" + string(s) + ", " + string(sym) + ")"
}

// closure returns the states reachable from the given ones by
// following the edges.
func closure(from core.StateSet, edges map[core.State]core.StateSet) core.StateSet {
	acc := from.Copy()
	stack := from.Sorted()
	for 0 < len(stack) {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for to := range edges[s] {
			if acc.Add(to) {
				stack = append(stack, to)
			}
		}
	}
	return acc
}
