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
	"io"
	"strings"

	. "github.com/Comcast/automata/core"
	"github.com/Comcast/automata/util"
)

type MermaidOpts struct {
	// Highlight is an optional set of states to fill with
	// HighlightFill.
	Highlight StateSet `json:"highlight,omitempty"`

	// HighlightFill is the fill color for highlighted states.
	HighlightFill string `json:"highlightFill,omitempty"`

	// AcceptFill is the fill color for accept states.  Does not
	// apply if AcceptClass is set.
	AcceptFill string `json:"acceptFill,omitempty"`

	// AcceptClass will be the CSS class for accept states.
	AcceptClass string `json:"acceptClass,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given automaton.
//
// Accept states are double circles.  Edges with the same source,
// destination share one label ("0, 1").
//
// The writer is closed.
func Mermaid(a *Automaton, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &MermaidOpts{
			AcceptFill:    "#bcf2db",
			HighlightFill: "#f98b8b",
		}
	}

	states := a.States()

	util.Logf("mermaid", "processing %d states", len(states))

	fmt.Fprintf(w, "graph LR\n")

	nids := make(map[State]string, len(states))
	for i, s := range states {
		nid := fmt.Sprintf("n%d", i+1)
		nids[s] = nid
		label := strings.Replace(string(s), `"`, `'`, -1)
		if a.IsAccept(s) {
			fmt.Fprintf(w, "  %s(((\"%s\")))\n", nid, label)
			if opts.AcceptClass != "" {
				fmt.Fprintf(w, "  class %s %s\n", nid, opts.AcceptClass)
			} else if opts.AcceptFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.AcceptFill)
			}
		} else {
			fmt.Fprintf(w, "  %s((\"%s\"))\n", nid, label)
		}
		if opts.Highlight.Has(s) && opts.HighlightFill != "" {
			fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.HighlightFill)
		}
	}

	fmt.Fprintf(w, "  n0[ ] --> %s\n", nids[a.Start()])
	fmt.Fprintf(w, "  style n0 fill:none,stroke:none\n")

	symbols := a.Alphabet()
	if a.HasEpsilon() {
		symbols = append(symbols, Epsilon)
	}

	for _, s := range states {
		// Labels per destination, in destination order of first
		// appearance.
		var (
			order  []State
			labels = make(map[State][]string)
		)
		for _, sym := range symbols {
			for _, to := range a.Next(s, sym).Sorted() {
				if _, have := labels[to]; !have {
					order = append(order, to)
				}
				labels[to] = append(labels[to], string(sym))
			}
		}
		for _, to := range order {
			label := strings.Replace(strings.Join(labels[to], ", "), `"`, `'`, -1)
			fmt.Fprintf(w, "  %s -- \"%s\" --> %s\n", nids[s], label, nids[to])
		}
	}

	util.Logf("mermaid", "mermaid gen done")

	return w.Close()
}
