/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	. "github.com/Comcast/automata/core"
	"github.com/Comcast/automata/util"
)

// DotOpts controls the rendering of Dot.
type DotOpts struct {
	// Highlight is an optional set of states (probably the
	// current states of a walk) to draw in red.
	Highlight StateSet `json:"highlight,omitempty"`

	// ShowDoc adds the automaton's Doc (first sentence) as the
	// graph's label.
	ShowDoc bool `json:"showDoc,omitempty"`
}

// Dot makes a Graphviz dot file for the given automaton.
//
// Layout is left to right.  Accept states are double circles.  An
// invisible node points at the start state.  There is one edge per
// destination, labeled with the symbol.
//
// The writer is closed.
func Dot(a *Automaton, w io.WriteCloser, opts *DotOpts) error {
	if opts == nil {
		opts = &DotOpts{}
	}

	states := a.States()

	util.Logf("dot", "processing %d states", len(states))

	fmt.Fprintf(w, "digraph \"%s\" {\n", escape(a.Name()))
	fmt.Fprintf(w, `  graph [rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="circle"]
  edge [fontsize = "12"]
`)
	if opts.ShowDoc && a.Doc() != "" {
		doc := a.Doc()
		if 40 < len(doc) {
			period := strings.Index(doc, ". ")
			if 0 < period {
				doc = doc[0 : period+1]
			}
		}
		fmt.Fprintf(w, "  label=\"%s\"\n", escape(doc))
	}

	fmt.Fprintf(w, "  \"__start\" [shape=\"point\", style=\"invis\"]\n")

	for _, s := range states {
		shape := "circle"
		if a.IsAccept(s) {
			shape = "doublecircle"
		}
		color := "black"
		style := "solid"
		fillcolor := "white"
		if opts.Highlight.Has(s) {
			color = "red"
			style = "filled"
			fillcolor = "#f98b8b"
		}
		if s == a.Start() {
			style += ",bold"
		}
		fmt.Fprintf(w, "  \"%s\" [shape=\"%s\", style=\"%s\", color=\"%s\", fillcolor=\"%s\"]\n",
			escape(string(s)), shape, style, color, fillcolor)
	}

	fmt.Fprintf(w, "  \"__start\" -> \"%s\"\n", escape(string(a.Start())))

	symbols := a.Alphabet()
	if a.HasEpsilon() {
		symbols = append(symbols, Epsilon)
	}

	for _, s := range states {
		n := 0
		for _, sym := range symbols {
			for _, to := range a.Next(s, sym).Sorted() {
				color := "black"
				if opts.Highlight.Has(s) && opts.Highlight.Has(to) {
					color = "red"
				}
				fmt.Fprintf(w, "  \"%s\" -> \"%s\" [ color=\"%s\" label = \"%s\" ]\n",
					escape(string(s)), escape(string(to)), color, escape(string(sym)))
				n++
			}
		}
		util.Logf("dot", "  processed %s edges: %d", s, n)
	}

	fmt.Fprintf(w, "}\n")
	return w.Close()
}

// PNG generates a PNG image based on output from Dot.
//
// This function with write two files: basename.dot and basename.png,
// where the basename is the given string.
func PNG(a *Automaton, basename string, opts *DotOpts) (string, error) {
	dotname := basename + ".dot"
	pngname := basename + ".png"

	dotfile, err := os.Create(dotname)
	if err != nil {
		return pngname, err
	}
	if err := Dot(a, dotfile, opts); err != nil {
		return pngname, err
	}
	if err := exec.Command("dot", "-Tpng", "-o", pngname, dotname).Run(); err != nil {
		return pngname, err
	}
	return pngname, nil
}

func escape(s string) string {
	return strings.Replace(s, `"`, `\"`, -1)
}
