package tools

import (
	"strings"
	"testing"

	"github.com/Comcast/automata/core"
)

func TestMermaid(t *testing.T) {
	a := compile(t, core.OddZerosDefinition())

	out := &bufCloser{}
	if err := Mermaid(a, out, nil); err != nil {
		t.Fatal(err)
	}
	if !out.closed {
		t.Fatal("not closed")
	}

	want := `graph LR
  n1(("q0"))
  n2((("q1")))
  style n2 fill:#bcf2db
  n0[ ] --> n1
  style n0 fill:none,stroke:none
  n1 -- "0" --> n2
  n1 -- "1" --> n1
  n2 -- "0" --> n1
  n2 -- "1" --> n2
`
	if got := out.String(); got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestMermaidSharedLabels(t *testing.T) {
	d := &core.Definition{
		States:   core.States("a", "b"),
		Alphabet: core.Symbols("0", "1"),
		Transitions: core.Transitions{
			"a": {"0": {"b"}, "1": {"b"}},
			"b": {"0": {"b"}, "1": {"b"}},
		},
		Start:  "a",
		Accept: core.States("b"),
	}
	a := compile(t, d)

	out := &bufCloser{}
	opts := &MermaidOpts{
		Highlight:     core.NewStateSet("a"),
		HighlightFill: "red",
		AcceptClass:   "accept",
	}
	if err := Mermaid(a, out, opts); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		`n1 -- "0, 1" --> n2`,
		`class n2 accept`,
		`style n1 fill:red`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %s in\n%s", want, got)
		}
	}
}
