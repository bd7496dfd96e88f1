package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Comcast/automata/core"
)

func fasim(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		description string
		args        []string
		stdin       string
		code        int
		out         []string
		err         string
	}{
		{
			description: "kind",
			args:        []string{"kind", "-f", "../../specs/eps-a.yaml"},
			out:         []string{"ε-NFA\n"},
		},
		{
			description: "simulate several",
			args:        []string{"simulate", "-f", "../../specs/odd-zeros.yaml", "0", "00", "010"},
			out:         []string{`"0" accepted`, `"00" rejected`, `"010" rejected`},
		},
		{
			description: "simulate the empty input",
			args:        []string{"simulate", "-f", "../../specs/odd-zeros.yaml"},
			out:         []string{`"" rejected`},
		},
		{
			description: "simulate with a separator",
			args:        []string{"simulate", "-f", "../../specs/turnstile.yaml", "-s", " ", "-i", "push coin"},
			out:         []string{`"push coin" accepted`},
		},
		{
			description: "simulate bad input",
			args:        []string{"simulate", "-f", "../../specs/odd-zeros.yaml", "0x2"},
			code:        1,
			err:         "input string contains invalid symbols:\ninvalid symbols: x, 2\nallowed symbols (alphabet): 0, 1\n",
		},
		{
			description: "closure",
			args:        []string{"closure", "-f", "../../specs/eps-a.yaml"},
			out:         []string{"{q0,q1}\n"},
		},
		{
			description: "closure of unknown state",
			args:        []string{"closure", "-f", "../../specs/eps-a.yaml", "-states", "q9"},
			code:        1,
		},
		{
			description: "analyze",
			args:        []string{"analyze", "-f", "../../specs/ends-with-ab.yaml"},
			out:         []string{"kind: NFA", "nondeterministic:\n- (s, a)"},
		},
		{
			description: "dot",
			args:        []string{"dot", "-f", "../../specs/ends-with-ab.yaml", "-w", "a"},
			out:         []string{`"x" [shape="circle", style="filled", color="red"`},
		},
		{
			description: "mermaid",
			args:        []string{"mermaid", "-f", "../../specs/turnstile.yaml"},
			out:         []string{"graph LR", `n1 -- "coin" --> n2`},
		},
		{
			description: "html",
			args:        []string{"html", "-f", "../../specs/turnstile.yaml", "-g=false"},
			out:         []string{"<title>turnstile</title>"},
		},
		{
			description: "definition from stdin",
			args:        []string{"kind"},
			stdin:       `{"states":["a"],"alphabet":["x"],"start":"a","accept":["a"]}`,
			out:         []string{"DFA\n"},
		},
		{
			description: "incomplete",
			args:        []string{"kind"},
			stdin:       `{"states":["q0","q1"],"alphabet":["0","1"],"transitions":{"q0":{"0":["q1"]}},"start":"q0","accept":["q1"]}`,
			code:        1,
			err:         "error: DFA validation errors:\n(q0, 1)\n",
		},
		{
			description: "incomplete but partial",
			args:        []string{"kind", "-partial"},
			stdin:       `{"states":["q0","q1"],"alphabet":["0","1"],"transitions":{"q0":{"0":["q1"]}},"start":"q0","accept":["q1"]}`,
			out:         []string{"NFA\n"},
		},
		{
			description: "form",
			args:        []string{"form"},
			stdin: `states: q0, q1
alphabet: a
start: q0
accept: q1
transitions: |
  q0,a -> q1
  q0,eps -> q1
`,
			out: []string{"states:\n- q0\n- q1", "ε:\n    - q1"},
		},
		{
			description: "bad form",
			args:        []string{"form"},
			stdin:       "states: q0\nalphabet: a\nstart: q0\naccept: q0\ntransitions: q0,b -> q0\n",
			code:        1,
			err:         "line 1: invalid symbol",
		},
		{
			description: "form reversed",
			args:        []string{"form", "-r", "-f", "../../specs/eps-a.yaml"},
			out:         []string{"q0,eps -> q1", "q1,a -> q2"},
		},
		{
			description: "expect",
			args:        []string{"expect", "-f", "../../specs/odd-zeros.test.yaml"},
			out:         []string{"all good"},
		},
		{
			description: "unknown subcommand",
			args:        []string{"tacos"},
			code:        1,
			err:         `Unknown subcommand "tacos"`,
		},
		{
			description: "help",
			args:        []string{"help"},
			out:         []string{"simulate: ", "yamltojson: "},
		},
	}

	for _, tc := range tests {
		t.Run(tc.description, func(t *testing.T) {
			code, out, errs := fasim(t, tc.stdin, tc.args...)
			if code != tc.code {
				t.Fatalf("exit %d (stdout %q, stderr %q)", code, out, errs)
			}
			for _, want := range tc.out {
				if !strings.Contains(out, want) {
					t.Fatalf("stdout missing %q in\n%s", want, out)
				}
			}
			if !strings.Contains(errs, tc.err) {
				t.Fatalf("stderr missing %q in\n%s", tc.err, errs)
			}
		})
	}
}

func TestWalkJSON(t *testing.T) {
	code, out, errs := fasim(t, "", "walk", "-f", "../../specs/ends-with-ab.yaml", "-i", "ab")
	if code != 0 {
		t.Fatal(errs)
	}
	var w struct {
		Initial  []string `json:"initial"`
		Accepted bool     `json:"accepted"`
		Strides  []struct {
			To []string `json:"to"`
		} `json:"strides"`
	}
	if err := json.Unmarshal([]byte(out), &w); err != nil {
		t.Fatal(err)
	}
	if !w.Accepted || len(w.Strides) != 2 {
		t.Fatal(out)
	}
	if got := strings.Join(w.Strides[1].To, ","); got != "f,s" {
		t.Fatal(got)
	}
}

func TestConversions(t *testing.T) {
	code, js, errs := fasim(t, "name: t\nstates: [a]\nalphabet: [x]\nstart: a\naccept: [a]\n", "yamltojson")
	if code != 0 {
		t.Fatal(errs)
	}
	var d core.Definition
	if err := json.Unmarshal([]byte(js), &d); err != nil {
		t.Fatal(err)
	}
	if d.Name != "t" || d.Start != "a" {
		t.Fatal(js)
	}

	code, y, errs := fasim(t, js, "jsontoyaml")
	if code != 0 {
		t.Fatal(errs)
	}
	if !strings.Contains(y, "name: t\n") || !strings.Contains(y, "start: a\n") {
		t.Fatal(y)
	}

	if code, _, _ = fasim(t, "", "yamltojson", "-x"); code != 1 {
		t.Fatal(code)
	}
}
