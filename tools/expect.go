package tools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/interpreters/goja"
	"github.com/Comcast/automata/notation"
	"github.com/Comcast/automata/util"

	"github.com/jsccast/yaml"
)

// Case is one input with its expected verdict.
type Case struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Input is the input as text, split by Sep (one symbol per
	// character when Sep is empty).
	Input string `json:"input,omitempty" yaml:"input,omitempty"`

	// Sep separates symbols in Input.
	Sep string `json:"sep,omitempty" yaml:"sep,omitempty"`

	// Symbols is the input as a list, which is used instead of
	// Input when not empty.
	Symbols []core.Symbol `json:"symbols,omitempty" yaml:"symbols,omitempty"`

	// Accept is the expected verdict.
	Accept bool `json:"accept,omitempty" yaml:"accept,omitempty"`

	// Error, if not empty, means that an error is expected, and
	// its message should contain this string.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (c *Case) input() []core.Symbol {
	if 0 < len(c.Symbols) {
		return c.Symbols
	}
	return notation.SplitInput(c.Input, c.Sep)
}

// Generator makes inputs with Goja code and checks each one's
// verdict.
//
// When Oracle is given, it decides each verdict.  Otherwise every
// generated input should get the verdict Accept.
type Generator struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Source is the generator's code (a string or a map with
	// "code" and "requires").
	Source interface{} `json:"source" yaml:"source"`

	// Oracle is optional code that returns the expected verdict
	// for the input at _.input.
	Oracle interface{} `json:"oracle,omitempty" yaml:"oracle,omitempty"`

	Accept bool `json:"accept,omitempty" yaml:"accept,omitempty"`
}

// Session is a definition and what it should do.
type Session struct {
	// Doc is an opaque documentation string.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Definition is the automaton to check.
	Definition *core.Definition `json:"definition,omitempty" yaml:"definition,omitempty"`

	// Form is an alternative to Definition.
	Form *notation.Form `json:"form,omitempty" yaml:"form,omitempty"`

	// Kind, if not empty, is the expected kind of the automaton.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// CompileError, if not empty, means that compilation should
	// fail with an error that contains this string.
	CompileError string `json:"compileError,omitempty" yaml:"compileError,omitempty"`

	Cases []Case `json:"cases,omitempty" yaml:"cases,omitempty"`

	Generators []Generator `json:"generators,omitempty" yaml:"generators,omitempty"`

	// Timeout bounds each Generator (including its oracle calls).
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Interpreter runs generators and oracles.  When nil, a new
	// goja.Interpreter is used.
	Interpreter *goja.Interpreter `json:"-" yaml:"-"`

	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// DefaultTimeout is used when a Session has no Timeout.
var DefaultTimeout = 10 * time.Second

// Failure is one unmet expectation.
type Failure struct {
	// Where is something like "case 3" or "generator 1".
	Where string        `json:"where" yaml:"where"`
	Input []core.Symbol `json:"input,omitempty" yaml:"input,omitempty"`
	Want  string        `json:"want" yaml:"want"`
	Got   string        `json:"got" yaml:"got"`
}

func (f *Failure) String() string {
	return fmt.Sprintf("%s %q: want %s, got %s", f.Where, joinInput(f.Input), f.Want, f.Got)
}

// Report is the result of running a Session.
type Report struct {
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"`
	Checked  int        `json:"checked" yaml:"checked"`
	Failures []*Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// OK reports whether there were no failures.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

func (r *Report) String() string {
	if r.OK() {
		return fmt.Sprintf("%s: %d checked, all good", r.Name, r.Checked)
	}
	lines := make([]string, 0, len(r.Failures)+1)
	lines = append(lines, fmt.Sprintf("%s: %d checked, %d failed", r.Name, r.Checked, len(r.Failures)))
	for _, f := range r.Failures {
		lines = append(lines, "  "+f.String())
	}
	return strings.Join(lines, "\n")
}

// ReadSession reads a Session (YAML or JSON) from the file.
//
// '%inline("NAME")' in the file is replaced with the contents of the
// file NAME (in the same directory) as a string, which is handy for
// Goja code.  Goja libraries named "file://NAME" are also found in
// that directory.
func ReadSession(filename string) (*Session, error) {
	bs, err := ReadFileWithInlines(filename, true)
	if err != nil {
		return nil, err
	}
	var s Session
	if err = yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	s.Interpreter = goja.NewInterpreter()
	s.Interpreter.LibraryProvider = goja.MakeFileLibraryProvider(filepath.Dir(filename))
	return &s, nil
}

func (s *Session) logf(format string, args ...interface{}) {
	if s.Verbose {
		util.Logf("session", format, args...)
	}
}

// Compile builds the Session's automaton.
func (s *Session) Compile() (*core.Automaton, error) {
	switch {
	case s.Definition != nil:
		return s.Definition.Compile()
	case s.Form != nil:
		return s.Form.Compile()
	default:
		return nil, errors.New("session has neither a definition nor a form")
	}
}

// Run checks every Case and Generator.
//
// Unmet expectations are reported as Failures.  An error is returned
// only if the Session can't be run at all: the automaton doesn't
// compile (and that wasn't expected), Goja code doesn't compile or
// fails, or the context is done.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	r := &Report{}
	if s.Definition != nil {
		r.Name = s.Definition.Name
	} else if s.Form != nil {
		r.Name = s.Form.Name
	}

	a, err := s.Compile()
	if s.CompileError != "" {
		r.Checked++
		got := "no error"
		if err != nil {
			got = err.Error()
		}
		if err == nil || !strings.Contains(got, s.CompileError) {
			r.Failures = append(r.Failures, &Failure{
				Where: "compile",
				Want:  fmt.Sprintf("error containing %q", s.CompileError),
				Got:   got,
			})
		}
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Kind != "" {
		var want core.Kind
		if err := want.UnmarshalText([]byte(s.Kind)); err != nil {
			return nil, err
		}
		r.Checked++
		if got := a.Kind(); got != want {
			r.Failures = append(r.Failures, &Failure{
				Where: "kind",
				Want:  want.String(),
				Got:   got.String(),
			})
		}
	}

	for i, c := range s.Cases {
		where := fmt.Sprintf("case %d", i)
		in := c.input()
		s.logf("%s %s", where, joinInput(in))
		r.Checked++
		ok, err := a.Simulate(in)
		if f := check(where, in, c.Accept, c.Error, ok, err); f != nil {
			r.Failures = append(r.Failures, f)
		}
	}

	interp := s.Interpreter
	if interp == nil {
		interp = goja.NewInterpreter()
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for i, g := range s.Generators {
		if err := s.generate(ctx, interp, a, i, &g, timeout, r); err != nil {
			return r, err
		}
	}

	return r, nil
}

func (s *Session) generate(ctx context.Context, interp *goja.Interpreter, a *core.Automaton, i int, g *Generator, timeout time.Duration, r *Report) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	where := fmt.Sprintf("generator %d", i)

	gen, err := interp.Compile(ctx, g.Source)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	ins, err := interp.Generate(ctx, a, gen)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	s.logf("%s made %d inputs", where, len(ins))

	judge := func(in []core.Symbol) (bool, error) {
		return g.Accept, nil
	}
	if g.Oracle != nil {
		p, err := interp.Compile(ctx, g.Oracle)
		if err != nil {
			return fmt.Errorf("%s oracle: %w", where, err)
		}
		judge = func(in []core.Symbol) (bool, error) {
			return interp.Oracle(ctx, a, in, p)
		}
	}

	for _, in := range ins {
		want, err := judge(in)
		if err != nil {
			return fmt.Errorf("%s oracle: %w", where, err)
		}
		r.Checked++
		ok, err := a.Simulate(in)
		if f := check(where, in, want, "", ok, err); f != nil {
			r.Failures = append(r.Failures, f)
		}
	}

	return nil
}

func check(where string, in []core.Symbol, accept bool, wantErr string, ok bool, err error) *Failure {
	f := &Failure{
		Where: where,
		Input: in,
	}
	if wantErr != "" {
		f.Want = fmt.Sprintf("error containing %q", wantErr)
		if err == nil {
			f.Got = verdict(ok)
			return f
		}
		if !strings.Contains(err.Error(), wantErr) {
			f.Got = err.Error()
			return f
		}
		return nil
	}
	f.Want = verdict(accept)
	if err != nil {
		f.Got = err.Error()
		return f
	}
	if ok != accept {
		f.Got = verdict(ok)
		return f
	}
	return nil
}

func verdict(ok bool) string {
	if ok {
		return "accept"
	}
	return "reject"
}

func joinInput(in []core.Symbol) string {
	strs := make([]string, len(in))
	for i, s := range in {
		strs[i] = string(s)
	}
	return strings.Join(strs, " ")
}
