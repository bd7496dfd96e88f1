package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/notation"
	"github.com/Comcast/automata/tools"
	"github.com/Comcast/automata/util"

	"github.com/jsccast/yaml"
)

// Env is what a Mod gets to work with.
type Env struct {
	In   io.Reader
	Out  io.Writer
	Args []string
}

// Mod is a subcommand.
type Mod interface {
	F(env *Env) error
	Doc() string
	Flags() *flag.FlagSet
}

var Mods = map[string]func() Mod{
	"kind":     func() Mod { return &Kinder{} },
	"simulate": func() Mod { return &Simulator{} },
	"walk":     func() Mod { return &Walker{} },
	"closure":  func() Mod { return &Closer{} },
	"analyze":  func() Mod { return &Analyzer{} },
	"dot":      func() Mod { return &Grapher{} },
	"mermaid":  func() Mod { return &Mermaider{} },
	"html":     func() Mod { return &Pager{} },
	"form":     func() Mod { return &Former{} },
	"expect":   func() Mod { return &Expecter{} },
}

var (
	Failed = errors.New("expectations not met")
)

// Source is where to find the definition.
type Source struct {
	Filename string
	Partial  bool
	Verbose  bool
}

func (s *Source) flags(fs *flag.FlagSet) {
	fs.StringVar(&s.Filename, "f", "", "definition filename (stdin if empty)")
	fs.BoolVar(&s.Partial, "partial", false, "treat incomplete deterministic automata as NFAs")
	fs.BoolVar(&s.Verbose, "v", false, "verbose")
}

func (s *Source) read(env *Env) ([]byte, error) {
	util.Logging = s.Verbose
	if s.Filename == "" {
		return ioutil.ReadAll(env.In)
	}
	return ioutil.ReadFile(s.Filename)
}

// Definition reads (but doesn't compile) the definition.
func (s *Source) Definition(env *Env) (*core.Definition, error) {
	bs, err := s.read(env)
	if err != nil {
		return nil, err
	}
	var d core.Definition
	if err = yaml.Unmarshal(bs, &d); err != nil {
		return nil, err
	}
	if s.Partial {
		d.Partial = true
	}
	return &d, nil
}

// Automaton reads and compiles the definition.
func (s *Source) Automaton(env *Env) (*core.Automaton, error) {
	d, err := s.Definition(env)
	if err != nil {
		return nil, err
	}
	return d.Compile()
}

// Inputs are the inputs to process: the remaining arguments or -i.
type Inputs struct {
	Input string
	Sep   string
}

func (in *Inputs) flags(fs *flag.FlagSet) {
	fs.StringVar(&in.Input, "i", "", "input (used when there are no other arguments)")
	fs.StringVar(&in.Sep, "s", "", "symbol separator (empty means each character is a symbol)")
}

func (in *Inputs) texts(env *Env) []string {
	if 0 < len(env.Args) {
		return env.Args
	}
	return []string{in.Input}
}

func (in *Inputs) symbols(text string) []core.Symbol {
	return notation.SplitInput(text, in.Sep)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// output opens the named file or returns env.Out.
func output(env *Env, filename string) (io.WriteCloser, error) {
	if filename == "" {
		return nopCloser{env.Out}, nil
	}
	return os.Create(filename)
}

type Kinder struct {
	Source
}

func (m *Kinder) Doc() string {
	return "Print the kind (DFA, NFA, or ε-NFA) of the automaton."
}

func (m *Kinder) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("kind", flag.ContinueOnError)
	m.Source.flags(fs)
	return fs
}

func (m *Kinder) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(env.Out, a.Kind())
	return err
}

type Simulator struct {
	Source
	Inputs
}

func (m *Simulator) Doc() string {
	return "Print whether the automaton accepts each input."
}

func (m *Simulator) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	m.Source.flags(fs)
	m.Inputs.flags(fs)
	return fs
}

func (m *Simulator) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	for _, text := range m.texts(env) {
		ok, err := a.Simulate(m.symbols(text))
		if err != nil {
			return err
		}
		verdict := "rejected"
		if ok {
			verdict = "accepted"
		}
		fmt.Fprintf(env.Out, "%q %s\n", text, verdict)
	}
	return nil
}

type Walker struct {
	Source
	Inputs
}

func (m *Walker) Doc() string {
	return "Print the sets of current states, symbol by symbol, as JSON."
}

func (m *Walker) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("walk", flag.ContinueOnError)
	m.Source.flags(fs)
	m.Inputs.flags(fs)
	return fs
}

func (m *Walker) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	for _, text := range m.texts(env) {
		w, err := a.Walk(m.symbols(text))
		if err != nil {
			return err
		}
		js, err := json.MarshalIndent(w, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "%s\n", js)
	}
	return nil
}

type Closer struct {
	Source
	States string
}

func (m *Closer) Doc() string {
	return "Print the ε-closure of some states."
}

func (m *Closer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("closure", flag.ContinueOnError)
	m.Source.flags(fs)
	fs.StringVar(&m.States, "states", "", "comma-separated states (the start state if empty)")
	return fs
}

func (m *Closer) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	ss := core.NewStateSet(a.Start())
	if m.States != "" {
		ss = core.NewStateSet(core.States(notation.ParseList(m.States)...)...)
		for s := range ss {
			if !a.HasState(s) {
				return fmt.Errorf("unknown state %q", s)
			}
		}
	}
	_, err = fmt.Fprintln(env.Out, a.EpsilonClosure(ss))
	return err
}

type Analyzer struct {
	Source
}

func (m *Analyzer) Doc() string {
	return "Print an analysis of the automaton as YAML."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	m.Source.flags(fs)
	return fs
}

func (m *Analyzer) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	an, err := tools.Analyze(a)
	if err != nil {
		return err
	}
	bs, err := an.YAML()
	if err != nil {
		return err
	}
	_, err = env.Out.Write(bs)
	return err
}

// highlighting is shared by the graph makers.
type highlighting struct {
	Highlight string
	Walk      string
	Sep       string
}

func (h *highlighting) flags(fs *flag.FlagSet) {
	fs.StringVar(&h.Highlight, "h", "", "comma-separated states to highlight")
	fs.StringVar(&h.Walk, "w", "", "highlight the current states after walking this input")
	fs.StringVar(&h.Sep, "s", "", "symbol separator for -w")
}

func (h *highlighting) states(a *core.Automaton) (core.StateSet, error) {
	ss := core.NewStateSet(core.States(notation.ParseList(h.Highlight)...)...)
	if h.Walk != "" {
		w, err := a.Walk(notation.SplitInput(h.Walk, h.Sep))
		if err != nil {
			return nil, err
		}
		ss.Union(w.Final())
	}
	return ss, nil
}

type Grapher struct {
	Source
	highlighting
	OutputFilename string
	PNGBasename    string
}

func (m *Grapher) Doc() string {
	return "Write a Graphviz dot file (or a PNG)."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("dot", flag.ContinueOnError)
	m.Source.flags(fs)
	m.highlighting.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (stdout if empty)")
	fs.StringVar(&m.PNGBasename, "png", "", "write basename.dot and basename.png instead (requires dot)")
	return fs
}

func (m *Grapher) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	ss, err := m.states(a)
	if err != nil {
		return err
	}
	opts := &tools.DotOpts{
		Highlight: ss,
		ShowDoc:   true,
	}
	if m.PNGBasename != "" {
		filename, err := tools.PNG(a, m.PNGBasename, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(env.Out, filename)
		return err
	}
	out, err := output(env, m.OutputFilename)
	if err != nil {
		return err
	}
	return tools.Dot(a, out, opts) // Will Close out.
}

type Mermaider struct {
	Source
	highlighting
	OutputFilename string
}

func (m *Mermaider) Doc() string {
	return "Write a Mermaid graph."
}

func (m *Mermaider) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("mermaid", flag.ContinueOnError)
	m.Source.flags(fs)
	m.highlighting.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (stdout if empty)")
	return fs
}

func (m *Mermaider) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	ss, err := m.states(a)
	if err != nil {
		return err
	}
	out, err := output(env, m.OutputFilename)
	if err != nil {
		return err
	}
	opts := &tools.MermaidOpts{
		Highlight:     ss,
		HighlightFill: "#f98b8b",
		AcceptFill:    "#bcf2db",
	}
	return tools.Mermaid(a, out, opts) // Will Close out.
}

type Pager struct {
	Source
	OutputFilename string
	CSSFiles       string
	Graph          bool
}

func (m *Pager) Doc() string {
	return "Write an HTML page that documents the automaton."
}

func (m *Pager) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	m.Source.flags(fs)
	fs.StringVar(&m.OutputFilename, "o", "", "output filename (stdout if empty)")
	fs.StringVar(&m.CSSFiles, "css", "", "comma-separated CSS files")
	fs.BoolVar(&m.Graph, "g", true, "include a graph")
	return fs
}

func (m *Pager) F(env *Env) error {
	a, err := m.Automaton(env)
	if err != nil {
		return err
	}
	out, err := output(env, m.OutputFilename)
	if err != nil {
		return err
	}
	var css []string
	if m.CSSFiles != "" {
		css = notation.ParseList(m.CSSFiles)
	}
	if err = tools.RenderPage(a, out, css, m.Graph); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

type Former struct {
	Source
	Reverse bool
}

func (m *Former) Doc() string {
	return "Convert a form (with transitions in 'state,symbol -> next' notation) to a definition, or back with -r."
}

func (m *Former) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("form", flag.ContinueOnError)
	m.Source.flags(fs)
	fs.BoolVar(&m.Reverse, "r", false, "convert a definition to a form")
	return fs
}

func (m *Former) F(env *Env) error {
	var x interface{}
	if m.Reverse {
		a, err := m.Automaton(env)
		if err != nil {
			return err
		}
		x = notation.FormFor(a)
	} else {
		bs, err := m.read(env)
		if err != nil {
			return err
		}
		var f notation.Form
		if err = yaml.Unmarshal(bs, &f); err != nil {
			return err
		}
		d, err := f.Definition()
		if err != nil {
			return err
		}
		d.Partial = m.Partial
		// Make sure it compiles.
		if _, err = d.Compile(); err != nil {
			return err
		}
		x = d
	}
	bs, err := yaml.Marshal(x)
	if err != nil {
		return err
	}
	_, err = env.Out.Write(bs)
	return err
}

type Expecter struct {
	Filename string
	Timeout  time.Duration
	Verbose  bool
}

func (m *Expecter) Doc() string {
	return "Run an expectation session (cases, generators, and oracles)."
}

func (m *Expecter) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("expect", flag.ContinueOnError)
	fs.StringVar(&m.Filename, "f", "", "session filename")
	fs.DurationVar(&m.Timeout, "t", time.Minute, "main timeout")
	fs.BoolVar(&m.Verbose, "v", false, "verbose")
	return fs
}

func (m *Expecter) F(env *Env) error {
	if m.Filename == "" {
		return errors.New("need a session filename (-f)")
	}
	util.Logging = m.Verbose

	s, err := tools.ReadSession(m.Filename)
	if err != nil {
		return err
	}
	s.Verbose = s.Verbose || m.Verbose

	ctx, cancel := context.WithTimeout(context.Background(), m.Timeout)
	defer cancel()

	r, err := s.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Out, r)
	if !r.OK() {
		return Failed
	}
	return nil
}
