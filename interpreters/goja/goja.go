// Package goja runs small ECMAScript programs that generate inputs
// for automata and that judge inputs as oracles.
//
// A source is either a string of code or a map with "code" and
// optional "requires" (a list of library names).  The code is
// wrapped in a function, so it should end with a "return".
//
// The runtime has an object at _ with these properties:
//
//	alphabet: the automaton's alphabet (array of strings).
//	input: the current input (array of strings), for oracles.
//	enumerate(n): every input up to length n, shortest first.
//	log(x): log x as JSON.
//
// For testing only:
//
//	sleep(ms): sleep for the given number of milliseconds.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/automata/core"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// MaxEnumerated bounds the number of inputs enumerate() will
	// produce.
	MaxEnumerated = 100000
)

// Interpreter compiles and runs generator and oracle code using Goja,
// which is a Go implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// LibraryProvider resolves a library name into source.  When
	// nil, DefaultLibraryProvider is used.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ProvideLibrary resolves the library name into a library.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a provider that supports (barely)
// names that are URLs with protocols of "file", "http", and "https".
// There currently is no additional control when using HTTP/HTTPS.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			bs, err := ioutil.ReadFile(filepath.Join(dir, parts[1]))
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequest("GET", name, nil)
			if err != nil {
				return "", err
			}
			req = req.WithContext(ctx)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return "", fmt.Errorf("library fetch status %s %d",
					resp.Status, resp.StatusCode)
			}
			bs, err := ioutil.ReadAll(resp.Body)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

// MakeMapLibraryProvider makes a provider that looks up libraries in
// the given map.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	x := vv["code"]
	s, is := x.(string)
	if !is {
		err = errors.New("bad Goja code")
		return
	}
	code = s

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = errors.New("bad library")
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}

	return
}

// AsSource extracts code and library names from a source, which can
// be a string or a map.
//
// Maps from YAML parsers that produce map[interface{}]interface{}
// are accepted, too.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad Goja source (%T)", src)
		return
	}
}

// Compile prepends any required libraries and calls goja.Compile.
//
// This method can block if the interpreter's library provider blocks
// in order to obtain external libraries.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (*goja.Program, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := i.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return p, nil
}

// Env is what the runtime sees at _ in addition to the standard
// utilities.
type Env struct {
	Alphabet []core.Symbol
	Input    []core.Symbol
}

func strs(ss []core.Symbol) []interface{} {
	acc := make([]interface{}, len(ss))
	for i, s := range ss {
		acc[i] = string(s)
	}
	return acc
}

// Enumerate returns every input over the alphabet with length at most
// maxLen, shortest first and then in alphabet order.
//
// Returns an error if there would be more than MaxEnumerated.
func Enumerate(alphabet []core.Symbol, maxLen int) ([][]core.Symbol, error) {
	if maxLen < 0 {
		return nil, fmt.Errorf("negative length %d", maxLen)
	}
	total, layer := 1, 1
	for n := 1; n <= maxLen; n++ {
		layer *= len(alphabet)
		total += layer
		if MaxEnumerated < total {
			return nil, fmt.Errorf("too many inputs (more than %d)", MaxEnumerated)
		}
		if layer == 0 {
			break
		}
	}

	acc := make([][]core.Symbol, 0, total)
	acc = append(acc, []core.Symbol{})
	prev := acc
	for n := 1; n <= maxLen && 0 < len(alphabet); n++ {
		next := make([][]core.Symbol, 0, len(prev)*len(alphabet))
		for _, p := range prev {
			for _, sym := range alphabet {
				in := make([]core.Symbol, len(p)+1)
				copy(in, p)
				in[len(p)] = sym
				next = append(next, in)
			}
		}
		acc = append(acc, next...)
		prev = next
	}
	return acc, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec runs the compiled program and returns the exported result.
//
// Execution is interrupted when the context is done, in which case
// the error is Interrupted.
func (i *Interpreter) Exec(ctx context.Context, env *Env, p *goja.Program) (interface{}, error) {
	if env == nil {
		env = &Env{}
	}

	o := goja.New()

	m := map[string]interface{}{
		"alphabet": strs(env.Alphabet),
		"input":    strs(env.Input),
	}

	m["enumerate"] = func(x goja.Value) interface{} {
		n, is := x.Export().(int64)
		if !is {
			protest(o, fmt.Sprintf("enumerate wants an integer, not %v", x))
		}
		ins, err := Enumerate(env.Alphabet, int(n))
		if err != nil {
			protest(o, err.Error())
		}
		acc := make([]interface{}, len(ins))
		for j, in := range ins {
			acc[j] = strs(in)
		}
		return acc
	}

	m["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("goja.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}
		return x
	}

	if i.Testing {
		m["sleep"] = func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	}

	o.Set("_", m)

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If Exec calls cancel() after RunProgram returns,
		// then we'll never see this InterruptedMessage, which
		// is actually the behavior we want.  In this case, we
		// weren't actually interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}

// Generate runs a generator, which should return an array of inputs.
// Each input is either a string, which is split into one symbol per
// character, or an array of strings.
func (i *Interpreter) Generate(ctx context.Context, a *core.Automaton, p *goja.Program) ([][]core.Symbol, error) {
	x, err := i.Exec(ctx, &Env{Alphabet: a.Alphabet()}, p)
	if err != nil {
		return nil, err
	}
	xs, is := x.([]interface{})
	if !is {
		return nil, fmt.Errorf("generator returned a %T, not an array", x)
	}
	acc := make([][]core.Symbol, 0, len(xs))
	for _, x := range xs {
		in, err := asInput(x)
		if err != nil {
			return nil, err
		}
		acc = append(acc, in)
	}
	return acc, nil
}

// Oracle runs an oracle, which should return true when the input
// should be accepted.
func (i *Interpreter) Oracle(ctx context.Context, a *core.Automaton, input []core.Symbol, p *goja.Program) (bool, error) {
	x, err := i.Exec(ctx, &Env{Alphabet: a.Alphabet(), Input: input}, p)
	if err != nil {
		return false, err
	}
	b, is := x.(bool)
	if !is {
		return false, fmt.Errorf("oracle returned %#v (%T), not a boolean", x, x)
	}
	return b, nil
}

func asInput(x interface{}) ([]core.Symbol, error) {
	switch vv := x.(type) {
	case string:
		acc := make([]core.Symbol, 0, len(vv))
		for _, r := range vv {
			acc = append(acc, core.Symbol(string(r)))
		}
		return acc, nil
	case []interface{}:
		acc := make([]core.Symbol, 0, len(vv))
		for _, y := range vv {
			s, is := y.(string)
			if !is {
				return nil, fmt.Errorf("input symbol %#v (%T) isn't a string", y, y)
			}
			acc = append(acc, core.Symbol(s))
		}
		return acc, nil
	case []string:
		return core.Symbols(vv...), nil
	default:
		return nil, fmt.Errorf("input %#v (%T) isn't a string or an array", x, x)
	}
}
