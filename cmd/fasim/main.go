// Package main is a command-line tool for finite automata.
//
// Each subcommand reads an automaton definition (YAML or JSON) from
// a file (-f) or stdin.  For example:
//
//	fasim simulate -f specs/odd-zeros.yaml 0 010 0110
//	fasim walk -f specs/ends-with-ab.yaml -i aab
//	fasim dot -f specs/eps-a.yaml -o eps-a.dot
//	fasim expect -f specs/odd-zeros.test.yaml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sort"

	"github.com/Comcast/automata/core"

	"github.com/jsccast/yaml"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run does the work of main and returns the exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		Usage(stdout)
		return 1
	}

	fail := func(err error) int {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	switch args[0] {
	case "help", "-h", "--help":
		Usage(stdout)
		return 0

	case "yamltojson":
		pretty := false

		switch len(args) {
		case 1:
		case 2:
			if args[1] != "-p" {
				return fail(fmt.Errorf("unsupported args: %v", args))
			}
			pretty = true
		default:
			return fail(fmt.Errorf("unsupported args: %v", args))
		}

		bs, err := ioutil.ReadAll(stdin)
		if err != nil {
			return fail(err)
		}

		var d *core.Definition
		if err = yaml.Unmarshal(bs, &d); err != nil {
			return fail(err)
		}

		if pretty {
			bs, err = json.MarshalIndent(&d, "", "  ")
		} else {
			bs, err = json.Marshal(&d)
		}
		if err != nil {
			return fail(err)
		}

		if _, err = stdout.Write(append(bs, '\n')); err != nil {
			return fail(err)
		}

	case "jsontoyaml":
		bs, err := ioutil.ReadAll(stdin)
		if err != nil {
			return fail(err)
		}

		var d *core.Definition
		if err = json.Unmarshal(bs, &d); err != nil {
			return fail(err)
		}

		if bs, err = yaml.Marshal(&d); err != nil {
			return fail(err)
		}

		if _, err = stdout.Write(bs); err != nil {
			return fail(err)
		}

	default:
		newMod, have := Mods[args[0]]
		if !have {
			fmt.Fprintf(stderr, "Unknown subcommand \"%s\"\n", args[0])
			Usage(stderr)
			return 1
		}

		mod := newMod()
		fs := mod.Flags()
		fs.SetOutput(stderr)
		if err := fs.Parse(args[1:]); err != nil {
			return fail(err)
		}

		env := &Env{
			In:   stdin,
			Out:  stdout,
			Args: fs.Args(),
		}
		if err := mod.F(env); err != nil {
			return fail(err)
		}
	}

	return 0
}

func Usage(w io.Writer) {
	fmt.Fprintf(w, "Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]()
		fs := mod.Flags()
		fs.SetOutput(w)
		fmt.Fprintf(w, "%s: %s\n", name, mod.Doc())
		fs.PrintDefaults()
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "yamltojson: Convert a YAML definition on stdin to JSON.\n")
	fmt.Fprintf(w, "  -p    pretty-print\n\n")
	fmt.Fprintf(w, "jsontoyaml: Convert a JSON definition on stdin to YAML.\n\n")
}
