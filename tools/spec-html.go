package tools

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"io/ioutil"
	"strings"

	"github.com/Comcast/automata/core"
	"github.com/jsccast/yaml"

	md "github.com/russross/blackfriday/v2"
)

// RenderHTML writes an HTML fragment for the automaton: its Doc (as
// Markdown), a summary, and a transition table with one row per
// state and one column per symbol.
func RenderHTML(a *core.Automaton, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}
	esc := html.EscapeString

	if a.Doc() != "" {
		f(`<div class="automatonDoc doc">%s</div>`, md.Run([]byte(a.Doc())))
	}

	f(`<div class="summary">kind: <span class="kind">%s</span>, start: <a href="#%s"><code>%s</code></a></div>`,
		a.Kind(), esc(string(a.Start())), esc(string(a.Start())))

	symbols := a.Alphabet()
	if a.HasEpsilon() {
		symbols = append(symbols, core.Epsilon)
	}

	{ // Transitions
		f(`<div class="transitions"><table>`)
		f(`<tr><th></th>`)
		for _, sym := range symbols {
			f(`<th class="symbol">%s</th>`, esc(string(sym)))
		}
		f(`</tr>`)
		for _, s := range a.States() {
			class := "state"
			if a.IsAccept(s) {
				class += " accept"
			}
			if s == a.Start() {
				class += " start"
			}
			f(`<tr class="%s"><td><span id="%s" class="stateName">%s</span></td>`,
				class, esc(string(s)), esc(string(s)))
			for _, sym := range symbols {
				tos := a.Next(s, sym).Sorted()
				links := make([]string, len(tos))
				for i, to := range tos {
					links[i] = fmt.Sprintf(`<a href="#%s"><code>%s</code></a>`,
						esc(string(to)), esc(string(to)))
				}
				f(`<td>%s</td>`, strings.Join(links, " "))
			}
			f(`</tr>`)
		}
		f(`</table></div>`)
	}

	return nil
}

// RenderPage writes a complete HTML page for the automaton.
//
// When includeGraph is true, the page also has a Mermaid diagram.
func RenderPage(a *core.Automaton, out io.Writer, cssFiles []string, includeGraph bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/automaton.css"}
	}

	js, err := json.Marshal(a.Definition())
	if err != nil {
		return err
	}

	title := html.EscapeString(a.Name())

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
  <script>
  var thisAutomaton = %s;
  </script>
`, title, js)

	if includeGraph {
		fmt.Fprintf(out, `
  <script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>
  <script>mermaid.initialize({startOnLoad:true});</script>
`)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, title)

	if includeGraph {
		fmt.Fprintf(out, `<div class="mermaid">`+"\n")
		if err = Mermaid(a, nopCloser{out}, nil); err != nil {
			return err
		}
		fmt.Fprintf(out, "</div>\n")
	}

	if err = RenderHTML(a, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderPage reads a definition (YAML or JSON) from the file,
// compiles it, and calls RenderPage.
func ReadAndRenderPage(filename string, cssFiles []string, out io.Writer, includeGraph bool) error {
	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}
	var def core.Definition
	if err = yaml.Unmarshal(src, &def); err != nil {
		return err
	}

	a, err := def.Compile()
	if err != nil {
		return err
	}

	return RenderPage(a, out, cssFiles, includeGraph)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
