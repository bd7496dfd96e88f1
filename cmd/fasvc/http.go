package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/notation"
	"github.com/Comcast/automata/tools"

	"github.com/jsccast/yaml"
)

// status maps an error to an HTTP status code.
func status(err error) int {
	var (
		configErr     *core.ConfigError
		transitionErr *core.TransitionError
		inputErr      *core.InputError
		lineErr       *notation.LineError
		formErr       *notation.FormError
		badReq        *BadRequest
	)
	switch {
	case errors.Is(err, NotFound):
		return http.StatusNotFound
	case errors.As(err, &configErr),
		errors.As(err, &transitionErr),
		errors.As(err, &inputErr),
		errors.As(err, &lineErr),
		errors.As(err, &formErr),
		errors.As(err, &badReq):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func complain(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	js, _ := json.Marshal(map[string]string{"error": err.Error()})
	fmt.Fprintf(w, "%s\n", js)
}

// respond writes x as JSON (without escaping '<' and friends, which
// are common in transitions).
func respond(w http.ResponseWriter, status int, x interface{}) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(x); err != nil {
		complain(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Service.HTTPServer warning on Write(): %v", err)
	}
}

func readBody(r *http.Request) ([]byte, error) {
	bs, err := ioutil.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if err := r.Body.Close(); err != nil {
		log.Printf("Service.HTTPServer warning on Body.Close(): %v", err)
	}
	return bs, nil
}

// decode reads a JSON (or YAML) body into x.  An empty body leaves x
// alone.
func decode(r *http.Request, x interface{}) error {
	bs, err := readBody(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(bs))) == 0 {
		return nil
	}
	if err = yaml.Unmarshal(bs, x); err != nil {
		return &BadRequest{fmt.Sprintf("can't parse body: %v", err)}
	}
	return nil
}

// Handler returns the HTTP API:
//
//	GET  /automata                      names
//	PUT  /automata/NAME                 install a definition (?format=form for notation.Form)
//	GET  /automata/NAME                 the definition (?format=form, analysis, html)
//	POST /automata/NAME/simulate        SimulateRequest -> Verdict
//	POST /automata/NAME/walk            SimulateRequest -> core.Walked
//	POST /automata/NAME/closure         ClosureRequest -> states
//	GET  /automata/NAME/runs?limit=N    recorded runs
func (s *Service) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/automata", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			complain(w, fmt.Errorf("method %s not allowed", r.Method), http.StatusMethodNotAllowed)
			return
		}
		respond(w, http.StatusOK, s.Names())
	})

	mux.HandleFunc("/automata/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/automata/"), "/")
		name := parts[0]
		if name == "" || 2 < len(parts) {
			complain(w, fmt.Errorf("bad path %s", r.URL.Path), http.StatusNotFound)
			return
		}
		op := ""
		if len(parts) == 2 {
			op = parts[1]
		}

		var (
			x      interface{}
			err    error
			method = r.Method
		)

		switch {
		case op == "" && method == http.MethodPut:
			x, err = s.httpPut(ctx, name, r)
		case op == "" && method == http.MethodGet:
			format := r.URL.Query().Get("format")
			if format == "html" {
				s.httpPage(w, name)
				return
			}
			x, err = s.httpGet(ctx, name, format)
		case op == "simulate" && method == http.MethodPost:
			var req SimulateRequest
			if err = decode(r, &req); err == nil {
				var v *Verdict
				if v, err = s.Simulate(ctx, name, &req); v != nil && err != nil {
					respond(w, status(err), v)
					return
				}
				x = v
			}
		case op == "walk" && method == http.MethodPost:
			var req SimulateRequest
			if err = decode(r, &req); err == nil {
				x, err = s.Walk(ctx, name, &req)
			}
		case op == "closure" && method == http.MethodPost:
			var req ClosureRequest
			if err = decode(r, &req); err == nil {
				x, err = s.Closure(ctx, name, &req)
			}
		case op == "runs" && method == http.MethodGet:
			limit := 0
			if l := r.URL.Query().Get("limit"); l != "" {
				if limit, err = strconv.Atoi(l); err != nil {
					err = &BadRequest{fmt.Sprintf("bad limit %q", l)}
				}
			}
			if err == nil {
				x, err = s.Runs(ctx, name, limit)
			}
		default:
			complain(w, fmt.Errorf("%s %s not supported", method, r.URL.Path), http.StatusMethodNotAllowed)
			return
		}

		if err != nil {
			complain(w, err, status(err))
			return
		}
		respond(w, http.StatusOK, x)
	})

	return mux
}

func (s *Service) httpPut(ctx context.Context, name string, r *http.Request) (interface{}, error) {
	var d *core.Definition
	if r.URL.Query().Get("format") == "form" {
		var f notation.Form
		if err := decode(r, &f); err != nil {
			return nil, err
		}
		def, err := f.Definition()
		if err != nil {
			return nil, err
		}
		d = def
	} else {
		d = &core.Definition{}
		if err := decode(r, d); err != nil {
			return nil, err
		}
	}
	a, err := s.Put(ctx, name, d)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"name": name,
		"kind": a.Kind(),
	}, nil
}

func (s *Service) httpGet(ctx context.Context, name, format string) (interface{}, error) {
	switch format {
	case "", "definition":
		a, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		return a.Definition(), nil
	case "form":
		a, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		return notation.FormFor(a), nil
	case "analysis":
		return s.Analyze(ctx, name)
	default:
		return nil, &BadRequest{fmt.Sprintf("unknown format %q", format)}
	}
}

func (s *Service) httpPage(w http.ResponseWriter, name string) {
	a, err := s.Get(name)
	if err != nil {
		complain(w, err, status(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err = tools.RenderPage(a, w, nil, true); err != nil {
		log.Printf("Service.HTTPServer RenderPage error %v", err)
	}
}

// HTTPServer serves the API (and whatever else has been registered
// with http.DefaultServeMux) until the context is done.
func (s *Service) HTTPServer(ctx context.Context, port string) error {
	log.Printf("Service.HTTPServer starting on %s", port)

	h := s.Handler(ctx)
	http.Handle("/automata", h)
	http.Handle("/automata/", h)

	server := &http.Server{
		Addr: port,
	}

	go func() {
		<-ctx.Done()
		if err := server.Close(); err != nil {
			log.Printf("Service.HTTPServer Close error %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
