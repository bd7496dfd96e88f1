package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Comcast/automata/core"
)

func TestWebhook(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type hit struct {
		verdict Verdict
		cookie  string
	}
	hits := make(chan *hit, 4)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := &hit{}
		if c, err := r.Cookie("likes"); err == nil {
			h.cookie = c.Value
		}
		if err := json.NewDecoder(r.Body).Decode(&h.verdict); err != nil {
			w.WriteHeader(http.StatusBadRequest)
		}
		http.SetCookie(w, &http.Cookie{
			Name:  "likes",
			Value: "tacos",
		})
		hits <- h
	}))
	defer ts.Close()

	hook, err := NewWebhook(ts.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	s := newTestService(t)
	s.Hooks = append(s.Hooks, hook.Hook)

	for _, text := range []string{"0", "00"} {
		if _, err = s.Simulate(ctx, "odd-zeros", &SimulateRequest{Text: text}); err != nil {
			t.Fatal(err)
		}
	}

	first, second := <-hits, <-hits
	if first.cookie != "" || second.cookie != "tacos" {
		t.Fatal(first.cookie, second.cookie)
	}
	if !first.verdict.Accepted || second.verdict.Accepted {
		t.Fatal(first.verdict, second.verdict)
	}
	if first.verdict.Kind != core.DFA {
		t.Fatal(first.verdict.Kind)
	}

	if len(hook.jar.Kookies) != 2 {
		t.Fatal(len(hook.jar.Kookies))
	}
}

func TestWebhookUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	hook, err := NewWebhook(url, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = hook.Post(context.Background(), &Verdict{Name: "x"}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestWebhookStatus(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	hook, err := NewWebhook(ts.URL, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	code, err := hook.Post(context.Background(), &Verdict{Name: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if code != http.StatusNotFound {
		t.Fatal(code)
	}
}
