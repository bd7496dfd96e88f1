package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type token struct {
	mqtt.Token
}

func (t *token) Wait() bool   { return true }
func (t *token) Error() error { return nil }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// client only publishes (to a channel).
type client struct {
	mqtt.Client
	pubs chan *published
}

func (c *client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.pubs <- &published{
		topic:   topic,
		qos:     qos,
		payload: payload.([]byte),
	}
	return &token{}
}

type message struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m *message) Topic() string   { return m.topic }
func (m *message) Payload() []byte { return m.payload }

func TestCouplings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := newTestService(t)
	cl := &client{
		pubs: make(chan *published, 4),
	}
	c := &Couplings{
		Client:    cl,
		OutTopic:  "verdicts:1",
		InTimeout: time.Second,
		s:         s,
		incoming:  make(chan *SimulateRequest, 4),
	}

	go c.Loop(ctx)

	c.inHandler(ctx, cl, &message{
		topic:   "simulate",
		payload: []byte(`{"name":"ends-with-ab","text":"aab"}`),
	})
	// Ignored.
	c.inHandler(ctx, cl, &message{
		topic:   "simulate",
		payload: []byte(`tacos`),
	})
	c.inHandler(ctx, cl, &message{
		topic:   "simulate",
		payload: []byte(`{"name":"tacos","text":"aab"}`),
	})
	c.inHandler(ctx, cl, &message{
		topic:   "simulate",
		payload: []byte(`{"name":"ends-with-ab","input":["b","c"]}`),
	})

	var vs []*Verdict
	for len(vs) < 2 {
		select {
		case <-ctx.Done():
			t.Fatal(ctx.Err())
		case p := <-cl.pubs:
			if p.topic != "verdicts" || p.qos != 1 {
				t.Fatal(p.topic, p.qos)
			}
			var v Verdict
			if err := json.Unmarshal(p.payload, &v); err != nil {
				t.Fatal(err)
			}
			vs = append(vs, &v)
		}
	}

	if !vs[0].Accepted || vs[0].Error != "" {
		t.Fatalf("%#v", vs[0])
	}
	if vs[1].Accepted || vs[1].Error == "" {
		t.Fatalf("%#v", vs[1])
	}
}

func TestParseTopic(t *testing.T) {
	tests := []struct {
		in    string
		topic string
		qos   byte
	}{
		{"a/b", "a/b", 0},
		{"a/b:2", "a/b", 2},
		{" a/b:1 ", "a/b", 1},
		{"a/b:9", "a/b", 0},
		{"", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			topic, qos := parseTopic(tc.in)
			if topic != tc.topic || qos != tc.qos {
				t.Fatal(topic, qos)
			}
		})
	}
}
