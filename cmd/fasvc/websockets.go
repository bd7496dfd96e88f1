package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

var connCount uint64

// WebSockets adds Websockets support to the existing HTTP server.
//
// Warning: This code turns on a firehose for the entire service.
// Every client sees every verdict and every Put.  A client can also
// send SimulateRequests (with names), and it'll get the Verdicts
// like everybody else.
func (s *Service) WebSockets(ctx context.Context, port string) error {
	api := s.startFirehose(ctx)

	var uiTemplate = template.Must(template.New("").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>verdicts</title>
<style>body { margin: 2em } pre { margin: 0 }</style>
</head>
<body>
<input id="request" size="80" type="text" value='{"name":"odd-zeros","text":"010"}'>
<button id="send">Simulate</button>
<hr>
<div id="verdicts"></div>
<script>
var verdicts = document.getElementById("verdicts");
var show = function(s) {
    var p = document.createElement("pre");
    p.innerText = s;
    verdicts.insertBefore(p, verdicts.firstChild);
};
var ws = new WebSocket("ws://{{.}}/ws/api");
ws.onopen = function() { show("connected"); };
ws.onclose = function() { show("disconnected"); };
ws.onmessage = function(evt) { show(evt.data); };
document.getElementById("send").onclick = function() {
    ws.send(document.getElementById("request").value);
};
</script>
</body>
</html>
`))

	ui := func(w http.ResponseWriter, r *http.Request) {
		uiTemplate.Execute(w, "localhost"+port)
	}

	http.HandleFunc("/ws/api", api)
	http.HandleFunc("/ws/ui", ui)

	log.Printf("Service.HTTPServer (%s) has Websockets", port)

	return nil
}

// startFirehose starts fanning out the Service's firehose and
// returns the websocket handler.
func (s *Service) startFirehose(ctx context.Context) http.HandlerFunc {
	firehose := make(chan interface{}, 1024)
	s.Lock()
	s.firehose = firehose
	s.Unlock()

	var upgrader = websocket.Upgrader{} // use default options

	conns := sync.Map{}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case x := <-firehose:
				conns.Range(func(k, v interface{}) bool {
					c := v.(chan interface{})
					select {
					case c <- x:
					default:
						log.Printf("%v firehose blocked", k)
					}
					return true
				})
			}
		}
	}()

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		ctl := make(chan bool)
		defer close(ctl)

		out := make(chan interface{}, 32)

		id := atomic.AddUint64(&connCount, 1)
		conns.Store(id, out)
		defer conns.Delete(id)

		// Only this goroutine writes to the connection.
		go func() {
			mt := websocket.TextMessage

		LOOP:
			for {
				select {
				case <-ctl:
					break LOOP
				case <-ctx.Done():
					break LOOP
				case x := <-out:
					js, err := json.Marshal(&x)
					if err != nil {
						log.Printf("firehose Marshal error %v on %#v", err, x)
						continue
					}
					if err = c.WriteMessage(mt, js); err != nil {
						log.Println("firehose write:", err)
					}
				}
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read error", err)
				break
			}

			var req SimulateRequest
			if err := json.Unmarshal(message, &req); err != nil {
				reply(out, map[string]interface{}{
					"error": "can't parse: " + err.Error(),
				})
				continue
			}
			// Verdicts (even with errors) come back via the firehose.
			if _, err = s.Simulate(ctx, req.Name, &req); err != nil {
				log.Printf("websocket Simulate error %v", err)
				if status(err) == http.StatusNotFound {
					reply(out, map[string]interface{}{
						"error": err.Error(),
					})
				}
			}
		}
	}
}

func reply(out chan interface{}, x interface{}) {
	select {
	case out <- x:
	default:
		log.Printf("websocket reply dropped")
	}
}
