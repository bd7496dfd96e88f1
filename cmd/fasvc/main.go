// Package main is an HTTP service for finite automata.
//
// Definitions are PUT by name, and then inputs can be simulated,
// walked, and so on.  Every verdict is recorded (in memory or in a
// bolt database) and optionally sent to websockets clients, an MQTT
// topic, and a webhook.
//
//	fasvc -s specs -p runs.db -w
//	curl -d '{"text":"010"}' localhost:8080/automata/odd-zeros/simulate
package main

import (
	"context"
	"flag"
	"io/ioutil"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/automata/core"
	"github.com/Comcast/automata/storage"
	"github.com/Comcast/automata/storage/bolt"

	"github.com/jsccast/yaml"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		httpPort   = flag.String("h", ":8080", "HTTP service port")
		httpDir    = flag.String("d", "", "optional directory that the HTTP service will serve")
		storeFile  = flag.String("p", "", "optional bolt filename for run history (in memory if empty)")
		noHistory  = flag.Bool("nohistory", false, "don't keep run history")
		debug      = flag.Bool("debug", false, "log storage operations")
		websockets = flag.Bool("w", false, "start Web sockets service")
		specDir    = flag.String("s", "", "optional directory of definitions (*.yaml) to load")
		ttl        = flag.Duration("e", 60*time.Second, "analysis cache TTL (0 to disable)")
		pruneCron  = flag.String("prune", "0 * * * *", "cron schedule for pruning run history (empty to disable)")
		keep       = flag.Duration("keep", 7*24*time.Hour, "how long to keep run history")
		webhook    = flag.String("webhook", "", "optional URL to POST verdicts to")
		mqttConf   = &MQTTConf{}
	)

	mqttConf.flags(flag.CommandLine)

	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var store storage.Storage = storage.NewMemStorage()
	switch {
	case *noHistory:
		store = &storage.NoopStorage{}
	case *storeFile != "":
		b, err := bolt.NewStorage(*storeFile)
		if err != nil {
			panic(err)
		}
		b.Debug = *debug
		store = b
	}
	if err := store.Open(ctx); err != nil {
		panic(err)
	}
	defer store.Close(context.Background())

	s := NewService(store)

	if 0 < *ttl {
		s.Analyses = NewAnalysisCache(*ttl, 1024)
	}

	if *specDir != "" {
		if err := s.Load(ctx, *specDir); err != nil {
			panic(err)
		}
	}

	if *webhook != "" {
		h, err := NewWebhook(*webhook, 10*time.Second)
		if err != nil {
			panic(err)
		}
		s.Hooks = append(s.Hooks, h.Hook)
	}

	if *pruneCron != "" {
		p, err := NewPruner(*pruneCron, *keep, store)
		if err != nil {
			panic(err)
		}
		go p.Loop(ctx)
	}

	if mqttConf.Broker != "" {
		c := NewCouplings(ctx, s, mqttConf)
		if err := c.Start(ctx); err != nil {
			panic(err)
		}
		defer c.Stop(context.Background())
		go c.Loop(ctx)
	}

	if *websockets {
		if err := s.WebSockets(ctx, *httpPort); err != nil {
			panic(err)
		}
	}

	if *httpDir != "" {
		fs := http.FileServer(http.Dir(*httpDir))
		http.Handle("/f/", http.StripPrefix("/f", fs))
	}

	if err := s.HTTPServer(ctx, *httpPort); err != nil {
		log.Printf("HTTPServer error %v", err)
	}

	log.Printf("main terminating")
}

// Load installs every definition (*.yaml but not *.test.yaml) in the
// directory.  The name is the filename without its extension.
func (s *Service) Load(ctx context.Context, dir string) error {
	filenames, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	for _, filename := range filenames {
		if strings.HasSuffix(filename, ".test.yaml") {
			continue
		}
		bs, err := ioutil.ReadFile(filename)
		if err != nil {
			return err
		}
		var d core.Definition
		if err = yaml.Unmarshal(bs, &d); err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(filename), ".yaml")
		if _, err = s.Put(ctx, name, &d); err != nil {
			return err
		}
	}
	return nil
}
