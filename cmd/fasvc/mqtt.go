/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTConf follows mosquitto_sub's command line args where it can.
type MQTTConf struct {
	Broker    string
	Port      int
	ClientId  string
	KeepAlive int
	UserName  string
	Password  string
	Reconnect bool
	Clean     bool
	Quiesce   int
	Insecure  bool

	// SubTopics are comma-separated topics (TOPIC or TOPIC:QOS)
	// that carry SimulateRequests.
	SubTopics string

	// OutTopic (TOPIC or TOPIC:QOS) gets the Verdicts.
	OutTopic string

	InTimeout time.Duration
}

func (c *MQTTConf) flags(fs *flag.FlagSet) {
	fs.StringVar(&c.Broker, "mqtt-broker", "", "MQTT broker (for example tcp://localhost); no MQTT if empty")
	fs.IntVar(&c.Port, "mqtt-port", 1883, "Broker port")
	fs.StringVar(&c.ClientId, "mqtt-client-id", "", "Client id")
	fs.IntVar(&c.KeepAlive, "mqtt-keep-alive", 600, "Keep-alive in seconds")
	fs.StringVar(&c.UserName, "mqtt-user", "", "Username")
	fs.StringVar(&c.Password, "mqtt-password", "", "Password")
	fs.BoolVar(&c.Reconnect, "mqtt-reconnect", false, "Automatically attempt to reconnect")
	fs.BoolVar(&c.Clean, "mqtt-clean", true, "Clean session")
	fs.IntVar(&c.Quiesce, "mqtt-quiesce", 100, "Disconnection quiescence (in milliseconds)")
	fs.BoolVar(&c.Insecure, "mqtt-insecure", false, "Skip broker cert checking")
	fs.StringVar(&c.SubTopics, "mqtt-in", "automata/simulate", "subscription topic(s) for requests")
	fs.StringVar(&c.OutTopic, "mqtt-out", "automata/verdicts", "topic for verdicts")
	fs.DurationVar(&c.InTimeout, "mqtt-in-timeout", 5*time.Second, "timeout for in-bound queuing")
}

// Options makes paho client options.
func (c *MQTTConf) Options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()

	broker := c.Broker
	if c.Port != 0 {
		broker = fmt.Sprintf("%s:%d", broker, c.Port)
	}
	log.Printf("broker: %s", broker)
	opts.AddBroker(broker)
	opts.SetClientID(c.ClientId)
	opts.SetKeepAlive(time.Second * time.Duration(c.KeepAlive))
	opts.SetPingTimeout(10 * time.Second)

	opts.Username = c.UserName
	opts.Password = c.Password
	opts.AutoReconnect = c.Reconnect
	opts.CleanSession = c.Clean

	opts.SetTLSConfig(&tls.Config{
		InsecureSkipVerify: c.Insecure,
	})

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	return opts
}

// Couplings connect a Service to an MQTT broker: SimulateRequests
// arrive on subscribed topics, and Verdicts go out on the OutTopic.
type Couplings struct {
	Client    mqtt.Client
	Quiesce   uint
	SubTopics string
	OutTopic  string
	InTimeout time.Duration

	s        *Service
	incoming chan *SimulateRequest
}

// NewCouplings makes Couplings for the Service.  Call Start to
// connect.
func NewCouplings(ctx context.Context, s *Service, conf *MQTTConf) *Couplings {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	c := &Couplings{
		Quiesce:   uint(conf.Quiesce),
		SubTopics: conf.SubTopics,
		OutTopic:  conf.OutTopic,
		InTimeout: conf.InTimeout,
		s:         s,
		incoming:  make(chan *SimulateRequest, 32),
	}

	opts := conf.Options()
	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		c.inHandler(ctx, client, msg)
	}
	c.Client = mqtt.NewClient(opts)

	return c
}

func (c *Couplings) consume(ctx context.Context, topic string, payload []byte) {
	var req SimulateRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("Couldn't JSON-parse payload on %s: %s", topic, payload)
		return
	}

	to := time.NewTimer(c.InTimeout)
	defer to.Stop()

	select {
	case <-ctx.Done():
		log.Printf("Couplings not forwarding due to ctx.Done()")
	case c.incoming <- &req:
		log.Printf("Couplings forwarded incoming %s", payload)
	case <-to.C:
		log.Printf("Couplings not forwarding due to stall ('%s','%s')", topic, payload)
	}
}

// inHandler is a Paho publish handler, which is used to handle
// messages send to us from the MQTT broker due to our subscriptions.
func (c *Couplings) inHandler(ctx context.Context, client mqtt.Client, msg mqtt.Message) {
	log.Printf("incoming: %s %s\n", msg.Topic(), msg.Payload())
	c.consume(ctx, msg.Topic(), msg.Payload())
}

// Start creates the MQTT session.
func (c *Couplings) Start(ctx context.Context) error {
	log.Printf("Attempting to connected to broker")
	if token := c.Client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(c.SubTopics, ",") {
		topic, qos := parseTopic(topic)
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, qos)
		if t := c.Client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
		log.Printf("Subscribed to %s (%d)", topic, qos)
	}
	log.Printf("Couplings started")

	return nil
}

// Loop simulates incoming requests and publishes their Verdicts
// until the context is done.
func (c *Couplings) Loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-c.incoming:
			v, err := c.s.Simulate(ctx, req.Name, req)
			if v == nil {
				// Not even a verdict (probably an unknown name).
				log.Printf("Couplings Simulate error %v", err)
				continue
			}
			if err := c.publish(v); err != nil {
				log.Printf("Publish error: %s", err)
			}
		}
	}
}

func (c *Couplings) publish(v *Verdict) error {
	topic, qos := parseTopic(c.OutTopic)
	js, err := json.Marshal(v)
	if err != nil {
		return err
	}
	log.Printf("Publishing %s %s", topic, js)
	token := c.Client.Publish(topic, qos, false, js)
	token.Wait()
	return token.Error()
}

// Stop terminates the MQTT session.
func (c *Couplings) Stop(context.Context) error {
	log.Printf("Disconnecting")
	c.Client.Disconnect(c.Quiesce)
	return nil
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) < 2 {
		return s, 0
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 0 || 2 < n {
		log.Printf("Warning: ignoring bad QoS in %q", s)
		return parts[0], 0
	}
	return parts[0], byte(n)
}
