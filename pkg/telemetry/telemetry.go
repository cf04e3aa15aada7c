// Package telemetry publishes simulation frames and scene state over
// MQTT. Frames go out at a decimated rate from a latest-value mailbox:
// the publisher never queues, a slow broker just sees fewer frames.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/strideworks/go-stride/internal/log"
	"github.com/strideworks/go-stride/pkg/protocol"
)

// Config tunes the MQTT publisher.
type Config struct {
	Broker     string `json:"broker" yaml:"broker"`           // example: tcp://localhost:1883
	ClientID   string `json:"client_id" yaml:"client_id"`
	Prefix     string `json:"prefix" yaml:"prefix"`           // topic prefix
	IntervalMS int    `json:"interval_ms" yaml:"interval_ms"` // frame publish interval
}

// DefaultConfig publishes five frames a second to a local broker.
func DefaultConfig() Config {
	return Config{
		Broker:     "tcp://localhost:1883",
		ClientID:   "stride-telemetry",
		Prefix:     "stride",
		IntervalMS: 200,
	}
}

// Publisher mirrors the scene onto MQTT topics.
type Publisher struct {
	cfg    Config
	client mqtt.Client

	mu     sync.Mutex
	latest protocol.FrameData
	seq    uint64 // bumped by Listen
	sent   uint64 // last seq published

	published uint64
}

// New creates a publisher. Call Connect before Run.
func New(cfg Config) *Publisher {
	if cfg.IntervalMS <= 0 {
		cfg.IntervalMS = 200
	}
	return &Publisher{cfg: cfg}
}

// Connect dials the broker.
func (p *Publisher) Connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(p.cfg.Broker).
		SetClientID(p.cfg.ClientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to broker %s: %w", p.cfg.Broker, token.Error())
	}
	p.client = client
	fmt.Printf("📡 Telemetry connected to %s\n", p.cfg.Broker)
	return nil
}

// Connected reports whether the broker connection is up.
func (p *Publisher) Connected() bool {
	return p.client != nil && p.client.IsConnected()
}

// Listen stores the frame in the mailbox, replacing any unpublished
// one. Attach it to the scene with AddListener.
func (p *Publisher) Listen(f protocol.FrameData) {
	p.mu.Lock()
	p.latest = f
	p.seq++
	p.mu.Unlock()
}

// takeLatest returns the mailbox frame if one arrived since the last
// publish.
func (p *Publisher) takeLatest() (protocol.FrameData, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.seq == p.sent {
		return protocol.FrameData{}, false
	}
	p.sent = p.seq
	return p.latest, true
}

// FrameTopic returns the topic frames are published on.
func (p *Publisher) FrameTopic() string {
	return p.cfg.Prefix + "/frames"
}

// StateTopic returns the topic scene state is published on.
func (p *Publisher) StateTopic() string {
	return p.cfg.Prefix + "/state"
}

// Run publishes mailbox frames at the configured interval until the
// context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(p.cfg.IntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f, ok := p.takeLatest()
			if !ok {
				continue
			}
			if err := p.PublishFrame(f); err != nil {
				log.Error("publishing telemetry frame", "topic", p.FrameTopic(), "error", err)
			}
		}
	}
}

// PublishFrame publishes one frame immediately, bypassing the mailbox.
func (p *Publisher) PublishFrame(f protocol.FrameData) error {
	if !p.Connected() {
		return fmt.Errorf("not connected to broker")
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling telemetry frame: %w", err)
	}
	if token := p.client.Publish(p.FrameTopic(), 0, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", p.FrameTopic(), token.Error())
	}
	p.mu.Lock()
	p.published++
	p.mu.Unlock()
	return nil
}

// PublishState publishes the scene state retained, so late subscribers
// see the last known state immediately.
func (p *Publisher) PublishState(st protocol.SceneState) error {
	if !p.Connected() {
		return fmt.Errorf("not connected to broker")
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling scene state: %w", err)
	}
	if token := p.client.Publish(p.StateTopic(), 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publishing scene state: %w", token.Error())
	}
	return nil
}

// Published returns the number of frames published so far.
func (p *Publisher) Published() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
