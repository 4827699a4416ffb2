// Package mqtt publishes search progress to an MQTT broker and listens for
// cancellation requests.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/greenshop/core/events"
	"github.com/kilianp07/greenshop/infra/logger"
	"github.com/kilianp07/greenshop/internal/eventbus"
)

// Config defines the connection parameters for the Paho MQTT client.
// An empty Broker disables MQTT.
type Config struct {
	Broker       string      `json:"broker" yaml:"broker"`
	ClientID     string      `json:"client_id" yaml:"client_id"`
	Username     string      `json:"username" yaml:"username"`
	Password     string      `json:"password" yaml:"password"`
	Topic        string      `json:"topic" yaml:"topic"`
	ControlTopic string      `json:"control_topic" yaml:"control_topic"`
	QoS          byte        `json:"qos" yaml:"qos"`
	Retain       bool        `json:"retain" yaml:"retain"`
	UseTLS       bool        `json:"use_tls" yaml:"use_tls"`
	ClientCert   string      `json:"client_cert" yaml:"client_cert"`
	ClientKey    string      `json:"client_key" yaml:"client_key"`
	CABundle     string      `json:"ca_bundle" yaml:"ca_bundle"`
	LWTTopic     string      `json:"lwt_topic" yaml:"lwt_topic"`
	LWTPayload   string      `json:"lwt_payload" yaml:"lwt_payload"`
	MaxRetries   int         `json:"max_retries" yaml:"max_retries"`
	BackoffMS    int         `json:"backoff_ms" yaml:"backoff_ms"`
	TLSConfig    *tls.Config `json:"-" yaml:"-"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// SetDefaults fills the topics, client id and retry policy.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "greenshop"
	}
	if c.Topic == "" {
		c.Topic = "greenshop/search"
	}
	if c.ControlTopic == "" {
		c.ControlTopic = c.Topic + "/cancel"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the QoS level and the TLS file set.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2 (got %d)", c.QoS)
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		return fmt.Errorf("mqtt.use_tls requires client_cert, client_key and ca_bundle")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher forwards search events to the broker as JSON. Events go to
// <topic>/<heuristic>/<kind>.
type Publisher struct {
	cli          pahoClient
	topic        string
	controlTopic string
	qos          byte
	retain       bool
	maxRetries   int
	backoff      time.Duration
	logger       logger.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewPublisher connects to the broker and subscribes to the control topic.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		topic:        cfg.Topic,
		controlTopic: cfg.ControlTopic,
		qos:          cfg.QoS,
		retain:       cfg.Retain,
		maxRetries:   cfg.MaxRetries,
		backoff:      time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:       log,
		cancels:      make(map[string]context.CancelFunc),
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(p.controlTopic, p.qos, p.onControl); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.QoS, false)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Watch registers cancel for runID. A control message naming the run
// calls it. The returned func removes the registration.
func (p *Publisher) Watch(runID string, cancel context.CancelFunc) func() {
	p.mu.Lock()
	p.cancels[runID] = cancel
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.cancels, runID)
		p.mu.Unlock()
	}
}

func (p *Publisher) onControl(_ paho.Client, msg paho.Message) {
	var m struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode control message: %v", err)
		return
	}
	p.mu.Lock()
	cancel, ok := p.cancels[m.RunID]
	p.mu.Unlock()
	if ok {
		p.logger.Infof("cancel requested for run %s", m.RunID)
		cancel()
	}
}

// PublishEvent sends one event, retrying with exponential backoff.
func (p *Publisher) PublishEvent(e events.SearchEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/%s", p.topic, e.Heuristic, e.Kind)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return publishErr
}

// Forward publishes every event of bus until ctx is cancelled or the bus
// is closed. The returned channel is closed when forwarding stops.
func (p *Publisher) Forward(ctx context.Context, bus *eventbus.TypedBus[events.SearchEvent]) <-chan struct{} {
	done := make(chan struct{})
	sub := bus.SubscribeBuffered(64)
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := p.PublishEvent(ev); err != nil {
					p.logger.Warnf("drop event %s/%s: %v", ev.Heuristic, ev.Kind, err)
				}
			}
		}
	}()
	return done
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
