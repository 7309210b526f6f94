package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/akostiuk/zoewatch/core/diff"
	"github.com/akostiuk/zoewatch/core/model"
	"github.com/akostiuk/zoewatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	Retain     bool   `json:"retain"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`

	TLSConfig *tls.Config `json:"-"`
}

func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "zoewatch"
	}
	if c.Topic == "" {
		c.Topic = "zoewatch/schedule"
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt: qos must be 0, 1 or 2")
	}
	return nil
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

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Announcer publishes every persisted schedule change to a single retained
// topic so that home automation consumers see the latest state on subscribe.
type Announcer struct {
	cli   pahoClient
	topic string
	qos   byte
	ret   bool
	log   logger.Logger
}

// NewAnnouncer connects to the MQTT broker. A disabled config returns a nil
// announcer and no error so callers can skip wiring it.
func NewAnnouncer(cfg Config) (*Announcer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_announcer")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Announcer{cli: c, topic: cfg.Topic, qos: cfg.QoS, ret: cfg.Retain, log: log}, nil
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
	return opts, nil
}

type schedulePayload struct {
	Date      string            `json:"date"`
	Outcome   string            `json:"outcome"`
	Changed   map[string]string `json:"changed,omitempty"`
	Schedule  map[string]string `json:"schedule"`
	Timestamp int64             `json:"timestamp"`
}

// Announce publishes the schedule change as JSON.
func (a *Announcer) Announce(_ context.Context, date time.Time, sched model.Schedule, res diff.Result) error {
	p := schedulePayload{
		Date:      date.Format("2006-01-02"),
		Outcome:   res.Outcome.String(),
		Schedule:  make(map[string]string, len(model.Groups)),
		Timestamp: time.Now().UnixMilli(),
	}
	for _, g := range model.Groups {
		p.Schedule[string(g)] = sched[g]
	}
	if len(res.Changed) > 0 {
		p.Changed = make(map[string]string, len(res.Changed))
		for g, v := range res.Changed {
			p.Changed[string(g)] = v
		}
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	token := a.cli.Publish(a.topic, a.qos, a.ret, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", a.topic, token.Error())
	}
	a.log.Debugf("published schedule for %s", p.Date)
	return nil
}

// Close disconnects from the broker.
func (a *Announcer) Close() {
	if a.cli != nil && a.cli.IsConnected() {
		a.cli.Disconnect(250)
	}
}
