package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/akostiuk/zoewatch/core/diff"
	"github.com/akostiuk/zoewatch/core/model"
)

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

// mockClient implements pahoClient for tests
type mockClient struct {
	published []struct {
		topic   string
		qos     byte
		retain  bool
		payload []byte
	}
	publishErr error
}

func (m *mockClient) IsConnected() bool       { return true }
func (m *mockClient) Connect() paho.Token     { return &dummyToken{} }
func (m *mockClient) Disconnect(uint)         {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic   string
		qos     byte
		retain  bool
		payload []byte
	}{topic, qos, retained, payload.([]byte)})
	if m.publishErr != nil {
		return &dummyToken{err: m.publishErr}
	}
	return &dummyToken{}
}

func newTestAnnouncer(t *testing.T, cfg Config) (*Announcer, *mockClient) {
	t.Helper()
	mc := &mockClient{}
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
	cfg.Enabled = true
	if cfg.Broker == "" {
		cfg.Broker = "tcp://localhost:1883"
	}
	cfg.SetDefaults()
	a, err := NewAnnouncer(cfg)
	if err != nil {
		t.Fatalf("NewAnnouncer: %v", err)
	}
	return a, mc
}

func TestAnnouncePublishesPayload(t *testing.T) {
	a, mc := newTestAnnouncer(t, Config{Topic: "home/outages", QoS: 1, Retain: true})

	sched := model.NewSchedule()
	sched["2.1"] = "10:00 - 13:00"
	res := diff.Result{
		Outcome: diff.PartialUpdate,
		Changed: map[model.Group]string{"2.1": "10:00 - 13:00"},
	}
	date := time.Date(2024, time.January, 4, 0, 0, 0, 0, time.UTC)

	if err := a.Announce(context.Background(), date, sched, res); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if len(mc.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(mc.published))
	}
	pub := mc.published[0]
	if pub.topic != "home/outages" || pub.qos != 1 || !pub.retain {
		t.Fatalf("unexpected publish params: %+v", pub)
	}

	var p schedulePayload
	if err := json.Unmarshal(pub.payload, &p); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if p.Date != "2024-01-04" || p.Outcome != "partial_update" {
		t.Fatalf("unexpected payload header: %+v", p)
	}
	if p.Changed["2.1"] != "10:00 - 13:00" {
		t.Fatalf("changed queue missing: %+v", p.Changed)
	}
	if len(p.Schedule) != len(model.Groups) {
		t.Fatalf("schedule has %d queues, want %d", len(p.Schedule), len(model.Groups))
	}
}

func TestAnnouncePublishError(t *testing.T) {
	a, mc := newTestAnnouncer(t, Config{})
	mc.publishErr = errors.New("broker gone")

	err := a.Announce(context.Background(), time.Now(), model.NewSchedule(), diff.Result{Outcome: diff.FirstPublication})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestDisabledConfigReturnsNil(t *testing.T) {
	a, err := NewAnnouncer(Config{Enabled: false})
	if err != nil {
		t.Fatalf("disabled config errored: %v", err)
	}
	if a != nil {
		t.Fatal("disabled config must return a nil announcer")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Enabled: true, Broker: "tcp://localhost:1883", QoS: 3}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected qos validation error")
	}
	cfg.QoS = 1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	cfg.SetDefaults()
	if cfg.ClientID == "" || cfg.Topic == "" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
