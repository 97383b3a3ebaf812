package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct{ err error }

func (f fakeToken) Wait() bool                     { return true }
func (f fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f fakeToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (f fakeToken) Error() error                   { return f.err }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	connected bool
	messages  []published
}

func (f *fakeClient) IsConnected() bool   { return f.connected }
func (f *fakeClient) Connect() paho.Token { f.connected = true; return fakeToken{} }
func (f *fakeClient) Disconnect(uint)     { f.connected = false }

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.messages = append(f.messages, published{topic: topic, payload: payload.([]byte)})
	return fakeToken{}
}

func withFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	fake := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fake }
	t.Cleanup(func() { newMQTTClient = orig })
	return fake
}

func TestNotify_PublishesToRecipientTopic(t *testing.T) {
	fake := withFakeClient(t)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883", TopicPrefix: "lot/notify"})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	n.Notify("car-1", "Reservation confirmed")

	if len(fake.messages) != 1 {
		t.Fatalf("published %d messages", len(fake.messages))
	}
	msg := fake.messages[0]
	if msg.topic != "lot/notify/car-1" {
		t.Fatalf("topic %q", msg.topic)
	}
	var p payload
	if err := json.Unmarshal(msg.payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.RecipientID != "car-1" || p.Message != "Reservation confirmed" || p.SentAt.IsZero() {
		t.Fatalf("payload: %+v", p)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.ClientID == "" || c.TopicPrefix == "" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestClose_Disconnects(t *testing.T) {
	fake := withFakeClient(t)
	n, err := NewNotifier(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	n.Close()
	if fake.connected {
		t.Fatalf("expected disconnect")
	}
}
