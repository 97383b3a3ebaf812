// Package mqtt implements the notification sink over an MQTT broker using
// Eclipse Paho. Each recipient gets its own topic under a configured
// prefix; delivery is fire-and-forget.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sarkarn/parkinglotmgmt/core/logger"
	infralogger "github.com/sarkarn/parkinglotmgmt/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT notifier.
type Config struct {
	Broker      string `koanf:"broker"`
	ClientID    string `koanf:"client_id"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	TopicPrefix string `koanf:"topic_prefix"`
	QoS         byte   `koanf:"qos"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "parkinglot-notifier"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "parkinglot/notifications"
	}
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

// Notifier publishes notifications to the broker.
type Notifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

type payload struct {
	RecipientID string    `json:"recipient_id"`
	Message     string    `json:"message"`
	SentAt      time.Time `json:"sent_at"`
}

// NewNotifier connects to the MQTT broker.
func NewNotifier(cfg Config) (*Notifier, error) {
	cfg.SetDefaults()
	log := infralogger.New("mqtt-notifier")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Notifier{cli: c, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// Notify publishes the message on the recipient's topic. Errors are logged;
// the caller never waits on delivery.
func (n *Notifier) Notify(recipientID, message string) {
	body, err := json.Marshal(payload{RecipientID: recipientID, Message: message, SentAt: time.Now()})
	if err != nil {
		n.log.Errorf("marshal notification: %v", err)
		return
	}
	topic := fmt.Sprintf("%s/%s", n.prefix, recipientID)
	token := n.cli.Publish(topic, n.qos, false, body)
	go func() {
		if token.Wait() && token.Error() != nil {
			n.log.Errorf("publish to %s: %v", topic, token.Error())
		}
	}()
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	n.cli.Disconnect(250)
}
