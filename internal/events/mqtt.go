package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// mqttClient is the part of mqtt.Client the publisher uses.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher sends events as JSON with QoS 1 to
// <prefix>/users/<userId>/entries.
type MQTTPublisher struct {
	client mqttClient
	prefix string
}

// MQTTOptions configures a broker connection.
type MQTTOptions struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
}

// NewMQTTPublisher connects to the broker and returns a publisher.
func NewMQTTPublisher(opts MQTTOptions, log logrus.FieldLogger) (*MQTTPublisher, error) {
	if opts.BrokerURL == "" {
		return nil, errors.New("mqtt broker url is empty")
	}
	co := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.WithError(err).Warn("MQTT connection lost")
		}).
		SetOnConnectHandler(func(mqtt.Client) {
			log.WithField("broker", opts.BrokerURL).Info("Connected to MQTT broker")
		})

	client := mqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", opts.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return newMQTTPublisher(client, opts.TopicPrefix), nil
}

func newMQTTPublisher(client mqttClient, prefix string) *MQTTPublisher {
	if prefix == "" {
		prefix = "iftaway"
	}
	return &MQTTPublisher{client: client, prefix: prefix}
}

// Topic returns the topic events for userID are published on.
func (p *MQTTPublisher) Topic(userID string) string {
	return fmt.Sprintf("%s/users/%s/entries", p.prefix, userID)
}

// Publish sends ev and waits for the broker ack, the context or a timeout.
func (p *MQTTPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	token := p.client.Publish(p.Topic(ev.UserID), 1, false, payload)

	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish %s: timed out", ev.Type)
	}
}

// Close disconnects from the broker after in-flight work drains.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
