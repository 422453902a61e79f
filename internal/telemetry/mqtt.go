// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Connect opens an MQTT client with auto-reconnect.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("telemetry: MQTT connect %s: %w", broker, token.Error())
	}
	return client, nil
}

// Publisher sends Reports as retained QoS 0 messages.
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher publishes on topic through client.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Publish hands the report to the client and returns without waiting for
// the broker. Delivery failures are logged from a separate goroutine.
func (p *Publisher) Publish(r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("telemetry: marshal report: %w", err)
	}
	token := p.client.Publish(p.topic, 0, true, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("telemetry: MQTT publish error (%s): %v", p.topic, token.Error())
		}
	}()
	return nil
}

// Close disconnects the client.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Subscribe calls fn with every Report received on topic. Payloads that do
// not decode are logged and skipped.
func Subscribe(client mqtt.Client, topic string, fn func(Report)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r Report
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("telemetry: report unmarshal error (%s): %v", msg.Topic(), err)
			return
		}
		fn(r)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("telemetry: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("telemetry: subscribed to %s", topic)
	return nil
}
