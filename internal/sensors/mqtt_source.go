// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTService delivers rotation vectors published on an MQTT topic, e.g. by
// cmd/producer or a phone streaming its rotation-vector sensor.
//
// Payload: {"values":[x,y,z,w],"accuracy":3,"timestamp":"2026-01-02T15:04:05Z"}
type MQTTService struct {
	*dispatcher
	client mqtt.Client
	topic  string
}

// NewMQTTService subscribes to topic on an already connected client.
// The topic subscription lives as long as the service; samples arriving
// without listeners are dropped.
func NewMQTTService(client mqtt.Client, topic string) (*MQTTService, error) {
	s := &MQTTService{
		dispatcher: newDispatcher("mqtt sensor", RotationVector, nil, nil),
		client:     client,
		topic:      topic,
	}

	token := client.Subscribe(topic, 0, s.handle)
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("mqtt sensor: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("mqtt sensor: subscribed to %s", topic)
	return s, nil
}

func (s *MQTTService) handle(_ mqtt.Client, msg mqtt.Message) {
	var ev Event
	if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
		log.Printf("mqtt sensor: payload unmarshal error: %v", err)
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.deliver(&ev)
}

// Close drops the topic subscription.
func (s *MQTTService) Close() error {
	token := s.client.Unsubscribe(s.topic)
	token.Wait()
	return token.Error()
}
