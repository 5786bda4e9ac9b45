// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package animation

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/parallax/internal/motion"
)

// MQTTAnimator publishes every translation as a Message on one topic.
// Publishing does not wait for the broker.
type MQTTAnimator struct {
	client mqtt.Client
	topic  string
}

// NewMQTTAnimator publishes on topic through an already connected client.
func NewMQTTAnimator(client mqtt.Client, topic string) *MQTTAnimator {
	return &MQTTAnimator{client: client, topic: topic}
}

func (a *MQTTAnimator) Animate(t motion.Translation) {
	payload, err := json.Marshal(NewMessage(t))
	if err != nil {
		log.Printf("mqtt animator: json marshal error: %v", err)
		return
	}

	token := a.client.Publish(a.topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("mqtt animator: publish error (%s): %v", a.topic, token.Error())
		}
	}()
}
