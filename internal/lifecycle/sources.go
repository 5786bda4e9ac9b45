// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lifecycle

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// SubscribeMQTT forwards "resume", "pause" and "destroy" payloads published
// on topic to r. It returns a function that drops the subscription.
func SubscribeMQTT(client mqtt.Client, topic string, r *Registry) (func(), error) {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		e, err := ParseEvent(string(msg.Payload()))
		if err != nil {
			log.Printf("lifecycle: %v", err)
			return
		}
		log.Printf("lifecycle: %s (mqtt)", e)
		r.Handle(e)
	})
	token.Wait()
	if token.Error() != nil {
		return nil, fmt.Errorf("lifecycle: subscribe %s: %w", topic, token.Error())
	}
	log.Printf("lifecycle: subscribed to %s", topic)

	return func() {
		client.Unsubscribe(topic).Wait()
	}, nil
}

// signalEvents maps a process signal to the lifecycle events it triggers.
func signalEvents(sig os.Signal) []Event {
	switch sig {
	case syscall.SIGUSR1:
		return []Event{Pause}
	case syscall.SIGUSR2:
		return []Event{Resume}
	case os.Interrupt, syscall.SIGTERM:
		return []Event{Pause, Destroy}
	default:
		return nil
	}
}

// NotifyOS drives r from process signals: SIGUSR1 pauses, SIGUSR2 resumes,
// SIGINT/SIGTERM pause and destroy. It returns a function that stops
// listening.
func NotifyOS(r *Registry) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
	quit := make(chan struct{})

	go func() {
		for {
			select {
			case <-quit:
				return
			case <-r.Done():
				return
			case sig := <-sigCh:
				for _, e := range signalEvents(sig) {
					log.Printf("lifecycle: %s (signal %v)", e, sig)
					r.Handle(e)
				}
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(quit)
	}
}
