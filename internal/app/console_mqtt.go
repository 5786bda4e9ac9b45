package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/parallax/internal/animation"
	"github.com/relabs-tech/parallax/internal/config"
)

func printTranslation(w io.Writer, payload []byte) error {
	var m animation.Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[MOVE] %-12s x=%7.2f y=%7.2f  %4dms %s  (%s)\n",
		m.Element, m.X, m.Y, m.DurationMS, m.Easing, m.Entry)
	return err
}

// subscribeConsole prints translations and lifecycle events to w.
func subscribeConsole(client mqtt.Client, cfg *config.Config, w io.Writer) error {
	token := client.Subscribe(cfg.TopicTranslation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := printTranslation(w, msg.Payload()); err != nil {
			log.Printf("console: translation unmarshal error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTranslation)

	if cfg.TopicLifecycle == "" {
		return nil
	}
	token = client.Subscribe(cfg.TopicLifecycle, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Fprintf(w, "[LIFE] %s\n", msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicLifecycle)
	return nil
}

// RunConsoleMQTT prints every translation published by the service.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return fmt.Errorf("console: configuration not initialized")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	if err := subscribeConsole(client, cfg, os.Stdout); err != nil {
		client.Disconnect(250)
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
