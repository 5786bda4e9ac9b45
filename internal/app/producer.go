package app

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/parallax/internal/config"
	"github.com/relabs-tech/parallax/internal/sensors"
)

// rotationPublisher republishes every rotation-vector sample on an MQTT
// topic, in the payload format sensors.MQTTService reads.
type rotationPublisher struct {
	client mqtt.Client
	topic  string
	count  atomic.Int64
}

func (r *rotationPublisher) OnSensorChanged(ev *sensors.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("producer: json marshal error: %v", err)
		return
	}

	token := r.client.Publish(r.topic, 0, false, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("producer: publish error: %v", token.Error())
		}
	}()

	if n := r.count.Add(1); n%100 == 1 {
		log.Printf("producer: published %d samples, last %v", n, ev.Values)
	}
}

func (r *rotationPublisher) OnAccuracyChanged(_ sensors.Type, accuracy int) {
	log.Printf("producer: accuracy now %d", accuracy)
}

// producerService picks the local sensor to publish. Sources that are
// themselves fed over MQTT fall back to the mock.
func producerService(cfg *config.Config) (sensors.Service, string, error) {
	switch cfg.SensorSource {
	case config.SourceIIO:
		return sensors.NewIIOService(cfg.IIODevicePath), "iio", nil
	case config.SourceSerial:
		return sensors.NewSerialService(cfg.SerialPort, cfg.SerialBaudRate), "serial", nil
	case config.SourceIMU:
		svc, err := sensors.NewIMUService(cfg.IMUSPIDevice, cfg.IMUCSPin)
		if err != nil {
			return nil, "", err
		}
		return svc, "imu", nil
	default:
		return sensors.NewMockService(), "mock", nil
	}
}

// RunProducer publishes rotation vectors from a local sensor to
// TOPIC_ROTATION_VECTOR until interrupted.
func RunProducer() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("producer: configuration not initialized")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, "producer")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	svc, name, err := producerService(cfg)
	if err != nil {
		return err
	}

	pub := &rotationPublisher{client: client, topic: cfg.TopicRotationVector}
	interval := time.Duration(cfg.ProducerInterval) * time.Millisecond
	if !svc.Subscribe(pub, sensors.RotationVector, interval) {
		return errors.New("producer: rotation vector sensor not available")
	}
	defer svc.Unsubscribe(pub)
	log.Printf("producer: publishing %s rotation vectors to %s every %v", name, cfg.TopicRotationVector, interval)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("producer: shutting down")
	return nil
}
