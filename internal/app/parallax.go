// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/parallax/internal/animation"
	"github.com/relabs-tech/parallax/internal/config"
	"github.com/relabs-tech/parallax/internal/lifecycle"
	"github.com/relabs-tech/parallax/internal/motion"
	"github.com/relabs-tech/parallax/internal/sensors"
)

// Parallax is the assembled service: one sensor, one helper, the enabled
// animation sinks, and the lifecycle registry driving them.
type Parallax struct {
	Helper    *motion.Helper
	Lifecycle *lifecycle.Registry
	Hub       *animation.Hub
	Display   *animation.DisplayAnimator

	closers []func()
}

// NewParallax wires everything cfg selects. client may be nil when neither
// the sensor, the sinks nor the lifecycle topic use MQTT.
func NewParallax(cfg *config.Config, client mqtt.Client) (*Parallax, error) {
	p := &Parallax{Lifecycle: lifecycle.NewRegistry()}

	svc, err := p.sensorService(cfg, client)
	if err != nil {
		p.Close()
		return nil, err
	}

	anim, err := p.animators(cfg, client)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Helper = motion.New(p.Lifecycle, svc, anim,
		motion.WithSamplingInterval(cfg.SamplingInterval()),
		motion.WithDuration(cfg.Duration()),
		motion.WithInterpolator(motion.Decelerate{Factor: cfg.AnimationDecelerateFactor}),
	)

	if cfg.TargetsFile != "" {
		targets, err := config.LoadTargets(cfg.TargetsFile)
		if err != nil {
			p.Close()
			return nil, err
		}
		for _, t := range targets {
			p.Helper.RegisterTarget(t.Element, t.MaxTranslation)
		}
		log.Printf("parallax: registered %d targets from %s", len(targets), cfg.TargetsFile)
	} else {
		log.Println("parallax: no TARGETS_FILE, nothing will move until targets are registered")
	}

	if client != nil && cfg.TopicLifecycle != "" {
		unsub, err := lifecycle.SubscribeMQTT(client, cfg.TopicLifecycle, p.Lifecycle)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, unsub)
	}

	return p, nil
}

func (p *Parallax) sensorService(cfg *config.Config, client mqtt.Client) (sensors.Service, error) {
	switch cfg.SensorSource {
	case config.SourceMQTT:
		if client == nil {
			return nil, errors.New("parallax: mqtt sensor source needs a broker connection")
		}
		svc, err := sensors.NewMQTTService(client, cfg.TopicRotationVector)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, logClose("mqtt sensor", svc.Close))
		return svc, nil
	case config.SourceIIO:
		return sensors.NewIIOService(cfg.IIODevicePath), nil
	case config.SourceSerial:
		return sensors.NewSerialService(cfg.SerialPort, cfg.SerialBaudRate), nil
	case config.SourceIMU:
		svc, err := sensors.NewIMUService(cfg.IMUSPIDevice, cfg.IMUCSPin)
		if err != nil {
			return nil, fmt.Errorf("parallax: imu sensor: %w", err)
		}
		return svc, nil
	case config.SourceMock:
		return sensors.NewMockService(), nil
	case config.SourceNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.SensorSource)
	}
}

func (p *Parallax) animators(cfg *config.Config, client mqtt.Client) (motion.Animator, error) {
	var multi animation.Multi
	for _, sink := range cfg.AnimationSinks {
		switch sink {
		case config.SinkWeb:
			p.Hub = animation.NewHub()
			p.closers = append(p.closers, p.Hub.Close)
			multi = append(multi, p.Hub)
		case config.SinkMQTT:
			if client == nil {
				return nil, errors.New("parallax: mqtt sink needs a broker connection")
			}
			multi = append(multi, animation.NewMQTTAnimator(client, cfg.TopicTranslation))
		case config.SinkDisplay:
			dev, closeBus, err := animation.OpenSSD1306(cfg.DisplayI2CBus, cfg.DisplayI2CAddr)
			if err != nil {
				return nil, err
			}
			p.closers = append(p.closers, logClose("display bus", closeBus))
			p.Display = animation.NewDisplayAnimator(dev, cfg.DisplayScale)
			multi = append(multi, p.Display)
		case config.SinkLog:
			multi = append(multi, animation.LogAnimator{})
		default:
			return nil, fmt.Errorf("%w: %q", config.ErrUnknownSink, sink)
		}
	}
	if len(multi) == 1 {
		return multi[0], nil
	}
	return multi, nil
}

// logClose adapts a closer that can fail to the closers list.
func logClose(what string, closeFn func() error) func() {
	return func() {
		if err := closeFn(); err != nil {
			log.Printf("parallax: %s close: %v", what, err)
		}
	}
}

// Close releases everything NewParallax opened, last first.
func (p *Parallax) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
	p.closers = nil
}

// RunParallax runs the service with the global configuration until it is
// destroyed, either over the lifecycle topic or by SIGINT/SIGTERM.
func RunParallax() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("parallax: configuration not initialized")
	}

	var client mqtt.Client
	if cfg.SensorSource == config.SourceMQTT || cfg.HasSink(config.SinkMQTT) || cfg.TopicLifecycle != "" {
		c, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDParallax, "parallax")
		if err != nil {
			return err
		}
		defer c.Disconnect(250)
		client = c
	}

	p, err := NewParallax(cfg, client)
	if err != nil {
		return err
	}
	defer p.Close()

	stopSignals := lifecycle.NotifyOS(p.Lifecycle)
	defer stopSignals()

	var srv *http.Server
	if p.Hub != nil {
		srv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
			Handler: p.Handler(),
		}
		go func() {
			log.Printf("parallax: web server listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("parallax: web server error: %v", err)
			}
		}()
	}

	if p.Display != nil {
		stop := make(chan struct{})
		defer close(stop)
		go p.Display.Run(time.Duration(cfg.DisplayUpdateInterval)*time.Millisecond, stop)
	}

	log.Printf("parallax: sensor=%s sinks=%v", cfg.SensorSource, cfg.AnimationSinks)
	p.Lifecycle.Handle(lifecycle.Resume)

	<-p.Lifecycle.Done()
	log.Println("parallax: destroyed, shutting down")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("parallax: web server shutdown: %v", err)
		}
	}
	return nil
}
