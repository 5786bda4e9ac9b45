package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/parallax/internal/animation"
	"github.com/relabs-tech/parallax/internal/config"
	"github.com/relabs-tech/parallax/internal/lifecycle"
	"github.com/relabs-tech/parallax/internal/motion"
	"github.com/relabs-tech/parallax/internal/mqtttest"
	"github.com/relabs-tech/parallax/internal/sensors"
)

func writeTargets(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	data := "targets:\n  - element: background\n    max_translation: 20\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func publishVector(t *testing.T, client *mqtttest.Client, topic string, v ...float64) {
	t.Helper()
	payload, err := json.Marshal(sensors.Event{Values: v, Accuracy: sensors.AccuracyHigh})
	require.NoError(t, err)
	client.Publish(topic, 0, false, payload)
}

func translations(client *mqtttest.Client, topic string) []animation.Message {
	var out []animation.Message
	for _, m := range client.Published() {
		if m.TopicName != topic {
			continue
		}
		var msg animation.Message
		if err := json.Unmarshal(m.Body, &msg); err == nil {
			out = append(out, msg)
		}
	}
	return out
}

func mqttConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.SensorSource = config.SourceMQTT
	cfg.SensorSamplingInterval = 1
	cfg.AnimationSinks = []string{config.SinkMQTT}
	cfg.TargetsFile = writeTargets(t)
	return cfg
}

func TestParallaxMovesTargetsFromMQTTSamples(t *testing.T) {
	cfg := mqttConfig(t)
	client := mqtttest.NewClient()

	p, err := NewParallax(cfg, client)
	require.NoError(t, err)
	defer p.Close()
	require.Len(t, p.Helper.Targets(), 1)

	p.Lifecycle.Handle(lifecycle.Resume)
	require.Equal(t, motion.Active, p.Helper.State())

	publishVector(t, client, cfg.TopicRotationVector, 0, 0, 0, 1)
	assert.Empty(t, translations(client, cfg.TopicTranslation), "reference sample")

	time.Sleep(10 * time.Millisecond)
	// quarter turn of roll: rotation of π/4 about Y
	s, c := math.Sincos(math.Pi / 8)
	publishVector(t, client, cfg.TopicRotationVector, 0, s, 0, c)

	got := translations(client, cfg.TopicTranslation)
	require.Len(t, got, 1)
	assert.Equal(t, "background", got[0].Element)
	assert.InDelta(t, -5, got[0].X, 1e-9)
	assert.InDelta(t, 0, got[0].Y, 1e-9)
	assert.Equal(t, int64(300), got[0].DurationMS)
	assert.Equal(t, "decelerate", got[0].Easing)
}

func TestParallaxLifecycleOverMQTT(t *testing.T) {
	cfg := mqttConfig(t)
	client := mqtttest.NewClient()

	p, err := NewParallax(cfg, client)
	require.NoError(t, err)
	defer p.Close()
	require.True(t, client.Subscribed(cfg.TopicLifecycle))

	client.Publish(cfg.TopicLifecycle, 0, false, []byte("resume"))
	assert.Equal(t, motion.Active, p.Helper.State())

	client.Publish(cfg.TopicLifecycle, 0, false, []byte("pause"))
	assert.Equal(t, motion.Inactive, p.Helper.State())

	// paused: samples go nowhere
	publishVector(t, client, cfg.TopicRotationVector, 0, 0, 0, 1)
	assert.Empty(t, translations(client, cfg.TopicTranslation))

	client.Publish(cfg.TopicLifecycle, 0, false, []byte("destroy"))
	select {
	case <-p.Lifecycle.Done():
	case <-time.After(time.Second):
		t.Fatal("lifecycle not destroyed")
	}
	assert.Equal(t, motion.Terminated, p.Helper.State())
	assert.Empty(t, p.Helper.Targets())
}

func TestParallaxCloseDropsSubscriptions(t *testing.T) {
	cfg := mqttConfig(t)
	client := mqtttest.NewClient()

	p, err := NewParallax(cfg, client)
	require.NoError(t, err)
	p.Close()
	assert.False(t, client.Subscribed(cfg.TopicRotationVector))
	assert.False(t, client.Subscribed(cfg.TopicLifecycle))
}

func TestNewParallaxErrors(t *testing.T) {
	cfg := config.Default()
	cfg.SensorSource = config.SourceMQTT
	_, err := NewParallax(cfg, nil)
	assert.Error(t, err, "mqtt source without client")

	cfg = config.Default()
	cfg.SensorSource = config.SourceNone
	cfg.AnimationSinks = []string{config.SinkMQTT}
	_, err = NewParallax(cfg, nil)
	assert.Error(t, err, "mqtt sink without client")

	cfg = config.Default()
	cfg.SensorSource = "pigeon"
	_, err = NewParallax(cfg, nil)
	assert.ErrorIs(t, err, config.ErrUnknownSource)

	cfg = config.Default()
	cfg.SensorSource = config.SourceNone
	cfg.TargetsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewParallax(cfg, nil)
	assert.Error(t, err)

	client := mqtttest.NewClient()
	client.Refuse = true
	_, err = NewParallax(mqttConfig(t), client)
	assert.ErrorIs(t, err, mqtttest.ErrRefused)
}

func TestParallaxWithoutSensorStaysStill(t *testing.T) {
	cfg := config.Default()
	cfg.SensorSource = config.SourceNone
	cfg.AnimationSinks = []string{config.SinkLog}
	cfg.TargetsFile = writeTargets(t)

	p, err := NewParallax(cfg, nil)
	require.NoError(t, err)
	defer p.Close()

	p.Lifecycle.Handle(lifecycle.Resume)
	p.Lifecycle.Handle(lifecycle.Pause)
	p.Lifecycle.Handle(lifecycle.Destroy)
	assert.Equal(t, motion.Terminated, p.Helper.State())
}

func get(t *testing.T, srv *httptest.Server, path string) (int, []byte) {
	t.Helper()
	res, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestHandler(t *testing.T) {
	cfg := config.Default()
	cfg.SensorSource = config.SourceNone
	cfg.AnimationSinks = []string{config.SinkWeb}
	cfg.TargetsFile = writeTargets(t)

	p, err := NewParallax(cfg, nil)
	require.NoError(t, err)
	defer p.Close()
	require.NotNil(t, p.Hub)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	code, body := get(t, srv, "/api/targets")
	require.Equal(t, http.StatusOK, code)
	var targets []motion.Target
	require.NoError(t, json.Unmarshal(body, &targets))
	require.Len(t, targets, 1)
	assert.Equal(t, "background", targets[0].Element)
	assert.Equal(t, 20.0, targets[0].MaxTranslation)
	assert.NotEmpty(t, targets[0].ID)

	code, body = get(t, srv, "/api/state")
	require.Equal(t, http.StatusOK, code)
	var state stateResponse
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, stateResponse{State: "inactive", Targets: 1}, state)

	code, body = get(t, srv, "/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "<title>Parallax</title>")
}

func TestPrintTranslation(t *testing.T) {
	var buf bytes.Buffer
	payload := `{"entry":"e1","element":"background","x":-5,"y":2.5,"duration_ms":300,"easing":"decelerate"}`
	require.NoError(t, printTranslation(&buf, []byte(payload)))
	assert.Equal(t,
		"[MOVE] background   x=  -5.00 y=   2.50   300ms decelerate  (e1)\n",
		buf.String())

	assert.Error(t, printTranslation(&buf, []byte("{")))
}

func TestSubscribeConsole(t *testing.T) {
	cfg := config.Default()
	client := mqtttest.NewClient()
	var buf bytes.Buffer
	require.NoError(t, subscribeConsole(client, cfg, &buf))

	animation.NewMQTTAnimator(client, cfg.TopicTranslation).Animate(motion.Translation{
		Entry: "e1", Element: "fg", X: 1, Duration: 300 * time.Millisecond,
	})
	client.Publish(cfg.TopicLifecycle, 0, false, []byte("pause"))

	assert.Contains(t, buf.String(), "[MOVE] fg")
	assert.Contains(t, buf.String(), "[LIFE] pause")
}

func TestRotationPublisher(t *testing.T) {
	client := mqtttest.NewClient()
	pub := &rotationPublisher{client: client, topic: "rv"}

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.OnSensorChanged(&sensors.Event{
		Type:      sensors.RotationVector,
		Values:    []float64{0.1, 0.2, 0.3, 0.9},
		Accuracy:  sensors.AccuracyHigh,
		Timestamp: ts,
	})

	msgs := client.Published()
	require.Len(t, msgs, 1)
	assert.Equal(t, "rv", msgs[0].TopicName)

	var ev sensors.Event
	require.NoError(t, json.Unmarshal(msgs[0].Body, &ev))
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.9}, ev.Values)
	assert.Equal(t, sensors.AccuracyHigh, ev.Accuracy)
	assert.True(t, ts.Equal(ev.Timestamp))
}

func TestProducerFeedsMQTTService(t *testing.T) {
	client := mqtttest.NewClient()
	svc, err := sensors.NewMQTTService(client, "rv")
	require.NoError(t, err)

	var got [][]float64
	l := listenerFunc(func(ev *sensors.Event) { got = append(got, ev.Values) })
	require.True(t, svc.Subscribe(l, sensors.RotationVector, time.Nanosecond))

	pub := &rotationPublisher{client: client, topic: "rv"}
	pub.OnSensorChanged(&sensors.Event{Values: []float64{0, 0, 0, 1}})
	require.Len(t, got, 1)
	assert.Equal(t, []float64{0, 0, 0, 1}, got[0])
}

type listenerFunc func(*sensors.Event)

func (f listenerFunc) OnSensorChanged(ev *sensors.Event) { f(ev) }
func (listenerFunc) OnAccuracyChanged(sensors.Type, int) {}

func TestProducerService(t *testing.T) {
	for _, src := range []string{config.SourceMQTT, config.SourceMock, config.SourceNone} {
		t.Run(src, func(t *testing.T) {
			cfg := config.Default()
			cfg.SensorSource = src
			svc, name, err := producerService(cfg)
			require.NoError(t, err)
			assert.NotNil(t, svc)
			assert.Equal(t, "mock", name)
		})
	}

	cfg := config.Default()
	cfg.SensorSource = config.SourceSerial
	cfg.SerialPort = "/dev/null"
	_, name, err := producerService(cfg)
	require.NoError(t, err)
	assert.Equal(t, "serial", name)
}

func TestLogCloseReportsErrors(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	logClose("display bus", func() error { return errors.New("bus gone") })()
	assert.Contains(t, buf.String(), "parallax: display bus close: bus gone")

	buf.Reset()
	logClose("display bus", func() error { return nil })()
	assert.Empty(t, buf.String())
}
