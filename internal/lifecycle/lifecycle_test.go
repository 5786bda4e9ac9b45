package lifecycle

import (
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/parallax/internal/mqtttest"
)

type journal struct {
	name string
	log  *[]string
}

func (j journal) OnResume()  { *j.log = append(*j.log, j.name+":resume") }
func (j journal) OnPause()   { *j.log = append(*j.log, j.name+":pause") }
func (j journal) OnDestroy() { *j.log = append(*j.log, j.name+":destroy") }

func TestParseEvent(t *testing.T) {
	for _, e := range []Event{Resume, Pause, Destroy} {
		got, err := ParseEvent(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}

	got, err := ParseEvent("  PAUSE\n")
	require.NoError(t, err)
	assert.Equal(t, Pause, got)

	_, err = ParseEvent("stop")
	assert.Error(t, err)
	assert.Equal(t, "event(42)", Event(42).String())
}

func TestRegistryDispatchesInOrder(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.AddObserver(journal{"a", &log})
	r.AddObserver(journal{"b", &log})

	r.Handle(Resume)
	r.Handle(Pause)

	assert.Equal(t, []string{"a:resume", "b:resume", "a:pause", "b:pause"}, log)
}

func TestRegistryIgnoresEverythingAfterDestroy(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.AddObserver(journal{"a", &log})

	r.Handle(Destroy)
	select {
	case <-r.Done():
	default:
		t.Fatal("Done not closed after Destroy")
	}

	r.Handle(Resume)
	r.Handle(Destroy)
	r.AddObserver(journal{"late", &log})
	r.Handle(Pause)

	assert.Equal(t, []string{"a:destroy"}, log)
}

func TestSubscribeMQTT(t *testing.T) {
	var log []string
	r := NewRegistry()
	r.AddObserver(journal{"a", &log})

	client := mqtttest.NewClient()
	unsubscribe, err := SubscribeMQTT(client, "parallax/lifecycle", r)
	require.NoError(t, err)

	client.Publish("parallax/lifecycle", 0, false, []byte("resume"))
	client.Publish("parallax/lifecycle", 0, false, []byte("bogus"))
	client.Publish("parallax/lifecycle", 0, false, []byte("pause"))

	assert.Equal(t, []string{"a:resume", "a:pause"}, log)

	unsubscribe()
	assert.False(t, client.Subscribed("parallax/lifecycle"))
}

func TestSubscribeMQTTError(t *testing.T) {
	client := mqtttest.NewClient()
	client.Refuse = true
	_, err := SubscribeMQTT(client, "parallax/lifecycle", NewRegistry())
	assert.ErrorIs(t, err, mqtttest.ErrRefused)
}

func TestSignalEvents(t *testing.T) {
	assert.Equal(t, []Event{Pause}, signalEvents(syscall.SIGUSR1))
	assert.Equal(t, []Event{Resume}, signalEvents(syscall.SIGUSR2))
	assert.Equal(t, []Event{Pause, Destroy}, signalEvents(os.Interrupt))
	assert.Equal(t, []Event{Pause, Destroy}, signalEvents(syscall.SIGTERM))
	assert.Nil(t, signalEvents(syscall.SIGHUP))
}
