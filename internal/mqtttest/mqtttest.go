// Package mqtttest provides an in-memory mqtt.Client for tests. Published
// messages are recorded and routed to matching subscriptions synchronously.
package mqtttest

import (
	"errors"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Token is an already completed token.
type Token struct {
	Err error
}

func (t *Token) Wait() bool                       { return true }
func (t *Token) WaitTimeout(_ time.Duration) bool { return true }
func (t *Token) Error() error                     { return t.Err }

func (t *Token) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Message is a received message.
type Message struct {
	TopicName string
	Body      []byte
	Retain    bool
}

func (m *Message) Duplicate() bool   { return false }
func (m *Message) Qos() byte         { return 0 }
func (m *Message) Retained() bool    { return m.Retain }
func (m *Message) Topic() string     { return m.TopicName }
func (m *Message) MessageID() uint16 { return 0 }
func (m *Message) Payload() []byte   { return m.Body }
func (m *Message) Ack()              {}

// ErrRefused is returned by a Client with Refuse set.
var ErrRefused = errors.New("mqtttest: refused")

// Client is a fake broker connection. Topics match exactly.
type Client struct {
	// Refuse makes Connect, Subscribe and Publish fail.
	Refuse bool

	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published []Message
	connected bool
}

var _ mqtt.Client = (*Client)(nil)

// NewClient returns a connected fake client.
func NewClient() *Client {
	return &Client{handlers: make(map[string]mqtt.MessageHandler), connected: true}
}

func (c *Client) IsConnected() bool      { return c.connected }
func (c *Client) IsConnectionOpen() bool { return c.connected }

func (c *Client) Connect() mqtt.Token {
	if c.Refuse {
		return &Token{Err: ErrRefused}
	}
	c.connected = true
	return &Token{}
}

func (c *Client) Disconnect(_ uint) { c.connected = false }

func (c *Client) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	if c.Refuse {
		return &Token{Err: ErrRefused}
	}
	var body []byte
	switch p := payload.(type) {
	case []byte:
		body = p
	case string:
		body = []byte(p)
	}
	msg := Message{TopicName: topic, Body: body, Retain: retained}

	c.mu.Lock()
	c.published = append(c.published, msg)
	h := c.handlers[topic]
	c.mu.Unlock()

	if h != nil {
		h(c, &msg)
	}
	return &Token{}
}

func (c *Client) Subscribe(topic string, _ byte, callback mqtt.MessageHandler) mqtt.Token {
	if c.Refuse {
		return &Token{Err: ErrRefused}
	}
	c.mu.Lock()
	c.handlers[topic] = callback
	c.mu.Unlock()
	return &Token{}
}

func (c *Client) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	for topic := range filters {
		if t := c.Subscribe(topic, 0, callback); t.Error() != nil {
			return t
		}
	}
	return &Token{}
}

func (c *Client) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range topics {
		delete(c.handlers, topic)
	}
	return &Token{}
}

func (c *Client) AddRoute(topic string, callback mqtt.MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = callback
}

func (c *Client) OptionsReader() mqtt.ClientOptionsReader {
	return mqtt.ClientOptionsReader{}
}

// Subscribed reports whether a handler is registered for topic.
func (c *Client) Subscribed(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.handlers[topic]
	return ok
}

// Published returns a copy of every message published so far.
func (c *Client) Published() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.published...)
}
