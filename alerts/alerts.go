// Package alerts maintains a best-effort subscription to one pub/sub
// topic and exposes the most recent message inside a bounded freshness
// window. Transport failures never propagate: every tick is a fresh
// chance to reconnect.
package alerts

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethulhu/sha2017-desk-clock/hal"
)

// Message is one inbound pub/sub message.
type Message struct {
	Topic   string
	Payload []byte
}

// Transport is the pub/sub client. CheckForMessage must not block
// beyond a short poll and reports at most one queued message.
type Transport interface {
	Connect() error
	Subscribe(topic string, qos uint8) error
	CheckForMessage() (Message, bool, error)
}

// Config tunes an alert Source.
type Config struct {
	// Topic to subscribe to.
	Topic string
	// Window is how long a received alert stays live. Zero means the
	// 10-second default.
	Window time.Duration
	// Now returns the current epoch seconds. Required.
	Now func() int64
}

const defaultWindow = 10 * time.Second

// Source buffers at most one live alert.
//
// The stored alert may be the empty string (a message that trimmed to
// nothing); it still occupies the freshness window but reads as
// no-alert.
type Source struct {
	tr    Transport
	net   hal.Net
	topic string
	// window and arrival timestamps are in whole seconds; the feed has
	// no sub-second precision requirements.
	window int64
	nowFn  func() int64

	state   ConnState
	alert   string
	alertAt int64
	live    bool
}

// New builds a Source and runs one connect+subscribe cycle against the
// transport. Any failure, including no network at all, is swallowed:
// the Source stays callable and retries on later polls.
func New(tr Transport, net hal.Net, cfg Config) *Source {
	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}
	s := &Source{
		tr:     tr,
		net:    net,
		topic:  cfg.Topic,
		window: int64(window / time.Second),
		nowFn:  cfg.Now,
	}
	s.reconnect()
	return s
}

// State reports the current connection state.
func (s *Source) State() ConnState { return s.state }

// Poll returns the live alert text, or "" when there is none.
//
// While an alert is inside its freshness window Poll performs no
// transport I/O at all. Once it expires the alert is cleared and the
// transport is checked exactly once for a replacement.
func (s *Source) Poll() string {
	now := s.nowFn()
	if s.live && now < s.alertAt+s.window {
		return s.alert
	}

	s.live = false
	s.alert = ""

	var (
		msg Message
		ok  bool
		err error
	)
	if s.state == StateConnected {
		msg, ok, err = s.tr.CheckForMessage()
	}

	var reconnect bool
	s.state, reconnect = transition(s.state, err)
	if reconnect {
		// Reconnect and try again next tick.
		s.reconnect()
		return ""
	}

	if !ok || msg.Topic != s.topic {
		return ""
	}
	if !utf8.Valid(msg.Payload) {
		// Malformed payloads are dropped, not fatal.
		return ""
	}

	s.alert = strings.TrimSpace(string(msg.Payload))
	s.alertAt = now
	s.live = true
	return s.alert
}

// reconnect runs one connect+subscribe cycle, swallowing failures.
func (s *Source) reconnect() {
	if !s.net.IsConnected() {
		s.net.Connect()
		if !s.net.WaitReady() {
			return
		}
	}
	if err := s.tr.Connect(); err != nil {
		return
	}
	if err := s.tr.Subscribe(s.topic, 1); err != nil {
		return
	}
	s.state = StateConnected
}
