//go:build !tinygo

package hal

import (
	"encoding/hex"
	"fmt"
	"os"
	"sync"
)

// HostConfig seeds the simulated hardware.
type HostConfig struct {
	// Width and Height of the simulated panel in pixels.
	Width  int
	Height int
	// Timezone optionally seeds the persisted "system/timezone" key,
	// standing in for the badge's NVS partition.
	Timezone string
	// StartEpoch, when nonzero, makes the simulated RTC start at the
	// given unix time instead of the host clock (useful for exercising
	// the unset-RTC sync path).
	StartEpoch int64
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	leds   *hostLEDStrip
	rtc    *hostClock
	net    *hostNet
	store  *hostStore
	t      *hostTime
}

// New returns a host HAL implementation.
func New() HAL { return NewWithConfig(HostConfig{}) }

// NewWithConfig returns a host HAL with simulated hardware per cfg.
func NewWithConfig(cfg HostConfig) HAL {
	if cfg.Width <= 0 {
		cfg.Width = 296
	}
	if cfg.Height <= 0 {
		cfg.Height = 128
	}
	logger := &hostLogger{w: os.Stdout}
	values := map[string]string{}
	if cfg.Timezone != "" {
		values["system/timezone"] = cfg.Timezone
	}
	return &hostHAL{
		logger: logger,
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		leds:   &hostLEDStrip{logger: logger},
		rtc:    newHostClock(cfg.StartEpoch),
		net:    &hostNet{},
		store:  &hostStore{values: values},
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) LEDs() LEDStrip   { return h.leds }
func (h *hostHAL) RTC() RTC         { return h.rtc }
func (h *hostHAL) Net() Net         { return h.net }
func (h *hostHAL) Store() Store     { return h.store }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostLEDStrip logs LED frames instead of lighting anything up.
type hostLEDStrip struct {
	mu     sync.Mutex
	last   string
	logger *hostLogger
}

func (l *hostLEDStrip) Enable() {
	l.logger.WriteLineString("leds: enabled")
}

func (l *hostLEDStrip) SendFrame(frame []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := hex.EncodeToString(frame)
	if s == l.last {
		return nil
	}
	l.last = s
	l.logger.WriteLineString("leds: " + s)
	return nil
}

type hostStore struct {
	values map[string]string
}

func (s *hostStore) Get(namespace, key string) (string, bool) {
	v, ok := s.values[namespace+"/"+key]
	return v, ok
}
