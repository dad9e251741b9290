//go:build tinygo

package hal

import (
	"machine"
	"time"
)

type badgeHAL struct {
	logger serialLogger
	fb     *badgeFramebuffer
	leds   *badgeLEDStrip
	rtc    *badgeClock
	net    *picoNet
	store  nullStore
	t      *tinyGoTime
}

// New returns the Pico W badge HAL.
//
// Wiring follows the Badger2040 layout: e-paper on SPI0 (SCK GP18,
// MOSI GP19, CS GP17, DC GP20, RST GP21, BUSY GP26), WS2812 strip data
// on GP15.
func New() HAL {
	return &badgeHAL{
		logger: serialLogger{},
		fb:     newBadgeFramebuffer(),
		leds:   newBadgeLEDStrip(machine.GP15),
		rtc:    newBadgeClock(),
		net:    newPicoNet(),
		t:      newTinyGoTime(),
	}
}

func (h *badgeHAL) Logger() Logger   { return h.logger }
func (h *badgeHAL) Display() Display { return badgeDisplay{fb: h.fb} }
func (h *badgeHAL) LEDs() LEDStrip   { return h.leds }
func (h *badgeHAL) RTC() RTC         { return h.rtc }
func (h *badgeHAL) Net() Net         { return h.net }
func (h *badgeHAL) Store() Store     { return h.store }
func (h *badgeHAL) Time() Time       { return h.t }

type badgeDisplay struct {
	fb *badgeFramebuffer
}

func (d badgeDisplay) Framebuffer() Framebuffer { return d.fb }

type serialLogger struct{}

func (serialLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		machine.Serial.WriteByte(s[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

func (serialLogger) WriteLineBytes(b []byte) {
	for i := 0; i < len(b); i++ {
		machine.Serial.WriteByte(b[i])
	}
	machine.Serial.WriteByte('\r')
	machine.Serial.WriteByte('\n')
}

// nullStore stands in for persisted configuration until the badge grows
// a flash-backed settings partition; every lookup falls through to the
// compiled-in defaults.
type nullStore struct{}

func (nullStore) Get(namespace, key string) (string, bool) { return "", false }

type tinyGoTime struct {
	ch  chan uint64
	seq uint64
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16)}
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }
