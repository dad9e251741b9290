// Package app composes the clock, the alert source, and the display
// engine into the badge's 1 Hz loop.
package app

import (
	"github.com/ethulhu/sha2017-desk-clock/alerts"
	"github.com/ethulhu/sha2017-desk-clock/alerts/mqttlink"
	"github.com/ethulhu/sha2017-desk-clock/clock"
	"github.com/ethulhu/sha2017-desk-clock/display"
	"github.com/ethulhu/sha2017-desk-clock/hal"
)

// System is the assembled badge.
type System struct {
	h   hal.HAL
	clk *clock.Source
	src *alerts.Source
	eng *display.Engine
}

// New assembles the system on h. Clock setup failures are fatal; a
// broker that cannot be reached is not, the alert source keeps retrying
// on its own.
func New(h hal.HAL, cfg Config) (*System, error) {
	log := h.Logger()

	log.WriteLineString("setting up WiFi ...")
	// Best-effort: the clock sync and broker session retry on their own
	// if the link is not up yet.
	h.Net().Connect()

	log.WriteLineString("setting up RTC ...")
	clk, err := clock.New(h.RTC(), h.Net(), h.Store(), cfg.Timezone)
	if err != nil {
		return nil, err
	}

	log.WriteLineString("setting up MQTT ...")
	tr := mqttlink.New(mqttlink.Config{
		ClientID:   cfg.ClientID,
		ServerAddr: cfg.ServerAddr,
		Dialer:     h.Net(),
		Logger:     cfg.Logger,
	})
	src := alerts.New(tr, h.Net(), alerts.Config{
		Topic:  cfg.Topic,
		Window: cfg.AlertWindow,
		Now:    h.RTC().EpochSeconds,
	})

	log.WriteLineString("setting up display ...")
	eng := display.NewEngine(display.NewRenderer(h.Display().Framebuffer()), h.LEDs(), cfg.LEDCount)

	return &System{h: h, clk: clk, src: src, eng: eng}, nil
}

// Tick runs one reconcile pass: poll for a live alert, then render it
// or the clock face.
func (s *System) Tick() {
	s.eng.Render(s.src.Poll(), s.clk.Now())
}

// Step drains at most one pending tick. Host runners call it every
// frame; frames with no pending tick do nothing.
func (s *System) Step() error {
	select {
	case <-s.h.Time().Ticks():
		s.Tick()
	default:
	}
	return nil
}

// Run assembles the system and blocks forever on the tick stream. It
// is the device entrypoint; setup failures halt with a log line.
func Run(h hal.HAL, cfg Config) {
	sys, err := New(h, cfg)
	if err != nil {
		h.Logger().WriteLineString("fatal: " + err.Error())
		select {}
	}
	for range h.Time().Ticks() {
		sys.Tick()
	}
}
