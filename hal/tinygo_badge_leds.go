//go:build tinygo

package hal

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// badgeLEDStrip drives the SK6812 RGBW chain. The engine hands over raw
// 4-byte quads in strip order, so the frame goes to the wire untouched.
type badgeLEDStrip struct {
	pin machine.Pin
	dev ws2812.Device
}

func newBadgeLEDStrip(pin machine.Pin) *badgeLEDStrip {
	return &badgeLEDStrip{pin: pin}
}

func (l *badgeLEDStrip) Enable() {
	l.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.dev = ws2812.New(l.pin)
}

func (l *badgeLEDStrip) SendFrame(frame []byte) error {
	_, err := l.dev.Write(frame)
	return err
}
