//go:build tinygo

package hal

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/uc8151"
)

const (
	panelWidth  = 296
	panelHeight = 128
)

// badgeFramebuffer shadows the 1-bit e-paper panel with an RGB565
// buffer so the drawing side sees the same Framebuffer contract on
// every platform. Present thresholds the shadow buffer onto the panel
// and triggers the (slow, blocking) refresh.
type badgeFramebuffer struct {
	panel  uc8151.Device
	stride int
	buf    []byte
}

func newBadgeFramebuffer() *badgeFramebuffer {
	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 12_000_000,
		SCK:       machine.GP18,
		SDO:       machine.GP19,
	})
	panel := uc8151.New(machine.SPI0, machine.GP17, machine.GP20, machine.GP21, machine.GP26)
	panel.Configure(uc8151.Config{
		Rotation: uc8151.ROTATION_270,
		Speed:    uc8151.MEDIUM,
		Blocking: true,
	})

	stride := panelWidth * 2
	return &badgeFramebuffer{
		panel:  panel,
		stride: stride,
		buf:    make([]byte, stride*panelHeight),
	}
}

func (f *badgeFramebuffer) Width() int          { return panelWidth }
func (f *badgeFramebuffer) Height() int         { return panelHeight }
func (f *badgeFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *badgeFramebuffer) StrideBytes() int    { return f.stride }
func (f *badgeFramebuffer) Buffer() []byte      { return f.buf }

func (f *badgeFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *badgeFramebuffer) Present() error {
	black := color.RGBA{A: 0xFF}
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	for y := 0; y < panelHeight; y++ {
		row := y * f.stride
		for x := 0; x < panelWidth; x++ {
			o := row + x*2
			p := uint16(f.buf[o]) | uint16(f.buf[o+1])<<8
			if luma565(p) < 0x80 {
				f.panel.SetPixel(int16(x), int16(y), black)
			} else {
				f.panel.SetPixel(int16(x), int16(y), white)
			}
		}
	}
	return f.panel.Display()
}
