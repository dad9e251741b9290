package display

import (
	"image/color"

	"tinygo.org/x/tinyfont"

	"github.com/ethulhu/sha2017-desk-clock/hal"
)

// Font identifies one of the renderer's faces.
type Font uint8

const (
	// FontBody is the small monospace-ish face everything is set in,
	// scaled up per draw call like the panel's native bitmap fonts.
	FontBody Font = iota
)

// Renderer is the text rendering backend. Measurements are unscaled;
// callers multiply by the scale they intend to draw at.
type Renderer interface {
	Width() int
	Height() int
	Clear(c color.RGBA)
	Flush() error
	DrawText(x, y int, text string, c color.RGBA, f Font, scaleX, scaleY int)
	TextWidth(text string, f Font) int
	TextHeight(text string, f Font) int
}

type fontFace struct {
	face *tinyfont.Font
}

var fontFaces = map[Font]fontFace{
	FontBody: {face: &tinyfont.Org01},
}

// fbRenderer draws through tinyfont onto a hal.Framebuffer.
type fbRenderer struct {
	fb hal.Framebuffer
}

// NewRenderer returns a Renderer over fb.
func NewRenderer(fb hal.Framebuffer) Renderer {
	return &fbRenderer{fb: fb}
}

func (r *fbRenderer) Width() int  { return r.fb.Width() }
func (r *fbRenderer) Height() int { return r.fb.Height() }

func (r *fbRenderer) Clear(c color.RGBA) {
	r.fb.ClearRGB(c.R, c.G, c.B)
}

func (r *fbRenderer) Flush() error {
	return r.fb.Present()
}

func (r *fbRenderer) DrawText(x, y int, text string, c color.RGBA, f Font, scaleX, scaleY int) {
	if scaleX < 1 {
		scaleX = 1
	}
	if scaleY < 1 {
		scaleY = 1
	}
	face := fontFaces[f].face
	d := &scaledDisplay{fb: r.fb, scaleX: scaleX, scaleY: scaleY, offX: x, offY: y}
	// tinyfont wants the baseline; x/y address the glyph box's top-left.
	tinyfont.WriteLine(d, face, 0, int16(face.YAdvance), text, c)
}

func (r *fbRenderer) TextWidth(text string, f Font) int {
	_, outbox := tinyfont.LineWidth(fontFaces[f].face, text)
	return int(outbox)
}

func (r *fbRenderer) TextHeight(text string, f Font) int {
	return int(fontFaces[f].face.YAdvance)
}

// scaledDisplay adapts a framebuffer into a drivers.Displayer whose
// logical pixels are scaleX x scaleY blocks anchored at (offX, offY).
// Font glyphs drawn through it come out enlarged, the way the badge's
// native display API scales its bitmap fonts.
type scaledDisplay struct {
	fb             hal.Framebuffer
	scaleX, scaleY int
	offX, offY     int
}

func (d *scaledDisplay) Size() (x, y int16) {
	return int16(d.fb.Width() / d.scaleX), int16(d.fb.Height() / d.scaleY)
}

func (d *scaledDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}

	w := d.fb.Width()
	h := d.fb.Height()
	stride := d.fb.StrideBytes()
	px := d.offX + int(x)*d.scaleX
	py := d.offY + int(y)*d.scaleY

	pixel := rgb565From888(c.R, c.G, c.B)
	for dy := 0; dy < d.scaleY; dy++ {
		iy := py + dy
		if iy < 0 || iy >= h {
			continue
		}
		row := iy * stride
		for dx := 0; dx < d.scaleX; dx++ {
			ix := px + dx
			if ix < 0 || ix >= w {
				continue
			}
			off := row + ix*2
			if off < 0 || off+1 >= len(buf) {
				continue
			}
			buf[off] = byte(pixel)
			buf[off+1] = byte(pixel >> 8)
		}
	}
}

func (d *scaledDisplay) Display() error { return nil }

func rgb565From888(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}
