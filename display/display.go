// Package display owns the screen and the LED strip. Each tick it
// reconciles what the panel currently shows against what it should
// show, redrawing as little as possible: the panel is a slow bistable
// display that leaves ghost pixels behind unless it gets a full clear
// before new content.
package display

import (
	"fmt"
	"image/color"

	"github.com/ethulhu/sha2017-desk-clock/hal"
)

var (
	colorBlack = color.RGBA{A: 0xFF}
	colorWhite = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

const (
	// timeScale and bodyScale enlarge the body face for the clock
	// digits and everything else respectively.
	timeScale = 5
	bodyScale = 3

	// bottomMargin keeps the date clear of the panel's last rows,
	// which clip on the hardware.
	bottomMargin = 2

	// LED frames carry one raw GRBW quad per LED.
	ledQuadSize = 4
)

var weekdayNames = map[int]string{
	1: "Sunday",
	2: "Monday",
	3: "Tuesday",
	4: "Wednesday",
	5: "Thursday",
	6: "Friday",
	7: "Saturday",
}

// Engine decides, tick by tick, what to redraw and which LED pattern to
// show. It keeps the last-rendered strings so unchanged content costs
// no framebuffer traffic at all.
type Engine struct {
	r    Renderer
	leds hal.LEDStrip

	offFrame       []byte
	attentionFrame []byte

	lastAlert string
	lastDate  string
	lastTime  string
	ledsOn    bool
}

// NewEngine wires the renderer and LED strip and enables the strip.
func NewEngine(r Renderer, leds hal.LEDStrip, ledCount int) *Engine {
	leds.Enable()
	e := &Engine{
		r:              r,
		leds:           leds,
		offFrame:       make([]byte, ledCount*ledQuadSize),
		attentionFrame: make([]byte, ledCount*ledQuadSize),
	}
	for i := 0; i < ledCount; i++ {
		// Dim pink: G=0, R=0x10, B=0x10, W=0.
		e.attentionFrame[i*ledQuadSize+1] = 0x10
		e.attentionFrame[i*ledQuadSize+2] = 0x10
	}
	return e
}

// Render draws either the alert, if one is live, or the clock face.
// An empty alert string means no alert.
//
// A full clear+flush happens exactly when entering an alert, when
// leaving one, and when the date changes; every other tick draws
// incrementally or not at all.
func (e *Engine) Render(alert string, dt hal.DateTime) {
	if alert != "" {
		e.renderAlert(alert)
		return
	}
	e.renderClock(dt)
}

func (e *Engine) renderAlert(alert string) {
	if alert == e.lastAlert {
		// Same alert as last tick: leave the panel alone and blink.
		if e.ledsOn {
			e.sendLEDs(e.offFrame, false)
		} else {
			e.sendLEDs(e.attentionFrame, true)
		}
		return
	}

	e.lastAlert = alert
	// Forget the time string so the switch back to clock mode redraws.
	e.lastTime = ""

	// Clear the screen to prevent ghosting.
	e.r.Clear(colorBlack)
	e.r.Flush()

	e.r.Clear(colorWhite)

	width := e.r.Width()
	measure := func(s string) int {
		return e.r.TextWidth(s, FontBody) * bodyScale
	}
	y := 0
	for _, line := range wrapWords(alert, measure, width) {
		e.r.DrawText(0, y, line, colorBlack, FontBody, bodyScale, bodyScale)
		lineHeight := e.r.TextHeight(line, FontBody) * bodyScale
		y += ceilMul(lineHeight, 14, 10) // 1.4x leaves inter-line spacing.
	}
	e.r.Flush()
}

func (e *Engine) renderClock(dt hal.DateTime) {
	timeStr := fmt.Sprintf("%02d:%02d", dt.Hour, dt.Minute)
	dateStr := weekdayNames[dt.Weekday]

	if timeStr == e.lastTime {
		// Steady state: same minute, same mode, nothing to do.
		return
	}

	if e.lastAlert != "" || dateStr != e.lastDate {
		// We've come out of an alert or the date changed, so clear the
		// screen to prevent ghosting.
		e.r.Clear(colorBlack)
		e.r.Flush()
	}

	e.lastAlert = ""
	e.lastDate = dateStr
	e.lastTime = timeStr
	e.sendLEDs(e.offFrame, false)

	e.r.Clear(colorWhite)
	e.r.DrawText(0, 0, timeStr, colorBlack, FontBody, timeScale, timeScale)

	bottom := e.r.Height() - bottomMargin
	dateY := bottom - e.r.TextHeight(dateStr, FontBody)*bodyScale
	e.r.DrawText(0, dateY, dateStr, colorBlack, FontBody, bodyScale, bodyScale)
	e.r.Flush()
}

func (e *Engine) sendLEDs(frame []byte, on bool) {
	// A failed LED write is invisible anyway; the next tick retries.
	_ = e.leds.SendFrame(frame)
	e.ledsOn = on
}

// ceilMul returns ceil(v * num / den) for positive inputs.
func ceilMul(v, num, den int) int {
	return (v*num + den - 1) / den
}
