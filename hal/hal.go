package hal

import (
	"errors"
	"io"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
//
// Present pushes the buffer to the panel. On a bistable (e-paper style)
// panel this is the slow operation that leaves ghost pixels behind
// unless the previous content was cleared first.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// LEDStrip drives a chain of addressable RGB(W) LEDs.
//
// SendFrame takes one quad of raw color bytes per LED, in the strip's
// native byte order.
type LEDStrip interface {
	Enable()
	SendFrame(frame []byte) error
}

// DateTime is a structured wall-clock reading.
//
// Weekday runs 1=Sunday through 7=Saturday, matching the RTC's native
// numbering. YearDay runs 1 through 365 (366 in leap years).
type DateTime struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int
	YearDay int
}

// RTC is the real-time clock hardware.
//
// SetTimezone applies a POSIX TZ rule (or, on hosts, an IANA zone name)
// once; Now reports local time under that rule from then on.
type RTC interface {
	EpochSeconds() int64
	SetTimezone(rule string) error
	Now() DateTime
}

// Conn is a stream connection with a deadline, the least a dialed
// socket must offer. Both net.Conn and the lneto TCP conn satisfy it.
type Conn interface {
	io.ReadWriteCloser
	SetDeadline(t time.Time) error
}

// Net is the network connectivity collaborator.
//
// Connect is best-effort and may be slow; WaitReady reports whether the
// link came up. SyncTime triggers one network time synchronization and
// may block. DialTCP opens a stream to addr ("host:port") within
// timeout, for use by the pub/sub transport.
type Net interface {
	IsConnected() bool
	Connect()
	WaitReady() bool
	SyncTime() error
	DialTCP(addr string, timeout time.Duration) (Conn, error)
}

// Store is a read-only persisted key-value configuration source.
type Store interface {
	Get(namespace, key string) (string, bool)
}

// Time provides the base tick stream.
//
// One tick is one second; the tick loop drives both alert freshness
// checks and redraw decisions off this stream.
type Time interface {
	Ticks() <-chan uint64
}

// HAL provides the only contact point between the clock and the outside
// world.
type HAL interface {
	Logger() Logger
	Display() Display
	LEDs() LEDStrip
	RTC() RTC
	Net() Net
	Store() Store
	Time() Time
}
