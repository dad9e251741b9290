package mqttlink

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"

	"github.com/ethulhu/sha2017-desk-clock/hal"
)

type noDialer struct{}

func (noDialer) DialTCP(addr string, timeout time.Duration) (hal.Conn, error) {
	return nil, errors.New("dial refused")
}

func TestCheckForMessageWithoutSession(t *testing.T) {
	c := New(Config{ClientID: "t", ServerAddr: "broker:1883", Dialer: noDialer{}})

	if _, ok, err := c.CheckForMessage(); ok || err == nil {
		t.Fatalf("CheckForMessage() = (ok=%t, err=%v), want not-connected error", ok, err)
	}
}

func TestConnectSurfacesDialFailure(t *testing.T) {
	c := New(Config{ClientID: "t", ServerAddr: "broker:1883", Dialer: noDialer{}})

	if err := c.Connect(); err == nil {
		t.Fatal("Connect() err = nil, want dial error")
	}
}

func TestOnPubBuffersLatestMessage(t *testing.T) {
	c := New(Config{ClientID: "t", ServerAddr: "broker:1883", Dialer: noDialer{}})

	for _, payload := range []string{"first", "second"} {
		err := c.onPub(mqtt.Header{}, mqtt.VariablesPublish{
			TopicName: []byte("home/house/alert/info_string"),
		}, bytes.NewReader([]byte(payload)))
		if err != nil {
			t.Fatalf("onPub() err = %v, want nil", err)
		}
	}

	if !c.hasMsg {
		t.Fatal("hasMsg = false after publish")
	}
	if got := string(c.msg.Payload); got != "second" {
		t.Fatalf("buffered payload = %q, want the newer publish to win", got)
	}
	if c.msg.Topic != "home/house/alert/info_string" {
		t.Fatalf("buffered topic = %q", c.msg.Topic)
	}
}

func TestNextPacketIDSkipsZero(t *testing.T) {
	c := New(Config{ClientID: "t", ServerAddr: "broker:1883", Dialer: noDialer{}})

	c.packetID = ^uint16(0)
	if got := c.nextPacketID(); got == 0 {
		t.Fatal("nextPacketID() = 0, packet identifier zero is reserved")
	}
}

// scriptConn serves canned broker bytes, then keeps answering reads
// with a fixed error: os.ErrDeadlineExceeded for a broker that goes
// quiet, anything else for a dropped stream.
type scriptConn struct {
	script  []byte
	pos     int
	readErr error
	closed  bool
}

func (c *scriptConn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("read on closed conn")
	}
	if c.pos >= len(c.script) {
		return 0, c.readErr
	}
	n := copy(p, c.script[c.pos:])
	c.pos += n
	return n, nil
}

func (c *scriptConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, errors.New("write on closed conn")
	}
	return len(p), nil
}

func (c *scriptConn) Close() error {
	c.closed = true
	return nil
}

func (c *scriptConn) SetDeadline(time.Time) error { return nil }

type scriptDialer struct {
	conns []*scriptConn
	dials int
}

func (d *scriptDialer) DialTCP(addr string, timeout time.Duration) (hal.Conn, error) {
	if d.dials >= len(d.conns) {
		return nil, errors.New("no more scripted conns")
	}
	conn := d.conns[d.dials]
	d.dials++
	return conn, nil
}

// connack is the broker accepting a session.
func connack() []byte { return []byte{0x20, 0x02, 0x00, 0x00} }

func TestConnectRecoversAfterSubscribeTimeout(t *testing.T) {
	// The broker completes the handshake but never sends a SUBACK, so
	// Subscribe times out while the session itself is up. The next
	// Connect must tear that session down fully or the client can
	// never reconnect.
	broker := &scriptDialer{conns: []*scriptConn{
		{script: connack(), readErr: os.ErrDeadlineExceeded},
		{script: connack(), readErr: os.ErrDeadlineExceeded},
	}}
	c := New(Config{
		ClientID:   "t",
		ServerAddr: "broker:1883",
		Dialer:     broker,
		Timeout:    50 * time.Millisecond,
	})

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() err = %v, want nil", err)
	}
	if err := c.Subscribe("home/house/alert/info_string", 1); err == nil {
		t.Fatal("Subscribe() err = nil, want error with no SUBACK")
	}

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() after failed subscribe err = %v, want a fresh session", err)
	}
	if !broker.conns[0].closed {
		t.Fatal("first conn left open after reconnect")
	}
	if broker.dials != 2 {
		t.Fatalf("dials = %d, want 2", broker.dials)
	}
}

func TestConnectRecoversAfterTransportError(t *testing.T) {
	broker := &scriptDialer{conns: []*scriptConn{
		{script: connack(), readErr: errors.New("connection reset")},
		{script: connack(), readErr: os.ErrDeadlineExceeded},
	}}
	c := New(Config{
		ClientID:   "t",
		ServerAddr: "broker:1883",
		Dialer:     broker,
		Timeout:    50 * time.Millisecond,
	})

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() err = %v, want nil", err)
	}
	if _, ok, err := c.CheckForMessage(); ok || err == nil {
		t.Fatalf("CheckForMessage() = (ok=%t, err=%v), want transport error", ok, err)
	}

	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() after transport error err = %v, want a fresh session", err)
	}
	if !broker.conns[0].closed {
		t.Fatal("first conn left open after reconnect")
	}
}

func TestIsTimeout(t *testing.T) {
	if !isTimeout(os.ErrDeadlineExceeded) {
		t.Error("isTimeout(os.ErrDeadlineExceeded) = false, want true")
	}
	if isTimeout(errors.New("connection reset")) {
		t.Error("isTimeout(generic error) = true, want false")
	}
}
