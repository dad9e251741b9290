// Package mqttlink implements the alert feed's Transport over MQTT,
// using the alloc-friendly natiu-mqtt client so the same code runs on
// the badge and on hosts.
package mqttlink

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"

	"github.com/ethulhu/sha2017-desk-clock/alerts"
	"github.com/ethulhu/sha2017-desk-clock/hal"
)

// Dialer opens the stream the MQTT session rides on. hal.Net satisfies
// it on every platform.
type Dialer interface {
	DialTCP(addr string, timeout time.Duration) (hal.Conn, error)
}

// Config describes the broker session.
type Config struct {
	// ClientID identifies this client to the broker.
	ClientID string
	// ServerAddr is the broker's "host:port" address.
	ServerAddr string
	// Dialer opens the TCP stream. Required.
	Dialer Dialer
	// Logger for session events. Nil discards.
	Logger *slog.Logger
	// Timeout bounds connect, subscribe, and teardown. Zero means the
	// 5-second default.
	Timeout time.Duration
	// BufferSize is the decoder's scratch buffer. Zero means 4 KiB.
	BufferSize int
}

const (
	defaultTimeout = 5 * time.Second
	defaultBufSize = 4096
	// pollWindow bounds one CheckForMessage read. Long enough for a
	// queued packet to arrive off the wire, short next to the 1-second
	// tick budget.
	pollWindow = 50 * time.Millisecond
)

// Client is an MQTT-backed alerts.Transport. It is not safe for
// concurrent use; the tick loop is its only caller.
type Client struct {
	id      string
	addr    string
	dial    Dialer
	log     *slog.Logger
	timeout time.Duration

	cli  *mqtt.Client
	conn hal.Conn

	packetID uint16

	// At most one inbound message is buffered between polls; a newer
	// publish overwrites an unread one.
	msg    alerts.Message
	hasMsg bool
}

// New builds a Client. No I/O happens until Connect.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(127),
		}))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}

	c := &Client{
		id:      cfg.ClientID,
		addr:    cfg.ServerAddr,
		dial:    cfg.Dialer,
		log:     log,
		timeout: timeout,
	}
	c.cli = mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, bufSize)},
		OnPub:   c.onPub,
	})
	return c
}

func (c *Client) onPub(_ mqtt.Header, varPub mqtt.VariablesPublish, r io.Reader) error {
	payload, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c.msg = alerts.Message{Topic: string(varPub.TopicName), Payload: payload}
	c.hasMsg = true
	return nil
}

// Connect dials the broker and runs the MQTT handshake. Any previous
// session is torn down first.
func (c *Client) Connect() error {
	c.dropConn()

	conn, err := c.dial.DialTCP(c.addr, c.timeout)
	if err != nil {
		c.log.Error("mqtt:dial-failed", slog.String("err", err.Error()))
		return err
	}

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(c.id))

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := c.cli.Connect(ctx, conn, &varconn); err != nil {
		c.log.Error("mqtt:connect-failed", slog.String("err", err.Error()))
		conn.Close()
		return err
	}

	c.conn = conn
	c.log.Info("mqtt:connected", slog.String("addr", c.addr))
	return nil
}

// Subscribe registers interest in topic at the given QoS level.
func (c *Client) Subscribe(topic string, qos uint8) error {
	if c.conn == nil {
		return errNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	c.conn.SetDeadline(time.Now().Add(c.timeout))
	err := c.cli.Subscribe(ctx, mqtt.VariablesSubscribe{
		PacketIdentifier: c.nextPacketID(),
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(topic), QoS: mqtt.QoSLevel(qos)},
		},
	})
	if err != nil {
		c.log.Error("mqtt:subscribe-failed",
			slog.String("topic", topic), slog.String("err", err.Error()))
		return err
	}
	c.log.Info("mqtt:subscribed", slog.String("topic", topic))
	return nil
}

var errNotConnected = errors.New("mqttlink: not connected")

// CheckForMessage performs one bounded read of the session. A deadline
// expiry means no message is queued; any other failure is a transport
// error and the session is dropped so the next Connect starts clean.
func (c *Client) CheckForMessage() (alerts.Message, bool, error) {
	if c.conn == nil || !c.cli.IsConnected() {
		return alerts.Message{}, false, errNotConnected
	}

	c.hasMsg = false
	c.conn.SetDeadline(time.Now().Add(pollWindow))
	if err := c.cli.HandleNext(); err != nil && !isTimeout(err) {
		c.log.Error("mqtt:handle-next-failed", slog.String("err", err.Error()))
		c.dropConn()
		return alerts.Message{}, false, err
	}
	if !c.hasMsg {
		return alerts.Message{}, false, nil
	}
	return c.msg, true, nil
}

var errReconnecting = errors.New("mqttlink: reconnecting")

func (c *Client) dropConn() {
	if c.cli.IsConnected() {
		// natiu refuses a new handshake while it still believes the
		// old session is up, e.g. after a subscribe timeout.
		_ = c.cli.Disconnect(errReconnecting)
	}
	if c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
}

func (c *Client) nextPacketID() uint16 {
	c.packetID++
	if c.packetID == 0 {
		c.packetID = 1
	}
	return c.packetID
}

// isTimeout reports whether err is a read-deadline expiry rather than a
// broken session.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
