//go:build !tinygo

package hal

import (
	"net"
	"time"
)

// hostNet rides the host's own network stack: the link is "up" once
// Connect has been called, and dialing delegates to net.DialTimeout.
type hostNet struct {
	connected bool
}

func (n *hostNet) IsConnected() bool { return n.connected }

func (n *hostNet) Connect() { n.connected = true }

func (n *hostNet) WaitReady() bool { return n.connected }

// SyncTime is a no-op on hosts; the OS clock is assumed correct.
func (n *hostNet) SyncTime() error { return nil }

func (n *hostNet) DialTCP(addr string, timeout time.Duration) (Conn, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return c, nil
}
