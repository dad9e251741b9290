//go:build tinygo

package hal

import (
	"errors"
	"log/slog"
	"machine"
	"net/netip"
	"time"

	"github.com/soypat/cyw43439"
	"github.com/soypat/lneto/tcp"
	"github.com/soypat/lneto/x/xnet"
)

// WiFi credentials are injected at build time via linker flags:
//
//	tinygo flash -ldflags "-X '<module>/hal.ssid=...' -X '<module>/hal.pass=...'"
var (
	ssid string
	pass string
)

const (
	netHostname  = "sha2017-badge"
	netMTU       = cyw43439.MTU
	tcpBufSize   = 2030 // MTU - ethhdr - iphdr - tcphdr
	joinAttempts = 3
	pollTime     = 5 * time.Millisecond
)

// picoNet brings up the CYW43439 WiFi chip and an lneto TCP/IP stack.
// Connect is best-effort and bounded; the tick loop retries it by
// calling Connect again on later ticks.
type picoNet struct {
	log       *slog.Logger
	dev       *cyw43439.Device
	stack     xnet.StackAsync
	sendbuf   []byte
	connected bool
	pumping   bool
}

func newPicoNet() *picoNet {
	return &picoNet{
		log: slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})),
		sendbuf: make([]byte, netMTU),
	}
}

func (n *picoNet) IsConnected() bool { return n.connected }

func (n *picoNet) WaitReady() bool { return n.connected }

func (n *picoNet) Connect() {
	if n.connected {
		return
	}
	if err := n.bringUp(); err != nil {
		n.log.Error("wifi:bring-up-failed", slog.String("err", err.Error()))
		return
	}
	n.connected = true
}

func (n *picoNet) bringUp() error {
	if n.dev == nil {
		dev := cyw43439.NewPicoWDevice()
		dev.SetLogger(n.log)
		if err := dev.Init(cyw43439.DefaultWifiConfig()); err != nil {
			return errors.New("wifi init failed:" + err.Error())
		}
		n.dev = dev
	}

	var err error
	for i := 0; i < joinAttempts; i++ {
		err = n.dev.JoinWPA2(ssid, pass)
		if err == nil {
			break
		}
		n.log.Error("wifi join failed", slog.String("err", err.Error()))
		time.Sleep(time.Second)
	}
	if err != nil {
		return errors.New("wifi join failed:" + err.Error())
	}

	mac, err := n.dev.HardwareAddr6()
	if err != nil {
		return errors.New("get hardware address:" + err.Error())
	}

	err = n.stack.Reset(xnet.StackConfig{
		Hostname:        netHostname,
		MaxTCPConns:     1,
		RandSeed:        time.Now().UnixNano(),
		HardwareAddress: mac,
		MTU:             netMTU,
	})
	if err != nil {
		return errors.New("stack reset:" + err.Error())
	}
	n.dev.RecvEthHandle(func(pkt []byte) error {
		return n.stack.Demux(pkt, 0)
	})

	if !n.pumping {
		n.pumping = true
		go n.pump()
	}

	rstack := n.stack.StackRetrying(pollTime)
	results, err := rstack.DoDHCPv4([4]byte{}, 3*time.Second, 3)
	if err != nil {
		return errors.New("dhcp failed:" + err.Error())
	}
	if err := n.stack.AssimilateDHCPResults(results); err != nil {
		return errors.New("assimilate dhcp:" + err.Error())
	}
	gatewayHW, err := rstack.DoResolveHardwareAddress6(results.Router, 500*time.Millisecond, 4)
	if err != nil {
		return errors.New("resolve gateway:" + err.Error())
	}
	n.stack.SetGateway6(gatewayHW)

	n.log.Info("wifi up", slog.String("ip", results.AssignedAddr.String()))
	return nil
}

// pump moves packets between the WiFi chip and the stack.
func (n *picoNet) pump() {
	for {
		_, errRecv := n.dev.PollOne()
		if errRecv != nil {
			n.log.Error("net:poll", slog.String("err", errRecv.Error()))
		}
		plen, err := n.stack.Encapsulate(n.sendbuf, -1, 0)
		if err != nil {
			n.log.Error("net:encapsulate", slog.String("err", err.Error()))
		}
		if plen > 0 {
			if err := n.dev.SendEth(n.sendbuf[:plen]); err != nil {
				n.log.Error("net:send", slog.String("err", err.Error()))
			}
		}
		time.Sleep(pollTime)
	}
}

// SyncTime is not wired yet.
//
// TODO: add an NTP exchange once lneto's stack exposes a UDP client;
// until then the badge keeps whatever time the runtime booted with.
func (n *picoNet) SyncTime() error {
	return ErrNotImplemented
}

func (n *picoNet) DialTCP(addr string, timeout time.Duration) (Conn, error) {
	if !n.connected {
		return nil, errors.New("network down")
	}

	host, portStr, err := splitHostPort(addr)
	if err != nil {
		return nil, errors.New("parsing host:port from " + addr + ": " + err.Error())
	}
	port := parsePort(portStr)
	if port == 0 {
		return nil, errors.New("bad port in " + addr)
	}

	rstack := n.stack.StackRetrying(pollTime)
	var remote netip.Addr
	if parsed, err := netip.ParseAddr(host); err == nil {
		remote = parsed
	} else {
		addrs, err := rstack.DoLookupIP(host, timeout, 3)
		if err != nil {
			return nil, errors.New("dns lookup for " + host + ": " + err.Error())
		}
		if len(addrs) == 0 {
			return nil, errors.New("dns lookup for " + host + ": no addresses returned")
		}
		remote = addrs[0]
	}

	conn := new(tcp.Conn)
	err = conn.Configure(tcp.ConnConfig{
		RxBuf:             make([]byte, tcpBufSize),
		TxBuf:             make([]byte, tcpBufSize),
		TxPacketQueueSize: 3,
	})
	if err != nil {
		return nil, errors.New("tcp configure:" + err.Error())
	}

	localPort := uint16(n.stack.Prand32()>>17) + 1024
	err = rstack.DoDialTCP(conn, localPort, netip.AddrPortFrom(remote, port), timeout, 3)
	if err != nil {
		conn.Abort()
		return nil, errors.New("tcp dial:" + err.Error())
	}
	return conn, nil
}

// splitHostPort splits a host:port string into separate host and port
// components. The last colon wins so IPv6 literals keep working.
func splitHostPort(addr string) (host, port string, err error) {
	colonIdx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			colonIdx = i
			break
		}
	}
	if colonIdx == -1 {
		return "", "", errors.New("missing port in address")
	}
	host = addr[:colonIdx]
	port = addr[colonIdx+1:]
	if host == "" {
		return "", "", errors.New("empty host")
	}
	if port == "" {
		return "", "", errors.New("empty port")
	}
	return host, port, nil
}

// parsePort converts a port string to uint16, returning 0 on garbage.
func parsePort(portStr string) uint16 {
	var port uint16
	for i := 0; i < len(portStr); i++ {
		if portStr[i] < '0' || portStr[i] > '9' {
			return 0
		}
		port = port*10 + uint16(portStr[i]-'0')
	}
	return port
}
