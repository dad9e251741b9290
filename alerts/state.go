package alerts

// ConnState is the alert feed's view of its transport.
type ConnState uint8

const (
	StateDisconnected ConnState = iota
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// transition computes the state after one transport operation and
// whether a reconnect attempt should follow this tick. It is the whole
// of the reconnection policy; Poll supplies the I/O.
func transition(st ConnState, opErr error) (next ConnState, reconnect bool) {
	if opErr != nil {
		return StateDisconnected, true
	}
	return st, st == StateDisconnected
}
