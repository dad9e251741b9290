package alerts

import (
	"errors"
	"testing"
	"time"

	"github.com/ethulhu/sha2017-desk-clock/hal"
)

type fakeNet struct {
	connected bool
	ready     bool
}

func (n *fakeNet) IsConnected() bool { return n.connected }
func (n *fakeNet) Connect()          { n.connected = n.ready }
func (n *fakeNet) WaitReady() bool   { return n.ready }
func (n *fakeNet) SyncTime() error   { return nil }
func (n *fakeNet) DialTCP(addr string, timeout time.Duration) (hal.Conn, error) {
	return nil, errors.New("no dialing in alerts tests")
}

type fakeTransport struct {
	connects   int
	subscribes int
	checks     int

	connectErr   error
	subscribeErr error

	queue    []Message
	checkErr error
}

func (t *fakeTransport) Connect() error {
	t.connects++
	return t.connectErr
}

func (t *fakeTransport) Subscribe(topic string, qos uint8) error {
	t.subscribes++
	return t.subscribeErr
}

func (t *fakeTransport) CheckForMessage() (Message, bool, error) {
	t.checks++
	if t.checkErr != nil {
		err := t.checkErr
		t.checkErr = nil
		return Message{}, false, err
	}
	if len(t.queue) == 0 {
		return Message{}, false, nil
	}
	msg := t.queue[0]
	t.queue = t.queue[1:]
	return msg, true, nil
}

const topic = "home/house/alert/info_string"

func newTestSource(tr *fakeTransport, now *int64) *Source {
	return New(tr, &fakeNet{ready: true}, Config{
		Topic:  topic,
		Window: 10 * time.Second,
		Now:    func() int64 { return *now },
	})
}

func TestNewConnectsAndSubscribes(t *testing.T) {
	tr := &fakeTransport{}
	now := int64(0)
	s := newTestSource(tr, &now)

	if tr.connects != 1 || tr.subscribes != 1 {
		t.Fatalf("connects = %d, subscribes = %d, want 1 and 1", tr.connects, tr.subscribes)
	}
	if s.State() != StateConnected {
		t.Fatalf("State() = %v, want connected", s.State())
	}
}

func TestNewSwallowsConnectFailure(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("broker down")}
	now := int64(0)
	s := newTestSource(tr, &now)

	if s.State() != StateDisconnected {
		t.Fatalf("State() = %v, want disconnected", s.State())
	}
	// Still callable.
	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want empty", got)
	}
}

func TestPollFreshnessWindow(t *testing.T) {
	tr := &fakeTransport{queue: []Message{{Topic: topic, Payload: []byte("A")}}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "A" {
		t.Fatalf("Poll() at t=0 = %q, want A", got)
	}
	checksAfterArrival := tr.checks

	for now = 1; now < 10; now++ {
		if got := s.Poll(); got != "A" {
			t.Fatalf("Poll() at t=%d = %q, want A", now, got)
		}
	}
	if tr.checks != checksAfterArrival {
		t.Fatalf("transport checked %d times while alert was fresh, want 0",
			tr.checks-checksAfterArrival)
	}

	now = 10
	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() at t=10 = %q, want empty", got)
	}
	if tr.checks != checksAfterArrival+1 {
		t.Fatalf("transport checks after expiry = %d, want exactly one more",
			tr.checks-checksAfterArrival)
	}
}

func TestPollLastWriteWins(t *testing.T) {
	tr := &fakeTransport{queue: []Message{
		{Topic: topic, Payload: []byte("first")},
		{Topic: topic, Payload: []byte("second")},
	}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "first" {
		t.Fatalf("Poll() = %q, want first", got)
	}
	now = 10 // first expires
	if got := s.Poll(); got != "second" {
		t.Fatalf("Poll() = %q, want second", got)
	}
	now = 19 // second still fresh: 10 + 10 > 19
	if got := s.Poll(); got != "second" {
		t.Fatalf("Poll() = %q, want second still fresh", got)
	}
	now = 20
	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want expired", got)
	}
}

func TestPollTrimsWhitespace(t *testing.T) {
	tr := &fakeTransport{queue: []Message{{Topic: topic, Payload: []byte("  hello badge \n")}}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "hello badge" {
		t.Fatalf("Poll() = %q, want trimmed text", got)
	}
}

func TestPollIgnoresOtherTopics(t *testing.T) {
	tr := &fakeTransport{queue: []Message{{Topic: "home/house/other", Payload: []byte("nope")}}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want empty for foreign topic", got)
	}
}

func TestPollDropsMalformedUTF8(t *testing.T) {
	tr := &fakeTransport{queue: []Message{{Topic: topic, Payload: []byte{0xff, 0xfe}}}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want malformed payload dropped", got)
	}
	if s.State() != StateConnected {
		t.Fatalf("State() = %v, want still connected", s.State())
	}
}

func TestPollTransportErrorReconnects(t *testing.T) {
	tr := &fakeTransport{}
	now := int64(0)
	s := newTestSource(tr, &now)

	connects := tr.connects
	tr.checkErr = errors.New("connection reset")
	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want empty on transport error", got)
	}
	if tr.connects != connects+1 {
		t.Fatalf("connects = %d, want a reconnect attempt", tr.connects)
	}

	// Reconnect succeeded; the next poll behaves normally.
	tr.queue = []Message{{Topic: topic, Payload: []byte("back")}}
	now = 1
	if got := s.Poll(); got != "back" {
		t.Fatalf("Poll() after reconnect = %q, want back", got)
	}
}

func TestPollReconnectsEveryTickWhileDown(t *testing.T) {
	tr := &fakeTransport{connectErr: errors.New("broker down")}
	now := int64(0)
	s := newTestSource(tr, &now)

	start := tr.connects
	for i := 0; i < 3; i++ {
		now++
		if got := s.Poll(); got != "" {
			t.Fatalf("Poll() = %q, want empty while down", got)
		}
	}
	if tr.connects != start+3 {
		t.Fatalf("connects = %d, want one attempt per tick", tr.connects-start)
	}
	if tr.checks != 0 {
		t.Fatalf("checks = %d, want no checks while disconnected", tr.checks)
	}
}

func TestPollEmptyMessageOccupiesWindowButReadsAsNone(t *testing.T) {
	tr := &fakeTransport{queue: []Message{
		{Topic: topic, Payload: []byte("   ")},
		{Topic: topic, Payload: []byte("later")},
	}}
	now := int64(0)
	s := newTestSource(tr, &now)

	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want whitespace message to read as none", got)
	}
	checks := tr.checks
	now = 5
	if got := s.Poll(); got != "" {
		t.Fatalf("Poll() = %q, want none inside window", got)
	}
	if tr.checks != checks {
		t.Fatal("transport checked while the empty alert was still fresh")
	}
	now = 10
	if got := s.Poll(); got != "later" {
		t.Fatalf("Poll() = %q, want later after window", got)
	}
}

func TestTransition(t *testing.T) {
	cases := []struct {
		st            ConnState
		err           error
		wantNext      ConnState
		wantReconnect bool
	}{
		{StateConnected, nil, StateConnected, false},
		{StateConnected, errors.New("x"), StateDisconnected, true},
		{StateDisconnected, nil, StateDisconnected, true},
		{StateDisconnected, errors.New("x"), StateDisconnected, true},
	}
	for _, c := range cases {
		next, reconnect := transition(c.st, c.err)
		if next != c.wantNext || reconnect != c.wantReconnect {
			t.Errorf("transition(%v, %v) = (%v, %t), want (%v, %t)",
				c.st, c.err, next, reconnect, c.wantNext, c.wantReconnect)
		}
	}
}
