package l2cap

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// bufDepth bounds the number of in-flight datagrams per direction.
const bufDepth = 16

// Pipe returns a connected pair of in-memory datagram conns. It substitutes
// for a Bluetooth socket on platforms without one, and backs the test
// harnesses. Both ends report the same security level.
func Pipe() (*Loopback, *Loopback) {
	ab := make(chan []byte, bufDepth)
	ba := make(chan []byte, bufDepth)
	done := make(chan struct{})
	a := &Loopback{in: ba, out: ab, done: done}
	b := &Loopback{in: ab, out: ba, done: done}
	a.peer, b.peer = b, a
	return a, b
}

// Loopback is one end of an in-memory datagram pipe.
type Loopback struct {
	in   chan []byte
	out  chan []byte
	peer *Loopback

	mu  sync.Mutex
	sec SecurityLevel

	done      chan struct{}
	closeOnce sync.Once
}

// Read copies the next inbound datagram into p and returns its length.
// It blocks until a datagram or EOF is available.
func (l *Loopback) Read(p []byte) (int, error) {
	select {
	case b := <-l.in:
		return copyDatagram(p, b)
	case <-l.done:
		// Drain anything queued before the close.
		select {
		case b := <-l.in:
			return copyDatagram(p, b)
		default:
			return 0, io.EOF
		}
	}
}

func copyDatagram(p, b []byte) (int, error) {
	if len(p) < len(b) {
		return 0, io.ErrShortBuffer
	}
	return copy(p, b), nil
}

// Write sends b to the peer as one datagram. It fails rather than blocks
// when the pipe is full.
func (l *Loopback) Write(b []byte) (int, error) {
	select {
	case <-l.done:
		return 0, errors.New("l2cap: write on closed pipe")
	default:
	}
	d := append([]byte(nil), b...)
	select {
	case l.out <- d:
		return len(b), nil
	default:
		return 0, errors.New("l2cap: pipe buffer full")
	}
}

// Close tears down both ends of the pipe.
func (l *Loopback) Close() error {
	l.closeOnce.Do(func() { close(l.done) })
	return nil
}

// SecurityLevel returns the link's security classification.
func (l *Loopback) SecurityLevel() SecurityLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sec
}

// SetSecurityLevel reclassifies the link, as pairing would.
// Both ends observe the new level.
func (l *Loopback) SetSecurityLevel(s SecurityLevel) {
	l.mu.Lock()
	l.sec = s
	l.mu.Unlock()
	if l.peer != nil {
		l.peer.mu.Lock()
		l.peer.sec = s
		l.peer.mu.Unlock()
	}
}

// Pending returns the number of datagrams queued for Read.
func (l *Loopback) Pending() int { return len(l.in) }
