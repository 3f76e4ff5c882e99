package att

import (
	"github.com/pkg/errors"

	"github.com/lunarlabs/bt"
	"github.com/lunarlabs/bt/l2cap"
)

// A Handler consumes one validated inbound PDU. The slice is valid only for
// the duration of the call.
type Handler func(req []byte)

// pduShape describes the wire shape of an inbound PDU: its minimum length
// (opcode byte included) and whether a variable-length tail may follow.
type pduShape struct {
	minLen   int
	variable bool
}

// Inbound PDU shapes, keyed by opcode. Read By (Group) Type requests accept
// either a 16-bit or a 128-bit attribute type, nothing in between.
var shapes = map[byte]pduShape{
	ExchangeMTURequestCode:     {minLen: 3},
	FindInformationRequestCode: {minLen: 5},
	FindByTypeValueRequestCode: {minLen: 7, variable: true},
	ReadByTypeRequestCode:      {minLen: 7, variable: true},
	ReadByGroupTypeRequestCode: {minLen: 7, variable: true},
	WriteRequestCode:           {minLen: 3, variable: true},
	WriteCommandCode:           {minLen: 3, variable: true},
}

// validShape reports whether b is a well-formed PDU for its opcode.
func validShape(b []byte) bool {
	s, ok := shapes[b[0]]
	if !ok {
		// Unknown opcodes are dispatched (and refused) elsewhere.
		return true
	}
	switch {
	case len(b) < s.minLen:
		return false
	case !s.variable && len(b) != s.minLen:
		return false
	}
	switch b[0] {
	case ReadByTypeRequestCode, ReadByGroupTypeRequestCode:
		return len(b) == 7 || len(b) == 21
	}
	return true
}

// outbound is one queued PDU and its completion callback.
type outbound struct {
	b    []byte
	done func()
}

// sendQueueDepth caps the outbound queue. A Send that would overflow it
// fails with ErrInsuffResources and the PDU is not queued.
const sendQueueDepth = 64

// Conn is one ATT bearer over an L2CAP connection. It frames and unframes
// PDUs, routes inbound PDUs to registered handlers, and drains outbound
// PDUs in enqueue order. A Conn is driven by a single owner; PollRead and
// PollWrite are its only I/O points.
type Conn struct {
	l2c l2cap.Conn

	mtu    uint16
	maxMTU uint16

	handlers map[byte]Handler
	sendq    []outbound

	// pending is the opcode of the client request currently awaiting a
	// response, 0 when none. At most one request may be in flight on a
	// bearer; later requests are decoded but dropped until the response
	// is enqueued.
	pending byte

	rxBuf []byte
}

// NewConn wraps an L2CAP connection in an ATT bearer. maxMTU bounds what
// Exchange MTU may negotiate; values below the BLE default are raised to it.
func NewConn(l2c l2cap.Conn, maxMTU uint16) *Conn {
	if maxMTU < bt.DefaultMTU {
		maxMTU = bt.DefaultMTU
	}
	return &Conn{
		l2c:      l2c,
		mtu:      bt.DefaultMTU,
		maxMTU:   maxMTU,
		handlers: make(map[byte]Handler),
		rxBuf:    make([]byte, bt.MaxMTU),
	}
}

// Register installs h for opcode op, replacing any prior handler.
func (c *Conn) Register(op byte, h Handler) {
	c.handlers[op] = h
}

// MTU returns the negotiated bearer MTU.
func (c *Conn) MTU() uint16 { return c.mtu }

// SetMTU sets the bearer MTU, clamped into [DefaultMTU, maxMTU].
func (c *Conn) SetMTU(n uint16) {
	if n < bt.DefaultMTU {
		n = bt.DefaultMTU
	}
	if n > c.maxMTU {
		n = c.maxMTU
	}
	c.mtu = n
}

// MaxMTU returns the configured upper bound for MTU negotiation.
func (c *Conn) MaxMTU() uint16 { return c.maxMTU }

// SecurityLevel returns the security classification of the underlying link.
func (c *Conn) SecurityLevel() l2cap.SecurityLevel { return c.l2c.SecurityLevel() }

// Send serializes nothing: b must already be a complete PDU. It is queued
// for the next PollWrite; done, if non-nil, fires once the bytes have been
// handed to the socket. Enqueuing a response PDU releases the pending
// request slot so the next client request will be served.
func (c *Conn) Send(b []byte, done func()) error {
	if len(b) == 0 {
		return errors.New("att: empty PDU")
	}
	if len(c.sendq) >= sendQueueDepth {
		return bt.ErrInsuffResources
	}
	op := b[0]
	if !IsRequest(op) && !IsCommand(op) {
		c.pending = 0
	}
	c.sendq = append(c.sendq, outbound{b: b, done: done})
	return nil
}

// SendError enqueues an Error Response for the given request opcode,
// attribute handle and reason.
func (c *Conn) SendError(reqOp byte, h uint16, s bt.AttError) {
	if err := c.Send(NewErrorResponse(reqOp, h, s), nil); err != nil {
		logger.Warn("can't queue error response", "opcode", reqOp, "err", err.Error())
	}
}

// PollRead reads one datagram from the socket, validates its shape, and
// invokes the registered handler. Unknown request opcodes are answered with
// RequestNotSupported at handle 0; unknown or malformed commands are
// dropped. Transport failures are returned to the caller, after which the
// bearer is dead.
func (c *Conn) PollRead() error {
	n, err := c.l2c.Read(c.rxBuf)
	if err != nil {
		return errors.Wrap(err, "att: read")
	}
	if n == 0 {
		return errors.New("att: empty datagram")
	}
	b := c.rxBuf[:n]
	op := b[0]

	if !validShape(b) {
		if !IsCommand(op) {
			c.SendError(op, 0, bt.ErrInvalidPDU)
		}
		return nil
	}

	h, ok := c.handlers[op]
	if !ok {
		if !IsCommand(op) {
			c.SendError(op, 0, bt.ErrReqNotSupp)
		}
		return nil
	}

	if IsRequest(op) {
		if c.pending != 0 {
			// A request is already awaiting its response; this one has
			// been decoded to advance the stream but gets no pairing.
			logger.Debug("dropping request while one is pending", "opcode", op)
			return nil
		}
		c.pending = op
	}

	h(b)
	return nil
}

// PollWrite flushes the send queue to the socket in enqueue order. A PDU is
// written in full or not at all.
func (c *Conn) PollWrite() error {
	for len(c.sendq) > 0 {
		o := c.sendq[0]
		c.sendq = c.sendq[1:]
		if _, err := c.l2c.Write(o.b); err != nil {
			return errors.Wrap(err, "att: write")
		}
		if o.done != nil {
			o.done()
		}
	}
	return nil
}

// Close tears down the underlying link. Queued but unwritten PDUs are
// discarded.
func (c *Conn) Close() error {
	c.sendq = nil
	return c.l2c.Close()
}
