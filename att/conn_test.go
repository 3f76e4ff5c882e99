package att

import (
	"bytes"
	"testing"

	"github.com/lunarlabs/bt"
	"github.com/lunarlabs/bt/l2cap"
)

func newTestConn(maxMTU uint16) (*Conn, *l2cap.Loopback) {
	server, client := l2cap.Pipe()
	return NewConn(server, maxMTU), client
}

// readOne pulls the next PDU off the client side of the pipe.
func readOne(t *testing.T, client *l2cap.Loopback) []byte {
	t.Helper()
	buf := make([]byte, bt.MaxMTU)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	return buf[:n]
}

func TestDispatch(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()

	var got []byte
	c.Register(WriteCommandCode, func(req []byte) {
		got = append([]byte(nil), req...)
	})

	client.Write([]byte{WriteCommandCode, 0x03, 0x00, 0xAA})
	if err := c.PollRead(); err != nil {
		t.Fatalf("poll read: %v", err)
	}
	if !bytes.Equal(got, []byte{WriteCommandCode, 0x03, 0x00, 0xAA}) {
		t.Errorf("handler saw [% X]", got)
	}
}

func TestUnknownRequestOpcode(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()

	// Read Request is not registered on this bearer.
	client.Write([]byte{0x0A, 0x01, 0x00})
	if err := c.PollRead(); err != nil {
		t.Fatalf("poll read: %v", err)
	}
	if err := c.PollWrite(); err != nil {
		t.Fatalf("poll write: %v", err)
	}
	want := []byte{ErrorResponseCode, 0x0A, 0x00, 0x00, byte(bt.ErrReqNotSupp)}
	if got := readOne(t, client); !bytes.Equal(got, want) {
		t.Errorf("expected [% X] but got [% X]", want, got)
	}
}

func TestUnknownCommandDropped(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()

	// Signed Write Command carries the command flag; no response allowed.
	client.Write([]byte{0xD2, 0x01, 0x00, 0xAA})
	if err := c.PollRead(); err != nil {
		t.Fatalf("poll read: %v", err)
	}
	if err := c.PollWrite(); err != nil {
		t.Fatalf("poll write: %v", err)
	}
	if client.Pending() != 0 {
		t.Errorf("command must not produce a response")
	}
}

func TestMalformedRequest(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()
	c.Register(FindInformationRequestCode, func([]byte) {
		t.Errorf("malformed PDU must not reach the handler")
	})

	// Find Information Request truncated to 3 bytes.
	client.Write([]byte{FindInformationRequestCode, 0x01, 0x00})
	c.PollRead()
	c.PollWrite()
	want := []byte{ErrorResponseCode, FindInformationRequestCode, 0x00, 0x00, byte(bt.ErrInvalidPDU)}
	if got := readOne(t, client); !bytes.Equal(got, want) {
		t.Errorf("expected [% X] but got [% X]", want, got)
	}
}

func TestReadByTypeShape(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()
	var calls int
	c.Register(ReadByTypeRequestCode, func(req []byte) {
		calls++
		// Respond so the next request is not dropped for pairing.
		c.Send(NewErrorResponse(req[0], 0, bt.ErrAttrNotFound), nil)
	})

	// The attribute type is 2 or 16 bytes, nothing else.
	client.Write([]byte{ReadByTypeRequestCode, 1, 0, 0xFF, 0xFF, 0x00, 0x28, 0x00})
	c.PollRead()
	c.PollWrite()
	rsp := readOne(t, client)
	if rsp[4] != byte(bt.ErrInvalidPDU) {
		t.Errorf("3-byte type field should be rejected, got [% X]", rsp)
	}
	if calls != 0 {
		t.Errorf("handler must not run for a malformed request")
	}

	client.Write([]byte{ReadByTypeRequestCode, 1, 0, 0xFF, 0xFF, 0x00, 0x28})
	c.PollRead()
	if calls != 1 {
		t.Errorf("7-byte request should dispatch")
	}
}

func TestSendQueueOrderAndCallbacks(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()

	var order []byte
	c.Send([]byte{0x13}, func() { order = append(order, 1) })
	c.Send([]byte{0x03, 0x17, 0x00}, func() { order = append(order, 2) })
	if err := c.PollWrite(); err != nil {
		t.Fatalf("poll write: %v", err)
	}

	if got := readOne(t, client); got[0] != 0x13 {
		t.Errorf("first queued PDU should flush first, got [% X]", got)
	}
	if got := readOne(t, client); got[0] != 0x03 {
		t.Errorf("second queued PDU out of order, got [% X]", got)
	}
	if !bytes.Equal(order, []byte{1, 2}) {
		t.Errorf("completion callbacks fired in order %v", order)
	}
}

func TestPendingRequestDropped(t *testing.T) {
	c, client := newTestConn(bt.DefaultMTU)
	defer c.Close()

	var calls int
	c.Register(WriteRequestCode, func([]byte) { calls++ }) // never responds

	client.Write([]byte{WriteRequestCode, 0x01, 0x00, 0xAA})
	client.Write([]byte{WriteRequestCode, 0x02, 0x00, 0xBB})
	c.PollRead()
	c.PollRead()
	if calls != 1 {
		t.Errorf("second request should be dropped while one is pending, handler ran %d times", calls)
	}
}

func TestSetMTUClamp(t *testing.T) {
	c, _ := newTestConn(185)
	defer c.Close()

	if c.MTU() != bt.DefaultMTU {
		t.Errorf("initial MTU should be %d, got %d", bt.DefaultMTU, c.MTU())
	}
	c.SetMTU(5)
	if c.MTU() != bt.DefaultMTU {
		t.Errorf("MTU below default should clamp up, got %d", c.MTU())
	}
	c.SetMTU(500)
	if c.MTU() != 185 {
		t.Errorf("MTU above max should clamp down, got %d", c.MTU())
	}
	c.SetMTU(100)
	if c.MTU() != 100 {
		t.Errorf("in-range MTU should stick, got %d", c.MTU())
	}
}
