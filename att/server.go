package att

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
	"golang.org/x/net/context"

	"github.com/lunarlabs/bt"
	"github.com/lunarlabs/bt/l2cap"
)

// Server serves one attribute database to one connected client. It binds a
// handler per supported opcode, validates each request, consults the
// database, and builds responses subject to the bearer MTU.
type Server struct {
	db   *DB
	conn *Conn

	// mtuExchanged records that Exchange MTU has been answered once;
	// the procedure runs at most once per bearer.
	mtuExchanged bool

	// fatal is set when response construction hit a wire invariant it
	// could not satisfy; the bearer is shut down after the error response
	// drains.
	fatal bool
}

// NewServer binds a server for db onto the L2CAP connection l2c. maxMTU is
// the server receive MTU offered during Exchange MTU.
func NewServer(db *DB, l2c l2cap.Conn, maxMTU uint16) *Server {
	s := &Server{db: db, conn: NewConn(l2c, maxMTU)}
	s.conn.Register(ExchangeMTURequestCode, s.handleExchangeMTU)
	s.conn.Register(ReadByGroupTypeRequestCode, s.handleReadByGroupType)
	s.conn.Register(ReadByTypeRequestCode, s.handleReadByType)
	s.conn.Register(FindInformationRequestCode, s.handleFindInformation)
	s.conn.Register(FindByTypeValueRequestCode, s.handleFindByTypeValue)
	s.conn.Register(WriteRequestCode, s.handleWrite)
	s.conn.Register(WriteCommandCode, s.handleWrite)
	return s
}

// Conn returns the bearer the server is bound to.
func (s *Server) Conn() *Conn { return s.conn }

// PollRead services one inbound PDU.
func (s *Server) PollRead() error { return s.conn.PollRead() }

// PollWrite drains queued responses.
func (s *Server) PollWrite() error { return s.conn.PollWrite() }

// Serve drives the bearer until the socket closes, a transport error
// occurs, or a fatal protocol error shuts the bearer down.
func (s *Server) Serve() error {
	for {
		if err := s.conn.PollRead(); err != nil {
			return err
		}
		if err := s.conn.PollWrite(); err != nil {
			return err
		}
		if s.fatal {
			s.conn.Close()
			return errors.Wrap(bt.ErrUnlikely, "att: bearer shut down")
		}
	}
}

// permitted maps an attribute access onto an ATT error code, checking in
// order: base permission for the direction, authentication, encryption.
func permitted(p bt.Permission, write bool, sec l2cap.SecurityLevel) bt.AttError {
	if !write && !p.CanRead() {
		return bt.ErrReadNotPerm
	}
	if write && !p.CanWrite() {
		return bt.ErrWriteNotPerm
	}
	if p.NeedAuthen(write) && sec < l2cap.SecurityHigh {
		return bt.ErrAuthentication
	}
	if p.NeedEncrypt(write) && sec < l2cap.SecurityMedium {
		return bt.ErrInsuffEnc
	}
	return bt.ErrSuccess
}

// checkRange validates the handle range common to the discovery requests.
// errh is the handle an Error Response should cite.
func checkRange(start, end uint16) (errh uint16, ok bool) {
	if start == 0 || end == 0 {
		return start, false
	}
	if start > end {
		return start, false
	}
	return 0, true
}

// unlikely reports a response-construction invariant violation to the
// client and marks the bearer for shutdown.
func (s *Server) unlikely(op byte, start uint16) {
	logger.Error("response construction failed", "opcode", op, "start", start)
	s.conn.SendError(op, start, bt.ErrUnlikely)
	s.fatal = true
}

func (s *Server) handleExchangeMTU(b []byte) {
	r := ExchangeMTURequest(b)
	if s.mtuExchanged {
		// The procedure runs once per bearer; a second exchange is a
		// protocol error.
		s.conn.SendError(r.AttributeOpcode(), 0, bt.ErrReqNotSupp)
		return
	}
	s.mtuExchanged = true

	serverMTU := s.conn.MaxMTU()
	rsp := ExchangeMTUResponse(make([]byte, 3))
	rsp.SetAttributeOpcode()
	rsp.SetServerRxMTU(serverMTU)
	if err := s.conn.Send(rsp, nil); err != nil {
		logger.Warn("can't queue response", "err", err.Error())
		return
	}

	// The negotiated MTU is min(client, server), never below the default.
	// SetMTU applies the lower clamp.
	final := r.ClientRxMTU()
	if serverMTU < final {
		final = serverMTU
	}
	s.conn.SetMTU(final)
}

func (s *Server) handleReadByGroupType(b []byte) {
	r := ReadByGroupTypeRequest(b)
	op := r.AttributeOpcode()
	start, end := r.StartingHandle(), r.EndingHandle()

	// A zero bound faults at handle 0 for this request.
	if start == 0 || end == 0 {
		s.conn.SendError(op, 0, bt.ErrInvalidHandle)
		return
	}
	if start > end {
		s.conn.SendError(op, start, bt.ErrInvalidHandle)
		return
	}

	typ := bt.UUID(r.AttributeGroupType())
	var primary bool
	switch {
	case typ.Equal(bt.PrimaryServiceUUID):
		primary = true
	case typ.Equal(bt.SecondaryServiceUUID):
		primary = false
	default:
		s.conn.SendError(op, start, bt.ErrUnsuppGrpType)
		return
	}

	svcs := s.db.ReadByGroupType(start, end, primary)
	if len(svcs) == 0 {
		s.conn.SendError(op, start, bt.ErrAttrNotFound)
		return
	}

	rsp := ReadByGroupTypeResponse(make([]byte, s.conn.MTU()))
	rsp.SetAttributeOpcode()
	buf := bytes.NewBuffer(rsp.AttributeDataList())
	buf.Reset()

	// Every record in one response carries the same length; results whose
	// service UUID width differs from the first are left for a follow-up
	// request.
	dlen := 0
	for _, a := range svcs {
		if dlen == 0 {
			dlen = 4 + len(a.v)
			rsp.SetLength(uint8(dlen))
		} else if 4+len(a.v) != dlen {
			break
		}
		if buf.Len()+dlen > buf.Cap() {
			break
		}
		binary.Write(buf, binary.LittleEndian, a.h)
		binary.Write(buf, binary.LittleEndian, a.endh)
		buf.Write(a.v)
	}
	if buf.Len() == 0 {
		s.unlikely(op, start)
		return
	}
	if err := s.conn.Send(rsp[:2+buf.Len()], nil); err != nil {
		logger.Warn("can't queue response", "err", err.Error())
	}
}

func (s *Server) handleReadByType(b []byte) {
	r := ReadByTypeRequest(b)
	op := r.AttributeOpcode()
	start, end := r.StartingHandle(), r.EndingHandle()

	if errh, ok := checkRange(start, end); !ok {
		s.conn.SendError(op, errh, bt.ErrInvalidHandle)
		return
	}

	attrs := s.db.ReadByType(start, end, bt.UUID(r.AttributeType()))
	if len(attrs) == 0 {
		s.conn.SendError(op, start, bt.ErrAttrNotFound)
		return
	}

	rsp := ReadByTypeResponse(make([]byte, s.conn.MTU()))
	rsp.SetAttributeOpcode()
	buf := bytes.NewBuffer(rsp.AttributeDataList())
	buf.Reset()

	dlen := 0
	for _, a := range attrs {
		if e := permitted(a.perm, false, s.conn.SecurityLevel()); e != bt.ErrSuccess {
			if dlen == 0 {
				s.conn.SendError(op, a.h, e)
				return
			}
			break
		}
		v, e := s.readValue(a, int(s.conn.MTU())-4)
		if e != bt.ErrSuccess {
			if dlen == 0 {
				s.conn.SendError(op, a.h, e)
				return
			}
			break
		}
		if dlen == 0 {
			// The first record fixes the record length. An oversized
			// first value is truncated to mtu-4 and sent alone.
			trunc := false
			dlen = 2 + len(v)
			if dlen > 255 {
				dlen, trunc = 255, true
			}
			if dlen > buf.Cap() {
				dlen, trunc = buf.Cap(), true
			}
			rsp.SetLength(uint8(dlen))
			binary.Write(buf, binary.LittleEndian, a.h)
			buf.Write(v[:dlen-2])
			if trunc {
				break
			}
			continue
		}
		if 2+len(v) != dlen {
			break
		}
		if buf.Len()+dlen > buf.Cap() {
			break
		}
		binary.Write(buf, binary.LittleEndian, a.h)
		buf.Write(v[:dlen-2])
	}
	if buf.Len() == 0 {
		s.unlikely(op, start)
		return
	}
	if err := s.conn.Send(rsp[:2+buf.Len()], nil); err != nil {
		logger.Warn("can't queue response", "err", err.Error())
	}
}

// readValue resolves an attribute's value, invoking its read handler when
// no static value is stored.
func (s *Server) readValue(a *attr, capacity int) ([]byte, bt.AttError) {
	if a.v != nil || a.rh == nil {
		return a.v, bt.ErrSuccess
	}
	rw := newResponseWriter(capacity)
	a.rh.Serve(context.Background(), rw)
	if rw.Status() != bt.ErrSuccess {
		return nil, rw.Status()
	}
	return rw.bytes(), bt.ErrSuccess
}

func (s *Server) handleFindInformation(b []byte) {
	r := FindInformationRequest(b)
	op := r.AttributeOpcode()
	start, end := r.StartingHandle(), r.EndingHandle()

	if errh, ok := checkRange(start, end); !ok {
		s.conn.SendError(op, errh, bt.ErrInvalidHandle)
		return
	}

	attrs := s.db.FindInformation(start, end)
	if len(attrs) == 0 {
		s.conn.SendError(op, start, bt.ErrAttrNotFound)
		return
	}

	rsp := FindInformationResponse(make([]byte, s.conn.MTU()))
	rsp.SetAttributeOpcode()
	buf := bytes.NewBuffer(rsp.InformationData())
	buf.Reset()

	// The first attribute decides the record format; attributes of the
	// other width are skipped, not emitted.
	format := byte(FormatUUID16)
	typLen := 2
	if attrs[0].typ.Len() == 16 {
		format = FormatUUID128
		typLen = 16
	}
	rsp.SetFormat(format)

	for _, a := range attrs {
		if a.typ.Len() != typLen {
			continue
		}
		if buf.Len()+2+typLen > buf.Cap() {
			break
		}
		binary.Write(buf, binary.LittleEndian, a.h)
		buf.Write(a.typ)
	}
	if buf.Len() == 0 {
		s.unlikely(op, start)
		return
	}
	if err := s.conn.Send(rsp[:2+buf.Len()], nil); err != nil {
		logger.Warn("can't queue response", "err", err.Error())
	}
}

func (s *Server) handleFindByTypeValue(b []byte) {
	r := FindByTypeValueRequest(b)
	op := r.AttributeOpcode()
	start, end := r.StartingHandle(), r.EndingHandle()

	if errh, ok := checkRange(start, end); !ok {
		s.conn.SendError(op, errh, bt.ErrInvalidHandle)
		return
	}

	found := s.db.FindByTypeValue(start, end, r.AttributeType(), r.AttributeValue())
	if len(found) == 0 {
		s.conn.SendError(op, start, bt.ErrAttrNotFound)
		return
	}

	rsp := FindByTypeValueResponse(make([]byte, s.conn.MTU()))
	rsp.SetAttributeOpcode()
	buf := bytes.NewBuffer(rsp.HandleInformationList())
	buf.Reset()

	for _, hr := range found {
		if buf.Len()+4 > buf.Cap() {
			break
		}
		binary.Write(buf, binary.LittleEndian, hr.Found)
		binary.Write(buf, binary.LittleEndian, hr.End)
	}
	if err := s.conn.Send(rsp[:1+buf.Len()], nil); err != nil {
		logger.Warn("can't queue response", "err", err.Error())
	}
}

// handleWrite serves Write Request and Write Command through one routine;
// only the request variant ever produces a PDU in return.
func (s *Server) handleWrite(b []byte) {
	r := WriteRequest(b)
	op := r.AttributeOpcode()
	respond := op == WriteRequestCode
	h := r.AttributeHandle()
	value := r.AttributeValue()

	a, ok := s.db.at(h)
	if !ok {
		if respond {
			s.conn.SendError(op, h, bt.ErrInvalidHandle)
		}
		return
	}

	if e := permitted(a.perm, true, s.conn.SecurityLevel()); e != bt.ErrSuccess {
		if respond {
			s.conn.SendError(op, h, e)
		}
		return
	}

	s.db.Write(h, value)

	if a.wh != nil {
		ctx := bt.WithData(context.Background(), value)
		rw := newResponseWriter(0)
		a.wh.Serve(ctx, rw)
		if e := rw.Status(); e != bt.ErrSuccess {
			if respond {
				s.conn.SendError(op, h, e)
			}
			return
		}
	}

	if respond {
		if err := s.conn.Send([]byte{WriteResponseCode}, nil); err != nil {
			logger.Warn("can't queue response", "err", err.Error())
		}
	}
}
