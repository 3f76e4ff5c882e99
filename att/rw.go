package att

import (
	"bytes"
	"io"

	"github.com/lunarlabs/bt"
)

// ResponseWriter collects the value a dynamic handler produces for a read,
// bounded by what the response PDU can carry.
type ResponseWriter struct {
	buf    bytes.Buffer
	cap    int
	status bt.AttError
}

func newResponseWriter(capacity int) *ResponseWriter {
	return &ResponseWriter{cap: capacity, status: bt.ErrSuccess}
}

// Write appends b to the response value. It refuses writes that would
// exceed the PDU capacity.
func (r *ResponseWriter) Write(b []byte) (int, error) {
	if len(b) > r.cap-r.buf.Len() {
		return 0, io.ErrShortWrite
	}
	return r.buf.Write(b)
}

// Status reports the result of the request.
func (r *ResponseWriter) Status() bt.AttError { return r.status }

// SetStatus overrides the result of the request.
func (r *ResponseWriter) SetStatus(status bt.AttError) { r.status = status }

func (r *ResponseWriter) bytes() []byte { return r.buf.Bytes() }
