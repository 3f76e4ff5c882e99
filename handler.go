package bt

import "golang.org/x/net/context"

// Context keys carrying per-request state into value handlers.
type contextKey int

const (
	keyData contextKey = iota
	keyOffset
)

// Data returns the request value carried by ctx, or nil for reads.
func Data(ctx context.Context) []byte {
	d, _ := ctx.Value(keyData).([]byte)
	return d
}

// WithData ...
func WithData(ctx context.Context, d []byte) context.Context {
	return context.WithValue(ctx, keyData, d)
}

// Offset returns the value offset carried by ctx.
func Offset(ctx context.Context) int {
	o, _ := ctx.Value(keyOffset).(int)
	return o
}

// WithOffset ...
func WithOffset(ctx context.Context, o int) context.Context {
	return context.WithValue(ctx, keyOffset, o)
}

// ResponseWriter is handed to value handlers to produce the attribute value
// for a read, or to report the status of a write.
type ResponseWriter interface {
	// Write appends data to return as the attribute value.
	Write(b []byte) (int, error)

	// Status reports the result of the request.
	Status() AttError

	// SetStatus overrides the result of the request.
	SetStatus(status AttError)
}

// A Handler produces or consumes an attribute value at request time.
type Handler interface {
	Serve(ctx context.Context, rsp ResponseWriter)
}

// HandlerFunc is an adapter to allow the use of ordinary functions as Handlers.
type HandlerFunc func(ctx context.Context, rsp ResponseWriter)

// Serve calls f(ctx, rsp).
func (f HandlerFunc) Serve(ctx context.Context, rsp ResponseWriter) {
	f(ctx, rsp)
}
