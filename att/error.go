package att

import "github.com/lunarlabs/bt"

// NewErrorResponse builds an Error Response citing the failed request
// opcode, the attribute that caused the failure, and the reason.
func NewErrorResponse(op byte, h uint16, s bt.AttError) []byte {
	r := ErrorResponse(make([]byte, 5))
	r.SetAttributeOpcode()
	r.SetRequestOpcodeInError(op)
	r.SetAttributeInError(h)
	r.SetErrorCode(uint8(s))
	return r
}
