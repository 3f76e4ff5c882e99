package bt

// AttError is an Attribute Protocol error code, as carried in the Error
// Response [Vol 3, Part F, 3.4.1.1].
type AttError byte

const (
	ErrSuccess           AttError = 0x00 // the operation succeeded.
	ErrInvalidHandle     AttError = 0x01 // the attribute handle given was not valid on this server.
	ErrReadNotPerm       AttError = 0x02 // the attribute cannot be read.
	ErrWriteNotPerm      AttError = 0x03 // the attribute cannot be written.
	ErrInvalidPDU        AttError = 0x04 // the attribute PDU was invalid.
	ErrAuthentication    AttError = 0x05 // the attribute requires authentication before it can be read or written.
	ErrReqNotSupp        AttError = 0x06 // the attribute server does not support the request received from the client.
	ErrInvalidOffset     AttError = 0x07 // the specified offset was past the end of the attribute.
	ErrAuthorization     AttError = 0x08 // the attribute requires authorization before it can be read or written.
	ErrPrepQueueFull     AttError = 0x09 // too many prepare writes have been queued.
	ErrAttrNotFound      AttError = 0x0a // no attribute found within the given attribute handle range.
	ErrAttrNotLong       AttError = 0x0b // the attribute cannot be read using the Read Blob Request.
	ErrInsuffEncrKeySize AttError = 0x0c // the Encryption Key Size used for encrypting this link is insufficient.
	ErrInvalAttrValueLen AttError = 0x0d // the attribute value length is invalid for the operation.
	ErrUnlikely          AttError = 0x0e // the request has encountered an unlikely error and could not be completed.
	ErrInsuffEnc         AttError = 0x0f // the attribute requires encryption before it can be read or written.
	ErrUnsuppGrpType     AttError = 0x10 // the attribute type is not a supported grouping attribute.
	ErrInsuffResources   AttError = 0x11 // insufficient resources to complete the request.
)

func (e AttError) Error() string {
	switch i := int(e); {
	case i <= 0x11:
		return errName[e]
	case (i >= 0x12 && i <= 0x7F) || // Reserved for future use
		(i >= 0x80 && i <= 0x9F) || // Application error, defined by higher layer
		(i >= 0xA0 && i <= 0xDF): // Reserved for future use
		return "reserved error code"
	case i >= 0xE0 && i <= 0xFF: // Common profile and service error codes
		return "profile or service error"
	default:
		return "unknown error"
	}
}

var errName = map[AttError]string{
	ErrSuccess:           "success",
	ErrInvalidHandle:     "invalid handle",
	ErrReadNotPerm:       "read not permitted",
	ErrWriteNotPerm:      "write not permitted",
	ErrInvalidPDU:        "invalid PDU",
	ErrAuthentication:    "insufficient authentication",
	ErrReqNotSupp:        "request not supported",
	ErrInvalidOffset:     "invalid offset",
	ErrAuthorization:     "insufficient authorization",
	ErrPrepQueueFull:     "prepare queue full",
	ErrAttrNotFound:      "attribute not found",
	ErrAttrNotLong:       "attribute not long",
	ErrInsuffEncrKeySize: "insufficient encryption key size",
	ErrInvalAttrValueLen: "invalid attribute value length",
	ErrUnlikely:          "unlikely error",
	ErrInsuffEnc:         "insufficient encryption",
	ErrUnsuppGrpType:     "unsupported group type",
	ErrInsuffResources:   "insufficient resources",
}
