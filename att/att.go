// Package att implements the server side of the Attribute Protocol: PDU
// codecs, the attribute database, and the request handlers that serve a
// GATT peripheral over one L2CAP bearer.
package att

import "encoding/binary"

// Opcode flag bits [Vol 3, Part F, 3.3.1]. The method lives in the low six
// bits; the command flag marks PDUs that must never be answered.
const (
	methodMask    = 0x3F
	commandFlag   = 0x40
	signatureFlag = 0x80
)

// Method extracts the method bits of an opcode.
func Method(op byte) byte { return op & methodMask }

// IsCommand reports whether op carries the command flag; commands expect
// no response.
func IsCommand(op byte) bool { return op&commandFlag != 0 }

// HasSignature reports whether op carries an authentication signature.
func HasSignature(op byte) bool { return op&signatureFlag != 0 }

// IsRequest reports whether op is one of the client requests this package
// serves, each of which expects a response. Other request opcodes, such as
// Read Request, report false.
func IsRequest(op byte) bool {
	switch op {
	case ExchangeMTURequestCode,
		FindInformationRequestCode,
		FindByTypeValueRequestCode,
		ReadByTypeRequestCode,
		ReadByGroupTypeRequestCode,
		WriteRequestCode:
		return true
	}
	return false
}

const ErrorResponseCode = 0x01

// ErrorResponse implements Error Response (0x01) [Vol 3, Part F, 3.4.1.1].
type ErrorResponse []byte

func (r ErrorResponse) AttributeOpcode() uint8          { return r[0] }
func (r ErrorResponse) SetAttributeOpcode()             { r[0] = ErrorResponseCode }
func (r ErrorResponse) RequestOpcodeInError() uint8     { return r[1] }
func (r ErrorResponse) SetRequestOpcodeInError(v uint8) { r[1] = v }
func (r ErrorResponse) AttributeInError() uint16        { return binary.LittleEndian.Uint16(r[2:]) }
func (r ErrorResponse) SetAttributeInError(v uint16)    { binary.LittleEndian.PutUint16(r[2:], v) }
func (r ErrorResponse) ErrorCode() uint8                { return r[4] }
func (r ErrorResponse) SetErrorCode(v uint8)            { r[4] = v }

const ExchangeMTURequestCode = 0x02

// ExchangeMTURequest implements Exchange MTU Request (0x02) [Vol 3, Part F, 3.4.2.1].
type ExchangeMTURequest []byte

func (r ExchangeMTURequest) AttributeOpcode() uint8  { return r[0] }
func (r ExchangeMTURequest) SetAttributeOpcode()     { r[0] = ExchangeMTURequestCode }
func (r ExchangeMTURequest) ClientRxMTU() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r ExchangeMTURequest) SetClientRxMTU(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }

const ExchangeMTUResponseCode = 0x03

// ExchangeMTUResponse implements Exchange MTU Response (0x03) [Vol 3, Part F, 3.4.2.2].
type ExchangeMTUResponse []byte

func (r ExchangeMTUResponse) AttributeOpcode() uint8  { return r[0] }
func (r ExchangeMTUResponse) SetAttributeOpcode()     { r[0] = ExchangeMTUResponseCode }
func (r ExchangeMTUResponse) ServerRxMTU() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r ExchangeMTUResponse) SetServerRxMTU(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }

const FindInformationRequestCode = 0x04

// FindInformationRequest implements Find Information Request (0x04) [Vol 3, Part F, 3.4.3.1].
type FindInformationRequest []byte

func (r FindInformationRequest) AttributeOpcode() uint8     { return r[0] }
func (r FindInformationRequest) SetAttributeOpcode()        { r[0] = FindInformationRequestCode }
func (r FindInformationRequest) StartingHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r FindInformationRequest) SetStartingHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r FindInformationRequest) EndingHandle() uint16       { return binary.LittleEndian.Uint16(r[3:]) }
func (r FindInformationRequest) SetEndingHandle(v uint16)   { binary.LittleEndian.PutUint16(r[3:], v) }

const FindInformationResponseCode = 0x05

// Find Information Response formats [Vol 3, Part F, 3.4.3.2].
const (
	FormatUUID16  = 0x01
	FormatUUID128 = 0x02
)

// FindInformationResponse implements Find Information Response (0x05) [Vol 3, Part F, 3.4.3.2].
type FindInformationResponse []byte

func (r FindInformationResponse) AttributeOpcode() uint8      { return r[0] }
func (r FindInformationResponse) SetAttributeOpcode()         { r[0] = FindInformationResponseCode }
func (r FindInformationResponse) Format() uint8               { return r[1] }
func (r FindInformationResponse) SetFormat(v uint8)           { r[1] = v }
func (r FindInformationResponse) InformationData() []byte     { return r[2:] }
func (r FindInformationResponse) SetInformationData(v []byte) { copy(r[2:], v) }

const FindByTypeValueRequestCode = 0x06

// FindByTypeValueRequest implements Find By Type Value Request (0x06) [Vol 3, Part F, 3.4.3.3].
type FindByTypeValueRequest []byte

func (r FindByTypeValueRequest) AttributeOpcode() uint8     { return r[0] }
func (r FindByTypeValueRequest) SetAttributeOpcode()        { r[0] = FindByTypeValueRequestCode }
func (r FindByTypeValueRequest) StartingHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r FindByTypeValueRequest) SetStartingHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r FindByTypeValueRequest) EndingHandle() uint16       { return binary.LittleEndian.Uint16(r[3:]) }
func (r FindByTypeValueRequest) SetEndingHandle(v uint16)   { binary.LittleEndian.PutUint16(r[3:], v) }
func (r FindByTypeValueRequest) AttributeType() uint16      { return binary.LittleEndian.Uint16(r[5:]) }
func (r FindByTypeValueRequest) SetAttributeType(v uint16)  { binary.LittleEndian.PutUint16(r[5:], v) }
func (r FindByTypeValueRequest) AttributeValue() []byte     { return r[7:] }
func (r FindByTypeValueRequest) SetAttributeValue(v []byte) { copy(r[7:], v) }

const FindByTypeValueResponseCode = 0x07

// FindByTypeValueResponse implements Find By Type Value Response (0x07) [Vol 3, Part F, 3.4.3.4].
type FindByTypeValueResponse []byte

func (r FindByTypeValueResponse) AttributeOpcode() uint8            { return r[0] }
func (r FindByTypeValueResponse) SetAttributeOpcode()               { r[0] = FindByTypeValueResponseCode }
func (r FindByTypeValueResponse) HandleInformationList() []byte     { return r[1:] }
func (r FindByTypeValueResponse) SetHandleInformationList(v []byte) { copy(r[1:], v) }

const ReadByTypeRequestCode = 0x08

// ReadByTypeRequest implements Read By Type Request (0x08) [Vol 3, Part F, 3.4.4.1].
type ReadByTypeRequest []byte

func (r ReadByTypeRequest) AttributeOpcode() uint8     { return r[0] }
func (r ReadByTypeRequest) SetAttributeOpcode()        { r[0] = ReadByTypeRequestCode }
func (r ReadByTypeRequest) StartingHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r ReadByTypeRequest) SetStartingHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r ReadByTypeRequest) EndingHandle() uint16       { return binary.LittleEndian.Uint16(r[3:]) }
func (r ReadByTypeRequest) SetEndingHandle(v uint16)   { binary.LittleEndian.PutUint16(r[3:], v) }
func (r ReadByTypeRequest) AttributeType() []byte      { return r[5:] }
func (r ReadByTypeRequest) SetAttributeType(v []byte)  { copy(r[5:], v) }

const ReadByTypeResponseCode = 0x09

// ReadByTypeResponse implements Read By Type Response (0x09) [Vol 3, Part F, 3.4.4.2].
type ReadByTypeResponse []byte

func (r ReadByTypeResponse) AttributeOpcode() uint8        { return r[0] }
func (r ReadByTypeResponse) SetAttributeOpcode()           { r[0] = ReadByTypeResponseCode }
func (r ReadByTypeResponse) Length() uint8                 { return r[1] }
func (r ReadByTypeResponse) SetLength(v uint8)             { r[1] = v }
func (r ReadByTypeResponse) AttributeDataList() []byte     { return r[2:] }
func (r ReadByTypeResponse) SetAttributeDataList(v []byte) { copy(r[2:], v) }

const ReadByGroupTypeRequestCode = 0x10

// ReadByGroupTypeRequest implements Read By Group Type Request (0x10) [Vol 3, Part F, 3.4.4.9].
type ReadByGroupTypeRequest []byte

func (r ReadByGroupTypeRequest) AttributeOpcode() uint8     { return r[0] }
func (r ReadByGroupTypeRequest) SetAttributeOpcode()        { r[0] = ReadByGroupTypeRequestCode }
func (r ReadByGroupTypeRequest) StartingHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r ReadByGroupTypeRequest) SetStartingHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r ReadByGroupTypeRequest) EndingHandle() uint16       { return binary.LittleEndian.Uint16(r[3:]) }
func (r ReadByGroupTypeRequest) SetEndingHandle(v uint16)   { binary.LittleEndian.PutUint16(r[3:], v) }
func (r ReadByGroupTypeRequest) AttributeGroupType() []byte     { return r[5:] }
func (r ReadByGroupTypeRequest) SetAttributeGroupType(v []byte) { copy(r[5:], v) }

const ReadByGroupTypeResponseCode = 0x11

// ReadByGroupTypeResponse implements Read By Group Type Response (0x11) [Vol 3, Part F, 3.4.4.10].
type ReadByGroupTypeResponse []byte

func (r ReadByGroupTypeResponse) AttributeOpcode() uint8        { return r[0] }
func (r ReadByGroupTypeResponse) SetAttributeOpcode()           { r[0] = ReadByGroupTypeResponseCode }
func (r ReadByGroupTypeResponse) Length() uint8                 { return r[1] }
func (r ReadByGroupTypeResponse) SetLength(v uint8)             { r[1] = v }
func (r ReadByGroupTypeResponse) AttributeDataList() []byte     { return r[2:] }
func (r ReadByGroupTypeResponse) SetAttributeDataList(v []byte) { copy(r[2:], v) }

const WriteRequestCode = 0x12

// WriteRequest implements Write Request (0x12) [Vol 3, Part F, 3.4.5.1].
type WriteRequest []byte

func (r WriteRequest) AttributeOpcode() uint8      { return r[0] }
func (r WriteRequest) SetAttributeOpcode()         { r[0] = WriteRequestCode }
func (r WriteRequest) AttributeHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r WriteRequest) SetAttributeHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r WriteRequest) AttributeValue() []byte      { return r[3:] }
func (r WriteRequest) SetAttributeValue(v []byte)  { copy(r[3:], v) }

const WriteResponseCode = 0x13

// WriteResponse implements Write Response (0x13) [Vol 3, Part F, 3.4.5.2].
type WriteResponse []byte

func (r WriteResponse) AttributeOpcode() uint8 { return r[0] }
func (r WriteResponse) SetAttributeOpcode()    { r[0] = WriteResponseCode }

const WriteCommandCode = 0x52

// WriteCommand implements Write Command (0x52) [Vol 3, Part F, 3.4.5.3].
// Its payload is identical to the Write Request's.
type WriteCommand []byte

func (r WriteCommand) AttributeOpcode() uint8      { return r[0] }
func (r WriteCommand) SetAttributeOpcode()         { r[0] = WriteCommandCode }
func (r WriteCommand) AttributeHandle() uint16     { return binary.LittleEndian.Uint16(r[1:]) }
func (r WriteCommand) SetAttributeHandle(v uint16) { binary.LittleEndian.PutUint16(r[1:], v) }
func (r WriteCommand) AttributeValue() []byte      { return r[3:] }
func (r WriteCommand) SetAttributeValue(v []byte)  { copy(r[3:], v) }
