// Package l2cap defines the transport the ATT bearer runs over: a
// message-framed datagram channel with an attached security level.
// Each datagram carries exactly one ATT PDU.
package l2cap

import "io"

// SecurityLevel classifies the link per its pairing and encryption state.
type SecurityLevel int

const (
	SecurityNone SecurityLevel = iota
	SecurityLow
	SecurityMedium // link is encrypted
	SecurityHigh   // link is encrypted with an authenticated key
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityNone:
		return "none"
	case SecurityLow:
		return "low"
	case SecurityMedium:
		return "medium"
	case SecurityHigh:
		return "high"
	}
	return "unknown"
}

// Conn is an L2CAP fixed-channel connection. Read returns one whole inbound
// datagram per call; Write sends b as one datagram.
type Conn interface {
	io.ReadWriteCloser

	// SecurityLevel returns the current link security classification.
	SecurityLevel() SecurityLevel
}
