package bt

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

// A UUID is a Bluetooth UUID in little-endian wire order.
// Valid lengths are 2 (16-bit short form) and 16 (128-bit long form).
type UUID []byte

// baseUUID is the Bluetooth Base UUID, 00000000-0000-1000-8000-00805F9B34FB,
// in little-endian order. A short-form UUID X is shorthand for the long form
// 0000XXXX-0000-1000-8000-00805F9B34FB; bytes 12 and 13 carry X.
var baseUUID = UUID{
	0xFB, 0x34, 0x9B, 0x5F, 0x80, 0x00, 0x00, 0x80,
	0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// UUID16 converts a uint16 (such as 0x1800) to a UUID.
func UUID16(i uint16) UUID {
	return UUID{byte(i), byte(i >> 8)}
}

// Parse parses a standard-format UUID string, such
// as "2A19" or "34DA3AD1-7110-41A1-B1EF-4430F509CDE7".
func Parse(s string) (UUID, error) {
	s = strings.Replace(s, "-", "", -1)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if err := lenErr(len(b)); err != nil {
		return nil, err
	}
	return UUID(Reverse(b)), nil
}

// MustParse parses a standard-format UUID string,
// like Parse, but panics in case of error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// lenErr returns an error if n is an invalid UUID length.
func lenErr(n int) error {
	switch n {
	case 2, 16:
		return nil
	}
	return fmt.Errorf("UUIDs must have length 2 or 16, got %d", n)
}

// Len returns the length of the UUID, in bytes.
func (u UUID) Len() int {
	return len(u)
}

// String hex-encodes a UUID.
func (u UUID) String() string {
	return fmt.Sprintf("%x", Reverse(u))
}

// Expand returns the canonical long form of u. 16-bit UUIDs are widened
// onto the Bluetooth Base UUID; 128-bit UUIDs are returned as a copy.
func (u UUID) Expand() UUID {
	b := make(UUID, 16)
	copy(b, baseUUID)
	switch len(u) {
	case 2:
		b[12], b[13] = u[0], u[1]
	case 16:
		copy(b, u)
	}
	return b
}

// Equal reports whether v and u represent the same UUID. Short and long
// forms compare equal through the canonical long form.
func (u UUID) Equal(v UUID) bool {
	if len(u) == len(v) {
		return bytes.Equal(u, v)
	}
	return bytes.Equal(u.Expand(), v.Expand())
}

// Contains returns a boolean reporting whether u is in the slice s.
// A nil slice matches every UUID.
func Contains(s []UUID, u UUID) bool {
	if s == nil {
		return true
	}
	for _, a := range s {
		if a.Equal(u) {
			return true
		}
	}
	return false
}

// Reverse returns a reversed copy of u.
func Reverse(u []byte) []byte {
	// Special-case 16 bit UUIDS for speed.
	l := len(u)
	if l == 2 {
		return []byte{u[1], u[0]}
	}
	b := make([]byte, l)
	for i := 0; i < l/2+1; i++ {
		b[i], b[l-i-1] = u[l-i-1], u[i]
	}
	return b
}

// Name returns the name of a well-known service, declaration, or
// characteristic UUID, or "" if u is not in the registry.
func Name(u UUID) string {
	return knownUUID[u.String()]
}

// Names of well-known UUIDs, keyed by their short-form hex string.
var knownUUID = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"1802": "Immediate Alert",
	"1803": "Link Loss",
	"1804": "Tx Power",
	"1805": "Current Time Service",
	"1809": "Health Thermometer",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180f": "Battery Service",

	"2800": "Primary Service",
	"2801": "Secondary Service",
	"2802": "Include",
	"2803": "Characteristic",

	"2900": "Characteristic Extended Properties",
	"2901": "Characteristic User Description",
	"2902": "Client Characteristic Configuration",
	"2904": "Characteristic Presentation Format",

	"2a00": "Device Name",
	"2a01": "Appearance",
	"2a05": "Service Changed",
	"2a19": "Battery Level",
	"2a29": "Manufacturer Name String",
}
