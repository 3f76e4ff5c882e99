package bt

// Permission is a set of attribute access permissions [Vol 3, Part F, 3.2.5].
// The zero value permits nothing.
type Permission int

const (
	PermRead         Permission = 1 << iota // attribute may be read
	PermWrite                               // attribute may be written
	PermReadEncrypt                         // reads require an encrypted link
	PermWriteEncrypt                        // writes require an encrypted link
	PermReadAuthen                          // reads require an authenticated link
	PermWriteAuthen                         // writes require an authenticated link
)

// CanRead reports whether the set includes the base read permission.
func (p Permission) CanRead() bool { return p&PermRead != 0 }

// CanWrite reports whether the set includes the base write permission.
func (p Permission) CanWrite() bool { return p&PermWrite != 0 }

// NeedAuthen reports whether the given access direction requires an
// authenticated link.
func (p Permission) NeedAuthen(write bool) bool {
	if write {
		return p&PermWriteAuthen != 0
	}
	return p&PermReadAuthen != 0
}

// NeedEncrypt reports whether the given access direction requires an
// encrypted link.
func (p Permission) NeedEncrypt(write bool) bool {
	if write {
		return p&PermWriteEncrypt != 0
	}
	return p&PermReadEncrypt != 0
}
