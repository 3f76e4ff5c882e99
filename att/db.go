package att

import (
	"bytes"

	"github.com/lunarlabs/bt"
)

// A DB is the attribute database: a contiguous, handle-ordered range of
// attributes grouped into services. Handles are assigned densely starting
// at base and never change.
type DB struct {
	attrs []*attr
	base  uint16 // handle of the first attribute
}

// NewDB returns an empty database. BLE attribute handles start at 1.
func NewDB() *DB {
	return &DB{base: 1}
}

// Len returns the number of attributes in the database.
func (db *DB) Len() int { return len(db.attrs) }

// next returns the handle the next appended attribute will receive.
func (db *DB) next() uint16 { return db.base + uint16(len(db.attrs)) }

// Append adds a service to the database, assigning handles to its
// declaration, characteristics and descriptors in order. It returns the
// service's handle range.
func (db *DB) Append(s *bt.Service) (start, end uint16) {
	h := db.next()
	aa := genSvcAttr(s, h)
	db.attrs = append(db.attrs, aa...)
	DumpAttributes(aa)
	return s.Handle, s.EndHandle
}

func genSvcAttr(s *bt.Service, h uint16) []*attr {
	declType := bt.PrimaryServiceUUID
	if !s.Primary {
		declType = bt.SecondaryServiceUUID
	}
	a := &attr{
		h:    h,
		typ:  declType,
		v:    s.UUID,
		perm: bt.PermRead,
	}
	h++
	aa := []*attr{a}

	for _, c := range s.Characteristics {
		var ca []*attr
		h, ca = genCharAttr(c, h)
		aa = append(aa, ca...)
	}

	s.Handle = a.h
	s.EndHandle = h - 1
	a.endh = s.EndHandle
	for _, m := range aa {
		m.grpEndh = s.EndHandle
	}
	return aa
}

func genCharAttr(c *bt.Characteristic, h uint16) (uint16, []*attr) {
	vh := h + 1

	a := &attr{
		h:    h,
		endh: h,
		typ:  bt.CharacteristicUUID,
		v:    append([]byte{byte(c.Property), byte(vh), byte(vh >> 8)}, c.UUID...),
		perm: bt.PermRead,
	}
	va := &attr{
		h:    vh,
		endh: vh,
		typ:  c.UUID,
		v:    c.Value,
		perm: c.Permissions,
		rh:   c.ReadHandler(),
		wh:   c.WriteHandler(),
	}

	c.Handle = h
	c.ValueHandle = vh
	h += 2

	aa := []*attr{a, va}
	for _, d := range c.Descriptors {
		aa = append(aa, genDescAttr(d, h))
		h++
	}
	return h, aa
}

func genDescAttr(d *bt.Descriptor, h uint16) *attr {
	d.Handle = h
	return &attr{
		h:    h,
		endh: h,
		typ:  d.UUID,
		v:    d.Value,
		perm: d.Permissions,
		rh:   d.ReadHandler(),
		wh:   d.WriteHandler(),
	}
}

const (
	tooSmall = -1
	tooLarge = -2
)

// idx returns the index into attrs corresponding to handle h.
// If h is too small, idx returns tooSmall (-1).
// If h is too large, idx returns tooLarge (-2).
func (db *DB) idx(h int) int {
	if h < int(db.base) {
		return tooSmall
	}
	if h >= int(db.base)+len(db.attrs) {
		return tooLarge
	}
	return h - int(db.base)
}

// at returns the attribute with handle h.
func (db *DB) at(h uint16) (a *attr, ok bool) {
	i := db.idx(int(h))
	if i < 0 {
		return nil, false
	}
	return db.attrs[i], true
}

// subrange returns attributes in range [start, end]; it may return an empty
// slice. subrange does not panic for out-of-range start or end.
func (db *DB) subrange(start, end uint16) []*attr {
	startidx := db.idx(int(start))
	switch startidx {
	case tooSmall:
		startidx = 0
	case tooLarge:
		return []*attr{}
	}

	endidx := db.idx(int(end) + 1) // [start, end] includes its upper bound!
	switch endidx {
	case tooSmall:
		return []*attr{}
	case tooLarge:
		endidx = len(db.attrs)
	}
	return db.attrs[startidx:endidx]
}

// ReadByGroupType returns, in handle order, the declaration attributes of
// services whose handle range lies fully inside [start, end] and whose
// primary flag matches.
func (db *DB) ReadByGroupType(start, end uint16, primary bool) []*attr {
	declType := bt.PrimaryServiceUUID
	if !primary {
		declType = bt.SecondaryServiceUUID
	}
	var found []*attr
	for _, a := range db.subrange(start, end) {
		if !a.typ.Equal(declType) {
			continue
		}
		if a.h < start || a.endh > end {
			continue
		}
		found = append(found, a)
	}
	return found
}

// ReadByType returns, in handle order, the attributes in [start, end] whose
// type equals typ under canonical UUID equality.
func (db *DB) ReadByType(start, end uint16, typ bt.UUID) []*attr {
	var found []*attr
	for _, a := range db.subrange(start, end) {
		if a.typ.Equal(typ) {
			found = append(found, a)
		}
	}
	return found
}

// FindInformation returns the attributes in [start, end], in handle order.
func (db *DB) FindInformation(start, end uint16) []*attr {
	return db.subrange(start, end)
}

// A HandleRange pairs a found attribute handle with the end-group handle of
// the service containing it.
type HandleRange struct {
	Found uint16
	End   uint16
}

// FindByTypeValue returns, in handle order, a HandleRange for each attribute
// in [start, end] whose type equals the 16-bit UUID typ and whose value
// matches value octet for octet.
func (db *DB) FindByTypeValue(start, end uint16, typ uint16, value []byte) []HandleRange {
	t := bt.UUID16(typ)
	var found []HandleRange
	for _, a := range db.subrange(start, end) {
		if !a.typ.Equal(t) {
			continue
		}
		if !bytes.Equal(a.v, value) {
			continue
		}
		found = append(found, HandleRange{Found: a.h, End: a.grpEndh})
	}
	return found
}

// Write replaces the value at handle h. It performs no permission check;
// that is the server's concern. It reports whether h exists.
func (db *DB) Write(h uint16, value []byte) bool {
	a, ok := db.at(h)
	if !ok {
		return false
	}
	a.v = append([]byte(nil), value...)
	return true
}
