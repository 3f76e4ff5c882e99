package bt

// Property is the set of characteristic property flags advertised in the
// characteristic declaration [Vol 3, Part G, 3.3.1.1].
type Property int

const (
	CharBroadcast   Property = 0x01 // may be broadcasted
	CharRead        Property = 0x02 // may be read
	CharWriteNR     Property = 0x04 // may be written to, with no reply
	CharWrite       Property = 0x08 // may be written to, with a reply
	CharNotify      Property = 0x10 // supports notifications
	CharIndicate    Property = 0x20 // supports indications
	CharSignedWrite Property = 0x40 // supports signed write
	CharExtended    Property = 0x80 // supports extended properties
)

// A Service is a group of characteristics exposed through the attribute
// database as one declaration attribute followed by its members.
type Service struct {
	UUID            UUID
	Primary         bool
	Characteristics []*Characteristic

	Handle    uint16
	EndHandle uint16
}

// NewService creates and initializes a new primary Service using u as its UUID.
func NewService(u UUID) *Service {
	return &Service{UUID: u, Primary: true}
}

// NewSecondaryService creates a Service declared with the Secondary Service
// declaration. Secondary services are not returned by primary discovery.
func NewSecondaryService(u UUID) *Service {
	return &Service{UUID: u}
}

// AddCharacteristic adds a characteristic to a service.
// AddCharacteristic panics if the service already contains another
// characteristic with the same UUID.
func (s *Service) AddCharacteristic(u UUID) *Characteristic {
	for _, c := range s.Characteristics {
		if c.UUID.Equal(u) {
			panic("service already contains a characteristic with uuid " + u.String())
		}
	}
	c := &Characteristic{UUID: u}
	s.Characteristics = append(s.Characteristics, c)
	return c
}

// A Characteristic is a BLE characteristic.
type Characteristic struct {
	UUID        UUID
	Property    Property
	Permissions Permission
	Value       []byte
	Descriptors []*Descriptor

	Handle      uint16
	ValueHandle uint16

	rh Handler
	wh Handler
}

// SetValue makes the characteristic readable and gives it a static value.
func (c *Characteristic) SetValue(b []byte) *Characteristic {
	if c.rh != nil {
		panic("can't set value on a characteristic with a read handler")
	}
	c.Property |= CharRead
	c.Permissions |= PermRead
	c.Value = append([]byte(nil), b...)
	return c
}

// SetPermissions replaces the characteristic's permission set. It is applied
// to the value attribute when the containing service is added to a database.
func (c *Characteristic) SetPermissions(p Permission) *Characteristic {
	c.Permissions = p
	return c
}

// HandleRead makes the characteristic readable, routing reads to h.
// HandleRead panics if the characteristic has a static value.
func (c *Characteristic) HandleRead(h Handler) *Characteristic {
	if c.Value != nil {
		panic("can't handle read on a characteristic with a static value")
	}
	c.Property |= CharRead
	c.Permissions |= PermRead
	c.rh = h
	return c
}

// HandleWrite makes the characteristic writable, routing writes to h after
// the database value is updated. The handler does not differentiate between
// write and write-no-response requests.
func (c *Characteristic) HandleWrite(h Handler) *Characteristic {
	c.Property |= CharWrite | CharWriteNR
	c.Permissions |= PermWrite
	c.wh = h
	return c
}

// ReadHandler returns the read handler, or nil.
func (c *Characteristic) ReadHandler() Handler { return c.rh }

// WriteHandler returns the write handler, or nil.
func (c *Characteristic) WriteHandler() Handler { return c.wh }

// AddDescriptor adds a descriptor to a characteristic.
// AddDescriptor panics if the characteristic already contains another
// descriptor with the same UUID.
func (c *Characteristic) AddDescriptor(u UUID) *Descriptor {
	for _, d := range c.Descriptors {
		if d.UUID.Equal(u) {
			panic("characteristic already contains a descriptor with uuid " + u.String())
		}
	}
	d := &Descriptor{UUID: u}
	c.Descriptors = append(c.Descriptors, d)
	return d
}

// A Descriptor is a BLE descriptor.
type Descriptor struct {
	UUID        UUID
	Permissions Permission
	Value       []byte

	Handle uint16

	rh Handler
	wh Handler
}

// SetValue makes the descriptor readable and gives it a static value.
func (d *Descriptor) SetValue(b []byte) *Descriptor {
	if d.rh != nil {
		panic("can't set value on a descriptor with a read handler")
	}
	d.Permissions |= PermRead
	d.Value = append([]byte(nil), b...)
	return d
}

// SetPermissions replaces the descriptor's permission set.
func (d *Descriptor) SetPermissions(p Permission) *Descriptor {
	d.Permissions = p
	return d
}

// HandleRead makes the descriptor readable, routing reads to h.
func (d *Descriptor) HandleRead(h Handler) *Descriptor {
	if d.Value != nil {
		panic("can't handle read on a descriptor with a static value")
	}
	d.Permissions |= PermRead
	d.rh = h
	return d
}

// HandleWrite makes the descriptor writable, routing writes to h.
func (d *Descriptor) HandleWrite(h Handler) *Descriptor {
	d.Permissions |= PermWrite
	d.wh = h
	return d
}

// ReadHandler returns the read handler, or nil.
func (d *Descriptor) ReadHandler() Handler { return d.rh }

// WriteHandler returns the write handler, or nil.
func (d *Descriptor) WriteHandler() Handler { return d.wh }
