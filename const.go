package bt

// MTU limits of the LE-U logical transport. 23 bytes is the default before
// ATT optionally reconfigures it [Vol 3, Part A, 3.2.8].
const (
	DefaultMTU = 23
	MaxMTU     = 512
)

// Declaration and descriptor UUIDs used when generating the attribute table.
var (
	PrimaryServiceUUID   = UUID16(0x2800)
	SecondaryServiceUUID = UUID16(0x2801)
	IncludeUUID          = UUID16(0x2802)
	CharacteristicUUID   = UUID16(0x2803)

	ClientCharacteristicConfigUUID = UUID16(0x2902)

	GAPUUID  = UUID16(0x1800)
	GATTUUID = UUID16(0x1801)

	DeviceNameUUID = UUID16(0x2A00)
	AppearanceUUID = UUID16(0x2A01)
)
