package adv

// MaxEIRPacketLength is the maximum allowed advertisement payload length.
const MaxEIRPacketLength = 31

// Advertising data types [CSSv6, Part A, 1].
const (
	Flags            = 0x01 // Flags
	SomeUUID16       = 0x02 // Incomplete List of 16-bit Service Class UUIDs
	AllUUID16        = 0x03 // Complete List of 16-bit Service Class UUIDs
	SomeUUID32       = 0x04 // Incomplete List of 32-bit Service Class UUIDs
	AllUUID32        = 0x05 // Complete List of 32-bit Service Class UUIDs
	SomeUUID128      = 0x06 // Incomplete List of 128-bit Service Class UUIDs
	AllUUID128       = 0x07 // Complete List of 128-bit Service Class UUIDs
	ShortName        = 0x08 // Shortened Local Name
	CompleteName     = 0x09 // Complete Local Name
	TxPower          = 0x0A // Tx Power Level
	ClassOfDevice    = 0x0D // Class of Device
	ServiceSol16     = 0x14 // List of 16-bit Service Solicitation UUIDs
	ServiceData16    = 0x16 // Service Data - 16-bit UUID
	Appearance       = 0x19 // Appearance
	AdvInterval      = 0x1A // Advertising Interval
	ManufacturerData = 0xFF // Manufacturer Specific Data
)

// Advertising flag bits.
const (
	FlagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode
	FlagLEOnly              = 0x04 // BR/EDR Not Supported
	FlagBothController      = 0x08 // Simultaneous LE and BR/EDR (Controller)
	FlagBothHost            = 0x10 // Simultaneous LE and BR/EDR (Host)
)

var typeName = map[byte]string{
	Flags:            "Flags",
	SomeUUID16:       "Incomplete 16-bit UUIDs",
	AllUUID16:        "16-bit Service UUIDs",
	SomeUUID32:       "Incomplete 32-bit UUIDs",
	AllUUID32:        "Complete 32-bit UUIDs",
	SomeUUID128:      "Incomplete 128-bit UUIDs",
	AllUUID128:       "128-bit Service UUIDs",
	ShortName:        "Shortened Local Name",
	CompleteName:     "Complete Local Name",
	TxPower:          "TX Power Level",
	ClassOfDevice:    "Class of Device",
	ServiceSol16:     "List of 16-bit Solicitation UUIDs",
	ServiceData16:    "Service Data (16-bit UUID)",
	Appearance:       "Appearance",
	AdvInterval:      "Advertising Interval",
	ManufacturerData: "Manufacturer Data",
}

// TypeName returns a human readable name for an AD type code.
func TypeName(typ byte) string {
	if n, ok := typeName[typ]; ok {
		return n
	}
	return "Unknown Type"
}

// CompanyName returns the name of a few well-known manufacturer company
// identifiers, or an empty string.
func CompanyName(id uint16) string {
	switch id {
	case 0x0006:
		return "Microsoft"
	case 0x004C:
		return "Apple"
	case 0x0059:
		return "Nordic Semi"
	case 0x0075:
		return "Samsung"
	case 0x00E0:
		return "Google"
	}
	return ""
}
