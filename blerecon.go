package blerecon

import "github.com/pkg/errors"

// Addr is a 6-byte device address as delivered by the radio, least
// significant byte first.
type Addr [6]byte

// String renders the address in the conventional colon-delimited form,
// most significant byte first.
func (a Addr) String() string {
	const hexdigit = "0123456789ABCDEF"
	b := make([]byte, 0, 17)
	for i := 5; i >= 0; i-- {
		b = append(b, hexdigit[a[i]>>4], hexdigit[a[i]&0xf])
		if i > 0 {
			b = append(b, ':')
		}
	}
	return string(b)
}

// ErrInvalidAddr is returned for addresses that don't parse as XX:XX:XX:XX:XX:XX.
var ErrInvalidAddr = errors.New("invalid address")

// ParseAddr parses an address in the exact form XX:XX:XX:XX:XX:XX, most
// significant byte first.
func ParseAddr(s string) (Addr, error) {
	var a Addr
	nibble := func(c byte) (byte, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 0xA, true
		case c >= 'A' && c <= 'F':
			return c - 'A' + 0xA, true
		}
		return 0, false
	}
	if len(s) != 17 {
		return Addr{}, ErrInvalidAddr
	}
	for i := 0; i < 6; i++ {
		if i > 0 && s[i*3-1] != ':' {
			return Addr{}, ErrInvalidAddr
		}
		hi, ok := nibble(s[i*3])
		if !ok {
			return Addr{}, ErrInvalidAddr
		}
		lo, ok := nibble(s[i*3+1])
		if !ok {
			return Addr{}, ErrInvalidAddr
		}
		a[5-i] = hi<<4 | lo
	}
	return a, nil
}

// AddrType is the advertiser's address type.
type AddrType uint8

// AddrType values [Vol 6, Part B, 1.3].
const (
	AddrTypePublic AddrType = iota
	AddrTypeRandomStatic
	AddrTypeRandomPrivateResolvable
	AddrTypeRandomPrivateNonResolvable
	AddrTypeUnknown
)

func (t AddrType) String() string {
	switch t {
	case AddrTypePublic:
		return "Public"
	case AddrTypeRandomStatic:
		return "Random Static"
	case AddrTypeRandomPrivateResolvable:
		return "Random Private Resolvable"
	case AddrTypeRandomPrivateNonResolvable:
		return "Random Private Non-Resolvable"
	}
	return "Unknown"
}

// Report is a single advertisement report. Data is owned by the driver and
// is only valid for the duration of the handler call; anything retained
// past that must be copied.
type Report struct {
	Addr     Addr
	AddrType AddrType
	RSSI     int
	Data     []byte
}

// AdvHandler handles one advertisement report.
type AdvHandler func(r Report)

// Classification tags a report relative to what the session has seen.
type Classification int

// Classification values.
const (
	New Classification = iota
	Changed
	Unchanged
	Filtered
)

func (c Classification) String() string {
	switch c {
	case New:
		return "New"
	case Changed:
		return "Changed"
	case Unchanged:
		return "Unchanged"
	case Filtered:
		return "Filtered"
	}
	return "Unknown"
}

// Action tells the caller what to do with a report.
type Action int

// Action values.
const (
	Suppress Action = iota
	Show
)
