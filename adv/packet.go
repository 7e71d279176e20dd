package adv

// Packet is an utility to craft or parse advertisement payloads.
// Refer to Supplement to Bluetooth Core Specification | CSSv6, Part A
type Packet []byte

// Element is a single AD structure: a type code and its data bytes.
// Data borrows from the underlying payload and holds length-1 bytes.
type Element struct {
	Type byte
	Data []byte
}

// Walker steps lazily through the AD structures of a payload. The walk is
// finite and non-restartable; it ends at the buffer end, at a zero length
// byte, or at an element whose declared length overruns the remaining
// bytes. Malformed input yields fewer elements, never an error.
type Walker struct {
	b []byte
}

// Walk returns a Walker over a payload.
func Walk(b []byte) *Walker {
	return &Walker{b: b}
}

// Next returns the next well-formed element, and false once the walk ended.
func (w *Walker) Next() (Element, bool) {
	if len(w.b) < 2 {
		w.b = nil
		return Element{}, false
	}
	l := int(w.b[0])
	if l == 0 || 1+l > len(w.b) {
		w.b = nil
		return Element{}, false
	}
	e := Element{Type: w.b[1], Data: w.b[2 : 1+l]}
	w.b = w.b[1+l:]
	return e, true
}

// Field returns the data of the first element of the given type.
// It returns nil if no such element exists.
func (p Packet) Field(typ byte) []byte {
	for w := Walk(p); ; {
		e, ok := w.Next()
		if !ok {
			return nil
		}
		if e.Type == typ {
			return e.Data
		}
	}
}

// Flags returns the advertising flags, if present.
func (p Packet) Flags() (byte, bool) {
	b := p.Field(Flags)
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// LocalName returns the complete local name, falling back to the shortened
// local name. Bytes pass through one character per byte.
func (p Packet) LocalName() string {
	if b := p.Field(CompleteName); b != nil {
		return string(b)
	}
	return string(p.Field(ShortName))
}

// TxPower returns the advertised TX power level, if present.
func (p Packet) TxPower() (int, bool) {
	b := p.Field(TxPower)
	if len(b) < 1 {
		return 0, false
	}
	return int(int8(b[0])), true
}

// ManufacturerData returns the manufacturer specific data field, including
// the leading company identifier.
func (p Packet) ManufacturerData() []byte {
	return p.Field(ManufacturerData)
}

// ManufacturerID returns the company identifier of the manufacturer
// specific data field, if present.
func (p Packet) ManufacturerID() (uint16, bool) {
	b := p.ManufacturerData()
	if len(b) < 2 {
		return 0, false
	}
	return uint16(b[0]) | uint16(b[1])<<8, true
}

// Len ...
func (p Packet) Len() int {
	return len(p)
}

// AppendField appends an AD structure to the payload. The field is dropped
// if it would push the payload past MaxEIRPacketLength.
func (p Packet) AppendField(typ byte, b []byte) Packet {
	if len(p)+2+len(b) > MaxEIRPacketLength {
		return p
	}
	p = append(p, byte(len(b)+1))
	p = append(p, typ)
	return append(p, b...)
}

// AppendFlags appends a flags field to the payload.
func (p Packet) AppendFlags(f byte) Packet {
	return p.AppendField(Flags, []byte{f})
}

// AppendCompleteName appends a complete local name field to the payload.
func (p Packet) AppendCompleteName(n string) Packet {
	return p.AppendField(CompleteName, []byte(n))
}

// AppendShortName appends a shortened local name field to the payload.
func (p Packet) AppendShortName(n string) Packet {
	return p.AppendField(ShortName, []byte(n))
}

// AppendUUID16 appends a complete 16-bit service UUID list field holding a
// single UUID, little endian.
func (p Packet) AppendUUID16(u uint16) Packet {
	return p.AppendField(AllUUID16, []byte{byte(u), byte(u >> 8)})
}

// AppendManufacturerData appends a manufacturer data field to the payload.
func (p Packet) AppendManufacturerData(id uint16, b []byte) Packet {
	d := append([]byte{uint8(id), uint8(id >> 8)}, b...)
	return p.AppendField(ManufacturerData, d)
}
