package adv

import "fmt"

// Attributes are the per-report fields the filter engine and the display
// operate on. Empty Name or UUID means the attribute is absent from the
// payload, not an empty value.
type Attributes struct {
	Name       string
	UUID       string
	PayloadHex string
}

// Extract pulls the filterable attributes out of a raw payload: the first
// local name element, the first 16-bit service UUID, and the whole payload
// as uppercase hex. Only the first name and UUID are kept; later
// occurrences in the same payload are ignored.
func Extract(b []byte) Attributes {
	a := Attributes{PayloadHex: fmt.Sprintf("%X", b)}
	for w := Walk(b); ; {
		e, ok := w.Next()
		if !ok {
			break
		}
		switch e.Type {
		case CompleteName, ShortName:
			if a.Name == "" && len(e.Data) > 0 {
				a.Name = string(e.Data)
			}
		case AllUUID16, SomeUUID16:
			if a.UUID == "" && len(e.Data) >= 2 {
				a.UUID = fmt.Sprintf("%02X%02X", e.Data[1], e.Data[0])
			}
		}
	}
	return a
}
