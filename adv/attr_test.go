package adv

import "testing"

func TestExtract(t *testing.T) {
	p := Packet{}.
		AppendFlags(FlagGeneralDiscoverable | FlagLEOnly).
		AppendCompleteName("ESP32Sensor").
		AppendUUID16(0x180F)

	a := Extract(p)
	if a.Name != "ESP32Sensor" {
		t.Fatalf("name mismatch: got %q want %q", a.Name, "ESP32Sensor")
	}
	if a.UUID != "180F" {
		t.Fatalf("uuid mismatch: got %q want %q", a.UUID, "180F")
	}
	want := "020106" + "0C09455350333253656E736F72" + "03030F18"
	if a.PayloadHex != want {
		t.Fatalf("payload hex mismatch: got %q want %q", a.PayloadHex, want)
	}
}

func TestExtractFirstOccurrenceWins(t *testing.T) {
	p := Packet{}.
		AppendCompleteName("first").
		AppendCompleteName("second").
		AppendUUID16(0xFD6F).
		AppendUUID16(0x1234)

	a := Extract(p)
	if a.Name != "first" {
		t.Fatalf("expected first name to win, got %q", a.Name)
	}
	if a.UUID != "FD6F" {
		t.Fatalf("expected first uuid to win, got %q", a.UUID)
	}
}

func TestExtractAbsentAttributes(t *testing.T) {
	p := Packet{}.AppendFlags(FlagGeneralDiscoverable | FlagLEOnly)
	a := Extract(p)
	if a.Name != "" || a.UUID != "" {
		t.Fatalf("expected empty attributes, got name=%q uuid=%q", a.Name, a.UUID)
	}
	if a.PayloadHex != "020106" {
		t.Fatalf("payload hex mismatch: got %q", a.PayloadHex)
	}
}

func TestExtractNonPrintableNameBytes(t *testing.T) {
	p := Packet{}.AppendField(CompleteName, []byte{0x01, 'a', 0xFE})
	a := Extract(p)
	if len(a.Name) != 3 || a.Name[0] != 0x01 || a.Name[1] != 'a' || a.Name[2] != 0xFE {
		t.Fatalf("name bytes should pass through untouched, got % X", []byte(a.Name))
	}
}

func TestExtractShortUUIDElementIgnored(t *testing.T) {
	p := Packet{}.AppendField(AllUUID16, []byte{0x0F})
	if a := Extract(p); a.UUID != "" {
		t.Fatalf("one-byte uuid element should be ignored, got %q", a.UUID)
	}
}
