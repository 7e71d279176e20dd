package blerecon

import "testing"

func TestParseAddrRoundTrip(t *testing.T) {
	for _, s := range []string{
		"A4:CF:12:11:22:33",
		"00:00:00:00:00:00",
		"FF:FF:FF:FF:FF:FF",
	} {
		a, err := ParseAddr(s)
		if err != nil {
			t.Fatalf("parse %s: %v", s, err)
		}
		if got := a.String(); got != s {
			t.Fatalf("round trip: got %s want %s", got, s)
		}
	}
}

func TestParseAddrLowercase(t *testing.T) {
	a, err := ParseAddr("a4:cf:12:11:22:33")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := a.String(); got != "A4:CF:12:11:22:33" {
		t.Fatalf("got %s", got)
	}
}

func TestParseAddrByteOrder(t *testing.T) {
	a, err := ParseAddr("A4:CF:12:11:22:33")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if a[5] != 0xA4 || a[0] != 0x33 {
		t.Fatalf("storage order wrong: %v", a)
	}
}

func TestParseAddrInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"A4:CF:12",
		"A4:CF:12:11:22:33:44",
		"G4:CF:12:11:22:33",
		"A4CF12112233",
		"A4-CF-12-11-22-33",
		"A4:CF:12:11:22:3:3",
		"A4:CF:12:11:2233:",
	} {
		if _, err := ParseAddr(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
