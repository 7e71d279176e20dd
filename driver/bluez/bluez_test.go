package bluez

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"

	blerecon "github.com/nitekry/BLE-Recon"
	"github.com/nitekry/BLE-Recon/adv"
)

func TestUUID16(t *testing.T) {
	v, ok := uuid16("0000fd6f-0000-1000-8000-00805f9b34fb")
	if !ok || v != 0xFD6F {
		t.Fatalf("base-range uuid: got %#04x ok=%v", v, ok)
	}
	if _, ok := uuid16("6e400001-b5a3-f393-e0a9-e50e24dcca9e"); ok {
		t.Fatalf("vendor 128-bit uuid must not map to 16 bits")
	}
}

func TestReportFromProperties(t *testing.T) {
	props := map[string]dbus.Variant{
		"Address":     dbus.MakeVariant("30:AE:A4:00:00:01"),
		"AddressType": dbus.MakeVariant("public"),
		"RSSI":        dbus.MakeVariant(int16(-58)),
		"Name":        dbus.MakeVariant("ESP32Sensor"),
		"UUIDs":       dbus.MakeVariant([]string{"0000180f-0000-1000-8000-00805f9b34fb"}),
	}
	r, err := reportFromProperties(props)
	if err != nil {
		t.Fatalf("returned error: %v", err)
	}
	if r.Addr.String() != "30:AE:A4:00:00:01" || r.AddrType != blerecon.AddrTypePublic || r.RSSI != -58 {
		t.Fatalf("report mismatch: %+v", r)
	}
	a := adv.Extract(r.Data)
	if a.Name != "ESP32Sensor" || a.UUID != "180F" {
		t.Fatalf("re-encoded payload mismatch: %+v", a)
	}
}

func TestReportWithoutAddressRejected(t *testing.T) {
	if _, err := reportFromProperties(map[string]dbus.Variant{}); err == nil {
		t.Fatalf("expected error for device without address")
	}
}

func TestSignalLoopExitsOnStop(t *testing.T) {
	d := New("hci0")
	sigCh := make(chan *dbus.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	go d.loop(sigCh, done, exited)

	close(done)
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatalf("signal loop still running after stop")
	}
}

func TestRandomAddrTypeRefinement(t *testing.T) {
	for _, tt := range []struct {
		addr string
		want blerecon.AddrType
	}{
		{"3E:11:22:33:44:55", blerecon.AddrTypeRandomPrivateNonResolvable},
		{"7E:11:22:33:44:55", blerecon.AddrTypeRandomPrivateResolvable},
		{"FE:11:22:33:44:55", blerecon.AddrTypeRandomStatic},
	} {
		a, err := blerecon.ParseAddr(tt.addr)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.addr, err)
		}
		props := map[string]dbus.Variant{"AddressType": dbus.MakeVariant("random")}
		if got := addrType(props, a); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.addr, got, tt.want)
		}
	}
}
