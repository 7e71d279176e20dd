// Package replay is a scan driver that plays back a canned sequence of
// advertisement reports. It stands in for a radio in demos and tests.
package replay

import (
	"time"

	blerecon "github.com/nitekry/BLE-Recon"
	"github.com/nitekry/BLE-Recon/adv"
)

// Driver replays reports to the registered handler. The zero value replays
// nothing; use New for the built-in corpus.
type Driver struct {
	Reports  []blerecon.Report
	Interval time.Duration
	Loop     bool

	h    blerecon.AdvHandler
	stop chan struct{}
	done chan struct{}
}

// New returns a driver loaded with a small fixed corpus of plausible
// advertisers: an ESP32 sensor, an iPhone, AirPods, an exposure
// notification beacon and a nameless manufacturer-data advertiser.
func New(interval time.Duration) *Driver {
	mustAddr := func(s string) blerecon.Addr {
		a, err := blerecon.ParseAddr(s)
		if err != nil {
			panic(err)
		}
		return a
	}
	return &Driver{
		Interval: interval,
		Loop:     true,
		Reports: []blerecon.Report{
			{
				Addr:     mustAddr("30:AE:A4:00:00:01"),
				AddrType: blerecon.AddrTypePublic,
				RSSI:     -52,
				Data: adv.Packet{}.
					AppendFlags(adv.FlagGeneralDiscoverable | adv.FlagLEOnly).
					AppendCompleteName("ESP32Sensor").
					AppendUUID16(0x180F),
			},
			{
				Addr:     mustAddr("A4:CF:12:11:22:33"),
				AddrType: blerecon.AddrTypeRandomPrivateResolvable,
				RSSI:     -61,
				Data: adv.Packet{}.
					AppendFlags(adv.FlagGeneralDiscoverable).
					AppendCompleteName("iPhone").
					AppendManufacturerData(0x004C, []byte{0x02, 0x15}),
			},
			{
				Addr:     mustAddr("DC:2B:2A:44:55:66"),
				AddrType: blerecon.AddrTypeRandomStatic,
				RSSI:     -70,
				Data: adv.Packet{}.
					AppendShortName("AirPods").
					AppendManufacturerData(0x004C, []byte{0x07, 0x19}),
			},
			{
				Addr:     mustAddr("5E:11:7A:00:99:AB"),
				AddrType: blerecon.AddrTypeRandomPrivateNonResolvable,
				RSSI:     -45,
				Data: adv.Packet{}.
					AppendFlags(adv.FlagGeneralDiscoverable).
					AppendUUID16(0xFD6F),
			},
			{
				Addr:     mustAddr("00:1B:DC:F0:0D:01"),
				AddrType: blerecon.AddrTypePublic,
				RSSI:     -80,
				Data: adv.Packet{}.
					AppendManufacturerData(0x0059, []byte{0xDE, 0xAD, 0xBE, 0xEF}),
			},
		},
	}
}

// SetAdvHandler ...
func (d *Driver) SetAdvHandler(h blerecon.AdvHandler) error {
	d.h = h
	return nil
}

// Scan replays the corpus once, or repeatedly at Interval when Loop is
// set, until StopScanning. Each report's payload is handed to the handler
// as a fresh copy so handler-side retention bugs surface early.
func (d *Driver) Scan() error {
	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done
	deliver := func() bool {
		for _, r := range d.Reports {
			select {
			case <-stop:
				return false
			default:
			}
			if d.h != nil {
				rc := r
				rc.Data = append([]byte(nil), r.Data...)
				d.h(rc)
			}
			if d.Interval > 0 {
				select {
				case <-stop:
					return false
				case <-time.After(d.Interval):
				}
			}
		}
		return true
	}
	if !d.Loop {
		defer close(done)
		deliver()
		return nil
	}
	go func() {
		defer close(done)
		for deliver() {
		}
	}()
	return nil
}

// StopScanning stops playback and waits for any in-flight delivery to
// finish, so no handler call survives its return.
func (d *Driver) StopScanning() error {
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	if d.done != nil {
		<-d.done
		d.done = nil
	}
	return nil
}
