package scan

import (
	"testing"
	"time"

	"golang.org/x/net/context"

	blerecon "github.com/nitekry/BLE-Recon"
	"github.com/nitekry/BLE-Recon/adv"
	"github.com/nitekry/BLE-Recon/filter"
)

func report(addr string, rssi int, data []byte) blerecon.Report {
	a, err := blerecon.ParseAddr(addr)
	if err != nil {
		panic(err)
	}
	return blerecon.Report{Addr: a, AddrType: blerecon.AddrTypePublic, RSSI: rssi, Data: data}
}

func TestHandleReportPipeline(t *testing.T) {
	f := filter.New()
	f.Seed()
	s := NewSession(f)
	s.Start()

	iphone := adv.Packet{}.AppendCompleteName("iPhone")
	esp := adv.Packet{}.AppendCompleteName("ESP32Sensor")

	res := s.HandleReport(report("11:22:33:44:55:66", -40, iphone))
	if res.Action != blerecon.Suppress || res.Class != blerecon.Filtered {
		t.Fatalf("catalog name should be filtered: %+v", res)
	}

	res = s.HandleReport(report("30:AE:A4:00:00:01", -40, esp))
	if res.Action != blerecon.Show || res.Class != blerecon.New {
		t.Fatalf("first sighting should show as New: %+v", res)
	}

	res = s.HandleReport(report("30:AE:A4:00:00:01", -42, esp))
	if res.Action != blerecon.Suppress || res.Class != blerecon.Unchanged {
		t.Fatalf("identical report should be deduplicated: %+v", res)
	}

	sum := s.Summary()
	want := Summary{Pass: 1, Reports: 3, Filtered: 1, Duplicates: 1, Shown: 1, Unique: 1}
	if sum != want {
		t.Fatalf("summary mismatch: got %+v want %+v", sum, want)
	}
}

func TestHandleReportCopiesPayload(t *testing.T) {
	s := NewSession(nil)
	s.Start()

	data := []byte(adv.Packet{}.AppendCompleteName("Beacon"))
	res := s.HandleReport(report("30:AE:A4:00:00:01", -40, data))
	data[0] = 0xFF // driver reuses its buffer after the callback
	if string(res.Report.Data) == string(data) {
		t.Fatalf("session must keep its own copy of the payload")
	}
	if res.Attrs.Name != "Beacon" {
		t.Fatalf("attrs mismatch: %+v", res.Attrs)
	}
}

func TestDedupDisabledShowsEverything(t *testing.T) {
	s := NewSession(nil, OptDedup(false))
	s.Start()

	data := []byte(adv.Packet{}.AppendCompleteName("Beacon"))
	for i := 0; i < 3; i++ {
		res := s.HandleReport(report("30:AE:A4:00:00:01", -40, data))
		if res.Action != blerecon.Show {
			t.Fatalf("report %d suppressed with dedup off: %+v", i, res)
		}
	}
	if sum := s.Summary(); sum.Shown != 3 || sum.Duplicates != 0 {
		t.Fatalf("summary mismatch: %+v", sum)
	}
}

func TestDisplayLabelFromObservationAge(t *testing.T) {
	base := time.Now()
	now := base
	s := NewSession(nil, OptClock(func() time.Time { return now }))
	s.Start()

	changed := []byte(adv.Packet{}.AppendCompleteName("BeaconA"))
	changed2 := []byte(adv.Packet{}.AppendCompleteName("BeaconB"))

	if res := s.HandleReport(report("30:AE:A4:00:00:01", -40, changed)); res.Label != blerecon.New {
		t.Fatalf("first sighting labels New: %+v", res)
	}

	// Payload changes 2 s later: classified Changed, labelled Changed too
	// because the previous observation is older than a second.
	now = base.Add(2 * time.Second)
	res := s.HandleReport(report("30:AE:A4:00:00:01", -40, changed2))
	if res.Class != blerecon.Changed || res.Label != blerecon.Changed {
		t.Fatalf("aged re-sighting: %+v", res)
	}

	// A rapid change keeps the New label.
	now = now.Add(100 * time.Millisecond)
	res = s.HandleReport(report("30:AE:A4:00:00:01", -40, changed))
	if res.Class != blerecon.Changed || res.Label != blerecon.New {
		t.Fatalf("rapid re-sighting: %+v", res)
	}
}

func TestStartResetsRegistryNotFilter(t *testing.T) {
	f := filter.New()
	if err := f.Add(filter.Deny, filter.Name, "IPHONE"); err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	s := NewSession(f)
	s.Start()

	data := []byte(adv.Packet{}.AppendCompleteName("Beacon"))
	s.HandleReport(report("30:AE:A4:00:00:01", -40, data))
	s.Start()

	if len(s.Seen()) != 0 {
		t.Fatalf("new pass must start with an empty registry")
	}
	if res := s.HandleReport(report("30:AE:A4:00:00:01", -40, data)); res.Class != blerecon.New {
		t.Fatalf("device is new again after a pass reset: %+v", res)
	}
	iphone := []byte(adv.Packet{}.AppendCompleteName("iPhone"))
	if res := s.HandleReport(report("11:22:33:44:55:66", -40, iphone)); res.Class != blerecon.Filtered {
		t.Fatalf("filter state must survive the pass reset: %+v", res)
	}
}

type fakeDriver struct {
	h       blerecon.AdvHandler
	reports []blerecon.Report
	stopped bool
}

func (d *fakeDriver) SetAdvHandler(h blerecon.AdvHandler) error { d.h = h; return nil }

func (d *fakeDriver) Scan() error {
	for _, r := range d.reports {
		d.h(r)
	}
	return nil
}

func (d *fakeDriver) StopScanning() error { d.stopped = true; return nil }

func TestRunDrainsDriver(t *testing.T) {
	data := []byte(adv.Packet{}.AppendCompleteName("Beacon"))
	d := &fakeDriver{reports: []blerecon.Report{
		report("30:AE:A4:00:00:01", -40, data),
		report("30:AE:A4:00:00:01", -40, data),
		report("30:AE:A4:00:00:02", -40, data),
	}}

	s := NewSession(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // single pass: reports are delivered synchronously by Scan

	var shown int
	if err := s.Run(ctx, d, func(Result) { shown++ }); err != context.Canceled {
		t.Fatalf("run returned %v", err)
	}
	if !d.stopped {
		t.Fatalf("run must stop the driver")
	}
	if shown != 2 {
		t.Fatalf("shown mismatch: got %d want 2", shown)
	}
	if sum := s.Summary(); sum.Unique != 2 || sum.Duplicates != 1 {
		t.Fatalf("summary mismatch: %+v", sum)
	}
}
