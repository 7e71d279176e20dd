// Package scan runs one scan pass: it takes raw advertisement reports from
// a driver, extracts attributes, applies the filter, deduplicates, and
// hands displayable results to the caller.
package scan

import (
	"time"

	log "github.com/mgutz/logxi/v1"
	"github.com/pkg/errors"
	"golang.org/x/net/context"

	blerecon "github.com/nitekry/BLE-Recon"
	"github.com/nitekry/BLE-Recon/adv"
	"github.com/nitekry/BLE-Recon/dedup"
	"github.com/nitekry/BLE-Recon/filter"
)

var logger = log.New("scan")

// A Driver is a radio that produces advertisement reports. It delivers
// whole reports synchronously from a single goroutine; a report's Data is
// only valid for the duration of the handler call.
type Driver interface {
	// SetAdvHandler registers the handler invoked per report.
	SetAdvHandler(h blerecon.AdvHandler) error

	// Scan starts scanning.
	Scan() error

	// StopScanning stops scanning.
	StopScanning() error
}

// Result is the outcome of processing one report.
type Result struct {
	Action blerecon.Action
	Class  blerecon.Classification
	Attrs  adv.Attributes

	// Report carries the raw input through to the renderer. Data is the
	// session's own copy.
	Report blerecon.Report

	// Label is the display tag (New or Changed), chosen by the age of the
	// previous observation rather than by Class.
	Label blerecon.Classification
}

// Summary is the counter snapshot of one scan pass.
type Summary struct {
	Pass       int
	Reports    int
	Filtered   int
	Duplicates int
	Shown      int
	Unique     int
}

// An Option configures a Session.
type Option func(*Session)

// OptCapacity bounds the dedup registry.
func OptCapacity(n int) Option {
	return func(s *Session) { s.reg = dedup.New(n) }
}

// OptDedup enables or disables deduplication.
func OptDedup(enable bool) Option {
	return func(s *Session) { s.dedup = enable }
}

// OptClock overrides the session clock.
func OptClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session processes the reports of one scan pass. It is single-threaded:
// the driver calls HandleReport synchronously per report, and every path
// through it returns promptly so the driver is never stalled. Filter state
// outlives the session; registry state does not.
type Session struct {
	filter *filter.Filter
	reg    *dedup.Registry
	dedup  bool
	now    func() time.Time

	pass       int
	reports    int
	filtered   int
	duplicates int
	shown      int
}

// NewSession returns a session over the given filter. The filter may be
// nil, in which case everything shows.
func NewSession(f *filter.Filter, opts ...Option) *Session {
	s := &Session{
		filter: f,
		reg:    dedup.New(dedup.DefaultCapacity),
		dedup:  true,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins a fresh pass: the registry and counters are reset, the
// filter is left alone.
func (s *Session) Start() {
	s.pass++
	s.reports = 0
	s.filtered = 0
	s.duplicates = 0
	s.shown = 0
	s.reg.Reset()
	logger.Info("pass started", "pass", s.pass, "dedup", s.dedup)
}

// SetDedup toggles deduplication for subsequent reports.
func (s *Session) SetDedup(enable bool) {
	s.dedup = enable
}

// Dedup reports whether deduplication is on.
func (s *Session) Dedup() bool {
	return s.dedup
}

// Filter returns the session's filter handle.
func (s *Session) Filter() *filter.Filter {
	return s.filter
}

// Seen returns a snapshot of the devices tracked so far this pass.
func (s *Session) Seen() []dedup.Device {
	return s.reg.Snapshot()
}

// Summary returns the counters of the current pass.
func (s *Session) Summary() Summary {
	return Summary{
		Pass:       s.pass,
		Reports:    s.reports,
		Filtered:   s.filtered,
		Duplicates: s.duplicates,
		Shown:      s.shown,
		Unique:     s.reg.Len(),
	}
}

// HandleReport classifies one report. It never blocks; the driver may
// deliver the next report as soon as it returns.
func (s *Session) HandleReport(r blerecon.Report) Result {
	s.reports++

	attrs := adv.Extract(r.Data)
	mac := r.Addr.String()

	if !s.filter.ShouldShow(mac, attrs.Name, attrs.UUID, attrs.PayloadHex) {
		s.filtered++
		return Result{Action: blerecon.Suppress, Class: blerecon.Filtered, Attrs: attrs}
	}

	now := s.now()

	// The label is decided by the age of the previous observation, read
	// before Classify refreshes it.
	label := blerecon.New
	if s.reg.SeenBefore(mac, now) {
		label = blerecon.Changed
	}

	class := blerecon.New
	if s.dedup {
		class = s.reg.Classify(mac, attrs.Name, attrs.PayloadHex, r.RSSI, now)
		if class == blerecon.Unchanged {
			s.duplicates++
			return Result{Action: blerecon.Suppress, Class: class, Attrs: attrs, Label: label}
		}
	}

	s.shown++
	out := r
	out.Data = append([]byte(nil), r.Data...)
	return Result{
		Action: blerecon.Show,
		Class:  class,
		Attrs:  attrs,
		Report: out,
		Label:  label,
	}
}

// Run executes one pass against a driver, forwarding displayable results
// to out until the context ends.
func (s *Session) Run(ctx context.Context, d Driver, out func(Result)) error {
	s.Start()
	err := d.SetAdvHandler(func(r blerecon.Report) {
		res := s.HandleReport(r)
		if res.Action == blerecon.Show && out != nil {
			out(res)
		}
	})
	if err != nil {
		return errors.Wrap(err, "can't set adv handler")
	}
	if err := d.Scan(); err != nil {
		return errors.Wrap(err, "can't scan")
	}
	<-ctx.Done()
	if err := d.StopScanning(); err != nil {
		return errors.Wrap(err, "can't stop scanning")
	}
	sum := s.Summary()
	logger.Info("pass complete",
		"pass", sum.Pass,
		"reports", sum.Reports,
		"filtered", sum.Filtered,
		"duplicates", sum.Duplicates,
		"shown", sum.Shown,
		"unique", sum.Unique)
	return ctx.Err()
}
