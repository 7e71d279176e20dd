// Package dedup tracks devices seen during one scan pass and classifies
// each report as new, changed or unchanged. The registry is bounded: once
// full, unseen addresses are still surfaced as new but no longer tracked.
package dedup

import (
	"time"

	blerecon "github.com/nitekry/BLE-Recon"
)

// DefaultCapacity bounds the registry when no capacity is given.
const DefaultCapacity = 100

// RSSIThreshold is the signal strength delta, in dBm, above which a report
// counts as changed.
const RSSIThreshold = 10

// staleAfter is the age past which an entry's last observation is
// considered old for display labelling.
const staleAfter = time.Second

// Device is one tracked device.
type Device struct {
	Addr       string
	Name       string
	PayloadHex string
	RSSI       int
	LastSeen   time.Time
}

// Registry is a fixed-capacity arena of seen devices with an address to
// index mapping. An address appears at most once. It is cleared at the
// start of each scan pass and never resizes.
type Registry struct {
	cap     int
	entries []Device
	index   map[string]int
}

// New returns a registry bounded to capacity entries. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{
		cap:     capacity,
		entries: make([]Device, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// Reset empties the registry for a fresh scan pass.
func (r *Registry) Reset() {
	r.entries = r.entries[:0]
	r.index = make(map[string]int, r.cap)
}

// Len returns the number of tracked devices.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup returns the tracked entry for an address.
func (r *Registry) Lookup(addr string) (Device, bool) {
	i, ok := r.index[addr]
	if !ok {
		return Device{}, false
	}
	return r.entries[i], true
}

// Snapshot returns a copy of the tracked devices in insertion order.
func (r *Registry) Snapshot() []Device {
	out := make([]Device, len(r.entries))
	copy(out, r.entries)
	return out
}

// SeenBefore reports whether the address is tracked with a last
// observation more than a second before now. It reads the entry without
// touching it, so it must be evaluated before Classify refreshes the
// timestamp; the session uses it only to pick a display label.
func (r *Registry) SeenBefore(addr string, now time.Time) bool {
	i, ok := r.index[addr]
	if !ok {
		return false
	}
	return r.entries[i].LastSeen.Before(now.Add(-staleAfter))
}

// Classify looks the device up, updates the registry, and tags the report.
//
// A miss inserts the device and returns New; a miss with the registry full
// returns New without tracking. A hit returns Changed when the name
// differs and the new name is non-empty, the payload differs, or the
// signal strength moved by more than RSSIThreshold dBm; only the fields
// that differed are updated. Unchanged refreshes the timestamp only.
func (r *Registry) Classify(addr, name, payloadHex string, rssi int, now time.Time) blerecon.Classification {
	i, ok := r.index[addr]
	if !ok {
		if len(r.entries) >= r.cap {
			return blerecon.New
		}
		r.entries = append(r.entries, Device{
			Addr:       addr,
			Name:       name,
			PayloadHex: payloadHex,
			RSSI:       rssi,
			LastSeen:   now,
		})
		r.index[addr] = len(r.entries) - 1
		return blerecon.New
	}

	d := &r.entries[i]
	nameChanged := d.Name != name && name != ""
	payloadChanged := d.PayloadHex != payloadHex
	delta := d.RSSI - rssi
	if delta < 0 {
		delta = -delta
	}
	rssiChanged := delta > RSSIThreshold

	if !nameChanged && !payloadChanged && !rssiChanged {
		d.LastSeen = now
		return blerecon.Unchanged
	}
	if nameChanged {
		d.Name = name
	}
	if payloadChanged {
		d.PayloadHex = payloadHex
	}
	d.RSSI = rssi
	d.LastSeen = now
	return blerecon.Changed
}
