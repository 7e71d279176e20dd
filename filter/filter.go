// Package filter decides advertisement visibility from two independent
// pattern lists. The allow list, when active, strictly determines
// visibility; the deny list is only consulted when the allow list is off.
package filter

import (
	"strings"

	"github.com/pkg/errors"
)

// ListKind selects one of the two pattern lists.
type ListKind int

// ListKind values.
const (
	Allow ListKind = iota
	Deny
)

func (k ListKind) String() string {
	if k == Allow {
		return "allow"
	}
	return "deny"
}

// Category selects one of the orthogonal attribute classes a pattern
// applies to. MAC and OUI patterns share a set; they differ only in
// validation at insert time.
type Category int

// Category values.
const (
	MAC Category = iota
	OUI
	Name
	UUID
	Payload
)

func (c Category) String() string {
	switch c {
	case MAC:
		return "mac"
	case OUI:
		return "oui"
	case Name:
		return "name"
	case UUID:
		return "uuid"
	case Payload:
		return "payload"
	}
	return "unknown"
}

// Mutation errors. No state changes when one is returned.
var (
	ErrEmptyPattern = errors.New("empty pattern value")
	ErrShortOUI     = errors.New("OUI must be format XX:XX:XX")
	ErrBadCategory  = errors.New("unknown pattern category")
)

// list is one pattern list. Patterns are stored pre-uppercased so report
// processing never case-folds.
type list struct {
	active  bool
	oui     []string
	name    []string
	uuid    []string
	payload []string
}

func (l *list) add(c Category, v string) {
	switch c {
	case MAC, OUI:
		l.oui = append(l.oui, v)
	case Name:
		l.name = append(l.name, v)
	case UUID:
		l.uuid = append(l.uuid, v)
	case Payload:
		l.payload = append(l.payload, v)
	}
	l.active = true
}

func (l *list) clear() {
	*l = list{}
}

func (l *list) empty() bool {
	return len(l.oui)+len(l.name)+len(l.uuid)+len(l.payload) == 0
}

// matches reports whether the candidate attributes match the list on any
// category.
func (l *list) matches(mac, name, uuid, payload string) bool {
	return matchOUI(mac, l.oui) ||
		matchSubstring(name, l.name) ||
		matchSubstring(uuid, l.uuid) ||
		matchSubstring(payload, l.payload)
}

// matchOUI matches a candidate address against MAC/OUI patterns. A pattern
// of 17 or more characters is a full address and must match exactly; a
// shorter one is a prefix compared over min(len(pattern), len(addr)).
func matchOUI(mac string, patterns []string) bool {
	if len(patterns) == 0 || mac == "" {
		return false
	}
	mac = strings.ToUpper(mac)
	for _, p := range patterns {
		if len(p) >= 17 {
			if mac == p {
				return true
			}
			continue
		}
		n := len(p)
		if len(mac) < n {
			n = len(mac)
		}
		if mac[:n] == p[:n] {
			return true
		}
	}
	return false
}

// matchSubstring matches a candidate against substring patterns. An empty
// candidate never matches; an empty pattern set never matches.
func matchSubstring(s string, patterns []string) bool {
	if len(patterns) == 0 || s == "" {
		return false
	}
	s = strings.ToUpper(s)
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Filter holds the allow and deny lists. The zero value shows everything;
// so does a nil Filter, by the fail-open policy.
type Filter struct {
	allow list
	deny  list
}

// New returns an empty, permissive filter.
func New() *Filter {
	return &Filter{}
}

// ShouldShow reports whether a report with the given attributes should be
// surfaced. When the allow list is active it alone decides; otherwise an
// active deny list hides matches; otherwise everything shows.
func (f *Filter) ShouldShow(mac, name, uuid, payloadHex string) bool {
	if f == nil {
		return true
	}
	if f.allow.active {
		return f.allow.matches(mac, name, uuid, payloadHex)
	}
	if f.deny.active {
		return !f.deny.matches(mac, name, uuid, payloadHex)
	}
	return true
}

// Add inserts a pattern into a list and activates it. The value is
// validated per category and stored uppercased; OUI values are trimmed to
// the three-octet prefix.
func (f *Filter) Add(k ListKind, c Category, value string) error {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return ErrEmptyPattern
	}
	switch c {
	case MAC, Name, UUID, Payload:
	case OUI:
		if len(v) < 8 {
			return ErrShortOUI
		}
		v = v[:8]
	default:
		return errors.Wrapf(ErrBadCategory, "%d", int(c))
	}
	f.pick(k).add(c, v)
	return nil
}

// Clear empties every category of a list and turns it off.
func (f *Filter) Clear(k ListKind) {
	f.pick(k).clear()
}

// ClearAll clears both lists.
func (f *Filter) ClearAll() {
	f.allow.clear()
	f.deny.clear()
}

// Disable turns both lists off without dropping their patterns.
func (f *Filter) Disable() {
	f.allow.active = false
	f.deny.active = false
}

// Enable turns a list back on if it holds any patterns.
func (f *Filter) Enable(k ListKind) {
	l := f.pick(k)
	if !l.empty() {
		l.active = true
	}
}

func (f *Filter) pick(k ListKind) *list {
	if k == Allow {
		return &f.allow
	}
	return &f.deny
}

// Counts is the number of patterns per category in one list.
type Counts struct {
	Active  bool
	OUI     int
	Name    int
	UUID    int
	Payload int
}

// Total ...
func (c Counts) Total() int {
	return c.OUI + c.Name + c.UUID + c.Payload
}

// Status is a snapshot of both lists.
type Status struct {
	Allow Counts
	Deny  Counts
}

// Status returns pattern counts and modes for both lists.
func (f *Filter) Status() Status {
	count := func(l *list) Counts {
		return Counts{
			Active:  l.active,
			OUI:     len(l.oui),
			Name:    len(l.name),
			UUID:    len(l.uuid),
			Payload: len(l.payload),
		}
	}
	return Status{Allow: count(&f.allow), Deny: count(&f.deny)}
}
