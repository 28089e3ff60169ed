// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import "github.com/creachadair/mds/mapset"

// A DupDetector remembers the property names of one object, to report names
// that occur more than once. The first two names are kept inline; a set is
// allocated only when a third distinct name is seen.
type DupDetector struct {
	source any // the parser or generator, for diagnostics

	first, second string
	n             int // number of inline names in use
	more          mapset.Set[string]
}

// NewDupDetector constructs an empty detector for the given source.
func NewDupDetector(source any) *DupDetector { return &DupDetector{source: source} }

// Child returns a new empty detector with the same source as d, for use by a
// nested object.
func (d *DupDetector) Child() *DupDetector { return NewDupDetector(d.source) }

// Reset discards all names remembered by d.
func (d *DupDetector) Reset() {
	d.first, d.second, d.n = "", "", 0
	d.more = nil
}

// Source returns the source of d.
func (d *DupDetector) Source() any { return d.source }

// IsDup reports whether name was previously seen by d. If not, name is
// remembered and IsDup returns false.
func (d *DupDetector) IsDup(name string) bool {
	switch d.n {
	case 0:
		d.first, d.n = name, 1
		return false
	case 1:
		if name == d.first {
			return true
		}
		d.second, d.n = name, 2
		return false
	}
	if name == d.first || name == d.second {
		return true
	}
	if d.more == nil {
		d.more = mapset.New(name)
		return false
	}
	if d.more.Has(name) {
		return true
	}
	d.more.Add(name)
	return false
}
