// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package filter implements token filtering over a CirJSON parser.
//
// A TokenFilter describes which parts of a document to keep. Wrapping a
// parser with NewFilteringParser yields a parser that reports only the
// tokens of the values the filter includes, optionally along with the
// enclosing objects and arrays that lead to them.
//
// The simplest filter selects a path from the root, a sequence of object
// keys and/or array indices. For example, given the CirJSON value:
//
//	["0", {"__cirJsonId__": "1", "a": 1}, {"__cirJsonId__": "2", "c": {"__cirJsonId__": "3", "d": true}}]
//
// the filter
//
//	filter.Path(1, "c", "d")
//
// includes the value "true". Array indices do not count the array id, so
// index 1 is the second element after the id.
package filter

import (
	"strconv"

	"github.com/creachadair/cirjson/pointer"
	"github.com/creachadair/mds/mapset"
)

// A TokenFilter decides which values of a document are included.
//
// Each method returns the filter that applies to the value at the given
// position: nil to exclude the value entirely, IncludeAll to include the
// value and everything inside it, or another filter to examine the contents
// of an object or array further. A scalar value is included only if its
// filter is IncludeAll.
type TokenFilter interface {
	// IncludeProperty returns the filter for the value of the named property
	// of an object. It is not called for the id property.
	IncludeProperty(name string) TokenFilter

	// IncludeElement returns the filter for the array element at index,
	// where index 0 is the first element after the array id.
	IncludeElement(index int) TokenFilter

	// IncludeRootValue returns the filter for the root-level value at index.
	IncludeRootValue(index int) TokenFilter
}

// IncludeAll is a TokenFilter that includes every value.
var IncludeAll TokenFilter = includeAll{}

type includeAll struct{}

func (includeAll) IncludeProperty(string) TokenFilter { return IncludeAll }
func (includeAll) IncludeElement(int) TokenFilter     { return IncludeAll }
func (includeAll) IncludeRootValue(int) TokenFilter   { return IncludeAll }

func (includeAll) String() string { return "IncludeAll" }

// NameFilter returns a filter that includes the values of properties with
// any of the given names, at any depth.
func NameFilter(names ...string) TokenFilter { return nameFilter{mapset.New(names...)} }

type nameFilter struct{ names mapset.Set[string] }

func (f nameFilter) IncludeProperty(name string) TokenFilter {
	if f.names.Has(name) {
		return IncludeAll
	}
	return f
}

func (f nameFilter) IncludeElement(int) TokenFilter   { return f }
func (f nameFilter) IncludeRootValue(int) TokenFilter { return f }

// PointerFilter returns a filter that includes the value addressed by ptr.
// The empty pointer includes the whole document.
func PointerFilter(ptr pointer.Pointer) TokenFilter {
	if ptr.IsEmpty() {
		return IncludeAll
	}
	return pointerFilter{ptr}
}

type pointerFilter struct{ ptr pointer.Pointer }

func (f pointerFilter) IncludeProperty(name string) TokenFilter {
	if f.ptr.MatchesProperty(name) {
		return PointerFilter(f.ptr.Tail())
	}
	return nil
}

func (f pointerFilter) IncludeElement(index int) TokenFilter {
	if f.ptr.MatchesElement(index) {
		return PointerFilter(f.ptr.Tail())
	}
	return nil
}

func (f pointerFilter) IncludeRootValue(int) TokenFilter { return f }

func (f pointerFilter) String() string { return "Pointer(" + f.ptr.String() + ")" }

// Path returns a filter that includes the value at the given sequence of
// nested object keys or array indices from the root. Each key must be a
// string or an int. If no keys are specified, the whole document is
// included.
func Path(keys ...any) TokenFilter {
	var ptr pointer.Pointer
	for _, key := range keys {
		switch t := key.(type) {
		case string:
			ptr = ptr.AppendProperty(t)
		case int:
			ptr = ptr.AppendIndex(t)
		default:
			panic("invalid path element")
		}
	}
	return PointerFilter(ptr)
}

// Inclusion selects what a filtering parser reports around included values.
type Inclusion byte

const (
	// OnlyIncludeAll reports only the tokens of included values. The names
	// of included properties and the enclosing objects and arrays are
	// omitted.
	OnlyIncludeAll Inclusion = iota

	// IncludeAllAndPath reports included values along with the enclosing
	// objects and arrays that lead to them, each with its id, and the names
	// of included properties.
	IncludeAllAndPath
)

func (in Inclusion) String() string {
	switch in {
	case OnlyIncludeAll:
		return "OnlyIncludeAll"
	case IncludeAllAndPath:
		return "IncludeAllAndPath"
	}
	return "Inclusion(" + strconv.Itoa(int(in)) + ")"
}
