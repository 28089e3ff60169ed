// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import "github.com/creachadair/cirjson/internal/escape"

// Escape codes used in the tables of a CharacterEscapes.
const (
	EscapeNone     = 0  // write the character as-is
	EscapeStandard = -1 // use the standard escape for the character
	EscapeCustom   = -2 // ask the CharacterEscapes for a custom escape
)

// CharacterEscapes supplies custom escaping of string content on output.
//
// EscapeCodesForASCII returns a 128-entry table giving an escape code for
// each ASCII character. A positive code is written after a backslash.
//
// EscapeSequence returns the escape sequence for r, or nil to write r as-is.
// It is consulted for ASCII characters whose code is EscapeCustom, and for
// every character above U+007F.
type CharacterEscapes interface {
	EscapeCodesForASCII() []int32
	EscapeSequence(r rune) *SerializedString
}

// StandardASCIIEscapes returns a copy of the standard escape table, in which
// quotation mark, backslash and control characters are EscapeStandard and
// all else is EscapeNone. It is a starting point for custom tables.
func StandardASCIIEscapes() []int32 {
	out := make([]int32, 128)
	for i, c := range escape.OutputCodes {
		if c != escape.None {
			out[i] = EscapeStandard
		}
	}
	return out
}
