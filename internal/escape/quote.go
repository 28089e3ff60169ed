// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"unicode/utf8"

	"go4.org/mem"
)

// AppendQuoted appends the contents of src to dst, escaped for inclusion in a
// CirJSON string according to OutputCodes. Quotation marks are not added.
// Invalid UTF-8 is replaced by the Unicode replacement rune.
func AppendQuoted(dst []byte, src mem.RO) []byte {
	for src.Len() != 0 {
		r, n := mem.DecodeRune(src)
		if r < utf8.RuneSelf {
			switch code := OutputCodes[r]; {
			case code == 0:
				dst = append(dst, byte(r))
			case code > 0:
				dst = append(dst, '\\', byte(code))
			default:
				dst = AppendUnicodeEscape(dst, r, true)
			}
		} else {
			dst = utf8.AppendRune(dst, r)
		}
		src = src.SliceFrom(n)
	}
	return dst
}

// Quote encodes src as the contents of a CirJSON string value.
func Quote(src mem.RO) []byte { return AppendQuoted(make([]byte, 0, src.Len()), src) }

// AppendUnicodeEscape appends a \uXXXX escape for r to dst. Runes outside the
// Basic Multilingual Plane are escaped as a surrogate pair.
func AppendUnicodeEscape(dst []byte, r rune, upper bool) []byte {
	digits := hexLower
	if upper {
		digits = hexUpper
	}
	put := func(v rune) []byte {
		return append(dst, '\\', 'u', digits[(v>>12)&15], digits[(v>>8)&15], digits[(v>>4)&15], digits[v&15])
	}
	if r > 0xFFFF {
		r -= 0x10000
		dst = put(0xD800 + (r >> 10))
		return put(0xDC00 + (r & 0x3FF))
	}
	return put(r)
}
