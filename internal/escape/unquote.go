// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of CirJSON strings, and holds
// the character classification tables shared by the parsers and generators.
package escape

import (
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the encoding of a CirJSON string.
// The input must have the enclosing quotation marks already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \u escape
// of a high surrogate followed by a \u escape of a low surrogate decodes to a
// single rune; unpaired surrogates decode to the Unicode replacement rune.
// Unquote reports an error for an invalid or incomplete escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		dec = mem.Append(dec, src)
		return dec, nil
	}

	for src.Len() != 0 {
		dec = mem.Append(dec, src.SliceTo(i))

		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		c := src.At(0)
		src = src.SliceFrom(1)
		if c != 'u' {
			d := Unescape(c)
			if d < 0 {
				return nil, fmt.Errorf("invalid escape %q", c)
			}
			dec = append(dec, byte(d))
		} else {
			r, rest, err := unquoteHex(src)
			if err != nil {
				return nil, err
			}
			src = rest
			if utf16.IsSurrogate(r) {
				r2 := utf8.RuneError
				if r < 0xDC00 && src.Len() >= 6 && src.At(0) == '\\' && src.At(1) == 'u' {
					if lo, rest, err := unquoteHex(src.SliceFrom(2)); err == nil && lo >= 0xDC00 && lo <= 0xDFFF {
						r2 = utf16.DecodeRune(r, lo)
						src = rest
					}
				}
				r = r2
			}
			dec = utf8.AppendRune(dec, r)
		}

		// Look for the next escape sequence, and if one is not found we can blit
		// the rest of the input and go home.
		i = mem.IndexByte(src, '\\')
		if i < 0 {
			dec = mem.Append(dec, src)
			break
		}
	}
	return dec, nil
}

func unquoteHex(src mem.RO) (rune, mem.RO, error) {
	if src.Len() < 4 {
		return 0, src, errors.New("incomplete Unicode escape")
	}
	var v rune
	for i := 0; i < 4; i++ {
		d := HexValue(rune(src.At(i)))
		if d < 0 {
			return 0, src, fmt.Errorf("invalid hex digit %q", src.At(i))
		}
		v = v<<4 | rune(d)
	}
	return v, src.SliceFrom(4), nil
}

// Unescape returns the character denoted by the single-character escape
// sequence \c, or -1 if c does not denote a standard escape. It does not
// handle \u escapes.
func Unescape(c byte) int {
	switch c {
	case '"', '\\', '/':
		return int(c)
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	}
	return -1
}
