// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import (
	"strconv"
	"unicode"
)

var (
	hexLower = []byte("0123456789abcdef")
	hexUpper = []byte("0123456789ABCDEF")
)

// Codes in the output escape tables. A positive code is the character written
// after a backslash; Generic requests a \u escape.
const (
	None    = 0
	Generic = -1
)

// OutputCodes maps each ASCII character to its escape code on output:
// control characters use a short escape where one exists and \u otherwise,
// quotation marks and backslashes are escaped with a backslash.
var OutputCodes [128]int32

// OutputCodesWithSlash is OutputCodes with "/" also escaped.
var OutputCodesWithSlash [128]int32

// Classes in InputCodesUTF8. A positive class > 1 is the length of a UTF-8
// sequence introduced by the byte.
const (
	InputPlain   = 0  // copied as-is
	InputSpecial = 1  // quote, backslash or control character
	InputInvalid = -1 // cannot begin a UTF-8 sequence
)

// InputCodesUTF8 classifies each byte of UTF-8 string content.
var InputCodesUTF8 [256]int8

// InputCodesComment classifies bytes inside comments: '*', '\n', '\r' and the
// lead bytes of multi-byte UTF-8 sequences are marked, all else is 0.
var InputCodesComment [256]int8

// InputCodesRune classifies runes below 256 of string content for rune
// input: quote, backslash and control characters are InputSpecial.
var InputCodesRune [256]int8

func init() {
	for i := range 32 {
		OutputCodes[i] = Generic
	}
	OutputCodes['"'] = '"'
	OutputCodes['\\'] = '\\'
	OutputCodes['\b'] = 'b'
	OutputCodes['\t'] = 't'
	OutputCodes['\f'] = 'f'
	OutputCodes['\n'] = 'n'
	OutputCodes['\r'] = 'r'

	OutputCodesWithSlash = OutputCodes
	OutputCodesWithSlash['/'] = '/'

	for i := range 256 {
		var v int8
		switch {
		case i < 32 || i == '"' || i == '\\':
			v = InputSpecial
		case i < 0x80:
			v = InputPlain
		case i&0xE0 == 0xC0 && i >= 0xC2:
			v = 2
		case i&0xF0 == 0xE0:
			v = 3
		case i&0xF8 == 0xF0 && i <= 0xF4:
			v = 4
		default:
			v = InputInvalid
		}
		InputCodesUTF8[i] = v
		if i < 0x80 {
			InputCodesRune[i] = v
		}
		if v > 1 {
			InputCodesComment[i] = v
		}
	}
	InputCodesComment['*'] = '*'
	InputCodesComment['\n'] = '\n'
	InputCodesComment['\r'] = '\r'
}

// HexValue returns the value of the hexadecimal digit c, or -1.
func HexValue(c rune) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// IsNameStart reports whether c may begin an unquoted property name.
func IsNameStart(c rune) bool {
	return c == '_' || c == '$' || unicode.IsLetter(c)
}

// IsNamePart reports whether c may continue an unquoted property name.
func IsNamePart(c rune) bool {
	return IsNameStart(c) || unicode.IsDigit(c) || unicode.Is(unicode.Mn, c)
}

// IsSpace reports whether c is CirJSON whitespace.
func IsSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// CharDesc describes a character for use in error messages.
func CharDesc(c rune) string {
	switch {
	case c < 0:
		return "end-of-input"
	case unicode.IsControl(c):
		return "(CTRL-CHAR, code " + strconv.Itoa(int(c)) + ")"
	case c > 255:
		return "'" + string(c) + "' (code " + strconv.Itoa(int(c)) + " / 0x" + strconv.FormatInt(int64(c), 16) + ")"
	}
	return "'" + string(c) + "' (code " + strconv.Itoa(int(c)) + ")"
}
