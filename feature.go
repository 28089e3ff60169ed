// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"math/bits"
	"strings"
)

// ReadFeature is a set of flags controlling the behaviour of parsers.
// Most flags enable non-standard extensions of the grammar, each of which is
// independently rejected unless enabled.
type ReadFeature uint32

// Flags for ReadFeature.
const (
	// AutoCloseSource closes the underlying reader when the parser is closed,
	// if the reader implements io.Closer.
	AutoCloseSource ReadFeature = 1 << iota

	// StrictDuplicateDetection rejects repeated property names in an object.
	StrictDuplicateDetection

	// IncludeSourceInLocation quotes a snippet of the input in locations.
	IncludeSourceInLocation

	// ClearCurrentTokenOnClose resets the current token to None on Close.
	ClearCurrentTokenOnClose

	// UseFastDoubleParser converts floating-point text with the shortest
	// round-trip algorithm of strconv rather than exact big.Float arithmetic.
	UseFastDoubleParser

	// UseFastBigNumberParser parses big decimals directly from text rather
	// than through an explicit unscaled big.Int and exponent.
	UseFastBigNumberParser

	// AllowJavaComments permits /* ... */ and // comments.
	AllowJavaComments

	// AllowYAMLComments permits # comments to end of line.
	AllowYAMLComments

	// AllowUnquotedNames permits property names that are not quoted.
	AllowUnquotedNames

	// AllowSingleQuotes permits apostrophes to quote strings and names.
	AllowSingleQuotes

	// AllowUnescapedControlChars permits raw control characters in strings.
	AllowUnescapedControlChars

	// AllowBackslashEscapingAnyChar permits a backslash before any character.
	AllowBackslashEscapingAnyChar

	// AllowLeadingZeros permits numbers like 007.
	AllowLeadingZeros

	// AllowLeadingPlusSign permits numbers like +1.
	AllowLeadingPlusSign

	// AllowLeadingDecimalPoint permits numbers like .5.
	AllowLeadingDecimalPoint

	// AllowTrailingDecimalPoint permits numbers like 5.
	AllowTrailingDecimalPoint

	// AllowNonNumericNumbers permits the tokens NaN, Infinity, +Infinity,
	// -Infinity, +INF and -INF as floating-point values.
	AllowNonNumericNumbers

	// AllowMissingValues reports null for missing array values, as in [1,,2].
	AllowMissingValues

	// AllowTrailingComma permits a comma before a closing bracket.
	AllowTrailingComma
)

// DefaultReadFeatures are the features enabled unless configured otherwise.
const DefaultReadFeatures = AutoCloseSource | IncludeSourceInLocation

var readFeatureNames = [...]string{
	"AutoCloseSource", "StrictDuplicateDetection", "IncludeSourceInLocation",
	"ClearCurrentTokenOnClose", "UseFastDoubleParser", "UseFastBigNumberParser",
	"AllowJavaComments", "AllowYAMLComments", "AllowUnquotedNames", "AllowSingleQuotes",
	"AllowUnescapedControlChars", "AllowBackslashEscapingAnyChar", "AllowLeadingZeros",
	"AllowLeadingPlusSign", "AllowLeadingDecimalPoint", "AllowTrailingDecimalPoint",
	"AllowNonNumericNumbers", "AllowMissingValues", "AllowTrailingComma",
}

// Has reports whether all the flags in f2 are set in f.
func (f ReadFeature) Has(f2 ReadFeature) bool { return f&f2 == f2 }

func (f ReadFeature) String() string { return flagString(uint32(f), readFeatureNames[:]) }

// WriteFeature is a set of flags controlling the behaviour of generators.
type WriteFeature uint32

// Flags for WriteFeature.
const (
	// AutoCloseTarget closes the underlying writer when the generator is
	// closed, if the writer implements io.Closer.
	AutoCloseTarget WriteFeature = 1 << iota

	// AutoCloseContent closes any open arrays and objects on Close.
	AutoCloseContent

	// FlushPassedToStream calls Flush on the underlying writer, if it has
	// one, when the generator is flushed.
	FlushPassedToStream

	// WriteStrictDuplicateDetection rejects repeated property names in an
	// object.
	WriteStrictDuplicateDetection

	// QuotePropertyNames quotes property names. When disabled, names are
	// written without quotation marks (which is not valid CirJSON).
	QuotePropertyNames

	// WriteNaNAsStrings writes NaN and infinite values as quoted strings.
	WriteNaNAsStrings

	// WriteNumbersAsStrings writes all numbers as quoted strings.
	WriteNumbersAsStrings

	// EscapeNonASCII escapes all characters above U+007F.
	EscapeNonASCII

	// EscapeForwardSlashes escapes "/" as "\/".
	EscapeForwardSlashes

	// WriteBigDecimalAsPlain writes decimals without scientific notation.
	WriteBigDecimalAsPlain

	// WriteHexUpperCase uses upper-case hex digits in \u escapes.
	WriteHexUpperCase
)

// DefaultWriteFeatures are the features enabled unless configured otherwise.
const DefaultWriteFeatures = AutoCloseTarget | AutoCloseContent | FlushPassedToStream |
	QuotePropertyNames | WriteNaNAsStrings | WriteHexUpperCase

var writeFeatureNames = [...]string{
	"AutoCloseTarget", "AutoCloseContent", "FlushPassedToStream", "StrictDuplicateDetection",
	"QuotePropertyNames", "WriteNaNAsStrings", "WriteNumbersAsStrings", "EscapeNonASCII",
	"EscapeForwardSlashes", "WriteBigDecimalAsPlain", "WriteHexUpperCase",
}

// Has reports whether all the flags in f2 are set in f.
func (f WriteFeature) Has(f2 WriteFeature) bool { return f&f2 == f2 }

func (f WriteFeature) String() string { return flagString(uint32(f), writeFeatureNames[:]) }

func flagString(v uint32, names []string) string {
	if v == 0 {
		return "none"
	}
	var ss []string
	for v != 0 {
		i := bits.TrailingZeros32(v)
		v &^= 1 << i
		if i < len(names) {
			ss = append(ss, names[i])
		}
	}
	return strings.Join(ss, "|")
}
