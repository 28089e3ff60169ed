// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

// ReadConstraints bounds the resources a parser may consume. A limit <= 0 is
// treated as unlimited. Violations are reported with kind ErrConstraint.
type ReadConstraints struct {
	MaxNestingDepth   int   // maximum depth of nested arrays and objects
	MaxDocumentLength int64 // maximum input length, in bytes or chars
	MaxNumberLength   int   // maximum length of a number token
	MaxStringLength   int   // maximum length of a decoded string value, in bytes
	MaxNameLength     int   // maximum length of a property name, in bytes
	MaxBigIntScale    int   // maximum exponent magnitude when converting a decimal to an integer
}

// DefaultReadConstraints are the read constraints used unless configured.
var DefaultReadConstraints = ReadConstraints{
	MaxNestingDepth:   1000,
	MaxDocumentLength: -1,
	MaxNumberLength:   1000,
	MaxStringLength:   20_000_000,
	MaxNameLength:     50_000,
	MaxBigIntScale:    100_000,
}

func exceeds(v, limit int) bool { return limit > 0 && v > limit }

func (c ReadConstraints) checkDepth(loc Location, depth int) error {
	if exceeds(depth, c.MaxNestingDepth) {
		return newError(ErrConstraint, loc,
			"Document nesting depth (%d) exceeds the maximum allowed (%d)", depth, c.MaxNestingDepth)
	}
	return nil
}

func (c ReadConstraints) checkDocumentLength(loc Location, n int64) error {
	if c.MaxDocumentLength > 0 && n > c.MaxDocumentLength {
		return newError(ErrConstraint, loc,
			"Document length (%d) exceeds the maximum allowed (%d)", n, c.MaxDocumentLength)
	}
	return nil
}

func (c ReadConstraints) checkNumberLength(loc Location, n int) error {
	if exceeds(n, c.MaxNumberLength) {
		return newError(ErrConstraint, loc,
			"Number value length (%d) exceeds the maximum allowed (%d)", n, c.MaxNumberLength)
	}
	return nil
}

func (c ReadConstraints) checkStringLength(loc Location, n int) error {
	if exceeds(n, c.MaxStringLength) {
		return newError(ErrConstraint, loc,
			"String value length (%d) exceeds the maximum allowed (%d)", n, c.MaxStringLength)
	}
	return nil
}

func (c ReadConstraints) checkNameLength(loc Location, n int) error {
	if exceeds(n, c.MaxNameLength) {
		return newError(ErrConstraint, loc,
			"Name length (%d) exceeds the maximum allowed (%d)", n, c.MaxNameLength)
	}
	return nil
}

func (c ReadConstraints) checkBigIntScale(loc Location, scale int) error {
	if scale < 0 {
		scale = -scale
	}
	if exceeds(scale, c.MaxBigIntScale) {
		return newError(ErrConstraint, loc,
			"Decimal scale magnitude (%d) exceeds the maximum allowed (%d)", scale, c.MaxBigIntScale)
	}
	return nil
}

// WriteConstraints bounds the output a generator may produce.
type WriteConstraints struct {
	MaxNestingDepth int // maximum depth of nested arrays and objects
}

// DefaultWriteConstraints are the write constraints used unless configured.
var DefaultWriteConstraints = WriteConstraints{MaxNestingDepth: 1000}

func (c WriteConstraints) checkDepth(depth int) error {
	if exceeds(depth, c.MaxNestingDepth) {
		return writeError(ErrConstraint,
			"Document nesting depth (%d) exceeds the maximum allowed (%d)", depth, c.MaxNestingDepth)
	}
	return nil
}

// ErrorReportConfig bounds how much input is quoted in error messages.
type ErrorReportConfig struct {
	MaxErrorTokenLength int // longest invalid token quoted in a message
	MaxRawContentLength int // longest source snippet quoted in a location
}

// DefaultErrorReport is the error report configuration used unless configured.
var DefaultErrorReport = ErrorReportConfig{MaxErrorTokenLength: 256, MaxRawContentLength: 500}
