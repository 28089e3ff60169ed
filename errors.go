// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"errors"
	"fmt"
)

// Kind classifies the errors reported by parsers and generators.
// A Kind is itself an error, so callers can write
//
//	if errors.Is(err, cirjson.ErrDuplicateProperty) { ... }
type Kind byte

// Error kinds reported by this package.
const (
	ErrSyntax            Kind = iota + 1 // invalid token, escape, number, base64 or UTF-8 on input
	ErrStructure                         // mismatched brackets, a value where a name is expected, etc.
	ErrConstraint                        // a configured read or write constraint was exceeded
	ErrDuplicateProperty                 // a repeated property name with duplicate detection enabled
	ErrCoercion                          // a number is out of range for the requested type
	ErrEncoding                          // content that cannot be encoded on output
	ErrIO                                // the underlying source or sink failed
	ErrUnsupported                       // the operation is not supported by this backend
)

var kindStr = [...]string{
	ErrSyntax:            "syntax error",
	ErrStructure:         "structural error",
	ErrConstraint:        "constraint violation",
	ErrDuplicateProperty: "duplicate property",
	ErrCoercion:          "number out of range",
	ErrEncoding:          "encoding error",
	ErrIO:                "I/O error",
	ErrUnsupported:       "unsupported operation",
}

// Error satisfies the error interface.
func (k Kind) Error() string {
	if int(k) < len(kindStr) && kindStr[k] != "" {
		return kindStr[k]
	}
	return "unknown error"
}

// Error is the concrete type of errors reported by parsers and generators.
type Error struct {
	Kind     Kind
	Message  string
	Location Location // zero for generator errors

	err error
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	if e.Location.IsKnown() {
		return fmt.Sprintf("%s\n at %s", e.Message, e.Location)
	}
	return e.Message
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func newError(kind Kind, loc Location, msg string, args ...any) *Error {
	return &Error{Kind: kind, Location: loc, Message: fmt.Sprintf(msg, args...)}
}

// writeError reports a generator error of the given kind.
func writeError(kind Kind, msg string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(msg, args...)}
}

// ioError wraps err as an ErrIO error, unless it is already an *Error.
func ioError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: ErrIO, Message: err.Error(), err: err}
}
