// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"fmt"
	"io"
)

// An Anchor represents the current token of a parser. The methods of an
// Anchor report the type, text, and location of the token.
type Anchor interface {
	Token() Token          // Returns the token type of the anchor
	Text() (string, error) // Returns the decoded text of the anchor
	Location() Location    // Returns the starting location of the anchor
	Context() *ReadContext // Returns the context enclosing the anchor
}

// A Handler handles events from parsing an input stream.  If a method reports
// an error, parsing stops and that error is returned to the caller.
// The parser ensures objects and arrays are correctly balanced, and that each
// carries its id.
//
// The Anchor argument to a Handler method is only valid for the duration of
// that method call. If the method needs to retain information about the
// location after it returns, it must copy the relevant data.
type Handler interface {
	// Begin a new object, whose open brace is at loc.
	BeginObject(loc Anchor) error

	// End the most-recently-opened object, whose close brace is at loc.
	EndObject(loc Anchor) error

	// Begin a new array, whose open bracket is at loc.
	BeginArray(loc Anchor) error

	// End the most-recently-opened array, whose close bracket is at loc.
	EndArray(loc Anchor) error

	// Begin a new object member, whose name is at loc. The text of the
	// anchor is the decoded name.
	BeginMember(loc Anchor) error

	// End the current object member giving the location and type of the token
	// that follows the member (either a property name or EndObject).
	EndMember(loc Anchor) error

	// Report a data value at the given location. The type of the value can be
	// recovered from the token.
	Value(loc Anchor) error

	// EndOfInput reports the end of the input stream.
	EndOfInput(loc Anchor)
}

// IDHandler is an optional interface that a Handler may implement to handle
// the ids of objects and arrays separately from their contents. If a
// handler implements this method, ID is called with the id string of each
// object and array, in place of the BeginMember, Value, and EndMember calls
// that would otherwise report it.
type IDHandler interface {
	// Process the id of the innermost open object or array, whose string
	// value is at loc.
	ID(loc Anchor) error
}

// Stream is a stream parser that consumes tokens from a Parser and delivers
// events to a Handler corresponding with the structure of the input.
type Stream struct {
	p Parser
}

// NewStream constructs a new Stream that consumes tokens from p.
func NewStream(p Parser) *Stream { return &Stream{p: p} }

// Parser returns the parser from which s consumes tokens.
func (s *Stream) Parser() Parser { return s.p }

// Token implements part of the Anchor interface.
func (s *Stream) Token() Token { return s.p.CurrentToken() }

// Text implements part of the Anchor interface.
func (s *Stream) Text() (string, error) { return s.p.Text() }

// Location implements part of the Anchor interface.
func (s *Stream) Location() Location { return s.p.TokenLocation() }

// Context implements part of the Anchor interface.
func (s *Stream) Context() *ReadContext { return s.p.Context() }

func (s *Stream) recoverParseError(errp *error) {
	if serr := recover(); serr != nil {
		switch err := serr.(type) {
		case parseError:
			*errp = err.error
		case handlerError:
			*errp = err.error
		default:
			panic(serr)
		}
	}
}

// Parse parses the input stream and delivers events to h until either an error
// occurs or the input is exhausted. In case of a parse error, the returned
// error has type [*Error].
func (s *Stream) Parse(h Handler) (err error) {
	defer s.recoverParseError(&err)

	for {
		if s.next() == None {
			h.EndOfInput(s)
			return nil
		}
		s.parseElement(h)
	}
}

// ParseOne parses a single value from the input stream and delivers events to
// h until the value is complete or an error occurs. If no further value is
// available from the input, ParseOne returns io.EOF. In case of a parse
// error, the returned error has type [*Error].
func (s *Stream) ParseOne(h Handler) (err error) {
	defer s.recoverParseError(&err)

	if s.next() == None {
		h.EndOfInput(s)
		return io.EOF
	}
	s.parseElement(h)
	return nil
}

// parseElement consumes a single value of any type.
// Precondition: token != None.
func (s *Stream) parseElement(h Handler) {
	switch tok := s.p.CurrentToken(); tok {
	case StartObject:
		s.checkError(h.BeginObject(s))
		s.parseMembers(h)
		s.checkError(h.EndObject(s))
	case StartArray:
		s.checkError(h.BeginArray(s))
		s.parseElements(h)
		s.checkError(h.EndArray(s))
	case String, Int, Float, True, False, Null, EmbeddedObject:
		s.checkError(h.Value(s))
	default:
		s.syntaxError("unexpected %v", tok)
	}
}

// parseMembers consumes the id and the key:value members of an object.
// Precondition: token == StartObject.
// Postcondition: token == EndObject.
func (s *Stream) parseMembers(h Handler) {
	tok := s.next()
	if ih, ok := h.(IDHandler); ok && tok == IDPropertyName {
		s.next()
		s.checkError(ih.ID(s))
		tok = s.next()
	}
	for tok != EndObject {
		if tok != PropertyName && tok != IDPropertyName {
			s.syntaxError("expected property name, got %v", tok)
		}
		s.checkError(h.BeginMember(s))
		s.next()
		s.parseElement(h)

		tok = s.next()
		s.checkError(h.EndMember(s))
	}
}

// parseElements consumes the id and the values of an array.
// Precondition: token == StartArray.
// Postcondition: token == EndArray.
func (s *Stream) parseElements(h Handler) {
	tok := s.next()
	if ih, ok := h.(IDHandler); ok && tok == String {
		s.checkError(ih.ID(s))
		tok = s.next()
	}
	for tok != EndArray {
		s.parseElement(h)
		tok = s.next()
	}
}

// next advances the parser. Reaching the end of input inside a value is
// reported by the parser as an error.
func (s *Stream) next() Token {
	tok, err := s.p.NextToken()
	if err != nil {
		panic(parseError{err})
	}
	return tok
}

func (s *Stream) syntaxError(msg string, args ...any) {
	panic(parseError{newError(ErrStructure, s.p.TokenLocation(), msg, args...)})
}

func (s *Stream) checkError(err error) {
	if err != nil {
		panic(handlerError{err})
	}
}

type parseError struct{ error }

type handlerError struct{ error }

func (h handlerError) Unwrap() error { return h.error }

// String returns a description of the current token of s, for diagnostics.
func (s *Stream) String() string {
	return fmt.Sprintf("%v at %v", s.p.CurrentToken(), s.p.TokenLocation())
}
