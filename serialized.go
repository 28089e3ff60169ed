// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"unicode/utf8"

	"github.com/creachadair/cirjson/internal/escape"
	"go4.org/mem"
)

// A SerializedString is a string whose quoted encoding is computed once, for
// names and values written repeatedly. It is safe for concurrent use.
type SerializedString struct {
	value  string
	quoted []byte
	runes  []rune
}

// NewSerializedString returns the serialized form of s.
func NewSerializedString(s string) *SerializedString {
	q := escape.Quote(mem.S(s))
	return &SerializedString{value: s, quoted: q, runes: []rune(string(q))}
}

// Value returns the unquoted string.
func (s *SerializedString) Value() string { return s.value }

// CharLength returns the length of the unquoted string in runes.
func (s *SerializedString) CharLength() int { return utf8.RuneCountInString(s.value) }

// QuotedUTF8 returns the escaped UTF-8 encoding of the string, without
// enclosing quotation marks. The caller must not modify the result.
func (s *SerializedString) QuotedUTF8() []byte { return s.quoted }

// QuotedRunes returns the escaped string as runes, without enclosing
// quotation marks. The caller must not modify the result.
func (s *SerializedString) QuotedRunes() []rune { return s.runes }

// AppendQuotedUTF8 appends the escaped encoding of the string to dst.
func (s *SerializedString) AppendQuotedUTF8(dst []byte) []byte { return append(dst, s.quoted...) }

// AppendUnquotedUTF8 appends the string to dst without escaping.
func (s *SerializedString) AppendUnquotedUTF8(dst []byte) []byte { return append(dst, s.value...) }

func (s *SerializedString) String() string { return s.value }
