// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A LineCol describes the line number and column of a location in source
// text. Both are 1-based; unknown values are reported as -1.
type LineCol struct {
	Line   int
	Column int
}

func (lc LineCol) String() string {
	col := "UNKNOWN"
	if lc.Column >= 0 {
		col = strconv.Itoa(lc.Column)
	}
	return fmt.Sprintf("line: %d, column: %s", lc.Line, col)
}

// A Location describes a position in the input of a parser, for diagnostics.
// Offsets that are not known are reported as -1.
type Location struct {
	Content    ContentReference
	ByteOffset int64
	CharOffset int64
	LineCol
}

// IsKnown reports whether loc describes any position at all.
func (loc Location) IsKnown() bool {
	return loc.Line > 0
}

func (loc Location) String() string {
	var sb strings.Builder
	sb.WriteString("[Source: ")
	sb.WriteString(loc.Content.Description())
	sb.WriteString("; ")
	if loc.Line > 0 {
		sb.WriteString(loc.LineCol.String())
	} else if loc.ByteOffset >= 0 {
		fmt.Fprintf(&sb, "byte offset: #%d", loc.ByteOffset)
	} else {
		fmt.Fprintf(&sb, "char offset: #%d", loc.CharOffset)
	}
	sb.WriteByte(']')
	return sb.String()
}

// Offset returns the byte offset of loc if known, otherwise its char offset.
func (loc Location) Offset() int64 {
	if loc.ByteOffset >= 0 {
		return loc.ByteOffset
	}
	return loc.CharOffset
}

// A ContentReference records the input source of a parser, and is used to
// render a bounded snippet of that source in error messages.
type ContentReference struct {
	raw      any // string, []byte, []rune, or an opaque stream value
	offset   int
	length   int
	redacted bool
	maxRaw   int
}

// NewContentReference returns a reference to raw for use in locations. If raw
// is a string, []byte or []rune, the span [offset, offset+length) of it may be
// quoted in error messages, up to the limit in cfg; length < 0 means the rest
// of the input.
func NewContentReference(raw any, offset, length int, cfg ErrorReportConfig) ContentReference {
	return ContentReference{raw: raw, offset: offset, length: length, maxRaw: cfg.MaxRawContentLength}
}

// redactedContent returns a content reference that hides the source.
func redactedContent() ContentReference { return ContentReference{redacted: true} }

// Raw returns the raw content value of c, or nil if it is redacted or unknown.
func (c ContentReference) Raw() any {
	if c.redacted {
		return nil
	}
	return c.raw
}

// Description returns a human-readable description of the source content.
func (c ContentReference) Description() string {
	if c.redacted {
		return "REDACTED (`IncludeSourceInLocation` disabled)"
	}
	switch t := c.raw.(type) {
	case nil:
		return "UNKNOWN"
	case string:
		return "(string)" + c.snippet(t)
	case []byte:
		return "([]byte)" + c.snippet(string(t))
	case []rune:
		return "([]rune)" + c.snippetRunes(t)
	default:
		return fmt.Sprintf("(%T)", t)
	}
}

func (c ContentReference) span(n int) (int, int) {
	start := min(max(c.offset, 0), n)
	end := n
	if c.length >= 0 {
		end = min(start+c.length, n)
	}
	return start, end
}

func (c ContentReference) snippet(s string) string {
	start, end := c.span(len(s))
	s = s[start:end]
	if c.maxRaw > 0 && len(s) > c.maxRaw {
		cut := c.maxRaw
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return fmt.Sprintf("%q[truncated %d bytes]", s[:cut], len(s)-cut)
	}
	return strconv.Quote(s)
}

func (c ContentReference) snippetRunes(rs []rune) string {
	start, end := c.span(len(rs))
	rs = rs[start:end]
	if c.maxRaw > 0 && len(rs) > c.maxRaw {
		return fmt.Sprintf("%q[truncated %d chars]", string(rs[:c.maxRaw]), len(rs)-c.maxRaw)
	}
	return strconv.Quote(string(rs))
}
