// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"io"
	"slices"
	"unicode/utf8"

	"github.com/creachadair/cirjson/internal/escape"
	"github.com/creachadair/cirjson/internal/textbuf"
	"github.com/creachadair/cirjson/sym"
)

// A UTF8Parser is a Parser for UTF-8 encoded input, either a byte slice held
// in memory or the contents of an io.Reader. Invalid UTF-8 is reported as an
// ErrSyntax error.
//
// Locations report byte offsets; character offsets are -1, and columns count
// bytes from the start of the line.
type UTF8Parser struct {
	parserBase

	src  any       // the original source, for closing
	r    io.Reader // nil for in-memory input
	rerr error     // the error that ended r, pending
	err  error     // the error that ended the input

	buf       []byte
	ptr, end  int
	processed int64 // bytes discarded before buf[0]

	line          int
	lineStart     int64 // offset of the first byte of the current line
	prevLineStart int64
	last          int  // size of the character last returned by next, or 0
	lastNL        bool // the character last returned was a newline
	noColumn      bool

	syms  *sym.ByteQuadsCanonicalizer
	quads []int32
}

func newUTF8Parser(ioctx *IOContext, features ReadFeature, syms *sym.ByteQuadsCanonicalizer) *UTF8Parser {
	p := &UTF8Parser{syms: syms, line: 1}
	p.init(p, ioctx, features)
	return p
}

// setBytes sets the input of p to data, which is not modified.
func (p *UTF8Parser) setBytes(data []byte) {
	p.src = data
	p.buf, p.ptr, p.end = data, 0, len(data)
	if err := p.checkDocumentLength(int64(len(data))); err != nil {
		p.err = err
	}
}

// setReader sets the input of p to the contents of r, read into buf.
func (p *UTF8Parser) setReader(src any, r io.Reader, buf []byte) {
	p.src, p.r = src, r
	p.buf = buf[:cap(buf)]
}

func (p *UTF8Parser) fill() bool {
	if p.r == nil || p.err != nil {
		return false
	}
	if p.ptr > 0 {
		n := copy(p.buf, p.buf[p.ptr:p.end])
		p.processed += int64(p.ptr)
		p.ptr, p.end = 0, n
	}
	if p.end == len(p.buf) {
		p.buf = slices.Grow(p.buf, len(p.buf))[:2*len(p.buf)]
	}
	for p.rerr == nil {
		n, err := p.r.Read(p.buf[p.end:])
		p.rerr = err
		if n > 0 {
			p.end += n
			if err := p.checkDocumentLength(p.processed + int64(p.end)); err != nil {
				p.err = err
				return false
			}
			return true
		}
	}
	if p.rerr != io.EOF {
		p.err = ioError(p.rerr)
	}
	p.r = nil
	return false
}

func (p *UTF8Parser) next() rune {
	if p.err != nil || (p.ptr >= p.end && !p.fill()) {
		p.last = 0
		return -1
	}
	b := p.buf[p.ptr]
	if b < utf8.RuneSelf {
		p.ptr++
		p.last = 1
		p.lastNL = b == '\n'
		if p.lastNL {
			p.prevLineStart = p.lineStart
			p.line++
			p.lineStart = p.processed + int64(p.ptr)
		}
		return rune(b)
	}
	return p.nextMulti(b)
}

// nextMulti decodes a multi-byte UTF-8 sequence beginning with b.
func (p *UTF8Parser) nextMulti(b byte) rune {
	p.last, p.lastNL = 0, false
	n := int(escape.InputCodesUTF8[b])
	if n < 2 {
		return p.fail("Invalid UTF-8 start byte 0x%x", b)
	}
	for p.end-p.ptr < n {
		if !p.fill() {
			if p.err != nil {
				return -1
			}
			return p.fail("Unexpected end-of-input in a UTF-8 sequence")
		}
	}
	seq := p.buf[p.ptr : p.ptr+n]
	r, size := utf8.DecodeRune(seq)
	if r == utf8.RuneError && size <= 1 {
		bad := seq[1]
		for _, c := range seq[1:] {
			if c&0xC0 != 0x80 {
				bad = c
				break
			}
		}
		return p.fail("Invalid UTF-8 middle byte 0x%x", bad)
	}
	p.ptr += size
	p.last = size
	return r
}

func (p *UTF8Parser) fail(msg string, args ...any) rune {
	p.err = p.syntaxErrorf(msg, args...)
	p.last = 0
	return -1
}

func (p *UTF8Parser) failure() error { return p.err }

func (p *UTF8Parser) unread() {
	if p.last == 0 {
		return
	}
	p.ptr -= p.last
	if p.lastNL {
		p.line--
		p.lineStart = p.prevLineStart
	}
	p.last, p.lastNL = 0, false
}

func (p *UTF8Parser) column(off, start int64) int {
	if p.noColumn {
		return -1
	}
	return int(off-start) + 1
}

func (p *UTF8Parser) pos() position {
	off := p.processed + int64(p.ptr)
	return position{bytes: off, chars: -1, line: p.line, col: p.column(off, p.lineStart)}
}

func (p *UTF8Parser) lastPos() position {
	if p.last == 0 {
		return p.pos()
	}
	off := p.processed + int64(p.ptr-p.last)
	if p.lastNL {
		return position{bytes: off, chars: -1, line: p.line - 1, col: p.column(off, p.prevLineStart)}
	}
	return position{bytes: off, chars: -1, line: p.line, col: p.column(off, p.lineStart)}
}

func (p *UTF8Parser) copyPlain(tb *textbuf.Buffer, q rune) {
	i := p.ptr
	for i < p.end {
		b := p.buf[i]
		if rune(b) == q || escape.InputCodesUTF8[b] != escape.InputPlain {
			break
		}
		i++
	}
	if tb != nil {
		tb.Append(p.buf[p.ptr:i])
	}
	p.ptr = i
	p.last = 0
}

func (p *UTF8Parser) findQuads(q []int32) (string, bool) {
	switch len(q) {
	case 0:
		return "", true
	case 1:
		return p.syms.FindName(q[0])
	case 2:
		return p.syms.FindName2(q[0], q[1])
	case 3:
		return p.syms.FindName3(q[0], q[1], q[2])
	}
	return p.syms.FindNameN(q)
}

func (p *UTF8Parser) quickName(q rune) (string, bool, error) {
	quads := p.quads[:0]
	var cur int32
	n := 0
	for i := p.ptr; i < p.end; i++ {
		b := p.buf[i]
		if rune(b) == q {
			if n > 0 {
				quads = append(quads, sym.PadLastQuad(cur, n))
			}
			p.quads = quads
			name, ok := p.findQuads(quads)
			var err error
			if !ok {
				name, err = p.syms.AddName(string(p.buf[p.ptr:i]), quads)
			}
			p.ptr = i + 1
			p.last = 0
			return name, true, err
		}
		if escape.InputCodesUTF8[b] != escape.InputPlain {
			break
		}
		cur = cur<<8 | int32(b)
		if n++; n == 4 {
			quads = append(quads, cur)
			cur, n = 0, 0
		}
	}
	p.quads = quads
	return "", false, nil
}

func (p *UTF8Parser) intern(name []byte) (string, error) {
	p.quads = sym.Quads(p.quads[:0], name)
	if s, ok := p.findQuads(p.quads); ok {
		return s, nil
	}
	return p.syms.AddName(string(name), p.quads)
}

func (p *UTF8Parser) releaseBytes(w io.Writer) (int, error) {
	if p.ptr >= p.end {
		return 0, nil
	}
	n, err := w.Write(p.buf[p.ptr:p.end])
	p.ptr += n
	p.last = 0
	return n, ioError(err)
}

func (p *UTF8Parser) releaseRunes(io.StringWriter) (int, error) { return -1, nil }

func (p *UTF8Parser) closeInput() error {
	if c, ok := p.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *UTF8Parser) release() {
	p.syms.Release()
	p.buf, p.ptr, p.end = nil, 0, 0
	p.r = nil
}

// A ByteReaderParser is a Parser for UTF-8 input read one byte at a time from
// an io.ByteReader. It reads no further ahead than the character it is
// decoding, so at most one byte is pending when it stops. Columns are not
// tracked and are reported as -1.
type ByteReaderParser struct {
	UTF8Parser
}

// byteSource adapts an io.ByteReader to an io.Reader that delivers one byte
// per call.
type byteSource struct{ r io.ByteReader }

func (s byteSource) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	buf[0] = b
	return 1, nil
}

// byteReaderBuffer is the buffer size of a ByteReaderParser.
const byteReaderBuffer = 8

func newByteReaderParser(ioctx *IOContext, features ReadFeature, syms *sym.ByteQuadsCanonicalizer, r io.ByteReader) *ByteReaderParser {
	p := &ByteReaderParser{UTF8Parser{syms: syms, line: 1, noColumn: true}}
	p.init(&p.UTF8Parser, ioctx, features)
	p.setReader(r, byteSource{r}, make([]byte, byteReaderBuffer))
	return p
}
