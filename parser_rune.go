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

// A RuneParser is a Parser for input that is already decoded to runes: a
// string, a []rune held in memory, or an io.RuneReader.
//
// Locations report character offsets; byte offsets are -1.
type RuneParser struct {
	parserBase

	src  any
	rr   io.RuneReader // nil for in-memory input
	rerr error
	err  error

	buf       []rune
	ptr, end  int
	processed int64

	line          int
	lineStart     int64
	prevLineStart int64
	last          int
	lastNL        bool

	syms      *sym.CharsToNameCanonicalizer
	nameRunes []rune
}

func newRuneParser(ioctx *IOContext, features ReadFeature, syms *sym.CharsToNameCanonicalizer) *RuneParser {
	p := &RuneParser{syms: syms, line: 1}
	p.init(p, ioctx, features)
	return p
}

// setRunes sets the input of p to data, which is not modified.
func (p *RuneParser) setRunes(data []rune) {
	p.src = data
	p.buf, p.ptr, p.end = data, 0, len(data)
	if err := p.checkDocumentLength(int64(len(data))); err != nil {
		p.err = err
	}
}

// setRuneReader sets the input of p to the runes of rr, read into buf.
func (p *RuneParser) setRuneReader(src any, rr io.RuneReader, buf []rune) {
	p.src, p.rr = src, rr
	p.buf = buf[:cap(buf)]
}

// fill reads runes up to the end of the buffer or the next newline,
// whichever comes first.
func (p *RuneParser) fill() bool {
	if p.rr == nil || p.err != nil {
		return false
	}
	if p.rerr != nil {
		if p.rerr != io.EOF {
			p.err = ioError(p.rerr)
		}
		p.rr = nil
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
	start := p.end
	for p.end < len(p.buf) {
		r, _, err := p.rr.ReadRune()
		if err != nil {
			p.rerr = err
			break
		}
		p.buf[p.end] = r
		p.end++
		if r == '\n' {
			break
		}
	}
	if p.end == start {
		return p.fill()
	}
	if err := p.checkDocumentLength(p.processed + int64(p.end)); err != nil {
		p.err = err
		return false
	}
	return true
}

func (p *RuneParser) next() rune {
	if p.err != nil || (p.ptr >= p.end && !p.fill()) {
		p.last = 0
		return -1
	}
	c := p.buf[p.ptr]
	p.ptr++
	p.last = 1
	p.lastNL = c == '\n'
	if p.lastNL {
		p.prevLineStart = p.lineStart
		p.line++
		p.lineStart = p.processed + int64(p.ptr)
	}
	return c
}

func (p *RuneParser) failure() error { return p.err }

func (p *RuneParser) unread() {
	if p.last == 0 {
		return
	}
	p.ptr--
	if p.lastNL {
		p.line--
		p.lineStart = p.prevLineStart
	}
	p.last, p.lastNL = 0, false
}

func (p *RuneParser) pos() position {
	off := p.processed + int64(p.ptr)
	return position{bytes: -1, chars: off, line: p.line, col: int(off-p.lineStart) + 1}
}

func (p *RuneParser) lastPos() position {
	if p.last == 0 {
		return p.pos()
	}
	off := p.processed + int64(p.ptr-1)
	if p.lastNL {
		return position{bytes: -1, chars: off, line: p.line - 1, col: int(off-p.prevLineStart) + 1}
	}
	return position{bytes: -1, chars: off, line: p.line, col: int(off-p.lineStart) + 1}
}

func isPlainRune(c rune) bool {
	return c >= 256 || escape.InputCodesRune[c] == escape.InputPlain
}

func (p *RuneParser) copyPlain(tb *textbuf.Buffer, q rune) {
	i := p.ptr
	for ; i < p.end; i++ {
		c := p.buf[i]
		if c == q || !isPlainRune(c) {
			break
		}
		if tb != nil {
			tb.AppendRune(c)
		}
	}
	p.ptr = i
	p.last = 0
}

// quickName hashes the name while scanning for its closing quote.
func (p *RuneParser) quickName(q rune) (string, bool, error) {
	h := p.syms.Seed()
	for i := p.ptr; i < p.end; i++ {
		c := p.buf[i]
		if c == q {
			name, err := p.syms.FindSymbol(p.buf, p.ptr, i-p.ptr, sym.FinishHash(h))
			p.ptr = i + 1
			p.last = 0
			return name, true, err
		}
		if !isPlainRune(c) {
			break
		}
		h = h*sym.HashMult + c
	}
	return "", false, nil
}

func (p *RuneParser) intern(name []byte) (string, error) {
	if p.nameRunes == nil {
		p.nameRunes = p.ioctx.AllocRunes(NameCopyBuffer, 0)
	}
	rs := p.nameRunes[:0]
	for len(name) != 0 {
		r, n := utf8.DecodeRune(name)
		rs = append(rs, r)
		name = name[n:]
	}
	p.nameRunes = rs
	return p.syms.FindSymbol(rs, 0, len(rs), p.syms.CalcHash(rs))
}

func (p *RuneParser) releaseBytes(io.Writer) (int, error) { return -1, nil }

func (p *RuneParser) releaseRunes(w io.StringWriter) (int, error) {
	if p.ptr >= p.end {
		return 0, nil
	}
	rest := p.buf[p.ptr:p.end]
	if _, err := w.WriteString(string(rest)); err != nil {
		return 0, ioError(err)
	}
	p.ptr = p.end
	p.last = 0
	return len(rest), nil
}

func (p *RuneParser) closeInput() error {
	if c, ok := p.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *RuneParser) release() {
	p.syms.Release()
	p.buf, p.ptr, p.end = nil, 0, 0
	p.nameRunes = nil
	p.rr = nil
}
