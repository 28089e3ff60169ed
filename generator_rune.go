// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"io"
	"unicode/utf8"
)

// A RuneGenerator is a Generator that writes its output as strings to an
// io.StringWriter, such as a strings.Builder.
type RuneGenerator struct {
	generatorBase

	w      io.StringWriter
	buf    []rune
	tail   int
	escBuf []byte
}

func newRuneGenerator(ioctx *IOContext, features WriteFeature, ce CharacterEscapes, rootSep string, w io.StringWriter) *RuneGenerator {
	g := &RuneGenerator{w: w}
	g.buf = ioctx.AllocRunes(ConcatBuffer, 0)
	g.init(g, ioctx, features, ce, rootSep)
	return g
}

// ensure makes room for n runes in the buffer, if it can.
func (g *RuneGenerator) ensure(n int) error {
	if g.buf == nil {
		return writeError(ErrIO, "Cannot write output: generator is closed")
	}
	if len(g.buf)-g.tail < n {
		return g.flushBuffer()
	}
	return nil
}

func (g *RuneGenerator) put(r rune) error {
	if err := g.ensure(1); err != nil {
		return err
	}
	g.buf[g.tail] = r
	g.tail++
	return nil
}

// putSeq writes the UTF-8 sequence seq without dividing it between flushes.
func (g *RuneGenerator) putSeq(seq []byte) error {
	if err := g.ensure(utf8.RuneCount(seq)); err != nil {
		return err
	}
	for len(seq) != 0 {
		r, n := utf8.DecodeRune(seq)
		if err := g.put(r); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// putEscaped writes r, escaped if necessary.
func (g *RuneGenerator) putEscaped(r rune) error {
	if g.esc.plain(r) {
		return g.put(r)
	}
	seq, ok := g.esc.appendEscape(g.escBuf[:0], r)
	g.escBuf = seq
	if !ok {
		return g.put(r)
	}
	return g.putSeq(seq)
}

func runeEscaped[T string | []byte](g *RuneGenerator, s T) error {
	for len(s) != 0 {
		if c := s[0]; c < utf8.RuneSelf && g.esc.codes[c] == EscapeNone {
			if err := g.put(rune(c)); err != nil {
				return err
			}
			s = s[1:]
			continue
		}
		r, size, err := decodeRune(s)
		if err != nil {
			return err
		}
		if err := g.putEscaped(r); err != nil {
			return err
		}
		s = s[size:]
	}
	return nil
}

// WriteRawUTF8String reports ErrUnsupported: a RuneGenerator does not accept
// encoded byte content.
func (g *RuneGenerator) WriteRawUTF8String(text []byte) error {
	return writeError(ErrUnsupported, "Cannot write raw UTF-8 content to a character generator")
}

// WriteUTF8String reports ErrUnsupported: a RuneGenerator does not accept
// encoded byte content.
func (g *RuneGenerator) WriteUTF8String(text []byte) error {
	return writeError(ErrUnsupported, "Cannot write UTF-8 content to a character generator")
}

// WriteRaw implements the RawWriter interface.
func (g *RuneGenerator) WriteRaw(s string) error {
	for _, r := range s {
		if err := g.put(r); err != nil {
			return err
		}
	}
	return nil
}

// writeRawBytes writes UTF-8 text. Invalid UTF-8 is replaced by U+FFFD.
func (g *RuneGenerator) writeRawBytes(b []byte) error {
	for len(b) != 0 {
		r, n := utf8.DecodeRune(b)
		if err := g.put(r); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func (g *RuneGenerator) writeRawRunes(rs []rune) error {
	for len(rs) != 0 {
		if err := g.ensure(1); err != nil {
			return err
		}
		n := copy(g.buf[g.tail:], rs)
		g.tail += n
		rs = rs[n:]
	}
	return nil
}

func (g *RuneGenerator) writeEscaped(s string) error      { return runeEscaped(g, s) }
func (g *RuneGenerator) writeEscapedBytes(b []byte) error { return runeEscaped(g, b) }

func (g *RuneGenerator) writeEscapedRunes(rs []rune) error {
	for len(rs) != 0 {
		r, n, err := nextRune(rs)
		if err != nil {
			return err
		}
		if err := g.putEscaped(r); err != nil {
			return err
		}
		rs = rs[n:]
	}
	return nil
}

func (g *RuneGenerator) flushBuffer() error {
	if g.tail == 0 {
		return nil
	}
	_, err := g.w.WriteString(string(g.buf[:g.tail]))
	g.tail = 0
	return ioError(err)
}

func (g *RuneGenerator) buffered() int { return g.tail }

func (g *RuneGenerator) target() any { return g.w }

func (g *RuneGenerator) releaseBuffers() {
	g.buf, g.tail = nil, 0
	g.escBuf = nil
}
