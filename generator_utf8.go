// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"io"
	"unicode/utf8"
)

// A UTF8Generator is a Generator that writes UTF-8 output to an io.Writer.
type UTF8Generator struct {
	generatorBase

	w      io.Writer
	buf    []byte
	tail   int
	escBuf []byte
}

func newUTF8Generator(ioctx *IOContext, features WriteFeature, ce CharacterEscapes, rootSep string, w io.Writer) *UTF8Generator {
	g := &UTF8Generator{w: w}
	g.buf = ioctx.AllocBytes(WriteEncodingBuffer, 0)
	g.init(g, ioctx, features, ce, rootSep)
	return g
}

// utf8Write copies s to the buffer of g. Text that fits in the buffer is
// never divided between flushes.
func utf8Write[T string | []byte](g *UTF8Generator, s T) error {
	if g.buf == nil {
		return writeError(ErrIO, "Cannot write output: generator is closed")
	}
	if len(s) > len(g.buf)-g.tail {
		if err := g.flushBuffer(); err != nil {
			return err
		}
		if len(s) > len(g.buf) {
			var err error
			switch v := any(s).(type) {
			case string:
				_, err = io.WriteString(g.w, v)
			case []byte:
				_, err = g.w.Write(v)
			}
			return ioError(err)
		}
	}
	g.tail += copy(g.buf[g.tail:], s)
	return nil
}

// utf8Escaped writes s to g, escaped. Runs of plain ASCII are copied
// without decoding.
func utf8Escaped[T string | []byte](g *UTF8Generator, s T) error {
	for len(s) != 0 {
		if n := plainLen(&g.esc, s); n != 0 {
			if err := utf8Write(g, s[:n]); err != nil {
				return err
			}
			if s = s[n:]; len(s) == 0 {
				break
			}
		}
		r, size, err := decodeRune(s)
		if err != nil {
			return err
		}
		seq, ok := g.esc.appendEscape(g.escBuf[:0], r)
		g.escBuf = seq
		if ok {
			err = utf8Write(g, seq)
		} else {
			err = utf8Write(g, s[:size])
		}
		if err != nil {
			return err
		}
		s = s[size:]
	}
	return nil
}

// WriteRaw implements the RawWriter interface.
func (g *UTF8Generator) WriteRaw(s string) error { return utf8Write(g, s) }

func (g *UTF8Generator) writeRawBytes(b []byte) error { return utf8Write(g, b) }

func (g *UTF8Generator) writeRawRunes(rs []rune) error {
	for len(rs) != 0 {
		r, n, err := nextRune(rs)
		if err != nil {
			return err
		}
		g.escBuf = utf8.AppendRune(g.escBuf[:0], r)
		if err := utf8Write(g, g.escBuf); err != nil {
			return err
		}
		rs = rs[n:]
	}
	return nil
}

func (g *UTF8Generator) writeEscaped(s string) error      { return utf8Escaped(g, s) }
func (g *UTF8Generator) writeEscapedBytes(b []byte) error { return utf8Escaped(g, b) }

func (g *UTF8Generator) writeEscapedRunes(rs []rune) error {
	for len(rs) != 0 {
		r, n, err := nextRune(rs)
		if err != nil {
			return err
		}
		seq, ok := g.esc.appendEscape(g.escBuf[:0], r)
		if !ok {
			seq = utf8.AppendRune(seq, r)
		}
		g.escBuf = seq
		if err := utf8Write(g, seq); err != nil {
			return err
		}
		rs = rs[n:]
	}
	return nil
}

func (g *UTF8Generator) flushBuffer() error {
	if g.tail == 0 {
		return nil
	}
	_, err := g.w.Write(g.buf[:g.tail])
	g.tail = 0
	return ioError(err)
}

func (g *UTF8Generator) buffered() int { return g.tail }

func (g *UTF8Generator) target() any { return g.w }

func (g *UTF8Generator) releaseBuffers() {
	g.buf, g.tail = nil, 0
	g.escBuf = nil
}
