// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package textbuf implements a segmented buffer for accumulating decoded text
// whose final length is not known in advance.
package textbuf

import (
	"io"
	"unicode/utf8"
)

const (
	minSegment = 500
	maxSegment = 64 * 1024
)

// An Allocator supplies and recycles segment storage.
type Allocator interface {
	AllocText(minSize int) []byte
	ReleaseText(buf []byte)
}

// A Buffer accumulates UTF-8 text in a chain of segments. Completed segments
// are never copied while text is appended; the contents are joined only when
// a contiguous view is requested.
//
// The contents are valid only between a Reset and the next Reset or Release.
type Buffer struct {
	alloc Allocator
	limit int

	segs   [][]byte // completed segments
	segLen int      // total length of segs
	cur    []byte   // the current segment

	str    string // cached contents
	hasStr bool
}

// New constructs an empty buffer drawing storage from alloc (which may be
// nil). If limit > 0, Exceeded reports whether the contents are longer.
func New(alloc Allocator, limit int) *Buffer {
	return &Buffer{alloc: alloc, limit: limit}
}

// Reset discards the contents of b, retaining the current segment storage.
func (b *Buffer) Reset() {
	b.hasStr = false
	b.str = ""
	if len(b.segs) != 0 {
		// The current segment is the largest; give back the others.
		if b.alloc != nil {
			for _, seg := range b.segs {
				b.alloc.ReleaseText(seg)
			}
		}
		clear(b.segs)
		b.segs = b.segs[:0]
		b.segLen = 0
	}
	b.cur = b.cur[:0]
}

// ResetWithString replaces the contents of b with s.
func (b *Buffer) ResetWithString(s string) {
	b.Reset()
	b.AppendString(s)
	b.str, b.hasStr = s, true
}

// Size reports the length of the contents of b in bytes.
func (b *Buffer) Size() int { return b.segLen + len(b.cur) }

// Exceeded reports whether the contents of b are longer than its limit.
func (b *Buffer) Exceeded() bool { return b.limit > 0 && b.Size() > b.limit }

// Limit reports the length limit of b, or 0 if it is unlimited.
func (b *Buffer) Limit() int { return b.limit }

func (b *Buffer) room(n int) {
	b.hasStr = false
	if b.cur == nil {
		b.cur = b.allocate(max(n, minSegment))
		return
	}
	if len(b.cur)+n <= cap(b.cur) {
		return
	}
	b.segs = append(b.segs, b.cur)
	b.segLen += len(b.cur)
	next := min(max(cap(b.cur)+cap(b.cur)>>1, minSegment), maxSegment)
	b.cur = b.allocate(max(next, n))
}

func (b *Buffer) allocate(n int) []byte {
	if b.alloc != nil {
		if buf := b.alloc.AllocText(n); cap(buf) >= n {
			return buf[:0]
		}
	}
	return make([]byte, 0, n)
}

// AppendByte appends the single byte c.
func (b *Buffer) AppendByte(c byte) {
	b.room(1)
	b.cur = append(b.cur, c)
}

// AppendRune appends the UTF-8 encoding of r.
func (b *Buffer) AppendRune(r rune) {
	if r < utf8.RuneSelf && r >= 0 {
		b.AppendByte(byte(r))
		return
	}
	b.room(utf8.UTFMax)
	b.cur = utf8.AppendRune(b.cur, r)
}

// Append appends the contents of p.
func (b *Buffer) Append(p []byte) {
	for len(p) != 0 {
		b.room(1)
		n := min(cap(b.cur)-len(b.cur), len(p))
		b.cur = append(b.cur, p[:n]...)
		p = p[n:]
	}
}

// AppendString appends the contents of s.
func (b *Buffer) AppendString(s string) {
	for len(s) != 0 {
		b.room(1)
		n := min(cap(b.cur)-len(b.cur), len(s))
		b.cur = append(b.cur, s[:n]...)
		s = s[n:]
	}
}

// String returns the contents of b as a string.
func (b *Buffer) String() string {
	if !b.hasStr {
		if len(b.segs) == 0 {
			b.str = string(b.cur)
		} else {
			b.str = string(b.Bytes())
		}
		b.hasStr = true
	}
	return b.str
}

// Bytes returns the contents of b as a contiguous slice. If b has a single
// segment the result aliases it; otherwise the segments are joined into the
// current segment. The caller must not retain the result past the next change.
func (b *Buffer) Bytes() []byte {
	if len(b.segs) == 0 {
		return b.cur
	}
	all := make([]byte, 0, b.Size())
	for _, seg := range b.segs {
		all = append(all, seg...)
	}
	all = append(all, b.cur...)
	b.release()
	b.cur = all
	return all
}

// WriteTo writes the contents of b to w, segment by segment.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	var nw int64
	for _, seg := range b.segs {
		n, err := w.Write(seg)
		nw += int64(n)
		if err != nil {
			return nw, err
		}
	}
	n, err := w.Write(b.cur)
	return nw + int64(n), err
}

// Release returns the storage of b to its allocator and empties b.
func (b *Buffer) Release() {
	b.release()
	b.cur = nil
	b.hasStr = false
	b.str = ""
}

func (b *Buffer) release() {
	if b.alloc != nil {
		for _, seg := range b.segs {
			b.alloc.ReleaseText(seg)
		}
		if b.cur != nil {
			b.alloc.ReleaseText(b.cur)
		}
	}
	clear(b.segs)
	b.segs = b.segs[:0]
	b.segLen = 0
}
