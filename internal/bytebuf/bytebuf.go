// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package bytebuf implements a segmented builder for byte arrays of unknown
// final length, such as the result of decoding base64 content.
package bytebuf

const (
	initBlock = 500
	maxBlock  = 128 * 1024
)

// A Builder accumulates bytes in a chain of blocks, copying each byte at most
// twice: once when appended and once when the result is assembled.
type Builder struct {
	blocks [][]byte
	total  int // length of blocks
	cur    []byte
}

// New returns an empty builder whose first block is buf, if non-nil.
func New(buf []byte) *Builder { return &Builder{cur: buf[:0]} }

// Reset discards the contents of b, keeping its largest block.
func (b *Builder) Reset() {
	for _, blk := range b.blocks {
		if cap(blk) > cap(b.cur) {
			b.cur = blk
		}
	}
	clear(b.blocks)
	b.blocks = b.blocks[:0]
	b.total = 0
	b.cur = b.cur[:0]
}

// Len reports the number of bytes in b.
func (b *Builder) Len() int { return b.total + len(b.cur) }

func (b *Builder) room(n int) {
	if b.cur == nil {
		b.cur = make([]byte, 0, max(initBlock, n))
	} else if len(b.cur)+n > cap(b.cur) {
		b.blocks = append(b.blocks, b.cur)
		b.total += len(b.cur)
		next := min(max(b.total>>1, initBlock), maxBlock)
		b.cur = make([]byte, 0, max(next, n))
	}
}

// Append appends a single byte.
func (b *Builder) Append(c byte) {
	b.room(1)
	b.cur = append(b.cur, c)
}

// AppendTwoBytes appends the two low-order bytes of v, high byte first.
func (b *Builder) AppendTwoBytes(v int) {
	b.room(2)
	b.cur = append(b.cur, byte(v>>8), byte(v))
}

// AppendThreeBytes appends the three low-order bytes of v, high byte first.
func (b *Builder) AppendThreeBytes(v int) {
	b.room(3)
	b.cur = append(b.cur, byte(v>>16), byte(v>>8), byte(v))
}

// Write appends p to b. It never fails.
func (b *Builder) Write(p []byte) (int, error) {
	for rest := p; len(rest) != 0; {
		b.room(1)
		n := min(cap(b.cur)-len(b.cur), len(rest))
		b.cur = append(b.cur, rest[:n]...)
		rest = rest[n:]
	}
	return len(p), nil
}

// Bytes returns a fresh copy of the contents of b.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, b.Len())
	for _, blk := range b.blocks {
		out = append(out, blk...)
	}
	return append(out, b.cur...)
}

// Release empties b and returns its largest block with length zero, for
// recycling. The block has at least the capacity of the one passed to New.
func (b *Builder) Release() []byte {
	b.Reset()
	cur := b.cur
	b.cur = nil
	return cur
}
