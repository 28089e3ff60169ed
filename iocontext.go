// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"fmt"
	"sync"

	"github.com/creachadair/cirjson/internal/textbuf"
	"github.com/golang/glog"
)

// ByteBufferKind identifies a pool of byte buffers in a BufferRecycler.
type ByteBufferKind int

// Kinds of byte buffers.
const (
	ReadIOBuffer        ByteBufferKind = iota // input buffer of byte parsers
	WriteEncodingBuffer                       // output buffer of byte generators
	WriteConcatBuffer                         // scratch space for encoding on output
	Base64CodecBuffer                         // scratch space for base64 content
	TextSegmentBuffer                         // segments of text buffers
	numByteKinds
)

var byteBufferSizes = [numByteKinds]int{8000, 8000, 2000, 2000, 500}

func (k ByteBufferKind) String() string {
	switch k {
	case ReadIOBuffer:
		return "read-io"
	case WriteEncodingBuffer:
		return "write-encoding"
	case WriteConcatBuffer:
		return "write-concat"
	case Base64CodecBuffer:
		return "base64-codec"
	case TextSegmentBuffer:
		return "text-segment"
	}
	return fmt.Sprintf("ByteBufferKind(%d)", int(k))
}

// RuneBufferKind identifies a pool of rune buffers in a BufferRecycler.
type RuneBufferKind int

// Kinds of rune buffers.
const (
	TokenBuffer    RuneBufferKind = iota // input buffer of rune parsers
	ConcatBuffer                         // output buffer of rune generators
	NameCopyBuffer                       // scratch space for decoded names
	numRuneKinds
)

var runeBufferSizes = [numRuneKinds]int{4000, 4000, 200}

func (k RuneBufferKind) String() string {
	switch k {
	case TokenBuffer:
		return "token"
	case ConcatBuffer:
		return "concat"
	case NameCopyBuffer:
		return "name-copy"
	}
	return fmt.Sprintf("RuneBufferKind(%d)", int(k))
}

// A BufferRecycler keeps pools of buffers for reuse across parsers and
// generators. It is safe for concurrent use.
type BufferRecycler struct {
	bytes [numByteKinds]sync.Pool
	runes [numRuneKinds]sync.Pool
}

// NewBufferRecycler constructs an empty recycler.
func NewBufferRecycler() *BufferRecycler { return new(BufferRecycler) }

// AllocBytes returns a buffer of the given kind with length at least minSize,
// or the default size of the kind if that is larger.
func (r *BufferRecycler) AllocBytes(kind ByteBufferKind, minSize int) []byte {
	minSize = max(minSize, byteBufferSizes[kind])
	if v, ok := r.bytes[kind].Get().(*[]byte); ok && cap(*v) >= minSize {
		return (*v)[:cap(*v)]
	}
	return make([]byte, minSize)
}

// ReleaseBytes returns buf to the pool of the given kind.
func (r *BufferRecycler) ReleaseBytes(kind ByteBufferKind, buf []byte) {
	if cap(buf) != 0 {
		r.bytes[kind].Put(&buf)
	}
}

// AllocRunes returns a buffer of the given kind with length at least minSize,
// or the default size of the kind if that is larger.
func (r *BufferRecycler) AllocRunes(kind RuneBufferKind, minSize int) []rune {
	minSize = max(minSize, runeBufferSizes[kind])
	if v, ok := r.runes[kind].Get().(*[]rune); ok && cap(*v) >= minSize {
		return (*v)[:cap(*v)]
	}
	return make([]rune, minSize)
}

// ReleaseRunes returns buf to the pool of the given kind.
func (r *BufferRecycler) ReleaseRunes(kind RuneBufferKind, buf []rune) {
	if cap(buf) != 0 {
		r.runes[kind].Put(&buf)
	}
}

// An IOContext binds one parser or generator to its input or output and to
// the shared resources it draws on: a buffer recycler, constraints, and the
// error report configuration.
//
// Each kind of buffer may be allocated at most once from a context before it
// is released; allocating it again panics. Release returns all outstanding
// buffers and is idempotent.
type IOContext struct {
	recycler *BufferRecycler
	content  ContentReference
	managed  bool

	readCons  ReadConstraints
	writeCons WriteConstraints
	report    ErrorReportConfig

	bytes    [numByteKinds][]byte
	runes    [numRuneKinds][]rune
	released bool
}

// NewIOContext constructs a context drawing buffers from r (a fresh recycler
// if nil) for the given content. If managed is true, the content is owned by
// the context and is closed along with the parser or generator.
func NewIOContext(r *BufferRecycler, content ContentReference, managed bool) *IOContext {
	if r == nil {
		r = NewBufferRecycler()
	}
	return &IOContext{
		recycler:  r,
		content:   content,
		managed:   managed,
		readCons:  DefaultReadConstraints,
		writeCons: DefaultWriteConstraints,
		report:    DefaultErrorReport,
	}
}

// SetReadConstraints sets the read constraints of c and returns c.
func (c *IOContext) SetReadConstraints(rc ReadConstraints) *IOContext { c.readCons = rc; return c }

// SetWriteConstraints sets the write constraints of c and returns c.
func (c *IOContext) SetWriteConstraints(wc WriteConstraints) *IOContext { c.writeCons = wc; return c }

// SetErrorReport sets the error report configuration of c and returns c.
func (c *IOContext) SetErrorReport(er ErrorReportConfig) *IOContext { c.report = er; return c }

// ReadConstraints returns the read constraints of c.
func (c *IOContext) ReadConstraints() ReadConstraints { return c.readCons }

// WriteConstraints returns the write constraints of c.
func (c *IOContext) WriteConstraints() WriteConstraints { return c.writeCons }

// ErrorReport returns the error report configuration of c.
func (c *IOContext) ErrorReport() ErrorReportConfig { return c.report }

// Content returns the content reference of c.
func (c *IOContext) Content() ContentReference { return c.content }

// IsResourceManaged reports whether the content is owned by c.
func (c *IOContext) IsResourceManaged() bool { return c.managed }

// Recycler returns the buffer recycler of c.
func (c *IOContext) Recycler() *BufferRecycler { return c.recycler }

// AllocBytes allocates the buffer of the given kind, with length at least
// minSize. It panics if that buffer is already allocated.
func (c *IOContext) AllocBytes(kind ByteBufferKind, minSize int) []byte {
	if c.bytes[kind] != nil {
		panic(fmt.Sprintf("cirjson: %v buffer allocated twice", kind))
	}
	c.released = false
	c.bytes[kind] = c.recycler.AllocBytes(kind, minSize)
	return c.bytes[kind]
}

// ReleaseBytes releases buf, which must be nil or the current buffer of the
// given kind (possibly resliced).
func (c *IOContext) ReleaseBytes(kind ByteBufferKind, buf []byte) {
	if buf == nil {
		return
	}
	own := c.bytes[kind]
	if own == nil || cap(buf) < cap(own) {
		panic(fmt.Sprintf("cirjson: released %v buffer was not allocated here", kind))
	}
	c.bytes[kind] = nil
	c.recycler.ReleaseBytes(kind, buf)
}

// AllocRunes allocates the buffer of the given kind, with length at least
// minSize. It panics if that buffer is already allocated.
func (c *IOContext) AllocRunes(kind RuneBufferKind, minSize int) []rune {
	if c.runes[kind] != nil {
		panic(fmt.Sprintf("cirjson: %v buffer allocated twice", kind))
	}
	c.released = false
	c.runes[kind] = c.recycler.AllocRunes(kind, minSize)
	return c.runes[kind]
}

// ReleaseRunes releases buf, which must be nil or the current buffer of the
// given kind (possibly resliced).
func (c *IOContext) ReleaseRunes(kind RuneBufferKind, buf []rune) {
	if buf == nil {
		return
	}
	own := c.runes[kind]
	if own == nil || cap(buf) < cap(own) {
		panic(fmt.Sprintf("cirjson: released %v buffer was not allocated here", kind))
	}
	c.runes[kind] = nil
	c.recycler.ReleaseRunes(kind, buf)
}

// AllocText implements the allocator of text buffers.
func (c *IOContext) AllocText(minSize int) []byte {
	return c.recycler.AllocBytes(TextSegmentBuffer, minSize)[:0]
}

// ReleaseText implements the allocator of text buffers.
func (c *IOContext) ReleaseText(buf []byte) { c.recycler.ReleaseBytes(TextSegmentBuffer, buf) }

// NewTextBuffer returns a text buffer backed by c, limited to the maximum
// string length of the read constraints.
func (c *IOContext) NewTextBuffer() *textbuf.Buffer {
	return textbuf.New(c, c.readCons.MaxStringLength)
}

// Release returns all outstanding buffers of c to its recycler. Calls after
// the first have no effect until another buffer is allocated.
func (c *IOContext) Release() {
	if c.released {
		return
	}
	c.released = true
	for kind, buf := range c.bytes {
		if buf != nil {
			c.recycler.ReleaseBytes(ByteBufferKind(kind), buf)
			c.bytes[kind] = nil
		}
	}
	for kind, buf := range c.runes {
		if buf != nil {
			c.recycler.ReleaseRunes(RuneBufferKind(kind), buf)
			c.runes[kind] = nil
		}
	}
	glog.V(3).Infof("cirjson: released buffers for %s", c.content.Description())
}
