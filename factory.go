// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"io"
	"strings"

	"github.com/creachadair/cirjson/sym"
)

// A Factory constructs parsers and generators that share a configuration, a
// buffer recycler, and the root symbol tables that parsers draw property
// names from.
//
// Configure a Factory before use; after that it is safe for concurrent use
// by multiple goroutines.
type Factory struct {
	readFeatures  ReadFeature
	writeFeatures WriteFeature
	readCons      ReadConstraints
	writeCons     WriteConstraints
	report        ErrorReportConfig
	escapes       CharacterEscapes
	rootSep       string

	recycler  *BufferRecycler
	bytesRoot *sym.ByteQuadsCanonicalizer
	charsRoot *sym.CharsToNameCanonicalizer
}

// DefaultRootValueSeparator separates root-level values in generator output
// unless configured otherwise.
const DefaultRootValueSeparator = " "

// NewFactory constructs a factory with default features and constraints.
func NewFactory() *Factory {
	f := &Factory{
		readFeatures:  DefaultReadFeatures,
		writeFeatures: DefaultWriteFeatures,
		readCons:      DefaultReadConstraints,
		writeCons:     DefaultWriteConstraints,
		report:        DefaultErrorReport,
		rootSep:       DefaultRootValueSeparator,
		recycler:      NewBufferRecycler(),
	}
	return f.SetHashSeed(0)
}

// EnableRead enables the given read features and returns f.
func (f *Factory) EnableRead(feature ReadFeature) *Factory { f.readFeatures |= feature; return f }

// DisableRead disables the given read features and returns f.
func (f *Factory) DisableRead(feature ReadFeature) *Factory { f.readFeatures &^= feature; return f }

// EnableWrite enables the given write features and returns f.
func (f *Factory) EnableWrite(feature WriteFeature) *Factory { f.writeFeatures |= feature; return f }

// DisableWrite disables the given write features and returns f.
func (f *Factory) DisableWrite(feature WriteFeature) *Factory { f.writeFeatures &^= feature; return f }

// ReadFeatures returns the read features of f.
func (f *Factory) ReadFeatures() ReadFeature { return f.readFeatures }

// WriteFeatures returns the write features of f.
func (f *Factory) WriteFeatures() WriteFeature { return f.writeFeatures }

// SetReadConstraints sets the read constraints of f and returns f.
func (f *Factory) SetReadConstraints(rc ReadConstraints) *Factory { f.readCons = rc; return f }

// SetWriteConstraints sets the write constraints of f and returns f.
func (f *Factory) SetWriteConstraints(wc WriteConstraints) *Factory { f.writeCons = wc; return f }

// SetErrorReport sets the error report configuration of f and returns f.
func (f *Factory) SetErrorReport(er ErrorReportConfig) *Factory { f.report = er; return f }

// SetCharacterEscapes sets the custom escapes used by generators of f, or
// restores the standard escapes if ce == nil, and returns f.
func (f *Factory) SetCharacterEscapes(ce CharacterEscapes) *Factory { f.escapes = ce; return f }

// SetRootValueSeparator sets the text written between root-level values by
// generators of f and returns f. An empty separator writes nothing.
func (f *Factory) SetRootValueSeparator(sep string) *Factory { f.rootSep = sep; return f }

// SetHashSeed replaces the root symbol tables of f with empty tables hashing
// with the given seed, and returns f. Names learned by earlier parsers are
// discarded.
func (f *Factory) SetHashSeed(seed int32) *Factory {
	f.bytesRoot = sym.NewBytesRoot(seed)
	f.charsRoot = sym.NewCharsRoot(seed)
	return f
}

// SetCanonicalizeNames configures whether parsers of decoded text share
// property name strings through the symbol table (true, the default), and
// returns f.
func (f *Factory) SetCanonicalizeNames(ok bool) *Factory { f.charsRoot.SetCanonicalize(ok); return f }

// SetFailOnSymbolOverflow configures whether a symbol table that degrades
// under hash collisions reports an error rather than recovering, and
// returns f.
func (f *Factory) SetFailOnSymbolOverflow(fail bool) *Factory {
	f.bytesRoot.SetFailOnOverflow(fail)
	f.charsRoot.SetFailOnOverflow(fail)
	return f
}

// Recycler returns the buffer recycler shared by parsers and generators of f.
func (f *Factory) Recycler() *BufferRecycler { return f.recycler }

// NewIOContext returns a context for the given source or target, configured
// with the constraints of f.
func (f *Factory) NewIOContext(content ContentReference, managed bool) *IOContext {
	return NewIOContext(f.recycler, content, managed).
		SetReadConstraints(f.readCons).
		SetWriteConstraints(f.writeCons).
		SetErrorReport(f.report)
}

func (f *Factory) content(raw any, n int) ContentReference {
	return NewContentReference(raw, 0, n, f.report)
}

// NewParser returns a parser for the CirJSON text in data. The parser does
// not modify or retain data after it is closed.
func (f *Factory) NewParser(data []byte) *UTF8Parser {
	ioctx := f.NewIOContext(f.content(data, len(data)), true)
	p := newUTF8Parser(ioctx, f.readFeatures, f.bytesRoot.MakeChild())
	p.setBytes(data)
	return p
}

// NewParserFromReader returns a parser for the CirJSON text read from r.
// If r implements io.Closer and AutoCloseSource is enabled, closing the
// parser closes r.
func (f *Factory) NewParserFromReader(r io.Reader) *UTF8Parser {
	ioctx := f.NewIOContext(f.content(r, -1), false)
	p := newUTF8Parser(ioctx, f.readFeatures, f.bytesRoot.MakeChild())
	p.setReader(r, r, ioctx.AllocBytes(ReadIOBuffer, 0))
	return p
}

// NewParserFromByteReader returns a parser that consumes r one byte at a
// time and never reads past the end of the last value it reports. Its
// locations do not include columns.
func (f *Factory) NewParserFromByteReader(r io.ByteReader) *ByteReaderParser {
	ioctx := f.NewIOContext(f.content(r, -1), false)
	return newByteReaderParser(ioctx, f.readFeatures, f.bytesRoot.MakeChild(), r)
}

// NewParserFromString returns a parser for the CirJSON text in s.
func (f *Factory) NewParserFromString(s string) *RuneParser {
	ioctx := f.NewIOContext(f.content(s, len(s)), true)
	p := newRuneParser(ioctx, f.readFeatures, f.charsRoot.MakeChild())
	p.setRuneReader(s, strings.NewReader(s), ioctx.AllocRunes(TokenBuffer, 0))
	return p
}

// NewParserFromRunes returns a parser for the CirJSON text in rs, which is
// not modified.
func (f *Factory) NewParserFromRunes(rs []rune) *RuneParser {
	ioctx := f.NewIOContext(f.content(rs, len(rs)), true)
	p := newRuneParser(ioctx, f.readFeatures, f.charsRoot.MakeChild())
	p.setRunes(rs)
	return p
}

// NewParserFromRuneReader returns a parser for the CirJSON text read from rr.
// If rr implements io.Closer and AutoCloseSource is enabled, closing the
// parser closes rr.
func (f *Factory) NewParserFromRuneReader(rr io.RuneReader) *RuneParser {
	ioctx := f.NewIOContext(f.content(rr, -1), false)
	p := newRuneParser(ioctx, f.readFeatures, f.charsRoot.MakeChild())
	p.setRuneReader(rr, rr, ioctx.AllocRunes(TokenBuffer, 0))
	return p
}

// NewGenerator returns a generator that writes UTF-8 CirJSON text to w.
// If w implements io.Closer and AutoCloseTarget is enabled, closing the
// generator closes w.
func (f *Factory) NewGenerator(w io.Writer) *UTF8Generator {
	ioctx := f.NewIOContext(f.content(w, -1), false)
	return newUTF8Generator(ioctx, f.writeFeatures, f.escapes, f.rootSep, w)
}

// NewRuneGenerator returns a generator that writes CirJSON text to w as
// strings, for example into a strings.Builder.
func (f *Factory) NewRuneGenerator(w io.StringWriter) *RuneGenerator {
	ioctx := f.NewIOContext(f.content(w, -1), false)
	return newRuneGenerator(ioctx, f.writeFeatures, f.escapes, f.rootSep, w)
}
