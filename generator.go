// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"errors"
	"io"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/creachadair/cirjson/internal/escape"
	"github.com/creachadair/cirjson/internal/numio"
	"github.com/golang/glog"
	"github.com/shopspring/decimal"
)

// A Generator writes CirJSON output from a sequence of write calls.
//
// The calls must follow the structure of the output: names only inside
// objects, alternating with values. Each array and object should begin with
// its id, written by WriteArrayID or WriteObjectID. Calls that violate the
// structure report ErrStructure.
//
// A Generator buffers its output; call Flush or Close to write it out. A
// Generator is not safe for concurrent use.
type Generator interface {
	RawWriter

	WriteStartArray() error
	WriteStartArrayFor(v any, size int) error
	WriteEndArray() error
	WriteStartObject() error
	WriteStartObjectFor(v any) error
	WriteEndObject() error

	// WriteObjectID writes the id property of the object for v. The same
	// referent is given the same id for the life of the generator.
	WriteObjectID(v any) error

	// WriteArrayID writes the id element of the array for v.
	WriteArrayID(v any) error

	WriteName(name string) error
	WriteSerializedName(name *SerializedString) error

	WriteString(s string) error
	WriteRunes(rs []rune) error
	WriteSerializedString(s *SerializedString) error

	// WriteRawUTF8String writes text that is already escaped as a string.
	WriteRawUTF8String(text []byte) error

	// WriteUTF8String writes UTF-8 text as a string, escaping it.
	WriteUTF8String(text []byte) error

	// WriteRawValue writes text as a value, without checking or escaping it.
	WriteRawValue(text string) error

	// WriteBinary writes data as a base64 string in the given variant
	// (DefaultBase64 if nil).
	WriteBinary(v *Base64Variant, data []byte) error

	// WriteBinaryFrom writes the contents of r as a base64 string. If n >= 0,
	// exactly n bytes are copied; otherwise r is read to the end. It returns
	// the number of bytes copied.
	WriteBinaryFrom(v *Base64Variant, r io.Reader, n int) (int, error)

	WriteInt(v int) error
	WriteInt64(v int64) error
	WriteUint64(v uint64) error
	WriteBigInt(v *big.Int) error
	WriteFloat32(v float32) error
	WriteFloat64(v float64) error
	WriteDecimal(v decimal.Decimal) error

	// WriteNumber writes text, which should be a valid number, as a number.
	WriteNumber(text string) error

	WriteBool(v bool) error
	WriteNull() error

	// CopyCurrentEvent writes the current token of p.
	CopyCurrentEvent(p Parser) error

	// CopyCurrentStructure writes the current token of p and, if it starts
	// an array or object, everything up to its end. If the current token is
	// a property name, the name and its value are copied.
	CopyCurrentStructure(p Parser) error

	Context() *WriteContext
	SetPrettyPrinter(pp PrettyPrinter)
	SetCharacterEscapes(ce CharacterEscapes)

	// SetHighestNonEscapedChar sets the highest character written without
	// escaping. Values below U+007F are treated as U+007F, and values <= 0
	// remove the limit.
	SetHighestNonEscapedChar(r rune)

	SetRootValueSeparator(sep string)
	IsEnabled(f WriteFeature) bool
	Configure(f WriteFeature, on bool)
	CurrentValue() any
	SetCurrentValue(v any)

	// OutputBuffered reports the amount of output buffered but not written.
	OutputBuffered() int

	Flush() error
	Close() error
	IsClosed() bool
}

// An emitter writes the output of a generator to one kind of sink.
type emitter interface {
	RawWriter

	writeRawBytes(b []byte) error
	writeRawRunes(rs []rune) error

	// The escaped writers escape their input according to the generator's
	// escaper. Invalid input reports ErrEncoding.
	writeEscaped(s string) error
	writeEscapedBytes(b []byte) error
	writeEscapedRunes(rs []rune) error

	flushBuffer() error
	buffered() int
	target() any
	releaseBuffers()
}

// An escaper decides how each character of string content is written.
type escaper struct {
	codes    [128]int32 // per ASCII character: EscapeNone, a backslash code, EscapeStandard or EscapeCustom
	standard bool       // codes is escape.OutputCodes
	maxPlain rune       // characters above are \u escaped; 0 for no limit
	custom   CharacterEscapes
	upper    bool
}

func (e *escaper) configure(features WriteFeature, ce CharacterEscapes) {
	e.upper = features.Has(WriteHexUpperCase)
	e.custom = ce
	if ce == nil {
		e.codes = escape.OutputCodes
		e.standard = !features.Has(EscapeForwardSlashes)
	} else {
		e.standard = false
		e.codes = [128]int32{}
		for i, c := range ce.EscapeCodesForASCII() {
			if i >= len(e.codes) {
				break
			}
			if c == EscapeStandard && escape.OutputCodes[i] > 0 {
				c = escape.OutputCodes[i]
			}
			e.codes[i] = c
		}
	}
	if features.Has(EscapeForwardSlashes) {
		e.codes['/'] = '/'
	}
}

// plain reports whether r is written as-is, without consulting the custom
// escapes.
func (e *escaper) plain(r rune) bool {
	if r < utf8.RuneSelf {
		return e.codes[r] == EscapeNone
	}
	return (e.maxPlain <= 0 || r <= e.maxPlain) && e.custom == nil
}

// appendEscape appends the escape sequence for r to dst and reports true, or
// reports false if r is written as-is.
func (e *escaper) appendEscape(dst []byte, r rune) ([]byte, bool) {
	if r < utf8.RuneSelf {
		switch c := e.codes[r]; {
		case c == EscapeNone:
			return dst, false
		case c > 0:
			return append(dst, '\\', byte(c)), true
		case c == EscapeCustom:
			if s := e.custom.EscapeSequence(r); s != nil {
				return append(dst, s.Value()...), true
			}
			return dst, false
		}
		return escape.AppendUnicodeEscape(dst, r, e.upper), true
	}
	if e.maxPlain > 0 && r > e.maxPlain {
		return escape.AppendUnicodeEscape(dst, r, e.upper), true
	}
	if e.custom != nil {
		if s := e.custom.EscapeSequence(r); s != nil {
			return append(dst, s.Value()...), true
		}
	}
	return dst, false
}

// plainLen returns the length of the prefix of s written without escapes,
// as far as it can be determined without decoding.
func plainLen[T string | []byte](e *escaper, s T) int {
	n := escape.PlainPrefix(s)
	if e.standard {
		return n
	}
	for i := range n {
		if e.codes[s[i]] != EscapeNone {
			return i
		}
	}
	return n
}

// decodeRune decodes the first character of s, reporting ErrEncoding for
// invalid UTF-8.
func decodeRune[T string | []byte](s T) (rune, int, error) {
	var r rune
	var n int
	switch v := any(s).(type) {
	case string:
		r, n = utf8.DecodeRuneInString(v)
	case []byte:
		r, n = utf8.DecodeRune(v)
	}
	if r == utf8.RuneError && n <= 1 {
		return 0, 0, writeError(ErrEncoding, "Invalid UTF-8 start byte 0x%x in string value", s[0])
	}
	return r, n, nil
}

// nextRune returns the first character of rs, joining a UTF-16 surrogate
// pair, and the number of runes it spans. Unpaired surrogates report
// ErrEncoding.
func nextRune(rs []rune) (rune, int, error) {
	r := rs[0]
	if !utf16.IsSurrogate(r) {
		if !utf8.ValidRune(r) {
			return 0, 0, writeError(ErrEncoding, "Invalid character (code 0x%x) in string value", r)
		}
		return r, 1, nil
	}
	if r >= 0xDC00 {
		return 0, 0, writeError(ErrEncoding, "Invalid surrogate pair: first character 0x%x is not a high surrogate", r)
	}
	if len(rs) < 2 {
		return 0, 0, writeError(ErrEncoding, "Split surrogate on output: high surrogate 0x%x at end of input", r)
	}
	lo := rs[1]
	if lo < 0xDC00 || lo > 0xDFFF {
		return 0, 0, writeError(ErrEncoding, "Invalid surrogate pair: 0x%x followed by 0x%x, not a low surrogate", r, lo)
	}
	return utf16.DecodeRune(r, lo), 2, nil
}

// An idKey identifies a referent: the address, type and (for slices)
// length of a reference value.
type idKey struct {
	typ reflect.Type
	ptr uintptr
	n   int
}

type idEntry struct {
	id    string
	array bool
}

// idTable assigns ids to referents, sequentially from "0".
type idTable struct {
	next int
	ids  map[idKey]idEntry
}

func (t *idTable) fresh() string {
	id := strconv.Itoa(t.next)
	t.next++
	return id
}

// lookup returns the id for v, which identifies an array (array == true)
// or an object. Values without identity get a fresh id on each call.
func (t *idTable) lookup(v any, array bool) (string, error) {
	rv := reflect.ValueOf(v)
	var key idKey
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		key = idKey{typ: rv.Type(), ptr: rv.Pointer()}
	case reflect.Slice:
		key = idKey{typ: rv.Type(), ptr: rv.Pointer(), n: rv.Len()}
	default:
		return t.fresh(), nil
	}
	if key.ptr == 0 {
		return t.fresh(), nil
	}
	if e, ok := t.ids[key]; ok {
		if e.array != array {
			return "", writeError(ErrStructure, "Referent of type %v used as both an Array and an Object", key.typ)
		}
		return e.id, nil
	}
	if t.ids == nil {
		t.ids = make(map[idKey]idEntry)
	}
	e := idEntry{id: t.fresh(), array: array}
	t.ids[key] = e
	return e.id, nil
}

// generatorBase implements the structural state machine and value
// formatting shared by all generators, writing through an emitter.
type generatorBase struct {
	out      emitter
	ioctx    *IOContext
	features WriteFeature
	cons     WriteConstraints

	ctx     *WriteContext
	pp      PrettyPrinter
	esc     escaper
	rootSep string
	ids     idTable
	scratch []byte
	closed  bool
}

func (g *generatorBase) init(out emitter, ioctx *IOContext, features WriteFeature, ce CharacterEscapes, rootSep string) {
	g.out = out
	g.ioctx = ioctx
	g.features = features
	g.cons = ioctx.WriteConstraints()
	g.rootSep = rootSep
	var dups *DupDetector
	if features.Has(WriteStrictDuplicateDetection) {
		dups = NewDupDetector(out)
	}
	g.ctx = NewRootWriteContext(dups)
	g.esc.configure(features, ce)
	if features.Has(EscapeNonASCII) {
		g.esc.maxPlain = 127
	}
	g.scratch = ioctx.AllocBytes(WriteConcatBuffer, 0)[:0]
}

// Structure.

// verifyValueWrite records a value in the current context and writes the
// separator that precedes it.
func (g *generatorBase) verifyValueWrite(what string) error {
	if g.closed {
		return writeError(ErrIO, "Cannot %s: generator is closed", what)
	}
	st := g.ctx.WriteValue()
	if st == ExpectName {
		return writeError(ErrStructure, "Cannot %s, expecting a property name", what)
	}
	if g.pp != nil {
		switch st {
		case OKAfterComma:
			return g.pp.WriteArrayValueSeparator(g.out)
		case OKAfterColon:
			return g.pp.WriteObjectNameValueSeparator(g.out)
		case OKAfterSpace:
			return g.pp.WriteRootValueSeparator(g.out)
		case OKAsIs:
			if g.ctx.InArray() {
				return g.pp.BeforeArrayValues(g.out)
			}
		}
		return nil
	}
	switch st {
	case OKAfterComma:
		return g.out.WriteRaw(",")
	case OKAfterColon:
		return g.out.WriteRaw(":")
	case OKAfterSpace:
		if g.rootSep != "" {
			return g.out.WriteRaw(g.rootSep)
		}
	}
	return nil
}

func (g *generatorBase) checkDepth() error {
	return g.cons.checkDepth(g.ctx.Depth() + 1)
}

// WriteStartArray implements part of the Generator interface.
func (g *generatorBase) WriteStartArray() error { return g.WriteStartArrayFor(nil, -1) }

// WriteStartArrayFor implements part of the Generator interface. The size
// is advisory and may be -1.
func (g *generatorBase) WriteStartArrayFor(v any, size int) error {
	if err := g.verifyValueWrite("start an array"); err != nil {
		return err
	}
	if err := g.checkDepth(); err != nil {
		return err
	}
	g.ctx = g.ctx.CreateChildArrayContext(v)
	if g.pp != nil {
		return g.pp.WriteStartArray(g.out)
	}
	return g.out.WriteRaw("[")
}

// WriteEndArray implements part of the Generator interface.
func (g *generatorBase) WriteEndArray() error {
	if !g.ctx.InArray() {
		return writeError(ErrStructure, "Current context not Array but %s", g.ctx.TypeDesc())
	}
	n := g.ctx.EntryCount()
	g.ctx = g.ctx.ClearAndGetParent()
	if g.pp != nil {
		return g.pp.WriteEndArray(g.out, n)
	}
	return g.out.WriteRaw("]")
}

// WriteStartObject implements part of the Generator interface.
func (g *generatorBase) WriteStartObject() error { return g.WriteStartObjectFor(nil) }

// WriteStartObjectFor implements part of the Generator interface.
func (g *generatorBase) WriteStartObjectFor(v any) error {
	if err := g.verifyValueWrite("start an object"); err != nil {
		return err
	}
	if err := g.checkDepth(); err != nil {
		return err
	}
	g.ctx = g.ctx.CreateChildObjectContext(v)
	if g.pp != nil {
		return g.pp.WriteStartObject(g.out)
	}
	return g.out.WriteRaw("{")
}

// WriteEndObject implements part of the Generator interface.
func (g *generatorBase) WriteEndObject() error {
	if !g.ctx.InObject() {
		return writeError(ErrStructure, "Current context not Object but %s", g.ctx.TypeDesc())
	}
	n := g.ctx.EntryCount()
	g.ctx = g.ctx.ClearAndGetParent()
	if g.pp != nil {
		return g.pp.WriteEndObject(g.out, n)
	}
	return g.out.WriteRaw("}")
}

// WriteObjectID implements part of the Generator interface.
func (g *generatorBase) WriteObjectID(v any) error {
	if err := g.checkIDWrite(false); err != nil {
		return err
	}
	id, err := g.ids.lookup(v, false)
	if err != nil {
		return err
	}
	if err := g.WriteName(IDName); err != nil {
		return err
	}
	return g.WriteString(id)
}

// WriteArrayID implements part of the Generator interface.
func (g *generatorBase) WriteArrayID(v any) error {
	if err := g.checkIDWrite(true); err != nil {
		return err
	}
	id, err := g.ids.lookup(v, true)
	if err != nil {
		return err
	}
	return g.WriteString(id)
}

// checkIDWrite reports whether an id may be written at the current position,
// without changing any state. No id is assigned for a misplaced write.
func (g *generatorBase) checkIDWrite(array bool) error {
	if g.closed {
		return writeError(ErrIO, "Cannot write an id: generator is closed")
	}
	switch {
	case array && g.ctx.InObject() && !g.ctx.HasCurrentName():
		return writeError(ErrStructure, "Cannot write an Array id, expecting a property name")
	case !array && !g.ctx.InObject():
		return writeError(ErrStructure, "Cannot write an Object id: current context not Object but %s", g.ctx.TypeDesc())
	case !array && g.ctx.HasCurrentName():
		return writeError(ErrStructure, "Cannot write an Object id, expecting a value")
	}
	return nil
}

// verifyNameWrite records a property name and writes the separator that
// precedes it.
func (g *generatorBase) verifyNameWrite(name string) error {
	if g.closed {
		return writeError(ErrIO, "Cannot write a property name: generator is closed")
	}
	st, err := g.ctx.WriteName(name)
	if err != nil {
		return err
	} else if st == ExpectValue {
		return writeError(ErrStructure, "Cannot write a property name, expecting a value")
	}
	if g.pp != nil {
		if st == OKAfterComma {
			return g.pp.WriteObjectEntrySeparator(g.out)
		}
		return g.pp.BeforeObjectEntries(g.out)
	}
	if st == OKAfterComma {
		return g.out.WriteRaw(",")
	}
	return nil
}

// WriteName implements part of the Generator interface.
func (g *generatorBase) WriteName(name string) error {
	if err := g.verifyNameWrite(name); err != nil {
		return err
	}
	if !g.features.Has(QuotePropertyNames) {
		return g.out.writeEscaped(name)
	}
	return g.quoted(func() error { return g.out.writeEscaped(name) })
}

// WriteSerializedName implements part of the Generator interface.
func (g *generatorBase) WriteSerializedName(name *SerializedString) error {
	if err := g.verifyNameWrite(name.Value()); err != nil {
		return err
	}
	if !g.features.Has(QuotePropertyNames) {
		return g.out.writeRawBytes(name.QuotedUTF8())
	}
	return g.quoted(func() error { return g.out.writeRawBytes(name.QuotedUTF8()) })
}

// quoted calls body between quotation marks.
func (g *generatorBase) quoted(body func() error) error {
	if err := g.out.WriteRaw(`"`); err != nil {
		return err
	}
	if err := body(); err != nil {
		return err
	}
	return g.out.WriteRaw(`"`)
}

// Strings.

// WriteString implements part of the Generator interface.
func (g *generatorBase) WriteString(s string) error {
	if err := g.verifyValueWrite("write a string"); err != nil {
		return err
	}
	return g.quoted(func() error { return g.out.writeEscaped(s) })
}

// WriteRunes implements part of the Generator interface. UTF-16 surrogate
// pairs in rs are joined.
func (g *generatorBase) WriteRunes(rs []rune) error {
	if err := g.verifyValueWrite("write a string"); err != nil {
		return err
	}
	return g.quoted(func() error { return g.out.writeEscapedRunes(rs) })
}

// WriteSerializedString implements part of the Generator interface.
func (g *generatorBase) WriteSerializedString(s *SerializedString) error {
	if err := g.verifyValueWrite("write a string"); err != nil {
		return err
	}
	return g.quoted(func() error { return g.out.writeRawBytes(s.QuotedUTF8()) })
}

// WriteRawUTF8String implements part of the Generator interface.
func (g *generatorBase) WriteRawUTF8String(text []byte) error {
	if err := g.verifyValueWrite("write a string"); err != nil {
		return err
	}
	return g.quoted(func() error { return g.out.writeRawBytes(text) })
}

// WriteUTF8String implements part of the Generator interface.
func (g *generatorBase) WriteUTF8String(text []byte) error {
	if err := g.verifyValueWrite("write a string"); err != nil {
		return err
	}
	return g.quoted(func() error { return g.out.writeEscapedBytes(text) })
}

// WriteRawValue implements part of the Generator interface.
func (g *generatorBase) WriteRawValue(text string) error {
	if err := g.verifyValueWrite("write a raw value"); err != nil {
		return err
	}
	return g.out.WriteRaw(text)
}

// Binary.

func (g *generatorBase) base64Linefeed() string {
	if g.features.Has(EscapeForwardSlashes) || g.esc.codes['\n'] != 'n' {
		var lf []byte
		lf, _ = g.esc.appendEscape(lf, '\n')
		return string(lf)
	}
	return `\n`
}

// WriteBinary implements part of the Generator interface.
func (g *generatorBase) WriteBinary(v *Base64Variant, data []byte) error {
	if err := g.verifyValueWrite("write a binary value"); err != nil {
		return err
	}
	if v == nil {
		v = DefaultBase64
	}
	e := v.newEncoder(g.base64Linefeed())
	return g.quoted(func() error {
		for len(data) != 0 {
			n := min(len(data), base64Chunk)
			g.scratch = e.append(g.scratch[:0], data[:n])
			if err := g.out.writeRawBytes(g.scratch); err != nil {
				return err
			}
			data = data[n:]
		}
		g.scratch = e.finish(g.scratch[:0])
		return g.out.writeRawBytes(g.scratch)
	})
}

// WriteBinaryFrom implements part of the Generator interface.
func (g *generatorBase) WriteBinaryFrom(v *Base64Variant, r io.Reader, n int) (int, error) {
	if err := g.verifyValueWrite("write a binary value"); err != nil {
		return 0, err
	}
	if v == nil {
		v = DefaultBase64
	}
	buf := g.ioctx.AllocBytes(Base64CodecBuffer, base64Chunk)
	defer g.ioctx.ReleaseBytes(Base64CodecBuffer, buf)

	e := v.newEncoder(g.base64Linefeed())
	var total int
	err := g.quoted(func() error {
		for n < 0 || total < n {
			chunk := buf
			if n >= 0 {
				chunk = buf[:min(len(buf), n-total)]
			}
			nr, rerr := r.Read(chunk)
			total += nr
			g.scratch = e.append(g.scratch[:0], chunk[:nr])
			if err := g.out.writeRawBytes(g.scratch); err != nil {
				return err
			}
			if rerr == io.EOF {
				break
			} else if rerr != nil {
				return ioError(rerr)
			}
		}
		if n >= 0 && total < n {
			return writeError(ErrIO, "Too few bytes available: missing %d bytes (out of %d)", n-total, n)
		}
		g.scratch = e.finish(g.scratch[:0])
		return g.out.writeRawBytes(g.scratch)
	})
	return total, err
}

// Numbers.

// writeNumberText writes the text of a number, quoted if numbers are
// written as strings or quote is true.
func (g *generatorBase) writeNumberText(text []byte, quote bool) error {
	if err := g.verifyValueWrite("write a number"); err != nil {
		return err
	}
	if quote || g.features.Has(WriteNumbersAsStrings) {
		return g.quoted(func() error { return g.out.writeRawBytes(text) })
	}
	return g.out.writeRawBytes(text)
}

// WriteInt implements part of the Generator interface.
func (g *generatorBase) WriteInt(v int) error { return g.WriteInt64(int64(v)) }

// WriteInt64 implements part of the Generator interface.
func (g *generatorBase) WriteInt64(v int64) error {
	g.scratch = strconv.AppendInt(g.scratch[:0], v, 10)
	return g.writeNumberText(g.scratch, false)
}

// WriteUint64 implements part of the Generator interface.
func (g *generatorBase) WriteUint64(v uint64) error {
	g.scratch = strconv.AppendUint(g.scratch[:0], v, 10)
	return g.writeNumberText(g.scratch, false)
}

// WriteBigInt implements part of the Generator interface. A nil value is
// written as null.
func (g *generatorBase) WriteBigInt(v *big.Int) error {
	if v == nil {
		return g.WriteNull()
	}
	g.scratch = v.Append(g.scratch[:0], 10)
	return g.writeNumberText(g.scratch, false)
}

func (g *generatorBase) nonFinite(v float64) bool {
	return (math.IsNaN(v) || math.IsInf(v, 0)) && g.features.Has(WriteNaNAsStrings)
}

// WriteFloat32 implements part of the Generator interface.
func (g *generatorBase) WriteFloat32(v float32) error {
	g.scratch = numio.AppendFloat32(g.scratch[:0], v)
	return g.writeNumberText(g.scratch, g.nonFinite(float64(v)))
}

// WriteFloat64 implements part of the Generator interface.
func (g *generatorBase) WriteFloat64(v float64) error {
	g.scratch = numio.AppendFloat64(g.scratch[:0], v)
	return g.writeNumberText(g.scratch, g.nonFinite(v))
}

// maxPlainScale bounds the scale of decimals written in plain notation.
const maxPlainScale = 9999

// WriteDecimal implements part of the Generator interface.
func (g *generatorBase) WriteDecimal(v decimal.Decimal) error {
	plain := g.features.Has(WriteBigDecimalAsPlain)
	if exp := int(v.Exponent()); plain && (exp > maxPlainScale || exp < -maxPlainScale) {
		return writeError(ErrEncoding, "Attempt to write plain decimal with illegal scale (%d): needs to be between [-%d, %d]",
			-exp, maxPlainScale, maxPlainScale)
	}
	g.scratch = numio.AppendDecimal(g.scratch[:0], v, plain)
	return g.writeNumberText(g.scratch, false)
}

// WriteNumber implements part of the Generator interface.
func (g *generatorBase) WriteNumber(text string) error {
	g.scratch = append(g.scratch[:0], text...)
	return g.writeNumberText(g.scratch, false)
}

// Other values.

// WriteBool implements part of the Generator interface.
func (g *generatorBase) WriteBool(v bool) error {
	if err := g.verifyValueWrite("write a boolean value"); err != nil {
		return err
	}
	if v {
		return g.out.WriteRaw("true")
	}
	return g.out.WriteRaw("false")
}

// WriteNull implements part of the Generator interface.
func (g *generatorBase) WriteNull() error {
	if err := g.verifyValueWrite("write a null"); err != nil {
		return err
	}
	return g.out.WriteRaw("null")
}

// Copying.

// CopyCurrentEvent implements part of the Generator interface.
func (g *generatorBase) CopyCurrentEvent(p Parser) error {
	switch t := p.CurrentToken(); t {
	case None:
		return writeError(ErrStructure, "No current event to copy")
	case StartObject:
		return g.WriteStartObject()
	case EndObject:
		return g.WriteEndObject()
	case StartArray:
		return g.WriteStartArray()
	case EndArray:
		return g.WriteEndArray()
	case PropertyName, IDPropertyName:
		return g.WriteName(p.CurrentName())
	case String:
		s, err := p.Text()
		if err != nil {
			return err
		}
		return g.WriteString(s)
	case Int:
		return g.copyInt(p)
	case Float:
		return g.copyFloat(p)
	case True, False:
		return g.WriteBool(t == True)
	case Null:
		return g.WriteNull()
	default:
		return writeError(ErrUnsupported, "Cannot copy token %s", t)
	}
}

func (g *generatorBase) copyInt(p Parser) error {
	nt, err := p.NumberType()
	if err != nil {
		return err
	}
	if nt == NumberBigInteger {
		v, err := p.BigIntValue()
		if err != nil {
			return err
		}
		return g.WriteBigInt(v)
	}
	v, err := p.LongValue()
	if err != nil {
		return err
	}
	return g.WriteInt64(v)
}

func (g *generatorBase) copyFloat(p Parser) error {
	nt, err := p.NumberType()
	if err != nil {
		return err
	}
	if nt == NumberBigDecimal {
		v, err := p.DecimalValue()
		if err != nil {
			return err
		}
		return g.WriteDecimal(v)
	}
	v, err := p.DoubleValue()
	if err != nil {
		return err
	}
	return g.WriteFloat64(v)
}

// CopyCurrentStructure implements part of the Generator interface.
func (g *generatorBase) CopyCurrentStructure(p Parser) error {
	t := p.CurrentToken()
	if t.IsName() {
		if err := g.WriteName(p.CurrentName()); err != nil {
			return err
		}
		var err error
		if t, err = p.NextToken(); err != nil {
			return err
		}
	}
	if !t.IsStructStart() {
		return g.CopyCurrentEvent(p)
	}
	for depth := 0; ; {
		if err := g.CopyCurrentEvent(p); err != nil {
			return err
		}
		switch {
		case t.IsStructStart():
			depth++
		case t.IsStructEnd():
			if depth--; depth == 0 {
				return nil
			}
		}
		var err error
		if t, err = p.NextToken(); err != nil {
			return err
		} else if t == None {
			return writeError(ErrStructure, "Unexpected end of input while copying a structure")
		}
	}
}

// Configuration and state.

// Context implements part of the Generator interface.
func (g *generatorBase) Context() *WriteContext { return g.ctx }

// SetPrettyPrinter implements part of the Generator interface. A nil pp
// restores compact output.
func (g *generatorBase) SetPrettyPrinter(pp PrettyPrinter) { g.pp = pp }

// SetCharacterEscapes implements part of the Generator interface.
func (g *generatorBase) SetCharacterEscapes(ce CharacterEscapes) {
	maxPlain := g.esc.maxPlain
	g.esc.configure(g.features, ce)
	g.esc.maxPlain = maxPlain
}

// SetHighestNonEscapedChar implements part of the Generator interface.
func (g *generatorBase) SetHighestNonEscapedChar(r rune) {
	switch {
	case r <= 0:
		g.esc.maxPlain = 0
	case r < 127:
		g.esc.maxPlain = 127
	default:
		g.esc.maxPlain = r
	}
}

// SetRootValueSeparator implements part of the Generator interface.
func (g *generatorBase) SetRootValueSeparator(sep string) { g.rootSep = sep }

// IsEnabled implements part of the Generator interface.
func (g *generatorBase) IsEnabled(f WriteFeature) bool { return g.features.Has(f) }

// Configure implements part of the Generator interface.
func (g *generatorBase) Configure(f WriteFeature, on bool) {
	if on {
		g.features |= f
	} else {
		g.features &^= f
	}
	switch {
	case f.Has(EscapeNonASCII):
		if on {
			g.esc.maxPlain = 127
		} else {
			g.esc.maxPlain = 0
		}
	case f.Has(EscapeForwardSlashes), f.Has(WriteHexUpperCase):
		g.SetCharacterEscapes(g.esc.custom)
	case f.Has(WriteStrictDuplicateDetection) && g.ctx.InRoot():
		if on && g.ctx.dups == nil {
			g.ctx.dups = NewDupDetector(g.out)
		} else if !on {
			g.ctx.dups = nil
		}
		g.ctx.child = nil
	}
}

// CurrentValue implements part of the Generator interface.
func (g *generatorBase) CurrentValue() any { return g.ctx.CurrentValue() }

// SetCurrentValue implements part of the Generator interface.
func (g *generatorBase) SetCurrentValue(v any) { g.ctx.SetCurrentValue(v) }

// OutputBuffered implements part of the Generator interface.
func (g *generatorBase) OutputBuffered() int { return g.out.buffered() }

// Flush implements part of the Generator interface.
func (g *generatorBase) Flush() error {
	if err := g.out.flushBuffer(); err != nil {
		return err
	}
	if g.features.Has(FlushPassedToStream) {
		return g.flushTarget()
	}
	return nil
}

func (g *generatorBase) flushTarget() error {
	if f, ok := g.out.target().(interface{ Flush() error }); ok {
		return ioError(f.Flush())
	}
	return nil
}

// IsClosed implements part of the Generator interface.
func (g *generatorBase) IsClosed() bool { return g.closed }

// Close implements part of the Generator interface. If AutoCloseContent is
// enabled, open arrays and objects are closed first.
func (g *generatorBase) Close() error {
	if g.closed {
		return nil
	}
	var errs []error
	if g.features.Has(AutoCloseContent) {
	loop:
		for {
			var err error
			switch {
			case g.ctx.InArray():
				err = g.WriteEndArray()
			case g.ctx.InObject():
				if g.ctx.HasCurrentName() {
					err = g.WriteNull()
				}
				if err == nil {
					err = g.WriteEndObject()
				}
			default:
				break loop
			}
			if err != nil {
				errs = append(errs, err)
				break
			}
		}
	}
	errs = append(errs, g.out.flushBuffer())
	g.closed = true
	if g.ioctx.IsResourceManaged() || g.features.Has(AutoCloseTarget) {
		if c, ok := g.out.target().(io.Closer); ok {
			errs = append(errs, ioError(c.Close()))
		}
	} else if g.features.Has(FlushPassedToStream) {
		errs = append(errs, g.flushTarget())
	}
	g.out.releaseBuffers()
	g.scratch = nil
	g.ioctx.Release()
	glog.V(3).Infof("cirjson: closed generator for %s", g.ioctx.Content().Description())
	return errors.Join(errs...)
}
