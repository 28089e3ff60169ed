// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"fmt"
	"math"

	"github.com/creachadair/cirjson/internal/bytebuf"
)

// PaddingPolicy controls how a Base64Variant treats padding when decoding.
type PaddingPolicy byte

// Constants defining the valid PaddingPolicy values.
const (
	PaddingRequired  PaddingPolicy = iota // padding must be present
	PaddingForbidden                      // padding must not be present
	PaddingAllowed                        // padding may or may not be present
)

// Values reported by DecodeChar for characters that are not digits.
const (
	Base64Invalid = -1
	Base64Padding = -2
)

const base64Std = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// A Base64Variant describes an alphabet and line-breaking and padding
// conventions for base64 content embedded in CirJSON strings. A variant is
// immutable; the With methods return modified copies.
type Base64Variant struct {
	name       string
	alphabet   [64]byte
	values     [128]int8
	padChar    byte
	writePad   bool
	readPolicy PaddingPolicy
	maxLine    int // maximum encoded line length, in characters
}

// Predefined base64 variants.
var (
	// MIME is the RFC 2045 encoding with "=" padding and lines of 76 characters.
	MIME = newBase64Variant("MIME", base64Std, true, '=', 76)

	// MIMENoLinefeeds is MIME without line breaks. It is the default variant.
	MIMENoLinefeeds = MIME.derive("MIME-NO-LINEFEEDS", math.MaxInt32)

	// PEM is MIME with lines of 64 characters.
	PEM = MIME.derive("PEM", 64)

	// ModifiedForURL uses "-" and "_" for the last two digits and no padding.
	ModifiedForURL = newBase64Variant("MODIFIED-FOR-URL",
		base64Std[:62]+"-_", false, 0, math.MaxInt32)
)

// DefaultBase64 is the variant used when none is specified.
var DefaultBase64 = MIMENoLinefeeds

func newBase64Variant(name, alphabet string, pad bool, padChar byte, maxLine int) *Base64Variant {
	v := &Base64Variant{name: name, writePad: pad, padChar: padChar, maxLine: maxLine}
	copy(v.alphabet[:], alphabet)
	for i := range v.values {
		v.values[i] = Base64Invalid
	}
	for i := range len(alphabet) {
		v.values[alphabet[i]] = int8(i)
	}
	if pad {
		v.values[padChar] = Base64Padding
		v.readPolicy = PaddingRequired
	} else {
		v.readPolicy = PaddingForbidden
	}
	return v
}

func (v *Base64Variant) derive(name string, maxLine int) *Base64Variant {
	cp := *v
	cp.name, cp.maxLine = name, maxLine
	return &cp
}

// WithReadPadding returns a copy of v with the given padding read policy.
func (v *Base64Variant) WithReadPadding(p PaddingPolicy) *Base64Variant {
	if p == v.readPolicy {
		return v
	}
	cp := *v
	cp.readPolicy = p
	return &cp
}

// WithWritePadding returns a copy of v that does or does not write padding.
func (v *Base64Variant) WithWritePadding(pad bool) *Base64Variant {
	if pad == v.writePad {
		return v
	}
	cp := *v
	cp.writePad = pad
	if pad && cp.padChar == 0 {
		cp.padChar = '='
		cp.values['='] = Base64Padding
	}
	return &cp
}

// Name returns the name of the variant.
func (v *Base64Variant) Name() string { return v.name }

// UsesPadding reports whether v writes padding.
func (v *Base64Variant) UsesPadding() bool { return v.writePad }

// PaddingChar returns the padding character of v, or 0 if it has none.
func (v *Base64Variant) PaddingChar() byte { return v.padChar }

// ReadPadding returns the padding read policy of v.
func (v *Base64Variant) ReadPadding() PaddingPolicy { return v.readPolicy }

// MaxLineLength returns the longest encoded line written by v.
func (v *Base64Variant) MaxLineLength() int { return v.maxLine }

func (v *Base64Variant) String() string { return v.name }

// DecodeChar returns the 6-bit value of c, Base64Padding if c is the padding
// character, or Base64Invalid.
func (v *Base64Variant) DecodeChar(c rune) int {
	if c < 0 || c >= 128 {
		return Base64Invalid
	}
	return int(v.values[c])
}

// EncodeChar returns the digit for the 6-bit value b.
func (v *Base64Variant) EncodeChar(b int) byte { return v.alphabet[b&0x3F] }

// AppendEncoded appends the base64 encoding of data to dst. When a line of
// output reaches the maximum line length, linefeed is appended.
func (v *Base64Variant) AppendEncoded(dst, data []byte, linefeed string) []byte {
	e := v.newEncoder(linefeed)
	return e.finish(e.append(dst, data))
}

// A base64Encoder encodes base64 content in pieces, carrying partial units
// and the line position from one piece to the next.
type base64Encoder struct {
	v        *Base64Variant
	linefeed string
	perLine  int // units per line
	units    int // units left on the current line
	tail     [2]byte
	ntail    int
}

func (v *Base64Variant) newEncoder(linefeed string) *base64Encoder {
	n := max(v.maxLine>>2, 1)
	return &base64Encoder{v: v, linefeed: linefeed, perLine: n, units: n}
}

// unit appends the digits of one unit, preceded by a line break if the
// current line is full.
func (e *base64Encoder) unit(dst []byte, digits ...byte) []byte {
	if e.units <= 0 {
		dst = append(dst, e.linefeed...)
		e.units = e.perLine
	}
	e.units--
	return append(dst, digits...)
}

func (e *base64Encoder) append(dst, data []byte) []byte {
	a := e.v.alphabet
	for len(data) != 0 {
		if e.ntail != 0 || len(data) < 3 {
			for e.ntail < 3 && len(data) != 0 {
				if e.ntail == 2 {
					b := int(e.tail[0])<<16 | int(e.tail[1])<<8 | int(data[0])
					dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F], a[(b>>6)&0x3F], a[b&0x3F])
					e.ntail = 0
					data = data[1:]
					break
				}
				e.tail[e.ntail] = data[0]
				e.ntail++
				data = data[1:]
			}
			continue
		}
		b := int(data[0])<<16 | int(data[1])<<8 | int(data[2])
		dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F], a[(b>>6)&0x3F], a[b&0x3F])
		data = data[3:]
	}
	return dst
}

// finish appends the encoding of any partial unit.
func (e *base64Encoder) finish(dst []byte) []byte {
	a, v := e.v.alphabet, e.v
	switch e.ntail {
	case 1:
		b := int(e.tail[0]) << 16
		if v.writePad {
			dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F], v.padChar, v.padChar)
		} else {
			dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F])
		}
	case 2:
		b := int(e.tail[0])<<16 | int(e.tail[1])<<8
		if v.writePad {
			dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F], a[(b>>6)&0x3F], v.padChar)
		} else {
			dst = e.unit(dst, a[b>>18], a[(b>>12)&0x3F], a[(b>>6)&0x3F])
		}
	}
	e.ntail = 0
	return dst
}

// Encode returns the base64 encoding of data, with line breaks as "\n".
func (v *Base64Variant) Encode(data []byte) string {
	return string(v.AppendEncoded(make([]byte, 0, (len(data)+2)/3*4), data, "\n"))
}

// Decode decodes the base64 text s. Whitespace between 4-character units is
// ignored.
func (v *Base64Variant) Decode(s string) ([]byte, error) {
	var out bytebuf.Builder
	d := base64Decoder{v: v, out: &out}
	for _, c := range s {
		if err := d.feed(c); err != nil {
			return nil, err
		}
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// A base64Decoder decodes base64 content one character at a time, so that it
// can be driven directly from the string lexer of a parser.
type base64Decoder struct {
	v   *Base64Variant
	out *bytebuf.Builder

	bits int // accumulated value of the current unit
	n    int // characters (including padding) in the current unit
	pad  int // padding characters in the current unit
	err  error
}

// newBase64Decoder returns a decoder for variant v (DefaultBase64 if nil)
// whose output starts in buf.
func newBase64Decoder(v *Base64Variant, buf []byte) *base64Decoder {
	if v == nil {
		v = DefaultBase64
	}
	return &base64Decoder{v: v, out: bytebuf.New(buf)}
}

// AppendRune feeds c to d, recording the first error reported.
func (d *base64Decoder) AppendRune(c rune) {
	if d.err == nil {
		d.err = d.feed(c)
	}
}

func (d *base64Decoder) reset() { d.bits, d.n, d.pad = 0, 0, 0 }

func (d *base64Decoder) fail(msg string, args ...any) error {
	return &Error{Kind: ErrSyntax, Message: "Failed to decode base64 content: " + fmt.Sprintf(msg, args...)}
}

func (d *base64Decoder) feed(c rune) error {
	if d.n == 0 && c <= ' ' {
		return nil
	}
	switch b := d.v.DecodeChar(c); b {
	case Base64Invalid:
		if c <= ' ' {
			return d.fail("Illegal white space character (code 0x%x) as character #%d of 4-char base64 unit: can only be used between units", c, d.n+1)
		}
		return d.fail("Illegal character %q (code 0x%x) in base64 content", c, c)

	case Base64Padding:
		if d.n < 2 {
			return d.fail("Unexpected padding character ('%c') as character #%d of 4-char base64 unit: padding only legal as 3rd or 4th character", c, d.n+1)
		}
		if d.v.readPolicy == PaddingForbidden {
			return d.fail("Unexpected padding character ('%c'): base64 variant '%s' does not accept padding", c, d.v.name)
		}
		d.pad++
		d.n++
		if d.n == 4 {
			d.flushPartial()
		}

	default:
		if d.pad > 0 {
			return d.fail("Expected padding character '%c' as character #%d of 4-char base64 unit", d.v.padChar, d.n+1)
		}
		d.bits = d.bits<<6 | b
		d.n++
		if d.n == 4 {
			d.out.AppendThreeBytes(d.bits)
			d.reset()
		}
	}
	return nil
}

// flushPartial emits the bytes of a unit with fewer than 4 digits.
func (d *base64Decoder) flushPartial() {
	switch d.n - d.pad {
	case 2:
		d.out.Append(byte(d.bits >> 4))
	case 3:
		d.out.AppendTwoBytes(d.bits >> 2)
	}
	d.reset()
}

func (d *base64Decoder) finish() error {
	switch {
	case d.n == 0:
		return nil
	case d.pad > 0:
		return d.fail("Unexpected end of base64-encoded String: expected padding character '%c' as character #%d of 4-char base64 unit", d.v.padChar, d.n+1)
	case d.n == 1:
		return d.fail("Unexpected end of base64-encoded String: a unit needs at least 2 characters")
	case d.v.readPolicy == PaddingRequired:
		return d.fail("Unexpected end of base64-encoded String: base64 variant '%s' expects padding (one or more '%c' characters) at the end", d.v.name, d.v.padChar)
	}
	d.flushPartial()
	return nil
}
