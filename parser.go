// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"errors"
	"io"
	"math"
	"math/big"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/creachadair/cirjson/internal/escape"
	"github.com/creachadair/cirjson/internal/numio"
	"github.com/creachadair/cirjson/internal/textbuf"
	"github.com/golang/glog"
	"github.com/shopspring/decimal"
)

// A Parser reads a stream of tokens from CirJSON input. Each call to
// NextToken advances the parser to the next token; the text and value of the
// current token are available through the accessor methods until the next
// call that advances the parser.
//
// The structure of the input is checked as it is read: brackets must match,
// the first property of every object must be the id property IDName with a
// string value, and the first element of every array must be a string id.
// At the end of the input NextToken reports None and closes the parser.
//
// A Parser is not safe for concurrent use.
type Parser interface {
	// NextToken advances to the next token and returns it.
	NextToken() (Token, error)

	// NextValue advances to the next token that is not a property name.
	NextValue() (Token, error)

	// NextName advances to the next token, and if it is a property name
	// returns the name and true.
	NextName() (string, bool, error)

	// NextNameMatches advances to the next token and reports whether it is a
	// property name equal to s.
	NextNameMatches(s *SerializedString) (bool, error)

	// CurrentToken returns the current token, or None.
	CurrentToken() Token

	// CurrentName returns the name of the current property. For the start
	// and end of an array or object, it is the name of the property whose
	// value the array or object is.
	CurrentName() string

	// Text returns the text of the current token: the decoded value of a
	// string, a property name, the text of a number, or the fixed text of
	// other tokens.
	Text() (string, error)

	// TextLength returns the length in bytes of Text.
	TextLength() (int, error)

	// IntValue returns the value of a numeric token as an int32, or reports
	// ErrCoercion if it is out of range.
	IntValue() (int32, error)

	// LongValue returns the value of a numeric token as an int64, or reports
	// ErrCoercion if it is out of range.
	LongValue() (int64, error)

	// BigIntValue returns the value of a numeric token as a big integer.
	// Floating-point values are truncated.
	BigIntValue() (*big.Int, error)

	// FloatValue returns the value of a numeric token as a float32.
	FloatValue() (float32, error)

	// DoubleValue returns the value of a numeric token as a float64.
	DoubleValue() (float64, error)

	// DecimalValue returns the exact value of a numeric token.
	DecimalValue() (decimal.Decimal, error)

	// NumberType reports the natural representation of a numeric token.
	NumberType() (NumberType, error)

	// IsNaN reports whether the current token is a NaN or infinite number.
	IsNaN() (bool, error)

	// BoolValue returns the value of a True or False token.
	BoolValue() (bool, error)

	// BinaryValue decodes the current string token as base64 in the given
	// variant (DefaultBase64 if nil).
	BinaryValue(v *Base64Variant) ([]byte, error)

	// ReadBinaryValue decodes the current string token as base64 in the
	// given variant and writes the result to w, returning the number of
	// bytes written. The token text is not retained.
	ReadBinaryValue(v *Base64Variant, w io.Writer) (int, error)

	// SkipChildren skips the contents of the array or object just started,
	// leaving the parser at its end token. Otherwise it does nothing.
	SkipChildren() error

	// FinishToken decodes the complete text of the current token, if it has
	// not already been decoded.
	FinishToken() error

	// Context returns the current read context.
	Context() *ReadContext

	// TokenLocation returns the location of the start of the current token.
	TokenLocation() Location

	// CurrentLocation returns the location of the next unread input.
	CurrentLocation() Location

	// IsEnabled reports whether feature f is enabled.
	IsEnabled(f ReadFeature) bool

	// Configure enables (on) or disables (!on) feature f.
	Configure(f ReadFeature, on bool)

	// ReleaseBuffered writes to w any input the parser has read from its
	// source but not consumed, and returns the number of bytes written. It
	// returns -1 if the parser does not read bytes.
	ReleaseBuffered(w io.Writer) (int, error)

	// ReleaseBufferedRunes writes to w any input the parser has read from
	// its source but not consumed, and returns the number of runes written.
	// It returns -1 if the parser does not read runes.
	ReleaseBufferedRunes(w io.StringWriter) (int, error)

	// CurrentValue returns the value bound to the current context.
	CurrentValue() any

	// SetCurrentValue binds v to the current context.
	SetCurrentValue(v any)

	// Close closes the parser and releases its buffers. The source is closed
	// if it is owned by the parser or AutoCloseSource is enabled.
	Close() error

	// IsClosed reports whether the parser has been closed.
	IsClosed() bool
}

// A position records the location of a character of input. Offsets that a
// parser does not track are -1.
type position struct {
	bytes, chars int64
	line, col    int
}

// A lexer supplies the characters of one kind of input to a parser.
//
// Errors from the source, and invalid input encodings, are recorded by the
// lexer: next reports -1, and failure returns the recorded error.
type lexer interface {
	// next returns the next character of input, or -1 at the end of the
	// input or after an error.
	next() rune

	// unread pushes back the character last returned by next. It may be
	// called at most once after each call of next.
	unread()

	// failure returns the error that ended the input, or nil.
	failure() error

	// pos returns the position of the next character.
	pos() position

	// lastPos returns the position of the character last returned by next.
	lastPos() position

	// quickName reads a property name quoted by q, whose opening quote has
	// been consumed, if the complete name is buffered and needs no decoding.
	// If not, it consumes nothing and reports false.
	quickName(q rune) (string, bool, error)

	// intern returns the canonical string for the UTF-8 name.
	intern(name []byte) (string, error)

	// copyPlain consumes the run of buffered string characters up to the
	// next quote q, backslash, control character or character that needs
	// validation, and appends them to tb if it is not nil.
	copyPlain(tb *textbuf.Buffer, q rune)

	releaseBytes(w io.Writer) (int, error)
	releaseRunes(w io.StringWriter) (int, error)

	// closeInput closes the source, if it can be closed.
	closeInput() error

	// release returns the symbol table of the lexer to its root, and drops
	// its buffers.
	release()
}

// numMask records which representations of the current number are valid.
type numMask byte

const (
	numInt numMask = 1 << iota
	numLong
	numBig
	numFloat
	numDouble
	numDecimal
)

const validValues = "(String, Number, Array, Object or token 'null', 'true' or 'false')"

// parserBase implements the structural state machine and the value
// accessors shared by all parsers, reading its input through a lexer.
type parserBase struct {
	lx       lexer
	ioctx    *IOContext
	features ReadFeature
	cons     ReadConstraints

	ctx     *ReadContext
	tok     Token
	nextTok Token    // the value following a property name, or None
	nextPos position // the location of nextTok
	tokPos  position

	text       *textbuf.Buffer // string and number text
	names      *textbuf.Buffer // names that need decoding
	incomplete bool            // the current string is not yet decoded
	quote      rune            // the quote of the current string

	numNeg    bool
	numTypes  numMask
	numInt    int32
	numLong   int64
	numBig    *big.Int
	numFloat  float32
	numDouble float64
	numDec    decimal.Decimal

	binary []byte
	closed bool
}

func (p *parserBase) init(lx lexer, ioctx *IOContext, features ReadFeature) {
	p.lx = lx
	p.ioctx = ioctx
	p.features = features
	p.cons = ioctx.ReadConstraints()
	var dups *DupDetector
	if features.Has(StrictDuplicateDetection) {
		dups = NewDupDetector(lx)
	}
	p.ctx = NewRootReadContext(p.cons.MaxNestingDepth, dups)
	p.text = ioctx.NewTextBuffer()
	p.names = textbuf.New(ioctx, p.cons.MaxNameLength)
}

// Locations and errors.

func (p *parserBase) content() ContentReference {
	if !p.features.Has(IncludeSourceInLocation) {
		return redactedContent()
	}
	return p.ioctx.Content()
}

func (p *parserBase) locationOf(pos position) Location {
	return Location{
		Content:    p.content(),
		ByteOffset: pos.bytes,
		CharOffset: pos.chars,
		LineCol:    LineCol{Line: pos.line, Column: pos.col},
	}
}

// TokenLocation implements part of the Parser interface.
func (p *parserBase) TokenLocation() Location { return p.locationOf(p.tokPos) }

// CurrentLocation implements part of the Parser interface.
func (p *parserBase) CurrentLocation() Location { return p.locationOf(p.lx.pos()) }

func (p *parserBase) syntaxErrorf(msg string, args ...any) error {
	return newError(ErrSyntax, p.CurrentLocation(), msg, args...)
}

func (p *parserBase) structErrorf(msg string, args ...any) error {
	return newError(ErrStructure, p.CurrentLocation(), msg, args...)
}

// eofErrorf reports an unexpected end of input, or the error that ended it.
func (p *parserBase) eofErrorf(msg string, args ...any) error {
	if err := p.lx.failure(); err != nil {
		return err
	}
	return p.syntaxErrorf("Unexpected end-of-input"+msg, args...)
}

// locate sets the location of err, if it is an *Error, to pos.
func (p *parserBase) locate(err error, pos position) error {
	var e *Error
	if errors.As(err, &e) {
		e.Location = p.locationOf(pos)
	}
	return err
}

// nameError wraps an error reported by a symbol table.
func (p *parserBase) nameError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrConstraint, Message: err.Error(), Location: p.CurrentLocation(), err: err}
}

func (p *parserBase) checkDocumentLength(n int64) error {
	return p.cons.checkDocumentLength(p.CurrentLocation(), n)
}

// Whitespace and comments.

// skipSpace returns the next character that is not whitespace or part of a
// comment, or -1 at the end of input.
func (p *parserBase) skipSpace() (rune, error) {
	for {
		c := p.lx.next()
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '/':
			if err := p.skipComment(); err != nil {
				return -1, err
			}
			continue
		case '#':
			if p.features.Has(AllowYAMLComments) {
				if err := p.skipLine(); err != nil {
					return -1, err
				}
				continue
			}
		case -1:
			return -1, p.lx.failure()
		}
		if c < ' ' {
			return -1, p.syntaxErrorf("Illegal character (%s): only regular white space (\\r, \\n, \\t) is allowed between tokens",
				escape.CharDesc(c))
		}
		return c, nil
	}
}

func (p *parserBase) skipComment() error {
	if !p.features.Has(AllowJavaComments) {
		return p.syntaxErrorf("Unexpected character ('/' (code 47)): maybe a (non-standard) comment? " +
			"(not recognized as one since feature AllowJavaComments is not enabled for parser)")
	}
	switch c := p.lx.next(); c {
	case '/':
		return p.skipLine()
	case '*':
		for {
			switch p.lx.next() {
			case -1:
				return p.eofErrorf(" in a comment")
			case '*':
				if c := p.lx.next(); c == '/' {
					return nil
				}
				p.lx.unread()
			}
		}
	case -1:
		return p.eofErrorf(" in a comment")
	default:
		return p.syntaxErrorf("Unexpected character (%s): was expecting either '*' or '/' for a comment", escape.CharDesc(c))
	}
}

// skipLine skips to the end of the current line.
func (p *parserBase) skipLine() error {
	for {
		switch p.lx.next() {
		case '\n', '\r':
			return nil
		case -1:
			return p.lx.failure()
		}
	}
}

// The state machine.

// NextToken implements part of the Parser interface.
func (p *parserBase) NextToken() (Token, error) {
	if p.closed {
		return None, nil
	}
	p.numTypes = 0
	p.binary = nil
	if p.tok.IsName() {
		return p.nextAfterName()
	}
	if p.incomplete {
		if err := p.skipString(); err != nil {
			return None, err
		}
	}
	c, err := p.skipSpace()
	if err != nil {
		return None, err
	} else if c < 0 {
		return p.handleEOF()
	}
	p.tokPos = p.lx.lastPos()

	if c == ']' || c == '}' {
		return p.closeScope(c)
	}
	if p.ctx.ExpectComma() {
		if c != ',' {
			return None, p.syntaxErrorf("Unexpected character (%s): was expecting comma to separate %s entries",
				escape.CharDesc(c), p.ctx.TypeDesc())
		}
		c, err = p.skipSpace()
		if err != nil {
			return None, err
		} else if c < 0 {
			return p.handleEOF()
		}
		p.tokPos = p.lx.lastPos()
		if (c == ']' || c == '}') && p.features.Has(AllowTrailingComma) {
			return p.closeScope(c)
		}
	}

	if p.ctx.InObject() {
		return p.nextName(c)
	}
	if p.ctx.InArray() && p.ctx.Index() == 0 && !p.isQuote(c) {
		return None, p.structErrorf("Expected a String id as the first element of an Array, got %s", escape.CharDesc(c))
	}
	t, err := p.nextValue(c)
	if err != nil {
		return None, err
	}
	if t.IsStructStart() {
		if err := p.enter(t); err != nil {
			return None, err
		}
	}
	p.tok = t
	return t, nil
}

func (p *parserBase) isQuote(c rune) bool {
	return c == '"' || (c == '\'' && p.features.Has(AllowSingleQuotes))
}

// nextAfterName returns the value token read along with a property name.
func (p *parserBase) nextAfterName() (Token, error) {
	t := p.nextTok
	p.nextTok = None
	p.tokPos = p.nextPos
	if t.IsStructStart() {
		if err := p.enter(t); err != nil {
			return None, err
		}
	}
	p.tok = t
	return t, nil
}

// enter pushes a context for the array or object started by t.
func (p *parserBase) enter(t Token) error {
	var ctx *ReadContext
	var err error
	if t == StartArray {
		ctx, err = p.ctx.CreateChildArrayContext(p.tokPos.line, p.tokPos.col)
	} else {
		ctx, err = p.ctx.CreateChildObjectContext(p.tokPos.line, p.tokPos.col)
	}
	if err != nil {
		return p.locate(err, p.tokPos)
	}
	p.ctx = ctx
	return nil
}

func (p *parserBase) closeScope(c rune) (Token, error) {
	want, t, open := ArrayContext, EndArray, '['
	if c == '}' {
		want, t, open = ObjectContext, EndObject, '{'
	}
	if p.ctx.Type() != want {
		if p.ctx.InRoot() {
			return None, p.structErrorf("Unexpected close marker '%c': no open %s to close (expected '%c' first)", c, want, open)
		}
		close := ']'
		if p.ctx.InObject() {
			close = '}'
		}
		return None, p.structErrorf("Unexpected close marker '%c': expected '%c' (for %s starting at %s)",
			c, close, p.ctx.TypeDesc(), p.ctx.StartLocation(p.content()))
	}
	if !p.ctx.HasIndex() {
		if t == EndObject {
			return None, p.structErrorf("Unexpected close marker '}': expected `%s` as the first property of an Object", IDName)
		}
		return None, p.structErrorf("Unexpected close marker ']': expected a String id as the first element of an Array")
	}
	p.ctx = p.ctx.ClearAndGetParent()
	p.tok = t
	return t, nil
}

func (p *parserBase) handleEOF() (Token, error) {
	if !p.ctx.InRoot() {
		return None, p.eofErrorf(": expected close marker for %s (start marker at %s)",
			p.ctx.TypeDesc(), p.ctx.StartLocation(p.content()))
	}
	p.tok = None
	return None, p.Close()
}

// nextName reads a property name starting with c, and the value after it.
func (p *parserBase) nextName(c rune) (Token, error) {
	name, err := p.readName(c)
	if err != nil {
		return None, err
	}
	t := PropertyName
	if p.ctx.Index() == 0 {
		if name != IDName {
			return None, p.locate(p.structErrorf("Expected `%s` as the first property of an Object, got %q", IDName, name), p.tokPos)
		}
		t = IDPropertyName
	}
	if err := p.ctx.SetCurrentName(name); err != nil {
		return None, p.locate(err, p.tokPos)
	}
	p.tok = t

	c, err = p.skipSpace()
	if err != nil {
		return None, err
	} else if c != ':' {
		if c < 0 {
			return None, p.eofErrorf(" within/between %s entries", p.ctx.TypeDesc())
		}
		return None, p.syntaxErrorf("Unexpected character (%s): was expecting a colon to separate property name and value",
			escape.CharDesc(c))
	}
	c, err = p.skipSpace()
	if err != nil {
		return None, err
	} else if c < 0 {
		return None, p.eofErrorf(" within/between %s entries", p.ctx.TypeDesc())
	}
	p.nextPos = p.lx.lastPos()
	if t == IDPropertyName && !p.isQuote(c) {
		return None, p.structErrorf("Expected a String value for the `%s` property, got %s", IDName, escape.CharDesc(c))
	}
	nt, err := p.nextValue(c)
	if err != nil {
		return None, err
	}
	p.nextTok = nt
	return t, nil
}

// nextValue reads a value starting with c. Arrays and objects are reported
// but not entered.
func (p *parserBase) nextValue(c rune) (Token, error) {
	switch c {
	case '"':
		return p.startString('"'), nil
	case '\'':
		if p.features.Has(AllowSingleQuotes) {
			return p.startString('\''), nil
		}
	case '[':
		return StartArray, nil
	case '{':
		return StartObject, nil
	case 't':
		return True, p.matchRest("true", 1)
	case 'f':
		return False, p.matchRest("false", 1)
	case 'n':
		return Null, p.matchRest("null", 1)
	case '-', '+', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.lexNumber(c)
	case '.':
		if p.features.Has(AllowLeadingDecimalPoint) {
			return p.lexNumber(c)
		}
	case 'N', 'I':
		return p.lexNonNumeric(0, c)
	case ',', ']':
		if p.ctx.InArray() && p.features.Has(AllowMissingValues) {
			p.lx.unread()
			return Null, nil
		}
	}
	return None, p.syntaxErrorf("Unexpected character (%s): expected a valid value %s", escape.CharDesc(c), validValues)
}

// matchRest matches the remainder of word, whose first n characters have
// been consumed. The word must not be followed by a name character.
func (p *parserBase) matchRest(word string, n int) error {
	for i := n; i < len(word); i++ {
		if c := p.lx.next(); c != rune(word[i]) {
			p.lx.unread()
			return p.invalidToken(word[:i])
		}
	}
	c := p.lx.next()
	if c >= 0 && escape.IsNamePart(c) {
		p.lx.unread()
		return p.invalidToken(word)
	}
	p.lx.unread()
	return p.lx.failure()
}

// invalidToken reports an unrecognized token beginning with prefix, quoting
// the rest of the name characters that follow it.
func (p *parserBase) invalidToken(prefix string) error {
	if err := p.lx.failure(); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString(prefix)
	limit := p.ioctx.ErrorReport().MaxErrorTokenLength
	for {
		c := p.lx.next()
		if c < 0 || !escape.IsNamePart(c) {
			break
		}
		if limit > 0 && sb.Len() >= limit {
			sb.WriteString("...")
			break
		}
		sb.WriteRune(c)
	}
	return p.syntaxErrorf("Unrecognized token '%s': was expecting %s", sb.String(), validValues)
}

// Numbers.

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func (p *parserBase) numberErrorf(c rune, msg string) error {
	if c < 0 {
		return p.eofErrorf(" in a Number value")
	}
	return p.syntaxErrorf("Unexpected character (%s) in numeric value: %s", escape.CharDesc(c), msg)
}

// lexNumber reads a number starting with c into the text buffer. The text is
// normalized: a leading '+' and redundant leading zeros are dropped, and a
// leading or trailing decimal point is completed with a zero digit.
func (p *parserBase) lexNumber(c rune) (Token, error) {
	tb := p.text
	tb.Reset()
	p.incomplete = false
	p.numNeg = c == '-'

	if c == '-' || c == '+' {
		sign := c
		if c = p.lx.next(); c == 'I' || c == 'N' {
			return p.lexNonNumeric(sign, c)
		}
		if sign == '+' && !p.features.Has(AllowLeadingPlusSign) {
			return None, p.syntaxErrorf("Unexpected character ('+' (code 43)) in numeric value: " +
				"leading plus signs are not allowed (enable feature AllowLeadingPlusSign to allow)")
		}
		if !isDigit(c) && !(c == '.' && p.features.Has(AllowLeadingDecimalPoint)) {
			return None, p.numberErrorf(c, "expected digit (0-9) to follow minus sign, for valid numeric value")
		}
		if sign == '-' {
			tb.AppendByte('-')
		}
	}

	// Integer part.
	intLen := 0
	if c == '0' {
		c = p.lx.next()
		if isDigit(c) && !p.features.Has(AllowLeadingZeros) {
			return None, p.syntaxErrorf("Invalid numeric value: Leading zeroes not allowed")
		}
		for c == '0' {
			c = p.lx.next()
		}
		if !isDigit(c) {
			tb.AppendByte('0')
			intLen = 1
		}
	}
	for isDigit(c) {
		tb.AppendByte(byte(c))
		intLen++
		c = p.lx.next()
	}

	isFloat := false
	if c == '.' {
		isFloat = true
		if intLen == 0 {
			tb.AppendByte('0')
		}
		tb.AppendByte('.')
		fracLen := 0
		for c = p.lx.next(); isDigit(c); c = p.lx.next() {
			tb.AppendByte(byte(c))
			fracLen++
		}
		if fracLen == 0 {
			if !p.features.Has(AllowTrailingDecimalPoint) {
				return None, p.numberErrorf(c, "Decimal point not followed by a digit")
			}
			tb.AppendByte('0')
		}
	}
	if c == 'e' || c == 'E' {
		isFloat = true
		tb.AppendByte(byte(c))
		c = p.lx.next()
		if c == '-' || c == '+' {
			tb.AppendByte(byte(c))
			c = p.lx.next()
		}
		expLen := 0
		for isDigit(c) {
			tb.AppendByte(byte(c))
			expLen++
			c = p.lx.next()
		}
		if expLen == 0 {
			return None, p.numberErrorf(c, "Exponent indicator not followed by a digit")
		}
	}
	if err := p.lx.failure(); err != nil {
		return None, err
	}
	if err := p.cons.checkNumberLength(p.CurrentLocation(), tb.Size()); err != nil {
		return None, err
	}

	// At the root, a number must be followed by whitespace or the end of input.
	if p.ctx.InRoot() {
		if c >= 0 && !escape.IsSpace(c) {
			return None, p.syntaxErrorf("Unexpected character (%s): Expected space separating root-level values", escape.CharDesc(c))
		}
	} else {
		p.lx.unread()
	}
	if isFloat {
		return Float, nil
	}
	return Int, nil
}

// lexNonNumeric reads NaN or an infinity whose first letter c has been read,
// after the given sign ('-', '+', or 0 for none).
func (p *parserBase) lexNonNumeric(sign, c rune) (Token, error) {
	word := "NaN"
	if c == 'I' {
		word = "Infinity"
		if sign != 0 {
			c2 := p.lx.next()
			p.lx.unread()
			if c2 == 'N' {
				word = "INF"
			}
		}
	}
	prefix := ""
	if sign != 0 {
		prefix = string(sign)
	}
	if err := p.matchRest(word, 1); err != nil {
		return None, err
	}
	if sign != 0 && word == "NaN" {
		return None, p.syntaxErrorf("Unrecognized token '%sNaN': was expecting %s", prefix, validValues)
	}
	text := prefix + word
	if !p.features.Has(AllowNonNumericNumbers) {
		return None, p.syntaxErrorf("Non-standard token '%s': enable feature AllowNonNumericNumbers to allow", text)
	}
	p.text.ResetWithString(text)
	p.incomplete = false
	p.numNeg = sign == '-'
	return Float, nil
}

func (p *parserBase) checkNumeric() error {
	if !p.tok.IsNumeric() {
		return p.structErrorf("Current token (%s) not numeric, can not use numeric value accessors", p.tok)
	}
	return nil
}

// parseIntegral decodes the text of an Int token.
func (p *parserBase) parseIntegral() {
	if p.numTypes&(numInt|numLong|numBig) != 0 {
		return
	}
	b := p.text.Bytes()
	digits := b
	if p.numNeg {
		digits = b[1:]
	}
	switch n := len(digits); {
	case n <= 9:
		p.numInt = numio.ParseInt(b)
		p.numLong = int64(p.numInt)
		p.numTypes |= numInt | numLong
	case n <= 18 || (n == 19 && numio.InLongRange(digits, p.numNeg)):
		if n == 19 {
			p.numLong = numio.ParseLong19(b)
		} else {
			p.numLong = numio.ParseLong(b)
		}
		p.numTypes |= numLong
		if numio.InIntRange(p.numLong) {
			p.numInt = int32(p.numLong)
			p.numTypes |= numInt
		}
	default:
		// The lexer admits only digits, so this cannot fail.
		p.numBig, _ = numio.ParseBigInt(string(b))
		p.numTypes |= numBig
	}
}

func (p *parserBase) rangeError(typ string, lo, hi int64) error {
	return newError(ErrCoercion, p.TokenLocation(), "Numeric value (%s) out of range of %s (%d - %d)",
		p.text.String(), typ, lo, hi)
}

func (p *parserBase) convertError(err error, typ string) error {
	return &Error{
		Kind:     ErrCoercion,
		Message:  "Cannot convert " + p.text.String() + " to " + typ,
		Location: p.TokenLocation(),
		err:      err,
	}
}

// NumberType implements part of the Parser interface.
func (p *parserBase) NumberType() (NumberType, error) {
	if err := p.checkNumeric(); err != nil {
		return 0, err
	}
	if p.tok == Float {
		if p.numTypes&numDecimal != 0 {
			return NumberBigDecimal, nil
		}
		return NumberDouble, nil
	}
	p.parseIntegral()
	switch {
	case p.numTypes&numInt != 0:
		return NumberInt, nil
	case p.numTypes&numLong != 0:
		return NumberLong, nil
	}
	return NumberBigInteger, nil
}

// IntValue implements part of the Parser interface.
func (p *parserBase) IntValue() (int32, error) {
	if err := p.checkNumeric(); err != nil {
		return 0, err
	}
	if p.tok == Int {
		p.parseIntegral()
		if p.numTypes&numInt == 0 {
			return 0, p.rangeError("int", math.MinInt32, math.MaxInt32)
		}
		return p.numInt, nil
	}
	d, err := p.DoubleValue()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(d) || d < math.MinInt32 || d > math.MaxInt32 {
		return 0, p.rangeError("int", math.MinInt32, math.MaxInt32)
	}
	return int32(d), nil
}

// LongValue implements part of the Parser interface.
func (p *parserBase) LongValue() (int64, error) {
	if err := p.checkNumeric(); err != nil {
		return 0, err
	}
	if p.tok == Int {
		p.parseIntegral()
		if p.numTypes&numLong == 0 {
			return 0, p.rangeError("long", math.MinInt64, math.MaxInt64)
		}
		return p.numLong, nil
	}
	d, err := p.DoubleValue()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(d) || d < math.MinInt64 || d >= math.MaxInt64 {
		return 0, p.rangeError("long", math.MinInt64, math.MaxInt64)
	}
	return int64(d), nil
}

// BigIntValue implements part of the Parser interface.
func (p *parserBase) BigIntValue() (*big.Int, error) {
	if err := p.checkNumeric(); err != nil {
		return nil, err
	}
	if p.tok == Int {
		p.parseIntegral()
		if p.numTypes&numBig != 0 {
			return new(big.Int).Set(p.numBig), nil
		}
		return big.NewInt(p.numLong), nil
	}
	d, err := p.DecimalValue()
	if err != nil {
		return nil, err
	}
	if err := p.cons.checkBigIntScale(p.TokenLocation(), int(-d.Exponent())); err != nil {
		return nil, err
	}
	return d.BigInt(), nil
}

// DoubleValue implements part of the Parser interface.
func (p *parserBase) DoubleValue() (float64, error) {
	if err := p.checkNumeric(); err != nil {
		return 0, err
	}
	if p.numTypes&numDouble != 0 {
		return p.numDouble, nil
	}
	if p.tok == Int {
		p.parseIntegral()
		if p.numTypes&numLong != 0 {
			p.numDouble = float64(p.numLong)
			p.numTypes |= numDouble
			return p.numDouble, nil
		}
	}
	v, err := numio.ParseFloat64(p.text.String(), p.features.Has(UseFastDoubleParser))
	if err != nil {
		return 0, p.convertError(err, "double")
	}
	p.numDouble = v
	p.numTypes |= numDouble
	return v, nil
}

// FloatValue implements part of the Parser interface.
func (p *parserBase) FloatValue() (float32, error) {
	if err := p.checkNumeric(); err != nil {
		return 0, err
	}
	if p.numTypes&numFloat != 0 {
		return p.numFloat, nil
	}
	v, err := numio.ParseFloat32(p.text.String(), p.features.Has(UseFastDoubleParser))
	if err != nil {
		return 0, p.convertError(err, "float")
	}
	p.numFloat = v
	p.numTypes |= numFloat
	return v, nil
}

// DecimalValue implements part of the Parser interface.
func (p *parserBase) DecimalValue() (decimal.Decimal, error) {
	if err := p.checkNumeric(); err != nil {
		return decimal.Decimal{}, err
	}
	if p.numTypes&numDecimal != 0 {
		return p.numDec, nil
	}
	v, err := numio.ParseDecimal(p.text.String(), p.features.Has(UseFastBigNumberParser))
	if err != nil {
		return decimal.Decimal{}, p.convertError(err, "big decimal")
	}
	p.numDec = v
	p.numTypes |= numDecimal
	return v, nil
}

// IsNaN implements part of the Parser interface.
func (p *parserBase) IsNaN() (bool, error) {
	if p.tok != Float {
		return false, nil
	}
	return numio.IsNonNumeric(p.text.String()), nil
}

// Strings and names.

func (p *parserBase) startString(q rune) Token {
	p.incomplete = true
	p.quote = q
	return String
}

// A runeAppender receives decoded string content.
type runeAppender interface{ AppendRune(rune) }

type discard struct{}

func (discard) AppendRune(rune) {}

func (p *parserBase) controlChar(c rune) error {
	if p.features.Has(AllowUnescapedControlChars) {
		return nil
	}
	return p.syntaxErrorf("Illegal unquoted character (%s): has to be escaped using backslash to be included in string value",
		escape.CharDesc(c))
}

// finishString decodes the rest of the current string into the text buffer.
func (p *parserBase) finishString() error {
	p.incomplete = false
	tb := p.text
	tb.Reset()
	q := p.quote
	for {
		p.lx.copyPlain(tb, q)
		switch c := p.lx.next(); {
		case c == q:
			return p.cons.checkStringLength(p.CurrentLocation(), tb.Size())
		case c == '\\':
			if err := p.readEscape(tb, q); err != nil {
				return err
			}
		case c < 0:
			return p.eofErrorf(": was expecting closing quote for a string value")
		case c < ' ':
			if err := p.controlChar(c); err != nil {
				return err
			}
			tb.AppendRune(c)
		default:
			tb.AppendRune(c)
		}
		if tb.Exceeded() {
			return p.cons.checkStringLength(p.CurrentLocation(), tb.Size())
		}
	}
}

// skipString consumes the rest of the current string without decoding it.
func (p *parserBase) skipString() error {
	p.incomplete = false
	q := p.quote
	for {
		p.lx.copyPlain(nil, q)
		switch c := p.lx.next(); {
		case c == q:
			return nil
		case c == '\\':
			if err := p.readEscape(discard{}, q); err != nil {
				return err
			}
		case c < 0:
			return p.eofErrorf(": was expecting closing quote for a string value")
		case c < ' ':
			if err := p.controlChar(c); err != nil {
				return err
			}
		}
	}
}

// readEscape decodes an escape sequence whose backslash has been consumed,
// and appends the result to dst. A \u escape of a high surrogate is joined
// with an immediately following escaped low surrogate; unpaired surrogates
// decode to U+FFFD.
func (p *parserBase) readEscape(dst runeAppender, q rune) error {
	r, isU, err := p.escapeUnit(q)
	for {
		if err != nil {
			return err
		}
		if !isU || !utf16.IsSurrogate(r) {
			dst.AppendRune(r)
			return nil
		}
		if r >= 0xDC00 {
			dst.AppendRune(utf8.RuneError)
			return nil
		}
		if c := p.lx.next(); c != '\\' {
			p.lx.unread()
			dst.AppendRune(utf8.RuneError)
			return nil
		}
		lo, loU, loErr := p.escapeUnit(q)
		if loErr == nil && loU && lo >= 0xDC00 && lo <= 0xDFFF {
			dst.AppendRune(utf16.DecodeRune(r, lo))
			return nil
		}
		dst.AppendRune(utf8.RuneError)
		r, isU, err = lo, loU, loErr
	}
}

// escapeUnit decodes one escape sequence, reporting whether it was a \u
// escape (whose value may be a surrogate).
func (p *parserBase) escapeUnit(q rune) (rune, bool, error) {
	c := p.lx.next()
	switch {
	case c < 0:
		return 0, false, p.eofErrorf(" in character escape sequence")
	case c == 'u':
		var v rune
		for range 4 {
			c := p.lx.next()
			d := escape.HexValue(c)
			if d < 0 {
				if c < 0 {
					return 0, false, p.eofErrorf(" in character escape sequence")
				}
				return 0, false, p.syntaxErrorf("Unexpected character (%s): expected a hex-digit for character escape sequence",
					escape.CharDesc(c))
			}
			v = v<<4 | rune(d)
		}
		return v, true, nil
	case c < utf8.RuneSelf:
		if d := escape.Unescape(byte(c)); d >= 0 {
			return rune(d), false, nil
		}
	}
	if p.features.Has(AllowBackslashEscapingAnyChar) || (c == '\'' && p.features.Has(AllowSingleQuotes)) {
		return c, false, nil
	}
	return 0, false, p.syntaxErrorf("Unrecognized character escape %s", escape.CharDesc(c))
}

// readName reads a property name starting with c.
func (p *parserBase) readName(c rune) (string, error) {
	var name string
	var err error
	switch {
	case c == '"', c == '\'' && p.features.Has(AllowSingleQuotes):
		var ok bool
		name, ok, err = p.lx.quickName(c)
		if err != nil {
			return "", p.nameError(err)
		} else if !ok {
			name, err = p.slowName(c)
		}
	case p.features.Has(AllowUnquotedNames) && escape.IsNameStart(c):
		name, err = p.unquotedName(c)
	case p.features.Has(AllowUnquotedNames):
		return "", p.syntaxErrorf("Unexpected character (%s): was expecting either valid name character (for unquoted name) or double-quote (for quoted) to start property name",
			escape.CharDesc(c))
	default:
		return "", p.syntaxErrorf("Unexpected character (%s): was expecting double-quote to start property name", escape.CharDesc(c))
	}
	if err != nil {
		return "", err
	}
	if err := p.cons.checkNameLength(p.CurrentLocation(), len(name)); err != nil {
		return "", err
	}
	return name, nil
}

// slowName decodes a quoted name that needs unescaping or spans a refill.
func (p *parserBase) slowName(q rune) (string, error) {
	nb := p.names
	nb.Reset()
	for {
		switch c := p.lx.next(); {
		case c == q:
			name, err := p.lx.intern(nb.Bytes())
			return name, p.nameError(err)
		case c == '\\':
			if err := p.readEscape(nb, q); err != nil {
				return "", err
			}
		case c < 0:
			return "", p.eofErrorf(" in property name")
		case c < ' ':
			if err := p.controlChar(c); err != nil {
				return "", err
			}
			nb.AppendRune(c)
		default:
			nb.AppendRune(c)
		}
		if nb.Exceeded() {
			return "", p.cons.checkNameLength(p.CurrentLocation(), nb.Size())
		}
	}
}

func (p *parserBase) unquotedName(c rune) (string, error) {
	nb := p.names
	nb.Reset()
	for escape.IsNamePart(c) {
		nb.AppendRune(c)
		if nb.Exceeded() {
			return "", p.cons.checkNameLength(p.CurrentLocation(), nb.Size())
		}
		c = p.lx.next()
	}
	p.lx.unread()
	if err := p.lx.failure(); err != nil {
		return "", err
	}
	name, err := p.lx.intern(nb.Bytes())
	return name, p.nameError(err)
}

// Accessors.

// CurrentToken implements part of the Parser interface.
func (p *parserBase) CurrentToken() Token { return p.tok }

// CurrentName implements part of the Parser interface.
func (p *parserBase) CurrentName() string {
	if p.tok.IsStructStart() {
		if parent := p.ctx.Parent(); parent != nil {
			return parent.CurrentName()
		}
	}
	return p.ctx.CurrentName()
}

// Text implements part of the Parser interface.
func (p *parserBase) Text() (string, error) {
	switch p.tok {
	case String:
		if p.incomplete {
			if err := p.finishString(); err != nil {
				return "", err
			}
		}
		return p.text.String(), nil
	case PropertyName, IDPropertyName:
		return p.ctx.CurrentName(), nil
	case Int, Float:
		return p.text.String(), nil
	}
	return p.tok.canonicalText(), nil
}

// TextLength implements part of the Parser interface.
func (p *parserBase) TextLength() (int, error) {
	s, err := p.Text()
	return len(s), err
}

// FinishToken implements part of the Parser interface.
func (p *parserBase) FinishToken() error {
	if p.incomplete {
		return p.finishString()
	}
	return nil
}

// BoolValue implements part of the Parser interface.
func (p *parserBase) BoolValue() (bool, error) {
	if !p.tok.IsBool() {
		return false, p.structErrorf("Current token (%s) not of boolean type", p.tok)
	}
	return p.tok == True, nil
}

// base64Chunk is the amount of decoded binary data buffered by
// ReadBinaryValue before it is written out.
const base64Chunk = 2000

// BinaryValue implements part of the Parser interface.
func (p *parserBase) BinaryValue(v *Base64Variant) ([]byte, error) {
	if p.tok != String {
		return nil, p.structErrorf("Current token (%s) not String, can not access as binary", p.tok)
	}
	if p.binary != nil {
		return p.binary, nil
	}
	d := newBase64Decoder(v, p.ioctx.AllocBytes(Base64CodecBuffer, 0))
	defer func() { p.ioctx.ReleaseBytes(Base64CodecBuffer, d.out.Release()) }()
	if err := p.decodeBase64(d, nil); err != nil {
		return nil, err
	}
	p.binary = d.out.Bytes()
	return p.binary, nil
}

// ReadBinaryValue implements part of the Parser interface.
func (p *parserBase) ReadBinaryValue(v *Base64Variant, w io.Writer) (int, error) {
	if p.tok != String {
		return 0, p.structErrorf("Current token (%s) not String, can not access as binary", p.tok)
	}
	if p.binary != nil || !p.incomplete {
		data, err := p.BinaryValue(v)
		if err != nil {
			return 0, err
		}
		n, err := w.Write(data)
		return n, ioError(err)
	}
	d := newBase64Decoder(v, p.ioctx.AllocBytes(Base64CodecBuffer, 0))
	defer func() { p.ioctx.ReleaseBytes(Base64CodecBuffer, d.out.Release()) }()
	var nw int
	flush := func() error {
		n, err := w.Write(d.out.Bytes())
		nw += n
		d.out.Reset()
		return ioError(err)
	}
	err := p.decodeBase64(d, flush)
	if err == nil {
		err = flush()
	}
	return nw, err
}

// decodeBase64 feeds the content of the current string to d. If the string
// is not yet decoded, it is decoded directly from the input and not kept.
// If flush != nil, it is called whenever a chunk of output is ready.
func (p *parserBase) decodeBase64(d *base64Decoder, flush func() error) error {
	if !p.incomplete {
		for _, c := range p.text.String() {
			if d.AppendRune(c); d.err != nil {
				return p.locate(d.err, p.tokPos)
			}
		}
	} else {
		p.incomplete = false
		p.text.Reset()
		q := p.quote
	loop:
		for {
			switch c := p.lx.next(); {
			case c == q:
				break loop
			case c == '\\':
				if err := p.readEscape(d, q); err != nil {
					return err
				}
			case c < 0:
				return p.eofErrorf(": was expecting closing quote for a string value")
			default:
				d.AppendRune(c)
			}
			if d.err != nil {
				err := p.locate(d.err, p.lx.lastPos())
				p.incomplete = true
				p.skipString() // resynchronize at the end of the string
				return err
			}
			if flush != nil && d.out.Len() >= base64Chunk {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := d.finish(); err != nil {
		return p.locate(err, p.lx.pos())
	}
	return nil
}

// NextValue implements part of the Parser interface.
func (p *parserBase) NextValue() (Token, error) {
	t, err := p.NextToken()
	if err == nil && t.IsName() {
		return p.NextToken()
	}
	return t, err
}

// NextName implements part of the Parser interface.
func (p *parserBase) NextName() (string, bool, error) {
	t, err := p.NextToken()
	if err != nil || !t.IsName() {
		return "", false, err
	}
	return p.ctx.CurrentName(), true, nil
}

// NextNameMatches implements part of the Parser interface.
func (p *parserBase) NextNameMatches(s *SerializedString) (bool, error) {
	name, ok, err := p.NextName()
	return ok && name == s.Value(), err
}

// SkipChildren implements part of the Parser interface.
func (p *parserBase) SkipChildren() error { return skipChildren(p) }

// skipChildren advances p past the end of the array or object it is at the
// start of.
func skipChildren(p Parser) error {
	if !p.CurrentToken().IsStructStart() {
		return nil
	}
	for open := 1; ; {
		t, err := p.NextToken()
		if err != nil {
			return err
		}
		switch {
		case t == None:
			return nil
		case t.IsStructStart():
			open++
		case t.IsStructEnd():
			if open--; open == 0 {
				return nil
			}
		}
	}
}

// Context implements part of the Parser interface.
func (p *parserBase) Context() *ReadContext { return p.ctx }

// CurrentValue implements part of the Parser interface.
func (p *parserBase) CurrentValue() any { return p.ctx.CurrentValue() }

// SetCurrentValue implements part of the Parser interface.
func (p *parserBase) SetCurrentValue(v any) { p.ctx.SetCurrentValue(v) }

// IsEnabled implements part of the Parser interface.
func (p *parserBase) IsEnabled(f ReadFeature) bool { return p.features.Has(f) }

// Configure implements part of the Parser interface. Enabling or disabling
// StrictDuplicateDetection takes effect only at the root of the input.
func (p *parserBase) Configure(f ReadFeature, on bool) {
	if on {
		p.features |= f
	} else {
		p.features &^= f
	}
	if f.Has(StrictDuplicateDetection) && p.ctx.InRoot() {
		if on && p.ctx.dups == nil {
			p.ctx.dups = NewDupDetector(p.lx)
		} else if !on {
			p.ctx.dups = nil
		}
		p.ctx.child = nil
	}
}

// ReleaseBuffered implements part of the Parser interface.
func (p *parserBase) ReleaseBuffered(w io.Writer) (int, error) { return p.lx.releaseBytes(w) }

// ReleaseBufferedRunes implements part of the Parser interface.
func (p *parserBase) ReleaseBufferedRunes(w io.StringWriter) (int, error) { return p.lx.releaseRunes(w) }

// IsClosed implements part of the Parser interface.
func (p *parserBase) IsClosed() bool { return p.closed }

// Close implements part of the Parser interface.
func (p *parserBase) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var err error
	if p.ioctx.IsResourceManaged() || p.features.Has(AutoCloseSource) {
		err = p.lx.closeInput()
	}
	p.lx.release()
	p.text.Release()
	p.names.Release()
	p.ioctx.Release()
	if p.features.Has(ClearCurrentTokenOnClose) {
		p.tok = None
	}
	glog.V(3).Infof("cirjson: closed parser for %s", p.ioctx.Content().Description())
	return ioError(err)
}
