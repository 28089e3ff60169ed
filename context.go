// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"strconv"
	"strings"

	"github.com/creachadair/cirjson/internal/escape"
	"github.com/creachadair/cirjson/pointer"
	"go4.org/mem"
)

// ContextType identifies the kind of a nesting level.
type ContextType byte

// Constants defining the valid ContextType values.
const (
	RootContext ContextType = iota
	ArrayContext
	ObjectContext
)

func (t ContextType) String() string {
	switch t {
	case ArrayContext:
		return "Array"
	case ObjectContext:
		return "Object"
	}
	return "root"
}

// contextBase holds the state shared by read and write contexts.
type contextBase struct {
	typ   ContextType
	index int // index of the current entry, -1 before the first
	depth int
	value any
}

func (c *contextBase) init(typ ContextType, depth int) {
	c.typ, c.depth, c.index, c.value = typ, depth, -1, nil
}

// InArray reports whether the context is an array.
func (c *contextBase) InArray() bool { return c.typ == ArrayContext }

// InObject reports whether the context is an object.
func (c *contextBase) InObject() bool { return c.typ == ObjectContext }

// InRoot reports whether the context is the root.
func (c *contextBase) InRoot() bool { return c.typ == RootContext }

// Type reports the type of the context.
func (c *contextBase) Type() ContextType { return c.typ }

// TypeDesc returns a description of the context type, for messages.
func (c *contextBase) TypeDesc() string { return c.typ.String() }

// Index returns the 0-based index of the current entry, or 0 before the
// first entry. The reference id of an array is its entry 0.
func (c *contextBase) Index() int { return max(c.index, 0) }

// HasIndex reports whether any entry of the context has been seen.
func (c *contextBase) HasIndex() bool { return c.index >= 0 }

// EntryCount returns the number of entries seen so far.
func (c *contextBase) EntryCount() int { return c.index + 1 }

// Depth returns the nesting depth of the context; the root is depth 0.
func (c *contextBase) Depth() int { return c.depth }

// CurrentValue returns the value bound to the context by its user.
func (c *contextBase) CurrentValue() any { return c.value }

// SetCurrentValue binds v to the context.
func (c *contextBase) SetCurrentValue(v any) { c.value = v }

func appendFrame(sb *strings.Builder, typ ContextType, index int, name string, hasName bool) {
	switch typ {
	case ArrayContext:
		sb.WriteByte('[')
		sb.WriteString(strconv.Itoa(max(index, 0)))
		sb.WriteByte(']')
	case ObjectContext:
		sb.WriteByte('{')
		if hasName {
			sb.WriteByte('"')
			sb.Write(escape.Quote(mem.S(name)))
			sb.WriteByte('"')
		} else {
			sb.WriteByte('?')
		}
		sb.WriteByte('}')
	default:
		sb.WriteByte('/')
	}
}

// A ReadContext records the position of a parser in the nesting structure of
// its input. Contexts form a stack linked from child to parent; the most
// recently closed child of each context is kept for reuse.
type ReadContext struct {
	contextBase
	parent *ReadContext
	child  *ReadContext

	maxDepth int
	dups     *DupDetector
	name     string
	hasName  bool

	line, col int // start of the context
}

// NewRootReadContext returns a root context. Nesting deeper than maxDepth
// (if positive) is reported as an error. If dups != nil, property names are
// checked for duplicates.
func NewRootReadContext(maxDepth int, dups *DupDetector) *ReadContext {
	c := &ReadContext{maxDepth: maxDepth, dups: dups, line: 1, col: 0}
	c.init(RootContext, 0)
	return c
}

func (c *ReadContext) reset(typ ContextType, line, col int) {
	c.init(typ, c.depth)
	c.name, c.hasName = "", false
	c.line, c.col = line, col
	if c.dups != nil {
		c.dups.Reset()
	}
}

// CreateChildArrayContext enters an array starting at line and col.
func (c *ReadContext) CreateChildArrayContext(line, col int) (*ReadContext, error) {
	return c.createChild(ArrayContext, line, col)
}

// CreateChildObjectContext enters an object starting at line and col.
func (c *ReadContext) CreateChildObjectContext(line, col int) (*ReadContext, error) {
	return c.createChild(ObjectContext, line, col)
}

func (c *ReadContext) createChild(typ ContextType, line, col int) (*ReadContext, error) {
	depth := c.depth + 1
	if exceeds(depth, c.maxDepth) {
		return nil, newError(ErrConstraint, Location{ByteOffset: -1, CharOffset: -1, LineCol: LineCol{line, col}},
			"Document nesting depth (%d) exceeds the maximum allowed (%d)", depth, c.maxDepth)
	}
	child := c.child
	if child == nil {
		child = &ReadContext{parent: c, maxDepth: c.maxDepth}
		child.depth = depth
		if c.dups != nil {
			child.dups = c.dups.Child()
		}
		c.child = child
	}
	child.reset(typ, line, col)
	return child, nil
}

// ClearAndGetParent leaves c, discarding its bound value, and returns its
// parent. The parent of the root is nil.
func (c *ReadContext) ClearAndGetParent() *ReadContext {
	c.value = nil
	return c.parent
}

// Parent returns the enclosing context, or nil for the root.
func (c *ReadContext) Parent() *ReadContext { return c.parent }

// ExpectComma advances the entry index of c and reports whether a comma is
// required before the new entry. Callers must call it exactly once per entry.
func (c *ReadContext) ExpectComma() bool {
	c.index++
	return c.typ != RootContext && c.index > 0
}

// CurrentName returns the name of the current property of an object, or ""
// when there is none. For arrays and the root it returns the name of the
// property in the enclosing object, if any.
func (c *ReadContext) CurrentName() string {
	if c.hasName {
		return c.name
	}
	if c.typ != ObjectContext && c.parent != nil && c.parent.hasName {
		return c.parent.name
	}
	return ""
}

// HasCurrentName reports whether a property name has been set in c.
func (c *ReadContext) HasCurrentName() bool { return c.hasName }

// SetCurrentName records the current property name. If c checks duplicates
// and name was already seen in this object, it reports ErrDuplicateProperty.
func (c *ReadContext) SetCurrentName(name string) error {
	c.name, c.hasName = name, true
	if c.dups != nil && c.dups.IsDup(name) {
		return newError(ErrDuplicateProperty, Location{ByteOffset: -1, CharOffset: -1},
			"Duplicate Object property %q", name)
	}
	return nil
}

// Dups returns the duplicate detector of c, or nil.
func (c *ReadContext) Dups() *DupDetector { return c.dups }

// StartLocation returns the location of the opening bracket of c. Only the
// line and column are known; offsets are -1.
func (c *ReadContext) StartLocation(content ContentReference) Location {
	return Location{Content: content, ByteOffset: -1, CharOffset: -1, LineCol: LineCol{c.line, c.col}}
}

// String renders the path of c in a compact form, "/" for the root,
// "[2]" for an array and "{"name"}" for an object.
func (c *ReadContext) String() string {
	var sb strings.Builder
	appendFrame(&sb, c.typ, c.index, c.name, c.hasName)
	return sb.String()
}

// Pointer returns a JSON Pointer to the current position. Array indices do
// not count the reference id of the array.
func (c *ReadContext) Pointer() pointer.Pointer {
	var frames []*ReadContext
	for cur := c; cur != nil && cur.typ != RootContext; cur = cur.parent {
		frames = append(frames, cur)
	}
	var p pointer.Pointer
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		switch {
		case f.typ == ArrayContext && f.index > 0:
			p = p.AppendIndex(f.index - 1)
		case f.typ == ObjectContext && f.hasName:
			p = p.AppendProperty(f.name)
		}
	}
	return p
}

// Status is the outcome of a write context transition. It tells the
// generator which separator, if any, precedes the next output.
type Status byte

// Constants defining the valid Status values.
const (
	OKAsIs       Status = iota // no separator
	OKAfterComma               // a comma separates entries
	OKAfterColon               // a colon separates a name from its value
	OKAfterSpace               // the root value separator precedes a root value
	ExpectValue                // a name was written where a value is required
	ExpectName                 // a value was written where a name is required
)

// A WriteContext records the position of a generator in the nesting
// structure of its output. It mirrors ReadContext.
type WriteContext struct {
	contextBase
	parent *WriteContext
	child  *WriteContext

	dups    *DupDetector
	name    string
	gotName bool
}

// NewRootWriteContext returns a root context. If dups != nil, property names
// are checked for duplicates.
func NewRootWriteContext(dups *DupDetector) *WriteContext {
	c := &WriteContext{dups: dups}
	c.init(RootContext, 0)
	return c
}

func (c *WriteContext) reset(typ ContextType, v any) {
	c.init(typ, c.depth)
	c.value = v
	c.name, c.gotName = "", false
	if c.dups != nil {
		c.dups.Reset()
	}
}

// CreateChildArrayContext enters an array bound to v.
func (c *WriteContext) CreateChildArrayContext(v any) *WriteContext {
	return c.createChild(ArrayContext, v)
}

// CreateChildObjectContext enters an object bound to v.
func (c *WriteContext) CreateChildObjectContext(v any) *WriteContext {
	return c.createChild(ObjectContext, v)
}

func (c *WriteContext) createChild(typ ContextType, v any) *WriteContext {
	child := c.child
	if child == nil {
		child = &WriteContext{parent: c}
		child.depth = c.depth + 1
		if c.dups != nil {
			child.dups = c.dups.Child()
		}
		c.child = child
	}
	child.reset(typ, v)
	return child
}

// ClearAndGetParent leaves c, discarding its bound value, and returns its
// parent. The parent of the root is nil.
func (c *WriteContext) ClearAndGetParent() *WriteContext {
	c.value = nil
	return c.parent
}

// Parent returns the enclosing context, or nil for the root.
func (c *WriteContext) Parent() *WriteContext { return c.parent }

// CurrentName returns the name of the property being written, or "".
func (c *WriteContext) CurrentName() string { return c.name }

// HasCurrentName reports whether a name has been written without its value.
func (c *WriteContext) HasCurrentName() bool { return c.gotName }

// WriteName records a property name. It returns ExpectValue if a name is not
// allowed here, and reports ErrDuplicateProperty for a repeated name when
// duplicates are checked.
func (c *WriteContext) WriteName(name string) (Status, error) {
	if c.typ != ObjectContext || c.gotName {
		return ExpectValue, nil
	}
	c.gotName = true
	c.name = name
	if c.dups != nil && c.dups.IsDup(name) {
		return ExpectValue, writeError(ErrDuplicateProperty, "Duplicate Object property %q", name)
	}
	if c.index < 0 {
		return OKAsIs, nil
	}
	return OKAfterComma, nil
}

// WriteValue records a value and returns the separator it requires, or
// ExpectName if a value is not allowed here.
func (c *WriteContext) WriteValue() Status {
	switch c.typ {
	case ObjectContext:
		if !c.gotName {
			return ExpectName
		}
		c.gotName = false
		c.index++
		return OKAfterColon
	case ArrayContext:
		c.index++
		if c.index == 0 {
			return OKAsIs
		}
		return OKAfterComma
	}
	c.index++
	if c.index == 0 {
		return OKAsIs
	}
	return OKAfterSpace
}

// String renders the path of c in the same form as ReadContext.String.
func (c *WriteContext) String() string {
	var sb strings.Builder
	appendFrame(&sb, c.typ, c.index, c.name, c.name != "" || c.gotName)
	return sb.String()
}
