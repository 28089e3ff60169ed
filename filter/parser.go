// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package filter

import (
	"github.com/creachadair/cirjson"
)

// A FilteringParser is a cirjson.Parser that reports the tokens of another
// parser selected by a TokenFilter.
//
// The value accessors report the value of the underlying parser. Tokens
// reported only to complete the path to an included value (in the
// IncludeAllAndPath mode) carry their text, but their locations and
// context are those of the underlying parser.
type FilteringParser struct {
	cirjson.Parser

	root     TokenFilter
	mode     Inclusion
	multiple bool

	stack   []*level // open containers; stack[0] is the root
	nroot   int      // number of root values seen
	full    int      // depth of nesting inside an included value
	matches int

	queue []event // tokens reported before the current token of the parser
	cur   event
}

// A level records the state of one open container.
type level struct {
	tok     cirjson.Token // StartObject, StartArray, or None for the root
	filter  TokenFilter   // the filter for the contents of the container
	name    string        // the name of the container, in an object
	hasName bool
	id      string
	hasID   bool
	emitted bool // the start of the container has been reported

	index   int         // the index of the next array element
	pending TokenFilter // the filter for the value of the current property
	expect  bool        // the next value is the object id
}

// An event is a token reported by a filtering parser. Replayed events carry
// their own text; live events are the current token of the underlying
// parser.
type event struct {
	tok  cirjson.Token
	text string
	name string
	live bool
}

// NewFilteringParser returns a parser that reports the tokens of p selected
// by f. If multiple is false, only the first included value is reported.
func NewFilteringParser(p cirjson.Parser, f TokenFilter, mode Inclusion, multiple bool) *FilteringParser {
	return &FilteringParser{
		Parser:   p,
		root:     f,
		mode:     mode,
		multiple: multiple,
		stack:    []*level{{tok: cirjson.None, filter: f, emitted: true}},
		cur:      event{tok: cirjson.None, live: true},
	}
}

// Delegate returns the underlying parser of f.
func (f *FilteringParser) Delegate() cirjson.Parser { return f.Parser }

// MatchCount returns the number of values included so far.
func (f *FilteringParser) MatchCount() int { return f.matches }

func (f *FilteringParser) top() *level { return f.stack[len(f.stack)-1] }

// CurrentToken implements part of the cirjson.Parser interface.
func (f *FilteringParser) CurrentToken() cirjson.Token { return f.cur.tok }

// CurrentName implements part of the cirjson.Parser interface.
func (f *FilteringParser) CurrentName() string {
	if f.cur.live {
		return f.Parser.CurrentName()
	}
	return f.cur.name
}

// Text implements part of the cirjson.Parser interface.
func (f *FilteringParser) Text() (string, error) {
	if f.cur.live {
		return f.Parser.Text()
	}
	return f.cur.text, nil
}

// TextLength implements part of the cirjson.Parser interface.
func (f *FilteringParser) TextLength() (int, error) {
	if f.cur.live {
		return f.Parser.TextLength()
	}
	return len(f.cur.text), nil
}

// NextToken implements part of the cirjson.Parser interface.
func (f *FilteringParser) NextToken() (cirjson.Token, error) {
	if len(f.queue) != 0 {
		f.cur = f.queue[0]
		f.queue = f.queue[1:]
		return f.cur.tok, nil
	}
	for {
		tok, err := f.Parser.NextToken()
		if err != nil {
			return tok, err
		}
		if ok, err := f.accept(tok); err != nil {
			return tok, err
		} else if ok {
			return f.emit(tok), nil
		}
	}
}

// emit queues the live token tok and reports the first queued token.
func (f *FilteringParser) emit(tok cirjson.Token) cirjson.Token {
	f.queue = append(f.queue, event{tok: tok, live: true})
	f.cur = f.queue[0]
	f.queue = f.queue[1:]
	return f.cur.tok
}

// accept updates the filter state for the next token of the underlying
// parser, and reports whether that token is included.
func (f *FilteringParser) accept(tok cirjson.Token) (bool, error) {
	if tok == cirjson.None {
		return true, nil
	}
	if f.full > 0 {
		switch {
		case tok.IsStructStart():
			f.full++
		case tok.IsStructEnd():
			f.full--
			if f.full == 0 {
				f.matches++
			}
		}
		return true, nil
	}

	top := f.top()
	switch tok {
	case cirjson.EndObject, cirjson.EndArray:
		f.stack = f.stack[:len(f.stack)-1]
		return top.emitted, nil

	case cirjson.IDPropertyName:
		top.expect = true
		return false, nil

	case cirjson.PropertyName:
		name := f.Parser.CurrentName()
		top.pending = f.check(top.filter.IncludeProperty(name))
		if top.pending == IncludeAll && f.mode == IncludeAllAndPath {
			f.openPath()
			return true, nil
		}
		return false, nil
	}

	// The token begins a value, which may be the id of its container.
	if top.expect || (top.tok == cirjson.StartArray && !top.hasID) {
		id, err := f.Parser.Text()
		if err != nil {
			return false, err
		}
		top.id, top.hasID, top.expect = id, true, false
		return false, nil
	}
	vf := f.valueFilter(top)
	switch {
	case vf == nil:
		return false, f.skip(tok)
	case vf == IncludeAll:
		if f.mode == IncludeAllAndPath && top.tok != cirjson.StartObject {
			f.openPath()
		}
		if tok.IsStructStart() {
			f.full = 1
		} else {
			f.matches++
		}
		return true, nil
	case tok.IsStructStart():
		lv := &level{tok: tok, filter: vf}
		if top.tok == cirjson.StartObject {
			lv.name, lv.hasName = f.Parser.CurrentName(), true
		}
		f.stack = append(f.stack, lv)
		return false, nil
	}
	return false, nil
}

// check applies the limit on the number of matches to the filter result.
func (f *FilteringParser) check(tf TokenFilter) TokenFilter {
	if !f.multiple && f.matches > 0 {
		return nil
	}
	return tf
}

// valueFilter returns the filter for the value beginning in top.
func (f *FilteringParser) valueFilter(top *level) TokenFilter {
	switch top.tok {
	case cirjson.StartObject:
		vf := top.pending
		top.pending = nil
		return f.check(vf)
	case cirjson.StartArray:
		i := top.index
		top.index++
		return f.check(top.filter.IncludeElement(i))
	default:
		i := f.nroot
		f.nroot++
		return f.check(f.root.IncludeRootValue(i))
	}
}

// skip advances the underlying parser past the value beginning with tok.
func (f *FilteringParser) skip(tok cirjson.Token) error {
	if tok.IsStructStart() {
		return f.Parser.SkipChildren()
	}
	return nil
}

// openPath queues the names, start tokens, and ids of the open containers
// that have not yet been reported.
func (f *FilteringParser) openPath() {
	for _, lv := range f.stack {
		if lv.emitted {
			continue
		}
		name := lv.name
		if lv.hasName {
			f.queue = append(f.queue, event{tok: cirjson.PropertyName, text: name, name: name})
		}
		if lv.tok == cirjson.StartObject {
			f.queue = append(f.queue,
				event{tok: cirjson.StartObject, text: "{", name: name},
				event{tok: cirjson.IDPropertyName, text: cirjson.IDName, name: cirjson.IDName},
				event{tok: cirjson.String, text: lv.id, name: cirjson.IDName},
			)
		} else {
			f.queue = append(f.queue,
				event{tok: cirjson.StartArray, text: "[", name: name},
				event{tok: cirjson.String, text: lv.id},
			)
		}
		lv.emitted = true
	}
}

// NextValue implements part of the cirjson.Parser interface.
func (f *FilteringParser) NextValue() (cirjson.Token, error) {
	tok, err := f.NextToken()
	if err == nil && tok.IsName() {
		return f.NextToken()
	}
	return tok, err
}

// NextName implements part of the cirjson.Parser interface.
func (f *FilteringParser) NextName() (string, bool, error) {
	tok, err := f.NextToken()
	if err != nil || !tok.IsName() {
		return "", false, err
	}
	return f.CurrentName(), true, nil
}

// NextNameMatches implements part of the cirjson.Parser interface.
func (f *FilteringParser) NextNameMatches(s *cirjson.SerializedString) (bool, error) {
	name, ok, err := f.NextName()
	return ok && name == s.Value(), err
}

// SkipChildren implements part of the cirjson.Parser interface.
func (f *FilteringParser) SkipChildren() error {
	if !f.cur.tok.IsStructStart() {
		return nil
	}
	for open := 1; ; {
		tok, err := f.NextToken()
		if err != nil {
			return err
		}
		switch {
		case tok == cirjson.None:
			return nil
		case tok.IsStructStart():
			open++
		case tok.IsStructEnd():
			if open--; open == 0 {
				return nil
			}
		}
	}
}
