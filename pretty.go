// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import "strings"

// A RawWriter writes text to the output without escaping or validation.
type RawWriter interface {
	WriteRaw(s string) error
}

// A PrettyPrinter formats the output of a generator. When a generator has a
// pretty printer, it calls these methods in place of writing the compact
// separators, brackets and braces itself. The n arguments of WriteEndObject
// and WriteEndArray report the number of entries written.
type PrettyPrinter interface {
	WriteRootValueSeparator(w RawWriter) error
	WriteStartObject(w RawWriter) error
	BeforeObjectEntries(w RawWriter) error
	WriteObjectNameValueSeparator(w RawWriter) error
	WriteObjectEntrySeparator(w RawWriter) error
	WriteEndObject(w RawWriter, n int) error
	WriteStartArray(w RawWriter) error
	BeforeArrayValues(w RawWriter) error
	WriteArrayValueSeparator(w RawWriter) error
	WriteEndArray(w RawWriter, n int) error
}

// DefaultPrettyPrinter indents object entries one per line, and writes array
// elements on one line separated by spaces:
//
//	{
//	  "__cirJsonId__" : "0",
//	  "a" : [ "1", 1, 2 ]
//	}
//
// A DefaultPrettyPrinter tracks nesting, so each generator needs its own.
type DefaultPrettyPrinter struct {
	RootSeparator string // written between root values
	Indent        string // written once per nesting level
	Linefeed      string // written before each indented line
	IndentArrays  bool   // indent array elements like object entries

	nesting int
}

// NewDefaultPrettyPrinter returns a DefaultPrettyPrinter with two-space
// indentation.
func NewDefaultPrettyPrinter() *DefaultPrettyPrinter {
	return &DefaultPrettyPrinter{RootSeparator: " ", Indent: "  ", Linefeed: "\n"}
}

func (p *DefaultPrettyPrinter) indent(w RawWriter) error {
	return w.WriteRaw(p.Linefeed + strings.Repeat(p.Indent, p.nesting))
}

// WriteRootValueSeparator implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteRootValueSeparator(w RawWriter) error {
	if p.RootSeparator == "" {
		return nil
	}
	return w.WriteRaw(p.RootSeparator)
}

// WriteStartObject implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteStartObject(w RawWriter) error {
	p.nesting++
	return w.WriteRaw("{")
}

// BeforeObjectEntries implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) BeforeObjectEntries(w RawWriter) error { return p.indent(w) }

// WriteObjectNameValueSeparator implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteObjectNameValueSeparator(w RawWriter) error {
	return w.WriteRaw(" : ")
}

// WriteObjectEntrySeparator implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteObjectEntrySeparator(w RawWriter) error {
	if err := w.WriteRaw(","); err != nil {
		return err
	}
	return p.indent(w)
}

// WriteEndObject implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteEndObject(w RawWriter, n int) error {
	p.nesting--
	if n > 0 {
		if err := p.indent(w); err != nil {
			return err
		}
		return w.WriteRaw("}")
	}
	return w.WriteRaw(" }")
}

// WriteStartArray implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteStartArray(w RawWriter) error {
	if p.IndentArrays {
		p.nesting++
	}
	return w.WriteRaw("[")
}

func (p *DefaultPrettyPrinter) arrayIndent(w RawWriter) error {
	if p.IndentArrays {
		return p.indent(w)
	}
	return w.WriteRaw(" ")
}

// BeforeArrayValues implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) BeforeArrayValues(w RawWriter) error { return p.arrayIndent(w) }

// WriteArrayValueSeparator implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteArrayValueSeparator(w RawWriter) error {
	if err := w.WriteRaw(","); err != nil {
		return err
	}
	return p.arrayIndent(w)
}

// WriteEndArray implements part of PrettyPrinter.
func (p *DefaultPrettyPrinter) WriteEndArray(w RawWriter, n int) error {
	if p.IndentArrays {
		p.nesting--
	}
	if n > 0 {
		if err := p.arrayIndent(w); err != nil {
			return err
		}
		return w.WriteRaw("]")
	}
	return w.WriteRaw(" ]")
}

// MinimalPrettyPrinter writes the compact form, with a configurable
// separator between root values.
type MinimalPrettyPrinter struct {
	RootSeparator string
}

func (p MinimalPrettyPrinter) WriteRootValueSeparator(w RawWriter) error {
	if p.RootSeparator == "" {
		return nil
	}
	return w.WriteRaw(p.RootSeparator)
}
func (MinimalPrettyPrinter) WriteStartObject(w RawWriter) error              { return w.WriteRaw("{") }
func (MinimalPrettyPrinter) BeforeObjectEntries(RawWriter) error             { return nil }
func (MinimalPrettyPrinter) WriteObjectNameValueSeparator(w RawWriter) error { return w.WriteRaw(":") }
func (MinimalPrettyPrinter) WriteObjectEntrySeparator(w RawWriter) error     { return w.WriteRaw(",") }
func (MinimalPrettyPrinter) WriteEndObject(w RawWriter, _ int) error         { return w.WriteRaw("}") }
func (MinimalPrettyPrinter) WriteStartArray(w RawWriter) error               { return w.WriteRaw("[") }
func (MinimalPrettyPrinter) BeforeArrayValues(RawWriter) error               { return nil }
func (MinimalPrettyPrinter) WriteArrayValueSeparator(w RawWriter) error      { return w.WriteRaw(",") }
func (MinimalPrettyPrinter) WriteEndArray(w RawWriter, _ int) error          { return w.WriteRaw("]") }
