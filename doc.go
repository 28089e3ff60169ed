// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package cirjson implements a streaming parser and generator for CirJSON.
//
// CirJSON is JSON in which every object and array carries a reference id: the
// first property of every object is "__cirJsonId__" with a string value, and
// the first element of every array is a string. Values that occur more than
// once in a document can be written once and referred to by id elsewhere.
// This package reads and writes the token stream; it does not build a tree
// or resolve references.
//
// # Factories
//
// A Factory holds the configuration shared by parsers and generators: the
// enabled features, the processing constraints, a buffer recycler, and the
// root symbol tables from which parsers share property names.
//
//	f := cirjson.NewFactory().EnableRead(cirjson.AllowTrailingComma)
//	p := f.NewParserFromReader(input)
//	defer p.Close()
//
// # Parsing
//
// A Parser reports one token at a time. Call NextToken to advance, and use
// the accessor methods to recover the text and value of the current token:
//
//	for {
//	   tok, err := p.NextToken()
//	   if err != nil {
//	      log.Fatalf("Parse failed: %v", err)
//	   } else if tok == cirjson.None {
//	      break // end of input
//	   }
//	   log.Printf("Next token: %v", tok)
//	}
//
// Errors reported by a parser have concrete type *cirjson.Error, and can be
// classified with errors.Is against the error kinds (ErrSyntax, ErrStructure,
// and so on). The location of the error is included.
//
// # Generating
//
// A Generator writes the token stream of a document. The caller writes the
// ids of objects and arrays explicitly, or lets WriteStartObjectFor and
// WriteStartArrayFor assign ids by the identity of the value written:
//
//	g := f.NewGenerator(output)
//	g.WriteStartObject()
//	g.WriteObjectID(v)
//	g.WriteName("name")
//	g.WriteString("value")
//	g.WriteEndObject()
//	if err := g.Close(); err != nil {
//	   log.Fatalf("Write failed: %v", err)
//	}
//
// # Streaming
//
// The Stream type adapts a Parser to an event-driven interface. The stream
// calls methods on a Handler value to report the structure of the input:
//
//	s := cirjson.NewStream(p)
//	if err := s.Parse(handler); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// To parse a single value from the front of the input, call ParseOne. This
// method returns io.EOF if no further values are available.
//
// The methods of a handler correspond to the syntax of CirJSON values:
//
//	CirJSON type | Methods                   | Description
//	------------ | ------------------------- | ---------------------------------
//	object       | BeginObject, EndObject    | { ... }
//	array        | BeginArray, EndArray      | [ ... ]
//	member       | BeginMember, EndMember    | "key": value
//	value        | Value                     | true, false, null, number, string
//	id           | ID (optional)             | "__cirJsonId__": "id", or ["id", ...]
//	--           | EndOfInput                | end of input
package cirjson
