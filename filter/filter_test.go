// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package filter_test

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/creachadair/cirjson"
	"github.com/creachadair/cirjson/filter"
	"github.com/creachadair/cirjson/pointer"
	"github.com/creachadair/mds/mtest"
)

const testDoc = `{"__cirJsonId__":"root","a":123,"array":["array",1,2],"ob":{"__cirJsonId__":"ob","value":3},"b":true}`

// copyAll copies the tokens of p to a compact generator and returns the
// output.
func copyAll(t *testing.T, p cirjson.Parser) string {
	t.Helper()
	var buf bytes.Buffer
	g := cirjson.NewFactory().NewGenerator(&buf)
	for {
		tok, err := p.NextToken()
		if err != nil {
			t.Fatalf("NextToken: unexpected error: %v", err)
		} else if tok == cirjson.None {
			break
		}
		if err := g.CopyCurrentEvent(p); err != nil {
			t.Fatalf("CopyCurrentEvent(%v): unexpected error: %v", tok, err)
		}
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: unexpected error: %v", err)
	}
	return buf.String()
}

func TestFilteringParser(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		filter   filter.TokenFilter
		mode     filter.Inclusion
		multiple bool
		want     string
		matches  int
	}{
		{"NameOnly", testDoc, filter.NameFilter("value"), filter.OnlyIncludeAll, false,
			`3`, 1},
		{"NamePath", testDoc, filter.NameFilter("value"), filter.IncludeAllAndPath, false,
			`{"__cirJsonId__":"root","ob":{"__cirJsonId__":"ob","value":3}}`, 1},
		{"NameMultiple", testDoc, filter.NameFilter("a", "value", "b"), filter.OnlyIncludeAll, true,
			`123 3 true`, 3},
		{"NameMultiplePath", testDoc, filter.NameFilter("a", "value"), filter.IncludeAllAndPath, true,
			`{"__cirJsonId__":"root","a":123,"ob":{"__cirJsonId__":"ob","value":3}}`, 2},
		{"NameFirstOnly", testDoc, filter.NameFilter("a", "value"), filter.OnlyIncludeAll, false,
			`123`, 1},
		{"NameObject", testDoc, filter.NameFilter("ob"), filter.OnlyIncludeAll, false,
			`{"__cirJsonId__":"ob","value":3}`, 1},
		{"NameArray", testDoc, filter.NameFilter("array"), filter.IncludeAllAndPath, false,
			`{"__cirJsonId__":"root","array":["array",1,2]}`, 1},
		{"NameMissing", testDoc, filter.NameFilter("nonesuch"), filter.IncludeAllAndPath, true,
			``, 0},

		{"Everything", testDoc, filter.IncludeAll, filter.OnlyIncludeAll, false, testDoc, 1},
		{"EmptyPath", testDoc, filter.Path(), filter.IncludeAllAndPath, false, testDoc, 1},

		{"PathElement", testDoc, filter.Path("array", 1), filter.OnlyIncludeAll, false,
			`2`, 1},
		{"PathElementPath", testDoc, filter.Path("array", 1), filter.IncludeAllAndPath, false,
			`{"__cirJsonId__":"root","array":["array",2]}`, 1},
		{"PathTooFar", testDoc, filter.Path("array", 2), filter.OnlyIncludeAll, false,
			``, 0},
		{"Pointer", testDoc, filter.PointerFilter(pointer.MustParse("/ob/value")), filter.IncludeAllAndPath, false,
			`{"__cirJsonId__":"root","ob":{"__cirJsonId__":"ob","value":3}}`, 1},
		{"PointerObject", testDoc, filter.PointerFilter(pointer.MustParse("/ob")), filter.OnlyIncludeAll, false,
			`{"__cirJsonId__":"ob","value":3}`, 1},

		{"NestedArrays", `["0",["1",{"__cirJsonId__":"2","x":"deep"}],"skip"]`,
			filter.Path(0, 0, "x"), filter.IncludeAllAndPath, false,
			`["0",["1",{"__cirJsonId__":"2","x":"deep"}]]`, 1},
		{"RootValues", `{"__cirJsonId__":"1","k":1} {"__cirJsonId__":"2","k":2}`,
			filter.NameFilter("k"), filter.OnlyIncludeAll, true,
			`1 2`, 2},
		{"RootValuesPath", `{"__cirJsonId__":"1","k":1} {"__cirJsonId__":"2","j":2}`,
			filter.NameFilter("k"), filter.IncludeAllAndPath, true,
			`{"__cirJsonId__":"1","k":1}`, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := cirjson.NewFactory().NewParserFromString(test.input)
			fp := filter.NewFilteringParser(p, test.filter, test.mode, test.multiple)
			if got := copyAll(t, fp); got != test.want {
				t.Errorf("Output:\n got: %s\nwant: %s", got, test.want)
			}
			if got := fp.MatchCount(); got != test.matches {
				t.Errorf("MatchCount: got %d, want %d", got, test.matches)
			}
		})
	}
}

func TestFilteringParserSingleQuotes(t *testing.T) {
	const input = `{'__cirJsonId__':'root','a':123,'array':['array',1,2],'ob':{'__cirJsonId__':'ob','value':3},'b':true}`
	f := cirjson.NewFactory().EnableRead(cirjson.AllowSingleQuotes)
	parsers := []struct {
		name string
		p    cirjson.Parser
	}{
		{"Bytes", f.NewParser([]byte(input))},
		{"Reader", f.NewParserFromReader(strings.NewReader(input))},
		{"ByteReader", f.NewParserFromByteReader(bufio.NewReader(strings.NewReader(input)))},
		{"String", f.NewParserFromString(input)},
		{"Runes", f.NewParserFromRunes([]rune(input))},
		{"RuneReader", f.NewParserFromRuneReader(strings.NewReader(input))},
	}
	for _, pt := range parsers {
		t.Run(pt.name, func(t *testing.T) {
			fp := filter.NewFilteringParser(pt.p, filter.NameFilter("value"), filter.OnlyIncludeAll, false)
			if got := copyAll(t, fp); got != "3" {
				t.Errorf("Output: got %s, want 3", got)
			}
		})
	}
}

func TestFilteringParserTokens(t *testing.T) {
	p := cirjson.NewFactory().NewParser([]byte(testDoc))
	fp := filter.NewFilteringParser(p, filter.NameFilter("value"), filter.OnlyIncludeAll, false)
	if fp.Delegate() != p {
		t.Error("Delegate did not return the underlying parser")
	}

	tok, err := fp.NextToken()
	if err != nil || tok != cirjson.Int {
		t.Fatalf("NextToken: got (%v, %v), want %v", tok, err, cirjson.Int)
	}
	if fp.CurrentToken() != cirjson.Int {
		t.Errorf("CurrentToken: got %v, want %v", fp.CurrentToken(), cirjson.Int)
	}
	if v, err := fp.IntValue(); err != nil || v != 3 {
		t.Errorf("IntValue: got (%d, %v), want 3", v, err)
	}
	if text, err := fp.Text(); err != nil || text != "3" {
		t.Errorf("Text: got (%q, %v), want 3", text, err)
	}

	tok, err = fp.NextToken()
	if err != nil || tok != cirjson.None {
		t.Fatalf("NextToken: got (%v, %v), want %v", tok, err, cirjson.None)
	}
}

func TestFilteringParserReplay(t *testing.T) {
	p := cirjson.NewFactory().NewParserFromString(testDoc)
	fp := filter.NewFilteringParser(p, filter.NameFilter("value"), filter.IncludeAllAndPath, false)

	type step struct {
		tok  cirjson.Token
		name string
		text string
	}
	want := []step{
		{cirjson.StartObject, "", "{"},
		{cirjson.IDPropertyName, cirjson.IDName, cirjson.IDName},
		{cirjson.String, cirjson.IDName, "root"},
		{cirjson.PropertyName, "ob", "ob"},
		{cirjson.StartObject, "ob", "{"},
		{cirjson.IDPropertyName, cirjson.IDName, cirjson.IDName},
		{cirjson.String, cirjson.IDName, "ob"},
		{cirjson.PropertyName, "value", "value"},
		{cirjson.Int, "value", "3"},
		{cirjson.EndObject, "", "}"},
		{cirjson.EndObject, "", "}"},
	}
	for i, w := range want {
		tok, err := fp.NextToken()
		if err != nil {
			t.Fatalf("Step %d: NextToken: %v", i, err)
		}
		if tok != w.tok {
			t.Fatalf("Step %d: got %v, want %v", i, tok, w.tok)
		}
		if tok == cirjson.EndObject {
			continue
		}
		text, err := fp.Text()
		if err != nil {
			t.Fatalf("Step %d: Text: %v", i, err)
		}
		if text != w.text || fp.CurrentName() != w.name {
			t.Errorf("Step %d: got name %q text %q, want %q %q", i, fp.CurrentName(), text, w.name, w.text)
		}
		if n, err := fp.TextLength(); err != nil || n != len(w.text) {
			t.Errorf("Step %d: TextLength: got (%d, %v), want %d", i, n, err, len(w.text))
		}
	}
}

func TestFilteringParserSkip(t *testing.T) {
	p := cirjson.NewFactory().NewParserFromString(testDoc)
	fp := filter.NewFilteringParser(p, filter.IncludeAll, filter.OnlyIncludeAll, false)
	if tok, err := fp.NextToken(); err != nil || tok != cirjson.StartObject {
		t.Fatalf("NextToken: got (%v, %v), want %v", tok, err, cirjson.StartObject)
	}
	if err := fp.SkipChildren(); err != nil {
		t.Fatalf("SkipChildren: %v", err)
	}
	if tok := fp.CurrentToken(); tok != cirjson.EndObject {
		t.Errorf("After SkipChildren: got %v, want %v", tok, cirjson.EndObject)
	}
	if tok, err := fp.NextToken(); err != nil || tok != cirjson.None {
		t.Errorf("NextToken: got (%v, %v), want %v", tok, err, cirjson.None)
	}
}

func TestFilteringParserNext(t *testing.T) {
	p := cirjson.NewFactory().NewParserFromString(testDoc)
	fp := filter.NewFilteringParser(p, filter.NameFilter("value"), filter.IncludeAllAndPath, false)

	if tok, err := fp.NextValue(); err != nil || tok != cirjson.StartObject {
		t.Fatalf("NextValue: got (%v, %v), want %v", tok, err, cirjson.StartObject)
	}
	if name, ok, err := fp.NextName(); err != nil || !ok || name != cirjson.IDName {
		t.Fatalf("NextName: got (%q, %v, %v), want %q", name, ok, err, cirjson.IDName)
	}
	if tok, err := fp.NextValue(); err != nil || tok != cirjson.String {
		t.Fatalf("NextValue: got (%v, %v), want %v", tok, err, cirjson.String)
	}
	if ok, err := fp.NextNameMatches(cirjson.NewSerializedString("ob")); err != nil || !ok {
		t.Fatalf("NextNameMatches(ob): got (%v, %v), want true", ok, err)
	}
	if tok, err := fp.NextValue(); err != nil || tok != cirjson.StartObject {
		t.Fatalf("NextValue: got (%v, %v), want %v", tok, err, cirjson.StartObject)
	}
	if name, ok, err := fp.NextName(); err != nil || !ok || name != cirjson.IDName {
		t.Fatalf("NextName: got (%q, %v, %v), want %q", name, ok, err, cirjson.IDName)
	}
	if name, ok, err := fp.NextName(); err != nil || ok {
		t.Fatalf("NextName on the id value: got (%q, %v, %v), want not ok", name, ok, err)
	}
}

func TestPath(t *testing.T) {
	mtest.MustPanic(t, func() { filter.Path("a", 1.5) })

	tests := []struct {
		in   filter.Inclusion
		want string
	}{
		{filter.OnlyIncludeAll, "OnlyIncludeAll"},
		{filter.IncludeAllAndPath, "IncludeAllAndPath"},
		{filter.Inclusion(9), "Inclusion(9)"},
	}
	for _, test := range tests {
		if got := test.in.String(); got != test.want {
			t.Errorf("String: got %q, want %q", got, test.want)
		}
	}
}
