// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson_test

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/creachadair/cirjson"
	gojson "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

// generate calls write with a new generator from f, closes the generator,
// and returns its output.
func generate(t *testing.T, f *cirjson.Factory, write func(g cirjson.Generator) error) string {
	t.Helper()
	var buf bytes.Buffer
	g := f.NewGenerator(&buf)
	if err := write(g); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.String()
}

// seq runs each of the given write functions in order, stopping at the
// first error.
func seq(fs ...func() error) error {
	for _, f := range fs {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func TestGeneratorOutput(t *testing.T) {
	tests := []struct {
		name  string
		write func(g cirjson.Generator) error
		want  string
	}{
		{"Object", func(g cirjson.Generator) error {
			return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
				func() error { return g.WriteName("a") }, func() error { return g.WriteInt(1) },
				g.WriteEndObject)
		}, `{"__cirJsonId__":"0","a":1}`},

		{"Array", func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				func() error { return g.WriteString("x") }, func() error { return g.WriteBool(true) },
				func() error { return g.WriteBool(false) }, g.WriteNull, g.WriteEndArray)
		}, `["0","x",true,false,null]`},

		{"RootValues", func(g cirjson.Generator) error {
			return seq(func() error { return g.WriteInt(1) }, func() error { return g.WriteString("two") },
				g.WriteNull)
		}, `1 "two" null`},

		{"Nested", func(g cirjson.Generator) error {
			return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
				func() error { return g.WriteName("list") },
				g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				g.WriteStartObject, func() error { return g.WriteObjectID(nil) }, g.WriteEndObject,
				g.WriteEndArray,
				func() error { return g.WriteName("n") }, g.WriteNull,
				g.WriteEndObject)
		}, `{"__cirJsonId__":"0","list":["1",{"__cirJsonId__":"2"}],"n":null}`},

		{"Numbers", func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				func() error { return g.WriteInt64(-9223372036854775808) },
				func() error { return g.WriteUint64(math.MaxUint64) },
				func() error { return g.WriteBigInt(new(big.Int).Lsh(big.NewInt(1), 70)) },
				func() error { return g.WriteBigInt(nil) },
				func() error { return g.WriteFloat64(1) },
				func() error { return g.WriteFloat64(0.001) },
				func() error { return g.WriteFloat64(1e7) },
				func() error { return g.WriteFloat32(0.1) },
				func() error { return g.WriteDecimal(decimal.RequireFromString("1.25")) },
				func() error { return g.WriteNumber("6.02e23") },
				func() error { return g.WriteFloat64(math.NaN()) },
				func() error { return g.WriteFloat64(math.Inf(-1)) },
				g.WriteEndArray)
		}, `["0",-9223372036854775808,18446744073709551615,1180591620717411303424,null,` +
			`1.0,0.001,1E+07,0.1,1.25,6.02e23,"NaN","-Infinity"]`},

		{"Strings", func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				func() error { return g.WriteString("a\"b\\c\n\x01é/😀") },
				func() error { return g.WriteRunes([]rune{'x', 0xD83D, 0xDE00}) },
				func() error { return g.WriteUTF8String([]byte("tab\there")) },
				func() error { return g.WriteRawUTF8String([]byte(`already\nescaped`)) },
				func() error { return g.WriteSerializedString(cirjson.NewSerializedString("q\"q")) },
				g.WriteEndArray)
		}, `["0","a\"b\\c\n\u0001é/😀","x😀","tab\there","already\nescaped","q\"q"]`},

		{"RawValue", func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				func() error { return g.WriteRawValue(`{"__cirJsonId__":"x"}`) },
				func() error { return g.WriteRaw(" ") },
				func() error { return g.WriteInt(2) },
				g.WriteEndArray)
		}, `["0",{"__cirJsonId__":"x"} ,2]`},

		{"SerializedName", func(g cirjson.Generator) error {
			return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
				func() error { return g.WriteSerializedName(cirjson.NewSerializedString("a/b")) },
				func() error { return g.WriteInt(1) }, g.WriteEndObject)
		}, `{"__cirJsonId__":"0","a/b":1}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := generate(t, cirjson.NewFactory(), test.write)
			if got != test.want {
				t.Errorf("Output:\n got: %s\nwant: %s", got, test.want)
			}
		})
	}
}

func TestGeneratorFeatures(t *testing.T) {
	tests := []struct {
		name  string
		f     *cirjson.Factory
		write func(g cirjson.Generator) error
		want  string
	}{
		{"EscapeNonASCII", cirjson.NewFactory().EnableWrite(cirjson.EscapeNonASCII),
			func(g cirjson.Generator) error { return g.WriteString("é😀") },
			`"\u00E9\uD83D\uDE00"`},
		{"LowerCaseHex", cirjson.NewFactory().EnableWrite(cirjson.EscapeNonASCII).DisableWrite(cirjson.WriteHexUpperCase),
			func(g cirjson.Generator) error { return g.WriteString("é") },
			`"\u00e9"`},
		{"EscapeForwardSlashes", cirjson.NewFactory().EnableWrite(cirjson.EscapeForwardSlashes),
			func(g cirjson.Generator) error { return g.WriteString("</a>") },
			`"<\/a>"`},
		{"NumbersAsStrings", cirjson.NewFactory().EnableWrite(cirjson.WriteNumbersAsStrings),
			func(g cirjson.Generator) error {
				return seq(func() error { return g.WriteInt(1) }, func() error { return g.WriteFloat64(2.5) })
			},
			`"1" "2.5"`},
		{"NaNAsNumbers", cirjson.NewFactory().DisableWrite(cirjson.WriteNaNAsStrings),
			func(g cirjson.Generator) error { return g.WriteFloat64(math.NaN()) },
			`NaN`},
		{"UnquotedNames", cirjson.NewFactory().DisableWrite(cirjson.QuotePropertyNames),
			func(g cirjson.Generator) error {
				return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) }, g.WriteEndObject)
			},
			`{__cirJsonId__:"0"}`},
		{"DecimalPlain", cirjson.NewFactory().EnableWrite(cirjson.WriteBigDecimalAsPlain),
			func(g cirjson.Generator) error { return g.WriteDecimal(decimal.New(15, 3)) },
			`15000`},
		{"DecimalScientific", cirjson.NewFactory(),
			func(g cirjson.Generator) error { return g.WriteDecimal(decimal.New(15, 3)) },
			`1.5E+4`},
		{"RootSeparator", cirjson.NewFactory().SetRootValueSeparator("\n"),
			func(g cirjson.Generator) error {
				return seq(func() error { return g.WriteInt(1) }, func() error { return g.WriteInt(2) })
			},
			"1\n2"},
		{"NoRootSeparator", cirjson.NewFactory().SetRootValueSeparator(""),
			func(g cirjson.Generator) error {
				return seq(func() error { return g.WriteBool(true) }, func() error { return g.WriteBool(true) })
			},
			"truetrue"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := generate(t, test.f, test.write)
			if got != test.want {
				t.Errorf("Output:\n got: %s\nwant: %s", got, test.want)
			}
		})
	}
}

func TestGeneratorErrors(t *testing.T) {
	tests := []struct {
		name  string
		f     *cirjson.Factory
		write func(g cirjson.Generator) error
		kind  cirjson.Kind
		msg   string
	}{
		{"EndArrayAtRoot", nil, func(g cirjson.Generator) error { return g.WriteEndArray() },
			cirjson.ErrStructure, "Current context not Array but root"},
		{"EndObjectInArray", nil, func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, g.WriteEndObject)
		}, cirjson.ErrStructure, "Current context not Object but Array"},
		{"NameInArray", nil, func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteName("a") })
		}, cirjson.ErrStructure, "Cannot write a property name, expecting a value"},
		{"TwoNames", nil, func(g cirjson.Generator) error {
			return seq(g.WriteStartObject, func() error { return g.WriteName("a") },
				func() error { return g.WriteName("b") })
		}, cirjson.ErrStructure, "Cannot write a property name, expecting a value"},
		{"ValueWithoutName", nil, func(g cirjson.Generator) error {
			return seq(g.WriteStartObject, func() error { return g.WriteInt(1) })
		}, cirjson.ErrStructure, "Cannot write a number, expecting a property name"},
		{"InvalidUTF8", nil, func(g cirjson.Generator) error {
			return g.WriteUTF8String([]byte{'a', 0xff})
		}, cirjson.ErrEncoding, ""},
		{"InvalidUTF8String", nil, func(g cirjson.Generator) error {
			return g.WriteString("\xc3")
		}, cirjson.ErrEncoding, ""},
		{"LoneSurrogate", nil, func(g cirjson.Generator) error {
			return g.WriteRunes([]rune{0xDE00})
		}, cirjson.ErrEncoding, ""},
		{"SplitSurrogate", nil, func(g cirjson.Generator) error {
			return g.WriteRunes([]rune{'a', 0xD83D})
		}, cirjson.ErrEncoding, ""},
		{"Duplicate", cirjson.NewFactory().EnableWrite(cirjson.WriteStrictDuplicateDetection),
			func(g cirjson.Generator) error {
				return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
					func() error { return g.WriteName("a") }, g.WriteNull,
					func() error { return g.WriteName("a") })
			}, cirjson.ErrDuplicateProperty, ""},
		{"Depth", cirjson.NewFactory().SetWriteConstraints(cirjson.WriteConstraints{MaxNestingDepth: 1}),
			func(g cirjson.Generator) error {
				return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) }, g.WriteStartArray)
			}, cirjson.ErrConstraint, ""},
		{"PlainDecimalScale", cirjson.NewFactory().EnableWrite(cirjson.WriteBigDecimalAsPlain),
			func(g cirjson.Generator) error { return g.WriteDecimal(decimal.New(1, -10000)) },
			cirjson.ErrEncoding, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := test.f
			if f == nil {
				f = cirjson.NewFactory()
			}
			var buf bytes.Buffer
			g := f.NewGenerator(&buf)
			err := test.write(g)
			if !errors.Is(err, test.kind) {
				t.Fatalf("Got error %v, want %v", err, test.kind)
			}
			if test.msg != "" && err.Error() != test.msg {
				t.Errorf("Got message %q, want %q", err.Error(), test.msg)
			}
		})
	}
}

type node struct{ name string }

func TestGeneratorIDs(t *testing.T) {
	a, b := &node{"a"}, &node{"b"}
	list := []*node{a, b}
	m := map[string]int{"x": 1}

	got := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		obj := func(v *node) error {
			return seq(func() error { return g.WriteStartObjectFor(v) },
				func() error { return g.WriteObjectID(v) },
				func() error { return g.WriteName("name") },
				func() error { return g.WriteString(v.name) },
				g.WriteEndObject)
		}
		return seq(
			func() error { return g.WriteStartArrayFor(list, len(list)) },
			func() error { return g.WriteArrayID(list) },
			func() error { return obj(a) },
			func() error { return obj(b) },
			func() error { return obj(a) },
			g.WriteStartObject,
			func() error { return g.WriteObjectID(m) },
			g.WriteEndObject,
			g.WriteStartObject,
			func() error { return g.WriteObjectID(m) },
			g.WriteEndObject,
			g.WriteStartObject,
			func() error { return g.WriteObjectID(node{"value"}) },
			g.WriteEndObject,
			g.WriteEndArray,
		)
	})
	const want = `["0",` +
		`{"__cirJsonId__":"1","name":"a"},` +
		`{"__cirJsonId__":"2","name":"b"},` +
		`{"__cirJsonId__":"1","name":"a"},` +
		`{"__cirJsonId__":"3"},{"__cirJsonId__":"3"},` +
		`{"__cirJsonId__":"4"}]`
	if got != want {
		t.Errorf("Output:\n got: %s\nwant: %s", got, want)
	}

	// A referent cannot be both an array and an object.
	var buf bytes.Buffer
	g := cirjson.NewFactory().NewGenerator(&buf)
	if err := seq(g.WriteStartArray, func() error { return g.WriteArrayID(a) }); err != nil {
		t.Fatalf("WriteArrayID: unexpected error: %v", err)
	}
	if err := seq(g.WriteStartObject, func() error { return g.WriteObjectID(a) }); !errors.Is(err, cirjson.ErrStructure) {
		t.Errorf("WriteObjectID: got %v, want %v", err, cirjson.ErrStructure)
	}

	// A misplaced id write fails without assigning an id.
	got = generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		if err := seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) }); err != nil {
			return err
		}
		if err := g.WriteObjectID(a); !errors.Is(err, cirjson.ErrStructure) {
			t.Errorf("WriteObjectID in an array: got %v, want %v", err, cirjson.ErrStructure)
		}
		return seq(
			func() error { return g.WriteArrayID(a) },
			g.WriteStartObject,
			func() error { return g.WriteObjectID(b) },
			g.WriteEndObject,
			g.WriteEndArray,
		)
	})
	if want := `["0","1",{"__cirJsonId__":"2"}]`; got != want {
		t.Errorf("Output:\n got: %s\nwant: %s", got, want)
	}

	// Ids are per generator.
	got = generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		return seq(g.WriteStartObject, func() error { return g.WriteObjectID(b) }, g.WriteEndObject)
	})
	if want := `{"__cirJsonId__":"0"}`; got != want {
		t.Errorf("Output:\n got: %s\nwant: %s", got, want)
	}
}

func TestGeneratorBinary(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i * 7)
	}
	variants := []*cirjson.Base64Variant{
		cirjson.MIMENoLinefeeds, cirjson.MIME, cirjson.PEM, cirjson.ModifiedForURL,
	}
	for _, v := range variants {
		for _, n := range []int{0, 1, 2, 3, 4, 57, 1000} {
			out := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
				return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
					func() error { return g.WriteBinary(v, data[:n]) },
					func() error {
						_, err := g.WriteBinaryFrom(v, bytes.NewReader(data[:n]), -1)
						return err
					},
					func() error {
						_, err := g.WriteBinaryFrom(v, bytes.NewReader(data), n)
						return err
					},
					g.WriteEndArray)
			})
			if !jsoniter.Valid([]byte(out)) {
				t.Errorf("%v/%d: output is not valid JSON: %s", v, n, out)
			}

			p := cirjson.NewFactory().NewParser([]byte(out))
			mustNext(t, p, cirjson.StartArray)
			mustNext(t, p, cirjson.String)
			for i := range 3 {
				mustNext(t, p, cirjson.String)
				got, err := p.BinaryValue(v)
				if err != nil {
					t.Fatalf("%v/%d: value %d: BinaryValue: %v", v, n, i, err)
				}
				if !bytes.Equal(got, data[:n]) {
					t.Errorf("%v/%d: value %d: got %d bytes, want %d", v, n, i, len(got), n)
				}
			}
			mustNext(t, p, cirjson.EndArray)
		}
	}

	// Line breaks are escaped in the output.
	out := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		return g.WriteBinary(cirjson.MIME, data[:100])
	})
	if !strings.Contains(out, `\n`) {
		t.Errorf("MIME output has no line breaks: %s", out)
	}

	// A short read is an error.
	var buf bytes.Buffer
	g := cirjson.NewFactory().NewGenerator(&buf)
	if n, err := g.WriteBinaryFrom(nil, bytes.NewReader(data[:10]), 20); !errors.Is(err, cirjson.ErrIO) || n != 10 {
		t.Errorf("WriteBinaryFrom: got (%d, %v), want (10, %v)", n, err, cirjson.ErrIO)
	}
}

func TestGeneratorPretty(t *testing.T) {
	write := func(g cirjson.Generator) error {
		return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
			func() error { return g.WriteName("a") },
			g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
			func() error { return g.WriteInt(1) }, func() error { return g.WriteInt(2) },
			g.WriteEndArray,
			func() error { return g.WriteName("b") },
			g.WriteStartObject, func() error { return g.WriteObjectID(nil) }, g.WriteEndObject,
			g.WriteEndObject,
			func() error { return g.WriteInt(3) })
	}
	tests := []struct {
		name string
		pp   cirjson.PrettyPrinter
		want string
	}{
		{"Default", cirjson.NewDefaultPrettyPrinter(), `{
  "__cirJsonId__" : "0",
  "a" : [ "1", 1, 2 ],
  "b" : {
    "__cirJsonId__" : "2"
  }
} 3`},
		{"IndentArrays", &cirjson.DefaultPrettyPrinter{Indent: "\t", Linefeed: "\n", IndentArrays: true, RootSeparator: "\n"}, `{
	"__cirJsonId__" : "0",
	"a" : [
		"1",
		1,
		2
	],
	"b" : {
		"__cirJsonId__" : "2"
	}
}
3`},
		{"Minimal", cirjson.MinimalPrettyPrinter{RootSeparator: "|"},
			`{"__cirJsonId__":"0","a":["1",1,2],"b":{"__cirJsonId__":"2"}}|3`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
				g.SetPrettyPrinter(test.pp)
				return write(g)
			})
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Output (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestGeneratorSemantics(t *testing.T) {
	// The output of the generator decodes as the equivalent JSON value.
	out := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
			func() error { return g.WriteName("text") },
			func() error { return g.WriteString("line\none \"quoted\" \u2028 \x7f") },
			func() error { return g.WriteName("num") },
			func() error { return g.WriteFloat64(-1.5e-7) },
			func() error { return g.WriteName("list") },
			g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
			g.WriteNull, func() error { return g.WriteBool(true) },
			g.WriteEndArray,
			g.WriteEndObject)
	})
	if !jsoniter.Valid([]byte(out)) {
		t.Fatalf("Output is not valid JSON: %s", out)
	}
	var got any
	if err := gojson.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("Unmarshal %s: %v", out, err)
	}
	want := map[string]any{
		cirjson.IDName: "0",
		"text":         "line\none \"quoted\" \u2028 \x7f",
		"num":          -1.5e-7,
		"list":         []any{"1", nil, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decoded output (-want, +got):\n%s", diff)
	}
}

func TestCopyCurrentStructure(t *testing.T) {
	inputs := []string{
		`{"__cirJsonId__":"0","a":["1",1,2.5,"x\ty",true,false,null],"b":{"__cirJsonId__":"2","c":-3}}`,
		`["0",123456789012345678901234567890,-0.125,"é"]`,
		`"root" 17 null`,
	}
	for _, input := range inputs {
		for _, pt := range parsers {
			p := pt.new(cirjson.NewFactory(), input)
			got := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
				for {
					tok, err := p.NextToken()
					if err != nil {
						return err
					} else if tok == cirjson.None {
						return nil
					}
					if err := g.CopyCurrentStructure(p); err != nil {
						return err
					}
				}
			})
			if got != input {
				t.Errorf("%s: copy of %s:\n got: %s\nwant: %s", pt.name, input, got, input)
			}
		}
	}

	// Copying one event at a time gives the same result.
	const input = `{"__cirJsonId__":"0","k":["1",{"__cirJsonId__":"2","z":0}]}`
	p := cirjson.NewFactory().NewParser([]byte(input))
	got := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
		for {
			tok, err := p.NextToken()
			if err != nil {
				return err
			} else if tok == cirjson.None {
				return nil
			}
			if err := g.CopyCurrentEvent(p); err != nil {
				return err
			}
		}
	})
	if got != input {
		t.Errorf("CopyCurrentEvent:\n got: %s\nwant: %s", got, input)
	}
}

func TestRuneGenerator(t *testing.T) {
	write := func(g cirjson.Generator) error {
		return seq(g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
			func() error { return g.WriteName("s") },
			func() error { return g.WriteString("a\u00e9\U0001F600\x02") },
			func() error { return g.WriteName("r") },
			func() error { return g.WriteRunes([]rune("runes\n")) },
			func() error { return g.WriteName("b") },
			func() error { return g.WriteBinary(nil, []byte("hello")) },
			func() error { return g.WriteName("n") },
			func() error { return g.WriteFloat64(2.5) },
			g.WriteEndObject)
	}
	want := generate(t, cirjson.NewFactory(), write)

	var sb strings.Builder
	g := cirjson.NewFactory().NewRuneGenerator(&sb)
	if err := write(g); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got := sb.String(); got != want {
		t.Errorf("RuneGenerator output:\n got: %s\nwant: %s", got, want)
	}

	// Byte-oriented string writes are not supported, and write nothing.
	sb.Reset()
	g = cirjson.NewFactory().NewRuneGenerator(&sb)
	if err := seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) }); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := g.WriteUTF8String([]byte("abc")); !errors.Is(err, cirjson.ErrUnsupported) {
		t.Errorf("WriteUTF8String: got %v, want %v", err, cirjson.ErrUnsupported)
	}
	if err := g.WriteRawUTF8String([]byte("abc")); !errors.Is(err, cirjson.ErrUnsupported) {
		t.Errorf("WriteRawUTF8String: got %v, want %v", err, cirjson.ErrUnsupported)
	}
	if err := seq(g.WriteEndArray, g.Close); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if got, want := sb.String(), `["0"]`; got != want {
		t.Errorf("RuneGenerator output:\n got: %s\nwant: %s", got, want)
	}
}

func TestGeneratorClose(t *testing.T) {
	t.Run("AutoCloseContent", func(t *testing.T) {
		got := generate(t, cirjson.NewFactory(), func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) },
				g.WriteStartObject, func() error { return g.WriteObjectID(nil) },
				func() error { return g.WriteName("open") })
		})
		if want := `["0",{"__cirJsonId__":"1","open":null}]`; got != want {
			t.Errorf("Output:\n got: %s\nwant: %s", got, want)
		}
	})

	t.Run("NoAutoCloseContent", func(t *testing.T) {
		got := generate(t, cirjson.NewFactory().DisableWrite(cirjson.AutoCloseContent), func(g cirjson.Generator) error {
			return seq(g.WriteStartArray, func() error { return g.WriteArrayID(nil) })
		})
		if want := `["0"`; got != want {
			t.Errorf("Output:\n got: %s\nwant: %s", got, want)
		}
	})

	t.Run("Target", func(t *testing.T) {
		w := &closeWriter{}
		g := cirjson.NewFactory().NewGenerator(w)
		if err := g.WriteString("x"); err != nil {
			t.Fatalf("WriteString: %v", err)
		}
		if w.Len() != 0 || g.OutputBuffered() != 3 {
			t.Errorf("Before Flush: wrote %d, buffered %d; want 0, 3", w.Len(), g.OutputBuffered())
		}
		if err := g.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
		if w.String() != `"x"` || w.flushed != 1 {
			t.Errorf("After Flush: got %q (flushed %d), want %q (flushed 1)", w.String(), w.flushed, `"x"`)
		}
		if err := g.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if !w.closed || !g.IsClosed() {
			t.Errorf("After Close: target closed %v, generator closed %v", w.closed, g.IsClosed())
		}
		if err := g.WriteNull(); err == nil {
			t.Error("WriteNull after Close: got no error")
		}
	})
}

type closeWriter struct {
	bytes.Buffer
	closed  bool
	flushed int
}

func (c *closeWriter) Close() error { c.closed = true; return nil }
func (c *closeWriter) Flush() error { c.flushed++; return nil }
