// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/creachadair/cirjson"
)

func TestQuoteUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", `""`},
		{"plain", `"plain"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"\x00\t\n", `"\u0000\t\n"`},
		{"é😀", `"é😀"`},
	}
	for _, test := range tests {
		got := cirjson.Quote(test.input)
		if got != test.want {
			t.Errorf("Quote(%q): got %#q, want %#q", test.input, got, test.want)
		}
		dec, err := cirjson.Unquote(got)
		if err != nil {
			t.Errorf("Unquote(%#q): unexpected error: %v", got, err)
		} else if string(dec) != test.input {
			t.Errorf("Unquote(%#q): got %q, want %q", got, dec, test.input)
		}
	}

	for _, bad := range []string{``, `"`, `abc`, `"\x"`, `"\u12"`} {
		if got, err := cirjson.Unquote(bad); err == nil {
			t.Errorf("Unquote(%#q): got %q, want error", bad, got)
		}
	}
}

func TestSerializedString(t *testing.T) {
	s := cirjson.NewSerializedString("tab\t\"é\"")
	if got, want := string(s.QuotedUTF8()), `tab\t\"é\"`; got != want {
		t.Errorf("QuotedUTF8: got %#q, want %#q", got, want)
	}
	if got, want := string(s.QuotedRunes()), `tab\t\"é\"`; got != want {
		t.Errorf("QuotedRunes: got %#q, want %#q", got, want)
	}
	if s.Value() != "tab\t\"é\"" || s.String() != s.Value() {
		t.Errorf("Value: got %q", s.Value())
	}
	if got := s.CharLength(); got != 7 {
		t.Errorf("CharLength: got %d, want 7", got)
	}
	if got := string(s.AppendQuotedUTF8([]byte("x:"))); got != `x:tab\t\"é\"` {
		t.Errorf("AppendQuotedUTF8: got %#q", got)
	}
}

func TestBase64Variants(t *testing.T) {
	data := []byte("Many hands make light work, and many more make it lighter still.")
	tests := []struct {
		v    *cirjson.Base64Variant
		want string
	}{
		{cirjson.MIMENoLinefeeds, "TWFueSBoYW5kcyBtYWtlIGxpZ2h0IHdvcmssIGFuZCBtYW55IG1vcmUgbWFrZSBpdCBsaWdodGVyIHN0aWxsLg=="},
		{cirjson.PEM, "TWFueSBoYW5kcyBtYWtlIGxpZ2h0IHdvcmssIGFuZCBtYW55IG1vcmUgbWFrZSBp\ndCBsaWdodGVyIHN0aWxsLg=="},
		{cirjson.ModifiedForURL, "TWFueSBoYW5kcyBtYWtlIGxpZ2h0IHdvcmssIGFuZCBtYW55IG1vcmUgbWFrZSBpdCBsaWdodGVyIHN0aWxsLg"},
	}
	for _, test := range tests {
		t.Run(test.v.Name(), func(t *testing.T) {
			got := test.v.Encode(data)
			if got != test.want {
				t.Errorf("Encode:\n got: %s\nwant: %s", got, test.want)
			}
			dec, err := test.v.Decode(got)
			if err != nil {
				t.Fatalf("Decode: unexpected error: %v", err)
			}
			if string(dec) != string(data) {
				t.Errorf("Decode: got %q, want %q", dec, data)
			}
		})
	}

	if got := cirjson.ModifiedForURL.Encode([]byte{0xfb, 0xff}); got != "-_8" {
		t.Errorf("ModifiedForURL: got %q, want %q", got, "-_8")
	}
	if got := cirjson.MIME.Encode(make([]byte, 60)); strings.Count(got, "\n") != 1 {
		t.Errorf("MIME: got %q, want one line break", got)
	}
}

func TestBase64Padding(t *testing.T) {
	tests := []struct {
		v     *cirjson.Base64Variant
		input string
		ok    bool
	}{
		{cirjson.MIME, "aGk=", true},
		{cirjson.MIME, "aGk", false},
		{cirjson.MIME.WithReadPadding(cirjson.PaddingAllowed), "aGk", true},
		{cirjson.MIME.WithReadPadding(cirjson.PaddingAllowed), "aGk=", true},
		{cirjson.MIME.WithReadPadding(cirjson.PaddingForbidden), "aGk=", false},
		{cirjson.ModifiedForURL, "aGk", true},
		{cirjson.ModifiedForURL, "aGk=", false},
		{cirjson.MIME, "a===", false},
		{cirjson.MIME, "aG=k", false},
		{cirjson.MIME, "a", false},
		{cirjson.MIME, "aG k=", false},
		{cirjson.MIME, "aGVs\nbG8=", true},
		{cirjson.MIME, "aGk!", false},
	}
	for _, test := range tests {
		got, err := test.v.Decode(test.input)
		if test.ok {
			if err != nil {
				t.Errorf("%v Decode(%q): unexpected error: %v", test.v, test.input, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("%v Decode(%q): got %q, want error", test.v, test.input, got)
		} else if !errors.Is(err, cirjson.ErrSyntax) {
			t.Errorf("%v Decode(%q): got %v, want %v", test.v, test.input, err, cirjson.ErrSyntax)
		}
	}

	v := cirjson.ModifiedForURL.WithWritePadding(true)
	if !v.UsesPadding() || v.PaddingChar() != '=' {
		t.Errorf("WithWritePadding: got padding %v %q", v.UsesPadding(), v.PaddingChar())
	}
	if got := v.Encode([]byte("hi")); got != "aGk=" {
		t.Errorf("Encode with padding: got %q, want %q", got, "aGk=")
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got  interface{ String() string }
		want string
	}{
		{cirjson.None, "none"},
		{cirjson.StartObject, `"{"`},
		{cirjson.IDPropertyName, "id property name"},
		{cirjson.Float, "float"},
		{cirjson.AllowJavaComments | cirjson.AllowTrailingComma, "AllowJavaComments|AllowTrailingComma"},
		{cirjson.WriteFeature(0), "none"},
		{cirjson.EscapeNonASCII, "EscapeNonASCII"},
		{cirjson.ObjectContext, "Object"},
		{cirjson.RootContext, "root"},
	}
	for _, test := range tests {
		if s := test.got.String(); s != test.want {
			t.Errorf("String: got %q, want %q", s, test.want)
		}
	}

	kinds := []cirjson.Kind{
		cirjson.ErrSyntax, cirjson.ErrStructure, cirjson.ErrConstraint, cirjson.ErrDuplicateProperty,
		cirjson.ErrCoercion, cirjson.ErrEncoding, cirjson.ErrIO, cirjson.ErrUnsupported,
	}
	for _, k := range kinds {
		if s := k.Error(); s == "" || s == "unknown error" {
			t.Errorf("Kind %d: got %q", int(k), s)
		}
	}
}
