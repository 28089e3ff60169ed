// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape_test

import (
	"strings"
	"testing"

	"github.com/creachadair/cirjson/internal/escape"
	"go4.org/mem"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{`a "quoted" \ word`, `a \"quoted\" \\ word`},
		{"tab\there\nnl", `tab\there\nnl`},
		{"\x00\x1f", `\u0000\u001F`},
		{"café ☕", "café ☕"},
		{"a/b", "a/b"},
	}
	for _, test := range tests {
		if got := string(escape.Quote(mem.S(test.input))); got != test.want {
			t.Errorf("Quote(%q): got %#q, want %#q", test.input, got, test.want)
		}
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", ""},
		{"no escapes", "no escapes"},
		{`\"\\\/\b\f\n\r\t`, "\"\\/\b\f\n\r\t"},
		{`\u0041\u00e9`, "Aé"},
		{`\ud83d\ude00!`, "\U0001f600!"},
		{`\ud83d alone`, "\ufffd alone"},
		{`\ude00`, "\ufffd"},
	}
	for _, test := range tests {
		got, err := escape.Unquote(mem.S(test.input))
		if err != nil {
			t.Errorf("Unquote(%#q): unexpected error: %v", test.input, err)
		} else if string(got) != test.want {
			t.Errorf("Unquote(%#q): got %q, want %q", test.input, got, test.want)
		}
	}

	for _, bad := range []string{`\`, `\x`, `\u12`, `\u12g4`} {
		if got, err := escape.Unquote(mem.S(bad)); err == nil {
			t.Errorf("Unquote(%#q): got %q, want error", bad, got)
		}
	}
}

func TestPlainPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"abc", 3},
		{"abcdefghijklmnop", 16},
		{"abcdefgh\"ijkl", 8},
		{"abcdefghij\\kl", 10},
		{"abcdefghijk\nl", 11},
		{"abcdéfgh", 4},
		{strings.Repeat("x", 37) + "\x7f", 38},
	}
	for _, test := range tests {
		if got := escape.PlainPrefix(test.input); got != test.want {
			t.Errorf("PlainPrefix(%q): got %d, want %d", test.input, got, test.want)
		}
		if got := escape.PlainPrefix([]byte(test.input)); got != test.want {
			t.Errorf("PlainPrefix([]byte %q): got %d, want %d", test.input, got, test.want)
		}
	}
}

func TestTables(t *testing.T) {
	for _, c := range []rune{'0', '9', 'a', 'F'} {
		if escape.HexValue(c) < 0 {
			t.Errorf("HexValue(%q): got invalid", c)
		}
	}
	if got := escape.HexValue('g'); got >= 0 {
		t.Errorf("HexValue(g): got %d, want < 0", got)
	}
	if escape.OutputCodes['"'] != '"' || escape.OutputCodes['\n'] != 'n' || escape.OutputCodes[0x01] != escape.Generic {
		t.Error("OutputCodes has wrong standard escapes")
	}
	if escape.OutputCodesWithSlash['/'] != '/' || escape.OutputCodes['/'] != escape.None {
		t.Error("Slash escape tables are wrong")
	}
	if escape.InputCodesUTF8['"'] != escape.InputSpecial || escape.InputCodesUTF8[0xC3] != 2 || escape.InputCodesUTF8[0x80] != escape.InputInvalid {
		t.Error("InputCodesUTF8 has wrong classes")
	}
}
