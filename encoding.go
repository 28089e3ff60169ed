// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

import (
	"errors"
	"strings"

	"github.com/creachadair/cirjson/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a CirJSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(AppendQuote(nil, src)) }

// AppendQuote appends the CirJSON string value of src to dst, and returns
// the extended slice.
func AppendQuote(dst []byte, src string) []byte {
	dst = append(dst, '"')
	dst = escape.AppendQuoted(dst, mem.S(src))
	return append(dst, '"')
}

// Unquote decodes a CirJSON string value.  Double quotation marks are
// removed, and escape sequences are replaced with their unescaped
// equivalents.
//
// Unpaired surrogate escapes are replaced by the Unicode replacement rune.
// Unquote reports an error for an invalid or incomplete escape sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
