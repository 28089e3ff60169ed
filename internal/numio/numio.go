// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package numio implements parsing and formatting helpers for the numeric
// text of CirJSON documents.
//
// Integral text is decoded by length: up to 9 digits accumulate directly as
// an int32, 10 to 18 digits are split at a 9-digit boundary and combined as
// high*1e9 + low, 19 digits are compared against the textual bounds of int64,
// and anything longer is delegated to math/big. Floating-point and decimal
// text is delegated to strconv, math/big or github.com/shopspring/decimal.
package numio

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	minLongText = "9223372036854775808" // magnitude of math.MinInt64
	maxLongText = "9223372036854775807"
)

// ParseInt decodes b, which must consist of an optional '-' followed by 1 to
// 9 decimal digits.
func ParseInt(b []byte) int32 {
	neg := b[0] == '-'
	if neg {
		b = b[1:]
	}
	v := int32(parseDigits(b))
	if neg {
		return -v
	}
	return v
}

func parseDigits(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v*10 + int64(c-'0')
	}
	return v
}

// ParseLong decodes b, which must consist of an optional '-' followed by up to
// 18 decimal digits. Texts longer than 9 digits are decoded as two chunks.
func ParseLong(b []byte) int64 {
	neg := b[0] == '-'
	if neg {
		b = b[1:]
	}
	var v int64
	if n := len(b) - 9; n > 0 {
		v = int64(ParseInt(b[:n]))*1_000_000_000 + int64(ParseInt(b[n:]))
	} else {
		v = int64(ParseInt(b))
	}
	if neg {
		return -v
	}
	return v
}

// ParseLong19 decodes b, an optional '-' followed by exactly 19 digits whose
// value is known to be within the range of int64 (see InLongRange).
func ParseLong19(b []byte) int64 {
	neg := b[0] == '-'
	if neg {
		b = b[1:]
	}
	var u uint64
	for _, c := range b {
		u = u*10 + uint64(c-'0')
	}
	if neg {
		return int64(-u) // -u wraps to math.MinInt64 at the boundary
	}
	return int64(u)
}

// InLongRange reports whether the unsigned decimal digits, negated if neg is
// true, denote a value within the range of int64.
func InLongRange(digits []byte, neg bool) bool {
	bound := maxLongText
	if neg {
		bound = minLongText
	}
	switch {
	case len(digits) < len(bound):
		return true
	case len(digits) > len(bound):
		return false
	}
	for i := range len(bound) {
		if d := int(digits[i]) - int(bound[i]); d != 0 {
			return d < 0
		}
	}
	return true
}

// InIntRange reports whether v is within the range of int32.
func InIntRange(v int64) bool { return v >= math.MinInt32 && v <= math.MaxInt32 }

// ErrSyntax reports text that does not denote a number of the requested type.
var ErrSyntax = errors.New("malformed number")

// ParseBigInt decodes s as an arbitrary-precision integer.
func ParseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(s, "+"), 10)
	if !ok {
		return nil, ErrSyntax
	}
	return v, nil
}

// nonNumeric returns the value of the non-numeric tokens accepted as floats.
func nonNumeric(s string) (float64, bool) {
	switch s {
	case "NaN":
		return math.NaN(), true
	case "Infinity", "+Infinity", "+INF", "INF":
		return math.Inf(1), true
	case "-Infinity", "-INF":
		return math.Inf(-1), true
	}
	return 0, false
}

// IsNonNumeric reports whether s is one of the NaN or infinity tokens.
func IsNonNumeric(s string) bool {
	_, ok := nonNumeric(s)
	return ok
}

// ParseFloat64 decodes s as a float64. If fast is true it uses the shortest
// round-trip decoder of strconv; otherwise the value is computed exactly with
// math/big and then rounded to nearest even.
func ParseFloat64(s string, fast bool) (float64, error) {
	if v, ok := nonNumeric(s); ok {
		return v, nil
	}
	if fast {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, ErrSyntax
		}
		return v, nil
	}
	f, _, err := big.ParseFloat(s, 10, 53, big.ToNearestEven)
	if err != nil {
		return 0, ErrSyntax
	}
	v, _ := f.Float64()
	return v, nil
}

// ParseFloat32 decodes s as a float32, like ParseFloat64.
func ParseFloat32(s string, fast bool) (float32, error) {
	if v, ok := nonNumeric(s); ok {
		return float32(v), nil
	}
	if fast {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, ErrSyntax
		}
		return float32(v), nil
	}
	f, _, err := big.ParseFloat(s, 10, 24, big.ToNearestEven)
	if err != nil {
		return 0, ErrSyntax
	}
	v, _ := f.Float32()
	return v, nil
}

// ParseDecimal decodes s as an arbitrary-precision decimal. If fast is true
// the text is handed to decimal.NewFromString; otherwise the unscaled value
// and exponent are split out and assembled explicitly.
func ParseDecimal(s string, fast bool) (decimal.Decimal, error) {
	if IsNonNumeric(s) {
		return decimal.Decimal{}, ErrSyntax
	}
	s = strings.TrimPrefix(s, "+")
	if fast {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, ErrSyntax
		}
		return d, nil
	}
	mant, exp := s, int64(0)
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil {
			return decimal.Decimal{}, ErrSyntax
		}
		mant, exp = s[:i], e
	}
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		exp -= int64(len(mant) - i - 1)
		mant = mant[:i] + mant[i+1:]
	}
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		return decimal.Decimal{}, ErrSyntax
	}
	coeff, ok := new(big.Int).SetString(mant, 10)
	if !ok {
		return decimal.Decimal{}, ErrSyntax
	}
	return decimal.NewFromBigInt(coeff, int32(exp)), nil
}

// AppendFloat64 appends the shortest text that round-trips v. Magnitudes in
// [1e-3, 1e7) use plain notation, others scientific; integral values keep a
// ".0" suffix so that they read back as floating-point.
func AppendFloat64(dst []byte, v float64) []byte { return appendFloat(dst, v, 64) }

// AppendFloat32 is AppendFloat64 for float32 values.
func AppendFloat32(dst []byte, v float32) []byte { return appendFloat(dst, float64(v), 32) }

func appendFloat(dst []byte, v float64, bitSize int) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "NaN"...)
	case math.IsInf(v, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(v, -1):
		return append(dst, "-Infinity"...)
	}
	start := len(dst)
	if abs := math.Abs(v); abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		dst = strconv.AppendFloat(dst, v, 'f', -1, bitSize)
	} else {
		dst = strconv.AppendFloat(dst, v, 'E', -1, bitSize)
	}
	for _, c := range dst[start:] {
		if c == '.' || c == 'E' {
			return dst
		}
	}
	return append(dst, '.', '0')
}

// AppendDecimal appends the text of d. If plain is true the value is written
// in positional notation; otherwise scientific notation is used for values
// with a positive exponent or very small magnitude.
func AppendDecimal(dst []byte, d decimal.Decimal, plain bool) []byte {
	coeff := d.Coefficient()
	if coeff.Sign() < 0 {
		dst = append(dst, '-')
		coeff.Neg(coeff)
	}
	digits := coeff.String()
	exp := int(d.Exponent())
	adjusted := len(digits) - 1 + exp
	if plain || (exp <= 0 && adjusted >= -6) {
		return appendPlain(dst, digits, exp)
	}
	dst = append(dst, digits[0])
	if len(digits) > 1 {
		dst = append(dst, '.')
		dst = append(dst, digits[1:]...)
	}
	dst = append(dst, 'E')
	if adjusted >= 0 {
		dst = append(dst, '+')
	}
	return strconv.AppendInt(dst, int64(adjusted), 10)
}

func appendPlain(dst []byte, digits string, exp int) []byte {
	if exp >= 0 {
		dst = append(dst, digits...)
		if digits != "0" {
			for range exp {
				dst = append(dst, '0')
			}
		}
		return dst
	}
	scale := -exp
	if len(digits) > scale {
		dst = append(dst, digits[:len(digits)-scale]...)
		dst = append(dst, '.')
		return append(dst, digits[len(digits)-scale:]...)
	}
	dst = append(dst, '0', '.')
	for range scale - len(digits) {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}
