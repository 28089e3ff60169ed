// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package numio_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/creachadair/cirjson/internal/numio"
	"github.com/shopspring/decimal"
)

func TestParseIntegral(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"-0", 0},
		{"7", 7},
		{"-123456789", -123456789},
		{"1234567890", 1234567890},
		{"-999999999999999999", -999999999999999999},
		{"100000000000000000", 100000000000000000},
	}
	for _, test := range tests {
		if got := numio.ParseLong([]byte(test.input)); got != test.want {
			t.Errorf("ParseLong(%q): got %d, want %d", test.input, got, test.want)
		}
		if numio.InIntRange(test.want) && len(strings.TrimPrefix(test.input, "-")) <= 9 {
			if got := numio.ParseInt([]byte(test.input)); int64(got) != test.want {
				t.Errorf("ParseInt(%q): got %d, want %d", test.input, got, test.want)
			}
		}
	}
}

func TestLongRange(t *testing.T) {
	tests := []struct {
		digits string
		neg    bool
		want   bool
	}{
		{"9223372036854775807", false, true},
		{"9223372036854775808", false, false},
		{"9223372036854775808", true, true},
		{"9223372036854775809", true, false},
		{"1000000000000000000", false, true},
		{"10000000000000000000", false, false},
		{"99", true, true},
	}
	for _, test := range tests {
		if got := numio.InLongRange([]byte(test.digits), test.neg); got != test.want {
			t.Errorf("InLongRange(%q, %v): got %v, want %v", test.digits, test.neg, got, test.want)
		}
	}

	if got := numio.ParseLong19([]byte("-9223372036854775808")); got != math.MinInt64 {
		t.Errorf("ParseLong19 min: got %d, want %d", got, int64(math.MinInt64))
	}
	if got := numio.ParseLong19([]byte("9223372036854775807")); got != math.MaxInt64 {
		t.Errorf("ParseLong19 max: got %d, want %d", got, int64(math.MaxInt64))
	}
}

func TestParseBigInt(t *testing.T) {
	const big = "123456789012345678901234567890"
	v, err := numio.ParseBigInt("-" + big)
	if err != nil {
		t.Fatalf("ParseBigInt: unexpected error: %v", err)
	}
	if got := v.String(); got != "-"+big {
		t.Errorf("ParseBigInt: got %s, want -%s", got, big)
	}
	if _, err := numio.ParseBigInt("12x"); !errors.Is(err, numio.ErrSyntax) {
		t.Errorf("ParseBigInt(12x): got %v, want %v", err, numio.ErrSyntax)
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"0.5", 0.5},
		{"-2.5e3", -2500},
		{"1e-2", 0.01},
		{"+Infinity", math.Inf(1)},
		{"-INF", math.Inf(-1)},
		{"0.1", 0.1},
	}
	for _, test := range tests {
		for _, fast := range []bool{false, true} {
			got, err := numio.ParseFloat64(test.input, fast)
			if err != nil {
				t.Errorf("ParseFloat64(%q, %v): unexpected error: %v", test.input, fast, err)
			} else if got != test.want {
				t.Errorf("ParseFloat64(%q, %v): got %v, want %v", test.input, fast, got, test.want)
			}
		}
	}

	if v, err := numio.ParseFloat64("NaN", false); err != nil || !math.IsNaN(v) {
		t.Errorf("ParseFloat64(NaN): got %v, %v; want NaN", v, err)
	}
	if v, err := numio.ParseFloat32("0.1", false); err != nil || v != float32(0.1) {
		t.Errorf("ParseFloat32(0.1): got %v, %v; want 0.1", v, err)
	}
	if _, err := numio.ParseFloat64("1.2.3", true); !errors.Is(err, numio.ErrSyntax) {
		t.Errorf("ParseFloat64(1.2.3): got %v, want %v", err, numio.ErrSyntax)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.25", "1.25"},
		{"-0.001", "-0.001"},
		{"12e2", "1200"},
		{"1.5E-3", "0.0015"},
		{"+7", "7"},
	}
	for _, test := range tests {
		want := decimal.RequireFromString(test.want)
		for _, fast := range []bool{false, true} {
			got, err := numio.ParseDecimal(test.input, fast)
			if err != nil {
				t.Errorf("ParseDecimal(%q, %v): unexpected error: %v", test.input, fast, err)
			} else if !got.Equal(want) {
				t.Errorf("ParseDecimal(%q, %v): got %v, want %v", test.input, fast, got, want)
			}
		}
	}
	if _, err := numio.ParseDecimal("NaN", false); !errors.Is(err, numio.ErrSyntax) {
		t.Errorf("ParseDecimal(NaN): got %v, want %v", err, numio.ErrSyntax)
	}
}

func TestAppendFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{0.001, "0.001"},
		{1e7, "1E+07"},
		{1.5e-10, "1.5E-10"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, test := range tests {
		if got := string(numio.AppendFloat64(nil, test.input)); got != test.want {
			t.Errorf("AppendFloat64(%v): got %q, want %q", test.input, got, test.want)
		}
	}
	if got := string(numio.AppendFloat32(nil, 0.1)); got != "0.1" {
		t.Errorf("AppendFloat32(0.1): got %q, want 0.1", got)
	}
}

func TestAppendDecimal(t *testing.T) {
	tests := []struct {
		input string
		plain bool
		want  string
	}{
		{"1.25", false, "1.25"},
		{"-0.000001", false, "-0.000001"},
		{"0.0000001", false, "1E-7"},
		{"0.0000001", true, "0.0000001"},
		{"1200", false, "1200"},
	}
	for _, test := range tests {
		d := decimal.RequireFromString(test.input)
		if got := string(numio.AppendDecimal(nil, d, test.plain)); got != test.want {
			t.Errorf("AppendDecimal(%s, %v): got %q, want %q", test.input, test.plain, got, test.want)
		}
	}

	big := decimal.New(15, 3) // 15E+3
	if got := string(numio.AppendDecimal(nil, big, false)); got != "1.5E+4" {
		t.Errorf("AppendDecimal(15E3): got %q, want 1.5E+4", got)
	}
	if got := string(numio.AppendDecimal(nil, big, true)); got != "15000" {
		t.Errorf("AppendDecimal(15E3, plain): got %q, want 15000", got)
	}
}
