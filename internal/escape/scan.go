// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package escape

import "golang.org/x/sys/cpu"

// wordScan enables the 8-byte scan of PlainPrefix.
var wordScan = cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD

const (
	lo7  = 0x0101010101010101
	hi7  = 0x8080808080808080
	quot = lo7 * '"'
	bksl = lo7 * '\\'
	ctrl = lo7 * 0x20
)

// hasZero reports whether any byte of x is zero.
func hasZero(x uint64) bool { return (x-lo7)&^x&hi7 != 0 }

// PlainPrefix returns the length of the longest prefix of s made of ASCII
// characters that OutputCodes writes without escaping.
func PlainPrefix[T string | []byte](s T) int {
	i := 0
	if wordScan {
		for ; i+8 <= len(s); i += 8 {
			x := uint64(s[i]) | uint64(s[i+1])<<8 | uint64(s[i+2])<<16 | uint64(s[i+3])<<24 |
				uint64(s[i+4])<<32 | uint64(s[i+5])<<40 | uint64(s[i+6])<<48 | uint64(s[i+7])<<56
			if x&hi7 != 0 || (x-ctrl)&^x&hi7 != 0 || hasZero(x^quot) || hasZero(x^bksl) {
				break
			}
		}
	}
	for ; i < len(s); i++ {
		if c := s[i]; c >= 0x80 || OutputCodes[c] != None {
			break
		}
	}
	return i
}
