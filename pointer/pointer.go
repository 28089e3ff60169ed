// Package pointer implements JSON Pointer expressions (RFC 6901), used to
// address a position in a CirJSON document.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

/*
Grammar:

  pointer = *( "/" token )
    token = *( unescaped / escaped )
  escaped = "~" ( "0" / "1" )

A token that is a non-negative decimal integer without leading zeros also
matches the array element at that index. The reference id of an array is not
counted: index 0 is the first element after the id.

Source:
  https://www.rfc-editor.org/rfc/rfc6901
*/

// A Pointer is a parsed JSON Pointer. The empty Pointer addresses the root.
type Pointer []Step

// A Step is a single reference token of a Pointer.
type Step struct {
	Name  string // the unescaped token
	Index int    // the array index denoted by Name, or -1
}

// Parse parses s as a JSON Pointer.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return nil, nil
	}
	t, ok := strings.CutPrefix(s, "/")
	if !ok {
		return nil, errors.New("pointer must be empty or begin with '/'")
	}
	var steps Pointer
	for {
		tok, rest, more := strings.Cut(t, "/")
		name, err := unescape(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid token %q: %w", tok, err)
		}
		steps = append(steps, Step{Name: name, Index: parseIndex(name)})
		if !more {
			return steps, nil
		}
		t = rest
	}
}

// MustParse parses s as a JSON Pointer, and panics if it is invalid.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("pointer: %v", err))
	}
	return p
}

func unescape(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	var buf strings.Builder
	for i := 0; i < len(tok); i++ {
		if tok[i] != '~' {
			buf.WriteByte(tok[i])
			continue
		}
		i++
		if i == len(tok) {
			return "", errors.New("incomplete escape")
		}
		switch tok[i] {
		case '0':
			buf.WriteByte('~')
		case '1':
			buf.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape ~%c", tok[i])
		}
	}
	return buf.String(), nil
}

// parseIndex returns the array index denoted by s, or -1.
func parseIndex(s string) int {
	if s == "" || len(s) > 10 || (len(s) > 1 && s[0] == '0') {
		return -1
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return -1
	}
	return int(v)
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p Pointer) String() string {
	var buf strings.Builder
	for _, s := range p {
		buf.WriteByte('/')
		buf.WriteString(escaper.Replace(s.Name))
	}
	return buf.String()
}

// IsEmpty reports whether p addresses the root.
func (p Pointer) IsEmpty() bool { return len(p) == 0 }

// Head returns the first step of p. It panics if p is empty.
func (p Pointer) Head() Step { return p[0] }

// Tail returns p without its first step, or nil if p is empty.
func (p Pointer) Tail() Pointer {
	if len(p) == 0 {
		return nil
	}
	return p[1:]
}

// MatchesProperty reports whether the first step of p selects the named
// property of an object.
func (p Pointer) MatchesProperty(name string) bool {
	return len(p) != 0 && p[0].Name == name
}

// MatchesElement reports whether the first step of p selects the element of
// an array at index i.
func (p Pointer) MatchesElement(i int) bool {
	return len(p) != 0 && i >= 0 && p[0].Index == i
}

// AppendProperty returns a new pointer extending p with the named property.
func (p Pointer) AppendProperty(name string) Pointer {
	return append(p[:len(p):len(p)], Step{Name: name, Index: parseIndex(name)})
}

// AppendIndex returns a new pointer extending p with the array index i.
func (p Pointer) AppendIndex(i int) Pointer {
	return append(p[:len(p):len(p)], Step{Name: strconv.Itoa(i), Index: i})
}
