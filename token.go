// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package cirjson

// IDName is the reserved property name carrying the reference id of an object.
// It must be the first property of every object.
const IDName = "__cirJsonId__"

// Token is the type of a syntactic unit recognized by a Parser.
//
// A Token carries no payload; the text and value of the current token are
// retrieved from the parser, and remain valid only until the next call that
// advances the parser.
type Token byte

// Constants defining the valid Token values.
const (
	None           Token = iota // no token: before the first token or at end of input
	StartObject                 // start of an object "{"
	EndObject                   // end of an object "}"
	StartArray                  // start of an array "["
	EndArray                    // end of an array "]"
	PropertyName                // a property name
	IDPropertyName              // the __cirJsonId__ name that opens an object
	String                      // a string value
	Int                         // number: integer with no fraction or exponent
	Float                       // number with fraction and/or exponent, or NaN/Infinity
	True                        // constant: true
	False                       // constant: false
	Null                        // constant: null
	EmbeddedObject              // an opaque embedded value, such as binary data
)

var tokenStr = [...]string{
	None:           "none",
	StartObject:    `"{"`,
	EndObject:      `"}"`,
	StartArray:     `"["`,
	EndArray:       `"]"`,
	PropertyName:   "property name",
	IDPropertyName: "id property name",
	String:         "string",
	Int:            "integer",
	Float:          "float",
	True:           "true",
	False:          "false",
	Null:           "null",
	EmbeddedObject: "embedded object",
}

// tokenText is the canonical text of tokens that have one.
var tokenText = [...]string{
	StartObject: "{",
	EndObject:   "}",
	StartArray:  "[",
	EndArray:    "]",
	True:        "true",
	False:       "false",
	Null:        "null",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return "invalid token"
	}
	return tokenStr[v]
}

// canonicalText returns the fixed text of t, or "" if t has variable text.
func (t Token) canonicalText() string {
	if int(t) < len(tokenText) {
		return tokenText[t]
	}
	return ""
}

// IsStructStart reports whether t opens an object or array.
func (t Token) IsStructStart() bool { return t == StartObject || t == StartArray }

// IsStructEnd reports whether t closes an object or array.
func (t Token) IsStructEnd() bool { return t == EndObject || t == EndArray }

// IsNumeric reports whether t is a number.
func (t Token) IsNumeric() bool { return t == Int || t == Float }

// IsBool reports whether t is true or false.
func (t Token) IsBool() bool { return t == True || t == False }

// IsName reports whether t is a property name, including the id name.
func (t Token) IsName() bool { return t == PropertyName || t == IDPropertyName }

// IsScalar reports whether t is a scalar value.
func (t Token) IsScalar() bool { return t >= String && t <= EmbeddedObject }

// NumberType identifies the natural Go representation of a numeric token.
type NumberType byte

// Constants defining the valid NumberType values.
const (
	NumberInt        NumberType = iota + 1 // fits int32
	NumberLong                             // fits int64
	NumberBigInteger                       // needs *big.Int
	NumberFloat                            // float32
	NumberDouble                           // float64
	NumberBigDecimal                       // decimal.Decimal
)

func (n NumberType) String() string {
	switch n {
	case NumberInt:
		return "int"
	case NumberLong:
		return "long"
	case NumberBigInteger:
		return "big integer"
	case NumberFloat:
		return "float"
	case NumberDouble:
		return "double"
	case NumberBigDecimal:
		return "big decimal"
	}
	return "unknown"
}
