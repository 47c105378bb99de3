package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// IntOrString holds a column that is an integer when its text is purely
// decimal digits, and the original text otherwise.
type IntOrString struct {
	IsInt bool
	Int   int
	Str   string
}

// IntValue returns an integer variant
func IntValue(n int) IntOrString {
	return IntOrString{IsInt: true, Int: n}
}

// StringValue returns a string variant
func StringValue(s string) IntOrString {
	return IntOrString{Str: s}
}

// ParseIntOrString coerces s to an integer only if every rune is a decimal
// digit (any script, e.g. full-width ０-９) and the value fits in an int.
// Anything else is kept verbatim.
func ParseIntOrString(s string) IntOrString {
	if !IsDigits(s) {
		return StringValue(s)
	}
	n, err := strconv.Atoi(asciiDigits(s))
	if err != nil {
		return StringValue(s)
	}
	return IntValue(n)
}

// IsDigits reports whether s is non-empty and made only of Unicode decimal
// digits (category Nd)
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.Is(unicode.Nd, r) {
			return false
		}
	}
	return true
}

// asciiDigits rewrites a string of decimal digits as ASCII 0-9
func asciiDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteByte(byte('0' + digitValue(r)))
	}
	return b.String()
}

// digitValue returns the value of a decimal digit rune. Nd digits are
// encoded in contiguous runs of ten starting at zero.
func digitValue(r rune) int {
	if r >= '0' && r <= '9' {
		return int(r - '0')
	}
	start := r
	for unicode.Is(unicode.Nd, start-1) {
		start--
	}
	return int(r-start) % 10
}

// Equal compares values within the same representation only
func (v IntOrString) Equal(other IntOrString) bool {
	if v.IsInt != other.IsInt {
		return false
	}
	if v.IsInt {
		return v.Int == other.Int
	}
	return v.Str == other.Str
}

func (v IntOrString) String() string {
	if v.IsInt {
		return strconv.Itoa(v.Int)
	}
	return v.Str
}

// MarshalJSON writes a JSON number for the integer variant and a string otherwise
func (v IntOrString) MarshalJSON() ([]byte, error) {
	if v.IsInt {
		return []byte(strconv.Itoa(v.Int)), nil
	}
	return json.Marshal(v.Str)
}

// UnmarshalJSON accepts either a JSON integer or a JSON string
func (v *IntOrString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("int or string: %w", err)
	}
	*v = IntValue(n)
	return nil
}
