package common

import (
	"strconv"
	"strings"
)

// Field returns the n-th (1-based) colon-delimited field of arg, as in
// "2:a503" or "1:2048:4095". A single leading colon is skipped. Out of
// range n yields "".
func Field(arg string, n int) string {
	if n < 1 {
		return ""
	}
	arg = strings.TrimPrefix(arg, ":")
	parts := strings.Split(arg, ":")
	if n > len(parts) {
		return ""
	}
	return parts[n-1]
}

// FieldUint parses the n-th field as a decimal integer. Anything that does
// not start with a digit yields 0; trailing junk is ignored.
func FieldUint(arg string, n int) uint64 {
	s := strings.TrimSpace(Field(arg, n))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// IsHex reports whether s holds only hex digits and spaces with at least one digit.
func IsHex(s string) bool {
	found := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
			found = true
		case c == ' ', c == '\n':
		default:
			return false
		}
	}
	return found
}

// ParseHex16 parses a 16-bit hex type code such as "a503" or "0x0700".
func ParseHex16(s string) (uint16, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if !IsHex(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
