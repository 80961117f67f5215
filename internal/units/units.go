// Package units converts between sector counts and human-entered sizes
// with binary (IEEE 1541) prefixes.
package units

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultSectorSize replaces a zero sector size.
const DefaultSectorSize = 512

const suffixes = "KMGTPE"

// Parse converts text into a sector number within [low, high].
//
// text is an unsigned integer with an optional K, M, G, T, P or E suffix
// (powers of 1024 bytes, case-insensitive); without a suffix it counts
// sectors. A leading "+" makes the value relative to low when def == high
// (result = n + low - 1) and relative to def otherwise (n + def). A leading
// "-" counts back from high. Empty input or a zero magnitude yields def.
// Input that does not start with a digit yields high+1, which callers must
// reject as out of range.
func Parse(text string, sectorSize, low, high, def uint64) uint64 {
	if sectorSize == 0 {
		log.Warnf("units: sector size 0, using %d", DefaultSectorSize)
		sectorSize = DefaultSectorSize
	}

	s := strings.TrimLeft(text, " ")
	var sign byte
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		sign = s[0]
		s = s[1:]
	}
	if len(s) == 0 {
		return def
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return high + 1
	}
	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return high + 1
	}
	if n == 0 {
		return def
	}

	rest := strings.TrimLeft(s[end:], " \t")
	if rest != "" {
		if i := strings.IndexByte(suffixes, upper(rest[0])); i >= 0 {
			unit := uint64(1) << (10 * uint(i+1))
			switch {
			case unit > sectorSize:
				n *= unit / sectorSize
			case unit < sectorSize:
				n /= sectorSize / unit
			}
		}
	}

	switch sign {
	case '+':
		if def == high {
			return n + low - 1
		}
		return n + def
	case '-':
		return high - n
	}
	return n
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// Format renders count units of unitSize bytes as e.g. "1.5 GiB" or
// "512 bytes". It is for display only; the result is rounded.
func Format(count, unitSize uint64) string {
	if unitSize == 0 {
		unitSize = 1
	}
	const prefixes = " KMGTPE"
	size := float64(count) * float64(unitSize)
	i := 0
	for size > 1024 && i < len(prefixes)-1 {
		i++
		size /= 1024
	}
	if i == 0 {
		return fmt.Sprintf("%.0f bytes", size)
	}
	return fmt.Sprintf("%.1f %ciB", size, prefixes[i])
}
