package paramtree

import (
	"math"
	"strings"
)

// ConvertSize scales val by the multiple named by suffix: Ki, Mi, Gi, Ti or
// k, M, G, T. iec selects base 1024 instead of 1000. With reverse it divides
// and floors instead, converting a raw amount back to suffix units.
func ConvertSize(suffix string, val float64, iec, reverse bool) float64 {
	multiple := 1000.0
	if iec {
		multiple = 1024
	}
	var exp float64
	switch suffix {
	case "Ki", "k":
		exp = 1
	case "Mi", "M":
		exp = 2
	case "Gi", "G":
		exp = 3
	case "Ti", "T":
		exp = 4
	}
	base := math.Pow(multiple, exp)
	if reverse {
		return math.Floor(val / base)
	}
	return val * base
}

// ConvertDuration converts val in suffix units (ms, s, m, h) to milliseconds,
// or from milliseconds to suffix units when toMillis is false. Unknown
// suffixes are treated as ms. The result is floored.
func ConvertDuration(suffix string, val float64, toMillis bool) int64 {
	var factor float64
	switch suffix {
	case "s":
		factor = 1000
	case "m":
		factor = 60 * 1000
	case "h":
		factor = 60 * 60 * 1000
	default:
		return int64(math.Floor(val))
	}
	if toMillis {
		return int64(math.Floor(val * factor))
	}
	return int64(math.Floor(val / factor))
}

// SuffixOf returns the first of suffixes contained in value and the index it
// starts at, or "" and -1.
func SuffixOf(value string, suffixes []string) (string, int) {
	for _, s := range suffixes {
		if i := strings.Index(value, s); i >= 0 {
			return s, i
		}
	}
	return "", -1
}
