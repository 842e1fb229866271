package tools

import "strconv"

// suffixReserve is runes reserved for the truncation marker.
const suffixReserve = 60

// Truncate caps s at maxRunes runes, keeping the start and appending a
// marker with the original length. maxRunes <= 0 disables truncation.
// Truncated JSON may be invalid; the model is told so and can narrow the
// query instead.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	keep := maxRunes - suffixReserve
	if keep <= 0 {
		keep = 1
	}
	suffix := "\n...[truncated, " + strconv.Itoa(len(r)) + " chars total]"
	return string(r[:keep]) + suffix
}
