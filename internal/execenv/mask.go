package execenv

import "strings"

// MaskValue hides a value for display. Up to eight characters are fully
// masked; longer values keep their first and last four. The result has as
// many characters as the input.
func MaskValue(value string) string {
	r := []rune(value)
	if len(r) <= 8 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}
