package validation

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// LeadingInt reads an optional sign and the run of decimal digits at the
// start of value, ignoring anything after it ("100 pcs" is 100). The second
// result is false when no digits are present.
func LeadingInt(value string) (int64, bool) {
	s := strings.TrimLeftFunc(value, unicode.IsSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		n = math.MaxInt64
	}
	if negative {
		n = -n
	}
	return n, true
}
