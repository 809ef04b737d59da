package validation

import "strings"

const phoneDigits = 10

// FormatPhone keeps at most ten digits of raw and shapes them as
// (XXX) XXX-XXXX, or (XXX) X.. while fewer than six digits are typed.
// Applying it to its own output is a no-op.
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == phoneDigits {
				break
			}
		}
	}
	digits := b.String()

	switch {
	case len(digits) >= 6:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) >= 3:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return digits
	}
}
