package engine

import (
	"math"
	"strconv"
	"strings"
)

// ErrorText is what the display shows after a failed computation.
const ErrorText = "Error"

const (
	maxDisplayLen      = 9
	scientificFrom     = 1e9
	exponentDigits     = 2
	significantDigits  = 6
	plainExponentBelow = 1e-6
	plainExponentAbove = 1e21
)

// Format renders a value for the display. Unparsable text shows as "0".
func Format(value string) string {
	if value == ErrorText {
		return ErrorText
	}
	n, err := parseNumber(value)
	if err != nil || !isFinite(n) {
		return "0"
	}
	return FormatValue(n)
}

// FormatValue renders a number for the nine-character display.
func FormatValue(n float64) string {
	if !isFinite(n) {
		return "0"
	}
	if math.Abs(n) >= scientificFrom {
		return toExponential(n, exponentDigits)
	}
	s := NumberString(n)
	if len(s) > maxDisplayLen {
		if strings.Contains(s, ".") {
			return toPrecision(n, significantDigits)
		}
		return toExponential(n, exponentDigits)
	}
	return s
}

// NumberString is the canonical text form of an operand: the shortest decimal
// that round-trips, switching to exponent form for very small or very large
// magnitudes. Negative zero prints as "0".
func NumberString(n float64) string {
	if n == 0 {
		return "0"
	}
	abs := math.Abs(n)
	if abs < plainExponentBelow || abs >= plainExponentAbove {
		return trimExponent(strconv.FormatFloat(n, 'e', -1, 64))
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func toExponential(n float64, digits int) string {
	return trimExponent(strconv.FormatFloat(n, 'e', digits, 64))
}

// toPrecision rounds to p significant digits, keeping trailing zeros, and
// only falls back to exponent form outside [1e-6, 10^p).
func toPrecision(n float64, p int) string {
	e := strconv.FormatFloat(n, 'e', p-1, 64)
	idx := strings.IndexByte(e, 'e')
	exp, err := strconv.Atoi(e[idx+1:])
	if err != nil {
		return trimExponent(e)
	}
	if exp < -6 || exp >= p {
		return trimExponent(e)
	}
	return strconv.FormatFloat(n, 'f', p-1-exp, 64)
}

// trimExponent turns "1.23e+09" into "1.23e+9".
func trimExponent(s string) string {
	idx := strings.IndexByte(s, 'e')
	if idx < 0 || idx+2 > len(s) {
		return s
	}
	mantissa, sign, digits := s[:idx], s[idx+1], s[idx+2:]
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
