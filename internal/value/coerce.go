package value

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s with the rules a dynamic language applies when a
// string is used as a number: surrounding space is ignored, the empty
// string is 0, "Infinity" and 0x/0o/0b integer prefixes are accepted.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, true
	}
	switch raw {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(raw) > 2 && raw[0] == '0' {
		base := 0
		switch raw[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if strings.ContainsRune(raw, '_') {
				return math.NaN(), false
			}
			u, err := strconv.ParseUint(raw[2:], base, 64)
			if err != nil {
				return math.NaN(), false
			}
			return float64(u), true
		}
	}
	if !decimalPattern.MatchString(raw) {
		return math.NaN(), false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// overflow saturates to ±Inf, underflow to 0
		if errors.Is(err, strconv.ErrRange) {
			return f, true
		}
		return math.NaN(), false
	}
	return f, true
}

// ToNumber coerces v to a number. Booleans are 1/0, Null is 0, strings
// are parsed with ParseNumber and Dates become epoch milliseconds.
// ok is false for Undefined and for strings that are not numeric; the
// returned number is NaN in that case.
func ToNumber(v Value) (float64, bool) {
	switch v.kind {
	case KindNumber, KindBool:
		return v.num, true
	case KindNull:
		return 0, true
	case KindString:
		return ParseNumber(v.str)
	case KindDate:
		return float64(v.t.UnixMilli()), true
	}
	return math.NaN(), false
}

var floatPrefix = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// ParseFloat reads a numeric field the way a free-form "parse float"
// does: numbers pass through, strings yield their longest numeric prefix
// ("12abc" is 12, "0x10" is 0), everything else is NaN.
func ParseFloat(v Value) Value {
	switch v.kind {
	case KindNumber:
		return v
	case KindString:
		m := floatPrefix.FindString(strings.TrimLeft(v.str, " \t\n\r\f\v"))
		if m == "" {
			return NaN()
		}
		switch m {
		case "Infinity", "+Infinity":
			return Number(math.Inf(1))
		case "-Infinity":
			return Number(math.Inf(-1))
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return NaN()
		}
		return Number(f)
	}
	return NaN()
}
