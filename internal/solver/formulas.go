package solver

import (
	"math"
	"strconv"
	"strings"
)

func cuttingSpeed(d, n float64) float64        { return math.Pi * d * n / 1000 }
func spindleFromCutting(vc, d float64) float64 { return vc * 1000 / (math.Pi * d) }
func spindleFromFeed(vf, fn float64) float64   { return vf / fn }
func toothFromRev(fn, z float64) float64       { return fn / z }
func revFromTooth(fz, z float64) float64       { return fz * z }
func revFromRate(vf, n float64) float64        { return vf / n }
func rateFromRev(fn, n float64) float64        { return fn * n }

func drillingTime(pb, vf, nb float64) float64 { return (pb * 60 / vf) * nb }
func millingTime(lm, vf, np float64) float64  { return (lm / vf) * (np * 60) }

func drillingRemovalRate(d, vf float64) float64 {
	return (math.Pi * d * d / 4 * vf) / 1000
}

func millingRemovalRate(ap, ae, vf float64) float64 { return ap * ae * vf / 1000 }

// Format renders a computed value with prec decimals. Zero, NaN and
// infinite results, and results that round to zero, become "0".
func Format(v float64, prec int) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if r, err := strconv.ParseFloat(s, 64); err != nil || r == 0 {
		return "0"
	}
	return s
}

// Parse reads the leading decimal number of raw, the way a keypad entry
// such as "12." or "0." is meant. ok is false when raw has no digits.
func Parse(raw string) (v float64, ok bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits, dot := 0, false
	for ; end < len(s); end++ {
		c := s[end]
		if c >= '0' && c <= '9' {
			digits++
			continue
		}
		if c == '.' && !dot {
			dot = true
			continue
		}
		break
	}
	if digits == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Sanitize coerces a stored string to something the keypad can keep
// editing: unparseable values such as "NaN" or "Infinity" become "0".
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if _, ok := Parse(s); !ok {
		return "0"
	}
	return s
}

func isZero(raw string) bool {
	v, ok := Parse(raw)
	return !ok || v == 0
}
