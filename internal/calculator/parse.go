package calculator

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalLiteral admits plain decimal notation only; Go-only forms such as
// 1_000, 0x1p4 and Inf are rejected before ParseFloat sees them.
var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber converts user-typed text into a number. Surrounding whitespace and
// thousands-separator commas are ignored. Empty text or anything other than a
// plain decimal literal yields NaN, never zero; out-of-range magnitudes yield ±Inf.
func ParseNumber(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
