package settlement

import (
	"math"
	"strconv"
	"strings"
)

// CoerceAmount parses a user supplied amount. Anything that is not a finite,
// non-negative number becomes 0. Thousands separators are accepted.
func CoerceAmount(raw string) float64 {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
