package models

import (
	"strconv"
)

// NormalizeMoney rounds a monetary amount to an exact multiple of 0.01.
//
// It goes through a string round-trip (format with two decimals, parse back)
// instead of naive float rounding so the stored value is bit-exactly the
// two-decimal representation when serialized. Repeated normalization is a
// fixed point: NormalizeMoney(NormalizeMoney(v)) == NormalizeMoney(v).
func NormalizeMoney(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	out, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// FormatFloat output always parses; keep the input on the
		// impossible path rather than silently zeroing it.
		return v
	}
	return out
}
