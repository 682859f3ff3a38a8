package utils

import "math"

// IsFinite は NaN と ±Inf を除外します。
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// FiniteAll は全ての値が有限のときに true を返します。
func FiniteAll(values ...float32) bool {
	for _, v := range values {
		if !IsFinite(float64(v)) {
			return false
		}
	}
	return true
}
