package utils

import (
	"math"
)

// RoundInt rounds half to even, matching NumPy's round for step counts
func RoundInt(x float64) int {
	return int(math.RoundToEven(x))
}
