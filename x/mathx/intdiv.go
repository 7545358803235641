package mathx

import "golang.org/x/exp/constraints"

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// MulDiv returns a*b/c using 128-bit-free splitting so that large tick
// counts times nanosecond scales do not overflow uint64 for firmware ranges.
func MulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	q, r := a/c, a%c
	return q*b + (r*b)/c
}
