//go:build !(rp2040 || rp2350)

package strconvx

import "strconv"

// The goal is signature parity with strconv.
// Delegate straight through.

func Itoa(i int) string                    { return strconv.Itoa(i) }
func FormatUint(u uint64, base int) string { return strconv.FormatUint(u, base) }
func AppendUint(dst []byte, u uint64, base int) []byte {
	return strconv.AppendUint(dst, u, base)
}
func FormatFloat(f float64, fmt byte, prec, bitSize int) string {
	return strconv.FormatFloat(f, fmt, prec, bitSize)
}
func AppendFloat(dst []byte, f float64, fmt byte, prec, bitSize int) []byte {
	return strconv.AppendFloat(dst, f, fmt, prec, bitSize)
}
