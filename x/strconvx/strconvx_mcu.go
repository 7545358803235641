//go:build rp2040 || rp2350

package strconvx

// Minimal, allocation-aware helpers with identical signatures.
// Only the 'f' float format is implemented; other verbs fall back to 'f'.

func Itoa(i int) string {
	if i < 0 {
		return "-" + string(appendUint(nil, uint64(-i), 10))
	}
	return string(appendUint(nil, uint64(i), 10))
}

func FormatUint(u uint64, base int) string { return string(appendUint(nil, u, base)) }

func AppendUint(dst []byte, u uint64, base int) []byte { return appendUint(dst, u, base) }

func FormatFloat(f float64, _ byte, prec, _ int) string {
	return string(appendFixed(nil, f, prec))
}

func AppendFloat(dst []byte, f float64, _ byte, prec, _ int) []byte {
	return appendFixed(dst, f, prec)
}
