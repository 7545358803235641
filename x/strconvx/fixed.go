package strconvx

import "math"

// maxFixed bounds the magnitude appendFixed renders exactly; larger values
// saturate. Sensor and battery values are many orders of magnitude below.
const maxFixed = 1e12

func appendUint(dst []byte, u uint64, base int) []byte {
	if base < 2 || base > 36 {
		base = 10
	}
	if u == 0 {
		return append(dst, '0')
	}
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	var buf [64]byte
	i := len(buf)
	b := uint64(base)
	for u > 0 {
		i--
		buf[i] = digits[u%b]
		u /= b
	}
	return append(dst, buf[i:]...)
}

// appendFixed renders f like strconv's 'f' verb with prec decimals
// (rounding half away from zero on the scaled value).
func appendFixed(dst []byte, f float64, prec int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "+Inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-Inf"...)
	}
	if prec < 0 {
		prec = 6
	}
	if prec > 9 {
		prec = 9
	}
	if math.Signbit(f) {
		dst = append(dst, '-')
		f = -f
	}
	if f > maxFixed {
		f = maxFixed
	}
	scale := uint64(1)
	for i := 0; i < prec; i++ {
		scale *= 10
	}
	scaled := uint64(math.Round(f * float64(scale)))
	dst = appendUint(dst, scaled/scale, 10)
	if prec == 0 {
		return dst
	}
	dst = append(dst, '.')
	frac := scaled % scale
	for div := scale / 10; div > 0; div /= 10 {
		dst = append(dst, byte('0'+frac/div))
		frac %= div
	}
	return dst
}
