package mathx

import "testing"

func TestClampAndBetween(t *testing.T) {
	if got := Clamp(120.0, 0, 100); got != 100 {
		t.Fatalf("Clamp high = %v", got)
	}
	if got := Clamp(-3, 10, 0); got != 0 {
		t.Fatalf("Clamp swapped bounds = %v", got)
	}
	if !Between(15, 26, 11) {
		t.Fatal("Between(15, 26, 11) = false")
	}
	if Between(27, 11, 26) {
		t.Fatal("Between(27, 11, 26) = true")
	}
}

func TestRoundDivAndMulDiv(t *testing.T) {
	if got := RoundDiv(uint64(15), 10); got != 2 {
		t.Fatalf("RoundDiv(15,10) = %d", got)
	}
	if got := RoundDiv(uint32(14), 0); got != 0 {
		t.Fatalf("RoundDiv by zero = %d", got)
	}
	// 2^36 ticks at 8 Hz in nanoseconds would overflow a naive a*b.
	ticks := uint64(1) << 36
	if got, want := MulDiv(ticks, 1_000_000_000, 8), ticks/8*1_000_000_000; got != want {
		t.Fatalf("MulDiv = %d, want %d", got, want)
	}
	if got := MulDiv(7, 3, 2); got != 10 {
		t.Fatalf("MulDiv(7,3,2) = %d", got)
	}
}
