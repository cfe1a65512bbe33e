package biff

import (
	"math"
	"testing"
)

func TestDecodeRK(t *testing.T) {
	cases := []struct {
		raw  uint32
		want float64
	}{
		{0x00000002, 0.0},
		{0x3FF00000, 1.0},
		{0x3FF00001, 0.01},
		{0x00000017, 0.05},
	}
	for _, c := range cases {
		got := DecodeRK(c.raw)
		if got != c.want {
			t.Errorf("DecodeRK(0x%08X) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestDecodeRKReferenceFormula(t *testing.T) {
	// Sweeps raw values and checks the decode against the reference
	// decomposition directly, rather than a table of fixed cases.
	for raw := uint32(0); raw < 0x10000; raw += 7 {
		rk := RK(raw)
		mult100 := raw&1 != 0
		isInt := raw&2 != 0

		var want float64
		if isInt {
			want = float64(int32(raw) >> 2)
		} else {
			bits := uint64(raw&^3) << 32
			want = math.Float64frombits(bits)
		}
		if mult100 {
			want /= 100.0
		}

		if got := rk.Float64(); got != want {
			t.Fatalf("RK(0x%08X).Float64() = %v, want %v", raw, got, want)
		}
	}
}
