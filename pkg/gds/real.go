package gds

import (
	"encoding/json"
	"math"
)

// Real is an 8-byte stream-format real in its encoded form: sign bit,
// excess-64 base-16 exponent and a 56-bit mantissa. Keeping the encoding
// avoids the precision loss of a float64 round trip.
type Real uint64

const mantissaBits = 56

// RealOf encodes f. Every float64 in the format's range encodes exactly.
func RealOf(f float64) Real {
	if f == 0 || math.IsNaN(f) {
		return 0
	}
	var sign uint64
	if f < 0 {
		sign = 1 << 63
		f = -f
	}
	exp := 64
	for f >= 1 {
		f /= 16
		exp++
	}
	for f < 1.0/16 {
		f *= 16
		exp--
	}
	if exp < 0 {
		return 0
	}
	if exp > 127 {
		return Real(sign | 127<<mantissaBits | (1<<mantissaBits - 1))
	}
	mant := uint64(math.Ldexp(f, mantissaBits))
	return Real(sign | uint64(exp)<<mantissaBits | mant)
}

// Float decodes r.
func (r Real) Float() float64 {
	if r == 0 {
		return 0
	}
	mant := uint64(r) & (1<<mantissaBits - 1)
	exp := int(uint64(r)>>mantissaBits) & 0x7f
	v := math.Ldexp(float64(mant), 4*(exp-64)-mantissaBits)
	if uint64(r)>>63 == 1 {
		return -v
	}
	return v
}

// MarshalJSON renders the decoded value.
func (r Real) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Float())
}

// RealPtr returns a pointer to the encoding of f.
func RealPtr(f float64) *Real {
	r := RealOf(f)
	return &r
}
