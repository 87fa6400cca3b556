package utils

import (
	"math"

	"github.com/holiman/uint256"
)

// SafeAdd returns a+b and false if the sum does not fit in 64 bits
func SafeAdd(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// SafeSub returns a-b and false if b is larger than a
func SafeSub(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

func MinU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func MaxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// MulU64 computes a*b without wrapping around
func MulU64(a, b uint64) *uint256.Int {
	x := uint256.NewInt(a)
	return x.Mul(x, uint256.NewInt(b))
}

// CappedMul returns min(a*b, limit), the product never overflows
func CappedMul(a, b, limit uint64) uint64 {
	product := MulU64(a, b)
	if product.IsUint64() && product.Uint64() < limit {
		return product.Uint64()
	}
	return limit
}

// MulFitsUint64 reports whether a*b can be represented in 64 bits
func MulFitsUint64(a, b uint64) bool {
	return MulU64(a, b).IsUint64()
}
