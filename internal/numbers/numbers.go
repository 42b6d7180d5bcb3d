// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers

import "math/big"

// Zero defines 0 number.
const Zero = 0

// IsNegative returns true if the number is less than zero.
func IsNegative(num *big.Int) bool {
	return num.Sign() < Zero
}

// IsLess returns true is a < b.
func IsLess(a, b *big.Int) bool {
	return a.Cmp(b) < Zero
}

// Min returns the least value from provided.
func Min(a *big.Int, b ...*big.Int) *big.Int {
	minValue := a
	for _, el := range b {
		if IsLess(el, minValue) {
			minValue = el
		}
	}

	return minValue
}

// Sum returns a new number equal to the sum of provided.
func Sum(nums ...*big.Int) *big.Int {
	sum := new(big.Int)
	for _, num := range nums {
		sum.Add(sum, num)
	}

	return sum
}

// Sub returns a new number equal to a - b[0] - b[1] - ...
func Sub(a *big.Int, b ...*big.Int) *big.Int {
	result := new(big.Int).Set(a)
	for _, el := range b {
		result.Sub(result, el)
	}

	return result
}

// FitsInt64 returns true if the number can be represented as int64.
func FitsInt64(num *big.Int) bool {
	return num.IsInt64()
}
