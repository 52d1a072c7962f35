// SPDX-License-Identifier: MIT
/*
Package bitint holds the power-of-two helpers used to size FFT frames and
capture buffers. Both functions are branch-light and allocation free.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, and 1 for
// size <= 1. Subtracting one first keeps exact powers unchanged:
//
//	8 -> bits.Len(7) = 3 -> 1<<3 = 8
//	9 -> bits.Len(8) = 4 -> 1<<4 = 16
func NextPowerOfTwo(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
