package algorithm

// ModInverse returns x such that a*x == 1 mod 2^32. a must be odd.
// Newton's iteration doubles the number of correct low bits each round,
// starting from 3 bits since a*a == 1 mod 8 for every odd a.
func ModInverse(a uint32) uint32 {
	if a&1 == 0 {
		panic("algorithm: ModInverse of an even number")
	}
	x := a
	for i := 0; i < 5; i++ {
		x *= 2 - a*x
	}
	return x
}

// unshiftRightXor inverts y = x ^ (x >> shift).
func unshiftRightXor(y uint32, shift uint) uint32 {
	x := y
	for covered := shift; covered < 32; covered += shift {
		x = y ^ (x >> shift)
	}
	return x
}
