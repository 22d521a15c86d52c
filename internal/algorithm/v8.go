package algorithm

import "fmt"

// Inverses of the finalisation multipliers (1+2^3) and (1+2^15) and of the
// running multiplier (1+2^10).
var (
	inv9     = ModInverse(9)
	inv1025  = ModInverse(1025)
	inv32769 = ModInverse(32769)
)

// V8Hash is the Jenkins one-at-a-time hash used by V8's string hasher.
// A non-zero seed starts the accumulator at that value, as seeded V8
// builds do.
type V8Hash struct {
	seed uint32
}

// V8 returns the unseeded V8 hash.
func V8() *V8Hash { return &V8Hash{} }

// NewV8 returns a V8 hash whose accumulator starts at seed.
func NewV8(seed uint32) *V8Hash { return &V8Hash{seed: seed} }

func (v *V8Hash) Name() string {
	if v.seed == 0 {
		return "V8"
	}
	return fmt.Sprintf("V8(seed=%#x)", v.seed)
}

func (v *V8Hash) Hash(key string) int32 {
	h := v.seed
	for i := 0; i < len(key); i++ {
		h += uint32(key[i])
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return int32(h)
}

func (v *V8Hash) Initial() int32 { return int32(v.seed) }

func (v *V8Hash) Step(state int32, c byte) int32 {
	h := uint32(state) + uint32(c)
	h += h << 10
	h ^= h >> 6
	return int32(h)
}

func (v *V8Hash) HashBack(suffix string, target int32) int32 {
	h := uint32(target)
	// finalisation, last operation first
	h *= inv32769
	h = unshiftRightXor(h, 11)
	h *= inv9
	for i := len(suffix) - 1; i >= 0; i-- {
		h = unshiftRightXor(h, 6)
		h *= inv1025
		h -= uint32(suffix[i])
	}
	return int32(h)
}
