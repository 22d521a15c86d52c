package algorithm

// Combine selects how a DJB round mixes the next byte into the accumulator.
type Combine int

const (
	// CombineAdd computes h*m + c.
	CombineAdd Combine = iota
	// CombineXor computes (h*m) ^ c.
	CombineXor
)

// DJB is the Bernstein family of multiplicative string hashes.
// The zero value is not usable; build instances with NewDJB or the named constructors.
type DJB struct {
	name       string
	multiplier uint32
	inverse    uint32
	initial    uint32
	combine    Combine
}

// NewDJB builds a DJB variant. The multiplier must be odd so that the
// recurrence can be inverted.
func NewDJB(name string, multiplier, initial uint32, combine Combine) *DJB {
	return &DJB{
		name:       name,
		multiplier: multiplier,
		inverse:    ModInverse(multiplier),
		initial:    initial,
		combine:    combine,
	}
}

// DJBX33A is the PHP 5 hash: h = 5381; h = h*33 + c.
func DJBX33A() *DJB { return NewDJB("DJBX33A", 33, 5381, CombineAdd) }

// DJBX31A is Java's String.hashCode: h = 0; h = h*31 + c.
func DJBX31A() *DJB { return NewDJB("DJBX31A", 31, 0, CombineAdd) }

// DJBX33X is the ASP.NET hash: h = 5381; h = (h*33) ^ c.
func DJBX33X() *DJB { return NewDJB("DJBX33X", 33, 5381, CombineXor) }

func (d *DJB) Name() string { return d.name }

func (d *DJB) Hash(key string) int32 {
	h := d.initial
	if d.combine == CombineXor {
		for i := 0; i < len(key); i++ {
			h = (h * d.multiplier) ^ uint32(key[i])
		}
	} else {
		for i := 0; i < len(key); i++ {
			h = h*d.multiplier + uint32(key[i])
		}
	}
	return int32(h)
}

func (d *DJB) Initial() int32 { return int32(d.initial) }

func (d *DJB) Step(state int32, c byte) int32 {
	if d.combine == CombineXor {
		return int32((uint32(state) * d.multiplier) ^ uint32(c))
	}
	return int32(uint32(state)*d.multiplier + uint32(c))
}

func (d *DJB) HashBack(suffix string, target int32) int32 {
	h := uint32(target)
	for i := len(suffix) - 1; i >= 0; i-- {
		if d.combine == CombineXor {
			h = (h ^ uint32(suffix[i])) * d.inverse
		} else {
			h = (h - uint32(suffix[i])) * d.inverse
		}
	}
	return int32(h)
}
