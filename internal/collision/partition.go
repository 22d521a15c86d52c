package collision

// The MITM alphabet is printable ASCII, both ends inclusive.
const (
	FirstChar    byte = ' '
	LastChar     byte = '~'
	AlphabetSize      = int(LastChar-FirstChar) + 1
)

// Partition is the inclusive range of first characters one worker enumerates.
type Partition struct {
	Start byte
	End   byte
}

// Size is the number of first characters in the partition.
func (p Partition) Size() int { return int(p.End-p.Start) + 1 }

// EffectiveWorkers clamps workers to the alphabet size. clamped reports
// whether the requested value had to be lowered.
func EffectiveWorkers(workers int) (effective int, clamped bool) {
	if workers > AlphabetSize {
		return AlphabetSize, true
	}
	return workers, false
}

// Partitions splits the alphabet into contiguous, non-overlapping ranges,
// one per worker. The last range absorbs the division remainder.
// workers must be positive; values above AlphabetSize are clamped.
func Partitions(workers int) []Partition {
	n, _ := EffectiveWorkers(workers)
	interval := AlphabetSize / n

	parts := make([]Partition, n)
	for i := range parts {
		start := FirstChar + byte(i*interval)
		end := start + byte(interval-1)
		if i == n-1 {
			end = LastChar
		}
		parts[i] = Partition{Start: start, End: end}
	}
	return parts
}
