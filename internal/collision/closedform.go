package collision

import (
	"fmt"
	"strings"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/progress"
)

// Equal-hash two byte blocks. For h*m + c hashes any block with
// m*c1 + c2 equal to another's changes the state identically, so any
// concatenation of equally many blocks collides.
var closedFormBlocks = map[string][]string{
	"djbx33a": {"Ez", "FY", "G8"},
	"djbx31a": {"Aa", "BB", "C#"},
}

// ClosedForm builds keys by concatenating interchangeable blocks.
type ClosedForm struct {
	alg    algorithm.HashAlgorithm
	blocks []string
}

// NewClosedForm checks that blocks are distinct, equally long and collide
// under alg.
func NewClosedForm(alg algorithm.HashAlgorithm, blocks ...string) (*ClosedForm, error) {
	if len(blocks) < 2 {
		return nil, fmt.Errorf("%w: need at least two blocks", ErrBadBlocks)
	}
	for _, b := range blocks[1:] {
		if len(b) != len(blocks[0]) || len(b) == 0 {
			return nil, fmt.Errorf("%w: blocks must be non-empty and of equal length", ErrBadBlocks)
		}
	}
	if err := Verify(alg, blocks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadBlocks, err)
	}
	return &ClosedForm{alg: alg, blocks: blocks}, nil
}

// ClosedFormFor returns the built-in construction for alg, if it has one.
func ClosedFormFor(alg algorithm.HashAlgorithm) (*ClosedForm, error) {
	blocks, ok := closedFormBlocks[strings.ToLower(alg.Name())]
	if !ok {
		return nil, fmt.Errorf("%w: no closed form for %s", ErrBadBlocks, alg.Name())
	}
	return NewClosedForm(alg, blocks...)
}

func (c *ClosedForm) Algorithm() algorithm.HashAlgorithm { return c.alg }

// Generate returns the first count keys in block-alphabet order. Every key
// has the minimal number of blocks needed to tell count keys apart.
func (c *ClosedForm) Generate(count int, monitor progress.Monitor) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidKeyCount
	}
	monitor = progress.OrNop(monitor)

	base := len(c.blocks)
	width := 1
	for capacity := base; capacity < count; capacity *= base {
		width++
	}

	keys := make([]string, 0, count)
	digits := make([]int, width)
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.Reset()
		sb.Grow(width * len(c.blocks[0]))
		for _, d := range digits {
			sb.WriteString(c.blocks[d])
		}
		keys = append(keys, sb.String())
		monitor.Update(i)

		// increment the base-k counter, least significant digit last
		for pos := width - 1; pos >= 0; pos-- {
			digits[pos]++
			if digits[pos] < base {
				break
			}
			digits[pos] = 0
		}
	}
	return keys, nil
}
