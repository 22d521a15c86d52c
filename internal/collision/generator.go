// Package collision produces sets of distinct keys that share one hash code
// under a given algorithm.
package collision

import (
	"fmt"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/progress"
	"github.com/rafabd1/hashes/internal/utils"
)

// Generator returns up to count distinct keys that all collide under
// Algorithm. Fewer keys than requested is not an error.
type Generator interface {
	Algorithm() algorithm.HashAlgorithm
	Generate(count int, monitor progress.Monitor) ([]string, error)
}

// Settings selects and parameterises a Generator.
type Settings struct {
	Algorithm string
	Fresh     bool   // compute new keys instead of using the embedded list
	Seed      string // MITM only
	Workers   int    // MITM only; 0 means one per CPU
}

// New picks the strategy from s. Pre-built keys are used unless Fresh is
// set; fresh keys come from the closed form when the algorithm has one and
// from the MITM search otherwise.
func New(s Settings, logger utils.Logger) (Generator, error) {
	alg, err := algorithm.Lookup(s.Algorithm)
	if err != nil {
		return nil, err
	}
	if !s.Fresh {
		pb, err := PreBuiltFor(alg)
		if err != nil {
			return nil, err
		}
		return pb, nil
	}
	if cf, err := ClosedFormFor(alg); err == nil {
		return cf, nil
	}

	opts := []MITMOption{WithLogger(logger)}
	if s.Workers != 0 {
		opts = append(opts, WithWorkers(s.Workers))
	}
	m, err := NewMITM(alg, s.Seed, opts...)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Verify checks that keys are pairwise distinct and share one hash under alg.
func Verify(alg algorithm.HashAlgorithm, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(keys))
	want := alg.Hash(keys[0])
	for i, key := range keys {
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate key %q at index %d", ErrNotColliding, key, i)
		}
		seen[key] = struct{}{}
		if got := alg.Hash(key); got != want {
			return fmt.Errorf("%w: %s(%q) = %d, want %d", ErrNotColliding, alg.Name(), key, got, want)
		}
	}
	return nil
}
