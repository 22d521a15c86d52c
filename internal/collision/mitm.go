package collision

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync/atomic"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/progress"
	"github.com/rafabd1/hashes/internal/utils"
)

const (
	// DefaultTableSize is the number of random suffixes in the lookup table.
	DefaultTableSize = 1 << 18
	// PrefixLength and SuffixLength add up to the length of every MITM key.
	PrefixLength = 4
	SuffixLength = 3
	KeyLength    = PrefixLength + SuffixLength
)

// RandSource supplies the randomness of the lookup table.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// MITM finds collisions by meeting in the middle: random suffixes are run
// backwards from the target hash into a lookup table, then every prefix is
// run forwards and probed against it.
type MITM struct {
	alg        algorithm.Invertible
	seed       string
	workers    int
	workersSet bool
	rnd        RandSource
	logger     utils.Logger
	tableSize  int
	prefixLen  int
}

// MITMOption configures a MITM generator.
type MITMOption func(*MITM)

// WithWorkers overrides the number of search workers (default: one per CPU).
func WithWorkers(n int) MITMOption {
	return func(m *MITM) {
		m.workers = n
		m.workersSet = true
	}
}

// WithRand replaces the random source used to build the lookup table.
func WithRand(r RandSource) MITMOption {
	return func(m *MITM) { m.rnd = r }
}

// WithLogger sets where warnings such as the worker clamp are reported.
func WithLogger(l utils.Logger) MITMOption {
	return func(m *MITM) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTableSize changes the number of random suffixes drawn for the table.
func WithTableSize(n int) MITMOption {
	return func(m *MITM) { m.tableSize = n }
}

// NewMITM validates its arguments before any work is done.
func NewMITM(alg algorithm.Invertible, seed string, opts ...MITMOption) (*MITM, error) {
	m := &MITM{
		alg:       alg,
		seed:      seed,
		workers:   runtime.NumCPU(),
		rnd:       globalRand{},
		logger:    utils.NewNopLogger(),
		tableSize: DefaultTableSize,
		prefixLen: PrefixLength,
	}
	for _, opt := range opts {
		opt(m)
	}

	if seed == "" {
		return nil, ErrEmptySeed
	}
	if m.workersSet && m.workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, m.workers)
	}
	if m.tableSize <= 0 {
		return nil, fmt.Errorf("lookup table size must be positive, got %d", m.tableSize)
	}
	return m, nil
}

func (m *MITM) Algorithm() algorithm.HashAlgorithm { return m.alg }

// Target is the hash every generated key shares.
func (m *MITM) Target() int32 { return m.alg.Hash(m.seed) }

// lookupTable maps the state a prefix must reach to the suffix that then
// lands on the target. Read-only once built.
type lookupTable map[int32]string

// Generate runs the three phases: table construction, partitioning and the
// parallel search. It blocks until every worker has returned.
func (m *MITM) Generate(count int, monitor progress.Monitor) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidKeyCount
	}
	monitor = progress.OrNop(monitor)

	target := m.Target()
	table := m.buildTable(target)
	m.logger.Debugf("MITM lookup table for %s holds %d suffixes (target hash %d)", m.alg.Name(), len(table), target)

	parts := m.partitions()
	budget := new(atomic.Int64)
	jobs := make([]utils.Job[[]string], len(parts))
	for i, part := range parts {
		part := part
		jobs[i] = func(ctx context.Context) ([]string, error) {
			return m.search(ctx, part, table, budget, int64(count), monitor), nil
		}
	}

	results, err := utils.RunAll(context.Background(), len(jobs), jobs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrComputation, err)
	}

	total := 0
	for _, found := range results {
		total += len(found)
	}
	collisions := make([]string, 0, min(count, total))
	for _, found := range results {
		collisions = append(collisions, found...)
	}
	if len(collisions) > count {
		collisions = collisions[:count]
	}
	m.logger.Debugf("MITM search produced %d of %d requested keys", len(collisions), count)
	return collisions, nil
}

func (m *MITM) buildTable(target int32) lookupTable {
	table := make(lookupTable, m.tableSize)
	suffix := make([]byte, SuffixLength)
	for i := 0; i < m.tableSize; i++ {
		for j := range suffix {
			suffix[j] = FirstChar + byte(m.rnd.IntN(AlphabetSize))
		}
		s := string(suffix)
		table[m.alg.HashBack(s, target)] = s
	}
	return table
}

func (m *MITM) partitions() []Partition {
	effective, clamped := EffectiveWorkers(m.workers)
	if clamped {
		m.logger.Warnf("The number of MITM worker threads is too high (%d). Using: %d threads", m.workers, effective)
	}
	return Partitions(effective)
}

// search enumerates, depth first and in ascending order, every prefix whose
// first character lies in part. The budget is checked before each branch.
func (m *MITM) search(ctx context.Context, part Partition, table lookupTable, budget *atomic.Int64, count int64, monitor progress.Monitor) []string {
	var found []string
	prefix := make([]byte, m.prefixLen)

	var crack func(depth int, state int32, lo, hi byte)
	crack = func(depth int, state int32, lo, hi byte) {
		if depth == m.prefixLen {
			suffix, ok := table[state]
			if !ok {
				return
			}
			index := budget.Add(1) - 1
			if index < count {
				found = append(found, string(prefix)+suffix)
				monitor.Update(int(index))
			}
			return
		}
		for c := int(lo); c <= int(hi) && budget.Load() < count; c++ {
			if depth == 0 && ctx.Err() != nil {
				return
			}
			prefix[depth] = byte(c)
			crack(depth+1, m.alg.Step(state, byte(c)), FirstChar, LastChar)
		}
	}

	crack(0, m.alg.Initial(), part.Start, part.End)
	return found
}
