package algorithm

import (
	"fmt"
	"sort"
	"strings"
)

// HashAlgorithm replicates the string hash of a specific runtime.
// Keys are hashed byte by byte with 32-bit wraparound arithmetic.
type HashAlgorithm interface {
	Name() string
	Hash(key string) int32
}

// Invertible is a HashAlgorithm whose per-byte recurrence can be run backwards.
// It is what the meet-in-the-middle search needs.
type Invertible interface {
	HashAlgorithm

	// Initial returns the accumulator before the first byte is consumed.
	Initial() int32

	// Step applies one forward round to state. No finalisation is applied.
	Step(state int32, c byte) int32

	// HashBack returns the accumulator a prefix must produce so that
	// Hash(prefix + suffix) == target.
	HashBack(suffix string, target int32) int32
}

// Forward folds Step over prefix starting at Initial.
func Forward(a Invertible, prefix string) int32 {
	state := a.Initial()
	for i := 0; i < len(prefix); i++ {
		state = a.Step(state, prefix[i])
	}
	return state
}

// ErrUnknownAlgorithm is returned by Lookup for names it does not know.
var ErrUnknownAlgorithm = fmt.Errorf("unknown hash algorithm")

var registry = map[string]func() Invertible{
	"djbx33a": func() Invertible { return DJBX33A() },
	"php":     func() Invertible { return DJBX33A() },
	"djbx31a": func() Invertible { return DJBX31A() },
	"java":    func() Invertible { return DJBX31A() },
	"djbx33x": func() Invertible { return DJBX33X() },
	"asp":     func() Invertible { return DJBX33X() },
	"aspnet":  func() Invertible { return DJBX33X() },
	"v8":      func() Invertible { return V8() },
	"node":    func() Invertible { return V8() },
}

// Lookup resolves an algorithm by its name or one of its aliases
// (php, java, asp, node). Matching is case-insensitive.
func Lookup(name string) (Invertible, error) {
	ctor, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists every accepted name and alias, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
