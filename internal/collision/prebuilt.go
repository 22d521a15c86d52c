package collision

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/rafabd1/hashes/internal/algorithm"
	"github.com/rafabd1/hashes/internal/progress"
)

// Lists of known colliding keys, one per line, named after the algorithm.
// Keys may start or end with a space, so lines are never trimmed.
//
//go:embed data/*.txt
var preBuiltFS embed.FS

var (
	preBuiltMu    sync.Mutex
	preBuiltCache = map[string][]string{}
)

// PreBuilt serves keys from a fixed list.
type PreBuilt struct {
	alg  algorithm.HashAlgorithm
	keys []string
}

// NewPreBuilt wraps an existing list of colliding keys.
func NewPreBuilt(alg algorithm.HashAlgorithm, keys []string) *PreBuilt {
	return &PreBuilt{alg: alg, keys: keys}
}

// PreBuiltFor returns the embedded list for alg.
func PreBuiltFor(alg algorithm.HashAlgorithm) (*PreBuilt, error) {
	keys, err := loadPreBuilt(strings.ToLower(alg.Name()))
	if err != nil {
		return nil, err
	}
	return NewPreBuilt(alg, keys), nil
}

func loadPreBuilt(name string) ([]string, error) {
	preBuiltMu.Lock()
	defer preBuiltMu.Unlock()

	if keys, ok := preBuiltCache[name]; ok {
		return keys, nil
	}
	data, err := preBuiltFS.ReadFile("data/" + name + ".txt")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPreBuiltKeys, name)
	}

	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line != "" {
			keys = append(keys, line)
		}
	}
	preBuiltCache[name] = keys
	return keys, nil
}

func (p *PreBuilt) Algorithm() algorithm.HashAlgorithm { return p.alg }

// Size is the number of keys in the list.
func (p *PreBuilt) Size() int { return len(p.keys) }

// Generate returns the first count keys of the list, or all of them when
// the list is shorter.
func (p *PreBuilt) Generate(count int, monitor progress.Monitor) ([]string, error) {
	if count <= 0 {
		return nil, ErrInvalidKeyCount
	}
	monitor = progress.OrNop(monitor)

	n := min(count, len(p.keys))
	out := make([]string, n)
	copy(out, p.keys[:n])
	for i := range out {
		monitor.Update(i)
	}
	return out, nil
}
