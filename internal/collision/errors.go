package collision

import "fmt"

// Comparable error values returned by generators.
var (
	ErrInvalidKeyCount = fmt.Errorf("number of keys must be greater than 0")
	ErrEmptySeed       = fmt.Errorf("MITM seed cannot be empty")
	ErrInvalidWorkers  = fmt.Errorf("number of MITM workers must be greater than 0")
	ErrComputation     = fmt.Errorf("collision computation failed")
	ErrNoPreBuiltKeys  = fmt.Errorf("no pre-built keys for algorithm")
	ErrNotColliding    = fmt.Errorf("keys do not collide")
	ErrBadBlocks       = fmt.Errorf("invalid collision blocks")
)
