package standardize

import (
	"context"
)

// Result is the canonical (program, university) pair produced by either
// resolution path.
type Result struct {
	Program    string
	University string
}

// Resolver turns an ambiguous program-and-university string into a canonical
// pair. Implemented by the model client; faked in tests.
type Resolver interface {
	Resolve(ctx context.Context, text string) (Result, error)
}
