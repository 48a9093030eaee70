package generator

import (
	"io"
	"math/rand/v2"
)

// Generator produces TSV input records for one of the bundled executors.
type Generator interface {
	// Init initializes the generator with a per-instance random source
	Init(r *rand.Rand)

	// WriteRecord writes a single "key\tvalue\n" record to w
	WriteRecord(w io.Writer) error

	// Description returns a human-readable description of the records
	Description() string

	// DefaultCount returns the suggested default number of records to generate
	DefaultCount() int64
}
