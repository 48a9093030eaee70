// Package ledger records the outcome of every worker chunk of a phase.
//
// The ledger lives inside the phase's scratch root and disappears with it;
// it only exists so that failures can be reported per chunk once the pool
// has drained.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"
)

// SchemaVersion is stored in every bbolt ledger. Opening a file written by an
// incompatible major version fails.
const SchemaVersion = "v1.0.0"

const (
	BackendBolt   = "bbolt"
	BackendMemory = "memory"
)

// ChunkResult is the outcome of one worker process.
type ChunkResult struct {
	Phase       string        `json:"phase"`
	RunID       string        `json:"run_id"`
	Index       int           `json:"index"`
	ExitCode    int           `json:"exit_code"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	InputBytes  int64         `json:"input_bytes"`
	OutputBytes int64         `json:"output_bytes"`
}

// OK reports whether the worker was launched and exited with status 0.
func (r ChunkResult) OK() bool {
	return r.Error == "" && r.ExitCode == 0
}

// Ledger stores chunk results. Record is safe for concurrent use.
type Ledger interface {
	Record(r ChunkResult) error
	// Results returns the results of phase ordered by chunk index.
	Results(phase string) ([]ChunkResult, error)
	Close() error
}

// Open creates a ledger with the named backend. path is ignored by the
// memory backend.
func Open(backend, path string) (Ledger, error) {
	switch backend {
	case "", BackendBolt:
		l, err := OpenBolt(path)
		if err != nil {
			return nil, err
		}
		return l, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", backend)
	}
}

// Summary aggregates the results of one phase.
type Summary struct {
	Total       int
	Failed      []int
	InputBytes  int64
	OutputBytes int64
}

func Summarize(results []ChunkResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if !r.OK() {
			s.Failed = append(s.Failed, r.Index)
		}
		s.InputBytes += r.InputBytes
		s.OutputBytes += r.OutputBytes
	}
	return s
}

func bucketName(phase string) []byte {
	return []byte("chunks_" + phase)
}

// indexKey encodes a chunk index so that byte order matches numeric order.
func indexKey(i int) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(i))
	return k[:]
}

func encodeResult(r ChunkResult) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk result: %w", err)
	}
	return data, nil
}

func decodeResult(data []byte) (ChunkResult, error) {
	var r ChunkResult
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to decode chunk result: %w", err)
	}
	return r, nil
}
